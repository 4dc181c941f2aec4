package scene

import (
	"fmt"

	"github.com/HellmannM/anari-volume-viewer/device"
)

// graphImpl is the implementation of the Graph interface.
type graphImpl struct {
	dev   device.Device
	world device.World
}

// Graph owns the world the renderer draws. ReplaceVolume is the only
// mutating entry point: the displayed volume moves from one committed state
// straight to the next, with no observable empty state in between.
type Graph interface {
	// ReplaceVolume attaches v as the world's single volume. The volume
	// reference is consumed on every path: after the world holds it through
	// a one-element volume array, the local reference is released. The
	// caller releases the previous field only after this returns
	// successfully, so a failed swap leaves the old graph attached.
	//
	// Parameters:
	//   - v: the committed volume to display
	//
	// Returns:
	//   - error: device allocation or commit error
	ReplaceVolume(v device.Volume) error

	// World returns the world handle for the renderer.
	//
	// Returns:
	//   - device.World: the owned world
	World() device.World

	// Release drops the graph's world reference.
	Release()
}

var _ Graph = &graphImpl{}

// NewGraph creates a Graph with an empty committed world.
//
// Parameters:
//   - dev: the device that owns the world
//
// Returns:
//   - Graph: the new graph
//   - error: device allocation or commit error
func NewGraph(dev device.Device) (Graph, error) {
	if dev == nil {
		panic("scene: NewGraph requires a non-nil Device")
	}
	world, err := dev.NewWorld()
	if err != nil {
		return nil, fmt.Errorf("scene graph: %w", err)
	}
	if err := world.Commit(); err != nil {
		world.Release()
		return nil, fmt.Errorf("scene graph: %w", err)
	}
	return &graphImpl{dev: dev, world: world}, nil
}

func (g *graphImpl) ReplaceVolume(v device.Volume) error {
	arr, err := g.dev.NewVolumeArray1D([]device.Volume{v})
	if err != nil {
		v.Release()
		return fmt.Errorf("scene graph: %w", err)
	}

	// The world retains the array and the array retains the volume, so both
	// local references go before the commit publishes the swap.
	g.world.SetParameter("volume", arr)
	arr.Release()
	v.Release()

	if err := g.world.Commit(); err != nil {
		return fmt.Errorf("scene graph: %w", err)
	}
	return nil
}

func (g *graphImpl) World() device.World {
	return g.world
}

func (g *graphImpl) Release() {
	if g.world != nil {
		g.world.Release()
		g.world = nil
	}
}
