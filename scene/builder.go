// package scene assembles committed device field/volume graphs from voxel
// buffers and swaps them into the rendered world.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/HellmannM/anari-volume-viewer/device"
	"github.com/HellmannM/anari-volume-viewer/volume"
)

// builderImpl is the implementation of the Builder interface.
type builderImpl struct {
	dev device.Device
}

// Builder turns voxel buffers into committed field/volume pairs, ready to
// attach to a Graph.
type Builder interface {
	// Build wraps the buffer as a device array, attaches it to a new
	// structuredRegular spatial field, and wires the field into a new
	// transferFunction1D volume with the fixed transfer-function ramps and
	// the buffer's value range. Both returned handles are committed and not
	// yet attached to any world; the caller owns them.
	//
	// A bytes-per-cell outside {1, 2, 4} fails with
	// volume.ErrUnsupportedPrecision before any device object is created.
	// Any later failure releases the partially built handles, so no
	// half-built graph is left reachable.
	//
	// Parameters:
	//   - buf: the voxel samples
	//   - desc: the resolved dimensions and cell width matching buf
	//
	// Returns:
	//   - device.Field: the committed spatial field
	//   - device.Volume: the committed volume referencing the field
	//   - error: validation or device allocation error
	Build(buf *volume.Buffer, desc volume.Descriptor) (device.Field, device.Volume, error)
}

var _ Builder = &builderImpl{}

// NewBuilder creates a Builder on the given device.
//
// Parameters:
//   - dev: the device that owns all created objects
//
// Returns:
//   - Builder: the new builder
func NewBuilder(dev device.Device) Builder {
	if dev == nil {
		panic("scene: NewBuilder requires a non-nil Device")
	}
	return &builderImpl{dev: dev}
}

// Fixed transfer-function ramps, blue through green to red and fully
// transparent to fully opaque.
func rampColors() []mgl32.Vec3 {
	return []mgl32.Vec3{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}}
}

func rampOpacities() []float32 {
	return []float32{0, 1}
}

func (b *builderImpl) Build(buf *volume.Buffer, desc volume.Descriptor) (device.Field, device.Volume, error) {
	// Width and extent checks run before any device allocation.
	if err := desc.Validate(buf); err != nil {
		return nil, nil, err
	}

	scope := device.NewScope()
	defer scope.Close()

	field, err := b.dev.NewField("structuredRegular")
	if err != nil {
		return nil, nil, fmt.Errorf("field graph: %w", err)
	}
	scope.Track(field)

	arr, err := b.newSampleArray(buf, desc)
	if err != nil {
		return nil, nil, fmt.Errorf("field graph: %w", err)
	}
	scope.Track(arr)

	field.SetParameter("data", arr)
	field.SetParameter("filter", "linear")
	if err := field.Commit(); err != nil {
		return nil, nil, fmt.Errorf("field graph: %w", err)
	}

	vol, err := b.dev.NewVolume("transferFunction1D")
	if err != nil {
		return nil, nil, fmt.Errorf("field graph: %w", err)
	}
	scope.Track(vol)

	vol.SetParameter("value", field)
	vol.SetParameter("field", field)

	colors, err := b.dev.NewColorArray1D(rampColors())
	if err != nil {
		return nil, nil, fmt.Errorf("field graph: %w", err)
	}
	scope.Track(colors)
	vol.SetParameter("color", colors)

	opacities, err := b.dev.NewFloat32Array1D(rampOpacities())
	if err != nil {
		return nil, nil, fmt.Errorf("field graph: %w", err)
	}
	scope.Track(opacities)
	vol.SetParameter("opacity", opacities)

	lo, hi := buf.Range()
	vol.SetParameter("valueRange", [2]float32{lo, hi})

	if err := vol.Commit(); err != nil {
		return nil, nil, fmt.Errorf("field graph: %w", err)
	}

	// The field and volume leave the scope with the caller; the arrays stay
	// behind, alive through the parameters that retained them.
	scope.Keep(field)
	scope.Keep(vol)
	return field, vol, nil
}

// newSampleArray maps the buffer's cell width to its device element type.
func (b *builderImpl) newSampleArray(buf *volume.Buffer, desc volume.Descriptor) (device.Array, error) {
	switch desc.BytesPerCell {
	case volume.CellUint8:
		return b.dev.NewUFixed8Array3D(buf.Uint8(), desc.DimX, desc.DimY, desc.DimZ)
	case volume.CellUint16:
		return b.dev.NewUFixed16Array3D(buf.Uint16(), desc.DimX, desc.DimY, desc.DimZ)
	case volume.CellFloat32:
		return b.dev.NewFloat32Array3D(buf.Float32(), desc.DimX, desc.DimY, desc.DimZ)
	default:
		return nil, fmt.Errorf("%w: %d byte(s)/cell", volume.ErrUnsupportedPrecision, desc.BytesPerCell)
	}
}
