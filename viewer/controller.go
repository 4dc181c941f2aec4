// package viewer wires the volume pipeline together. The controller owns
// the device, the scene graph and the loaded volume data, and executes
// load and LUT rebuild commands against them.
package viewer

import (
	"errors"
	"fmt"
	"log"

	"github.com/HellmannM/anari-volume-viewer/device"
	"github.com/HellmannM/anari-volume-viewer/lac"
	"github.com/HellmannM/anari-volume-viewer/profiler"
	"github.com/HellmannM/anari-volume-viewer/scene"
	"github.com/HellmannM/anari-volume-viewer/source"
	"github.com/HellmannM/anari-volume-viewer/volume"
)

// controllerImpl implements the Controller interface. It is the single
// owner of the pipeline state; every mutation happens inside Do.
type controllerImpl struct {
	cfg     Config
	dev     device.Device
	graph   scene.Graph
	builder scene.Builder
	sources *source.Registry
	luts    *lac.Set
	tr      *lac.Transformer

	prof             *profiler.Profiler
	profilingEnabled bool

	// raw holds the pre-remap samples so a LUT switch restarts from the
	// same source data. buf holds the committed samples behind the field.
	raw   *volume.Buffer
	buf   *volume.Buffer
	desc  volume.Descriptor
	remap bool
	field device.Field
}

// Controller executes viewer commands against the scene. It owns the
// device, the world and the retained volume data; the attached volume
// itself is owned by the world once a swap commits.
type Controller interface {
	// Do executes a command against the current state. On failure the
	// previously committed volume stays attached and visible.
	//
	// Parameters:
	//   - cmd: the command to execute (LoadVolume, RebuildVolume)
	//
	// Returns:
	//   - error: error if the command cannot be completed
	Do(cmd Command) error

	// OnFileLoaded is the file-selection callback surface. It forwards to
	// Do with a LoadVolume command.
	//
	// Parameters:
	//   - path: the volume file to load
	//   - desc: explicit grid override, zero fields inferred from the filename
	//
	// Returns:
	//   - error: error if the load fails
	OnFileLoaded(path string, desc volume.Descriptor) error

	// OnLutSelected is the LUT-selection callback surface. It forwards to
	// Do with a RebuildVolume command.
	//
	// Parameters:
	//   - index: the LUT index to activate
	//
	// Returns:
	//   - error: error if the rebuild fails
	OnLutSelected(index int) error

	// LutNames returns the selectable LUT names in index order.
	//
	// Returns:
	//   - []string: the LUT names
	LutNames() []string

	// DataRange reports the committed volume's value range, (0, 0) before
	// the first load.
	//
	// Returns:
	//   - float32: the minimum sample value
	//   - float32: the maximum sample value
	DataRange() (float32, float32)

	// Device returns the underlying device.
	//
	// Returns:
	//   - device.Device: the device instance
	Device() device.Device

	// World returns the committed world for a renderer to consume.
	//
	// Returns:
	//   - device.World: the world instance
	World() device.World

	// EnableProfiler enables rebuild timing output to the log.
	EnableProfiler()

	// DisableProfiler disables rebuild timing output.
	DisableProfiler()

	// Close logs the aggregate timing report when profiling is enabled,
	// then releases the current field, the world and the device, in that
	// order. The attached volume and its arrays drain through the world's
	// release. Safe to call once after use; the controller is unusable
	// afterwards.
	Close()
}

var _ Controller = &controllerImpl{}

// NewController creates a Controller from the configuration. Unless
// overridden by options it instantiates the configured device backend,
// loads the LUT set named by the configuration (or the built-in set) and
// commits an empty world.
//
// Parameters:
//   - cfg: the viewer configuration
//   - options: functional options for controller construction (device, LUT set)
//
// Returns:
//   - Controller: the constructed controller
//   - error: error if the LUT set, device or world cannot be initialized
func NewController(cfg Config, options ...ControllerBuilderOption) (Controller, error) {
	c := &controllerImpl{
		cfg:              cfg,
		sources:          source.DefaultRegistry(),
		tr:               lac.NewTransformer(),
		prof:             profiler.NewProfiler(),
		profilingEnabled: cfg.Profile(),
	}
	for _, option := range options {
		option(c)
	}

	if c.luts == nil {
		if cfg.LutFile() != "" {
			set, err := lac.Load(cfg.LutFile())
			if err != nil {
				c.releasePartial()
				return nil, fmt.Errorf("viewer: %w", err)
			}
			c.luts = set
		} else {
			c.luts = lac.Default()
		}
	}
	if err := c.luts.SetActive(cfg.LutIndex()); err != nil {
		c.releasePartial()
		return nil, fmt.Errorf("viewer: initial lut: %w", err)
	}

	if c.dev == nil {
		dev, err := device.NewDevice(cfg.Backend(),
			device.WithVerbose(cfg.Verbose() || cfg.Debug()),
			device.WithTrace(cfg.Trace()))
		if err != nil {
			return nil, fmt.Errorf("viewer: %w", err)
		}
		c.dev = dev
	}

	graph, err := scene.NewGraph(c.dev)
	if err != nil {
		c.releasePartial()
		return nil, fmt.Errorf("viewer: %w", err)
	}
	c.graph = graph
	c.builder = scene.NewBuilder(c.dev)
	return c, nil
}

// releasePartial releases an injected device when construction fails
// before the controller takes full ownership.
func (c *controllerImpl) releasePartial() {
	if c.dev != nil {
		c.dev.Release()
		c.dev = nil
	}
}

func (c *controllerImpl) Do(cmd Command) error {
	switch cmd := cmd.(type) {
	case LoadVolume:
		return c.loadVolume(cmd)
	case RebuildVolume:
		return c.rebuildVolume(cmd)
	case nil:
		return errors.New("viewer: nil command")
	default:
		return fmt.Errorf("viewer: unknown command %s", cmd.name())
	}
}

func (c *controllerImpl) OnFileLoaded(path string, desc volume.Descriptor) error {
	return c.Do(LoadVolume{Path: path, Descriptor: desc})
}

func (c *controllerImpl) OnLutSelected(index int) error {
	return c.Do(RebuildVolume{LutIndex: index})
}

func (c *controllerImpl) LutNames() []string {
	return c.luts.Names()
}

func (c *controllerImpl) DataRange() (float32, float32) {
	if c.buf == nil {
		return 0, 0
	}
	return c.buf.Range()
}

func (c *controllerImpl) Device() device.Device {
	return c.dev
}

func (c *controllerImpl) World() device.World {
	return c.graph.World()
}

func (c *controllerImpl) EnableProfiler() {
	c.profilingEnabled = true
}

func (c *controllerImpl) DisableProfiler() {
	c.profilingEnabled = false
}

// loadVolume runs the load pipeline: probe the format, read the samples,
// remap them when the format calls for it, build the field graph and swap
// it into the world. The pre-remap samples are retained for later LUT
// switches.
func (c *controllerImpl) loadVolume(cmd LoadVolume) error {
	desc := volume.InferFromFilename(cmd.Path, cmd.Descriptor)
	src, err := c.sources.Probe(cmd.Path)
	if err != nil {
		return fmt.Errorf("load %s: %w", cmd.Path, err)
	}

	c.profBegin()
	stop := c.profStage("open")
	raw, desc, err := src.Open(cmd.Path, desc)
	stop()
	if err != nil {
		return fmt.Errorf("load %s: %w", cmd.Path, err)
	}

	remap := src.RemapsIntensity() && c.luts.Len() > 0
	buf := raw
	if remap {
		stop = c.profStage("remap")
		buf, err = c.tr.Apply(raw, c.luts)
		stop()
		if err != nil {
			return fmt.Errorf("load %s: %w", cmd.Path, err)
		}
		desc.BytesPerCell = buf.BytesPerCell()
	}

	if err := c.swapIn(buf, desc); err != nil {
		return fmt.Errorf("load %s: %w", cmd.Path, err)
	}
	c.raw = raw
	c.buf = buf
	c.desc = desc
	c.remap = remap
	c.profEnd(desc.Cells())

	lo, hi := buf.Range()
	log.Printf("Loaded %s: %s, value range (%g, %g)", cmd.Path, desc, lo, hi)
	return nil
}

// rebuildVolume activates the requested LUT and rebuilds the committed
// volume from the retained raw samples. On any failure the previous LUT
// selection and the previously committed volume both stay in place.
func (c *controllerImpl) rebuildVolume(cmd RebuildVolume) error {
	if c.raw == nil {
		return errors.New("lut rebuild: no volume loaded")
	}
	if !c.remap {
		log.Printf("Ignoring LUT change: the loaded volume carries renderable intensities")
		return nil
	}

	prev := c.luts.Active()
	if err := c.luts.SetActive(cmd.LutIndex); err != nil {
		return fmt.Errorf("lut rebuild: %w", err)
	}

	c.profBegin()
	stop := c.profStage("remap")
	buf, err := c.tr.Apply(c.raw, c.luts)
	stop()
	if err != nil {
		c.luts.SetActive(prev)
		return fmt.Errorf("lut rebuild: %w", err)
	}

	desc := c.desc
	desc.BytesPerCell = buf.BytesPerCell()
	if err := c.swapIn(buf, desc); err != nil {
		c.luts.SetActive(prev)
		return fmt.Errorf("lut rebuild: %w", err)
	}
	c.buf = buf
	c.desc = desc
	c.profEnd(desc.Cells())
	return nil
}

// swapIn builds a field graph for the samples and swaps it into the world.
// On success the previous field is released and the new one retained; on
// failure every partial object is released and the world keeps its current
// volume.
func (c *controllerImpl) swapIn(buf *volume.Buffer, desc volume.Descriptor) error {
	stop := c.profStage("build")
	field, vol, err := c.builder.Build(buf, desc)
	stop()
	if err != nil {
		return err
	}

	// ReplaceVolume consumes vol on every path, so only the field needs
	// releasing when the swap fails.
	stop = c.profStage("swap")
	err = c.graph.ReplaceVolume(vol)
	stop()
	if err != nil {
		field.Release()
		return err
	}

	if c.field != nil {
		c.field.Release()
	}
	c.field = field
	return nil
}

func (c *controllerImpl) Close() {
	if c.profilingEnabled {
		c.prof.Report()
	}
	if c.field != nil {
		c.field.Release()
		c.field = nil
	}
	if c.graph != nil {
		c.graph.Release()
		c.graph = nil
	}
	if c.dev != nil {
		c.dev.Release()
		c.dev = nil
	}
}

// profBegin, profStage and profEnd gate the profiler behind the enabled
// flag so disabled runs record nothing.
func (c *controllerImpl) profBegin() {
	if c.profilingEnabled {
		c.prof.Begin()
	}
}

func (c *controllerImpl) profStage(name string) func() {
	if !c.profilingEnabled {
		return func() {}
	}
	return c.prof.Stage(name)
}

func (c *controllerImpl) profEnd(voxels int) {
	if c.profilingEnabled {
		c.prof.End(voxels)
	}
}
