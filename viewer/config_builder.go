package viewer

import (
	"github.com/HellmannM/anari-volume-viewer/device"
	"github.com/HellmannM/anari-volume-viewer/volume"
)

// ConfigBuilderOption is a functional option for assembling a Config.
// Use the With* functions to create options applied by NewConfig.
type ConfigBuilderOption func(*Config)

// NewConfig assembles a Config from the provided options. Unset fields
// keep their zero defaults: host backend, built-in LUT set, LUT index 0,
// all diagnostics off.
//
// Parameters:
//   - options: functional options for viewer configuration
//
// Returns:
//   - Config: the assembled configuration
func NewConfig(options ...ConfigBuilderOption) Config {
	var c Config
	for _, option := range options {
		option(&c)
	}
	return c
}

// WithFilename sets the input volume file path.
//
// Parameters:
//   - path: the volume file to load
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithFilename(path string) ConfigBuilderOption {
	return func(c *Config) {
		c.filename = path
	}
}

// WithDescriptor sets an explicit grid descriptor for formats that do not
// describe themselves. Zero fields are still inferred from the filename.
//
// Parameters:
//   - desc: the grid dimensions and element width
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithDescriptor(desc volume.Descriptor) ConfigBuilderOption {
	return func(c *Config) {
		c.desc = desc
	}
}

// WithLutFile sets the LUT definition file to load instead of the built-in
// set.
//
// Parameters:
//   - path: the YAML LUT file
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithLutFile(path string) ConfigBuilderOption {
	return func(c *Config) {
		c.lutFile = path
	}
}

// WithLutIndex sets the initially active LUT index.
//
// Parameters:
//   - index: the LUT to activate before the first build
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithLutIndex(index int) ConfigBuilderOption {
	return func(c *Config) {
		c.lutIndex = index
	}
}

// WithBackend selects the device backend.
//
// Parameters:
//   - backend: the backend type (BackendTypeHost, BackendTypeWGPU)
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithBackend(backend device.DeviceBackendType) ConfigBuilderOption {
	return func(c *Config) {
		c.backend = backend
	}
}

// WithVerbose enables informational device and pipeline output.
//
// Parameters:
//   - verbose: true to log informational activity
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithVerbose(verbose bool) ConfigBuilderOption {
	return func(c *Config) {
		c.verbose = verbose
	}
}

// WithDebug enables debug device output. Debug implies verbose on the
// device's status sink.
//
// Parameters:
//   - debug: true to log debug device activity
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithDebug(debug bool) ConfigBuilderOption {
	return func(c *Config) {
		c.debug = debug
	}
}

// WithTrace enables logging of every device object call.
//
// Parameters:
//   - trace: true to enable call tracing
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithTrace(trace bool) ConfigBuilderOption {
	return func(c *Config) {
		c.trace = trace
	}
}

// WithJSONFile sets the camera predictions file to load after the volume.
//
// Parameters:
//   - path: the predictions JSON file
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithJSONFile(path string) ConfigBuilderOption {
	return func(c *Config) {
		c.jsonFile = path
	}
}

// WithProfiling enables rebuild timing collection and summary logging.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithProfiling(enabled bool) ConfigBuilderOption {
	return func(c *Config) {
		c.profile = enabled
	}
}
