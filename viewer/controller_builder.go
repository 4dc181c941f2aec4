package viewer

import (
	"github.com/HellmannM/anari-volume-viewer/device"
	"github.com/HellmannM/anari-volume-viewer/lac"
)

// ControllerBuilderOption is a functional option for configuring a
// Controller. Use the With* functions to create options that are applied
// directly to the controller instance.
type ControllerBuilderOption func(*controllerImpl)

// WithDevice sets a pre-configured device for the controller to use rather
// than allowing it to instantiate one from the configuration. The
// controller takes ownership and releases the device on Close.
//
// Parameters:
//   - dev: a pre-configured Device instance
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithDevice(dev device.Device) ControllerBuilderOption {
	return func(c *controllerImpl) {
		c.dev = dev
	}
}

// WithLuts sets a pre-built LUT set for the controller to use rather than
// loading one from the configured LUT file or the built-in tables.
//
// Parameters:
//   - set: the LUT set to select from
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithLuts(set *lac.Set) ControllerBuilderOption {
	return func(c *controllerImpl) {
		c.luts = set
	}
}
