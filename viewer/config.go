package viewer

import (
	"github.com/HellmannM/anari-volume-viewer/device"
	"github.com/HellmannM/anari-volume-viewer/volume"
)

// Config carries the viewer's startup configuration. It is assembled once
// via NewConfig and read-only afterwards; the pipeline never consults
// mutable globals.
type Config struct {
	filename string
	desc     volume.Descriptor
	lutFile  string
	lutIndex int
	backend  device.DeviceBackendType
	verbose  bool
	debug    bool
	trace    bool
	jsonFile string
	profile  bool
}

// Filename returns the input volume file path.
func (c Config) Filename() string { return c.filename }

// Descriptor returns the explicit grid override. Zero fields are inferred
// from the filename where possible.
func (c Config) Descriptor() volume.Descriptor { return c.desc }

// LutFile returns the LUT definition file path, empty for the built-in set.
func (c Config) LutFile() string { return c.lutFile }

// LutIndex returns the initially active LUT index.
func (c Config) LutIndex() int { return c.lutIndex }

// Backend returns the device backend to instantiate.
func (c Config) Backend() device.DeviceBackendType { return c.backend }

// Verbose reports whether informational device output is enabled.
func (c Config) Verbose() bool { return c.verbose }

// Debug reports whether debug device output is enabled.
func (c Config) Debug() bool { return c.debug }

// Trace reports whether every device call is logged.
func (c Config) Trace() bool { return c.trace }

// JSONFile returns the camera predictions file path, empty when unused.
func (c Config) JSONFile() string { return c.jsonFile }

// Profile reports whether rebuild timings are collected and logged.
func (c Config) Profile() bool { return c.profile }
