package viewer

import (
	"github.com/HellmannM/anari-volume-viewer/volume"
)

// Command is a request executed by the controller against its current
// state. Commands are plain values carrying their own inputs; they capture
// no scene or device state.
type Command interface {
	name() string
}

// LoadVolume loads the volume at Path, builds its field graph and swaps it
// into the scene. Descriptor supplies explicit grid dimensions and element
// width for formats that do not describe themselves; zero fields are
// inferred from the filename where possible.
type LoadVolume struct {
	Path       string
	Descriptor volume.Descriptor
}

func (LoadVolume) name() string { return "LoadVolume" }

// RebuildVolume activates the LUT at LutIndex and rebuilds the committed
// volume from the retained raw samples. Ignored with a warning when the
// loaded format does not remap through a LUT.
type RebuildVolume struct {
	LutIndex int
}

func (RebuildVolume) name() string { return "RebuildVolume" }
