// package source probes volumetric input files and loads them into voxel
// buffers. Each input format is one Source; a Registry tries them in a fixed
// priority order and the first whose Matches accepts the path wins.
package source

import (
	"errors"
	"fmt"

	"github.com/HellmannM/anari-volume-viewer/volume"
)

// ErrFormatMismatch is returned when no registered source matches a file.
var ErrFormatMismatch = errors.New("no source matches the file format")

// Source is the capability interface over one input format.
type Source interface {
	// Name returns the short format name used in log output.
	Name() string

	// Matches reports whether this source handles the given path. The check
	// is on the file name only; no file access happens here.
	//
	// Parameters:
	//   - path: the input file path
	//
	// Returns:
	//   - bool: true if this source should open the path
	Matches(path string) bool

	// RemapsIntensity reports whether this format's native unit needs a LUT
	// remap before it is a renderable intensity. The pipeline remaps such
	// buffers through the active attenuation table after open and on every
	// table change.
	//
	// Returns:
	//   - bool: true if loaded samples want a LUT remap
	RemapsIntensity() bool

	// Open loads the file into a voxel buffer.
	//
	// Parameters:
	//   - path: the input file path
	//   - desc: the externally supplied descriptor; self-describing formats
	//     ignore it and read their own
	//
	// Returns:
	//   - *volume.Buffer: the loaded samples with a fresh value range
	//   - volume.Descriptor: the resolved dimensions and cell width
	//   - error: error if the file is missing, malformed, or truncated
	Open(path string, desc volume.Descriptor) (*volume.Buffer, volume.Descriptor, error)
}

// Registry is an ordered list of sources tried in priority order.
type Registry struct {
	sources []Source
}

// NewRegistry creates a registry over the given sources. Order is priority:
// earlier sources win when more than one would match.
//
// Parameters:
//   - sources: the sources in priority order
//
// Returns:
//   - *Registry: the new registry
func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: sources}
}

// DefaultRegistry creates the standard registry: raw binary first, then
// NIfTI.
//
// Returns:
//   - *Registry: the registry with the default source order
func DefaultRegistry() *Registry {
	return NewRegistry(NewRawSource(), NewNiftiSource())
}

// Probe returns the first source that matches the path.
//
// Parameters:
//   - path: the input file path
//
// Returns:
//   - Source: the matching source
//   - error: ErrFormatMismatch when no source matches
func (r *Registry) Probe(path string) (Source, error) {
	for _, s := range r.sources {
		if s.Matches(path) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrFormatMismatch, path)
}

// Open probes for a matching source and opens the file with it. Only the
// first matching source is tried; its failure is not a fallthrough.
//
// Parameters:
//   - path: the input file path
//   - desc: the externally supplied descriptor
//
// Returns:
//   - *volume.Buffer: the loaded samples
//   - volume.Descriptor: the resolved descriptor
//   - error: ErrFormatMismatch, or the matching source's open error
func (r *Registry) Open(path string, desc volume.Descriptor) (*volume.Buffer, volume.Descriptor, error) {
	s, err := r.Probe(path)
	if err != nil {
		return nil, desc, err
	}
	return s.Open(path, desc)
}
