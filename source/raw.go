package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HellmannM/anari-volume-viewer/volume"
)

// rawSource reads headerless little-endian voxel dumps. Dimensions and cell
// width must be fully resolved by the caller, from explicit configuration or
// filename inference.
type rawSource struct{}

var _ Source = &rawSource{}

// NewRawSource creates the raw binary source.
func NewRawSource() Source {
	return &rawSource{}
}

// Name returns the short format name used in log output.
func (s *rawSource) Name() string {
	return "raw"
}

// Matches reports whether the path has a raw dump extension.
func (s *rawSource) Matches(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".raw", ".bin":
		return true
	}
	return false
}

// RemapsIntensity reports false: raw dumps already carry renderable
// intensities.
func (s *rawSource) RemapsIntensity() bool {
	return false
}

// Open reads exactly desc.ByteLen() bytes into a buffer of the matching
// element type. Trailing bytes beyond that length are ignored; a shorter
// file fails with volume.ErrSizeMismatch and produces no buffer.
func (s *rawSource) Open(path string, desc volume.Descriptor) (*volume.Buffer, volume.Descriptor, error) {
	if !desc.Resolved() {
		return nil, desc, fmt.Errorf("raw source: %q needs explicit or inferred dimensions, have %s", path, desc.String())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, desc, fmt.Errorf("raw source: %w", err)
	}
	defer f.Close()

	buf, err := readSamples(f, desc.Cells(), desc.BytesPerCell, binary.LittleEndian)
	if err != nil {
		return nil, desc, fmt.Errorf("raw source %q: %w", path, err)
	}
	return buf, desc, nil
}

// readSamples decodes count samples of the given cell width from r into a
// typed buffer. A short read maps to volume.ErrSizeMismatch.
func readSamples(r io.Reader, count, bytesPerCell int, order binary.ByteOrder) (*volume.Buffer, error) {
	switch bytesPerCell {
	case volume.CellUint8:
		samples := make([]uint8, count)
		if _, err := io.ReadFull(r, samples); err != nil {
			return nil, sizeError(count, bytesPerCell, err)
		}
		return volume.NewUint8Buffer(samples), nil
	case volume.CellUint16:
		samples := make([]uint16, count)
		if err := binary.Read(r, order, samples); err != nil {
			return nil, sizeError(count, bytesPerCell, err)
		}
		return volume.NewUint16Buffer(samples), nil
	case volume.CellFloat32:
		samples := make([]float32, count)
		if err := binary.Read(r, order, samples); err != nil {
			return nil, sizeError(count, bytesPerCell, err)
		}
		return volume.NewFloat32Buffer(samples), nil
	default:
		return nil, fmt.Errorf("%w: %d byte(s)/cell", volume.ErrUnsupportedPrecision, bytesPerCell)
	}
}

func sizeError(count, bytesPerCell int, err error) error {
	return fmt.Errorf("%w: need %d bytes: %v", volume.ErrSizeMismatch, count*bytesPerCell, err)
}
