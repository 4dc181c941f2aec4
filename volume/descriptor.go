package volume

import (
	"errors"
	"fmt"
)

// Errors reported when a descriptor and a sample buffer disagree.
var (
	// ErrUnsupportedPrecision is returned when bytes per cell is outside {1, 2, 4}.
	ErrUnsupportedPrecision = errors.New("unsupported bytes per cell")
	// ErrSizeMismatch is returned when a buffer's byte length does not match
	// the descriptor's dimX*dimY*dimZ*bytesPerCell product.
	ErrSizeMismatch = errors.New("volume size mismatch")
)

// Descriptor fixes a volume's grid dimensions and sample width. A zero field
// means unknown; all four fields must be resolved before a field object can
// be built from the volume.
type Descriptor struct {
	DimX, DimY, DimZ int
	BytesPerCell     int
}

// Resolved reports whether all four fields are known.
//
// Returns:
//   - bool: true when dimX, dimY, dimZ and bytesPerCell are all nonzero
func (d Descriptor) Resolved() bool {
	return d.DimX > 0 && d.DimY > 0 && d.DimZ > 0 && d.BytesPerCell > 0
}

// Cells reports the grid's total cell count.
//
// Returns:
//   - int: dimX * dimY * dimZ
func (d Descriptor) Cells() int {
	return d.DimX * d.DimY * d.DimZ
}

// ByteLen reports the byte length a matching sample buffer must have.
//
// Returns:
//   - int: dimX * dimY * dimZ * bytesPerCell
func (d Descriptor) ByteLen() int {
	return d.Cells() * d.BytesPerCell
}

// Validate checks that the descriptor is fully resolved, uses a supported
// sample width, and exactly covers the given buffer.
//
// Parameters:
//   - buf: the sample buffer the descriptor must describe
//
// Returns:
//   - error: ErrUnsupportedPrecision or ErrSizeMismatch describing the first
//     violation found, or nil
func (d Descriptor) Validate(buf *Buffer) error {
	switch d.BytesPerCell {
	case CellUint8, CellUint16, CellFloat32:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedPrecision, d.BytesPerCell)
	}
	if d.DimX <= 0 || d.DimY <= 0 || d.DimZ <= 0 {
		return fmt.Errorf("%w: dims %dx%dx%d", ErrSizeMismatch, d.DimX, d.DimY, d.DimZ)
	}
	if d.BytesPerCell != buf.BytesPerCell() {
		return fmt.Errorf("%w: descriptor declares %d byte(s)/cell, buffer holds %d",
			ErrUnsupportedPrecision, d.BytesPerCell, buf.BytesPerCell())
	}
	if d.ByteLen() != buf.ByteLen() {
		return fmt.Errorf("%w: descriptor wants %d bytes, buffer holds %d",
			ErrSizeMismatch, d.ByteLen(), buf.ByteLen())
	}
	return nil
}

// String renders the descriptor the way the viewer logs it.
func (d Descriptor) String() string {
	return fmt.Sprintf("%d x %d x %d, %d byte(s)/cell", d.DimX, d.DimY, d.DimZ, d.BytesPerCell)
}
