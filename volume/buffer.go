// package volume contains the in-memory representation of a scalar volume:
// typed sample buffers, grid descriptors, and filename-based dimension
// inference for raw files that carry no header.
package volume

import (
	"github.com/HellmannM/anari-volume-viewer/common"
)

// Sample widths supported by the viewer, in bytes per cell.
const (
	CellUint8   = 1
	CellUint16  = 2
	CellFloat32 = 4
)

// Buffer owns one volume's samples at a single precision. Exactly one of the
// three typed arrays is populated, selected by the bytes-per-cell width, and
// the value range is computed once at construction. A Buffer is never mutated
// after construction; re-deriving a volume (a LUT remap, a reload) always
// allocates a fresh Buffer, so the range cannot go stale.
type Buffer struct {
	bytesPerCell int

	u8  []uint8
	u16 []uint16
	f32 []float32

	min, max float32
}

// NewUint8Buffer wraps samples as an 8-bit unsigned fixed-point buffer.
// Panics if samples is empty.
//
// Parameters:
//   - samples: the owned sample array, one byte per cell
//
// Returns:
//   - *Buffer: the buffer with its value range computed
func NewUint8Buffer(samples []uint8) *Buffer {
	if len(samples) == 0 {
		panic("volume: empty sample slice")
	}
	b := &Buffer{bytesPerCell: CellUint8, u8: samples}
	b.min, b.max = float32(samples[0]), float32(samples[0])
	for _, s := range samples[1:] {
		if float32(s) < b.min {
			b.min = float32(s)
		}
		if float32(s) > b.max {
			b.max = float32(s)
		}
	}
	return b
}

// NewUint16Buffer wraps samples as a 16-bit unsigned fixed-point buffer.
// Panics if samples is empty.
//
// Parameters:
//   - samples: the owned sample array, two bytes per cell
//
// Returns:
//   - *Buffer: the buffer with its value range computed
func NewUint16Buffer(samples []uint16) *Buffer {
	if len(samples) == 0 {
		panic("volume: empty sample slice")
	}
	b := &Buffer{bytesPerCell: CellUint16, u16: samples}
	b.min, b.max = float32(samples[0]), float32(samples[0])
	for _, s := range samples[1:] {
		if float32(s) < b.min {
			b.min = float32(s)
		}
		if float32(s) > b.max {
			b.max = float32(s)
		}
	}
	return b
}

// NewFloat32Buffer wraps samples as a 32-bit float buffer.
// Panics if samples is empty.
//
// Parameters:
//   - samples: the owned sample array, four bytes per cell
//
// Returns:
//   - *Buffer: the buffer with its value range computed
func NewFloat32Buffer(samples []float32) *Buffer {
	if len(samples) == 0 {
		panic("volume: empty sample slice")
	}
	b := &Buffer{bytesPerCell: CellFloat32, f32: samples}
	b.min, b.max = samples[0], samples[0]
	for _, s := range samples[1:] {
		if s < b.min {
			b.min = s
		}
		if s > b.max {
			b.max = s
		}
	}
	return b
}

// BytesPerCell reports the sample width of the populated array.
//
// Returns:
//   - int: 1, 2 or 4
func (b *Buffer) BytesPerCell() int {
	return b.bytesPerCell
}

// Len reports the number of samples in the populated array.
//
// Returns:
//   - int: the element count
func (b *Buffer) Len() int {
	switch b.bytesPerCell {
	case CellUint8:
		return len(b.u8)
	case CellUint16:
		return len(b.u16)
	default:
		return len(b.f32)
	}
}

// ByteLen reports the populated array's size in bytes.
//
// Returns:
//   - int: element count times bytes per cell
func (b *Buffer) ByteLen() int {
	return b.Len() * b.bytesPerCell
}

// Range reports the value range computed at construction.
//
// Returns:
//   - float32: the minimum sample value
//   - float32: the maximum sample value
func (b *Buffer) Range() (float32, float32) {
	return b.min, b.max
}

// Uint8 returns the 8-bit sample array, or nil when another width is
// populated. Callers must not modify the returned slice.
func (b *Buffer) Uint8() []uint8 {
	return b.u8
}

// Uint16 returns the 16-bit sample array, or nil when another width is
// populated. Callers must not modify the returned slice.
func (b *Buffer) Uint16() []uint16 {
	return b.u16
}

// Float32 returns the 32-bit float sample array, or nil when another width is
// populated. Callers must not modify the returned slice.
func (b *Buffer) Float32() []float32 {
	return b.f32
}

// Bytes returns a byte view of the populated array for device uploads.
// The view shares memory with the buffer and must not be modified.
//
// Returns:
//   - []byte: the populated array reinterpreted as bytes
func (b *Buffer) Bytes() []byte {
	switch b.bytesPerCell {
	case CellUint8:
		return b.u8
	case CellUint16:
		return common.SliceToBytes(b.u16)
	default:
		return common.SliceToBytes(b.f32)
	}
}
