// package common contains small generic helpers that are used throughout the
// viewer's packages. They are plain functions, not interface-wrapped types.
package common

import "unsafe"

// Coalesce returns the first non-zero value from values. Descriptor fields use
// it to let explicit settings win over inferred ones.
//
// Parameters:
//   - values: candidate values in order of precedence
//
// Returns:
//   - T: the first non-zero value, or the zero value if every candidate is zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Clamp returns v limited to the inclusive range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: the lower bound of the range
//   - hi: the upper bound of the range
//
// Returns:
//   - T: v when it lies within [lo, hi], otherwise the nearest bound
func Clamp[T ~int | ~int64 | ~float32 | ~float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SliceToBytes reinterprets a slice as raw bytes without copying. Volume
// buffers and device array uploads use it to hand typed cell data to APIs
// that take []byte. The result aliases the input, so callers must not write
// through it while the source slice is live.
//
// Parameters:
//   - data: source slice of any element type
//
// Returns:
//   - []byte: byte view of the input data, or nil if the input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}
