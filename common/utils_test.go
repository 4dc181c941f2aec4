package common

import (
	"bytes"
	"testing"
)

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   int
	}{
		{"first non-zero wins", []int{0, 0, 3, 7}, 3},
		{"leading non-zero", []int{5, 3}, 5},
		{"all zero", []int{0, 0, 0}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coalesce(tt.values...); got != tt.want {
				t.Errorf("Coalesce(%v) = %d, want %d", tt.values, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"below range", -1.5, 0, 10, 0},
		{"above range", 12, 0, 10, 10},
		{"inside range", 4.25, 0, 10, 4.25},
		{"at lower bound", 0, 0, 10, 0},
		{"at upper bound", 10, 0, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestSliceToBytes(t *testing.T) {
	t.Run("uint16 little endian layout", func(t *testing.T) {
		got := SliceToBytes([]uint16{0x0102, 0x0304})
		want := []byte{0x02, 0x01, 0x04, 0x03}
		if !bytes.Equal(got, want) {
			t.Errorf("SliceToBytes = % x, want % x", got, want)
		}
	})

	t.Run("empty slice yields nil", func(t *testing.T) {
		if got := SliceToBytes([]float32(nil)); got != nil {
			t.Errorf("SliceToBytes(nil) = %v, want nil", got)
		}
	})

	t.Run("length scales with element size", func(t *testing.T) {
		if got := SliceToBytes([]float32{1, 2, 3}); len(got) != 12 {
			t.Errorf("len = %d, want 12", len(got))
		}
	})
}
