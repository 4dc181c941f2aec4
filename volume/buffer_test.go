package volume

import "testing"

func TestBufferRange(t *testing.T) {
	t.Run("uint8", func(t *testing.T) {
		b := NewUint8Buffer([]uint8{5, 2, 9, 2})
		if b.BytesPerCell() != CellUint8 {
			t.Errorf("BytesPerCell = %d, want %d", b.BytesPerCell(), CellUint8)
		}
		if b.Len() != 4 || b.ByteLen() != 4 {
			t.Errorf("Len/ByteLen = %d/%d, want 4/4", b.Len(), b.ByteLen())
		}
		min, max := b.Range()
		if min != 2 || max != 9 {
			t.Errorf("Range = (%v, %v), want (2, 9)", min, max)
		}
	})

	t.Run("uint16", func(t *testing.T) {
		b := NewUint16Buffer([]uint16{1000, 65535, 0})
		if b.ByteLen() != 6 {
			t.Errorf("ByteLen = %d, want 6", b.ByteLen())
		}
		min, max := b.Range()
		if min != 0 || max != 65535 {
			t.Errorf("Range = (%v, %v), want (0, 65535)", min, max)
		}
	})

	t.Run("float32", func(t *testing.T) {
		b := NewFloat32Buffer([]float32{-0.5, 3.25, 1})
		if b.ByteLen() != 12 {
			t.Errorf("ByteLen = %d, want 12", b.ByteLen())
		}
		min, max := b.Range()
		if min != -0.5 || max != 3.25 {
			t.Errorf("Range = (%v, %v), want (-0.5, 3.25)", min, max)
		}
	})

	t.Run("single sample collapses the range", func(t *testing.T) {
		min, max := NewFloat32Buffer([]float32{7}).Range()
		if min != 7 || max != 7 {
			t.Errorf("Range = (%v, %v), want (7, 7)", min, max)
		}
	})
}

func TestBufferTypedAccess(t *testing.T) {
	b := NewUint16Buffer([]uint16{1, 2, 3})
	if b.Uint16() == nil {
		t.Fatal("Uint16() = nil for a 16-bit buffer")
	}
	if b.Uint8() != nil || b.Float32() != nil {
		t.Error("unpopulated typed accessors must return nil")
	}
	if got := len(b.Bytes()); got != 6 {
		t.Errorf("len(Bytes()) = %d, want 6", got)
	}
}

func TestBufferEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty sample slice")
		}
	}()
	NewFloat32Buffer(nil)
}
