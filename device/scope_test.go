package device

import "testing"

func TestScopeReleasesTrackedObjects(t *testing.T) {
	dev, rec := newRecordedDevice(t)

	kept, err := dev.NewFloat32Array1D([]float32{0, 1})
	if err != nil {
		t.Fatalf("NewFloat32Array1D: %v", err)
	}
	dropped, err := dev.NewFloat32Array1D([]float32{1, 2, 3})
	if err != nil {
		t.Fatalf("NewFloat32Array1D: %v", err)
	}

	scope := NewScope()
	scope.Track(kept)
	scope.Track(dropped)
	scope.Keep(kept)
	scope.Close()

	// The dropped array must be gone, the kept one still live.
	dropped.Release()
	if got := rec.count("released more often than retained"); got != 1 {
		t.Fatalf("double release warnings = %d, want 1", got)
	}
	kept.Release()
	if got := rec.count("released more often than retained"); got != 1 {
		t.Errorf("kept object was released by the scope")
	}
}

func TestScopeCloseOnEmptyScope(t *testing.T) {
	scope := NewScope()
	scope.Close()
	scope.Close()
}

func TestScopeKeepUnknownObject(t *testing.T) {
	dev, _ := newRecordedDevice(t)

	arr, err := dev.NewFloat32Array1D([]float32{1})
	if err != nil {
		t.Fatalf("NewFloat32Array1D: %v", err)
	}
	scope := NewScope()
	scope.Keep(arr) // not tracked, must be a no-op
	scope.Track(arr)
	scope.Close()
}
