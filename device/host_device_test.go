package device

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// statusRecorder captures status sink traffic so tests can assert on device
// diagnostics without scraping log output.
type statusRecorder struct {
	entries []string
}

func (r *statusRecorder) record(severity Severity, message string) {
	r.entries = append(r.entries, severity.String()+" "+message)
}

func (r *statusRecorder) count(substr string) int {
	n := 0
	for _, e := range r.entries {
		if strings.Contains(e, substr) {
			n++
		}
	}
	return n
}

func newRecordedDevice(t *testing.T, options ...DeviceBuilderOption) (Device, *statusRecorder) {
	t.Helper()
	rec := &statusRecorder{}
	dev, err := NewDevice(BackendTypeHost, append(options, WithStatusFunc(rec.record))...)
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	return dev, rec
}

// buildCommittedVolume assembles a committed field and volume over a small
// float grid, mirroring the viewer's build sequence.
func buildCommittedVolume(t *testing.T, dev Device, min, max float32) (Field, Volume) {
	t.Helper()

	arr, err := dev.NewFloat32Array3D([]float32{min, max, 1, 2, 3, 4, 5, 6}, 2, 2, 2)
	if err != nil {
		t.Fatalf("NewFloat32Array3D: %v", err)
	}
	field, err := dev.NewField("structuredRegular")
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	field.SetParameter("data", arr)
	arr.Release()
	field.SetParameter("filter", "linear")
	if err := field.Commit(); err != nil {
		t.Fatalf("field.Commit: %v", err)
	}

	volume, err := dev.NewVolume("transferFunction1D")
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	volume.SetParameter("value", field)
	volume.SetParameter("field", field)
	volume.SetParameter("valueRange", [2]float32{min, max})
	if err := volume.Commit(); err != nil {
		t.Fatalf("volume.Commit: %v", err)
	}
	return field, volume
}

func TestHostArrayValidation(t *testing.T) {
	dev, _ := newRecordedDevice(t)

	t.Run("element count must match dims", func(t *testing.T) {
		if _, err := dev.NewUFixed8Array3D(make([]uint8, 7), 2, 2, 2); !errors.Is(err, ErrAllocation) {
			t.Fatalf("err = %v, want ErrAllocation", err)
		}
	})

	t.Run("zero dimension rejected", func(t *testing.T) {
		if _, err := dev.NewFloat32Array3D(nil, 0, 2, 2); !errors.Is(err, ErrAllocation) {
			t.Fatalf("err = %v, want ErrAllocation", err)
		}
	})

	t.Run("valid array reports type and length", func(t *testing.T) {
		arr, err := dev.NewUFixed16Array3D(make([]uint16, 8), 2, 2, 2)
		if err != nil {
			t.Fatalf("NewUFixed16Array3D: %v", err)
		}
		if arr.ElementType() != ElementUFixed16 {
			t.Errorf("ElementType = %v, want %v", arr.ElementType(), ElementUFixed16)
		}
		if arr.Len() != 8 {
			t.Errorf("Len = %d, want 8", arr.Len())
		}
		arr.Release()
	})

	t.Run("empty 1D arrays rejected", func(t *testing.T) {
		if _, err := dev.NewFloat32Array1D(nil); !errors.Is(err, ErrAllocation) {
			t.Fatalf("float array err = %v, want ErrAllocation", err)
		}
		if _, err := dev.NewColorArray1D(nil); !errors.Is(err, ErrAllocation) {
			t.Fatalf("color array err = %v, want ErrAllocation", err)
		}
	})
}

func TestHostUnknownSubtypes(t *testing.T) {
	dev, _ := newRecordedDevice(t)

	if _, err := dev.NewField("amr"); !errors.Is(err, ErrAllocation) {
		t.Errorf("NewField err = %v, want ErrAllocation", err)
	}
	if _, err := dev.NewVolume("scivis"); !errors.Is(err, ErrAllocation) {
		t.Errorf("NewVolume err = %v, want ErrAllocation", err)
	}
}

func TestHostFieldCommitRequiresData(t *testing.T) {
	dev, _ := newRecordedDevice(t)

	field, err := dev.NewField("structuredRegular")
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	if err := field.Commit(); err == nil {
		t.Fatal("Commit succeeded without a data array")
	}

	arr, err := dev.NewFloat32Array3D([]float32{1}, 1, 1, 1)
	if err != nil {
		t.Fatalf("NewFloat32Array3D: %v", err)
	}
	field.SetParameter("data", arr)
	arr.Release()
	if err := field.Commit(); err != nil {
		t.Fatalf("Commit with data: %v", err)
	}
	field.Release()
}

func TestHostVolumeValueRange(t *testing.T) {
	dev, _ := newRecordedDevice(t)

	field, volume := buildCommittedVolume(t, dev, -1, 5)
	if min, max := volume.ValueRange(); min != -1 || max != 5 {
		t.Errorf("ValueRange = (%v, %v), want (-1, 5)", min, max)
	}

	volume.Release()
	field.Release()
}

func TestHostVolumeValueRangeDefault(t *testing.T) {
	dev, _ := newRecordedDevice(t)

	volume, err := dev.NewVolume("transferFunction1D")
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	if min, max := volume.ValueRange(); min != 0 || max != 1 {
		t.Errorf("uncommitted ValueRange = (%v, %v), want the (0, 1) default", min, max)
	}
	volume.Release()
}

func TestHostWorldVolumeCount(t *testing.T) {
	dev, _ := newRecordedDevice(t)

	world, err := dev.NewWorld()
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	if err := world.Commit(); err != nil {
		t.Fatalf("empty world Commit: %v", err)
	}
	if got := world.VolumeCount(); got != 0 {
		t.Fatalf("VolumeCount = %d, want 0", got)
	}

	field, volume := buildCommittedVolume(t, dev, 0, 1)
	arr, err := dev.NewVolumeArray1D([]Volume{volume})
	if err != nil {
		t.Fatalf("NewVolumeArray1D: %v", err)
	}
	world.SetParameter("volume", arr)
	arr.Release()
	volume.Release()
	if err := world.Commit(); err != nil {
		t.Fatalf("world Commit: %v", err)
	}
	if got := world.VolumeCount(); got != 1 {
		t.Fatalf("VolumeCount = %d, want 1", got)
	}

	world.Release()
	field.Release()
}

func TestHostReleaseTracksReferences(t *testing.T) {
	dev, rec := newRecordedDevice(t)

	arr, err := dev.NewFloat32Array3D([]float32{1}, 1, 1, 1)
	if err != nil {
		t.Fatalf("NewFloat32Array3D: %v", err)
	}
	field, err := dev.NewField("structuredRegular")
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	field.SetParameter("data", arr)

	// The field holds its own reference, so the caller's release must not
	// destroy the array.
	arr.Release()
	if err := field.Commit(); err != nil {
		t.Fatalf("field.Commit after caller release: %v", err)
	}

	// Releasing the field frees both the field and its retained array.
	field.Release()

	arr.Release()
	if got := rec.count("released more often than retained"); got != 1 {
		t.Errorf("double release warnings = %d, want 1", got)
	}
}

func TestHostWorldRetainsVolumeThroughArray(t *testing.T) {
	dev, rec := newRecordedDevice(t)

	world, err := dev.NewWorld()
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	field, volume := buildCommittedVolume(t, dev, 0, 1)

	arr, err := dev.NewVolumeArray1D([]Volume{volume})
	if err != nil {
		t.Fatalf("NewVolumeArray1D: %v", err)
	}
	world.SetParameter("volume", arr)
	arr.Release()
	volume.Release()

	if err := world.Commit(); err != nil {
		t.Fatalf("world Commit: %v", err)
	}
	if got := rec.count("released more often than retained"); got != 0 {
		t.Fatalf("unexpected double release warnings: %d", got)
	}
	if got := world.VolumeCount(); got != 1 {
		t.Fatalf("VolumeCount = %d, want 1", got)
	}

	world.Release()
	field.Release()
	if got := rec.count("released more often than retained"); got != 0 {
		t.Errorf("teardown produced %d double release warnings", got)
	}
}

func TestTraceDeviceDelegates(t *testing.T) {
	rec := &statusRecorder{}
	dev, err := NewDevice(BackendTypeHost, WithStatusFunc(rec.record), WithTrace(true))
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}

	field, volume := buildCommittedVolume(t, dev, 2, 8)
	if min, max := volume.ValueRange(); min != 2 || max != 8 {
		t.Errorf("traced ValueRange = (%v, %v), want (2, 8)", min, max)
	}

	world, err := dev.NewWorld()
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	arr, err := dev.NewVolumeArray1D([]Volume{volume})
	if err != nil {
		t.Fatalf("NewVolumeArray1D: %v", err)
	}
	world.SetParameter("volume", arr)
	arr.Release()
	volume.Release()
	if err := world.Commit(); err != nil {
		t.Fatalf("world Commit: %v", err)
	}
	if got := world.VolumeCount(); got != 1 {
		t.Errorf("traced VolumeCount = %d, want 1", got)
	}
	if got := rec.count("released more often than retained"); got != 0 {
		t.Errorf("tracing broke reference counting: %d warnings", got)
	}

	world.Release()
	field.Release()
}

func TestColorArrayElementType(t *testing.T) {
	dev, _ := newRecordedDevice(t)

	arr, err := dev.NewColorArray1D([]mgl32.Vec3{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}})
	if err != nil {
		t.Fatalf("NewColorArray1D: %v", err)
	}
	if arr.ElementType() != ElementFloat32Vec3 {
		t.Errorf("ElementType = %v, want %v", arr.ElementType(), ElementFloat32Vec3)
	}
	if arr.Len() != 3 {
		t.Errorf("Len = %d, want 3", arr.Len())
	}
	arr.Release()
}
