package source

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/HellmannM/anari-volume-viewer/volume"
)

// testNiftiHeader returns a minimal valid single-file header with a 4-byte
// gap between header and data, exercising the vox_offset skip.
func testNiftiHeader(dimX, dimY, dimZ int, datatype, bitpix int16) niftiHeader {
	hdr := niftiHeader{
		SizeofHdr: niftiHeaderSize,
		Datatype:  datatype,
		Bitpix:    bitpix,
		VoxOffset: niftiHeaderSize + 4,
		Magic:     [4]byte{'n', '+', '1', 0},
	}
	hdr.Dim[0] = 3
	hdr.Dim[1] = int16(dimX)
	hdr.Dim[2] = int16(dimY)
	hdr.Dim[3] = int16(dimZ)
	return hdr
}

// writeNifti serializes header, offset padding, and sample data to a file.
func writeNifti(t *testing.T, name string, hdr niftiHeader, data any, order binary.ByteOrder, gzipped bool) string {
	t.Helper()

	var payload bytes.Buffer
	if err := binary.Write(&payload, order, &hdr); err != nil {
		t.Fatalf("binary.Write(header) error = %v", err)
	}
	payload.Write(make([]byte, int(hdr.VoxOffset)-niftiHeaderSize))
	if data != nil {
		if err := binary.Write(&payload, order, data); err != nil {
			t.Fatalf("binary.Write(data) error = %v", err)
		}
	}

	raw := payload.Bytes()
	if gzipped {
		var zipped bytes.Buffer
		zw := gzip.NewWriter(&zipped)
		if _, err := zw.Write(raw); err != nil {
			t.Fatalf("gzip write error = %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("gzip close error = %v", err)
		}
		raw = zipped.Bytes()
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestNiftiMatches(t *testing.T) {
	s := NewNiftiSource()
	tests := []struct {
		path string
		want bool
	}{
		{path: "head.nii", want: true},
		{path: "head.nii.gz", want: true},
		{path: "HEAD.NII", want: true},
		{path: "head.raw", want: false},
		{path: "head.gz", want: false},
	}
	for _, tt := range tests {
		if got := s.Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNiftiOpenUint16(t *testing.T) {
	samples := []uint16{10, 500, 7, 42, 9000, 11, 3, 800, 60, 120, 2, 33,
		14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 9001}
	hdr := testNiftiHeader(4, 3, 2, niftiTypeUint16, 16)

	for _, tc := range []struct {
		name    string
		order   binary.ByteOrder
		gzipped bool
		file    string
	}{
		{name: "little endian", order: binary.LittleEndian, file: "head.nii"},
		{name: "big endian", order: binary.BigEndian, file: "head.nii"},
		{name: "gzipped", order: binary.LittleEndian, gzipped: true, file: "head.nii.gz"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := writeNifti(t, tc.file, hdr, samples, tc.order, tc.gzipped)

			// The supplied descriptor must be ignored for self-describing input.
			bogus := volume.Descriptor{DimX: 99, DimY: 99, DimZ: 99, BytesPerCell: 1}
			buf, desc, err := NewNiftiSource().Open(path, bogus)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			want := volume.Descriptor{DimX: 4, DimY: 3, DimZ: 2, BytesPerCell: volume.CellUint16}
			if desc != want {
				t.Errorf("Open() descriptor = %+v, want %+v", desc, want)
			}
			if buf.Len() != len(samples) {
				t.Fatalf("Len() = %d, want %d", buf.Len(), len(samples))
			}
			if lo, hi := buf.Range(); lo != 2 || hi != 9001 {
				t.Errorf("Range() = (%v, %v), want (2, 9001)", lo, hi)
			}
		})
	}
}

func TestNiftiInt16Rescale(t *testing.T) {
	hdr := testNiftiHeader(3, 1, 1, niftiTypeInt16, 16)
	hdr.SclSlope = 2
	hdr.SclInter = -1
	path := writeNifti(t, "ct.nii", hdr, []int16{-5, 0, 10}, binary.LittleEndian, false)

	buf, desc, err := NewNiftiSource().Open(path, volume.Descriptor{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if desc.BytesPerCell != volume.CellFloat32 {
		t.Fatalf("BytesPerCell = %d, want %d", desc.BytesPerCell, volume.CellFloat32)
	}
	want := []float32{-11, -1, 19}
	for i, v := range buf.Float32() {
		if v != want[i] {
			t.Errorf("sample %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestNiftiFirstTimepointOnly(t *testing.T) {
	hdr := testNiftiHeader(2, 2, 1, niftiTypeUint8, 8)
	hdr.Dim[0] = 4
	hdr.Dim[4] = 2 // two timepoints in the series
	data := []uint8{1, 2, 3, 4, 90, 90, 90, 90}
	path := writeNifti(t, "series.nii", hdr, data, binary.LittleEndian, false)

	buf, desc, err := NewNiftiSource().Open(path, volume.Descriptor{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if desc.Cells() != 4 || buf.Len() != 4 {
		t.Fatalf("Cells() = %d, Len() = %d, want 4 each", desc.Cells(), buf.Len())
	}
	if lo, hi := buf.Range(); lo != 1 || hi != 4 {
		t.Errorf("Range() = (%v, %v), want (1, 4) from the first timepoint", lo, hi)
	}
}

func TestNiftiRemapsIntensity(t *testing.T) {
	if !NewNiftiSource().RemapsIntensity() {
		t.Error("RemapsIntensity() = false, want true for CT numbers")
	}
}

func TestNiftiOpenErrors(t *testing.T) {
	t.Run("short data", func(t *testing.T) {
		hdr := testNiftiHeader(4, 4, 4, niftiTypeUint8, 8)
		path := writeNifti(t, "short.nii", hdr, make([]uint8, 63), binary.LittleEndian, false)
		_, _, err := NewNiftiSource().Open(path, volume.Descriptor{})
		if !errors.Is(err, volume.ErrSizeMismatch) {
			t.Fatalf("Open() error = %v, want ErrSizeMismatch", err)
		}
	})

	t.Run("bad magic", func(t *testing.T) {
		hdr := testNiftiHeader(2, 2, 2, niftiTypeUint8, 8)
		hdr.Magic = [4]byte{'x', 'x', 'x', 0}
		path := writeNifti(t, "bad.nii", hdr, make([]uint8, 8), binary.LittleEndian, false)
		_, _, err := NewNiftiSource().Open(path, volume.Descriptor{})
		if !errors.Is(err, errNiftiBadMagic) {
			t.Fatalf("Open() error = %v, want errNiftiBadMagic", err)
		}
	})

	t.Run("detached pair", func(t *testing.T) {
		hdr := testNiftiHeader(2, 2, 2, niftiTypeUint8, 8)
		hdr.Magic = [4]byte{'n', 'i', '1', 0}
		path := writeNifti(t, "pair.nii", hdr, nil, binary.LittleEndian, false)
		_, _, err := NewNiftiSource().Open(path, volume.Descriptor{})
		if !errors.Is(err, errNiftiDetachedPair) {
			t.Fatalf("Open() error = %v, want errNiftiDetachedPair", err)
		}
	})

	t.Run("no 3d extent", func(t *testing.T) {
		hdr := testNiftiHeader(2, 2, 0, niftiTypeUint8, 8)
		path := writeNifti(t, "flat.nii", hdr, nil, binary.LittleEndian, false)
		_, _, err := NewNiftiSource().Open(path, volume.Descriptor{})
		if !errors.Is(err, errNiftiBadDims) {
			t.Fatalf("Open() error = %v, want errNiftiBadDims", err)
		}
	})

	t.Run("unsupported datatype", func(t *testing.T) {
		hdr := testNiftiHeader(2, 1, 1, 64, 64) // float64
		path := writeNifti(t, "wide.nii", hdr, []float64{1, 2}, binary.LittleEndian, false)
		_, _, err := NewNiftiSource().Open(path, volume.Descriptor{})
		if !errors.Is(err, volume.ErrUnsupportedPrecision) {
			t.Fatalf("Open() error = %v, want ErrUnsupportedPrecision", err)
		}
	})

	t.Run("truncated header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stub.nii")
		if err := os.WriteFile(path, make([]byte, 100), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		_, _, err := NewNiftiSource().Open(path, volume.Descriptor{})
		if !errors.Is(err, errNiftiBadMagic) {
			t.Fatalf("Open() error = %v, want errNiftiBadMagic", err)
		}
	})
}
