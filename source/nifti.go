package source

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/HellmannM/anari-volume-viewer/volume"
)

// Common errors returned by the NIfTI parser
var (
	errNiftiBadMagic     = errors.New("not a NIFTI-1 file")
	errNiftiDetachedPair = errors.New("detached .hdr/.img pairs are not supported")
	errNiftiBadDims      = errors.New("NIFTI header carries no 3D extent")
)

// NIfTI-1 datatype codes for the sample formats this source reads.
const (
	niftiTypeUint8   = 2
	niftiTypeInt16   = 4
	niftiTypeFloat32 = 16
	niftiTypeUint16  = 512
)

const niftiHeaderSize = 348

// niftiHeader is the 348-byte NIfTI-1 header, read field by field in file
// order.
// Reference: https://nifti.nimh.nih.gov/pub/dist/src/niftilib/nifti1.h
type niftiHeader struct {
	SizeofHdr     int32
	DataTypeName  [10]byte
	DBName        [18]byte
	Extents       int32
	SessionError  int16
	Regular       byte
	DimInfo       byte
	Dim           [8]int16
	IntentP1      float32
	IntentP2      float32
	IntentP3      float32
	IntentCode    int16
	Datatype      int16
	Bitpix        int16
	SliceStart    int16
	Pixdim        [8]float32
	VoxOffset     float32
	SclSlope      float32
	SclInter      float32
	SliceEnd      int16
	SliceCode     byte
	XyztUnits     byte
	CalMax        float32
	CalMin        float32
	SliceDuration float32
	Toffset       float32
	Glmax         int32
	Glmin         int32
	Descrip       [80]byte
	AuxFile       [24]byte
	QformCode     int16
	SformCode     int16
	QuaternB      float32
	QuaternC      float32
	QuaternD      float32
	QoffsetX      float32
	QoffsetY      float32
	QoffsetZ      float32
	SrowX         [4]float32
	SrowY         [4]float32
	SrowZ         [4]float32
	IntentName    [16]byte
	Magic         [4]byte
}

// niftiSource reads single-file NIfTI-1 volumes, gzipped or not. The format
// is self-describing: dimensions and element type come from the header and
// any externally supplied descriptor is ignored.
type niftiSource struct{}

var _ Source = &niftiSource{}

// NewNiftiSource creates the NIfTI source.
func NewNiftiSource() Source {
	return &niftiSource{}
}

// Name returns the short format name used in log output.
func (s *niftiSource) Name() string {
	return "nifti"
}

// Matches reports whether the path has a NIfTI extension.
func (s *niftiSource) Matches(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".nii") || strings.HasSuffix(lower, ".nii.gz")
}

// RemapsIntensity reports true: NIfTI samples are CT numbers, not directly
// renderable intensities, so the pipeline runs them through the active
// attenuation table.
func (s *niftiSource) RemapsIntensity() bool {
	return true
}

// Open reads the header and the first volume of the series. Signed 16-bit
// data and any data with a scl_slope/scl_inter rescale are widened to
// float32; unscaled uint8/uint16 data keeps its native width.
func (s *niftiSource) Open(path string, _ volume.Descriptor) (*volume.Buffer, volume.Descriptor, error) {
	var desc volume.Descriptor

	f, err := os.Open(path)
	if err != nil {
		return nil, desc, fmt.Errorf("nifti source: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, desc, fmt.Errorf("nifti source %q: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	hdr, order, err := readNiftiHeader(r)
	if err != nil {
		return nil, desc, fmt.Errorf("nifti source %q: %w", path, err)
	}

	if hdr.Dim[0] < 3 || hdr.Dim[1] <= 0 || hdr.Dim[2] <= 0 || hdr.Dim[3] <= 0 {
		return nil, desc, fmt.Errorf("nifti source %q: %w", path, errNiftiBadDims)
	}
	desc.DimX = int(hdr.Dim[1])
	desc.DimY = int(hdr.Dim[2])
	desc.DimZ = int(hdr.Dim[3])

	// Reading exactly one volume's worth of samples picks the first
	// timepoint of a 4D series.
	skip := int64(hdr.VoxOffset) - niftiHeaderSize
	if skip < 0 {
		return nil, desc, fmt.Errorf("nifti source %q: vox_offset %v inside header", path, hdr.VoxOffset)
	}
	if _, err := io.CopyN(io.Discard, r, skip); err != nil {
		return nil, desc, fmt.Errorf("nifti source %q: %w: %v", path, volume.ErrSizeMismatch, err)
	}

	buf, err := readNiftiSamples(r, hdr, desc.Cells(), order)
	if err != nil {
		return nil, desc, fmt.Errorf("nifti source %q: %w", path, err)
	}
	desc.BytesPerCell = buf.BytesPerCell()
	return buf, desc, nil
}

// readNiftiHeader decodes the fixed header, detecting byte order from the
// sizeof_hdr field and checking the magic for a single-file layout.
func readNiftiHeader(r io.Reader) (niftiHeader, binary.ByteOrder, error) {
	raw := make([]byte, niftiHeaderSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return niftiHeader{}, nil, fmt.Errorf("%w: header truncated: %v", errNiftiBadMagic, err)
	}

	var hdr niftiHeader
	var order binary.ByteOrder = binary.LittleEndian
	if err := binary.Read(bytes.NewReader(raw), order, &hdr); err != nil {
		return niftiHeader{}, nil, fmt.Errorf("failed to read NIFTI header: %w", err)
	}
	if hdr.SizeofHdr != niftiHeaderSize {
		order = binary.BigEndian
		if err := binary.Read(bytes.NewReader(raw), order, &hdr); err != nil {
			return niftiHeader{}, nil, fmt.Errorf("failed to read NIFTI header: %w", err)
		}
		if hdr.SizeofHdr != niftiHeaderSize {
			return niftiHeader{}, nil, errNiftiBadMagic
		}
	}

	magic := string(hdr.Magic[:3])
	switch {
	case magic == "n+1":
	case magic == "ni1":
		return niftiHeader{}, nil, errNiftiDetachedPair
	default:
		return niftiHeader{}, nil, errNiftiBadMagic
	}
	return hdr, order, nil
}

// readNiftiSamples decodes count samples in the header's element type,
// applying the header's linear rescale where one is set.
func readNiftiSamples(r io.Reader, hdr niftiHeader, count int, order binary.ByteOrder) (*volume.Buffer, error) {
	slope, inter := float64(hdr.SclSlope), float64(hdr.SclInter)
	if slope == 0 {
		slope, inter = 1, 0
	}
	rescaled := slope != 1 || inter != 0

	switch hdr.Datatype {
	case niftiTypeUint8:
		samples := make([]uint8, count)
		if _, err := io.ReadFull(r, samples); err != nil {
			return nil, sizeError(count, 1, err)
		}
		if !rescaled {
			return volume.NewUint8Buffer(samples), nil
		}
		out := make([]float32, count)
		for i, v := range samples {
			out[i] = float32(slope*float64(v) + inter)
		}
		return volume.NewFloat32Buffer(out), nil
	case niftiTypeUint16:
		samples := make([]uint16, count)
		if err := binary.Read(r, order, samples); err != nil {
			return nil, sizeError(count, 2, err)
		}
		if !rescaled {
			return volume.NewUint16Buffer(samples), nil
		}
		out := make([]float32, count)
		for i, v := range samples {
			out[i] = float32(slope*float64(v) + inter)
		}
		return volume.NewFloat32Buffer(out), nil
	case niftiTypeInt16:
		// Signed samples have no unsigned fixed-point representation on the
		// device, so they always widen to float32.
		samples := make([]int16, count)
		if err := binary.Read(r, order, samples); err != nil {
			return nil, sizeError(count, 2, err)
		}
		out := make([]float32, count)
		for i, v := range samples {
			out[i] = float32(slope*float64(v) + inter)
		}
		return volume.NewFloat32Buffer(out), nil
	case niftiTypeFloat32:
		samples := make([]float32, count)
		if err := binary.Read(r, order, samples); err != nil {
			return nil, sizeError(count, 4, err)
		}
		if rescaled {
			for i, v := range samples {
				samples[i] = float32(slope*float64(v) + inter)
			}
		}
		return volume.NewFloat32Buffer(samples), nil
	default:
		return nil, fmt.Errorf("%w: NIFTI datatype %d", volume.ErrUnsupportedPrecision, hdr.Datatype)
	}
}
