// package device models the retained-mode rendering boundary the viewer
// drives: typed arrays, spatial fields, transfer-function volumes and the
// world that displays them. Objects follow a set-parameter/commit/release
// protocol; committing is the point where the device validates an object and
// it becomes legal for other objects to reference it.
package device

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrAllocation is returned when a device cannot create an object or its
// backing storage.
var ErrAllocation = errors.New("device allocation failed")

// ElementType identifies the element layout of a device array.
type ElementType int

const (
	// ElementUFixed8 is an 8-bit unsigned fixed-point scalar.
	ElementUFixed8 ElementType = iota
	// ElementUFixed16 is a 16-bit unsigned fixed-point scalar.
	ElementUFixed16
	// ElementFloat32 is a 32-bit float scalar.
	ElementFloat32
	// ElementFloat32Vec3 is a packed three-component float vector.
	ElementFloat32Vec3
	// ElementVolume is a reference to a committed volume object.
	ElementVolume
)

// String returns the element type's wire name.
func (e ElementType) String() string {
	switch e {
	case ElementUFixed8:
		return "ufixed8"
	case ElementUFixed16:
		return "ufixed16"
	case ElementFloat32:
		return "float32"
	case ElementFloat32Vec3:
		return "float32vec3"
	default:
		return "volume"
	}
}

// Object is the protocol shared by every device-resident handle.
type Object interface {
	// SetParameter stores a named parameter on the object. Object-valued
	// parameters are retained by the receiver, and a previously stored
	// object under the same name is released. Parameters become visible to
	// the renderer at the next Commit.
	//
	// Parameters:
	//   - name: the parameter name
	//   - value: the parameter value
	SetParameter(name string, value any)

	// Commit validates the object's parameters and publishes them to the
	// renderer-visible state. An object must be committed before other
	// objects reference it.
	//
	// Returns:
	//   - error: error if a required parameter is missing or invalid
	Commit() error

	// Release drops one reference to the object. When the last reference is
	// dropped the object's storage is freed and its retained parameter
	// objects are released in turn.
	Release()
}

// Array is a device-resident typed array.
type Array interface {
	Object

	// ElementType reports the element layout the array was created with.
	//
	// Returns:
	//   - ElementType: the element type
	ElementType() ElementType

	// Len reports the array's element count.
	//
	// Returns:
	//   - int: the number of elements
	Len() int
}

// Field is a device-resident spatial field. The only subtype the viewer
// creates is "structuredRegular", a regularly gridded scalar array fed by a
// 3D data array parameter.
type Field interface {
	Object

	// Subtype reports the field subtype the object was created with.
	//
	// Returns:
	//   - string: the subtype, e.g. "structuredRegular"
	Subtype() string
}

// Volume is a device-resident render volume. The only subtype the viewer
// creates is "transferFunction1D", which maps a field through a color and
// opacity ramp over a declared value range.
type Volume interface {
	Object

	// Subtype reports the volume subtype the object was created with.
	//
	// Returns:
	//   - string: the subtype, e.g. "transferFunction1D"
	Subtype() string

	// ValueRange reports the committed scalar range the transfer function
	// spans. Before a range is committed it reports the device default
	// (0, 1).
	//
	// Returns:
	//   - float32: the committed range minimum
	//   - float32: the committed range maximum
	ValueRange() (float32, float32)
}

// World is the top-level container the renderer consumes.
type World interface {
	Object

	// VolumeCount reports how many volumes the committed world references.
	//
	// Returns:
	//   - int: the number of volumes visible to the renderer
	VolumeCount() int
}

// Device creates device-resident objects. Implementations are selected by
// backend type via NewDevice.
type Device interface {
	// NewUFixed8Array3D uploads an 8-bit scalar grid as a 3D array.
	//
	// Parameters:
	//   - data: the samples, len must equal dimX*dimY*dimZ
	//   - dimX, dimY, dimZ: the grid dimensions
	//
	// Returns:
	//   - Array: the created array
	//   - error: ErrAllocation if the array cannot be created
	NewUFixed8Array3D(data []uint8, dimX, dimY, dimZ int) (Array, error)

	// NewUFixed16Array3D uploads a 16-bit scalar grid as a 3D array.
	//
	// Parameters:
	//   - data: the samples, len must equal dimX*dimY*dimZ
	//   - dimX, dimY, dimZ: the grid dimensions
	//
	// Returns:
	//   - Array: the created array
	//   - error: ErrAllocation if the array cannot be created
	NewUFixed16Array3D(data []uint16, dimX, dimY, dimZ int) (Array, error)

	// NewFloat32Array3D uploads a 32-bit float scalar grid as a 3D array.
	//
	// Parameters:
	//   - data: the samples, len must equal dimX*dimY*dimZ
	//   - dimX, dimY, dimZ: the grid dimensions
	//
	// Returns:
	//   - Array: the created array
	//   - error: ErrAllocation if the array cannot be created
	NewFloat32Array3D(data []float32, dimX, dimY, dimZ int) (Array, error)

	// NewColorArray1D uploads a color ramp as a 1D array of float vectors.
	//
	// Parameters:
	//   - colors: the ramp stops, must be non-empty
	//
	// Returns:
	//   - Array: the created array
	//   - error: ErrAllocation if the array cannot be created
	NewColorArray1D(colors []mgl32.Vec3) (Array, error)

	// NewFloat32Array1D uploads a scalar ramp as a 1D float array.
	//
	// Parameters:
	//   - values: the ramp stops, must be non-empty
	//
	// Returns:
	//   - Array: the created array
	//   - error: ErrAllocation if the array cannot be created
	NewFloat32Array1D(values []float32) (Array, error)

	// NewVolumeArray1D wraps committed volumes as a 1D object array. The
	// array retains each volume; releasing the array releases them.
	//
	// Parameters:
	//   - volumes: the volumes to reference, must be non-empty
	//
	// Returns:
	//   - Array: the created array
	//   - error: ErrAllocation if the array cannot be created
	NewVolumeArray1D(volumes []Volume) (Array, error)

	// NewField creates an uncommitted spatial field of the given subtype.
	//
	// Parameters:
	//   - subtype: the field subtype, "structuredRegular"
	//
	// Returns:
	//   - Field: the created field
	//   - error: ErrAllocation if the subtype is unknown
	NewField(subtype string) (Field, error)

	// NewVolume creates an uncommitted volume of the given subtype.
	//
	// Parameters:
	//   - subtype: the volume subtype, "transferFunction1D"
	//
	// Returns:
	//   - Volume: the created volume
	//   - error: ErrAllocation if the subtype is unknown
	NewVolume(subtype string) (Volume, error)

	// NewWorld creates an uncommitted world.
	//
	// Returns:
	//   - World: the created world
	//   - error: ErrAllocation if the world cannot be created
	NewWorld() (World, error)

	// Release tears the device down. Live objects still tracked by the
	// device are reported through the status sink as leaks.
	Release()
}
