package device

import (
	"fmt"

	"github.com/HellmannM/anari-volume-viewer/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// wgpuDevice stores committed array data in GPU storage buffers. Fields,
// volumes and worlds stay parameter holders shared with the host backend;
// only the array constructors differ.
type wgpuDevice struct {
	*hostDevice

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

var _ Device = &wgpuDevice{}

func newWGPUDevice(status StatusFunc) (*wgpuDevice, error) {
	w := &wgpuDevice{
		hostDevice: newHostDevice(status),
		instance:   wgpu.CreateInstance(nil),
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: no suitable adapter: %v", ErrAllocation, err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Volume Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: device request failed: %v", ErrAllocation, err)
	}
	w.device = d
	w.queue = d.GetQueue()

	w.statusf(SeverityInfo, "wgpu device initialized")
	return w, nil
}

// wgpuArray keeps its element data in a GPU storage buffer. The buffer is
// freed when the array's last reference drops.
type wgpuArray struct {
	hostObject
	elem ElementType
	n    int
	dims [3]int
	buf  *wgpu.Buffer
}

var _ Array = &wgpuArray{}

func (a *wgpuArray) ElementType() ElementType {
	return a.elem
}

func (a *wgpuArray) Len() int {
	return a.n
}

// uploadBuffer creates a storage buffer for data and writes it through the
// queue. Buffer sizes must be a multiple of 4 bytes, so narrow data is
// padded before upload.
func (w *wgpuDevice) uploadBuffer(label string, data []byte) (*wgpu.Buffer, error) {
	padded := data
	if rem := len(padded) % 4; rem != 0 {
		padded = make([]byte, len(data)+4-rem)
		copy(padded, data)
	}
	buf, err := w.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(padded)),
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAllocation, label, err)
	}
	w.queue.WriteBuffer(buf, 0, padded)
	return buf, nil
}

func (w *wgpuDevice) new3DArray(elem ElementType, data []byte, n, dimX, dimY, dimZ int) (Array, error) {
	if err := check3D(n, dimX, dimY, dimZ); err != nil {
		w.statusf(SeverityError, "%s array rejected: %v", elem, err)
		return nil, err
	}
	obj := w.newObject("array3d", "")
	buf, err := w.uploadBuffer(fmt.Sprintf("array3d-%d-%s", obj.id, elem), data)
	if err != nil {
		w.untrack()
		w.statusf(SeverityError, "%v", err)
		return nil, err
	}
	a := &wgpuArray{hostObject: obj, elem: elem, n: n, dims: [3]int{dimX, dimY, dimZ}, buf: buf}
	a.onFree = func() { buf.Release() }
	w.statusf(SeverityInfo, "%s created (%s, %dx%dx%d, %d bytes on device)",
		a.label(), elem, dimX, dimY, dimZ, buf.GetSize())
	return a, nil
}

func (w *wgpuDevice) new1DArray(elem ElementType, data []byte, n int) (Array, error) {
	if err := check1D(n); err != nil {
		w.statusf(SeverityError, "%s array rejected: %v", elem, err)
		return nil, err
	}
	obj := w.newObject("array1d", "")
	buf, err := w.uploadBuffer(fmt.Sprintf("array1d-%d-%s", obj.id, elem), data)
	if err != nil {
		w.untrack()
		w.statusf(SeverityError, "%v", err)
		return nil, err
	}
	a := &wgpuArray{hostObject: obj, elem: elem, n: n, buf: buf}
	a.onFree = func() { buf.Release() }
	w.statusf(SeverityInfo, "%s created (%s, %d elements, %d bytes on device)",
		a.label(), elem, n, buf.GetSize())
	return a, nil
}

func (w *wgpuDevice) NewUFixed8Array3D(data []uint8, dimX, dimY, dimZ int) (Array, error) {
	return w.new3DArray(ElementUFixed8, data, len(data), dimX, dimY, dimZ)
}

func (w *wgpuDevice) NewUFixed16Array3D(data []uint16, dimX, dimY, dimZ int) (Array, error) {
	return w.new3DArray(ElementUFixed16, common.SliceToBytes(data), len(data), dimX, dimY, dimZ)
}

func (w *wgpuDevice) NewFloat32Array3D(data []float32, dimX, dimY, dimZ int) (Array, error) {
	return w.new3DArray(ElementFloat32, common.SliceToBytes(data), len(data), dimX, dimY, dimZ)
}

func (w *wgpuDevice) NewColorArray1D(colors []mgl32.Vec3) (Array, error) {
	return w.new1DArray(ElementFloat32Vec3, common.SliceToBytes(colors), len(colors))
}

func (w *wgpuDevice) NewFloat32Array1D(values []float32) (Array, error) {
	return w.new1DArray(ElementFloat32, common.SliceToBytes(values), len(values))
}
