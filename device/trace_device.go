package device

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// traceDevice decorates another device and logs every object creation,
// parameter set, commit and release through the standard logger. Objects
// handed to the wrapped device are unwrapped first, so tracing never changes
// behavior.
type traceDevice struct {
	inner Device
	seq   atomic.Int64
}

var _ Device = &traceDevice{}

func newTraceDevice(inner Device) *traceDevice {
	return &traceDevice{inner: inner}
}

func (t *traceDevice) next(kind string) string {
	return fmt.Sprintf("%s#%d", kind, t.seq.Add(1))
}

func (t *traceDevice) logf(format string, args ...any) {
	log.Printf("[trace] "+format, args...)
}

// tracer is implemented by every trace wrapper so parameter values can be
// rendered by tag and unwrapped before delegation.
type tracer interface {
	traceTag() string
	unwrapObject() Object
}

func unwrap(value any) any {
	if tr, ok := value.(tracer); ok {
		return tr.unwrapObject()
	}
	return value
}

func traceValue(value any) string {
	if tr, ok := value.(tracer); ok {
		return tr.traceTag()
	}
	return fmt.Sprintf("%v", value)
}

type traceObject struct {
	dev   *traceDevice
	tag   string
	inner Object
}

func (o *traceObject) traceTag() string {
	return o.tag
}

func (o *traceObject) unwrapObject() Object {
	return o.inner
}

func (o *traceObject) SetParameter(name string, value any) {
	o.dev.logf("%s.SetParameter(%q, %s)", o.tag, name, traceValue(value))
	o.inner.SetParameter(name, unwrap(value))
}

func (o *traceObject) Commit() error {
	if err := o.inner.Commit(); err != nil {
		o.dev.logf("%s.Commit() error: %v", o.tag, err)
		return err
	}
	o.dev.logf("%s.Commit()", o.tag)
	return nil
}

func (o *traceObject) Release() {
	o.dev.logf("%s.Release()", o.tag)
	o.inner.Release()
}

type traceArray struct {
	traceObject
	arr Array
}

var _ Array = &traceArray{}

func (a *traceArray) ElementType() ElementType {
	return a.arr.ElementType()
}

func (a *traceArray) Len() int {
	return a.arr.Len()
}

type traceField struct {
	traceObject
	field Field
}

var _ Field = &traceField{}

func (f *traceField) Subtype() string {
	return f.field.Subtype()
}

type traceVolume struct {
	traceObject
	volume Volume
}

var _ Volume = &traceVolume{}

func (v *traceVolume) Subtype() string {
	return v.volume.Subtype()
}

func (v *traceVolume) ValueRange() (float32, float32) {
	return v.volume.ValueRange()
}

type traceWorld struct {
	traceObject
	world World
}

var _ World = &traceWorld{}

func (w *traceWorld) VolumeCount() int {
	return w.world.VolumeCount()
}

func (t *traceDevice) wrapArray(arr Array) *traceArray {
	return &traceArray{
		traceObject: traceObject{dev: t, tag: t.next("array"), inner: arr},
		arr:         arr,
	}
}

func (t *traceDevice) NewUFixed8Array3D(data []uint8, dimX, dimY, dimZ int) (Array, error) {
	arr, err := t.inner.NewUFixed8Array3D(data, dimX, dimY, dimZ)
	if err != nil {
		t.logf("NewUFixed8Array3D(%d elements, %dx%dx%d) error: %v", len(data), dimX, dimY, dimZ, err)
		return nil, err
	}
	wrapped := t.wrapArray(arr)
	t.logf("NewUFixed8Array3D(%d elements, %dx%dx%d) => %s", len(data), dimX, dimY, dimZ, wrapped.tag)
	return wrapped, nil
}

func (t *traceDevice) NewUFixed16Array3D(data []uint16, dimX, dimY, dimZ int) (Array, error) {
	arr, err := t.inner.NewUFixed16Array3D(data, dimX, dimY, dimZ)
	if err != nil {
		t.logf("NewUFixed16Array3D(%d elements, %dx%dx%d) error: %v", len(data), dimX, dimY, dimZ, err)
		return nil, err
	}
	wrapped := t.wrapArray(arr)
	t.logf("NewUFixed16Array3D(%d elements, %dx%dx%d) => %s", len(data), dimX, dimY, dimZ, wrapped.tag)
	return wrapped, nil
}

func (t *traceDevice) NewFloat32Array3D(data []float32, dimX, dimY, dimZ int) (Array, error) {
	arr, err := t.inner.NewFloat32Array3D(data, dimX, dimY, dimZ)
	if err != nil {
		t.logf("NewFloat32Array3D(%d elements, %dx%dx%d) error: %v", len(data), dimX, dimY, dimZ, err)
		return nil, err
	}
	wrapped := t.wrapArray(arr)
	t.logf("NewFloat32Array3D(%d elements, %dx%dx%d) => %s", len(data), dimX, dimY, dimZ, wrapped.tag)
	return wrapped, nil
}

func (t *traceDevice) NewColorArray1D(colors []mgl32.Vec3) (Array, error) {
	arr, err := t.inner.NewColorArray1D(colors)
	if err != nil {
		t.logf("NewColorArray1D(%d stops) error: %v", len(colors), err)
		return nil, err
	}
	wrapped := t.wrapArray(arr)
	t.logf("NewColorArray1D(%d stops) => %s", len(colors), wrapped.tag)
	return wrapped, nil
}

func (t *traceDevice) NewFloat32Array1D(values []float32) (Array, error) {
	arr, err := t.inner.NewFloat32Array1D(values)
	if err != nil {
		t.logf("NewFloat32Array1D(%d stops) error: %v", len(values), err)
		return nil, err
	}
	wrapped := t.wrapArray(arr)
	t.logf("NewFloat32Array1D(%d stops) => %s", len(values), wrapped.tag)
	return wrapped, nil
}

func (t *traceDevice) NewVolumeArray1D(volumes []Volume) (Array, error) {
	inner := make([]Volume, len(volumes))
	tags := make([]string, len(volumes))
	for i, v := range volumes {
		inner[i] = v
		tags[i] = fmt.Sprintf("%v", v)
		if tr, ok := v.(tracer); ok {
			inner[i] = tr.unwrapObject().(Volume)
			tags[i] = tr.traceTag()
		}
	}
	arr, err := t.inner.NewVolumeArray1D(inner)
	if err != nil {
		t.logf("NewVolumeArray1D(%s) error: %v", strings.Join(tags, ", "), err)
		return nil, err
	}
	wrapped := t.wrapArray(arr)
	t.logf("NewVolumeArray1D(%s) => %s", strings.Join(tags, ", "), wrapped.tag)
	return wrapped, nil
}

func (t *traceDevice) NewField(subtype string) (Field, error) {
	field, err := t.inner.NewField(subtype)
	if err != nil {
		t.logf("NewField(%q) error: %v", subtype, err)
		return nil, err
	}
	wrapped := &traceField{
		traceObject: traceObject{dev: t, tag: t.next("field"), inner: field},
		field:       field,
	}
	t.logf("NewField(%q) => %s", subtype, wrapped.tag)
	return wrapped, nil
}

func (t *traceDevice) NewVolume(subtype string) (Volume, error) {
	volume, err := t.inner.NewVolume(subtype)
	if err != nil {
		t.logf("NewVolume(%q) error: %v", subtype, err)
		return nil, err
	}
	wrapped := &traceVolume{
		traceObject: traceObject{dev: t, tag: t.next("volume"), inner: volume},
		volume:      volume,
	}
	t.logf("NewVolume(%q) => %s", subtype, wrapped.tag)
	return wrapped, nil
}

func (t *traceDevice) NewWorld() (World, error) {
	world, err := t.inner.NewWorld()
	if err != nil {
		t.logf("NewWorld() error: %v", err)
		return nil, err
	}
	wrapped := &traceWorld{
		traceObject: traceObject{dev: t, tag: t.next("world"), inner: world},
		world:       world,
	}
	t.logf("NewWorld() => %s", wrapped.tag)
	return wrapped, nil
}

func (t *traceDevice) Release() {
	t.logf("Release()")
	t.inner.Release()
}
