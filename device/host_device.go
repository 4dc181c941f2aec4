package device

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// hostDevice is the in-memory reference implementation of Device. Objects
// are reference-counted parameter holders and arrays keep their data on the
// heap, so the whole pipeline can run and be tested without a GPU. Object
// calls are driven from the single orchestration goroutine; only the
// device-wide counters are guarded.
type hostDevice struct {
	mu     *sync.Mutex
	status StatusFunc
	nextID int
	live   int
}

var _ Device = &hostDevice{}

func newHostDevice(status StatusFunc) *hostDevice {
	return &hostDevice{
		mu:     &sync.Mutex{},
		status: status,
	}
}

func (d *hostDevice) track() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.live++
	return d.nextID
}

func (d *hostDevice) untrack() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live--
}

func (d *hostDevice) statusf(severity Severity, format string, args ...any) {
	if d.status != nil {
		d.status(severity, fmt.Sprintf(format, args...))
	}
}

// hostObject implements the set/commit/release protocol shared by every host
// handle. Object-valued parameters are retained when set and released when
// overwritten or when the owner's last reference drops.
type hostObject struct {
	dev     *hostDevice
	id      int
	kind    string
	subtype string
	refs    int

	params    map[string]any
	committed map[string]any

	// validate is the commit-time check installed by the concrete type.
	validate func() error
	// onFree runs extra cleanup when the last reference drops.
	onFree func()
}

func (d *hostDevice) newObject(kind, subtype string) hostObject {
	return hostObject{
		dev:     d,
		id:      d.track(),
		kind:    kind,
		subtype: subtype,
		refs:    1,
		params:  make(map[string]any),
	}
}

func (o *hostObject) label() string {
	if o.subtype != "" {
		return fmt.Sprintf("%s %s#%d", o.subtype, o.kind, o.id)
	}
	return fmt.Sprintf("%s#%d", o.kind, o.id)
}

// retainer is implemented by every host handle through the embedded
// hostObject. Values passed to SetParameter are retained through it.
type retainer interface {
	retain()
}

func (o *hostObject) retain() {
	o.refs++
}

func retain(obj Object) {
	if r, ok := obj.(retainer); ok {
		r.retain()
	}
}

func (o *hostObject) SetParameter(name string, value any) {
	if o.refs <= 0 {
		o.dev.statusf(SeverityError, "%s: parameter %q set on a released object", o.label(), name)
		return
	}
	if prev, ok := o.params[name].(Object); ok {
		prev.Release()
	}
	if obj, ok := value.(Object); ok {
		retain(obj)
	}
	o.params[name] = value
	o.dev.statusf(SeverityDebug, "%s: parameter %q set", o.label(), name)
}

func (o *hostObject) Commit() error {
	if o.refs <= 0 {
		err := fmt.Errorf("%s committed after release", o.label())
		o.dev.statusf(SeverityError, "%v", err)
		return err
	}
	if o.validate != nil {
		if err := o.validate(); err != nil {
			o.dev.statusf(SeverityError, "%s: commit rejected: %v", o.label(), err)
			return err
		}
	}
	o.committed = make(map[string]any, len(o.params))
	for k, v := range o.params {
		o.committed[k] = v
	}
	o.dev.statusf(SeverityInfo, "%s committed", o.label())
	return nil
}

func (o *hostObject) Release() {
	if o.refs <= 0 {
		o.dev.statusf(SeverityWarning, "%s released more often than retained", o.label())
		return
	}
	o.refs--
	if o.refs > 0 {
		o.dev.statusf(SeverityDebug, "%s released, %d reference(s) remain", o.label(), o.refs)
		return
	}
	for _, v := range o.params {
		if obj, ok := v.(Object); ok {
			obj.Release()
		}
	}
	o.params = nil
	if o.onFree != nil {
		o.onFree()
		o.onFree = nil
	}
	o.dev.untrack()
	o.dev.statusf(SeverityDebug, "%s destroyed", o.label())
}

// hostArray is a typed array kept in host memory. Object arrays retain their
// elements for the array's lifetime.
type hostArray struct {
	hostObject
	elem ElementType
	n    int
	dims [3]int
	data any
}

var _ Array = &hostArray{}

func (a *hostArray) ElementType() ElementType {
	return a.elem
}

func (a *hostArray) Len() int {
	return a.n
}

func check3D(n, dimX, dimY, dimZ int) error {
	if dimX <= 0 || dimY <= 0 || dimZ <= 0 {
		return fmt.Errorf("%w: invalid 3D array dims %dx%dx%d", ErrAllocation, dimX, dimY, dimZ)
	}
	if n != dimX*dimY*dimZ {
		return fmt.Errorf("%w: 3D array wants %d elements, got %d", ErrAllocation, dimX*dimY*dimZ, n)
	}
	return nil
}

func check1D(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: 1D array must not be empty", ErrAllocation)
	}
	return nil
}

func (d *hostDevice) new3DArray(elem ElementType, n, dimX, dimY, dimZ int, data any) (Array, error) {
	if err := check3D(n, dimX, dimY, dimZ); err != nil {
		d.statusf(SeverityError, "%s array rejected: %v", elem, err)
		return nil, err
	}
	a := &hostArray{
		hostObject: d.newObject("array3d", ""),
		elem:       elem,
		n:          n,
		dims:       [3]int{dimX, dimY, dimZ},
		data:       data,
	}
	d.statusf(SeverityInfo, "%s created (%s, %dx%dx%d)", a.label(), elem, dimX, dimY, dimZ)
	return a, nil
}

func (d *hostDevice) NewUFixed8Array3D(data []uint8, dimX, dimY, dimZ int) (Array, error) {
	return d.new3DArray(ElementUFixed8, len(data), dimX, dimY, dimZ, data)
}

func (d *hostDevice) NewUFixed16Array3D(data []uint16, dimX, dimY, dimZ int) (Array, error) {
	return d.new3DArray(ElementUFixed16, len(data), dimX, dimY, dimZ, data)
}

func (d *hostDevice) NewFloat32Array3D(data []float32, dimX, dimY, dimZ int) (Array, error) {
	return d.new3DArray(ElementFloat32, len(data), dimX, dimY, dimZ, data)
}

func (d *hostDevice) NewColorArray1D(colors []mgl32.Vec3) (Array, error) {
	if err := check1D(len(colors)); err != nil {
		d.statusf(SeverityError, "color array rejected: %v", err)
		return nil, err
	}
	a := &hostArray{
		hostObject: d.newObject("array1d", ""),
		elem:       ElementFloat32Vec3,
		n:          len(colors),
		data:       colors,
	}
	d.statusf(SeverityInfo, "%s created (%s, %d elements)", a.label(), a.elem, a.n)
	return a, nil
}

func (d *hostDevice) NewFloat32Array1D(values []float32) (Array, error) {
	if err := check1D(len(values)); err != nil {
		d.statusf(SeverityError, "float32 array rejected: %v", err)
		return nil, err
	}
	a := &hostArray{
		hostObject: d.newObject("array1d", ""),
		elem:       ElementFloat32,
		n:          len(values),
		data:       values,
	}
	d.statusf(SeverityInfo, "%s created (%s, %d elements)", a.label(), a.elem, a.n)
	return a, nil
}

func (d *hostDevice) NewVolumeArray1D(volumes []Volume) (Array, error) {
	if err := check1D(len(volumes)); err != nil {
		d.statusf(SeverityError, "volume array rejected: %v", err)
		return nil, err
	}
	elems := make([]Volume, len(volumes))
	copy(elems, volumes)
	for _, v := range elems {
		retain(v)
	}
	a := &hostArray{
		hostObject: d.newObject("array1d", ""),
		elem:       ElementVolume,
		n:          len(elems),
		data:       elems,
	}
	a.onFree = func() {
		for _, v := range elems {
			v.Release()
		}
	}
	d.statusf(SeverityInfo, "%s created (%s, %d elements)", a.label(), a.elem, a.n)
	return a, nil
}

// hostField is a spatial field parameter holder.
type hostField struct {
	hostObject
}

var _ Field = &hostField{}

func (f *hostField) Subtype() string {
	return f.subtype
}

func (f *hostField) validateCommit() error {
	arr, ok := f.params["data"].(Array)
	if !ok {
		return fmt.Errorf("field requires a data array parameter")
	}
	switch arr.ElementType() {
	case ElementUFixed8, ElementUFixed16, ElementFloat32:
		return nil
	default:
		return fmt.Errorf("field data array has element type %s, want a scalar type", arr.ElementType())
	}
}

func (d *hostDevice) NewField(subtype string) (Field, error) {
	if subtype != "structuredRegular" {
		err := fmt.Errorf("%w: unknown field subtype %q", ErrAllocation, subtype)
		d.statusf(SeverityError, "%v", err)
		return nil, err
	}
	f := &hostField{hostObject: d.newObject("field", subtype)}
	f.validate = f.validateCommit
	d.statusf(SeverityInfo, "%s created", f.label())
	return f, nil
}

// hostVolume is a transfer-function volume parameter holder.
type hostVolume struct {
	hostObject
}

var _ Volume = &hostVolume{}

func (v *hostVolume) Subtype() string {
	return v.subtype
}

func (v *hostVolume) ValueRange() (float32, float32) {
	if r, ok := v.committed["valueRange"].([2]float32); ok {
		return r[0], r[1]
	}
	return 0, 1
}

func (v *hostVolume) validateCommit() error {
	if _, ok := v.params["field"].(Field); !ok {
		return fmt.Errorf("volume requires a field parameter")
	}
	if _, ok := v.params["value"].(Field); !ok {
		return fmt.Errorf("volume requires a value parameter")
	}
	return nil
}

func (d *hostDevice) NewVolume(subtype string) (Volume, error) {
	if subtype != "transferFunction1D" {
		err := fmt.Errorf("%w: unknown volume subtype %q", ErrAllocation, subtype)
		d.statusf(SeverityError, "%v", err)
		return nil, err
	}
	v := &hostVolume{hostObject: d.newObject("volume", subtype)}
	v.validate = v.validateCommit
	d.statusf(SeverityInfo, "%s created", v.label())
	return v, nil
}

// hostWorld is the top-level container parameter holder.
type hostWorld struct {
	hostObject
}

var _ World = &hostWorld{}

func (w *hostWorld) VolumeCount() int {
	if arr, ok := w.committed["volume"].(Array); ok {
		return arr.Len()
	}
	return 0
}

func (w *hostWorld) validateCommit() error {
	if v, ok := w.params["volume"]; ok {
		arr, isArr := v.(Array)
		if !isArr || arr.ElementType() != ElementVolume {
			return fmt.Errorf("world volume parameter must be a volume array")
		}
	}
	return nil
}

func (d *hostDevice) NewWorld() (World, error) {
	w := &hostWorld{hostObject: d.newObject("world", "")}
	w.validate = w.validateCommit
	d.statusf(SeverityInfo, "%s created", w.label())
	return w, nil
}

func (d *hostDevice) Release() {
	d.mu.Lock()
	live := d.live
	d.mu.Unlock()
	if live > 0 {
		d.statusf(SeverityWarning, "device released with %d live object(s)", live)
		return
	}
	d.statusf(SeverityInfo, "device released")
}
