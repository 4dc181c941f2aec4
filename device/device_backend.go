package device

import (
	"fmt"
	"strings"
)

// DeviceBackendType identifies the device implementation to use.
type DeviceBackendType int

const (
	// BackendTypeHost selects the in-memory reference device.
	BackendTypeHost DeviceBackendType = iota
	// BackendTypeWGPU selects the WebGPU device, which uploads committed
	// arrays into GPU storage buffers.
	BackendTypeWGPU
)

// ParseBackendType maps a backend name from the command line onto a
// DeviceBackendType.
//
// Parameters:
//   - name: the backend name, "host" or "wgpu" (case-insensitive)
//
// Returns:
//   - DeviceBackendType: the matching backend type
//   - error: error if the name is unknown
func ParseBackendType(name string) (DeviceBackendType, error) {
	switch strings.ToLower(name) {
	case "host", "default":
		return BackendTypeHost, nil
	case "wgpu", "webgpu":
		return BackendTypeWGPU, nil
	default:
		return 0, fmt.Errorf("unknown device backend %q", name)
	}
}

// NewDevice creates a Device of the given backend type with the provided
// options applied. When tracing is enabled the returned device wraps the
// backend and logs every object call.
//
// Parameters:
//   - backendType: the backend to instantiate (BackendTypeHost, BackendTypeWGPU)
//   - options: a variadic list of DeviceBuilderOption functions to configure the device
//
// Returns:
//   - Device: the configured device
//   - error: error if the backend cannot be initialized
func NewDevice(backendType DeviceBackendType, options ...DeviceBuilderOption) (Device, error) {
	b := &deviceBuilder{}
	for _, option := range options {
		option(b)
	}
	status := b.status
	if status == nil {
		status = NewLogStatusFunc(b.verbose)
	}

	var dev Device
	var err error
	switch backendType {
	case BackendTypeHost:
		dev = newHostDevice(status)
	case BackendTypeWGPU:
		dev, err = newWGPUDevice(status)
	default:
		err = fmt.Errorf("%w: unknown backend type %d", ErrAllocation, backendType)
	}
	if err != nil {
		return nil, err
	}

	if b.trace {
		dev = newTraceDevice(dev)
	}
	return dev, nil
}
