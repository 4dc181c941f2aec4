package device

// DeviceBuilderOption is a functional option for configuring a Device via NewDevice.
type DeviceBuilderOption func(*deviceBuilder)

// deviceBuilder collects configuration applied by NewDevice before the
// backend is instantiated.
type deviceBuilder struct {
	status  StatusFunc
	verbose bool
	trace   bool
}

// WithStatusFunc is an option builder that sets the status sink the device
// reports diagnostics through. When unset, NewDevice installs
// NewLogStatusFunc with the configured verbosity.
//
// Parameters:
//   - status: the status sink
//
// Returns:
//   - DeviceBuilderOption: a function that applies the status sink option
func WithStatusFunc(status StatusFunc) DeviceBuilderOption {
	return func(b *deviceBuilder) {
		b.status = status
	}
}

// WithVerbose is an option builder that enables performance, info and debug
// output on the default status sink.
//
// Parameters:
//   - verbose: true to log informational device activity
//
// Returns:
//   - DeviceBuilderOption: a function that applies the verbosity option
func WithVerbose(verbose bool) DeviceBuilderOption {
	return func(b *deviceBuilder) {
		b.verbose = verbose
	}
}

// WithTrace is an option builder that wraps the device so every object
// creation, parameter set, commit and release is logged with the object's
// identity.
//
// Parameters:
//   - trace: true to enable call tracing
//
// Returns:
//   - DeviceBuilderOption: a function that applies the tracing option
func WithTrace(trace bool) DeviceBuilderOption {
	return func(b *deviceBuilder) {
		b.trace = trace
	}
}
