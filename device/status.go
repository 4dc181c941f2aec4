package device

import (
	"log"
	"os"
)

// Severity classifies a status message reported by a device.
type Severity int

const (
	// SeverityFatalError means the device cannot continue. The default
	// status sink terminates the process after logging it.
	SeverityFatalError Severity = iota
	// SeverityError means an operation failed.
	SeverityError
	// SeverityWarning flags suspicious but non-fatal behavior, such as
	// releasing an object more often than it was retained.
	SeverityWarning
	// SeverityPerformance flags a slow path.
	SeverityPerformance
	// SeverityInfo reports routine device activity.
	SeverityInfo
	// SeverityDebug reports per-call detail.
	SeverityDebug
)

// String returns the fixed-width tag used in log output.
func (s Severity) String() string {
	switch s {
	case SeverityFatalError:
		return "FATAL"
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARN "
	case SeverityPerformance:
		return "PERF "
	case SeverityInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

// StatusFunc receives diagnostic messages from a device. Implementations
// must not call back into the device.
type StatusFunc func(severity Severity, message string)

// NewLogStatusFunc returns a StatusFunc that writes messages through the
// standard logger. Fatal errors terminate the process after logging, errors
// and warnings always print, and performance, info and debug messages print
// only when verbose is true.
//
// Parameters:
//   - verbose: enables performance, info and debug output
//
// Returns:
//   - StatusFunc: the logging status sink
func NewLogStatusFunc(verbose bool) StatusFunc {
	return func(severity Severity, message string) {
		switch severity {
		case SeverityFatalError:
			log.Printf("[%s] %s", severity, message)
			os.Exit(1)
		case SeverityError, SeverityWarning:
			log.Printf("[%s] %s", severity, message)
		default:
			if verbose {
				log.Printf("[%s] %s", severity, message)
			}
		}
	}
}
