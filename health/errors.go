package health

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrCheckFailed indicates one or more checks reported unhealthy.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a health check timed out.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates a checker was not found.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrNotConfigured indicates a probe has nothing to check.
	// The Runner reports it as StatusNotConfigured.
	ErrNotConfigured = errors.New("health: not configured")
)

type notConfiguredError struct {
	message string
}

func (e *notConfiguredError) Error() string { return e.message }

func (e *notConfiguredError) Is(target error) bool { return target == ErrNotConfigured }

// NotConfiguredError returns an error matching ErrNotConfigured whose
// message is reported on the resulting not_connected result.
func NotConfiguredError(message string) error {
	return &notConfiguredError{message: message}
}

// FaultKind classifies why a probe failed.
type FaultKind int

const (
	// FaultUnexpected is any failure not covered by another kind.
	FaultUnexpected FaultKind = iota
	// FaultConnection means the dependency was unreachable or refused us.
	FaultConnection
	// FaultTimeout means the probe or the task exceeded its budget.
	FaultTimeout
	// FaultProtocol means the dependency answered, but with the wrong thing.
	FaultProtocol
)

// String returns the string representation of the fault kind.
func (k FaultKind) String() string {
	switch k {
	case FaultConnection:
		return "connection"
	case FaultTimeout:
		return "timeout"
	case FaultProtocol:
		return "protocol"
	default:
		return "unexpected"
	}
}

// Fault is a classified probe failure.
type Fault struct {
	Kind    FaultKind
	Message string
	Err     error
}

// Error returns the fault message, falling back to the wrapped error.
func (f *Fault) Error() string {
	switch {
	case f.Message != "" && f.Err != nil:
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	case f.Message != "":
		return f.Message
	case f.Err != nil:
		return f.Err.Error()
	default:
		return f.Kind.String() + " fault"
	}
}

// Unwrap returns the underlying error.
func (f *Fault) Unwrap() error {
	return f.Err
}

// ConnectionFault wraps err as a connection fault.
func ConnectionFault(message string, err error) error {
	return &Fault{Kind: FaultConnection, Message: message, Err: err}
}

// ProtocolFault wraps err as a protocol fault.
func ProtocolFault(message string, err error) error {
	return &Fault{Kind: FaultProtocol, Message: message, Err: err}
}

// TimeoutFault wraps err as a timeout fault.
func TimeoutFault(message string, err error) error {
	return &Fault{Kind: FaultTimeout, Message: message, Err: err}
}

// ClassifyFault maps an error to a FaultKind. Explicit Faults win;
// otherwise deadlines and network errors are recognised.
func ClassifyFault(err error) FaultKind {
	if err == nil {
		return FaultUnexpected
	}

	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrCheckTimeout) {
		return FaultTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return FaultTimeout
		}
		return FaultConnection
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FaultConnection
	}

	return FaultUnexpected
}
