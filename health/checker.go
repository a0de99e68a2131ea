package health

import (
	"context"
	"encoding/json"
	"time"
)

// Status represents the health status of a dependency.
type Status int

const (
	// StatusHealthy indicates the probe round-trip succeeded.
	StatusHealthy Status = iota
	// StatusUnhealthy indicates the probe failed, timed out, or reported a problem.
	StatusUnhealthy
	// StatusNotConfigured indicates the check was skipped because it is
	// disabled or missing required settings. It is not a failure.
	StatusNotConfigured
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	case StatusNotConfigured:
		return "not_connected"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status as its string form.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome holds the extra fields a probe returns on a normal completion.
// The "message" key is reserved: a non-empty message marks the check unhealthy.
type Outcome map[string]any

// MessageKey is the reserved Outcome key carrying a problem description.
const MessageKey = "message"

// ProbeFunc performs a single round-trip against a dependency.
// Probes may return an error; the Runner normalizes it into a Result.
type ProbeFunc func(ctx context.Context) (Outcome, error)

// CheckSpec describes when a check is enabled.
type CheckSpec struct {
	// Name is the unique key of the check in the aggregate result.
	Name string

	// EnabledFlag is the configuration key that must be truthy.
	// Empty means the check is gated by RequiredSettings only.
	EnabledFlag string

	// RequiredSettings lists configuration keys that must exist.
	RequiredSettings []string
}

// Check combines a probe with its enablement rule.
type Check struct {
	Spec  CheckSpec
	Probe ProbeFunc

	// Always marks checks that bypass the Registry and run every invocation.
	Always bool
}

// Name returns the name of the check.
func (c Check) Name() string {
	return c.Spec.Name
}

// Result contains the outcome of a single check.
type Result struct {
	// Status is the health status.
	Status Status

	// Message describes the problem for unhealthy results.
	Message string

	// Details holds extra fields merged into the JSON form.
	Details map[string]any

	// Duration is the measured probe time. Zero when the probe raised.
	Duration time.Duration

	// Fault classifies raised errors and timeouts.
	Fault FaultKind

	// Timestamp is when the check was performed.
	Timestamp time.Time

	// Error is the error if the probe raised.
	Error error
}

// Healthy creates a healthy result.
func Healthy() Result {
	return Result{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string, err error) Result {
	r := Result{
		Status:    StatusUnhealthy,
		Message:   message,
		Error:     err,
		Timestamp: time.Now(),
	}
	if err != nil {
		r.Fault = ClassifyFault(err)
	}
	return r
}

// NotConfigured creates a result for a skipped check.
func NotConfigured(message string) Result {
	return Result{
		Status:    StatusNotConfigured,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithDetails adds details to a result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDuration sets the duration on a result.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// ResponseTimeMs returns the duration in fractional milliseconds.
func (r Result) ResponseTimeMs() float64 {
	return float64(r.Duration) / float64(time.Millisecond)
}

// MarshalJSON encodes the result as a flat object: status,
// response_time_ms, optional message and fault, then the details.
func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Details)+4)
	for k, v := range r.Details {
		out[k] = v
	}
	out["status"] = r.Status.String()
	if r.Status != StatusNotConfigured {
		out["response_time_ms"] = r.ResponseTimeMs()
	}
	if r.Message != "" {
		out[MessageKey] = r.Message
	}
	if r.Status == StatusUnhealthy && r.Error != nil {
		out["fault"] = r.Fault.String()
	}
	return json.Marshal(out)
}

// AggregateResult maps check names to their results for one invocation.
type AggregateResult map[string]Result

// Unhealthy returns the names of unhealthy checks.
func (a AggregateResult) Unhealthy() []string {
	var names []string
	for name, r := range a {
		if r.Status == StatusUnhealthy {
			names = append(names, name)
		}
	}
	return names
}
