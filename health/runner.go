package health

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Recorder is the metrics sink the Runner reports to.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Recording is append-only and must not panic.
type Recorder interface {
	RecordCheck(ctx context.Context, name string, duration time.Duration, healthy bool)
}

// Runner executes probes and normalizes every outcome into a Result.
// It is the single point where probe errors and panics are caught.
type Runner struct {
	recorder Recorder
}

// NewRunner creates a runner. A nil recorder disables metrics.
func NewRunner(recorder Recorder) *Runner {
	return &Runner{recorder: recorder}
}

// Run invokes the check's probe and classifies the outcome.
func (r *Runner) Run(ctx context.Context, check Check) (result Result) {
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			err := &Fault{Kind: FaultUnexpected, Message: fmt.Sprintf("probe panicked: %v", p)}
			result = Unhealthy(err.Error(), err)
			result.Timestamp = start
		}
		r.record(ctx, check.Name(), time.Since(start), result)
	}()

	outcome, err := check.Probe(ctx)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, ErrNotConfigured):
		result = NotConfigured(notConfiguredMessage(err))
	case err != nil:
		// Failure latency is reported as zero.
		result = Unhealthy(err.Error(), err)
	default:
		result = fromOutcome(outcome).WithDuration(elapsed)
	}
	result.Timestamp = start
	return result
}

func (r *Runner) record(ctx context.Context, name string, elapsed time.Duration, result Result) {
	if r.recorder == nil || result.Status == StatusNotConfigured {
		return
	}
	r.recorder.RecordCheck(ctx, name, elapsed, result.Status == StatusHealthy)
}

// fromOutcome builds a result from a normal probe return. Any non-empty
// message forces the check unhealthy.
func fromOutcome(outcome Outcome) Result {
	var details map[string]any
	var message string

	for k, v := range outcome {
		if k == MessageKey {
			if v != nil {
				message = fmt.Sprint(v)
			}
			continue
		}
		if details == nil {
			details = make(map[string]any, len(outcome))
		}
		details[k] = v
	}

	if message != "" {
		return Unhealthy(message, nil).WithDetails(details)
	}
	return Healthy().WithDetails(details)
}

func notConfiguredMessage(err error) string {
	var nc *notConfiguredError
	if errors.As(err, &nc) {
		return nc.message
	}
	return ""
}
