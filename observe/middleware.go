package observe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/healthprobe/health"
)

// Middleware wraps health probes with tracing and logging.
// Metrics are recorded by the health.Runner, so Middleware does not count.
//
// Contract:
//   - Concurrency: WrapCheck returns a check that is safe for concurrent use.
//   - Context: the probe receives the span context.
//   - Errors: probe errors and panics are recorded and propagated unchanged.
type Middleware struct {
	tracer Tracer
	logger Logger
}

// NewMiddleware creates a new Middleware. Nil arguments fall back to no-ops.
func NewMiddleware(tracer Tracer, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewNoopTracer()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, logger: logger}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return NewMiddleware(NewTracer(obs.Tracer()), obs.Logger()), nil
}

// WrapCheck returns a copy of check whose probe runs inside a span.
func (m *Middleware) WrapCheck(check health.Check) health.Check {
	meta := CheckMeta{Name: check.Name(), Flag: check.Spec.EnabledFlag}
	probe := check.Probe
	logger := m.logger.WithCheck(meta.Name)

	check.Probe = func(ctx context.Context) (outcome health.Outcome, err error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		defer func() {
			if p := recover(); p != nil {
				m.tracer.EndSpan(span, fmt.Errorf("probe panicked: %v", p))
				logger.Error(ctx, "check panicked", Field{Key: "panic", Value: fmt.Sprint(p)})
				panic(p)
			}
		}()

		outcome, err = probe(ctx)
		duration := time.Since(start)
		m.tracer.EndSpan(span, outcomeError(outcome, err))

		fields := []Field{{Key: "duration_ms", Value: float64(duration) / float64(time.Millisecond)}}
		switch {
		case errors.Is(err, health.ErrNotConfigured):
			logger.Debug(ctx, "check not configured", Field{Key: "reason", Value: err.Error()})
		case err != nil:
			fields = append(fields, Field{Key: "error", Value: err.Error()}, Field{Key: "fault", Value: health.ClassifyFault(err).String()})
			logger.Warn(ctx, "check failed", fields...)
		default:
			logger.Debug(ctx, "check completed", fields...)
		}
		return outcome, err
	}
	return check
}

// WrapChecks wraps every check in checks.
func (m *Middleware) WrapChecks(checks []health.Check) []health.Check {
	out := make([]health.Check, len(checks))
	for i, c := range checks {
		out[i] = m.WrapCheck(c)
	}
	return out
}

// outcomeError reports the error a span should carry. A reported message
// counts as a failure even when the probe returned normally.
func outcomeError(outcome health.Outcome, err error) error {
	if err != nil {
		if errors.Is(err, health.ErrNotConfigured) {
			return nil
		}
		return err
	}
	if v, ok := outcome[health.MessageKey]; ok && v != nil {
		if msg := fmt.Sprint(v); msg != "" {
			return errors.New(msg)
		}
	}
	return nil
}
