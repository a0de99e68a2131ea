package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/healthprobe/health"
)

// Metric instrument names.
const (
	CheckCountMetric    = "health.check.count"
	CheckDurationMetric = "health.check.duration"
)

// Metrics records per-check counters and latency histograms.
// It satisfies health.Recorder so the Runner can report to it directly.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: recording never panics and never fails the check.
type Metrics struct {
	count    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates the check instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	count, err := meter.Int64Counter(
		CheckCountMetric,
		metric.WithDescription("Number of health check executions"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		CheckDurationMetric,
		metric.WithDescription("Health check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{count: count, duration: duration}, nil
}

// MetricsFromObserver creates Metrics from the observer's meter.
func MetricsFromObserver(obs Observer) (*Metrics, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return NewMetrics(obs.Meter())
}

// RecordCheck records one finished check.
func (m *Metrics) RecordCheck(ctx context.Context, name string, duration time.Duration, healthy bool) {
	status := health.StatusHealthy
	if !healthy {
		status = health.StatusUnhealthy
	}
	opt := metric.WithAttributes(
		attribute.String("check", name),
		attribute.String("status", status.String()),
	)

	m.count.Add(ctx, 1, opt)
	m.duration.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

var _ health.Recorder = (*Metrics)(nil)
