// Package observe provides observability primitives for health checks.
//
// It builds OpenTelemetry tracer and meter providers, a zap-backed
// structured logger and the prometheus registry served on /metrics.
// Middleware wraps health probes with a span and a log line, and Metrics
// implements health.Recorder.
package observe
