// Package health runs dependency health checks and aggregates their results.
//
// A Check pairs a ProbeFunc, which performs one round-trip against a
// dependency, with a CheckSpec describing when it is enabled. The Registry
// evaluates specs against configuration; the Runner times a probe and
// normalizes its outcome, error or panic into a Result; the Aggregator
// fans enabled checks out under a bounded worker pool and a per-check
// timeout.
//
// # Statuses
//
// A Result is healthy, unhealthy, or not_connected. A probe that returns an
// Outcome with a non-empty "message" is unhealthy even though it did not
// fail. A probe that returns an error is unhealthy with the error text as
// its message and a FaultKind classifying it. Disabled checks and probes
// returning ErrNotConfigured are not_connected.
//
// # Basic Usage
//
//	registry := health.NewRegistry(settings)
//	agg := health.NewAggregator(registry, health.AggregatorConfig{
//	    Timeout:       10 * time.Second,
//	    MaxConcurrent: 10,
//	})
//	agg.Register(health.SystemChecks(health.SystemConfig{})...)
//	agg.Register(health.Check{
//	    Spec: health.CheckSpec{
//	        Name:             "redis",
//	        EnabledFlag:      "ENABLE_REDIS_CHECK",
//	        RequiredSettings: []string{"REDIS_HOST"},
//	    },
//	    Probe: pingRedis,
//	})
//
//	results := agg.CheckAll(ctx)
//
// # HTTP Endpoints
//
//	http.Handle("/health", health.HealthHandler(agg))
//	http.Handle("/healthz", health.LivenessHandler())
package health
