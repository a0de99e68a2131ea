package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/healthprobe/resilience"
)

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout is the wait budget of each check, counted from dispatch so
	// that time queued for a worker slot is included.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxConcurrent bounds how many checks run at once per invocation.
	// Default: 10
	MaxConcurrent int

	// Recorder receives per-check latency and status. Nil disables it.
	// The aggregator records once per dispatched check, so a check that
	// exceeds its budget is counted unhealthy and its abandoned probe is
	// never counted.
	Recorder Recorder
}

// Aggregator runs every registered check concurrently and merges the
// results into one AggregateResult.
type Aggregator struct {
	config   AggregatorConfig
	registry *Registry
	runner   *Runner

	mu     sync.RWMutex
	checks map[string]Check
	order  []string // Maintains registration order
}

// NewAggregator creates an aggregator gated by registry.
// A nil registry disables every gated check.
func NewAggregator(registry *Registry, config ...AggregatorConfig) *Aggregator {
	var cfg AggregatorConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 10
	}
	if registry == nil {
		registry = NewRegistry(nil)
	}

	return &Aggregator{
		config:   cfg,
		registry: registry,
		runner:   NewRunner(nil),
		checks:   make(map[string]Check),
	}
}

// Register adds checks to the aggregator. Gated checks also register
// their spec with the registry.
func (a *Aggregator) Register(checks ...Check) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, check := range checks {
		name := check.Name()
		if _, exists := a.checks[name]; !exists {
			a.order = append(a.order, name)
		}
		a.checks[name] = check
		if !check.Always {
			a.registry.Add(check.Spec)
		}
	}
}

// CheckerNames returns the names of all registered checks.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Registry returns the registry gating the aggregator's checks.
func (a *Aggregator) Registry() *Registry {
	return a.registry
}

// Check runs a single named check through the same gate as CheckAll.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	check, ok := a.checks[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}
	if !a.enabled(check) {
		return NotConfigured(""), nil
	}

	bulkhead := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 1})
	return a.runTask(ctx, bulkhead, check), nil
}

// CheckAll runs all registered checks and returns the merged results.
// Disabled checks are reported as not configured without being
// dispatched. A check that exceeds its budget is reported unhealthy; it
// never holds up the others.
func (a *Aggregator) CheckAll(ctx context.Context) AggregateResult {
	a.mu.RLock()
	checks := make([]Check, 0, len(a.order))
	for _, name := range a.order {
		checks = append(checks, a.checks[name])
	}
	a.mu.RUnlock()

	results := make(AggregateResult, len(checks))
	if len(checks) == 0 {
		return results
	}

	type named struct {
		name   string
		result Result
	}

	bulkhead := resilience.NewBulkhead(resilience.BulkheadConfig{
		MaxConcurrent: a.config.MaxConcurrent,
	})
	done := make(chan named, len(checks))
	dispatched := 0

	for _, check := range checks {
		if !a.enabled(check) {
			results[check.Name()] = NotConfigured("")
			continue
		}
		dispatched++
		go func(check Check) {
			done <- named{name: check.Name(), result: a.runTask(ctx, bulkhead, check)}
		}(check)
	}

	for i := 0; i < dispatched; i++ {
		n := <-done
		results[n.name] = n.result
	}

	return results
}

func (a *Aggregator) enabled(check Check) bool {
	return check.Always || a.registry.IsEnabled(check.Name())
}

// runTask waits for a worker slot and runs the check, both within the
// per-check budget. The probe goroutine is abandoned on expiry.
func (a *Aggregator) runTask(ctx context.Context, bulkhead *resilience.Bulkhead, check Check) Result {
	start := time.Now()
	taskCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if err := bulkhead.Acquire(taskCtx); err != nil {
		return a.abandoned(ctx, check.Name(), start, err)
	}
	defer bulkhead.Release()

	type timed struct {
		result  Result
		elapsed time.Duration
	}
	out, err := resilience.Do(taskCtx, a.config.Timeout, func(ctx context.Context) (timed, error) {
		runStart := time.Now()
		result := a.runner.Run(ctx, check)
		return timed{result: result, elapsed: time.Since(runStart)}, nil
	})
	if err != nil {
		return a.abandoned(ctx, check.Name(), start, err)
	}

	a.record(ctx, check.Name(), out.elapsed, out.result)
	return out.result
}

func (a *Aggregator) abandoned(ctx context.Context, name string, start time.Time, err error) Result {
	message := err.Error()
	if errors.Is(err, resilience.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		message = fmt.Sprintf("check timed out after %s", a.config.Timeout)
		err = TimeoutFault("", ErrCheckTimeout)
	}

	result := Unhealthy(message, err)
	result.Timestamp = start
	a.record(ctx, name, time.Since(start), result)
	return result
}

func (a *Aggregator) record(ctx context.Context, name string, elapsed time.Duration, result Result) {
	if a.config.Recorder == nil || result.Status == StatusNotConfigured {
		return
	}
	a.config.Recorder.RecordCheck(context.WithoutCancel(ctx), name, elapsed, result.Status == StatusHealthy)
}
