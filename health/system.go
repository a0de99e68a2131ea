package health

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Names of the always-run checks.
const (
	MemoryCheckName  = "memory"
	CPUCheckName     = "cpu"
	ThreadsCheckName = "threads"
)

// SystemConfig configures the always-run host checks.
type SystemConfig struct {
	// CPUInterval is how long the CPU check samples utilisation.
	// Default: 1 second
	CPUInterval time.Duration

	// MemoryCriticalPercent marks the memory check unhealthy once host
	// memory use reaches it. Value should be between 0 and 100.
	// Default: 95
	MemoryCriticalPercent float64
}

// SystemChecks returns the memory, cpu and threads checks. They are not
// gated by configuration and run on every invocation.
func SystemChecks(config SystemConfig) []Check {
	if config.CPUInterval <= 0 {
		config.CPUInterval = time.Second
	}
	if config.MemoryCriticalPercent <= 0 || config.MemoryCriticalPercent > 100 {
		config.MemoryCriticalPercent = 95
	}

	return []Check{
		{Spec: CheckSpec{Name: MemoryCheckName}, Probe: MemoryCheck(config.MemoryCriticalPercent), Always: true},
		{Spec: CheckSpec{Name: CPUCheckName}, Probe: CPUCheck(config.CPUInterval), Always: true},
		{Spec: CheckSpec{Name: ThreadsCheckName}, Probe: ThreadsCheck(), Always: true},
	}
}

// MemoryCheck reports host virtual memory plus the Go heap.
func MemoryCheck(criticalPercent float64) ProbeFunc {
	return func(ctx context.Context) (Outcome, error) {
		vm, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("read virtual memory: %w", err)
		}

		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)

		outcome := Outcome{
			"total":          vm.Total,
			"available":      vm.Available,
			"percent":        vm.UsedPercent,
			"go_alloc_bytes": stats.Alloc,
			"go_sys_bytes":   stats.Sys,
		}
		if vm.UsedPercent >= criticalPercent {
			outcome[MessageKey] = fmt.Sprintf("memory usage critical: %.1f%%", vm.UsedPercent)
		}
		return outcome, nil
	}
}

// CPUCheck samples system-wide CPU utilisation over interval.
func CPUCheck(interval time.Duration) ProbeFunc {
	return func(ctx context.Context) (Outcome, error) {
		percents, err := cpu.PercentWithContext(ctx, interval, false)
		if err != nil {
			return nil, fmt.Errorf("sample cpu: %w", err)
		}
		if len(percents) == 0 {
			return nil, ProtocolFault("cpu sample returned no data", nil)
		}
		return Outcome{"cpu_percent": percents[0]}, nil
	}
}

// ThreadsCheck reports OS threads of this process and live goroutines.
func ThreadsCheck() ProbeFunc {
	return func(ctx context.Context) (Outcome, error) {
		outcome := Outcome{"goroutines": runtime.NumGoroutine()}

		proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
		if err != nil {
			return nil, fmt.Errorf("inspect process: %w", err)
		}
		threads, err := proc.NumThreadsWithContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("count threads: %w", err)
		}
		outcome["total_threads"] = threads
		return outcome, nil
	}
}
