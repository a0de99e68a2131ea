// Package resilience provides the small set of execution guards the probe
// engine is built on.
//
//   - Bulkhead: bounds how many checks run at once; extra tasks queue for a
//     free slot until their deadline.
//
//   - Do: soft per-task deadline. On expiry the caller stops waiting;
//     the operation keeps running in its goroutine and its result is dropped.
//
//   - Retry: bounded exponential backoff for transient network errors, used
//     by the custom URL probe.
//
// # Usage
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 10})
//	if err := bh.Acquire(ctx); err != nil {
//	    return err
//	}
//	defer bh.Release()
//
//	res, err := resilience.Do(ctx, 10*time.Second, func(ctx context.Context) (Result, error) {
//	    return probe(ctx)
//	})
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  3,
//	    InitialDelay: 300 * time.Millisecond,
//	})
//	err = retry.Execute(ctx, func(ctx context.Context) error {
//	    return fetch(ctx)
//	})
package resilience
