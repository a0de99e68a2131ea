package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/healthprobe/health"
	"github.com/jonwraymond/healthprobe/resilience"
)

// maxURLWorkers bounds the custom URL fan-out.
const maxURLWorkers = 5

// URLChecker performs GET requests with a per-attempt timeout and a
// retry policy for transport failures. Non-200 answers are not retried.
type URLChecker struct {
	client  *http.Client
	timeout time.Duration
	retry   *resilience.Retry
}

// NewURLChecker creates a checker. A nil client uses a fresh
// http.Client; a nil retry makes a single attempt.
func NewURLChecker(client *http.Client, timeout time.Duration, retry *resilience.Retry) *URLChecker {
	if client == nil {
		client = &http.Client{}
	}
	if retry == nil {
		retry = resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 1})
	}
	return &URLChecker{client: client, timeout: timeout, retry: retry}
}

// Check fetches target and classifies the answer.
func (u *URLChecker) Check(ctx context.Context, target string) health.Result {
	var (
		status  int
		elapsed time.Duration
	)

	err := u.retry.Execute(ctx, func(ctx context.Context) error {
		if u.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, u.timeout)
			defer cancel()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}

		start := time.Now()
		resp, err := u.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		elapsed = time.Since(start)
		status = resp.StatusCode
		return nil
	})

	switch {
	case err != nil:
		return health.Unhealthy(err.Error(), &health.Fault{Kind: faultKind(err), Err: err})
	case status != http.StatusOK:
		return health.Unhealthy(fmt.Sprintf("HTTP %d", status), nil)
	default:
		return health.Healthy().WithDuration(elapsed)
	}
}

// IsTransportError reports whether err came from the HTTP transport
// rather than request construction or the caller's context.
func IsTransportError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Op != "parse"
}

// URLsProbe checks every URL concurrently and merges the per-URL results
// into the outcome keyed by URL.
func URLsProbe(clients *Clients, urls []string) health.ProbeFunc {
	urls = dedupe(urls)

	return func(ctx context.Context) (health.Outcome, error) {
		if len(urls) == 0 {
			return nil, health.NotConfiguredError("no custom URLs configured")
		}

		checker, err := clients.HTTP()
		if err != nil {
			return nil, err
		}

		results := make([]health.Result, len(urls))
		var g errgroup.Group
		g.SetLimit(min(len(urls), maxURLWorkers))
		for i, target := range urls {
			g.Go(func() error {
				results[i] = checker.Check(ctx, target)
				return nil
			})
		}
		_ = g.Wait()

		outcome := make(health.Outcome, len(urls)+1)
		failed := 0
		for i, target := range urls {
			outcome[target] = results[i]
			if results[i].Status != health.StatusHealthy {
				failed++
			}
		}
		if failed > 0 {
			outcome[health.MessageKey] = fmt.Sprintf("%d of %d URLs unhealthy", failed, len(urls))
		}
		return outcome, nil
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
