package llm

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RetryProvider retries transient failures with jittered exponential
// backoff. A rate limit's RetryAfter overrides the computed wait.
type RetryProvider struct {
	inner   Provider
	config  RetryConfig
	timeout time.Duration
	logger  *zap.Logger
}

// WithRetry wraps p. timeout bounds the whole call including waits; zero
// leaves the caller's deadline alone.
func WithRetry(p Provider, cfg RetryConfig, timeout time.Duration, logger *zap.Logger) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryProvider{inner: p, config: cfg, timeout: timeout, logger: logger}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	invalidSeen := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt == r.config.MaxAttempts || !retryable(err, &invalidSeen) {
			if attempt > 1 {
				return nil, fmt.Errorf("after %d attempts: %w", attempt, err)
			}
			return nil, err
		}

		wait := r.backoff(attempt, err)
		r.logger.Info("retrying llm request",
			zap.String("purpose", req.Purpose),
			zap.String("atom", req.AtomID),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
		trace.SpanFromContext(ctx).AddEvent("llm.retry", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.String("error", err.Error())))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("waiting to retry %s: %w", req.AtomID, ctx.Err())
		case <-timer.C:
		}
	}
}

// backoff is the wait after the given 1-based attempt failed with err.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	if d := retryAfter(err); d > 0 {
		return d
	}
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt-1))
	wait = min(wait, float64(r.config.MaxWait))
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(wait, 0))
}
