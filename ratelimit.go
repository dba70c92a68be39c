package autotranslate

import (
	"context"
	"errors"
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by every call to one backend.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	burst      float64
	perSecond  float64
	lastRefill time.Time
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int           // Sustained rate (default: 60)
	BurstSize         int           // Bucket size (default: RequestsPerMinute)
	MaxWait           time.Duration // Longest wait for a token; 0 waits as long as the context allows
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}
	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}

	return &RateLimiter{
		tokens:     burst,
		burst:      burst,
		perSecond:  rpm / 60,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is taken or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		delay := r.take()
		if delay == 0 {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token if one is available.
func (r *RateLimiter) TryAcquire() bool {
	return r.take() == 0
}

// Available returns the current number of tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill(time.Now())
	return r.tokens
}

// take consumes a token and returns 0, or returns how long until the next
// token is due.
func (r *RateLimiter) take() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill(time.Now())
	if r.tokens >= 1 {
		r.tokens--
		return 0
	}
	missing := 1 - r.tokens
	return time.Duration(missing / r.perSecond * float64(time.Second))
}

// refill must be called with mu held.
func (r *RateLimiter) refill(now time.Time) {
	r.tokens += now.Sub(r.lastRefill).Seconds() * r.perSecond
	if r.tokens > r.burst {
		r.tokens = r.burst
	}
	r.lastRefill = now
}

// RateLimitedBackend throttles calls to a Backend.
type RateLimitedBackend struct {
	backend Backend
	limiter *RateLimiter
	maxWait time.Duration
}

// NewRateLimitedBackend wraps backend with a token bucket.
func NewRateLimitedBackend(backend Backend, cfg RateLimitConfig) *RateLimitedBackend {
	return &RateLimitedBackend{
		backend: backend,
		limiter: NewRateLimiter(cfg),
		maxWait: cfg.MaxWait,
	}
}

// Translate waits for a token, then calls the wrapped backend. A wait cut
// short by MaxWait is reported as a retryable failure; a wait cut short by
// the caller is not.
func (b *RateLimitedBackend) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	waitCtx := ctx
	if b.maxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, b.maxWait)
		defer cancel()
	}

	if err := b.limiter.Wait(waitCtx); err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return "", &ProviderError{
				Message:   "rate limited",
				Cause:     err,
				Retryable: true,
			}
		}
		return "", &ProviderError{
			Message: "rate limit wait cancelled",
			Cause:   err,
		}
	}

	return b.backend.Translate(ctx, req)
}

// Limiter returns the underlying rate limiter for inspection.
func (b *RateLimitedBackend) Limiter() *RateLimiter {
	return b.limiter
}
