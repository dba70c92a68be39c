package autotranslate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRateLimiter_BurstThenEmpty(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, BurstSize: 3})

	for i := 0; i < 3; i++ {
		if !limiter.TryAcquire() {
			t.Fatalf("token %d not granted", i)
		}
	}
	if limiter.TryAcquire() {
		t.Error("bucket should be empty after the burst")
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{})

	if got := limiter.Available(); got != 60 {
		t.Errorf("default bucket = %v, want 60", got)
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	// 10 tokens per second
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 600, BurstSize: 1})
	limiter.TryAcquire()

	if limiter.TryAcquire() {
		t.Fatal("drained bucket granted a token")
	}

	time.Sleep(150 * time.Millisecond)

	if !limiter.TryAcquire() {
		t.Error("bucket did not refill")
	}
}

func TestRateLimiter_WaitForDeficit(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 600, BurstSize: 1})
	limiter.TryAcquire()

	start := time.Now()
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Wait returned after %v, expected about 100ms", elapsed)
	}
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 1, BurstSize: 1})
	limiter.TryAcquire()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("Wait succeeded past the deadline")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Wait ignored the context for %v", elapsed)
	}
}

func TestRateLimiter_Available(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, BurstSize: 5})

	if got := limiter.Available(); got != 5 {
		t.Errorf("Available() = %v, want 5", got)
	}

	limiter.TryAcquire()
	limiter.TryAcquire()

	if got := limiter.Available(); got < 2.9 || got > 3.1 {
		t.Errorf("Available() = %v, want about 3", got)
	}
}

func TestRateLimiter_ConcurrentAcquire(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 6000, BurstSize: 10})

	var (
		wg      sync.WaitGroup
		granted atomic.Int64
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.TryAcquire() {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := granted.Load(); got != 10 {
		t.Errorf("granted %d tokens, want 10", got)
	}
}

func TestRateLimitedBackend_Throttles(t *testing.T) {
	inner := &fakeBackend{}
	backend := NewRateLimitedBackend(inner, RateLimitConfig{RequestsPerMinute: 600, BurstSize: 2})
	ctx := context.Background()

	for _, text := range []string{"a", "b"} {
		if _, err := backend.Translate(ctx, TranslateRequest{Text: text, SourceLang: "fr", TargetLang: "en"}); err != nil {
			t.Fatalf("Translate(%q): %v", text, err)
		}
	}

	start := time.Now()
	if _, err := backend.Translate(ctx, TranslateRequest{Text: "c", SourceLang: "fr", TargetLang: "en"}); err != nil {
		t.Fatalf("Translate(c): %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("third call was not throttled (%v)", elapsed)
	}

	if got := inner.Calls(); got != 3 {
		t.Errorf("backend calls = %d, want 3", got)
	}
}

func TestRateLimitedBackend_CallerCancel(t *testing.T) {
	inner := &fakeBackend{}
	backend := NewRateLimitedBackend(inner, RateLimitConfig{RequestsPerMinute: 1, BurstSize: 1})

	if _, err := backend.Translate(context.Background(), TranslateRequest{Text: "a"}); err != nil {
		t.Fatalf("first Translate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := backend.Translate(ctx, TranslateRequest{Text: "b"})
	if err == nil {
		t.Fatal("expected an error once the caller gave up")
	}
	if IsRetryable(err) {
		t.Error("caller cancellation must not be retryable")
	}
	if got := inner.Calls(); got != 1 {
		t.Errorf("backend calls = %d, want 1", got)
	}
}

func TestRateLimitedBackend_MaxWait(t *testing.T) {
	inner := &fakeBackend{}
	backend := NewRateLimitedBackend(inner, RateLimitConfig{
		RequestsPerMinute: 1,
		BurstSize:         1,
		MaxWait:           10 * time.Millisecond,
	})

	if _, err := backend.Translate(context.Background(), TranslateRequest{Text: "a"}); err != nil {
		t.Fatalf("first Translate: %v", err)
	}

	_, err := backend.Translate(context.Background(), TranslateRequest{Text: "b"})
	if err == nil {
		t.Fatal("expected a rate limited error")
	}
	if !IsRetryable(err) {
		t.Error("exceeding MaxWait should be retryable")
	}
	if got := inner.Calls(); got != 1 {
		t.Errorf("backend calls = %d, want 1", got)
	}
}
