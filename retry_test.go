package autotranslate

import (
	"context"
	"errors"
	"testing"
	"time"
)

var fastRetry = RetryConfig{
	MaxRetries: 3,
	BaseDelay:  5 * time.Millisecond,
	MaxDelay:   20 * time.Millisecond,
}

// failTimes returns a RetryFunc failing n times with err, then succeeding.
func failTimes(n int, err error, calls *int) RetryFunc[string] {
	return func() (string, error) {
		*calls++
		if *calls <= n {
			return "", err
		}
		return "ok", nil
	}
}

func TestWithRetry(t *testing.T) {
	transient := &ProviderError{Message: "unavailable", StatusCode: 503, Retryable: true}
	fatal := &ProviderError{Message: "invalid API key", StatusCode: 403}

	tests := []struct {
		name      string
		failures  int
		err       error
		wantErr   bool
		wantCalls int
	}{
		{"first try", 0, nil, false, 1},
		{"recovers", 2, transient, false, 3},
		{"gives up", 10, transient, true, 4},
		{"fatal", 10, fatal, true, 1},
		{"plain error", 10, errors.New("boom"), true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := WithRetry(context.Background(), fastRetry, failTimes(tt.failures, tt.err, &calls))

			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != "ok" {
				t.Errorf("result = %q, want ok", got)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestWithRetry_OnRetry(t *testing.T) {
	cfg := fastRetry
	var delays []time.Duration
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		if attempt != len(delays)+1 {
			t.Errorf("attempt %d out of order", attempt)
		}
		delays = append(delays, delay)
	}

	calls := 0
	_, err := WithRetry(context.Background(), cfg, failTimes(2, &ProviderError{Retryable: true}, &calls))
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}

	want := []time.Duration{5 * time.Millisecond, 10 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay %d = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestWithRetry_CancelledDuringBackoff(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	calls := 0
	start := time.Now()
	_, err := WithRetry(ctx, cfg, failTimes(10, &ProviderError{Retryable: true}, &calls))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("backoff ignored cancellation for %v", elapsed)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: 350 * time.Millisecond}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 350 * time.Millisecond},
		{40, 350 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := cfg.Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable provider error", &ProviderError{Retryable: true}, true},
		{"fatal provider error", &ProviderError{}, false},
		{"plain error", errors.New("boom"), false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"canceled inside provider error", &ProviderError{Cause: context.Canceled, Retryable: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxRetries != 2 || cfg.BaseDelay != 200*time.Millisecond || cfg.MaxDelay != 2*time.Second {
		t.Errorf("DefaultRetryConfig() = %+v", cfg)
	}
}

func TestRetryableBackend(t *testing.T) {
	calls := 0
	inner := backendFunc(func(ctx context.Context, req TranslateRequest) (string, error) {
		calls++
		if calls <= 2 {
			return "", &ProviderError{Message: "temporary failure", Retryable: true}
		}
		return "Hello", nil
	})

	got, err := NewRetryableBackend(inner, fastRetry).Translate(context.Background(), TranslateRequest{
		Text:       "Bonjour",
		SourceLang: "fr",
		TargetLang: "en",
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Hello" || calls != 3 {
		t.Errorf("got %q after %d calls, want Hello after 3", got, calls)
	}
}

func TestRetryableBackend_FailOpenThroughCoordinator(t *testing.T) {
	calls := 0
	inner := backendFunc(func(ctx context.Context, req TranslateRequest) (string, error) {
		calls++
		return "", &ProviderError{Message: "unavailable", StatusCode: 503, Retryable: true}
	})
	backend := NewRetryableBackend(inner, RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})

	coord := NewCoordinator(backend, CoordinatorConfig{ContentLang: "fr", Logger: quietLogger()})

	if got := coord.Resolve(context.Background(), "Bonjour", "", "en"); got != "Bonjour" {
		t.Errorf("Resolve = %q, want the original text", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
