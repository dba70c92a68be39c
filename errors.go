package autotranslate

import "fmt"

// ProviderError is a backend failure: a timeout, a non-2xx answer or an
// unreadable payload. Retryable marks failures worth another attempt.
type ProviderError struct {
	Message    string
	Cause      error
	StatusCode int // 0 when the backend never answered
	Retryable  bool
}

func (e *ProviderError) Error() string {
	msg := "provider error: " + e.Message
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// CacheError is a failed read or write on the shared tier. It is logged,
// never returned to callers.
type CacheError struct {
	Op    string // "read" or "write"
	Key   string
	Cause error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Cause)
}

func (e *CacheError) Unwrap() error { return e.Cause }

// ProcessorError is a rich-text leaf that could not be parsed or rebuilt.
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string
}

func (e *ProcessorError) Error() string {
	msg := e.ContentType + " processor: " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ProcessorError) Unwrap() error { return e.Cause }

// ConfigError is invalid or unreadable configuration. Field names the
// offending setting when known.
type ConfigError struct {
	Field string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %v", e.Cause)
	}
	return fmt.Sprintf("config error: %s: %v", e.Field, e.Cause)
}

func (e *ConfigError) Unwrap() error { return e.Cause }
