package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockProvider is an in-memory backend for tests and offline runs. It is
// safe for concurrent use.
type MockProvider struct {
	mu           sync.Mutex
	translations map[string]string // Map of source text to translation
	calls        int
	lastRequest  *TranslateRequest

	// Err, when set, is returned by every call.
	Err error
	// Delay is slept before answering.
	Delay time.Duration
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		translations: map[string]string{
			"Bonjour":          "Hello",
			"Monde":            "World",
			"Bonjour le monde": "Hello world",
			"Merci":            "Thank you",
		},
	}
}

// Add registers a translation.
func (m *MockProvider) Add(source, translation string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.translations[source] = translation
	return m
}

// Translate returns the registered translation, or the text tagged with the
// target language.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.Delay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastRequest = &req

	if m.Err != nil {
		return "", m.Err
	}
	if translation, ok := m.translations[req.Text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s] %s", req.TargetLang, req.Text), nil
}

// Calls returns how many times Translate was called.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the last request received.
func (m *MockProvider) LastRequest() *TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = 0
	m.lastRequest = nil
}

var _ Backend = (*MockProvider)(nil)
