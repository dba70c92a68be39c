package autotranslate

import (
	"context"
	"testing"
	"time"
)

func TestTranslateAll(t *testing.T) {
	backend := &fakeBackend{translations: map[string]string{
		"Bonjour": "Hello",
		"Monde":   "World",
	}}
	tr := NewTranslator(backend, WithLogger(quietLogger()))

	texts := []string{"Bonjour", "Monde", "Bonjour", "42", "Bonjour"}
	got := tr.TranslateAll(context.Background(), texts, "en", 2)

	want := []string{"Hello", "World", "Hello", "42", "Hello"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Duplicates are resolved once, opaque values never reach the backend.
	if backend.Calls() != 2 {
		t.Errorf("backend called %d times, want 2", backend.Calls())
	}
}

func TestTranslateAll_Concurrent(t *testing.T) {
	backend := &fakeBackend{delay: 50 * time.Millisecond}
	tr := NewTranslator(backend, WithLogger(quietLogger()))

	texts := []string{"un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit"}

	start := time.Now()
	got := tr.TranslateAll(context.Background(), texts, "en", 8)
	elapsed := time.Since(start)

	if len(got) != len(texts) {
		t.Fatalf("got %d results", len(got))
	}
	if got[2] != "[en] trois" {
		t.Errorf("result[2] = %q", got[2])
	}
	// Sequential resolution would take 400ms.
	if elapsed > 300*time.Millisecond {
		t.Errorf("batch took %v, expected concurrent resolution", elapsed)
	}
}

func TestTranslateAll_Empty(t *testing.T) {
	tr := NewTranslator(&fakeBackend{}, WithLogger(quietLogger()))

	if got := tr.TranslateAll(context.Background(), nil, "en", 0); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
