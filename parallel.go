package autotranslate

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds the goroutines used by TranslateAll.
const DefaultBatchConcurrency = 8

// TranslateAll translates texts concurrently, preserving order. Duplicate
// texts share one resolution. concurrency <= 0 uses DefaultBatchConcurrency.
func (t *Translator) TranslateAll(ctx context.Context, texts []string, targetLang string, concurrency int) []string {
	results := make([]string, len(texts))
	if len(texts) == 0 {
		return results
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	// Deduplicate texts first
	positions := make(map[string][]int, len(texts))
	var unique []string
	for i, text := range texts {
		if _, seen := positions[text]; !seen {
			unique = append(unique, text)
		}
		positions[text] = append(positions[text], i)
	}

	translated := make([]string, len(unique))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, text := range unique {
		i, text := i, text
		g.Go(func() error {
			translated[i] = t.coord.Resolve(ctx, text, "", targetLang)
			return nil
		})
	}
	_ = g.Wait() // Resolve never fails

	for i, text := range unique {
		for _, pos := range positions[text] {
			results[pos] = translated[i]
		}
	}
	return results
}
