package autotranslate

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ZaguanLabs/autotranslate/cache"
	"github.com/sirupsen/logrus"
)

// CoordinatorConfig wires a Coordinator to its tiers.
type CoordinatorConfig struct {
	ContentLang string
	Local       *cache.LocalCache // nil means a default-sized tier
	Shared      cache.SharedCache // nil disables the distributed tier
	SharedTTL   time.Duration
	Hasher      Hasher
	Logger      logrus.FieldLogger
}

// Stats is a snapshot of coordinator counters.
type Stats struct {
	LocalHits       int64 `json:"local_hits"`
	SharedHits      int64 `json:"shared_hits"`
	BackendCalls    int64 `json:"backend_calls"`
	BackendFailures int64 `json:"backend_failures"`
}

// Coordinator owns both cache tiers and the backend. Concurrent misses on
// the same key within one process result in a single backend call whose
// result every caller receives.
type Coordinator struct {
	backend     Backend
	contentLang string
	local       *cache.LocalCache
	shared      cache.SharedCache
	sharedTTL   time.Duration
	hash        Hasher
	log         logrus.FieldLogger

	localHits       atomic.Int64
	sharedHits      atomic.Int64
	backendCalls    atomic.Int64
	backendFailures atomic.Int64
}

// NewCoordinator creates a coordinator for backend.
func NewCoordinator(backend Backend, cfg CoordinatorConfig) *Coordinator {
	c := &Coordinator{
		backend:     backend,
		contentLang: cfg.ContentLang,
		local:       cfg.Local,
		shared:      cfg.Shared,
		sharedTTL:   cfg.SharedTTL,
		hash:        cfg.Hasher,
		log:         cfg.Logger,
	}
	if c.contentLang == "" {
		c.contentLang = DefaultContentLang
	}
	if c.local == nil {
		c.local = cache.NewLocalCache(0, 0)
	}
	if c.hash == nil {
		c.hash = HashText
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	return c
}

// Resolve returns text translated from sourceLang (the content language when
// empty) to targetLang. It never fails: opaque text, same-language requests
// and backend failures all yield text unchanged.
func (c *Coordinator) Resolve(ctx context.Context, text, sourceLang, targetLang string) string {
	if IsOpaque(text) || targetLang == "" {
		return text
	}
	if sourceLang == "" {
		sourceLang = c.contentLang
	}
	if SameLanguage(sourceLang, targetLang) {
		return text
	}

	key := NewTranslationKey(sourceLang, targetLang, text, c.hash).String()

	// The flight may outlive the caller that started it.
	loadCtx := context.WithoutCancel(ctx)
	value, hit := c.local.GetOrLoad(key, func() (string, bool) {
		return c.load(loadCtx, key, text, sourceLang, targetLang)
	})
	if hit {
		c.localHits.Add(1)
		c.log.WithField("key", key).Trace("local cache hit")
	}
	return value
}

// load runs once per flight: distributed tier, then backend.
func (c *Coordinator) load(ctx context.Context, key, text, sourceLang, targetLang string) (string, bool) {
	log := c.log.WithFields(logrus.Fields{
		"source": sourceLang,
		"target": targetLang,
		"key":    key,
	})

	if v, ok := c.LoadShared(ctx, key); ok {
		c.sharedHits.Add(1)
		log.Debug("shared cache hit")
		return v, true
	}

	if c.backend == nil {
		return text, false
	}

	c.backendCalls.Add(1)
	start := time.Now()
	translated, err := c.backend.Translate(ctx, TranslateRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Format:     "text",
	})
	if err == nil && strings.TrimSpace(translated) == "" {
		err = &ProviderError{Message: "empty translation"}
	}
	if err != nil {
		c.backendFailures.Add(1)
		log.WithError(err).Error("translation failed, returning original text")
		return text, false
	}

	log.WithField("elapsed", time.Since(start)).Info("translated")
	c.StoreShared(ctx, key, translated)
	return translated, true
}

// LoadShared reads key from the distributed tier. Tier errors are logged and
// reported as a miss.
func (c *Coordinator) LoadShared(ctx context.Context, key string) (string, bool) {
	if c.shared == nil {
		return "", false
	}
	v, ok, err := c.shared.Get(ctx, key)
	if err != nil {
		c.log.WithError(&CacheError{Op: "read", Key: key, Cause: err}).Warn("shared cache unavailable")
		return "", false
	}
	return v, ok
}

// StoreShared writes key to the distributed tier with its TTL. Tier errors
// are logged and dropped.
func (c *Coordinator) StoreShared(ctx context.Context, key, value string) {
	if c.shared == nil {
		return
	}
	if err := c.shared.Set(ctx, key, value, c.sharedTTL); err != nil {
		c.log.WithError(&CacheError{Op: "write", Key: key, Cause: err}).Warn("shared cache unavailable")
	}
}

// ContentLang returns the default source language.
func (c *Coordinator) ContentLang() string {
	return c.contentLang
}

// Stats returns a snapshot of the counters.
func (c *Coordinator) Stats() Stats {
	return Stats{
		LocalHits:       c.localHits.Load(),
		SharedHits:      c.sharedHits.Load(),
		BackendCalls:    c.backendCalls.Load(),
		BackendFailures: c.backendFailures.Load(),
	}
}
