package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ZaguanLabs/autotranslate"
	"github.com/ZaguanLabs/autotranslate/cache"
	"github.com/ZaguanLabs/autotranslate/config"
	"github.com/ZaguanLabs/autotranslate/processor"
	"github.com/ZaguanLabs/autotranslate/provider"
	"github.com/sirupsen/logrus"
)

// engine is a Translator with the resources it owns.
type engine struct {
	tr      *autotranslate.Translator
	shared  cache.SharedCache
	closers []io.Closer
}

func (e *engine) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// buildEngine wires the Translator described by cfg.
func buildEngine(cfg *config.Config, log logrus.FieldLogger) (*engine, error) {
	var rules *config.Rules
	if cfg.RulesFile != "" {
		r, err := config.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = r
	}

	shared, closer, err := openShared(cfg.Shared)
	if err != nil {
		return nil, &autotranslate.ConfigError{Field: "shared", Cause: err}
	}
	e := &engine{shared: shared}
	if closer != nil {
		e.closers = append(e.closers, closer)
	}

	opts := []autotranslate.TranslatorOption{
		autotranslate.WithContentLang(cfg.ContentLang),
		autotranslate.WithIdentifierLang(cfg.IdentifierLang),
		autotranslate.WithLocalCache(cfg.Local.Capacity, cfg.Local.TTL),
		autotranslate.WithSharedCache(shared, cfg.Shared.TTL),
		autotranslate.WithProcessor(processor.NewHTMLProcessor()),
		autotranslate.WithSupportedLangs(cfg.SupportedLangs...),
		autotranslate.WithLogger(log),
	}
	opts = append(opts, rules.TranslatorOptions()...)

	e.tr = autotranslate.NewTranslator(newBackend(cfg.Backend, log), opts...)

	log.WithFields(logrus.Fields{
		"content_lang":    cfg.ContentLang,
		"identifier_lang": cfg.IdentifierLang,
		"entities":        e.tr.RegisteredEntities(),
		"shared":          cfg.Shared.Backend,
		"shared_ttl":      cfg.Shared.TTL,
		"backend":         cfg.Backend.Kind,
		"enabled":         cfg.Enabled,
	}).Info("translation engine ready")

	return e, nil
}

func openShared(cfg config.SharedConfig) (cache.SharedCache, io.Closer, error) {
	switch cfg.Backend {
	case config.SharedRedis:
		c, err := cache.NewRedisCache(cache.RedisConfig{URL: cfg.URL, Password: cfg.Password, KeyPrefix: cfg.KeyPrefix})
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return c, c, nil
	case config.SharedValkey:
		c, err := cache.NewValkeyCache(cache.ValkeyConfig{Address: cfg.URL, Password: cfg.Password, KeyPrefix: cfg.KeyPrefix})
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case config.SharedSQLite:
		c, err := cache.OpenSQLiteCache(cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	default:
		return cache.NewMemoryCache(), nil, nil
	}
}

// newBackend builds the configured backend, rate limited and retried when
// configured.
func newBackend(cfg config.BackendConfig, log logrus.FieldLogger) autotranslate.Backend {
	var backend autotranslate.Backend
	switch cfg.Kind {
	case config.BackendOpenAI:
		backend = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.URL,
		})
	case config.BackendMock:
		backend = provider.NewMockProvider()
	default:
		backend = provider.NewLibreTranslateProvider(provider.LibreTranslateConfig{
			BaseURL:        cfg.URL,
			APIKey:         cfg.APIKey,
			ConnectTimeout: cfg.ConnectTimeout,
			ReadTimeout:    cfg.ReadTimeout,
		})
	}

	if cfg.RPM > 0 {
		backend = autotranslate.NewRateLimitedBackend(backend, autotranslate.RateLimitConfig{
			RequestsPerMinute: cfg.RPM,
			MaxWait:           cfg.MaxWait,
		})
	}
	if cfg.Retries > 0 {
		retry := autotranslate.DefaultRetryConfig()
		retry.MaxRetries = cfg.Retries
		retry.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.WithError(err).WithFields(logrus.Fields{
				"backend": cfg.Kind,
				"attempt": attempt,
				"delay":   delay,
			}).Warn("retrying translation backend")
		}
		backend = autotranslate.NewRetryableBackend(backend, retry)
	}
	return backend
}
