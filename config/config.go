// Package config loads engine settings from flags, environment, .env and an
// optional config file, and the rules file describing entities and enum
// labels.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/ZaguanLabs/autotranslate"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. AUTOTRANSLATE_SHARED_URL.
const EnvPrefix = "AUTOTRANSLATE"

// Shared tier kinds.
const (
	SharedMemory = "memory"
	SharedRedis  = "redis"
	SharedValkey = "valkey"
	SharedSQLite = "sqlite"
)

// Backend kinds.
const (
	BackendLibreTranslate = "libretranslate"
	BackendOpenAI         = "openai"
	BackendMock           = "mock"
)

// Config holds all engine configuration.
type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	ContentLang    string        `mapstructure:"content_lang"`
	IdentifierLang string        `mapstructure:"identifier_lang"`
	RulesFile      string        `mapstructure:"rules_file"`
	SupportedLangs []string      `mapstructure:"supported_langs"` // Empty uses Accept-Language's first entry
	Local          LocalConfig   `mapstructure:"local"`
	Shared         SharedConfig  `mapstructure:"shared"`
	Backend        BackendConfig `mapstructure:"backend"`
	Server         ServerConfig  `mapstructure:"server"`
	Log            LogConfig     `mapstructure:"log"`
}

// LocalConfig sizes the in-process tier.
type LocalConfig struct {
	Capacity int           `mapstructure:"capacity"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SharedConfig selects the distributed tier.
type SharedConfig struct {
	Backend   string        `mapstructure:"backend"`
	URL       string        `mapstructure:"url"`      // Redis URL, Valkey address or SQLite DSN
	Password  string        `mapstructure:"password"` // Redis and Valkey; overrides a password in the Redis URL
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// BackendConfig selects the translation backend.
type BackendConfig struct {
	Kind           string        `mapstructure:"kind"`
	URL            string        `mapstructure:"url"` // Defaults to the backend's own
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	Retries        int           `mapstructure:"retries"`
	RPM            int           `mapstructure:"rpm"` // 0 disables rate limiting
	MaxWait        time.Duration `mapstructure:"max_wait"`
}

// ServerConfig configures the HTTP layer.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SetDefaults registers every key with its default so environment overrides
// are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("enabled", true)
	v.SetDefault("content_lang", autotranslate.DefaultContentLang)
	v.SetDefault("identifier_lang", autotranslate.DefaultIdentifierLang)
	v.SetDefault("rules_file", "")
	v.SetDefault("supported_langs", []string{})

	v.SetDefault("local.capacity", 10000)
	v.SetDefault("local.ttl", 30*time.Minute)

	v.SetDefault("shared.backend", SharedMemory)
	v.SetDefault("shared.url", "")
	v.SetDefault("shared.password", "")
	v.SetDefault("shared.key_prefix", "")
	v.SetDefault("shared.ttl", autotranslate.DefaultSharedTTL)

	v.SetDefault("backend.kind", BackendLibreTranslate)
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.model", "")
	v.SetDefault("backend.connect_timeout", 5*time.Second)
	v.SetDefault("backend.read_timeout", 10*time.Second)
	v.SetDefault("backend.retries", 0)
	v.SetDefault("backend.rpm", 0)
	v.SetDefault("backend.max_wait", 0)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &autotranslate.ConfigError{Field: p, Cause: err}
		}
	}
	return nil
}

// Load reads configFile (if any) and the environment into a validated
// Config. Flags bound to v beforehand take precedence.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &autotranslate.ConfigError{Field: "config", Cause: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &autotranslate.ConfigError{Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &autotranslate.ConfigError{Cause: err}
	}
	return &cfg, nil
}

// Default returns the default configuration.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ContentLang, validation.Required, validation.Length(2, 12)),
		validation.Field(&c.IdentifierLang, validation.Required, validation.Length(2, 12)),
		validation.Field(&c.SupportedLangs, validation.Each(validation.Required, validation.Length(2, 12))),
		validation.Field(&c.Local),
		validation.Field(&c.Shared),
		validation.Field(&c.Backend),
		validation.Field(&c.Log),
	)
}

func (c LocalConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
}

func (c SharedConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(SharedMemory, SharedRedis, SharedValkey, SharedSQLite)),
		validation.Field(&c.URL, validation.When(c.Backend != SharedMemory, validation.Required)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
}

func (c BackendConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Kind, validation.Required, validation.In(BackendLibreTranslate, BackendOpenAI, BackendMock)),
		validation.Field(&c.URL, is.URL),
		validation.Field(&c.APIKey, validation.When(c.Kind == BackendOpenAI, validation.Required)),
		validation.Field(&c.ConnectTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Retries, validation.Min(0), validation.Max(10)),
		validation.Field(&c.RPM, validation.Min(0)),
		validation.Field(&c.MaxWait, validation.Min(time.Duration(0))),
	)
}

func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("trace", "debug", "info", "warn", "warning", "error", "fatal", "panic")),
	)
}
