package cache

import (
	"context"
	"fmt"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"
)

// ValkeyCache is a Valkey-backed SharedCache.
type ValkeyCache struct {
	client    valkeylib.Client
	keyPrefix string
}

// ValkeyConfig holds the configuration for the Valkey cache.
type ValkeyConfig struct {
	Address        string
	Password       string
	DB             int
	KeyPrefix      string
	ConnectTimeout time.Duration // Optional, defaults to 5s
}

// NewValkeyCache connects to Valkey and checks the connection with a ping.
// The caller is responsible for calling Close when done.
func NewValkeyCache(cfg ValkeyConfig) (*ValkeyCache, error) {
	opts := valkeylib.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	client, err := valkeylib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping valkey (timeout: %v): %w", timeout, err)
	}

	return NewValkeyCacheFromClient(client, cfg.KeyPrefix), nil
}

// NewValkeyCacheFromClient wraps an existing valkey-go client.
func NewValkeyCacheFromClient(client valkeylib.Client, keyPrefix string) *ValkeyCache {
	return &ValkeyCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a value from Valkey.
func (c *ValkeyCache) Get(ctx context.Context, key string) (string, bool, error) {
	cmd := c.client.B().Get().Key(c.keyPrefix + key).Build()

	val, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkeylib.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

// Set stores a value in Valkey.
func (c *ValkeyCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	fullKey := c.keyPrefix + key

	if ttl > 0 {
		cmd := c.client.B().Set().Key(fullKey).Value(value).Ex(ttl).Build()
		return c.client.Do(ctx, cmd).Error()
	}
	return c.client.Do(ctx, c.client.B().Set().Key(fullKey).Value(value).Build()).Error()
}

// Ping checks the connection.
func (c *ValkeyCache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

// Close closes the Valkey connection.
func (c *ValkeyCache) Close() error {
	c.client.Close()
	return nil
}

var (
	_ SharedCache = (*ValkeyCache)(nil)
	_ Pinger      = (*ValkeyCache)(nil)
)
