// Package cache provides the two translation cache tiers: a bounded
// in-process LocalCache and SharedCache implementations visible across
// processes (Redis, Valkey, SQLite) plus an in-memory one for tests and
// single-process deployments.
package cache

import (
	"context"
	"time"
)

// SharedCache is the distributed tier. Implementations must be safe for
// concurrent use.
type SharedCache interface {
	// Get retrieves a value. A missing or expired key returns ("", false, nil);
	// err is reserved for tier failures, which callers treat as a miss.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value. A ttl of zero or less means no expiration.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// ExportableCache is a cache whose live entries can be dumped.
type ExportableCache interface {
	// Entries returns all non-expired entries as key-value pairs.
	Entries() map[string]string
}

// Pinger is a shared tier that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
