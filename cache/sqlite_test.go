package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestSQLite(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := OpenSQLiteCache(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLiteCache failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := openTestSQLite(t)

	if err := c.Set(ctx, "trans:fr:en:1", "Hello", time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok, err := c.Get(ctx, "trans:fr:en:1")
	if err != nil || !ok || val != "Hello" {
		t.Errorf("Get = %q, %v, %v", val, ok, err)
	}

	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Errorf("missing key: ok=%v err=%v", ok, err)
	}
}

func TestSQLiteCache_Upsert(t *testing.T) {
	ctx := context.Background()
	c := openTestSQLite(t)

	c.Set(ctx, "k", "v1", time.Hour)
	c.Set(ctx, "k", "v2", 0)

	if val, ok, _ := c.Get(ctx, "k"); !ok || val != "v2" {
		t.Errorf("expected overwritten value, got %q", val)
	}
}

func TestSQLiteCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := openTestSQLite(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "short", "v", time.Minute)
	c.Set(ctx, "forever", "v", 0)

	now = now.Add(2 * time.Minute)

	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Error("expired row should miss")
	}
	if _, ok, _ := c.Get(ctx, "forever"); !ok {
		t.Error("row without ttl should never expire")
	}

	n, err := c.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("PurgeExpired removed %d rows, want 1", n)
	}
}

func TestSQLiteCache_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := OpenSQLiteCache(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c.Set(ctx, "k", "durable", time.Hour)
	c.Close()

	reopened, err := OpenSQLiteCache(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if val, ok, _ := reopened.Get(ctx, "k"); !ok || val != "durable" {
		t.Errorf("value lost across reopen: %q", val)
	}
}

func TestSQLiteCache_Ping(t *testing.T) {
	c := openTestSQLite(t)

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping on an open database: %v", err)
	}
	_ = c.Close()
	if err := c.Ping(context.Background()); err == nil {
		t.Error("Ping should fail once the database is closed")
	}
}
