package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// clockedMemory returns a MemoryCache whose clock only moves via advance.
func clockedMemory() (*MemoryCache, func(time.Duration)) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }
	return c, func(d time.Duration) { now = now.Add(d) }
}

func TestMemoryCache_Lifetime(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		ttl     time.Duration
		elapsed time.Duration
		wantHit bool
	}{
		{"fresh", time.Minute, 0, true},
		{"just before expiry", time.Minute, time.Minute, true},
		{"expired", time.Minute, time.Minute + time.Millisecond, false},
		{"no ttl", 0, 365 * 24 * time.Hour, true},
		{"negative ttl", -time.Second, time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, advance := clockedMemory()
			if err := c.Set(ctx, "trans:fr:en:1", "Hello", tt.ttl); err != nil {
				t.Fatalf("Set: %v", err)
			}
			advance(tt.elapsed)

			got, ok, err := c.Get(ctx, "trans:fr:en:1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if ok && got != "Hello" {
				t.Errorf("Get = %q, want Hello", got)
			}
			if !ok && got != "" {
				t.Errorf("a miss returned %q", got)
			}
		})
	}
}

func TestMemoryCache_ExpiredEntryDropped(t *testing.T) {
	ctx := context.Background()
	c, advance := clockedMemory()

	c.Set(ctx, "short", "a", time.Second)
	c.Set(ctx, "long", "b", time.Hour)
	advance(2 * time.Second)

	if entries := c.Entries(); len(entries) != 1 || entries["long"] != "b" {
		t.Errorf("Entries() = %v, want only long", entries)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d before the expired key is read", c.Len())
	}

	c.Get(ctx, "short")
	if c.Len() != 1 {
		t.Errorf("Len() = %d, expired key should be removed on read", c.Len())
	}
}

func TestMemoryCache_MissAndOverwrite(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	if v, ok, _ := c.Get(ctx, "absent"); ok || v != "" {
		t.Errorf("Get(absent) = (%q, %v)", v, ok)
	}

	c.Set(ctx, "k", "first", time.Hour)
	c.Set(ctx, "k", "second", time.Hour)
	if v, _, _ := c.Get(ctx, "k"); v != "second" {
		t.Errorf("Get(k) = %q, want second", v)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("trans:fr:en:%d", i%10)
		wg.Add(3)
		go func() {
			defer wg.Done()
			c.Set(ctx, key, "v", time.Minute)
		}()
		go func() {
			defer wg.Done()
			c.Get(ctx, key)
		}()
		go func() {
			defer wg.Done()
			c.Entries()
		}()
	}
	wg.Wait()

	if c.Len() != 10 {
		t.Errorf("Len() = %d, want 10", c.Len())
	}
}
