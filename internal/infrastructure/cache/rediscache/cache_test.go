package rediscache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	cache := NewMemory()
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "missing"); ok {
		t.Fatalf("missing key must not be found")
	}

	cache.Set(ctx, "k", "v", time.Minute)
	value, ok := cache.Get(ctx, "k")
	if !ok || value != "v" {
		t.Fatalf("expected stored value, got %q ok=%v", value, ok)
	}
	if !cache.Exists(ctx, "k") {
		t.Fatalf("stored key must exist")
	}
}

func TestMemoryExpiry(t *testing.T) {
	cache := NewMemory()
	ctx := context.Background()

	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Set(ctx, "k", "v", time.Second)
	if _, ok := cache.Get(ctx, "k"); !ok {
		t.Fatalf("entry must be readable before expiry")
	}

	current = current.Add(2 * time.Second)
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Fatalf("expired entry must not be returned")
	}
	if cache.Exists(ctx, "k") {
		t.Fatalf("expired entry must not exist")
	}
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	cache := NewMemory()
	ctx := context.Background()

	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Set(ctx, "k", "v", 0)
	current = current.Add(48 * time.Hour)
	if _, ok := cache.Get(ctx, "k"); !ok {
		t.Fatalf("zero ttl entries must not expire")
	}
}

func TestMemoryDelete(t *testing.T) {
	cache := NewMemory()
	ctx := context.Background()

	cache.Set(ctx, "k", "v", time.Minute)
	cache.Delete(ctx, "k")
	if cache.Exists(ctx, "k") {
		t.Fatalf("deleted key must not exist")
	}
}

func TestMemoryBoundsEntryCount(t *testing.T) {
	cache := NewMemory()
	cache.max = 3
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		cache.Set(ctx, fmt.Sprintf("k%d", i), "v", 0)
	}

	cache.mu.Lock()
	size := len(cache.entries)
	cache.mu.Unlock()
	if size != 3 {
		t.Fatalf("expected bounded size 3, got %d", size)
	}
	if _, ok := cache.Get(ctx, "k0"); ok {
		t.Fatalf("oldest entry must be evicted once full")
	}
	if _, ok := cache.Get(ctx, "k4"); !ok {
		t.Fatalf("newest entry must survive eviction")
	}
}

func TestMemoryBoundRewriteDoesNotEvict(t *testing.T) {
	cache := NewMemory()
	cache.max = 2
	ctx := context.Background()

	cache.Set(ctx, "a", "v1", 0)
	cache.Set(ctx, "b", "v1", 0)
	cache.Set(ctx, "a", "v2", 0)

	if value, ok := cache.Get(ctx, "b"); !ok || value != "v1" {
		t.Fatalf("rewriting an existing key must not evict, got %q ok=%v", value, ok)
	}
	if value, _ := cache.Get(ctx, "a"); value != "v2" {
		t.Fatalf("rewrite must update the value, got %q", value)
	}
}

func TestMemorySweepDropsExpired(t *testing.T) {
	cache := NewMemory()
	ctx := context.Background()

	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Set(ctx, "stale", "v", time.Second)
	current = current.Add(time.Minute)

	for i := 0; i < memorySweepEvery; i++ {
		cache.Set(ctx, "churn", "v", time.Minute)
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if _, ok := cache.entries["stale"]; ok {
		t.Fatalf("sweep must drop expired entries")
	}
}
