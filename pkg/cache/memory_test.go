package cache

import (
	"context"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(&Options{
		DefaultTTL:      time.Minute,
		MaxEntries:      100,
		CleanupInterval: time.Hour, // не мешает тестам
	})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "key1", []byte("value1"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected 'value1', got %s", val)
	}
}

func TestMemoryCache_GetMissing(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get(context.Background(), "missing")
	if err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestMemoryCache_GetExpired(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "key1", []byte("value1"), time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "key1")
	if err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound for expired key, got %v", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "key1", []byte("value1"), time.Minute)

	if err := c.Delete(ctx, "key1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, err := c.Get(ctx, "key1")
	if err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "key1", []byte("value1"), time.Minute)

	ok, err := c.Exists(ctx, "key1")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !ok {
		t.Error("expected key to exist")
	}

	ok, err = c.Exists(ctx, "missing")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if ok {
		t.Error("expected key to not exist")
	}
}

func TestMemoryCache_GetWithTTL(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "key1", []byte("value1"), time.Minute)

	val, ttl, err := c.GetWithTTL(ctx, "key1")
	if err != nil {
		t.Fatalf("get with ttl failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected 'value1', got %s", val)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("unexpected ttl: %v", ttl)
	}
}

func TestMemoryCache_DeleteByPattern(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "merged:abc:1", []byte("a"), time.Minute)
	_ = c.Set(ctx, "merged:abc:2", []byte("b"), time.Minute)
	_ = c.Set(ctx, "merged:def:1", []byte("c"), time.Minute)
	_ = c.Set(ctx, "analysis:kpi:abc:1", []byte("d"), time.Minute)

	deleted, err := c.DeleteByPattern(ctx, "merged:abc:*")
	if err != nil {
		t.Fatalf("delete by pattern failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	if ok, _ := c.Exists(ctx, "merged:def:1"); !ok {
		t.Error("unrelated key should survive")
	}
	if ok, _ := c.Exists(ctx, "analysis:kpi:abc:1"); !ok {
		t.Error("analysis key should survive")
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	c := NewMemoryCache(&Options{
		DefaultTTL:      time.Minute,
		MaxEntries:      2,
		CleanupInterval: time.Hour,
	})
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	time.Sleep(time.Millisecond)
	_ = c.Set(ctx, "b", []byte("2"), time.Minute)
	time.Sleep(time.Millisecond)

	// Обновляем время доступа для "a", теперь "b" самый старый
	_, _ = c.Get(ctx, "a")
	time.Sleep(time.Millisecond)

	_ = c.Set(ctx, "c", []byte("3"), time.Minute)

	if ok, _ := c.Exists(ctx, "b"); ok {
		t.Error("expected LRU key 'b' to be evicted")
	}
	if ok, _ := c.Exists(ctx, "a"); !ok {
		t.Error("recently accessed key 'a' should survive")
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "merged:x", []byte("v"), time.Minute)
	_, _ = c.Get(ctx, "merged:x")
	_, _ = c.Get(ctx, "missing")

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}

	if stats.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
	if stats.HitRate != 0.5 {
		t.Errorf("expected hit rate 0.5, got %f", stats.HitRate)
	}
	if stats.Backend != "memory" {
		t.Errorf("expected backend 'memory', got %s", stats.Backend)
	}
	if stats.KeysByPrefix["merged"] != 1 {
		t.Errorf("expected 1 key with prefix 'merged', got %d", stats.KeysByPrefix["merged"])
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if _, err := c.Get(ctx, "key"); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
	if err := c.Set(ctx, "key", []byte("v"), time.Minute); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}

	// Повторное закрытие безопасно
	if err := c.Close(); err != nil {
		t.Errorf("double close should be nil, got %v", err)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"*", "anything", true},
		{"exact", "exact", true},
		{"exact", "other", false},
		{"prefix*", "prefix123", true},
		{"prefix*", "other", false},
		{"*suffix", "123suffix", true},
		{"*suffix", "123other", false},
		{"a*b", "aXXXb", true},
		{"a*b", "ab", true},
		{"ab*ba", "aba", false},
	}

	for _, tt := range tests {
		if got := matchPattern(tt.pattern, tt.key); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
		}
	}
}
