package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	t.Run("store and retrieve price", func(t *testing.T) {
		if err := cache.Set(ctx, "https://shop.com/p/1", "1299", time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := cache.Get(ctx, "https://shop.com/p/1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != "1299" {
			t.Errorf("Get() = %q, want 1299", got)
		}
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		_, err := cache.Get(ctx, "never-set")
		if err != domain.ErrCacheMiss {
			t.Errorf("Get() error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("expired entry misses", func(t *testing.T) {
		if err := cache.Set(ctx, "short-lived", "799", time.Millisecond); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		time.Sleep(10 * time.Millisecond)

		_, err := cache.Get(ctx, "short-lived")
		if err != domain.ErrCacheMiss {
			t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
		}
	})
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	cache.Set(ctx, "key", "999", time.Minute)
	if err := cache.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := cache.Get(ctx, "key"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	t.Run("true for live entry", func(t *testing.T) {
		cache.Set(ctx, "live", "500", time.Minute)
		exists, err := cache.Exists(ctx, "live")
		if err != nil || !exists {
			t.Errorf("Exists() = %v, %v; want true, nil", exists, err)
		}
	})

	t.Run("false for expired entry", func(t *testing.T) {
		cache.Set(ctx, "stale", "500", time.Millisecond)
		time.Sleep(10 * time.Millisecond)
		exists, err := cache.Exists(ctx, "stale")
		if err != nil || exists {
			t.Errorf("Exists() = %v, %v; want false, nil", exists, err)
		}
	})

	t.Run("false for unknown key", func(t *testing.T) {
		exists, _ := cache.Exists(ctx, "unknown")
		if exists {
			t.Error("Exists() = true for unknown key")
		}
	})
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	cache.Set(ctx, "a", "1", time.Minute)
	cache.Set(ctx, "b", "2", time.Minute)
	if got := cache.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2", got)
	}

	cache.Clear()
	if got := cache.Size(); got != 0 {
		t.Errorf("Size() after Clear = %d, want 0", got)
	}
}
