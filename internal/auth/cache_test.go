package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) *SessionCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSessionCache(rdb)
}

func TestSessionCache_SetGet(t *testing.T) {
	t.Parallel()

	cache := newTestCache(t)
	ctx := context.Background()
	token := "tok-1"
	userID := uuid.New()

	if _, ok := cache.Get(ctx, token); ok {
		t.Fatal("expected miss before Set")
	}

	if err := cache.Set(ctx, token, userID, time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, ok := cache.Get(ctx, token)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got != userID {
		t.Errorf("Get() = %v, want %v", got, userID)
	}
}

func TestSessionCache_Delete(t *testing.T) {
	t.Parallel()

	cache := newTestCache(t)
	ctx := context.Background()
	token := "tok-2"
	userID := uuid.New()

	if err := cache.Set(ctx, token, userID, time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := cache.Delete(ctx, token); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, ok := cache.Get(ctx, token); ok {
		t.Fatal("expected miss after Delete")
	}
}

func TestSessionCache_NilClientIsNoOp(t *testing.T) {
	t.Parallel()

	var cache *SessionCache
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "anything"); ok {
		t.Fatal("expected nil cache to always miss")
	}
	if err := cache.Set(ctx, "anything", uuid.New(), time.Minute); err != nil {
		t.Errorf("Set() on nil cache should be a no-op, got error: %v", err)
	}
	if err := cache.Delete(ctx, "anything"); err != nil {
		t.Errorf("Delete() on nil cache should be a no-op, got error: %v", err)
	}
}

func TestSessionCache_SetZeroTTLIsNoOp(t *testing.T) {
	t.Parallel()

	cache := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "tok-3", uuid.New(), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, ok := cache.Get(ctx, "tok-3"); ok {
		t.Fatal("expected zero-TTL Set to be a no-op")
	}
}
