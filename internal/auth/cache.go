package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// sessionCacheKeyPrefix namespaces session cache keys in the shared Redis/Valkey keyspace.
const sessionCacheKeyPrefix = "session:"

// SessionCache is a best-effort accelerator in front of the Session table: a hit avoids a Postgres
// round trip on the hot per-request authorization path. It never changes authorize_request's
// semantics — a cache miss always falls through to SessionRepository, and the Session row remains the
// sole source of truth (spec.md §3, DOMAIN STACK in SPEC_FULL.md).
type SessionCache struct {
	rdb *redis.Client
}

// NewSessionCache wraps a Redis client as a session cache. A nil client disables caching; Get always
// misses and Set/Delete are no-ops, so callers never need a separate enabled/disabled branch.
func NewSessionCache(rdb *redis.Client) *SessionCache {
	return &SessionCache{rdb: rdb}
}

// Get returns the cached user_id for a token, or ok=false on a miss or when caching is disabled.
func (c *SessionCache) Get(ctx context.Context, token string) (userID uuid.UUID, ok bool) {
	if c == nil || c.rdb == nil {
		return uuid.Nil, false
	}
	val, err := c.rdb.Get(ctx, sessionCacheKeyPrefix+token).Result()
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Set caches the user_id for a token until ttl elapses. Errors are logged by the caller, never fatal.
func (c *SessionCache) Set(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	if c == nil || c.rdb == nil || ttl <= 0 {
		return nil
	}
	if err := c.rdb.Set(ctx, sessionCacheKeyPrefix+token, userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("cache session: %w", err)
	}
	return nil
}

// Delete evicts a cached session so a deleted session is not served stale.
func (c *SessionCache) Delete(ctx context.Context, token string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, sessionCacheKeyPrefix+token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("evict cached session: %w", err)
	}
	return nil
}
