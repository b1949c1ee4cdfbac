package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles short-lived matching locks in Redis. A route lock
// serializes concurrent match searches for one directed route; it is
// contention relief, not the correctness guard. The status
// compare-and-swap in the ride repository is what prevents double claims.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireRouteLock attempts to acquire the lock for a directed route.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireRouteLock(ctx context.Context, from, to string, ttl time.Duration) (bool, error) {
	key := routeLockKey(from, to)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ReleaseRouteLock releases the lock for a directed route.
func (s *LockStore) ReleaseRouteLock(ctx context.Context, from, to string) error {
	return s.client.Del(ctx, routeLockKey(from, to)).Err()
}

func routeLockKey(from, to string) string {
	return fmt.Sprintf("lock:route:%s->%s", from, to)
}
