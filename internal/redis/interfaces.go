package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the lock store contract. This interface
// allows for testing with mock implementations.
type LockStoreInterface interface {
	AcquireRouteLock(ctx context.Context, from, to string, ttl time.Duration) (bool, error)
	ReleaseRouteLock(ctx context.Context, from, to string) error
}

// CacheStoreInterface defines the user cache contract.
type CacheStoreInterface interface {
	GetUser(ctx context.Context, phone string) (*CachedUser, error)
	SetUser(ctx context.Context, user *CachedUser) error
}

// Ensure implementations satisfy the interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
