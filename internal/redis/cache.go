package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore caches verified users by phone number so the hot path of the
// webhook (verified user sends a ride request) skips one Postgres read.
// Only verified users are cached: their identity fields are immutable
// after onboarding, so a cached entry can never go stale.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

const (
	userCacheTTL    = 10 * time.Minute
	userCachePrefix = "cache:user:"
)

// CachedUser represents a cached verified user.
type CachedUser struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
}

// GetUser retrieves a verified user from cache. Returns (nil, nil) on a
// cache miss.
func (s *CacheStore) GetUser(ctx context.Context, phone string) (*CachedUser, error) {
	data, err := s.client.Get(ctx, userCachePrefix+phone).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var cached CachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

// SetUser caches a verified user.
func (s *CacheStore) SetUser(ctx context.Context, user *CachedUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, userCachePrefix+user.PhoneNumber, data, userCacheTTL).Err()
}
