package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireAcceptLock attempts to acquire the accept lock for the given ride.
// The lock serializes concurrent accept attempts ahead of the database
// compare-and-swap. Returns true if the lock was acquired, false if already
// held.
func (s *LockStore) AcquireAcceptLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:ride:accept:%s", rideID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseAcceptLock releases the accept lock for the given ride.
func (s *LockStore) ReleaseAcceptLock(ctx context.Context, rideID string) error {
	key := fmt.Sprintf("lock:ride:accept:%s", rideID)

	return s.client.Del(ctx, key).Err()
}
