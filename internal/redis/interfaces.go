package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for the ride accept lock.
type LockStoreInterface interface {
	AcquireAcceptLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleaseAcceptLock(ctx context.Context, rideID string) error
}

// DedupStoreInterface defines the interface for webhook update dedup.
type DedupStoreInterface interface {
	MarkUpdate(ctx context.Context, updateID int64) (bool, error)
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ DedupStoreInterface = (*DedupStore)(nil)
)
