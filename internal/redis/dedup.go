package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupStore records processed Telegram update IDs so redelivered webhook
// events are acknowledged without replaying their side effects. Telegram
// retries until it sees a 200, so the webhook always acks and relies on this
// store for exactly-once processing.
type DedupStore struct {
	client *redis.Client
}

// NewDedupStore creates a new DedupStore.
func NewDedupStore(client *redis.Client) *DedupStore {
	return &DedupStore{client: client}
}

// MarkUpdate records an update ID. Returns true if this is the first
// delivery, false if the update was already processed.
func (s *DedupStore) MarkUpdate(ctx context.Context, updateID int64) (bool, error) {
	key := fmt.Sprintf("telegram:update:%d", updateID)

	ok, err := s.client.SetNX(ctx, key, "1", dedupTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}
