package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// guardTTL is how long a delivery id is remembered. Webhook providers
	// retry for at most a day.
	guardTTL = 24 * time.Hour

	guardKeyPrefix = "wot:delivery:"
)

// Guard suppresses duplicate webhook deliveries of the same email with a
// Redis SETNX. It protects against provider retries, not against work-order
// duplicates — those go through Resolve. A nil Guard admits everything.
type Guard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGuard(rdb *redis.Client) *Guard {
	return &Guard{rdb: rdb, ttl: guardTTL}
}

// FirstDelivery returns true if this delivery id has not been seen before,
// marking it as seen atomically.
func (g *Guard) FirstDelivery(ctx context.Context, deliveryID string) (bool, error) {
	if g == nil || g.rdb == nil {
		return true, nil
	}
	set, err := g.rdb.SetNX(ctx, guardKeyPrefix+deliveryID, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("delivery guard SETNX: %w", err)
	}
	return set, nil
}
