package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AcquireSyncLock acquires the per-tenant sync advisory lock. Returns
// false when another sync for the same tenant already holds it. The TTL
// bounds the lock lifetime if the holder dies mid-run.
func (c *Client) AcquireSyncLock(ctx context.Context, tenantID int64, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("sync:lock:%d", tenantID), "1", ttl).Result()
}

// ReleaseSyncLock releases the per-tenant sync advisory lock
func (c *Client) ReleaseSyncLock(ctx context.Context, tenantID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("sync:lock:%d", tenantID)).Err()
}

// MarkWebhookDelivery records a webhook delivery id with a TTL. Returns
// false when the same delivery was already seen, so redelivered
// webhooks can be acknowledged without reprocessing.
func (c *Client) MarkWebhookDelivery(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("webhook:delivery:%s", deliveryID), "1", ttl).Result()
}

// ForgetWebhookDelivery drops a delivery id so a redelivery is
// processed again. Used when applying the delivery failed after it was
// marked.
func (c *Client) ForgetWebhookDelivery(ctx context.Context, deliveryID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("webhook:delivery:%s", deliveryID)).Err()
}
