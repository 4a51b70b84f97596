package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient("localhost:6379", "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestWebhookDeliveryForgetAllowsReprocessing(t *testing.T) {
	t.Skip("Integration test - requires redis")

	c := newTestClient(t)
	ctx := context.Background()
	deliveryID := "delivery-forget-test"

	fresh, err := c.MarkWebhookDelivery(ctx, deliveryID, time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = c.MarkWebhookDelivery(ctx, deliveryID, time.Minute)
	require.NoError(t, err)
	assert.False(t, fresh)

	// Forgetting the id (as the webhook handler does when applying the
	// delivery fails) makes the next redelivery fresh again.
	require.NoError(t, c.ForgetWebhookDelivery(ctx, deliveryID))

	fresh, err = c.MarkWebhookDelivery(ctx, deliveryID, time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestSyncLockMutualExclusion(t *testing.T) {
	t.Skip("Integration test - requires redis")

	c := newTestClient(t)
	ctx := context.Background()

	acquired, err := c.AcquireSyncLock(ctx, 9001, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = c.AcquireSyncLock(ctx, 9001, time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, c.ReleaseSyncLock(ctx, 9001))

	acquired, err = c.AcquireSyncLock(ctx, 9001, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, c.ReleaseSyncLock(ctx, 9001))
}
