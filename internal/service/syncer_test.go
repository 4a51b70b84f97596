package service

import (
	"context"
	"testing"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSyncTypes(t *testing.T) {
	types, err := ParseSyncTypes("")
	require.NoError(t, err)
	assert.Equal(t, models.AllSyncTypes, types)

	types, err = ParseSyncTypes("all")
	require.NoError(t, err)
	assert.Equal(t, models.AllSyncTypes, types)

	types, err = ParseSyncTypes("orders")
	require.NoError(t, err)
	assert.Equal(t, []string{models.SyncTypeOrders}, types)

	_, err = ParseSyncTypes("inventory")
	assert.Error(t, err)
}

func TestSyncTenantNotConnected(t *testing.T) {
	// This would require a database and redis connection for the full
	// path; the not-connected check fires before either is touched.
	s := &Syncer{}

	err := s.SyncTenant(context.Background(), &models.Tenant{ID: 1}, models.AllSyncTypes)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestFinalizeCtxOutlivesRunContext(t *testing.T) {
	// A run that dies because its own context expired must still be
	// able to write its terminal sync log transition.
	runCtx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, runCtx.Err())

	ctx, done := finalizeCtx()
	defer done()

	assert.NoError(t, ctx.Err())

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(finalizeTimeout), deadline, time.Second)
}
