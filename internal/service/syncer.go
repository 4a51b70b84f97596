package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/broker"
	"github.com/hrishiii27/shopify-insights/internal/models"
	"github.com/hrishiii27/shopify-insights/internal/redisclient"
	"github.com/hrishiii27/shopify-insights/internal/shopify"
	"github.com/hrishiii27/shopify-insights/internal/store"
	"github.com/hrishiii27/shopify-insights/internal/util"

	"go.uber.org/zap"
)

// triggerTimeout bounds a detached manual sync run.
const triggerTimeout = 10 * time.Minute

// finalizeTimeout bounds the bookkeeping writes that close out a run.
const finalizeTimeout = 10 * time.Second

// finalizeCtx returns a fresh context for closing out a run. The run's
// own context may already be cancelled or expired when a run fails, and
// the terminal sync log transition still has to land.
func finalizeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), finalizeTimeout)
}

// Syncer coordinates sync runs: tenant sweep, per-tenant runs, sync log
// lifecycle, and the per-tenant advisory lock.
type Syncer struct {
	store      *store.Store
	shopify    *shopify.Client
	redis      *redisclient.Client
	reconciler *Reconciler
	publisher  *broker.EventPublisher
	lockTTL    time.Duration
	logger     *zap.Logger
}

// NewSyncer creates a new syncer
func NewSyncer(
	store *store.Store,
	shopifyClient *shopify.Client,
	redis *redisclient.Client,
	reconciler *Reconciler,
	publisher *broker.EventPublisher,
	lockTTL time.Duration,
) *Syncer {
	return &Syncer{
		store:      store,
		shopify:    shopifyClient,
		redis:      redis,
		reconciler: reconciler,
		publisher:  publisher,
		lockTTL:    lockTTL,
		logger:     util.GetLogger(),
	}
}

// ParseSyncTypes resolves a record-type selector into the list of types
// to sync. Empty and "all" select every type.
func ParseSyncTypes(selector string) ([]string, error) {
	switch selector {
	case "", "all":
		return models.AllSyncTypes, nil
	case models.SyncTypeCustomers, models.SyncTypeOrders, models.SyncTypeProducts:
		return []string{selector}, nil
	default:
		return nil, fmt.Errorf("unknown sync type: %s", selector)
	}
}

// SyncAllTenants sweeps every active tenant. Per-tenant failures are
// logged and the sweep continues; nothing propagates to the scheduler.
func (s *Syncer) SyncAllTenants(ctx context.Context) {
	ctx, span := util.StartSpan(ctx, "Syncer.SyncAllTenants")
	defer span.End()

	tenants, err := s.store.GetActiveTenants(ctx)
	if err != nil {
		s.logger.Error("Failed to list active tenants", zap.Error(err))
		return
	}

	for i := range tenants {
		tenant := &tenants[i]
		if !tenant.Connected() {
			continue
		}
		if err := s.SyncTenant(ctx, tenant, models.AllSyncTypes); err != nil {
			s.logger.Warn("Tenant sync skipped",
				zap.Int64("tenant_id", tenant.ID),
				zap.Error(err))
		}
	}
}

// SyncTenant runs a sync for the given record types. It returns an
// error only for conditions that prevent the run from starting
// (ErrNotConnected, ErrSyncInProgress); per-type failures land in the
// sync log and the remaining types still run. After all types finish,
// the tenant's last sync time is stamped once.
func (s *Syncer) SyncTenant(ctx context.Context, tenant *models.Tenant, types []string) error {
	ctx, span := util.StartSpan(ctx, "Syncer.SyncTenant")
	defer span.End()

	if !tenant.Connected() {
		return fmt.Errorf("%w: tenant %d", ErrNotConnected, tenant.ID)
	}

	acquired, err := s.redis.AcquireSyncLock(ctx, tenant.ID, s.lockTTL)
	if err != nil {
		// Lock service down: proceed unguarded, upserts are idempotent.
		s.logger.Warn("Sync lock unavailable, continuing without it",
			zap.Int64("tenant_id", tenant.ID),
			zap.Error(err))
	} else if !acquired {
		return fmt.Errorf("%w: tenant %d", ErrSyncInProgress, tenant.ID)
	} else {
		defer func() {
			if err := s.redis.ReleaseSyncLock(context.Background(), tenant.ID); err != nil {
				s.logger.Error("Failed to release sync lock",
					zap.Int64("tenant_id", tenant.ID),
					zap.Error(err))
			}
		}()
	}

	for _, syncType := range types {
		s.runTypeSync(ctx, tenant, syncType)
	}

	stampCtx, cancel := finalizeCtx()
	defer cancel()
	if err := s.store.UpdateTenantLastSync(stampCtx, tenant.ID, time.Now()); err != nil {
		s.logger.Error("Failed to update tenant last sync time",
			zap.Int64("tenant_id", tenant.ID),
			zap.Error(err))
	}

	return nil
}

// Trigger starts a detached sync run for a tenant. The caller returns
// immediately; the run's outcome is captured in the sync log and the
// service log, never in the triggering request.
func (s *Syncer) Trigger(tenant *models.Tenant, types []string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
		defer cancel()

		if err := s.SyncTenant(ctx, tenant, types); err != nil {
			s.logger.Warn("Triggered sync did not start",
				zap.Int64("tenant_id", tenant.ID),
				zap.Error(err))
		}
	}()
}

// runTypeSync executes one (tenant, type) sync run bounded by a sync
// log row's lifecycle. Any fetch or storage failure transitions the log
// to failed; the error stops with this run.
func (s *Syncer) runTypeSync(ctx context.Context, tenant *models.Tenant, syncType string) {
	ctx, span := util.StartSpan(ctx, "Syncer.runTypeSync")
	defer span.End()

	start := time.Now()
	defer func() {
		util.SyncRunDuration.WithLabelValues(syncType).Observe(time.Since(start).Seconds())
	}()

	syncLog, err := s.store.CreateSyncLog(ctx, tenant.ID, syncType)
	if err != nil {
		s.logger.Error("Failed to create sync log",
			zap.Int64("tenant_id", tenant.ID),
			zap.String("sync_type", syncType),
			zap.Error(err))
		return
	}

	if err := s.publisher.PublishSyncStarted(ctx, tenant.ID, syncType, syncLog.ID); err != nil {
		s.logger.Error("Failed to publish SyncStarted event", zap.Error(err))
	}

	count, err := s.fetchAndReconcile(ctx, tenant, syncType)
	if err != nil {
		util.SyncRunsTotal.WithLabelValues(syncType, models.SyncStatusFailed).Inc()
		s.logger.Error("Sync run failed",
			zap.Int64("tenant_id", tenant.ID),
			zap.String("sync_type", syncType),
			zap.Int("items_synced", count),
			zap.Error(err))

		failCtx, cancel := finalizeCtx()
		defer cancel()
		if logErr := s.store.FailSyncLog(failCtx, syncLog.ID, err.Error()); logErr != nil {
			s.logger.Error("Failed to mark sync log failed", zap.Error(logErr))
		}
		if pubErr := s.publisher.PublishSyncFailed(failCtx, tenant.ID, syncType, syncLog.ID, err.Error()); pubErr != nil {
			s.logger.Error("Failed to publish SyncFailed event", zap.Error(pubErr))
		}
		return
	}

	util.SyncRunsTotal.WithLabelValues(syncType, models.SyncStatusCompleted).Inc()
	s.logger.Info("Sync run completed",
		zap.Int64("tenant_id", tenant.ID),
		zap.String("sync_type", syncType),
		zap.Int("items_synced", count))

	doneCtx, cancel := finalizeCtx()
	defer cancel()
	if err := s.store.CompleteSyncLog(doneCtx, syncLog.ID, count); err != nil {
		s.logger.Error("Failed to mark sync log completed", zap.Error(err))
	}
	if err := s.publisher.PublishSyncCompleted(doneCtx, tenant.ID, syncType, syncLog.ID, count); err != nil {
		s.logger.Error("Failed to publish SyncCompleted event", zap.Error(err))
	}
}

// fetchAndReconcile pages through the external API for one record type,
// following cursors until exhaustion, and reconciles every record.
// Malformed records are skipped; any other error aborts the rest of the
// batch (partial application is corrected by the next idempotent pass).
func (s *Syncer) fetchAndReconcile(ctx context.Context, tenant *models.Tenant, syncType string) (int, error) {
	creds := shopify.Credentials{
		ShopDomain:  tenant.ShopDomain,
		AccessToken: tenant.AccessToken.String,
	}

	count := 0
	pageInfo := ""
	for {
		var pageCount int
		var next string
		var err error

		switch syncType {
		case models.SyncTypeCustomers:
			pageCount, next, err = s.syncCustomerPage(ctx, tenant.ID, creds, pageInfo)
		case models.SyncTypeOrders:
			pageCount, next, err = s.syncOrderPage(ctx, tenant.ID, creds, pageInfo)
		case models.SyncTypeProducts:
			pageCount, next, err = s.syncProductPage(ctx, tenant.ID, creds, pageInfo)
		default:
			return count, fmt.Errorf("unknown sync type: %s", syncType)
		}

		count += pageCount
		if err != nil {
			return count, err
		}
		if next == "" {
			return count, nil
		}
		pageInfo = next
	}
}

func (s *Syncer) syncCustomerPage(ctx context.Context, tenantID int64, creds shopify.Credentials, pageInfo string) (int, string, error) {
	records, next, err := s.shopify.ListCustomers(ctx, creds, pageInfo)
	if err != nil {
		util.UpstreamRequestsTotal.WithLabelValues(models.SyncTypeCustomers, "error").Inc()
		return 0, "", fmt.Errorf("failed to fetch customers: %w", err)
	}
	util.UpstreamRequestsTotal.WithLabelValues(models.SyncTypeCustomers, "ok").Inc()

	count := 0
	for i := range records {
		if err := s.reconciler.ReconcileCustomer(ctx, tenantID, &records[i]); err != nil {
			if errors.Is(err, ErrMalformedRecord) {
				util.RecordsSkippedTotal.WithLabelValues(models.SyncTypeCustomers).Inc()
				s.logger.Warn("Skipping malformed customer",
					zap.Int64("tenant_id", tenantID),
					zap.Error(err))
				continue
			}
			return count, "", err
		}
		util.RecordsReconciledTotal.WithLabelValues(models.SyncTypeCustomers, "pull").Inc()
		count++
	}
	return count, next, nil
}

func (s *Syncer) syncOrderPage(ctx context.Context, tenantID int64, creds shopify.Credentials, pageInfo string) (int, string, error) {
	records, next, err := s.shopify.ListOrders(ctx, creds, pageInfo)
	if err != nil {
		util.UpstreamRequestsTotal.WithLabelValues(models.SyncTypeOrders, "error").Inc()
		return 0, "", fmt.Errorf("failed to fetch orders: %w", err)
	}
	util.UpstreamRequestsTotal.WithLabelValues(models.SyncTypeOrders, "ok").Inc()

	count := 0
	for i := range records {
		if err := s.reconciler.ReconcileOrder(ctx, tenantID, &records[i]); err != nil {
			if errors.Is(err, ErrMalformedRecord) {
				util.RecordsSkippedTotal.WithLabelValues(models.SyncTypeOrders).Inc()
				s.logger.Warn("Skipping malformed order",
					zap.Int64("tenant_id", tenantID),
					zap.Error(err))
				continue
			}
			return count, "", err
		}
		util.RecordsReconciledTotal.WithLabelValues(models.SyncTypeOrders, "pull").Inc()
		count++
	}
	return count, next, nil
}

func (s *Syncer) syncProductPage(ctx context.Context, tenantID int64, creds shopify.Credentials, pageInfo string) (int, string, error) {
	records, next, err := s.shopify.ListProducts(ctx, creds, pageInfo)
	if err != nil {
		util.UpstreamRequestsTotal.WithLabelValues(models.SyncTypeProducts, "error").Inc()
		return 0, "", fmt.Errorf("failed to fetch products: %w", err)
	}
	util.UpstreamRequestsTotal.WithLabelValues(models.SyncTypeProducts, "ok").Inc()

	count := 0
	for i := range records {
		if err := s.reconciler.ReconcileProduct(ctx, tenantID, &records[i]); err != nil {
			if errors.Is(err, ErrMalformedRecord) {
				util.RecordsSkippedTotal.WithLabelValues(models.SyncTypeProducts).Inc()
				s.logger.Warn("Skipping malformed product",
					zap.Int64("tenant_id", tenantID),
					zap.Error(err))
				continue
			}
			return count, "", err
		}
		util.RecordsReconciledTotal.WithLabelValues(models.SyncTypeProducts, "pull").Inc()
		count++
	}
	return count, next, nil
}
