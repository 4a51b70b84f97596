package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/broker"
	"github.com/hrishiii27/shopify-insights/internal/models"
	"github.com/hrishiii27/shopify-insights/internal/redisclient"
	"github.com/hrishiii27/shopify-insights/internal/service"
	"github.com/hrishiii27/shopify-insights/internal/store"
	"github.com/hrishiii27/shopify-insights/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	store         *store.Store
	syncer        *service.Syncer
	reconciler    *service.Reconciler
	analytics     *service.Analytics
	redis         *redisclient.Client
	publisher     *broker.EventPublisher
	webhookSecret string
	syncLogLimit  int
	logger        *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	store *store.Store,
	syncer *service.Syncer,
	reconciler *service.Reconciler,
	analytics *service.Analytics,
	redis *redisclient.Client,
	publisher *broker.EventPublisher,
	webhookSecret string,
	syncLogLimit int,
) *Handler {
	return &Handler{
		store:         store,
		syncer:        syncer,
		reconciler:    reconciler,
		analytics:     analytics,
		redis:         redis,
		publisher:     publisher,
		webhookSecret: webhookSecret,
		syncLogLimit:  syncLogLimit,
		logger:        util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/webhooks/:tenantID", h.handleWebhook)

	v1 := router.Group("/api/v1")
	v1.Use(h.tenantAuth())
	{
		v1.POST("/sync", h.triggerSync)
		v1.GET("/sync/status", h.syncStatus)
		v1.POST("/connect", h.connectStore)
		v1.GET("/analytics/segments", h.customerSegments)
		v1.GET("/analytics/forecast", h.revenueForecast)
		v1.GET("/dashboard/summary", h.dashboardSummary)
		v1.GET("/orders", h.recentOrders)
		v1.GET("/events", h.recentEvents)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// tenantAuth resolves the calling tenant from the X-API-Key header.
// Credential issuance itself lives outside this service.
func (h *Handler) tenantAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing API key",
			})
			return
		}

		tenant, err := h.store.GetTenantByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to resolve tenant",
			})
			return
		}
		if tenant == nil || !tenant.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid API key",
			})
			return
		}

		c.Set("tenant", tenant)
		c.Next()
	}
}

func currentTenant(c *gin.Context) *models.Tenant {
	return c.MustGet("tenant").(*models.Tenant)
}

// triggerSync kicks off a detached sync run. The response acknowledges
// the queued types immediately; the outcome is observable only via the
// sync status query.
func (h *Handler) triggerSync(c *gin.Context) {
	tenant := currentTenant(c)

	types, err := service.ParseSyncTypes(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid sync type",
			"details": err.Error(),
		})
		return
	}

	if !tenant.Connected() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Store not connected",
		})
		return
	}

	h.syncer.Trigger(tenant, types)

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Sync started",
		"types":   types,
	})
}

// syncStatus returns the tenant's last sync time and recent sync logs
func (h *Handler) syncStatus(c *gin.Context) {
	tenant := currentTenant(c)

	logs, err := h.store.GetRecentSyncLogs(c.Request.Context(), tenant.ID, h.syncLogLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load sync logs",
			"details": err.Error(),
		})
		return
	}

	entries := make([]gin.H, 0, len(logs))
	for _, l := range logs {
		entry := gin.H{
			"id":           l.ID,
			"type":         l.SyncType,
			"status":       l.Status,
			"items_synced": l.ItemsSynced,
			"started_at":   l.StartedAt,
		}
		if l.Error.Valid {
			entry["error"] = l.Error.String
		}
		if l.CompletedAt.Valid {
			entry["completed_at"] = l.CompletedAt.Time
		}
		entries = append(entries, entry)
	}

	running, err := h.store.HasRunningSync(c.Request.Context(), tenant.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load sync status",
			"details": err.Error(),
		})
		return
	}

	resp := gin.H{"sync_logs": entries, "sync_running": running}
	if tenant.LastSyncAt.Valid {
		resp["last_sync_at"] = tenant.LastSyncAt.Time
	}

	c.JSON(http.StatusOK, resp)
}

// connectRequest carries the external access credential
type connectRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// connectStore stores the tenant's access credential. No upstream
// validation call happens here; the first sync attempt validates it.
func (h *Handler) connectStore(c *gin.Context) {
	tenant := currentTenant(c)

	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.store.UpdateTenantAccessToken(c.Request.Context(), tenant.ID, req.AccessToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to store access token",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store connected",
	})
}

// customerSegments returns the RFM segmentation view
func (h *Handler) customerSegments(c *gin.Context) {
	tenant := currentTenant(c)

	result, err := h.analytics.CustomerSegments(c.Request.Context(), tenant.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute segments",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// revenueForecast returns the revenue forecast view
func (h *Handler) revenueForecast(c *gin.Context) {
	tenant := currentTenant(c)

	result, err := h.analytics.RevenueForecast(c.Request.Context(), tenant.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute forecast",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// dashboardSummary returns headline counts for the dashboard
func (h *Handler) dashboardSummary(c *gin.Context) {
	tenant := currentTenant(c)
	ctx := c.Request.Context()

	customers, err := h.store.CountCustomers(ctx, tenant.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}
	orders, err := h.store.CountOrders(ctx, tenant.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}
	products, err := h.store.CountProducts(ctx, tenant.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}
	revenue, err := h.store.TotalRevenue(ctx, tenant.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers":     customers,
		"orders":        orders,
		"products":      products,
		"total_revenue": revenue,
	})
}

// recentOrders returns the most recent orders with a guest-aware
// customer name
func (h *Handler) recentOrders(c *gin.Context) {
	tenant := currentTenant(c)

	limit := 20
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	rows, err := h.store.GetRecentOrders(c.Request.Context(), tenant.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load orders",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": rows})
}

// recentEvents returns the most recent cart/checkout events
func (h *Handler) recentEvents(c *gin.Context) {
	tenant := currentTenant(c)

	limit := 20
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	events, err := h.store.GetRecentEvents(c.Request.Context(), tenant.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load events",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
