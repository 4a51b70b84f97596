package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_runs_total",
		Help: "Total number of sync runs by record type and outcome",
	}, []string{"type", "status"})

	SyncRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_run_duration_seconds",
		Help:    "Duration of sync runs by record type",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	RecordsReconciledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "records_reconciled_total",
		Help: "Total number of external records reconciled by type and source",
	}, []string{"type", "source"})

	RecordsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "records_skipped_total",
		Help: "Total number of malformed records skipped during reconciliation",
	}, []string{"type"})

	WebhooksReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhooks_received_total",
		Help: "Total number of webhook deliveries received by topic",
	}, []string{"topic"})

	WebhooksRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhooks_rejected_total",
		Help: "Total number of webhook deliveries dropped",
	}, []string{"reason"})

	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Total number of external API page fetches by resource and outcome",
	}, []string{"resource", "status"})

	AnalyticsRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analytics_request_duration_seconds",
		Help:    "Duration of analytics derivations",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
