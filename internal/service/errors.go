package service

import "errors"

var (
	// ErrMalformedRecord marks a single external record that cannot be
	// reconciled (missing natural key). The record is skipped; the
	// batch continues.
	ErrMalformedRecord = errors.New("malformed external record")

	// ErrNotConnected is returned when a sync is attempted for a tenant
	// with no stored access token. Surfaced before any sync log row is
	// created.
	ErrNotConnected = errors.New("tenant has no access token")

	// ErrSyncInProgress is returned when the per-tenant advisory lock
	// is already held by another sync run.
	ErrSyncInProgress = errors.New("sync already running for tenant")
)
