package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerStartStopIdempotent(t *testing.T) {
	// An interval far beyond the test lifetime keeps the sweep from
	// ever firing.
	s := NewScheduler(&service.Syncer{}, time.Hour)

	s.Start(context.Background())
	s.Start(context.Background())

	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
}

func TestSchedulerRestart(t *testing.T) {
	s := NewScheduler(&service.Syncer{}, time.Hour)

	s.Start(context.Background())
	s.Stop()
	s.Start(context.Background())
	s.Stop()
}
