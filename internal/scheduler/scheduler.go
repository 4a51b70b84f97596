package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/service"
	"github.com/hrishiii27/shopify-insights/internal/util"

	"go.uber.org/zap"
)

// Scheduler drives the all-tenant sync sweep on a fixed interval. It
// owns its lifecycle state: Start and Stop are idempotent and safe to
// call from any goroutine.
type Scheduler struct {
	syncer   *service.Syncer
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler creates a new scheduler
func NewScheduler(syncer *service.Syncer, interval time.Duration) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		logger:   util.GetLogger(),
	}
}

// Start arms the sweep timer. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("Starting sync scheduler", zap.Duration("interval", s.interval))
	go s.run(ctx, s.done)
}

// Stop cancels the sweep loop and waits for an in-flight sweep to
// finish. Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("Sync scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.logger.Info("Running scheduled tenant sweep")
			s.syncer.SyncAllTenants(ctx)
		}
	}
}
