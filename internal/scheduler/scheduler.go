package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"relay-go/internal/chattypes"
	"relay-go/internal/history"
)

// Scheduler runs the periodic maintenance pass: trim the record store to its
// retention bound and purge uploads past their age limit. Failures are
// logged and retried on the next scheduled pass, never surfaced to clients.
type Scheduler struct {
	cron             *cron.Cron
	store            *history.Store
	contentStore     chattypes.ContentStore
	attachmentMaxAge time.Duration
	spec             string
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(store *history.Store, contentStore chattypes.ContentStore, attachmentMaxAge time.Duration, spec string) *Scheduler {
	return &Scheduler{
		cron:             cron.New(cron.WithLocation(time.UTC)),
		store:            store,
		contentStore:     contentStore,
		attachmentMaxAge: attachmentMaxAge,
		spec:             spec,
	}
}

// Start runs one cleanup immediately and registers the periodic job.
func (s *Scheduler) Start() {
	s.RunCleanup()

	if _, err := s.cron.AddFunc(s.spec, s.RunCleanup); err != nil {
		zap.S().Errorw("failed to register cleanup job", "spec", s.spec, "error", err)
		return
	}
	s.cron.Start()
	zap.S().Infow("maintenance scheduler started", "spec", s.spec)
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("maintenance scheduler stopped")
}

// RunCleanup performs one maintenance pass. Eviction goes through the same
// locked store method the write path uses, so the periodic and inline
// eviction paths cannot race each other above the retention bound.
func (s *Scheduler) RunCleanup() {
	evicted, err := s.store.EvictExcess()
	if err != nil {
		zap.S().Errorw("record eviction pass failed", "error", err)
	} else if evicted > 0 {
		zap.S().Infow("evicted excess records", "count", evicted)
	}

	purged, err := s.contentStore.PurgeOlderThan(s.attachmentMaxAge)
	if err != nil {
		zap.S().Errorw("attachment purge pass failed", "error", err)
	} else if purged > 0 {
		zap.S().Infow("purged expired attachments", "count", purged)
	}
}
