package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/logging"
)

// Syncer runs a sync cycle. *Engine implements it.
type Syncer interface {
	SyncAll(ctx context.Context) (*Report, error)
}

// Scheduler runs a cycle every interval while online reports true.
type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	online   func() bool
	log      logging.Logger

	// OnUnauthorized, when set, is called after a cycle ended with
	// common.ErrUnauthorized.
	OnUnauthorized func()
}

func NewScheduler(s Syncer, interval time.Duration, online func() bool, log logging.Logger) *Scheduler {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Scheduler{syncer: s, interval: interval, online: online, log: log.With("module", "scheduler")}
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.online != nil && !s.online() {
		return
	}

	rep, err := s.syncer.SyncAll(ctx)
	if err != nil {
		s.log.Warn(ctx, "background sync failed", "error", err)
		if errors.Is(err, common.ErrUnauthorized) && s.OnUnauthorized != nil {
			s.OnUnauthorized()
		}
		return
	}
	if rep != nil && rep.Failed() > 0 {
		s.log.Info(ctx, "background sync left records for the next cycle", "failed", rep.Failed())
	}
}
