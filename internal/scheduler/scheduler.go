package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Activator is the part of the tournament service the scheduler drives.
type Activator interface {
	ListTournaments(ctx context.Context, filter store.Filter) ([]*bracket.Tournament, error)
	ForceActivate(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error)
}

// Scheduler starts tournaments whose start time has passed with whoever has
// registered so far.
type Scheduler struct {
	activator Activator
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
	stopChan  chan struct{}
}

const DefaultInterval = 30 * time.Second

// NewScheduler falls back to DefaultInterval when interval is not positive.
func NewScheduler(activator Activator, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		logger.Warn("invalid scheduler interval, using default",
			zap.Duration("interval", interval),
			zap.Duration("default", DefaultInterval),
		)
		interval = DefaultInterval
	}
	return &Scheduler{
		activator: activator,
		interval:  interval,
		logger:    logger.Named("scheduler"),
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
}

// Start blocks until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Tick(ctx)
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-s.stopChan:
			s.logger.Info("scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopChan)
}

// Tick activates every due tournament once and returns how many started.
func (s *Scheduler) Tick(ctx context.Context) int {
	now := s.now().UTC()
	due, err := s.activator.ListTournaments(ctx, store.Filter{
		Status:       bracket.TournamentRegistration,
		StartsBefore: &now,
	})
	if err != nil {
		s.logger.Error("failed to list due tournaments", zap.Error(err))
		return 0
	}

	started := 0
	for _, t := range due {
		_, err := s.activator.ForceActivate(ctx, t.ID)
		switch {
		case err == nil:
			started++
			s.logger.Info("tournament started on schedule",
				zap.Stringer("tournament_id", t.ID),
				zap.Int("participants", len(t.Participants)),
			)
		case errors.Is(err, service.ErrQuorumNotMet):
			s.logger.Debug("tournament below quorum, waiting",
				zap.Stringer("tournament_id", t.ID),
				zap.Int("participants", len(t.Participants)),
			)
		case errors.Is(err, service.ErrNotInRegistration):
			// filled up and activated between List and ForceActivate
		default:
			s.logger.Error("failed to start tournament", zap.Stringer("tournament_id", t.ID), zap.Error(err))
		}
	}
	return started
}
