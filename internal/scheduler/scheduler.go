package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/propelre/leadpulse/internal/clock"
	"github.com/propelre/leadpulse/internal/config"
	scoringdomain "github.com/propelre/leadpulse/internal/scoring/domain"
	signaldomain "github.com/propelre/leadpulse/internal/signal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Config     config.Config
	Ingestor   signaldomain.Ingestor
	ScoringSvc scoringdomain.Service
}

// Scheduler drives the ingest-then-score cycle. One pass pulls the CRM feed
// and then kicks a scoring run; a run already in flight is skipped rather
// than queued.
type Scheduler struct {
	log        *zap.Logger
	cfg        config.SchedulerConfig
	scoringCfg config.ScoringConfig
	clock      clock.Clock
	ingestor   signaldomain.Ingestor
	scoringSvc scoringdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Ingestor == nil || p.ScoringSvc == nil {
		return nil, ErrInvalidConfig
	}
	if p.Config.Scheduler.RunInterval <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.Scheduler,
		scoringCfg: p.Config.Scoring,
		clock:      p.Clock,
		ingestor:   p.Ingestor,
		scoringSvc: p.ScoringSvc,
	}, nil
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	var err error
	err = errors.Join(err, s.syncJob(ctx))
	err = errors.Join(err, s.scoringJob(ctx))
	return err
}

func (s *Scheduler) syncJob(ctx context.Context) error {
	start := s.clock.Now()
	result, err := s.ingestor.SyncFromFeed(ctx)
	if err != nil {
		s.log.Warn("feed sync failed",
			zap.Duration("elapsed", s.clock.Now().Sub(start)),
			zap.Error(err),
		)
		return fmt.Errorf("feed_sync: %w", err)
	}
	s.log.Info("feed sync complete",
		zap.Duration("elapsed", s.clock.Now().Sub(start)),
		zap.Int("contacts_seen", result.ContactsSeen),
		zap.Int("events_appended", result.EventsAppended),
		zap.Int("comms_appended", result.CommsAppended),
		zap.Int("malformed", result.Malformed),
	)
	return nil
}

func (s *Scheduler) scoringJob(ctx context.Context) error {
	cfg := scoringdomain.FromAppConfig(s.scoringCfg)
	run, err := s.scoringSvc.Run(ctx, cfg)
	if err != nil {
		if errors.Is(err, scoringdomain.ErrRunInProgress) {
			s.log.Info("scoring run already in flight, skipping")
			return nil
		}
		return fmt.Errorf("scoring: %w", err)
	}
	s.log.Info("scoring run finished",
		zap.Int64("run_id", int64(run.ID)),
		zap.String("status", string(run.Status)),
		zap.Int("processed", run.Processed),
		zap.Int("failed", run.Failed),
	)
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler pass failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
