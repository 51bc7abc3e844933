package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/propelre/leadpulse/internal/clock"
	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
	"github.com/propelre/leadpulse/internal/scoring/domain"
	signaldomain "github.com/propelre/leadpulse/internal/signal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	ContactRepo contactdomain.Repository
	SignalRepo  signaldomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	contactRepo contactdomain.Repository
	signalRepo  signaldomain.Repository

	running chan struct{}
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("scoring.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		contactRepo: p.ContactRepo,
		signalRepo:  p.SignalRepo,
		running:     make(chan struct{}, 1),
	}
}

func (s *Service) GetRun(ctx context.Context, id snowflake.ID) (*domain.ScoringRun, error) {
	var run domain.ScoringRun
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == 0 {
		return nil, domain.ErrRunNotFound
	}
	return &run, nil
}

func (s *Service) LatestSnapshot(ctx context.Context, contactID snowflake.ID) (*domain.ScoreSnapshot, error) {
	var snap domain.ScoreSnapshot
	err := s.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("recorded_at desc, id desc").
		Limit(1).
		Find(&snap).Error
	if err != nil {
		return nil, err
	}
	if snap.ID == 0 {
		return nil, nil
	}
	return &snap, nil
}

func (s *Service) History(ctx context.Context, contactID snowflake.ID, window time.Duration) ([]domain.ScoreSnapshot, error) {
	return s.historyBefore(ctx, contactID, s.clock.Now(), window)
}

func (s *Service) historyBefore(ctx context.Context, contactID snowflake.ID, asOf time.Time, window time.Duration) ([]domain.ScoreSnapshot, error) {
	var snaps []domain.ScoreSnapshot
	err := s.db.WithContext(ctx).
		Where("contact_id = ? AND recorded_at > ? AND recorded_at < ?", contactID, asOf.Add(-window), asOf).
		Order("recorded_at asc, id asc").
		Find(&snaps).Error
	if err != nil {
		return nil, err
	}
	return snaps, nil
}
