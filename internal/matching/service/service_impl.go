package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/propelre/leadpulse/internal/clock"
	catalogdomain "github.com/propelre/leadpulse/internal/catalog/domain"
	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
	"github.com/propelre/leadpulse/internal/matching/domain"
	signaldomain "github.com/propelre/leadpulse/internal/signal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	ContactRepo contactdomain.Repository
	SignalRepo  signaldomain.Repository
	CatalogRepo catalogdomain.Repository
	Redis       *redis.Client `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	contactRepo contactdomain.Repository
	signalRepo  signaldomain.Repository
	catalogRepo catalogdomain.Repository
	cache       *matchCache
}

func New(p Params) domain.Service {
	log := p.Log.Named("matching.service")
	return &Service{
		db:          p.DB,
		log:         log,
		clock:       p.Clock,
		contactRepo: p.ContactRepo,
		signalRepo:  p.SignalRepo,
		catalogRepo: p.CatalogRepo,
		cache:       newMatchCache(p.Redis, log),
	}
}

func (s *Service) BuyerSnapshot(ctx context.Context, buyerID snowflake.ID) (domain.BuyerSnapshot, error) {
	contact, err := s.contactRepo.FindByID(ctx, s.db, buyerID)
	if err != nil {
		return domain.BuyerSnapshot{}, err
	}
	if contact == nil {
		return domain.BuyerSnapshot{}, domain.ErrBuyerNotFound
	}

	signals, err := s.signalRepo.PropertySignals(ctx, s.db, buyerID, s.clock.Now())
	if err != nil {
		return domain.BuyerSnapshot{}, err
	}

	cityByRef, err := s.cityLookup(ctx, signals)
	if err != nil {
		return domain.BuyerSnapshot{}, err
	}

	return domain.BuyerSnapshot{
		BuyerID:    buyerID,
		Stated:     contact.Preferences.Data(),
		Behavioral: inferBehavioral(signals, cityByRef, domain.DefaultMatchConfig()),
	}, nil
}

func (s *Service) MatchProperties(ctx context.Context, buyerID snowflake.ID, candidates []catalogdomain.Property, cfg domain.MatchConfig) ([]domain.MatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key := cacheKey(buyerID, candidates, cfg)
	if cached, ok := s.cache.get(ctx, key); ok {
		return cached, nil
	}

	buyer, err := s.BuyerSnapshot(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	asOf := s.clock.Now()
	results := make([]domain.MatchResult, 0, len(candidates))
	for _, property := range candidates {
		results = append(results, scoreMatch(buyer, property, asOf, cfg))
	}
	sortResults(results)

	s.cache.set(ctx, key, results)
	return results, nil
}

// cityLookup resolves the cities for every property a buyer interacted with
// so behavioral inference can weight locations.
func (s *Service) cityLookup(ctx context.Context, signals []signaldomain.PropertySignal) (map[snowflake.ID]string, error) {
	if len(signals) == 0 {
		return nil, nil
	}

	seen := map[snowflake.ID]struct{}{}
	ids := make([]snowflake.ID, 0, len(signals))
	for _, sig := range signals {
		if sig.PropertyRef == 0 {
			continue
		}
		if _, ok := seen[sig.PropertyRef]; ok {
			continue
		}
		seen[sig.PropertyRef] = struct{}{}
		ids = append(ids, sig.PropertyRef)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	properties, err := s.catalogRepo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	cities := make(map[snowflake.ID]string, len(properties))
	for _, property := range properties {
		cities[property.ID] = property.City
	}
	return cities, nil
}
