package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/propelre/leadpulse/internal/clock"
	"github.com/propelre/leadpulse/internal/config"
	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
	"github.com/propelre/leadpulse/internal/crm"
	"github.com/propelre/leadpulse/internal/guard"
	obsmetrics "github.com/propelre/leadpulse/internal/observability/metrics"
	"github.com/propelre/leadpulse/internal/signal/domain"
	"github.com/propelre/leadpulse/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ingestLookback bounds how far back event/communication pulls reach. The
// store is idempotent on source_ref, so overlapping pulls are safe.
const ingestLookback = 30 * 24 * time.Hour

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Config      config.Config
	Feed        crm.Feed `optional:"true"`
	ContactRepo contactdomain.Repository
	SignalRepo  domain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	cfg         config.Config
	feed        crm.Feed
	contactRepo contactdomain.Repository
	signalRepo  domain.Repository
}

func New(p Params) domain.Ingestor {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("signal.ingest"),
		genID:       p.GenID,
		clock:       p.Clock,
		cfg:         p.Config,
		feed:        p.Feed,
		contactRepo: p.ContactRepo,
		signalRepo:  p.SignalRepo,
	}
}

// SyncFromFeed pulls contacts, events, and communications from the CRM feed
// into the store. Malformed records are counted and skipped; only an
// unreachable source aborts the pass.
func (s *Service) SyncFromFeed(ctx context.Context) (result domain.SyncResult, err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		obsmetrics.Scoring().IncSyncPass(outcome)
	}()

	if s.feed == nil {
		return result, crm.ErrSourceUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Scheduler.FeedTimeout)
	defer cancel()

	records, err := s.feed.FetchContacts(ctx)
	if err != nil {
		return result, errors.Join(crm.ErrSourceUnavailable, err)
	}

	now := s.clock.Now()
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.ExternalRef) == "" {
			result.Malformed++
			continue
		}
		seen[rec.ExternalRef] = struct{}{}
		result.ContactsSeen++
		if err := s.upsertContact(ctx, rec, &result); err != nil {
			result.Malformed++
			s.log.Warn("failed to upsert contact",
				zap.String("external_ref", rec.ExternalRef),
				zap.Error(err),
			)
		}
	}

	if err := s.applyAssignmentPass(ctx, seen, now, &result); err != nil {
		return result, err
	}

	since := now.Add(-ingestLookback)
	if err := s.syncEvents(ctx, since, &result); err != nil {
		return result, err
	}
	if err := s.syncCommunications(ctx, since, &result); err != nil {
		return result, err
	}

	s.log.Info("feed sync complete",
		zap.Int("contacts_seen", result.ContactsSeen),
		zap.Int("events_appended", result.EventsAppended),
		zap.Int("comms_appended", result.CommsAppended),
		zap.Int("malformed", result.Malformed),
		zap.Int("suspected", result.Suspected),
		zap.Int("reassigned", result.Reassigned),
	)
	return result, nil
}

func (s *Service) upsertContact(ctx context.Context, rec crm.ContactRecord, result *domain.SyncResult) error {
	existing, err := s.contactRepo.FindByExternalRef(ctx, s.db, rec.ExternalRef)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	prefs := statedPreferences(rec)

	if existing == nil {
		contact := &contactdomain.Contact{
			ID:               s.genID.Generate(),
			ExternalRef:      rec.ExternalRef,
			Name:             rec.Name,
			Stage:            contactStage(rec.Stage),
			Tags:             datatypes.NewJSONSlice(rec.Tags),
			ScoreTrend:       contactdomain.TrendStable,
			AssignmentState:  contactdomain.AssignmentPresent,
			LastSeenInFeedAt: sql.NullTime{Time: now, Valid: true},
			Preferences:      datatypes.NewJSONType(prefs),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.contactRepo.Insert(ctx, s.db, contact); err != nil {
			if db.IsDuplicateKeyErr(err) {
				result.Duplicates++
				return nil
			}
			return err
		}
		result.ContactsCreated++
		return nil
	}

	existing.Name = rec.Name
	existing.Stage = contactStage(rec.Stage)
	existing.Tags = datatypes.NewJSONSlice(rec.Tags)
	existing.Preferences = datatypes.NewJSONType(prefs)
	existing.LastSeenInFeedAt = sql.NullTime{Time: now, Valid: true}
	if existing.AssignmentState == contactdomain.AssignmentSuspect {
		existing.AssignmentState = contactdomain.AssignmentPresent
		existing.ReassignmentSuspectAt = sql.NullTime{}
		result.Reappeared++
	}
	existing.UpdatedAt = now
	if err := s.contactRepo.Update(ctx, s.db, existing); err != nil {
		return err
	}
	result.ContactsUpdated++
	return nil
}

// applyAssignmentPass advances the reassignment machine for contacts absent
// from this sync. Reappearance is handled inline by upsertContact.
func (s *Service) applyAssignmentPass(ctx context.Context, seen map[string]struct{}, now time.Time, result *domain.SyncResult) error {
	contacts, err := s.contactRepo.ListAll(ctx, s.db)
	if err != nil {
		return err
	}

	for _, contact := range contacts {
		if contact.AssignmentState == contactdomain.AssignmentReassigned {
			continue
		}
		_, present := seen[contact.ExternalRef]
		next := guard.NextAssignmentState(contact.AssignmentState, present)
		if next == contact.AssignmentState {
			continue
		}

		contact.AssignmentState = next
		switch next {
		case contactdomain.AssignmentSuspect:
			if !contact.ReassignmentSuspectAt.Valid {
				contact.ReassignmentSuspectAt = sql.NullTime{Time: now, Valid: true}
			}
			result.Suspected++
		case contactdomain.AssignmentReassigned:
			result.Reassigned++
		case contactdomain.AssignmentPresent:
			contact.ReassignmentSuspectAt = sql.NullTime{}
			result.Reappeared++
		}
		contact.UpdatedAt = now
		if err := s.contactRepo.Update(ctx, s.db, contact); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) syncEvents(ctx context.Context, since time.Time, result *domain.SyncResult) error {
	records, err := s.feed.FetchEvents(ctx, since)
	if err != nil {
		return errors.Join(crm.ErrSourceUnavailable, err)
	}

	for _, rec := range records {
		eventType := domain.EventType(strings.ToLower(strings.TrimSpace(rec.Type)))
		if !eventType.Valid() {
			result.Malformed++
			s.log.Warn("rejected event with unknown type",
				zap.String("source_ref", rec.SourceRef),
				zap.String("type", rec.Type),
				zap.Error(domain.ErrUnknownEventType),
			)
			continue
		}
		contact, err := s.contactRepo.FindByExternalRef(ctx, s.db, rec.ContactRef)
		if err != nil {
			return err
		}
		if contact == nil {
			result.Malformed++
			continue
		}

		event := &domain.Event{
			ID:         s.genID.Generate(),
			ContactID:  contact.ID,
			SourceRef:  rec.SourceRef,
			Type:       eventType,
			OccurredAt: rec.OccurredAt.UTC(),
			CreatedAt:  s.clock.Now(),
		}
		if rec.PropertyRef != "" {
			if id, perr := snowflake.ParseString(rec.PropertyRef); perr == nil {
				event.PropertyRef = id
			}
		}
		if rec.PropertyPrice > 0 {
			event.PropertyPrice = sql.NullFloat64{Float64: rec.PropertyPrice, Valid: true}
		}

		if err := s.signalRepo.AppendEvent(ctx, s.db, event); err != nil {
			if db.IsDuplicateKeyErr(err) {
				result.Duplicates++
				continue
			}
			return err
		}
		result.EventsAppended++
	}
	return nil
}

func (s *Service) syncCommunications(ctx context.Context, since time.Time, result *domain.SyncResult) error {
	records, err := s.feed.FetchCommunications(ctx, since)
	if err != nil {
		return errors.Join(crm.ErrSourceUnavailable, err)
	}

	for _, rec := range records {
		commType := domain.CommType(strings.ToLower(strings.TrimSpace(rec.Type)))
		if !commType.Valid() {
			result.Malformed++
			s.log.Warn("rejected communication with unknown type",
				zap.String("source_ref", rec.SourceRef),
				zap.String("type", rec.Type),
				zap.Error(domain.ErrUnknownCommType),
			)
			continue
		}
		direction := domain.DirectionOutbound
		if strings.EqualFold(strings.TrimSpace(rec.Direction), "inbound") {
			direction = domain.DirectionInbound
		}
		contact, err := s.contactRepo.FindByExternalRef(ctx, s.db, rec.ContactRef)
		if err != nil {
			return err
		}
		if contact == nil {
			result.Malformed++
			continue
		}

		comm := &domain.Communication{
			ID:         s.genID.Generate(),
			ContactID:  contact.ID,
			SourceRef:  rec.SourceRef,
			Type:       commType,
			Direction:  direction,
			OccurredAt: rec.OccurredAt.UTC(),
			CreatedAt:  s.clock.Now(),
		}
		if rec.DurationSeconds > 0 {
			comm.DurationSeconds = sql.NullInt64{Int64: int64(rec.DurationSeconds), Valid: true}
		}

		if err := s.signalRepo.AppendCommunication(ctx, s.db, comm); err != nil {
			if db.IsDuplicateKeyErr(err) {
				result.Duplicates++
				continue
			}
			return err
		}
		result.CommsAppended++
	}
	return nil
}

func contactStage(raw string) contactdomain.ContactStage {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trash":
		return contactdomain.StageTrash
	case "client":
		return contactdomain.StageClient
	case "past":
		return contactdomain.StagePast
	case "active":
		return contactdomain.StageActive
	default:
		return contactdomain.StageLead
	}
}

func statedPreferences(rec crm.ContactRecord) contactdomain.StatedPreferences {
	return contactdomain.StatedPreferences{
		MinPrice:   rec.MinPrice,
		MaxPrice:   rec.MaxPrice,
		MinBeds:    rec.MinBeds,
		MinBaths:   rec.MinBaths,
		MinSqft:    rec.MinSqft,
		MinAcreage: rec.MinAcreage,
		Cities:     rec.Cities,
		Features:   rec.Features,
	}
}
