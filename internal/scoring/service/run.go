package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
	"github.com/propelre/leadpulse/internal/guard"
	obsmetrics "github.com/propelre/leadpulse/internal/observability/metrics"
	"github.com/propelre/leadpulse/internal/scoring/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// contactOutcome is everything one per-contact pipeline produced. Outcomes
// are buffered and persisted in a single transaction at finalize so a failed
// run leaves zero snapshot rows behind.
type contactOutcome struct {
	contact     *contactdomain.Contact
	snapshot    *domain.ScoreSnapshot
	guardRecord *guard.Record
	alert       *domain.TrendAlert
	firstScore  bool
	err         error
}

type runAccumulator struct {
	mu        sync.Mutex
	processed int
	scored    int
	created   int
	updated   int
	failed    int
	outcomes  []contactOutcome
}

func (a *runAccumulator) add(out contactOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.processed++
	if out.err != nil {
		a.failed++
		return
	}
	a.scored++
	if out.firstScore {
		a.created++
	} else {
		a.updated++
	}
	a.outcomes = append(a.outcomes, out)
}

// Run executes one audited scoring pass over all scorable contacts.
func (s *Service) Run(ctx context.Context, cfg domain.ScoreConfig) (*domain.ScoringRun, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	select {
	case s.running <- struct{}{}:
		defer func() { <-s.running }()
	default:
		return nil, domain.ErrRunInProgress
	}

	started := s.clock.Now()
	asOf := started
	run := &domain.ScoringRun{
		ID:             s.genID.Generate(),
		StartedAt:      started,
		AsOf:           asOf,
		Status:         domain.RunStatusRunning,
		ConfigSnapshot: datatypes.NewJSONType(cfg),
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}

	log := s.log.With(zap.String("run_id", run.ID.String()))
	log.Info("scoring run started")

	contacts, err := s.contactRepo.ListScorable(ctx, s.db)
	if err != nil {
		return s.failRun(run, fmt.Errorf("list contacts: %w", err))
	}

	acc := s.processContacts(ctx, run, contacts, cfg, asOf, log)
	cancelled := ctx.Err() != nil

	status := domain.RunStatusCompleted
	if acc.failed > 0 || cancelled {
		status = domain.RunStatusCompletedWithErrors
	}

	// Finalize with a detached context: a cancelled run still commits the
	// work it already did.
	finCtx := context.WithoutCancel(ctx)
	err = s.db.WithContext(finCtx).Transaction(func(tx *gorm.DB) error {
		for i := range acc.outcomes {
			out := &acc.outcomes[i]
			if err := tx.Create(out.guardRecord).Error; err != nil {
				return err
			}
			if err := tx.Create(out.snapshot).Error; err != nil {
				return err
			}
			if out.alert != nil {
				if err := tx.Create(out.alert).Error; err != nil {
					return err
				}
			}
			if err := s.contactRepo.Update(finCtx, tx, out.contact); err != nil {
				return err
			}
		}

		completed := s.clock.Now()
		return tx.Model(&domain.ScoringRun{}).
			Where("id = ? AND status = ?", run.ID, domain.RunStatusRunning).
			Updates(map[string]any{
				"status":       status,
				"processed":    acc.processed,
				"scored":       acc.scored,
				"created":      acc.created,
				"updated":      acc.updated,
				"failed":       acc.failed,
				"completed_at": completed,
			}).Error
	})
	if err != nil {
		return s.failRun(run, fmt.Errorf("persist run results: %w", err))
	}

	run.Status = status
	run.Processed = acc.processed
	run.Scored = acc.scored
	run.Created = acc.created
	run.Updated = acc.updated
	run.Failed = acc.failed
	run.CompletedAt = sql.NullTime{Time: s.clock.Now(), Valid: true}

	m := obsmetrics.Scoring()
	m.IncRun(string(status))
	m.ObserveRunDuration(s.clock.Now().Sub(started))
	m.AddContactsScored(acc.scored)
	m.AddContactsFailed(acc.failed)

	log.Info("scoring run finished",
		zap.String("status", string(status)),
		zap.Int("processed", acc.processed),
		zap.Int("scored", acc.scored),
		zap.Int("failed", acc.failed),
	)
	return run, nil
}

func (s *Service) processContacts(
	ctx context.Context,
	run *domain.ScoringRun,
	contacts []*contactdomain.Contact,
	cfg domain.ScoreConfig,
	asOf time.Time,
	log *zap.Logger,
) *runAccumulator {
	acc := &runAccumulator{}

	workers := cfg.Workers
	if workers > len(contacts) {
		workers = len(contacts)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan *contactdomain.Contact)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for contact := range jobs {
				out := s.scoreContact(ctx, run, contact, cfg, asOf)
				if out.err != nil {
					log.Warn("contact scoring failed",
						zap.String("contact_id", contact.ID.String()),
						zap.Error(out.err),
					)
				}
				acc.add(out)
			}
		}()
	}

feed:
	for _, contact := range contacts {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- contact:
		}
	}
	close(jobs)
	wg.Wait()

	return acc
}

// scoreContact runs the Guard -> Compute -> Decay -> Trend pipeline for one
// contact. Any error here is per-contact: counted, logged, never fatal.
func (s *Service) scoreContact(
	ctx context.Context,
	run *domain.ScoringRun,
	contact *contactdomain.Contact,
	cfg domain.ScoreConfig,
	asOf time.Time,
) contactOutcome {
	window := time.Duration(cfg.ActivityWindowDays) * 24 * time.Hour

	counts, err := s.signalRepo.Counts(ctx, s.db, contact.ID, asOf, window)
	if err != nil {
		return contactOutcome{contact: contact, err: fmt.Errorf("aggregate signals: %w", err)}
	}

	decision := guard.Evaluate(contact, counts, cfg.AnomalyEventThreshold)
	guarded := guard.Apply(decision, counts)
	if decision.Excluded {
		obsmetrics.Scoring().IncGuardExclusion(decision.ExcludeReason)
	} else if decision.Neutralized {
		obsmetrics.Scoring().IncGuardExclusion("anomaly")
	}

	scores := computeScores(guarded, contact.Preferences.Data(), asOf, cfg)

	multiplier, days := effectiveDecay(guarded.LastActivityAt, contact.CreatedAt, asOf, cfg.NewContactGraceDays)
	heat := clampScore(math.Round(float64(scores.Heat) * multiplier))

	trendWindow := time.Duration(cfg.TrendWindowDays) * 24 * time.Hour
	history, err := s.historyBefore(ctx, contact.ID, asOf, trendWindow)
	if err != nil {
		return contactOutcome{contact: contact, err: fmt.Errorf("load history: %w", err)}
	}
	trend := evaluateTrend(history, heat, cfg)

	priority := priorityScore(heat, scores.Value, scores.Relationship, cfg)

	prior, err := s.LatestSnapshot(ctx, contact.ID)
	if err != nil {
		return contactOutcome{contact: contact, err: fmt.Errorf("load latest snapshot: %w", err)}
	}

	snapshot := &domain.ScoreSnapshot{
		ID:                s.genID.Generate(),
		ContactID:         contact.ID,
		RunID:             run.ID,
		RecordedAt:        asOf,
		Heat:              heat,
		Value:             scores.Value,
		Relationship:      scores.Relationship,
		Priority:          priority,
		DecayMultiplier:   multiplier,
		DaysSinceActivity: days,
		SiteVisits:        guarded.SiteVisits,
		Views:             guarded.Views,
		Favorites:         guarded.Favorites,
		Shares:            guarded.Shares,
		Inquiries:         guarded.Inquiries,
		Inbound:           guarded.InboundCalls + guarded.InboundTexts + guarded.InboundEmails,
		Outbound:          guarded.OutboundCalls + guarded.OutboundTexts + guarded.OutboundEmails,
		HeatDelta:         trend.Delta,
		TrendDirection:    trend.Direction,
	}

	record := &guard.Record{
		ID:            s.genID.Generate(),
		RunID:         run.ID,
		ContactID:     contact.ID,
		Excluded:      decision.Excluded,
		ExcludeReason: decision.ExcludeReason,
		Neutralized:   decision.Neutralized,
		SuspectFlag:   decision.SuspectFlag,
		CreatedAt:     asOf,
	}

	var alert *domain.TrendAlert
	if trend.Alert {
		alert = &domain.TrendAlert{
			ID:        s.genID.Generate(),
			RunID:     run.ID,
			ContactID: contact.ID,
			HeatDelta: trend.Delta,
			Direction: trend.Direction,
			Message:   fmt.Sprintf("heat moved %.1f points against a %.1f 7-day average", trend.Delta, trend.Avg),
			CreatedAt: asOf,
		}
		obsmetrics.Scoring().IncTrendAlert()
	}

	updated := *contact
	updated.Heat = heat
	updated.Value = scores.Value
	updated.Relationship = scores.Relationship
	updated.Priority = priority
	updated.ScoreTrend = trend.Direction
	updated.Heat7dAvg = trend.Avg
	updated.DaysSinceActivity = days
	if decision.SuspectFlag && !updated.ReassignmentSuspectAt.Valid {
		updated.ReassignmentSuspectAt = sql.NullTime{Time: asOf, Valid: true}
	}
	updated.UpdatedAt = asOf

	return contactOutcome{
		contact:     &updated,
		snapshot:    snapshot,
		guardRecord: record,
		alert:       alert,
		firstScore:  prior == nil,
	}
}

// failRun marks a fatal abort. The snapshot transaction never ran, so the
// run leaves no score rows behind.
func (s *Service) failRun(run *domain.ScoringRun, cause error) (*domain.ScoringRun, error) {
	completed := s.clock.Now()
	err := s.db.WithContext(context.Background()).
		Model(&domain.ScoringRun{}).
		Where("id = ? AND status = ?", run.ID, domain.RunStatusRunning).
		Updates(map[string]any{
			"status":        domain.RunStatusFailed,
			"error_message": cause.Error(),
			"completed_at":  completed,
		}).Error
	if err != nil {
		s.log.Error("failed to mark run failed",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
	}

	run.Status = domain.RunStatusFailed
	run.ErrorMessage = sql.NullString{String: cause.Error(), Valid: true}
	run.CompletedAt = sql.NullTime{Time: completed, Valid: true}

	obsmetrics.Scoring().IncRun(string(domain.RunStatusFailed))
	s.log.Error("scoring run failed",
		zap.String("run_id", run.ID.String()),
		zap.Error(cause),
	)
	return run, nil
}
