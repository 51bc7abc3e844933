package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/propelre/leadpulse/internal/signal/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) AppendEvent(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) AppendCommunication(ctx context.Context, db *gorm.DB, comm *domain.Communication) error {
	return db.WithContext(ctx).Create(comm).Error
}

func (r *repo) Counts(ctx context.Context, db *gorm.DB, contactID snowflake.ID, asOf time.Time, window time.Duration) (domain.SignalCounts, error) {
	var counts domain.SignalCounts

	from := asOf.Add(-window)
	dayAgo := asOf.Add(-24 * time.Hour)

	var events []domain.Event
	err := db.WithContext(ctx).
		Where("contact_id = ? AND occurred_at > ? AND occurred_at <= ?", contactID, from, asOf).
		Order("occurred_at asc").
		Find(&events).Error
	if err != nil {
		return domain.SignalCounts{}, err
	}

	viewsByProperty := map[snowflake.ID]int{}
	var priceSum float64
	var priceN int
	for _, ev := range events {
		switch ev.Type {
		case domain.EventSiteVisit:
			counts.SiteVisits++
		case domain.EventPropertyView:
			counts.Views++
			if ev.PropertyRef != 0 {
				viewsByProperty[ev.PropertyRef]++
			}
		case domain.EventFavorite:
			counts.Favorites++
		case domain.EventShare:
			counts.Shares++
		case domain.EventInquiry:
			counts.Inquiries++
		}
		if ev.PropertyPrice.Valid && ev.PropertyPrice.Float64 > 0 {
			priceSum += ev.PropertyPrice.Float64
			priceN++
			if ev.PropertyPrice.Float64 > counts.MaxPriceViewed {
				counts.MaxPriceViewed = ev.PropertyPrice.Float64
			}
		}
		if ev.OccurredAt.After(dayAgo) {
			counts.EventsLast24h++
		}
	}
	for _, n := range viewsByProperty {
		if n > 1 {
			counts.RepeatViews += n - 1
		}
	}
	if priceN > 0 {
		counts.AvgPriceViewed = priceSum / float64(priceN)
	}

	var comms []domain.Communication
	err = db.WithContext(ctx).
		Where("contact_id = ? AND occurred_at > ? AND occurred_at <= ?", contactID, from, asOf).
		Order("occurred_at asc").
		Find(&comms).Error
	if err != nil {
		return domain.SignalCounts{}, err
	}

	for _, c := range comms {
		inbound := c.Direction == domain.DirectionInbound
		switch c.Type {
		case domain.CommCall:
			if inbound {
				counts.InboundCalls++
			} else {
				counts.OutboundCalls++
			}
		case domain.CommText:
			if inbound {
				counts.InboundTexts++
			} else {
				counts.OutboundTexts++
			}
		case domain.CommEmail:
			if inbound {
				counts.InboundEmails++
			} else {
				counts.OutboundEmails++
			}
		}
		if inbound {
			if c.OccurredAt.After(dayAgo) {
				counts.InboundLast24h++
			}
			if !counts.LastInboundAt.Valid || c.OccurredAt.After(counts.LastInboundAt.Time) {
				counts.LastInboundAt = sql.NullTime{Time: c.OccurredAt, Valid: true}
			}
		}
	}

	last, err := r.lastActivity(ctx, db, contactID, asOf)
	if err != nil {
		return domain.SignalCounts{}, err
	}
	counts.LastActivityAt = last

	return counts, nil
}

// lastActivity looks across all history, not just the run window, since the
// decay tiers extend well past any aggregation window.
func (r *repo) lastActivity(ctx context.Context, db *gorm.DB, contactID snowflake.ID, asOf time.Time) (sql.NullTime, error) {
	var out sql.NullTime

	var lastEvent sql.NullTime
	err := db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("contact_id = ? AND occurred_at <= ?", contactID, asOf).
		Select("MAX(occurred_at)").
		Scan(&lastEvent).Error
	if err != nil {
		return out, err
	}

	var lastComm sql.NullTime
	err = db.WithContext(ctx).
		Model(&domain.Communication{}).
		Where("contact_id = ? AND occurred_at <= ?", contactID, asOf).
		Select("MAX(occurred_at)").
		Scan(&lastComm).Error
	if err != nil {
		return out, err
	}

	if lastEvent.Valid {
		out = lastEvent
	}
	if lastComm.Valid && (!out.Valid || lastComm.Time.After(out.Time)) {
		out = lastComm
	}
	return out, nil
}

func (r *repo) PropertySignals(ctx context.Context, db *gorm.DB, contactID snowflake.ID, asOf time.Time) ([]domain.PropertySignal, error) {
	var events []domain.Event
	err := db.WithContext(ctx).
		Where("contact_id = ? AND occurred_at <= ? AND type IN ?",
			contactID,
			asOf,
			[]domain.EventType{domain.EventPropertyView, domain.EventFavorite, domain.EventInquiry},
		).
		Order("occurred_at desc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	signals := make([]domain.PropertySignal, 0, len(events))
	for _, ev := range events {
		if !ev.PropertyPrice.Valid || ev.PropertyPrice.Float64 <= 0 {
			continue
		}
		signals = append(signals, domain.PropertySignal{
			PropertyRef: ev.PropertyRef,
			Type:        ev.Type,
			Price:       ev.PropertyPrice.Float64,
			OccurredAt:  ev.OccurredAt,
		})
	}
	return signals, nil
}
