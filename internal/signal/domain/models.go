package domain

import (
	"database/sql"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// EventType enumerates the known behavioral event kinds. Ingest rejects
// anything outside this set so a new upstream kind cannot silently skew
// scores.
type EventType string

const (
	EventSiteVisit    EventType = "site_visit"
	EventPropertyView EventType = "property_view"
	EventFavorite     EventType = "favorite"
	EventShare        EventType = "share"
	EventInquiry      EventType = "inquiry"
)

func (t EventType) Valid() bool {
	switch t {
	case EventSiteVisit, EventPropertyView, EventFavorite, EventShare, EventInquiry:
		return true
	}
	return false
}

type CommType string

const (
	CommCall  CommType = "call"
	CommText  CommType = "text"
	CommEmail CommType = "email"
)

func (t CommType) Valid() bool {
	switch t {
	case CommCall, CommText, CommEmail:
		return true
	}
	return false
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Event is append-only: rows are never updated or deleted, only flagged by
// the attribution guard for a given run.
type Event struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	ContactID     snowflake.ID    `gorm:"not null;index" json:"contact_id"`
	SourceRef     string          `gorm:"uniqueIndex;not null" json:"source_ref"`
	Type          EventType       `gorm:"not null" json:"type"`
	OccurredAt    time.Time       `gorm:"not null;index" json:"occurred_at"`
	PropertyRef   snowflake.ID    `gorm:"index" json:"property_ref,omitempty"`
	PropertyPrice sql.NullFloat64 `json:"property_price,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Communication is append-only.
type Communication struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	ContactID       snowflake.ID  `gorm:"not null;index" json:"contact_id"`
	SourceRef       string        `gorm:"uniqueIndex;not null" json:"source_ref"`
	Type            CommType      `gorm:"not null" json:"type"`
	Direction       Direction     `gorm:"not null" json:"direction"`
	OccurredAt      time.Time     `gorm:"not null;index" json:"occurred_at"`
	DurationSeconds sql.NullInt64 `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// SignalCounts aggregates one contact's guarded inputs for a scoring pass.
// All counts are taken as of the run's snapshot time.
type SignalCounts struct {
	SiteVisits  int
	Views       int
	Favorites   int
	Shares      int
	Inquiries   int
	RepeatViews int

	EventsLast24h int

	InboundCalls   int
	OutboundCalls  int
	InboundTexts   int
	OutboundTexts  int
	InboundEmails  int
	OutboundEmails int

	InboundLast24h int

	AvgPriceViewed float64
	MaxPriceViewed float64

	LastActivityAt sql.NullTime
	LastInboundAt  sql.NullTime
}

// TotalEvents is the number of window events that feed the heat score.
func (c SignalCounts) TotalEvents() int {
	return c.SiteVisits + c.Views + c.Favorites + c.Shares + c.Inquiries
}

// PropertySignal is one behavioral data point for preference inference.
type PropertySignal struct {
	PropertyRef snowflake.ID
	Type        EventType
	Price       float64
	OccurredAt  time.Time
}

var (
	ErrUnknownEventType = errors.New("unknown_event_type")
	ErrUnknownCommType  = errors.New("unknown_comm_type")
	ErrMissingContact   = errors.New("missing_contact")
)
