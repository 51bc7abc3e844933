package domain

import (
	"database/sql"
	"time"

	"github.com/bwmarrin/snowflake"
	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
	"gorm.io/datatypes"
)

// RunStatus moves monotonically forward: running is the only non-terminal
// state.
type RunStatus string

const (
	RunStatusRunning             RunStatus = "running"
	RunStatusCompleted           RunStatus = "completed"
	RunStatusCompletedWithErrors RunStatus = "completed_with_errors"
	RunStatusFailed              RunStatus = "failed"
)

// ScoringRun is the audit record of one batch pass. Counters satisfy
// scored + failed == processed.
type ScoringRun struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	StartedAt   time.Time    `gorm:"not null" json:"started_at"`
	CompletedAt sql.NullTime `json:"completed_at,omitempty"`
	AsOf        time.Time    `gorm:"not null" json:"as_of"`
	Status      RunStatus    `gorm:"not null;index" json:"status"`

	Processed int `gorm:"not null;default:0" json:"processed"`
	Scored    int `gorm:"not null;default:0" json:"scored"`
	Created   int `gorm:"not null;default:0" json:"created"`
	Updated   int `gorm:"not null;default:0" json:"updated"`
	Failed    int `gorm:"not null;default:0" json:"failed"`

	ConfigSnapshot datatypes.JSONType[ScoreConfig] `json:"config_snapshot"`
	ErrorMessage   sql.NullString                  `json:"error_message,omitempty"`
}

func (ScoringRun) TableName() string { return "scoring_runs" }

// ScoreSnapshot is one contact's scores at the end of one run. Append-only;
// rows are never mutated after insertion.
type ScoreSnapshot struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	ContactID  snowflake.ID `gorm:"not null;index:idx_score_history_contact" json:"contact_id"`
	RunID      snowflake.ID `gorm:"not null;index" json:"run_id"`
	RecordedAt time.Time    `gorm:"not null;index:idx_score_history_contact" json:"recorded_at"`

	Heat         int `gorm:"not null" json:"heat"`
	Value        int `gorm:"not null" json:"value"`
	Relationship int `gorm:"not null" json:"relationship"`
	Priority     int `gorm:"not null" json:"priority"`

	DecayMultiplier   float64 `gorm:"not null" json:"decay_multiplier"`
	DaysSinceActivity int     `gorm:"not null" json:"days_since_activity"`

	SiteVisits int `gorm:"not null;default:0" json:"site_visits"`
	Views      int `gorm:"not null;default:0" json:"views"`
	Favorites  int `gorm:"not null;default:0" json:"favorites"`
	Shares     int `gorm:"not null;default:0" json:"shares"`
	Inquiries  int `gorm:"not null;default:0" json:"inquiries"`
	Inbound    int `gorm:"not null;default:0" json:"inbound"`
	Outbound   int `gorm:"not null;default:0" json:"outbound"`

	HeatDelta      float64                  `gorm:"not null;default:0" json:"heat_delta"`
	TrendDirection contactdomain.ScoreTrend `gorm:"not null;default:stable" json:"trend_direction"`
}

func (ScoreSnapshot) TableName() string { return "score_history" }

// TrendAlert surfaces a large heat swing for downstream notification. It is
// informational; emitting one never blocks a run.
type TrendAlert struct {
	ID        snowflake.ID             `gorm:"primaryKey" json:"id"`
	RunID     snowflake.ID             `gorm:"not null;index" json:"run_id"`
	ContactID snowflake.ID             `gorm:"not null;index" json:"contact_id"`
	HeatDelta float64                  `gorm:"not null" json:"heat_delta"`
	Direction contactdomain.ScoreTrend `gorm:"not null" json:"direction"`
	Message   string                   `gorm:"not null" json:"message"`
	CreatedAt time.Time                `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TrendAlert) TableName() string { return "trend_alerts" }
