package domain

import (
	"database/sql"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ContactStage mirrors the CRM pipeline stage for a contact.
type ContactStage string

const (
	StageLead   ContactStage = "lead"
	StageActive ContactStage = "active"
	StageClient ContactStage = "client"
	StagePast   ContactStage = "past"
	StageTrash  ContactStage = "trash"
)

// ScoreTrend classifies score momentum between runs.
type ScoreTrend string

const (
	TrendWarming ScoreTrend = "warming"
	TrendCooling ScoreTrend = "cooling"
	TrendStable  ScoreTrend = "stable"
)

// AssignmentState tracks the two-pass reassignment confirmation machine.
// A contact that drops out of the CRM feed is only treated as reassigned
// after a second consecutive absent sync.
type AssignmentState string

const (
	AssignmentPresent    AssignmentState = "present"
	AssignmentSuspect    AssignmentState = "suspect"
	AssignmentReassigned AssignmentState = "confirmed_reassigned"
)

// StatedPreferences are the buyer's explicitly stated property criteria.
// Every field may be unset; the matcher treats missing data as neutral.
type StatedPreferences struct {
	MinPrice   *float64 `json:"min_price,omitempty"`
	MaxPrice   *float64 `json:"max_price,omitempty"`
	MinBeds    *int     `json:"min_beds,omitempty"`
	MinBaths   *float64 `json:"min_baths,omitempty"`
	MinSqft    *int     `json:"min_sqft,omitempty"`
	MinAcreage *float64 `json:"min_acreage,omitempty"`
	Cities     []string `json:"cities,omitempty"`
	Features   []string `json:"features,omitempty"`
}

// Contact is owned by the engine; score fields are mutated only by a
// completed scoring run.
type Contact struct {
	ID          snowflake.ID                `gorm:"primaryKey" json:"id"`
	ExternalRef string                      `gorm:"uniqueIndex;not null" json:"external_ref"`
	Name        string                      `gorm:"not null" json:"name"`
	Stage       ContactStage                `gorm:"not null;index" json:"stage"`
	Tags        datatypes.JSONSlice[string] `json:"tags,omitempty"`

	Heat         int        `gorm:"not null;default:0" json:"heat"`
	Value        int        `gorm:"not null;default:0" json:"value"`
	Relationship int        `gorm:"not null;default:0" json:"relationship"`
	Priority     int        `gorm:"not null;default:0" json:"priority"`
	ScoreTrend   ScoreTrend `gorm:"not null;default:stable" json:"score_trend"`
	Heat7dAvg    float64    `gorm:"not null;default:0" json:"heat_7d_avg"`

	DaysSinceActivity     int             `gorm:"not null;default:0" json:"days_since_activity"`
	ReassignmentSuspectAt sql.NullTime    `json:"reassignment_suspect_at,omitempty"`
	AssignmentState       AssignmentState `gorm:"not null;default:present" json:"assignment_state"`
	LastSeenInFeedAt      sql.NullTime    `json:"last_seen_in_feed_at,omitempty"`

	Preferences datatypes.JSONType[StatedPreferences] `json:"preferences,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// HasOptOutTag reports whether any tag marks the contact as opted out.
func (c Contact) HasOptOutTag() bool {
	for _, tag := range c.Tags {
		switch normalizeTag(tag) {
		case "unsubscribed", "dnc", "donotcontact":
			return true
		}
	}
	return false
}

func normalizeTag(tag string) string {
	out := make([]rune, 0, len(tag))
	for _, r := range tag {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ' || r == '-' || r == '_':
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
