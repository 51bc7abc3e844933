package guard

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Record is the persisted audit trail of one guard decision. Append-only;
// raw events are never deleted, exclusion lives here instead.
type Record struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	RunID         snowflake.ID `gorm:"not null;index" json:"run_id"`
	ContactID     snowflake.ID `gorm:"not null;index" json:"contact_id"`
	Excluded      bool         `gorm:"not null" json:"excluded"`
	ExcludeReason string       `json:"exclude_reason,omitempty"`
	Neutralized   bool         `gorm:"not null" json:"neutralized"`
	SuspectFlag   bool         `gorm:"not null" json:"suspect_flag"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Record) TableName() string { return "guard_records" }
