package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	AppendEvent(ctx context.Context, db *gorm.DB, event *Event) error
	AppendCommunication(ctx context.Context, db *gorm.DB, comm *Communication) error

	// Counts aggregates a contact's signals inside [asOf-window, asOf].
	// Events written after asOf are invisible so a run sees a consistent
	// cut even while the CRM sync keeps appending.
	Counts(ctx context.Context, db *gorm.DB, contactID snowflake.ID, asOf time.Time, window time.Duration) (SignalCounts, error)

	// PropertySignals returns the view/favorite/inquiry history used for
	// behavioral preference inference, newest first.
	PropertySignals(ctx context.Context, db *gorm.DB, contactID snowflake.ID, asOf time.Time) ([]PropertySignal, error)
}
