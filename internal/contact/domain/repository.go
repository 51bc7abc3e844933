package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, contact *Contact) error
	Update(ctx context.Context, db *gorm.DB, contact *Contact) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Contact, error)
	FindByExternalRef(ctx context.Context, db *gorm.DB, ref string) (*Contact, error)
	// ListScorable returns contacts eligible for a scoring pass, i.e. every
	// contact not confirmed reassigned. Guarded stages are filtered later so
	// their exclusion is recorded per run.
	ListScorable(ctx context.Context, db *gorm.DB) ([]*Contact, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]*Contact, error)
}
