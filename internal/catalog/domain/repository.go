package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, property *Property) error
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Property, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]Property, error)
}
