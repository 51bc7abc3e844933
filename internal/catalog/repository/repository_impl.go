package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/propelre/leadpulse/internal/catalog/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_ref"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"address", "city", "price", "beds", "baths", "sqft",
				"acreage", "features", "listed_at", "status", "updated_at",
			}),
		}).
		Create(property).Error
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.Property, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var properties []domain.Property
	err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]domain.Property, error) {
	var properties []domain.Property
	err := db.WithContext(ctx).
		Where("status = ?", domain.PropertyActive).
		Order("id asc").
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}
