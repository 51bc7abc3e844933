package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/propelre/leadpulse/internal/contact/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, contact *domain.Contact) error {
	return db.WithContext(ctx).Create(contact).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, contact *domain.Contact) error {
	return db.WithContext(ctx).Save(contact).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Contact, error) {
	var contact domain.Contact
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&contact).Error
	if err != nil {
		return nil, err
	}
	if contact.ID == 0 {
		return nil, nil
	}
	return &contact, nil
}

func (r *repo) FindByExternalRef(ctx context.Context, db *gorm.DB, ref string) (*domain.Contact, error) {
	var contact domain.Contact
	err := db.WithContext(ctx).
		Where("external_ref = ?", ref).
		Limit(1).
		Find(&contact).Error
	if err != nil {
		return nil, err
	}
	if contact.ID == 0 {
		return nil, nil
	}
	return &contact, nil
}

func (r *repo) ListScorable(ctx context.Context, db *gorm.DB) ([]*domain.Contact, error) {
	var contacts []*domain.Contact
	err := db.WithContext(ctx).
		Where("assignment_state <> ?", domain.AssignmentReassigned).
		Order("id asc").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]*domain.Contact, error) {
	var contacts []*domain.Contact
	err := db.WithContext(ctx).
		Order("id asc").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}
