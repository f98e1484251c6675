package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lifehub/internal/model"
	"lifehub/internal/policy"
)

type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	// FindAll applies the visibility filter the policy mandates for the
	// actor; actorID is only consulted for ScopePublicOrOwn.
	FindAll(ctx context.Context, scope policy.LinkScope, actorID uuid.UUID) ([]model.Link, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Link, error)
	FindPublicByShortCode(ctx context.Context, code string) (*model.Link, error)
	Save(ctx context.Context, link *model.Link) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type linkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *linkRepository) FindAll(ctx context.Context, scope policy.LinkScope, actorID uuid.UUID) ([]model.Link, error) {
	query := r.db.WithContext(ctx).Preload("Owner").Order("created_at DESC")

	switch scope {
	case policy.ScopePublicOrOwn:
		query = query.Where("is_public = ? OR owner_id = ?", true, actorID)
	case policy.ScopePublicOnly:
		query = query.Where("is_public = ?", true)
	}

	var links []model.Link
	err := query.Find(&links).Error
	return links, err
}

func (r *linkRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Preload("Owner").First(&link, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) FindPublicByShortCode(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	err := r.db.WithContext(ctx).
		Where("short_code = ? AND is_public = ?", code, true).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) Save(ctx context.Context, link *model.Link) error {
	return r.db.WithContext(ctx).Save(link).Error
}

func (r *linkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Link{}, "id = ?", id).Error
}
