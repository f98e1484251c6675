package repository

import (
	"context"

	"gorm.io/gorm"

	"lifehub/internal/model"
)

type TagRepository interface {
	FindAll(ctx context.Context, search string) ([]model.Tag, error)
	FindByID(ctx context.Context, id uint) (*model.Tag, error)
	Create(ctx context.Context, tag *model.Tag) error
	Save(ctx context.Context, tag *model.Tag) error
	Delete(ctx context.Context, id uint) error
	// GetOrCreateBySlug returns the existing tag for slug, or creates one
	// with the given name. The first writer's name wins on slug collision.
	GetOrCreateBySlug(ctx context.Context, slug, name string) (*model.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindAll(ctx context.Context, search string) ([]model.Tag, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	var tags []model.Tag
	err := query.Find(&tags).Error
	return tags, err
}

func (r *tagRepository) FindByID(ctx context.Context, id uint) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) Create(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepository) Save(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Save(tag).Error
}

func (r *tagRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Tag{}, id).Error
}

func (r *tagRepository) GetOrCreateBySlug(ctx context.Context, slug, name string) (*model.Tag, error) {
	tag := model.Tag{Slug: slug}
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		Attrs(model.Tag{Name: name}).
		FirstOrCreate(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}
