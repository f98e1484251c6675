package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lifehub/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindAll(ctx context.Context) ([]model.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Save(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindAll(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("created_at ASC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Preload("Owner").First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Save(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Post{}, "id = ?", id).Error
}
