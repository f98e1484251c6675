package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lifehub/internal/model"
)

type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	FindAll(ctx context.Context) ([]model.Note, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Note, error)
	Save(ctx context.Context, note *model.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type noteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) FindAll(ctx context.Context) ([]model.Note, error) {
	var notes []model.Note
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

func (r *noteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	var note model.Note
	if err := r.db.WithContext(ctx).Preload("Owner").First(&note, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *noteRepository) Save(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Note{}, "id = ?", id).Error
}
