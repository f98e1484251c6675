package repository

import (
	"context"

	"gorm.io/gorm"

	"lifehub/internal/model"
)

type IngredientRepository interface {
	FindAll(ctx context.Context, search string) ([]model.Ingredient, error)
	FindByID(ctx context.Context, id uint) (*model.Ingredient, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Ingredient, error)
	Create(ctx context.Context, ingredient *model.Ingredient) error
	Save(ctx context.Context, ingredient *model.Ingredient) error
	Delete(ctx context.Context, id uint) error
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) FindAll(ctx context.Context, search string) ([]model.Ingredient, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if search != "" {
		query = query.Where("name LIKE ?", search+"%")
	}
	var ingredients []model.Ingredient
	err := query.Find(&ingredients).Error
	return ingredients, err
}

func (r *ingredientRepository) FindByID(ctx context.Context, id uint) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Ingredient, error) {
	var ingredients []model.Ingredient
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error
	return ingredients, err
}

func (r *ingredientRepository) Create(ctx context.Context, ingredient *model.Ingredient) error {
	return r.db.WithContext(ctx).Create(ingredient).Error
}

func (r *ingredientRepository) Save(ctx context.Context, ingredient *model.Ingredient) error {
	return r.db.WithContext(ctx).Save(ingredient).Error
}

func (r *ingredientRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Ingredient{}, id).Error
}
