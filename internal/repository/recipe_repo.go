package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lifehub/internal/model"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// recipeOrderings whitelists client-selectable sort orders; a leading dash
// flips the direction. Anything else falls back to the default.
var recipeOrderings = map[string]string{
	"created_at":    "recipes.created_at ASC",
	"-created_at":   "recipes.created_at DESC",
	"time_minutes":  "recipes.time_minutes ASC",
	"-time_minutes": "recipes.time_minutes DESC",
}

type RecipeListFilter struct {
	AuthorID    *uuid.UUID
	Search      string
	FavoritedBy *uuid.UUID
	Ordering    string
	Page        int
	PageSize    int
}

func (f RecipeListFilter) orderClause() string {
	if order, ok := recipeOrderings[f.Ordering]; ok {
		return order
	}
	return "recipes.created_at ASC"
}

// Limits resolves the page window: page defaults to 1, page size to 10,
// capped at 100.
func (f RecipeListFilter) Limits() (offset, limit int) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return (page - 1) * size, size
}

type RecipeRepository interface {
	// Create stores the recipe with its tag associations and ingredient
	// rows as a single transaction.
	Create(ctx context.Context, recipe *model.Recipe, tags []model.Tag, items []model.RecipeIngredient) error
	// Update saves the recipe fields and, when tags or items are non-nil,
	// replaces the stored associations wholesale. All-or-nothing.
	Update(ctx context.Context, recipe *model.Recipe, tags []model.Tag, items []model.RecipeIngredient) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	FindAll(ctx context.Context, filter RecipeListFilter) ([]model.Recipe, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AverageRating(ctx context.Context, recipeID uuid.UUID) (float64, error)
	CommentsCount(ctx context.Context, recipeID uuid.UUID) (int64, error)

	Favorite(ctx context.Context, userID, recipeID uuid.UUID) error
	Unfavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	IsFavorited(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)

	SetRating(ctx context.Context, userID, recipeID uuid.UUID, value int) error
	DeleteRating(ctx context.Context, userID, recipeID uuid.UUID) error

	// IngredientsForFavorites returns every ingredient row under the
	// user's favorited recipes, with ingredient metadata loaded.
	IngredientsForFavorites(ctx context.Context, userID uuid.UUID) ([]model.RecipeIngredient, error)
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *model.Recipe, tags []model.Tag, items []model.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Ingredients").Create(recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		for i := range items {
			items[i].RecipeID = recipe.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *recipeRepository) Update(ctx context.Context, recipe *model.Recipe, tags []model.Tag, items []model.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Ingredients").Save(recipe).Error; err != nil {
			return err
		}
		if tags != nil {
			if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		if items != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&model.RecipeIngredient{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].RecipeID = recipe.ID
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *recipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) FindAll(ctx context.Context, filter RecipeListFilter) ([]model.Recipe, error) {
	query := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order(filter.orderClause())

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if filter.Search != "" {
		query = query.Where("recipes.title LIKE ?", "%"+filter.Search+"%")
	}
	if filter.FavoritedBy != nil {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", *filter.FavoritedBy)
	}

	offset, limit := filter.Limits()
	query = query.Offset(offset).Limit(limit)

	var recipes []model.Recipe
	err := query.Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id).Error
}

func (r *recipeRepository) AverageRating(ctx context.Context, recipeID uuid.UUID) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Select("COALESCE(AVG(value), 0)").
		Where("recipe_id = ?", recipeID).
		Scan(&avg).Error
	return avg, err
}

func (r *recipeRepository) CommentsCount(ctx context.Context, recipeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("recipe_id = ?", recipeID).
		Count(&count).Error
	return count, err
}

func (r *recipeRepository) Favorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	favorite := model.Favorite{UserID: userID, RecipeID: recipeID}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		FirstOrCreate(&favorite).Error
}

func (r *recipeRepository) Unfavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&model.Favorite{}).Error
}

func (r *recipeRepository) IsFavorited(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

func (r *recipeRepository) SetRating(ctx context.Context, userID, recipeID uuid.UUID, value int) error {
	// Atomic upsert on the (user_id, recipe_id) key; concurrent first
	// ratings cannot race into a duplicate-key error.
	rating := model.Rating{UserID: userID, RecipeID: recipeID, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
		}).
		Create(&rating).Error
}

func (r *recipeRepository) DeleteRating(ctx context.Context, userID, recipeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&model.Rating{}).Error
}

func (r *recipeRepository) IngredientsForFavorites(ctx context.Context, userID uuid.UUID) ([]model.RecipeIngredient, error) {
	var items []model.RecipeIngredient
	err := r.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.recipe_id = recipe_ingredients.recipe_id").
		Where("favorites.user_id = ?", userID).
		Preload("Ingredient").
		Find(&items).Error
	return items, err
}
