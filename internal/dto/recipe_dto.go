package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lifehub/internal/model"
)

type RecipeIngredientInput struct {
	ID     uint            `json:"id" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type CreateRecipeRequest struct {
	Title       string                  `json:"title" binding:"required,max=200"`
	Description string                  `json:"description"`
	ImageURL    *string                 `json:"image_url" binding:"omitempty,url"`
	Tags        []string                `json:"tags"`
	Ingredients []RecipeIngredientInput `json:"ingredients"`
	Steps       []string                `json:"steps"`
	TimeMinutes int                     `json:"time_minutes"`
}

// UpdateRecipeRequest leaves omitted associations unchanged; present tags,
// ingredients and steps fully replace the stored ones.
type UpdateRecipeRequest struct {
	Title       *string                  `json:"title" binding:"omitempty,max=200"`
	Description *string                  `json:"description"`
	ImageURL    *string                  `json:"image_url" binding:"omitempty,url"`
	Tags        *[]string                `json:"tags"`
	Ingredients *[]RecipeIngredientInput `json:"ingredients"`
	Steps       *[]string                `json:"steps"`
	TimeMinutes *int                     `json:"time_minutes"`
}

type RecipeFilter struct {
	Author    string `form:"author"`
	Search    string `form:"search"`
	Favorited string `form:"favorited"`
	Ordering  string `form:"ordering"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

type RecipeIngredientResponse struct {
	Ingredient model.Ingredient `json:"ingredient"`
	Amount     decimal.Decimal  `json:"amount"`
}

type RecipeResponse struct {
	ID            uuid.UUID                  `json:"id"`
	Author        AuthorResponse             `json:"author"`
	Title         string                     `json:"title"`
	Description   string                     `json:"description"`
	ImageURL      *string                    `json:"image_url"`
	Tags          []model.Tag                `json:"tags"`
	Ingredients   []RecipeIngredientResponse `json:"ingredients"`
	Steps         []string                   `json:"steps"`
	TimeMinutes   int                        `json:"time_minutes"`
	CreatedAt     time.Time                  `json:"created_at"`
	AvgRating     float64                    `json:"avg_rating"`
	CommentsCount int64                      `json:"comments_count"`
	IsFavorited   bool                       `json:"is_favorited"`
}

type RatingRequest struct {
	Value int `json:"value" binding:"required,gte=1,lte=5"`
}

type ShoppingListItem struct {
	Ingredient model.Ingredient `json:"ingredient"`
	Amount     decimal.Decimal  `json:"amount"`
}
