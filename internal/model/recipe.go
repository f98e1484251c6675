package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
}

type Ingredient struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	Unit string `gorm:"size:20;not null;uniqueIndex:idx_ingredient_name_unit" json:"unit"`
}

type Recipe struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID    uuid.UUID          `gorm:"type:uuid;not null" json:"author_id"`
	Author      User               `gorm:"constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Title       string             `gorm:"size:200;not null" json:"title"`
	Description string             `gorm:"type:text" json:"description"`
	ImageURL    *string            `gorm:"type:text" json:"image_url,omitempty"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"tags"`
	Steps       []string           `gorm:"serializer:json" json:"steps"`
	TimeMinutes int                `gorm:"not null" json:"time_minutes"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
	CreatedAt   time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// RecipeIngredient stores amounts as fixed-point values quantized half-up to
// one decimal place at write time.
type RecipeIngredient struct {
	RecipeID     uuid.UUID       `gorm:"type:uuid;primaryKey" json:"recipe_id"`
	IngredientID uint            `gorm:"primaryKey" json:"ingredient_id"`
	Ingredient   Ingredient      `gorm:"constraint:OnDelete:CASCADE" json:"ingredient"`
	Amount       decimal.Decimal `gorm:"type:numeric(8,1);not null" json:"amount"`
}

type Favorite struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipe_id"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Rating struct {
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	RecipeID uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipe_id"`
	Recipe   Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Value    int       `gorm:"not null;check:value >= 1 AND value <= 5" json:"value"`
}

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null" json:"recipe_id"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Text      string    `gorm:"size:2000;not null" json:"text"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
