package dto

import (
	"time"

	"github.com/google/uuid"
)

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID        uuid.UUID      `json:"id"`
	RecipeID  uuid.UUID      `json:"recipe_id"`
	Author    AuthorResponse `json:"author"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
