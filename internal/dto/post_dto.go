package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

type UpdatePostRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=255"`
	Content *string `json:"content"`
}

type PostResponse struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Owner     AuthorResponse `json:"owner"`
	CreatedAt time.Time      `json:"created_at"`
}
