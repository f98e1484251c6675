package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateLinkRequest struct {
	TargetURL string `json:"target_url" binding:"required,url"`
	Title     string `json:"title" binding:"max=100"`
	IsPublic  bool   `json:"is_public"`
}

type UpdateLinkRequest struct {
	TargetURL *string `json:"target_url" binding:"omitempty,url"`
	Title     *string `json:"title" binding:"omitempty,max=100"`
	IsPublic  *bool   `json:"is_public"`
}

type LinkResponse struct {
	ID        uuid.UUID      `json:"id"`
	Owner     AuthorResponse `json:"owner"`
	TargetURL string         `json:"target_url"`
	ShortCode string         `json:"short_code"`
	Title     string         `json:"title"`
	IsPublic  bool           `json:"is_public"`
	CreatedAt time.Time      `json:"created_at"`
}
