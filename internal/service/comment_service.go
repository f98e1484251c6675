package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"lifehub/internal/dto"
	"lifehub/internal/model"
	"lifehub/internal/policy"
	"lifehub/internal/repository"
	"lifehub/pkg/apperror"
)

const maxCommentLength = 2000

type CommentService interface {
	Create(ctx context.Context, actor policy.Actor, recipeID uuid.UUID, req dto.CommentRequest) (*dto.CommentResponse, error)
	ListByRecipe(ctx context.Context, recipeID uuid.UUID) ([]dto.CommentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CommentResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req dto.CommentRequest) (*dto.CommentResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type commentService struct {
	comments  repository.CommentRepository
	recipes   repository.RecipeRepository
	sanitizer *bluemonday.Policy
}

func NewCommentService(comments repository.CommentRepository, recipes repository.RecipeRepository) CommentService {
	return &commentService{
		comments:  comments,
		recipes:   recipes,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *commentService) Create(ctx context.Context, actor policy.Actor, recipeID uuid.UUID, req dto.CommentRequest) (*dto.CommentResponse, error) {
	if err := policy.CanCreate(actor); err != nil {
		return nil, err
	}

	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		return nil, translateDBError(err)
	}

	text, err := s.cleanText(req.Text)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		RecipeID: recipeID,
		AuthorID: actor.ID,
		Text:     text,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	created, err := s.comments.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, translateDBError(err)
	}
	return s.buildResponse(created), nil
}

func (s *commentService) ListByRecipe(ctx context.Context, recipeID uuid.UUID) ([]dto.CommentResponse, error) {
	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		return nil, translateDBError(err)
	}

	comments, err := s.comments.FindByRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, *s.buildResponse(&comments[i]))
	}
	return responses, nil
}

func (s *commentService) Get(ctx context.Context, id uuid.UUID) (*dto.CommentResponse, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err)
	}
	return s.buildResponse(comment), nil
}

func (s *commentService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req dto.CommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err)
	}

	if err := policy.CanModify(actor, comment.AuthorID); err != nil {
		return nil, err
	}

	text, err := s.cleanText(req.Text)
	if err != nil {
		return nil, err
	}

	comment.Text = text
	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, err
	}
	return s.buildResponse(comment), nil
}

func (s *commentService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return translateDBError(err)
	}

	if err := policy.CanModify(actor, comment.AuthorID); err != nil {
		return err
	}

	return s.comments.Delete(ctx, id)
}

func (s *commentService) cleanText(text string) (string, error) {
	text = strings.TrimSpace(s.sanitizer.Sanitize(text))
	ve := apperror.NewValidation()
	if text == "" {
		ve.Add("text", "comment text cannot be empty")
	}
	if len([]rune(text)) > maxCommentLength {
		ve.Add("text", "must be at most 2000 characters")
	}
	if ve.HasErrors() {
		return "", ve
	}
	return text, nil
}

func (s *commentService) buildResponse(comment *model.Comment) *dto.CommentResponse {
	return &dto.CommentResponse{
		ID:        comment.ID,
		RecipeID:  comment.RecipeID,
		Author:    toAuthorResponse(comment.Author),
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
