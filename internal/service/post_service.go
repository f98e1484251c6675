package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"lifehub/internal/dto"
	"lifehub/internal/model"
	"lifehub/internal/policy"
	"lifehub/internal/repository"
)

type PostService interface {
	Create(ctx context.Context, actor policy.Actor, req dto.CreatePostRequest) (*dto.PostResponse, error)
	List(ctx context.Context) ([]dto.PostResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PostResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req dto.UpdatePostRequest) (*dto.PostResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type postService struct {
	posts     repository.PostRepository
	sanitizer *bluemonday.Policy
}

func NewPostService(posts repository.PostRepository) PostService {
	return &postService{
		posts:     posts,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *postService) Create(ctx context.Context, actor policy.Actor, req dto.CreatePostRequest) (*dto.PostResponse, error) {
	if err := policy.CanCreate(actor); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:   s.sanitizer.Sanitize(req.Title),
		Content: s.sanitizer.Sanitize(req.Content),
		OwnerID: actor.ID,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	created, err := s.posts.FindByID(ctx, post.ID)
	if err != nil {
		return nil, translateDBError(err)
	}
	return s.buildResponse(created), nil
}

func (s *postService) List(ctx context.Context) ([]dto.PostResponse, error) {
	posts, err := s.posts.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		responses = append(responses, *s.buildResponse(&posts[i]))
	}
	return responses, nil
}

func (s *postService) Get(ctx context.Context, id uuid.UUID) (*dto.PostResponse, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err)
	}
	return s.buildResponse(post), nil
}

func (s *postService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req dto.UpdatePostRequest) (*dto.PostResponse, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err)
	}

	if err := policy.CanModify(actor, post.OwnerID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = s.sanitizer.Sanitize(*req.Title)
	}
	if req.Content != nil {
		post.Content = s.sanitizer.Sanitize(*req.Content)
	}

	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	return s.buildResponse(post), nil
}

func (s *postService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return translateDBError(err)
	}

	if err := policy.CanModify(actor, post.OwnerID); err != nil {
		return err
	}

	return s.posts.Delete(ctx, id)
}

func (s *postService) buildResponse(post *model.Post) *dto.PostResponse {
	return &dto.PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Owner:     toAuthorResponse(post.Owner),
		CreatedAt: post.CreatedAt,
	}
}
