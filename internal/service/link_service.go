package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lifehub/internal/dto"
	"lifehub/internal/model"
	"lifehub/internal/policy"
	"lifehub/internal/repository"
	"lifehub/pkg/apperror"
)

const (
	shortCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	shortCodeLength   = 6
)

type LinkService interface {
	Create(ctx context.Context, actor policy.Actor, req dto.CreateLinkRequest) (*dto.LinkResponse, error)
	List(ctx context.Context, actor policy.Actor) ([]dto.LinkResponse, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*dto.LinkResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req dto.UpdateLinkRequest) (*dto.LinkResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
	// Resolve looks up a public link by short code for redirecting.
	// Private and missing codes are indistinguishable to the caller.
	Resolve(ctx context.Context, code string) (string, error)
}

type linkService struct {
	links repository.LinkRepository
}

func NewLinkService(links repository.LinkRepository) LinkService {
	return &linkService{links: links}
}

func (s *linkService) Create(ctx context.Context, actor policy.Actor, req dto.CreateLinkRequest) (*dto.LinkResponse, error) {
	if err := policy.CanCreate(actor); err != nil {
		return nil, err
	}

	link := &model.Link{
		OwnerID:   actor.ID,
		TargetURL: req.TargetURL,
		ShortCode: generateShortCode(),
		Title:     req.Title,
		IsPublic:  req.IsPublic,
	}

	// Single attempt: with a 62^6 keyspace a collision is negligible, so a
	// duplicate surfaces as a conflict instead of triggering a retry loop.
	if err := s.links.Create(ctx, link); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: short code collision", apperror.ErrConflict)
		}
		return nil, err
	}

	created, err := s.links.FindByID(ctx, link.ID)
	if err != nil {
		return nil, translateDBError(err)
	}
	return s.buildResponse(created), nil
}

func (s *linkService) List(ctx context.Context, actor policy.Actor) ([]dto.LinkResponse, error) {
	links, err := s.links.FindAll(ctx, policy.LinkListScope(actor), actor.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.LinkResponse, 0, len(links))
	for i := range links {
		responses = append(responses, *s.buildResponse(&links[i]))
	}
	return responses, nil
}

func (s *linkService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*dto.LinkResponse, error) {
	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err)
	}

	if !policy.CanViewLink(actor, link) {
		return nil, apperror.ErrNotFound
	}
	return s.buildResponse(link), nil
}

func (s *linkService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req dto.UpdateLinkRequest) (*dto.LinkResponse, error) {
	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err)
	}

	if !policy.CanViewLink(actor, link) {
		return nil, apperror.ErrNotFound
	}
	if err := policy.CanModify(actor, link.OwnerID); err != nil {
		return nil, err
	}

	// ShortCode is generated once and never regenerated.
	if req.TargetURL != nil {
		link.TargetURL = *req.TargetURL
	}
	if req.Title != nil {
		link.Title = *req.Title
	}
	if req.IsPublic != nil {
		link.IsPublic = *req.IsPublic
	}

	if err := s.links.Save(ctx, link); err != nil {
		return nil, err
	}
	return s.buildResponse(link), nil
}

func (s *linkService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		return translateDBError(err)
	}

	if !policy.CanViewLink(actor, link) {
		return apperror.ErrNotFound
	}
	if err := policy.CanModify(actor, link.OwnerID); err != nil {
		return err
	}

	return s.links.Delete(ctx, id)
}

func (s *linkService) Resolve(ctx context.Context, code string) (string, error) {
	link, err := s.links.FindPublicByShortCode(ctx, code)
	if err != nil {
		return "", translateDBError(err)
	}
	return link.TargetURL, nil
}

func (s *linkService) buildResponse(link *model.Link) *dto.LinkResponse {
	return &dto.LinkResponse{
		ID:        link.ID,
		Owner:     toAuthorResponse(link.Owner),
		TargetURL: link.TargetURL,
		ShortCode: link.ShortCode,
		Title:     link.Title,
		IsPublic:  link.IsPublic,
		CreatedAt: link.CreatedAt,
	}
}

func generateShortCode() string {
	code := make([]byte, shortCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(shortCodeAlphabet))))
		if err != nil {
			panic(err) // crypto/rand failure is unrecoverable
		}
		code[i] = shortCodeAlphabet[n.Int64()]
	}
	return string(code)
}
