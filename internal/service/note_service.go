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

type NoteService interface {
	Create(ctx context.Context, actor policy.Actor, req dto.CreateNoteRequest) (*dto.NoteResponse, error)
	List(ctx context.Context) ([]dto.NoteResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.NoteResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type noteService struct {
	notes     repository.NoteRepository
	sanitizer *bluemonday.Policy
}

func NewNoteService(notes repository.NoteRepository) NoteService {
	return &noteService{
		notes:     notes,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *noteService) Create(ctx context.Context, actor policy.Actor, req dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	if err := policy.CanCreate(actor); err != nil {
		return nil, err
	}

	note := &model.Note{
		Title:   s.sanitizer.Sanitize(req.Title),
		Content: s.sanitizer.Sanitize(req.Content),
		OwnerID: actor.ID,
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	created, err := s.notes.FindByID(ctx, note.ID)
	if err != nil {
		return nil, translateDBError(err)
	}
	return s.buildResponse(created), nil
}

func (s *noteService) List(ctx context.Context) ([]dto.NoteResponse, error) {
	notes, err := s.notes.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		responses = append(responses, *s.buildResponse(&notes[i]))
	}
	return responses, nil
}

func (s *noteService) Get(ctx context.Context, id uuid.UUID) (*dto.NoteResponse, error) {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err)
	}
	return s.buildResponse(note), nil
}

func (s *noteService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err)
	}

	if err := policy.CanModify(actor, note.OwnerID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		note.Title = s.sanitizer.Sanitize(*req.Title)
	}
	if req.Content != nil {
		note.Content = s.sanitizer.Sanitize(*req.Content)
	}

	if err := s.notes.Save(ctx, note); err != nil {
		return nil, err
	}
	return s.buildResponse(note), nil
}

func (s *noteService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return translateDBError(err)
	}

	if err := policy.CanModify(actor, note.OwnerID); err != nil {
		return err
	}

	return s.notes.Delete(ctx, id)
}

func (s *noteService) buildResponse(note *model.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		Owner:     toAuthorResponse(note.Owner),
		CreatedAt: note.CreatedAt,
	}
}
