package service

import (
	"context"

	"lifehub/internal/dto"
	"lifehub/internal/model"
	"lifehub/internal/policy"
	"lifehub/internal/repository"
)

// Reference data (tags, ingredients) has no owner; reads are public and
// mutation is restricted to admins.

type TagService interface {
	List(ctx context.Context, search string) ([]model.Tag, error)
	Create(ctx context.Context, actor policy.Actor, req dto.TagRequest) (*model.Tag, error)
	Update(ctx context.Context, actor policy.Actor, id uint, req dto.TagRequest) (*model.Tag, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
}

type tagService struct {
	tags repository.TagRepository
}

func NewTagService(tags repository.TagRepository) TagService {
	return &tagService{tags: tags}
}

func (s *tagService) List(ctx context.Context, search string) ([]model.Tag, error) {
	return s.tags.FindAll(ctx, search)
}

func (s *tagService) Create(ctx context.Context, actor policy.Actor, req dto.TagRequest) (*model.Tag, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	tag := &model.Tag{Name: req.Name, Slug: slugify(req.Name)}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, translateDBError(err)
	}
	return tag, nil
}

func (s *tagService) Update(ctx context.Context, actor policy.Actor, id uint, req dto.TagRequest) (*model.Tag, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	tag, err := s.tags.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err)
	}

	tag.Name = req.Name
	tag.Slug = slugify(req.Name)
	if err := s.tags.Save(ctx, tag); err != nil {
		return nil, translateDBError(err)
	}
	return tag, nil
}

func (s *tagService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}

	if _, err := s.tags.FindByID(ctx, id); err != nil {
		return translateDBError(err)
	}
	return s.tags.Delete(ctx, id)
}

type IngredientService interface {
	List(ctx context.Context, search string) ([]model.Ingredient, error)
	Create(ctx context.Context, actor policy.Actor, req dto.IngredientRequest) (*model.Ingredient, error)
	Update(ctx context.Context, actor policy.Actor, id uint, req dto.IngredientRequest) (*model.Ingredient, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
}

type ingredientService struct {
	ingredients repository.IngredientRepository
}

func NewIngredientService(ingredients repository.IngredientRepository) IngredientService {
	return &ingredientService{ingredients: ingredients}
}

func (s *ingredientService) List(ctx context.Context, search string) ([]model.Ingredient, error) {
	return s.ingredients.FindAll(ctx, search)
}

func (s *ingredientService) Create(ctx context.Context, actor policy.Actor, req dto.IngredientRequest) (*model.Ingredient, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	ingredient := &model.Ingredient{Name: req.Name, Unit: req.Unit}
	if err := s.ingredients.Create(ctx, ingredient); err != nil {
		return nil, translateDBError(err)
	}
	return ingredient, nil
}

func (s *ingredientService) Update(ctx context.Context, actor policy.Actor, id uint, req dto.IngredientRequest) (*model.Ingredient, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	ingredient, err := s.ingredients.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err)
	}

	ingredient.Name = req.Name
	ingredient.Unit = req.Unit
	if err := s.ingredients.Save(ctx, ingredient); err != nil {
		return nil, translateDBError(err)
	}
	return ingredient, nil
}

func (s *ingredientService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}

	if _, err := s.ingredients.FindByID(ctx, id); err != nil {
		return translateDBError(err)
	}
	return s.ingredients.Delete(ctx, id)
}
