package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lifehub/internal/dto"
	"lifehub/internal/model"
	"lifehub/internal/policy"
	"lifehub/internal/repository"
	"lifehub/pkg/apperror"
)

var (
	minAmount    = decimal.NewFromFloat(0.1)
	slugInvalid  = regexp.MustCompile("[^a-z0-9 ]+")
	slugSqueezed = regexp.MustCompile(" +")
)

type RecipeService interface {
	Create(ctx context.Context, actor policy.Actor, req dto.CreateRecipeRequest) (*dto.RecipeResponse, error)
	List(ctx context.Context, actor policy.Actor, filter dto.RecipeFilter) ([]dto.RecipeResponse, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*dto.RecipeResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req dto.UpdateRecipeRequest) (*dto.RecipeResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error

	Favorite(ctx context.Context, actor policy.Actor, recipeID uuid.UUID) error
	Unfavorite(ctx context.Context, actor policy.Actor, recipeID uuid.UUID) error
	Rate(ctx context.Context, actor policy.Actor, recipeID uuid.UUID, value int) error
	Unrate(ctx context.Context, actor policy.Actor, recipeID uuid.UUID) error

	// ShoppingList aggregates ingredient amounts across the actor's
	// favorited recipes. Amounts were quantized at write time, so their
	// sum is exact at one decimal place and is not re-rounded.
	ShoppingList(ctx context.Context, actor policy.Actor) ([]dto.ShoppingListItem, error)
}

type recipeService struct {
	recipes     repository.RecipeRepository
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
}

func NewRecipeService(recipes repository.RecipeRepository, tags repository.TagRepository, ingredients repository.IngredientRepository) RecipeService {
	return &recipeService{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
	}
}

func (s *recipeService) Create(ctx context.Context, actor policy.Actor, req dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	if err := policy.CanCreate(actor); err != nil {
		return nil, err
	}

	ve := apperror.NewValidation()
	s.validateTags(ve, req.Tags)
	s.validateSteps(ve, req.Steps)
	s.validateTimeMinutes(ve, req.TimeMinutes)
	items := s.validateIngredients(ctx, ve, req.Ingredients)
	if ve.HasErrors() {
		return nil, ve
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		AuthorID:    actor.ID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Steps:       req.Steps,
		TimeMinutes: req.TimeMinutes,
	}

	if err := s.recipes.Create(ctx, recipe, tags, items); err != nil {
		return nil, translateDBError(err)
	}

	return s.Get(ctx, actor, recipe.ID)
}

func (s *recipeService) List(ctx context.Context, actor policy.Actor, filter dto.RecipeFilter) ([]dto.RecipeResponse, error) {
	listFilter := repository.RecipeListFilter{
		Search:   filter.Search,
		Ordering: filter.Ordering,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}

	if filter.Author != "" {
		authorID, err := uuid.Parse(filter.Author)
		if err != nil {
			ve := apperror.NewValidation()
			ve.Add("author", "must be a valid id")
			return nil, ve
		}
		listFilter.AuthorID = &authorID
	}
	if filter.Favorited == "1" && actor.Authenticated() {
		actorID := actor.ID
		listFilter.FavoritedBy = &actorID
	}

	recipes, err := s.recipes.FindAll(ctx, listFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp, err := s.buildResponse(ctx, &recipes[i], actor)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func (s *recipeService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*dto.RecipeResponse, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err)
	}
	return s.buildResponse(ctx, recipe, actor)
}

func (s *recipeService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req dto.UpdateRecipeRequest) (*dto.RecipeResponse, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err)
	}

	if err := policy.CanModify(actor, recipe.AuthorID); err != nil {
		return nil, err
	}

	ve := apperror.NewValidation()
	if req.Tags != nil {
		s.validateTags(ve, *req.Tags)
	}
	if req.Steps != nil {
		s.validateSteps(ve, *req.Steps)
	}
	if req.TimeMinutes != nil {
		s.validateTimeMinutes(ve, *req.TimeMinutes)
	}
	var items []model.RecipeIngredient
	if req.Ingredients != nil {
		items = s.validateIngredients(ctx, ve, *req.Ingredients)
	}
	if ve.HasErrors() {
		return nil, ve
	}

	var tags []model.Tag
	if req.Tags != nil {
		tags, err = s.resolveTags(ctx, *req.Tags)
		if err != nil {
			return nil, err
		}
	}

	if req.Title != nil {
		recipe.Title = *req.Title
	}
	if req.Description != nil {
		recipe.Description = *req.Description
	}
	if req.ImageURL != nil {
		recipe.ImageURL = req.ImageURL
	}
	if req.Steps != nil {
		recipe.Steps = *req.Steps
	}
	if req.TimeMinutes != nil {
		recipe.TimeMinutes = *req.TimeMinutes
	}

	if err := s.recipes.Update(ctx, recipe, tags, items); err != nil {
		return nil, translateDBError(err)
	}

	return s.Get(ctx, actor, recipe.ID)
}

func (s *recipeService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return translateDBError(err)
	}

	if err := policy.CanModify(actor, recipe.AuthorID); err != nil {
		return err
	}

	return s.recipes.Delete(ctx, id)
}

func (s *recipeService) Favorite(ctx context.Context, actor policy.Actor, recipeID uuid.UUID) error {
	if err := policy.CanCreate(actor); err != nil {
		return err
	}
	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		return translateDBError(err)
	}
	return s.recipes.Favorite(ctx, actor.ID, recipeID)
}

func (s *recipeService) Unfavorite(ctx context.Context, actor policy.Actor, recipeID uuid.UUID) error {
	if err := policy.CanCreate(actor); err != nil {
		return err
	}
	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		return translateDBError(err)
	}
	return s.recipes.Unfavorite(ctx, actor.ID, recipeID)
}

func (s *recipeService) Rate(ctx context.Context, actor policy.Actor, recipeID uuid.UUID, value int) error {
	if err := policy.CanCreate(actor); err != nil {
		return err
	}
	if value < 1 || value > 5 {
		ve := apperror.NewValidation()
		ve.Add("value", "must be between 1 and 5")
		return ve
	}
	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		return translateDBError(err)
	}
	return s.recipes.SetRating(ctx, actor.ID, recipeID, value)
}

func (s *recipeService) Unrate(ctx context.Context, actor policy.Actor, recipeID uuid.UUID) error {
	if err := policy.CanCreate(actor); err != nil {
		return err
	}
	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		return translateDBError(err)
	}
	return s.recipes.DeleteRating(ctx, actor.ID, recipeID)
}

func (s *recipeService) ShoppingList(ctx context.Context, actor policy.Actor) ([]dto.ShoppingListItem, error) {
	if err := policy.CanCreate(actor); err != nil {
		return nil, err
	}

	rows, err := s.recipes.IngredientsForFavorites(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	totals := make(map[uint]decimal.Decimal)
	meta := make(map[uint]model.Ingredient)
	for _, row := range rows {
		totals[row.IngredientID] = totals[row.IngredientID].Add(row.Amount)
		meta[row.IngredientID] = row.Ingredient
	}

	// Order is unspecified; callers must not rely on it.
	list := make([]dto.ShoppingListItem, 0, len(totals))
	for id, amount := range totals {
		list = append(list, dto.ShoppingListItem{
			Ingredient: meta[id],
			Amount:     amount,
		})
	}
	return list, nil
}

func (s *recipeService) validateTags(ve *apperror.ValidationError, tags []string) {
	if len(tags) == 0 {
		ve.Add("tags", "at least one tag is required")
		return
	}
	for _, name := range tags {
		if strings.TrimSpace(name) == "" {
			ve.Add("tags", "tag names must not be blank")
			return
		}
	}
}

func (s *recipeService) validateSteps(ve *apperror.ValidationError, steps []string) {
	if len(steps) == 0 {
		ve.Add("steps", "at least one step is required")
	}
}

func (s *recipeService) validateTimeMinutes(ve *apperror.ValidationError, minutes int) {
	if minutes < 1 || minutes > 600 {
		ve.Add("time_minutes", "must be between 1 and 600")
	}
}

// validateIngredients checks duplicates, amounts and existence, and returns
// the quantized ingredient rows when everything passed.
func (s *recipeService) validateIngredients(ctx context.Context, ve *apperror.ValidationError, inputs []dto.RecipeIngredientInput) []model.RecipeIngredient {
	seen := make(map[uint]bool, len(inputs))
	ids := make([]uint, 0, len(inputs))
	for _, input := range inputs {
		if seen[input.ID] {
			ve.Add("ingredients", "duplicate ingredients are not allowed")
			return nil
		}
		seen[input.ID] = true
		ids = append(ids, input.ID)

		if input.Amount.LessThan(minAmount) {
			ve.Add("ingredients", "ingredient amount must be >= 0.1")
			return nil
		}
	}

	if len(ids) > 0 {
		existing, err := s.ingredients.FindByIDs(ctx, ids)
		if err != nil {
			ve.Add("ingredients", "could not verify ingredients")
			return nil
		}
		if len(existing) != len(ids) {
			ve.Add("ingredients", "unknown ingredient id")
			return nil
		}
	}

	items := make([]model.RecipeIngredient, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, model.RecipeIngredient{
			IngredientID: input.ID,
			Amount:       quantizeAmount(input.Amount),
		})
	}
	return items
}

func (s *recipeService) resolveTags(ctx context.Context, names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		slug := slugify(name)
		if seen[slug] {
			continue
		}
		seen[slug] = true

		tag, err := s.tags.GetOrCreateBySlug(ctx, slug, name)
		if err != nil {
			return nil, fmt.Errorf("resolving tag %q: %w", name, err)
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func (s *recipeService) buildResponse(ctx context.Context, recipe *model.Recipe, actor policy.Actor) (*dto.RecipeResponse, error) {
	avg, err := s.recipes.AverageRating(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}
	commentsCount, err := s.recipes.CommentsCount(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}

	isFavorited := false
	if actor.Authenticated() {
		isFavorited, err = s.recipes.IsFavorited(ctx, actor.ID, recipe.ID)
		if err != nil {
			return nil, err
		}
	}

	ingredients := make([]dto.RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, item := range recipe.Ingredients {
		ingredients = append(ingredients, dto.RecipeIngredientResponse{
			Ingredient: item.Ingredient,
			Amount:     item.Amount,
		})
	}

	tags := recipe.Tags
	if tags == nil {
		tags = []model.Tag{}
	}
	steps := recipe.Steps
	if steps == nil {
		steps = []string{}
	}

	return &dto.RecipeResponse{
		ID:            recipe.ID,
		Author:        toAuthorResponse(recipe.Author),
		Title:         recipe.Title,
		Description:   recipe.Description,
		ImageURL:      recipe.ImageURL,
		Tags:          tags,
		Ingredients:   ingredients,
		Steps:         steps,
		TimeMinutes:   recipe.TimeMinutes,
		CreatedAt:     recipe.CreatedAt,
		AvgRating:     avg,
		CommentsCount: commentsCount,
		IsFavorited:   isFavorited,
	}, nil
}

// quantizeAmount rounds half-up to one decimal place, e.g. 0.15 -> 0.2.
func quantizeAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(1)
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugSqueezed.ReplaceAllString(slug, " ")
	slug = strings.ReplaceAll(slug, " ", "-")
	return strings.Trim(slug, "-")
}
