package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lifehub/internal/dto"
	"lifehub/internal/model"
	"lifehub/internal/policy"
	"lifehub/internal/repository"
	"lifehub/pkg/apperror"
)

func newRecipeService(db *gorm.DB) RecipeService {
	return NewRecipeService(
		repository.NewRecipeRepository(db),
		repository.NewTagRepository(db),
		repository.NewIngredientRepository(db),
	)
}

func validRecipeRequest(ingredientID uint) dto.CreateRecipeRequest {
	return dto.CreateRecipeRequest{
		Title:       "Pancakes",
		Description: "Weekend breakfast",
		Tags:        []string{"Breakfast"},
		Ingredients: []dto.RecipeIngredientInput{
			{ID: ingredientID, Amount: decimal.NewFromFloat(2.0)},
		},
		Steps:       []string{"Mix", "Fry"},
		TimeMinutes: 20,
	}
}

func TestRecipeCreateQuantizesAmounts(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	req := validRecipeRequest(flour.ID)
	req.Ingredients[0].Amount = decimal.NewFromFloat(0.15)

	resp, err := svc.Create(testContext(), actorFor(author), req)
	require.NoError(t, err)
	require.Len(t, resp.Ingredients, 1)
	assert.True(t, resp.Ingredients[0].Amount.Equal(decimal.NewFromFloat(0.2)),
		"expected 0.2, got %s", resp.Ingredients[0].Amount)
}

func TestRecipeCreateRequiresAuth(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	flour := createTestIngredient(t, db, "flour", "g")

	_, err := svc.Create(testContext(), policy.Anonymous(), validRecipeRequest(flour.ID))
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRecipeCreateRequiresTags(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	req := validRecipeRequest(flour.ID)
	req.Tags = nil

	_, err := svc.Create(testContext(), actorFor(author), req)
	ve, ok := apperror.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "tags")
}

func TestRecipeCreateRejectsDuplicateIngredients(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	req := validRecipeRequest(flour.ID)
	req.Ingredients = []dto.RecipeIngredientInput{
		{ID: flour.ID, Amount: decimal.NewFromFloat(1)},
		{ID: flour.ID, Amount: decimal.NewFromFloat(2)},
	}

	_, err := svc.Create(testContext(), actorFor(author), req)
	ve, ok := apperror.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "ingredients")
}

func TestRecipeCreateRejectsUnknownIngredient(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)

	req := validRecipeRequest(9999)

	_, err := svc.Create(testContext(), actorFor(author), req)
	ve, ok := apperror.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "ingredients")
}

func TestRecipeCreateRejectsTinyAmount(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	req := validRecipeRequest(flour.ID)
	req.Ingredients[0].Amount = decimal.NewFromFloat(0.04)

	_, err := svc.Create(testContext(), actorFor(author), req)
	ve, ok := apperror.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "ingredients")
}

func TestRecipeCreateTimeMinutesRange(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	for _, minutes := range []int{0, 601} {
		req := validRecipeRequest(flour.ID)
		req.TimeMinutes = minutes

		_, err := svc.Create(testContext(), actorFor(author), req)
		ve, ok := apperror.AsValidation(err)
		require.True(t, ok, "time_minutes=%d should fail validation", minutes)
		assert.Contains(t, ve.Fields, "time_minutes")
	}
}

func TestRecipeCreateCollectsAllFieldErrors(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)

	req := dto.CreateRecipeRequest{Title: "Broken", TimeMinutes: 0}

	_, err := svc.Create(testContext(), actorFor(author), req)
	ve, ok := apperror.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "tags")
	assert.Contains(t, ve.Fields, "steps")
	assert.Contains(t, ve.Fields, "time_minutes")
}

func TestRecipeTagsCreatedBySlug(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	req := validRecipeRequest(flour.ID)
	req.Tags = []string{"Quick Dinner", "quick dinner"}

	resp, err := svc.Create(testContext(), actorFor(author), req)
	require.NoError(t, err)

	// Both names slugify to the same tag; the first name wins.
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "quick-dinner", resp.Tags[0].Slug)
	assert.Equal(t, "Quick Dinner", resp.Tags[0].Name)
}

func TestRecipeUpdateReplacesIngredients(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")
	sugar := createTestIngredient(t, db, "sugar", "g")

	req := validRecipeRequest(flour.ID)
	req.Ingredients = append(req.Ingredients, dto.RecipeIngredientInput{
		ID: sugar.ID, Amount: decimal.NewFromFloat(1),
	})

	created, err := svc.Create(testContext(), actorFor(author), req)
	require.NoError(t, err)
	require.Len(t, created.Ingredients, 2)

	newItems := []dto.RecipeIngredientInput{
		{ID: sugar.ID, Amount: decimal.NewFromFloat(3)},
	}
	updated, err := svc.Update(testContext(), actorFor(author), created.ID, dto.UpdateRecipeRequest{
		Ingredients: &newItems,
	})
	require.NoError(t, err)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, sugar.ID, updated.Ingredients[0].Ingredient.ID)
}

func TestRecipeUpdateOmittedFieldsUnchanged(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	created, err := svc.Create(testContext(), actorFor(author), validRecipeRequest(flour.ID))
	require.NoError(t, err)

	title := "Better Pancakes"
	updated, err := svc.Update(testContext(), actorFor(author), created.ID, dto.UpdateRecipeRequest{
		Title: &title,
	})
	require.NoError(t, err)
	assert.Equal(t, "Better Pancakes", updated.Title)
	assert.Equal(t, created.Steps, updated.Steps)
	assert.Len(t, updated.Ingredients, 1)
	assert.Len(t, updated.Tags, 1)
}

func TestRecipeUpdateForbiddenForNonAuthor(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	other := createTestUser(t, db, "other@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	created, err := svc.Create(testContext(), actorFor(author), validRecipeRequest(flour.ID))
	require.NoError(t, err)

	title := "Hijacked"
	_, err = svc.Update(testContext(), actorFor(other), created.ID, dto.UpdateRecipeRequest{Title: &title})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestRecipeAvgRatingDefaultsToZero(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	created, err := svc.Create(testContext(), actorFor(author), validRecipeRequest(flour.ID))
	require.NoError(t, err)
	assert.Equal(t, float64(0), created.AvgRating)
	assert.Equal(t, int64(0), created.CommentsCount)
}

func TestRecipeRatingUpsert(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	rater := createTestUser(t, db, "rater@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	created, err := svc.Create(testContext(), actorFor(author), validRecipeRequest(flour.ID))
	require.NoError(t, err)

	require.NoError(t, svc.Rate(testContext(), actorFor(rater), created.ID, 3))
	require.NoError(t, svc.Rate(testContext(), actorFor(rater), created.ID, 5))

	var count int64
	require.NoError(t, db.Model(&model.Rating{}).Where("recipe_id = ?", created.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := svc.Get(testContext(), actorFor(rater), created.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(5), got.AvgRating)
}

func TestRecipeRateRejectsOutOfRange(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	created, err := svc.Create(testContext(), actorFor(author), validRecipeRequest(flour.ID))
	require.NoError(t, err)

	err = svc.Rate(testContext(), actorFor(author), created.ID, 6)
	ve, ok := apperror.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "value")
}

func TestRecipeFavoriteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	created, err := svc.Create(testContext(), actorFor(author), validRecipeRequest(flour.ID))
	require.NoError(t, err)

	require.NoError(t, svc.Favorite(testContext(), actorFor(author), created.ID))
	require.NoError(t, svc.Favorite(testContext(), actorFor(author), created.ID))

	var count int64
	require.NoError(t, db.Model(&model.Favorite{}).Where("recipe_id = ?", created.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := svc.Get(testContext(), actorFor(author), created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFavorited)
}

func TestRecipeListFilterByFavorited(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	fan := createTestUser(t, db, "fan@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	first, err := svc.Create(testContext(), actorFor(author), validRecipeRequest(flour.ID))
	require.NoError(t, err)

	second := validRecipeRequest(flour.ID)
	second.Title = "Waffles"
	_, err = svc.Create(testContext(), actorFor(author), second)
	require.NoError(t, err)

	require.NoError(t, svc.Favorite(testContext(), actorFor(fan), first.ID))

	list, err := svc.List(testContext(), actorFor(fan), dto.RecipeFilter{Favorited: "1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestRecipeListPagination(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	for _, title := range []string{"Pancakes", "Waffles", "Crepes"} {
		req := validRecipeRequest(flour.ID)
		req.Title = title
		_, err := svc.Create(testContext(), actorFor(author), req)
		require.NoError(t, err)
	}

	firstPage, err := svc.List(testContext(), actorFor(author), dto.RecipeFilter{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, firstPage, 2)

	secondPage, err := svc.List(testContext(), actorFor(author), dto.RecipeFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, secondPage, 1)
	assert.NotContains(t,
		[]uuid.UUID{firstPage[0].ID, firstPage[1].ID}, secondPage[0].ID)
}

func TestRecipeListPageSizeCapped(t *testing.T) {
	filter := repository.RecipeListFilter{Page: 3, PageSize: 500}
	offset, limit := filter.Limits()
	assert.Equal(t, 100, limit)
	assert.Equal(t, 200, offset)
}

func TestRecipeListOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	slow := validRecipeRequest(flour.ID)
	slow.Title = "Stew"
	slow.TimeMinutes = 90
	_, err := svc.Create(testContext(), actorFor(author), slow)
	require.NoError(t, err)

	quick := validRecipeRequest(flour.ID)
	quick.Title = "Toast"
	quick.TimeMinutes = 5
	_, err = svc.Create(testContext(), actorFor(author), quick)
	require.NoError(t, err)

	ascending, err := svc.List(testContext(), actorFor(author), dto.RecipeFilter{Ordering: "time_minutes"})
	require.NoError(t, err)
	require.Len(t, ascending, 2)
	assert.Equal(t, "Toast", ascending[0].Title)

	descending, err := svc.List(testContext(), actorFor(author), dto.RecipeFilter{Ordering: "-time_minutes"})
	require.NoError(t, err)
	require.Len(t, descending, 2)
	assert.Equal(t, "Stew", descending[0].Title)

	// Unknown ordering falls back to creation order.
	fallback, err := svc.List(testContext(), actorFor(author), dto.RecipeFilter{Ordering: "title; DROP TABLE"})
	require.NoError(t, err)
	require.Len(t, fallback, 2)
	assert.Equal(t, "Stew", fallback[0].Title)
}

func TestShoppingListSumsAcrossFavorites(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	author := createTestUser(t, db, "cook@example.com", model.RoleUser)
	flour := createTestIngredient(t, db, "flour", "g")

	first := validRecipeRequest(flour.ID)
	first.Ingredients[0].Amount = decimal.NewFromFloat(0.3)
	firstResp, err := svc.Create(testContext(), actorFor(author), first)
	require.NoError(t, err)

	second := validRecipeRequest(flour.ID)
	second.Title = "Crepes"
	second.Ingredients[0].Amount = decimal.NewFromFloat(0.4)
	secondResp, err := svc.Create(testContext(), actorFor(author), second)
	require.NoError(t, err)

	require.NoError(t, svc.Favorite(testContext(), actorFor(author), firstResp.ID))
	require.NoError(t, svc.Favorite(testContext(), actorFor(author), secondResp.ID))

	list, err := svc.ShoppingList(testContext(), actorFor(author))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, flour.ID, list[0].Ingredient.ID)
	assert.True(t, list[0].Amount.Equal(decimal.NewFromFloat(0.7)),
		"expected exactly 0.7, got %s", list[0].Amount)
}

func TestShoppingListEmptyWithoutFavorites(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	user := createTestUser(t, db, "fan@example.com", model.RoleUser)

	list, err := svc.ShoppingList(testContext(), actorFor(user))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestShoppingListRequiresAuth(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)

	_, err := svc.ShoppingList(testContext(), policy.Anonymous())
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRecipeGetUnknownNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(db)
	user := createTestUser(t, db, "fan@example.com", model.RoleUser)

	_, err := svc.Get(testContext(), actorFor(user), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
