package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lifehub/internal/model"
	"lifehub/internal/policy"
)

// newTestDB opens an isolated in-memory database per test. Shared cache keeps
// the database alive across the pool's connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Note{},
		&model.Post{},
		&model.Link{},
		&model.Tag{},
		&model.Ingredient{},
		&model.Recipe{},
		&model.RecipeIngredient{},
		&model.Favorite{},
		&model.Rating{},
		&model.Comment{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()

	user := &model.User{
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func actorFor(user *model.User) policy.Actor {
	return policy.NewActor(user.ID, user.Role)
}

func createTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *model.Ingredient {
	t.Helper()

	ingredient := &model.Ingredient{Name: name, Unit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

func testContext() context.Context {
	return context.Background()
}
