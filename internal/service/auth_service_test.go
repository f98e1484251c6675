package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lifehub/internal/dto"
	"lifehub/internal/model"
	"lifehub/internal/repository"
	"lifehub/pkg/apperror"
	"lifehub/pkg/token"
)

// memoryBlacklist stands in for redis in tests.
type memoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{revoked: make(map[string]bool)}
}

func (b *memoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[jti] = true
	return nil
}

func (b *memoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revoked[jti], nil
}

func newAuthService(db *gorm.DB) AuthService {
	tokens := token.NewManager("test-secret", time.Minute, time.Hour)
	return NewAuthService(repository.NewUserRepository(db), tokens, newMemoryBlacklist())
}

func registerTestUser(t *testing.T, svc AuthService, email string) *dto.UserResponse {
	t.Helper()

	user, err := svc.Register(testContext(), dto.RegisterRequest{
		Email:     email,
		Password:  "hunter2hunter2",
		FirstName: "Test",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	user := registerTestUser(t, svc, "alice@example.com")
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, string(model.RoleUser), user.Role)

	pair, err := svc.Login(testContext(), dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registerTestUser(t, svc, "alice@example.com")

	_, err := svc.Register(testContext(), dto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registerTestUser(t, svc, "alice@example.com")

	_, err := svc.Login(testContext(), dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLoginUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Login(testContext(), dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever123",
	})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLoginDisabledAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registerTestUser(t, svc, "alice@example.com")
	require.NoError(t, db.Model(&model.User{}).
		Where("email = ?", "alice@example.com").
		Update("is_active", false).Error)

	_, err := svc.Login(testContext(), dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registerTestUser(t, svc, "alice@example.com")
	pair, err := svc.Login(testContext(), dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	resp, err := svc.Refresh(testContext(), dto.RefreshRequest{Refresh: pair.Refresh})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Access)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registerTestUser(t, svc, "alice@example.com")
	pair, err := svc.Login(testContext(), dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(testContext(), dto.RefreshRequest{Refresh: pair.Access})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registerTestUser(t, svc, "alice@example.com")
	pair, err := svc.Login(testContext(), dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(testContext(), dto.RefreshRequest{Refresh: pair.Refresh}))

	_, err = svc.Refresh(testContext(), dto.RefreshRequest{Refresh: pair.Refresh})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registerTestUser(t, svc, "alice@example.com")
	var user model.User
	require.NoError(t, db.First(&user, "email = ?", "alice@example.com").Error)

	err := svc.ChangePassword(testContext(), actorFor(&user), dto.ChangePasswordRequest{
		OldPassword: "wrong-password",
		NewPassword: "newpassword123",
	})
	ve, ok := apperror.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "old_password")
}

func TestChangePasswordRotatesCredential(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registerTestUser(t, svc, "alice@example.com")
	var user model.User
	require.NoError(t, db.First(&user, "email = ?", "alice@example.com").Error)

	require.NoError(t, svc.ChangePassword(testContext(), actorFor(&user), dto.ChangePasswordRequest{
		OldPassword: "hunter2hunter2",
		NewPassword: "newpassword123",
	}))

	_, err := svc.Login(testContext(), dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Login(testContext(), dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "newpassword123",
	})
	assert.NoError(t, err)
}

func TestUpdateProfilePartial(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registerTestUser(t, svc, "alice@example.com")
	var user model.User
	require.NoError(t, db.First(&user, "email = ?", "alice@example.com").Error)

	last := "Smith"
	updated, err := svc.UpdateProfile(testContext(), actorFor(&user), dto.UpdateProfileRequest{
		LastName: &last,
	})
	require.NoError(t, err)
	assert.Equal(t, "Test", updated.FirstName)
	assert.Equal(t, "Smith", updated.LastName)
}
