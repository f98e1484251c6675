package policy_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"lifehub/internal/model"
	"lifehub/internal/policy"
	"lifehub/pkg/apperror"
)

func TestCanCreate(t *testing.T) {
	assert.ErrorIs(t, policy.CanCreate(policy.Anonymous()), apperror.ErrUnauthorized)
	assert.NoError(t, policy.CanCreate(policy.NewActor(uuid.New(), model.RoleUser)))
	assert.NoError(t, policy.CanCreate(policy.NewActor(uuid.New(), model.RoleAdmin)))
}

func TestCanModify(t *testing.T) {
	ownerID := uuid.New()

	t.Run("anonymous gets authentication error", func(t *testing.T) {
		err := policy.CanModify(policy.Anonymous(), ownerID)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("owner allowed", func(t *testing.T) {
		err := policy.CanModify(policy.NewActor(ownerID, model.RoleUser), ownerID)
		assert.NoError(t, err)
	})

	t.Run("admin allowed regardless of owner", func(t *testing.T) {
		err := policy.CanModify(policy.NewActor(uuid.New(), model.RoleAdmin), ownerID)
		assert.NoError(t, err)
	})

	t.Run("other user forbidden", func(t *testing.T) {
		err := policy.CanModify(policy.NewActor(uuid.New(), model.RoleUser), ownerID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestRequireAdmin(t *testing.T) {
	assert.ErrorIs(t, policy.RequireAdmin(policy.Anonymous()), apperror.ErrUnauthorized)
	assert.ErrorIs(t, policy.RequireAdmin(policy.NewActor(uuid.New(), model.RoleUser)), apperror.ErrForbidden)
	assert.NoError(t, policy.RequireAdmin(policy.NewActor(uuid.New(), model.RoleAdmin)))
}

func TestLinkListScope(t *testing.T) {
	assert.Equal(t, policy.ScopeAll, policy.LinkListScope(policy.NewActor(uuid.New(), model.RoleAdmin)))
	assert.Equal(t, policy.ScopePublicOrOwn, policy.LinkListScope(policy.NewActor(uuid.New(), model.RoleUser)))
	assert.Equal(t, policy.ScopePublicOnly, policy.LinkListScope(policy.Anonymous()))
}

func TestCanViewLink(t *testing.T) {
	ownerID := uuid.New()
	private := &model.Link{OwnerID: ownerID, IsPublic: false}
	public := &model.Link{OwnerID: ownerID, IsPublic: true}

	assert.True(t, policy.CanViewLink(policy.Anonymous(), public))
	assert.False(t, policy.CanViewLink(policy.Anonymous(), private))
	assert.False(t, policy.CanViewLink(policy.NewActor(uuid.New(), model.RoleUser), private))
	assert.True(t, policy.CanViewLink(policy.NewActor(ownerID, model.RoleUser), private))
	assert.True(t, policy.CanViewLink(policy.NewActor(uuid.New(), model.RoleAdmin), private))
}
