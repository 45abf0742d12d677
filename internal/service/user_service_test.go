package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tillpoint/internal/domain"
	"tillpoint/internal/repository"
	"tillpoint/internal/store"
)

func newTestUserService(t *testing.T) (UserService, repository.UserRepository) {
	t.Helper()
	users := repository.NewUserRepository(store.NewMemoryStore())
	return NewUserService(users, zap.NewNop()), users
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, users := newTestUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "s3cret-pw", "Alice", domain.RoleCashier)
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	stored, err := users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pw", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pw")))
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "s3cret-pw", "Alice", domain.RoleCashier)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "alice", "other-pw", "Other Alice", domain.RoleAdmin)
	assert.ErrorIs(t, err, repository.ErrUserAlreadyExists)
}

func TestEnsureDefaultAdminSeedsOnlyEmptyCollection(t *testing.T) {
	svc, users := newTestUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin", "admin-pw"))

	admin, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	// A second call is a no-op, as is any call once users exist.
	require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin2", "admin-pw"))
	_, err = users.FindByUsername(ctx, "admin2")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestSetActiveTogglesAccount(t *testing.T) {
	svc, users := newTestUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "s3cret-pw", "Alice", domain.RoleCashier)
	require.NoError(t, err)

	updated, err := svc.SetActive(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	stored, err := users.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	_, err = svc.SetActive(ctx, created.ID, true)
	require.NoError(t, err)
	stored, err = users.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
}
