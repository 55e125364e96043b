package sqlite_test

import (
	"context"
	"testing"

	"github.com/msomdec/catalog-admin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Register(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Secrets().Create(ctx, &domain.RegisterSecret{Secret: "2026-USER-ABC123"}))

	user := &domain.User{Username: "operator", Email: "op@example.com", PasswordHash: "hash"}
	require.NoError(t, db.Users().Register(ctx, user, "2026-USER-ABC123"))
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	s, err := db.Secrets().GetBySecret(ctx, "2026-USER-ABC123")
	require.NoError(t, err)
	assert.True(t, s.IsUsed)
	require.NotNil(t, s.UserID)
	assert.Equal(t, user.ID, *s.UserID)
	assert.NotNil(t, s.UsedAt)
}

func TestUserRepository_Register_UnknownSecret(t *testing.T) {
	db := newTestDB(t)

	user := &domain.User{Username: "operator", Email: "op@example.com", PasswordHash: "hash"}
	err := db.Users().Register(context.Background(), user, "nope")
	require.ErrorIs(t, err, domain.ErrSecretInvalid)
	assert.Zero(t, user.ID)
}

func TestUserRepository_Register_SecretSingleUse(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Secrets().Create(ctx, &domain.RegisterSecret{Secret: "K1"}))

	require.NoError(t, db.Users().Register(ctx, &domain.User{Username: "a", Email: "a@example.com", PasswordHash: "h"}, "K1"))

	err := db.Users().Register(ctx, &domain.User{Username: "b", Email: "b@example.com", PasswordHash: "h"}, "K1")
	require.ErrorIs(t, err, domain.ErrSecretUsed)

	_, err = db.Users().GetByLogin(ctx, "b")
	require.ErrorIs(t, err, domain.ErrNotFound, "user must not persist when the key is rejected")
}

func TestUserRepository_Register_DuplicateKeepsSecretUnused(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Secrets().Create(ctx, &domain.RegisterSecret{Secret: "K1"}))
	require.NoError(t, db.Secrets().Create(ctx, &domain.RegisterSecret{Secret: "K2"}))

	require.NoError(t, db.Users().Register(ctx, &domain.User{Username: "a", Email: "a@example.com", PasswordHash: "h"}, "K1"))

	err := db.Users().Register(ctx, &domain.User{Username: "a", Email: "other@example.com", PasswordHash: "h"}, "K2")
	require.ErrorIs(t, err, domain.ErrDuplicateUser)

	s, err := db.Secrets().GetBySecret(ctx, "K2")
	require.NoError(t, err)
	assert.False(t, s.IsUsed)
}

func TestUserRepository_GetByLogin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Secrets().Create(ctx, &domain.RegisterSecret{Secret: "K"}))
	user := &domain.User{Username: "operator", Email: "op@example.com", PasswordHash: "hash"}
	require.NoError(t, db.Users().Register(ctx, user, "K"))

	byName, err := db.Users().GetByLogin(ctx, "operator")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := db.Users().GetByLogin(ctx, "op@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := db.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "operator", byID.Username)

	_, err = db.Users().GetByID(ctx, 9999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterSecretRepository_CreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Secrets().Create(ctx, &domain.RegisterSecret{Secret: "K"}))
	require.ErrorIs(t, db.Secrets().Create(ctx, &domain.RegisterSecret{Secret: "K"}), domain.ErrDuplicateSecret)

	list, err := db.Secrets().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.False(t, list[0].IsUsed)
	assert.Nil(t, list[0].UserID)
}
