package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/infrastructure/repository"
	"github.com/sangkips/invoicely-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_RolesAndPermissions(t *testing.T) {
	db := testutil.NewSeededDB(t)
	users := repository.NewUserRepository(db)
	roles := repository.NewRoleRepository(db)
	ctx := context.Background()

	user := &entity.User{FirstName: "Jane", LastName: "Doe", Email: " Jane@Example.com ", Password: "hash"}
	require.NoError(t, users.Create(ctx, user))

	role, err := roles.GetByName(ctx, entity.RoleUser)
	require.NoError(t, err)
	require.NotNil(t, role)
	require.NoError(t, users.AssignRole(ctx, user.ID, role.ID))
	// assigning twice is a no-op
	require.NoError(t, users.AssignRole(ctx, user.ID, role.ID))

	got, err := users.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{entity.RoleUser}, got.RoleNames())
	assert.ElementsMatch(t, entity.AllPermissions, got.GetPermissions())

	missing, err := roles.GetByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	got.FirstName = "Janet"
	require.NoError(t, users.Update(ctx, got))
	reloaded, err := users.GetWithRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Janet Doe", reloaded.FullName())
	assert.Len(t, reloaded.Roles, 1)
}

func TestSettingsRepository_CreateAndUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewSettingsRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	none, err := repo.GetByUserID(ctx, owner)
	require.NoError(t, err)
	assert.Nil(t, none)

	settings := entity.DefaultBusinessSettings(owner)
	require.NoError(t, repo.Create(ctx, settings))

	settings.AutoSave = false
	settings.InvoicePrefix = "ACME"
	require.NoError(t, repo.Update(ctx, settings))

	got, err := repo.GetByUserID(ctx, owner)
	require.NoError(t, err)
	assert.False(t, got.AutoSave)
	assert.True(t, got.EmailNotifications)
	assert.Equal(t, "ACME", got.NumberPrefix())
	assert.Equal(t, entity.DefaultPaymentTerms, got.PaymentTerms)
}

func TestIdempotencyRepository_SaveReplacesExpired(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	expired := &entity.IdempotencyKey{
		Key: "pay-1", UserID: owner, Endpoint: "POST /payments",
		ResponseCode: 200, ResponseBody: `{"old":true}`,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.Save(ctx, expired))

	fresh := &entity.IdempotencyKey{
		Key: "pay-1", UserID: owner, Endpoint: "POST /payments",
		ResponseCode: 201, ResponseBody: `{"new":true}`,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Save(ctx, fresh))

	got, err := repo.GetByKey(ctx, "pay-1", owner)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.ResponseCode)

	other, err := repo.GetByKey(ctx, "pay-1", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, other)

	n, err := repo.DeleteExpired(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
