package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/infrastructure/repository"
	"github.com/sangkips/invoicely-api/internal/testutil"
	"github.com/sangkips/invoicely-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestClientRepository_CRUDAndSearch(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewClientRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	acme := &entity.Client{UserID: owner, Name: "Acme", Email: "ap@acme.test", Address: "1 Road", Company: strPtr("Acme Holdings")}
	globex := &entity.Client{UserID: owner, Name: "Globex", Email: "billing@globex.test", Address: "2 Road"}
	foreign := &entity.Client{UserID: uuid.New(), Name: "Acme", Email: "x@acme.test", Address: "3 Road"}
	for _, c := range []*entity.Client{acme, globex, foreign} {
		require.NoError(t, repo.Create(ctx, c))
	}

	clients, total, err := repo.List(ctx, owner, pagination.DefaultPagination(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Acme", clients[0].Name)

	clients, total, err = repo.List(ctx, owner, pagination.DefaultPagination(), "HOLDINGS")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, acme.ID, clients[0].ID)

	acme.Phone = strPtr("+254700000000")
	require.NoError(t, repo.Update(ctx, acme))
	got, err := repo.GetByID(ctx, acme.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "+254700000000", *got.Phone)

	require.NoError(t, repo.Delete(ctx, acme.ID))
	got, err = repo.GetByID(ctx, acme.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, total, err = repo.List(ctx, uuid.Nil, pagination.DefaultPagination(), "")
	require.NoError(t, err)
	assert.Zero(t, total)
}
