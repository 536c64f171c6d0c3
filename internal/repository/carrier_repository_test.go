package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarrierRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCarrierRepository(db)
	ctx := context.Background()

	t.Run("create carrier successfully", func(t *testing.T) {
		created, err := repo.Create(ctx, &model.Carrier{Name: "SSW Transportes", Code: "SSW", Active: true, IsDefault: true})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.True(t, created.Active)
		assert.True(t, created.IsDefault)
	})

	t.Run("inactive carrier stays inactive", func(t *testing.T) {
		created, err := repo.Create(ctx, &model.Carrier{Name: "Desativada", Code: "OFF", Active: false})
		require.NoError(t, err)
		assert.False(t, created.Active)

		found, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, found.Active)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Carrier{Name: "SSW Transportes", Code: "SSW2"})
		assert.ErrorIs(t, err, ErrDuplicateCarrier)
	})

	t.Run("duplicate code is rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Carrier{Name: "Outra", Code: "SSW"})
		assert.ErrorIs(t, err, ErrDuplicateCarrier)
	})

	t.Run("code is reusable after soft delete", func(t *testing.T) {
		victim, err := repo.Create(ctx, &model.Carrier{Name: "Temporária", Code: "TMP"})
		require.NoError(t, err)
		require.NoError(t, repo.SoftDelete(ctx, victim.ID))

		_, err = repo.Create(ctx, &model.Carrier{Name: "Temporária", Code: "TMP"})
		assert.NoError(t, err)
	})
}

func TestCarrierRepository_Get(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCarrierRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Carrier{Name: "Jadlog", Code: "JAD", Active: true})
	require.NoError(t, err)

	t.Run("get by id", func(t *testing.T) {
		found, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jadlog", found.Name)
	})

	t.Run("get by code", func(t *testing.T) {
		found, err := repo.GetByCode(ctx, "JAD")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("unknown carrier returns ErrCarrierNotFound", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrCarrierNotFound)
		_, err = repo.GetByCode(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrCarrierNotFound)
	})

	t.Run("soft deleted carrier is invisible", func(t *testing.T) {
		require.NoError(t, repo.SoftDelete(ctx, created.ID))
		_, err := repo.Get(ctx, created.ID)
		assert.ErrorIs(t, err, ErrCarrierNotFound)
	})
}

func TestCarrierRepository_List(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCarrierRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &model.Carrier{Name: "Braspress", Code: "BRA", Active: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &model.Carrier{Name: "SSW Transportes", Code: "SSW", Active: true, IsDefault: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &model.Carrier{Name: "Antiga", Code: "ANT", Active: false})
	require.NoError(t, err)

	t.Run("default carrier comes first", func(t *testing.T) {
		out, err := repo.List(ctx, false)
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, "SSW", out[0].Code)
	})

	t.Run("active only", func(t *testing.T) {
		out, err := repo.List(ctx, true)
		require.NoError(t, err)
		assert.Len(t, out, 2)
		for _, c := range out {
			assert.True(t, c.Active)
		}
	})
}

func TestCarrierRepository_Update(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCarrierRepository(db)
	ctx := context.Background()

	a, err := repo.Create(ctx, &model.Carrier{Name: "Carrier A", Code: "CA", Active: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &model.Carrier{Name: "Carrier B", Code: "CB", Active: true})
	require.NoError(t, err)

	t.Run("applies only non-nil fields", func(t *testing.T) {
		updated, err := repo.Update(ctx, a.ID, model.CarrierUpdate{Active: ptr(false)})
		require.NoError(t, err)
		assert.False(t, updated.Active)
		assert.Equal(t, "Carrier A", updated.Name)
	})

	t.Run("rejects rename onto existing carrier", func(t *testing.T) {
		_, err := repo.Update(ctx, a.ID, model.CarrierUpdate{Name: ptr("Carrier B")})
		assert.ErrorIs(t, err, ErrDuplicateCarrier)

		_, err = repo.Update(ctx, a.ID, model.CarrierUpdate{Code: ptr("CB")})
		assert.ErrorIs(t, err, ErrDuplicateCarrier)
	})

	t.Run("empty update returns current row", func(t *testing.T) {
		current, err := repo.Update(ctx, a.ID, model.CarrierUpdate{})
		require.NoError(t, err)
		assert.Equal(t, a.ID, current.ID)
	})

	t.Run("unknown id returns ErrCarrierNotFound", func(t *testing.T) {
		_, err := repo.Update(ctx, uuid.New(), model.CarrierUpdate{Active: ptr(true)})
		assert.ErrorIs(t, err, ErrCarrierNotFound)
	})
}

func TestCarrierRepository_SoftDelete(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCarrierRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Carrier{Name: "Descartável", Code: "DESC"})
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(ctx, created.ID))
	assert.ErrorIs(t, repo.SoftDelete(ctx, created.ID), ErrCarrierNotFound)
}
