package repository

import (
	"context"
	"testing"

	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccurrenceCodeRepository_Seed(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewOccurrenceCodeRepository(db)
	ctx := context.Background()

	t.Run("seeds an empty table", func(t *testing.T) {
		n, err := repo.Seed(ctx, model.OccurrenceCodeSeed)
		require.NoError(t, err)
		assert.Equal(t, len(model.OccurrenceCodeSeed), n)

		codes, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, codes, len(model.OccurrenceCodeSeed))
	})

	t.Run("second seed is a no-op", func(t *testing.T) {
		n, err := repo.Seed(ctx, model.OccurrenceCodeSeed)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestOccurrenceCodeRepository_Get(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewOccurrenceCodeRepository(db)
	ctx := context.Background()

	_, err := repo.Seed(ctx, model.OccurrenceCodeSeed)
	require.NoError(t, err)

	t.Run("known code", func(t *testing.T) {
		code, err := repo.Get(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "mercadoria entregue", code.Description)
		assert.Equal(t, "entrega", code.Process)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := repo.Get(ctx, "9999")
		assert.ErrorIs(t, err, ErrOccurrenceCodeNotFound)
	})
}

func TestOccurrenceCodeRepository_FinalizationCodes(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewOccurrenceCodeRepository(db)
	ctx := context.Background()

	_, err := repo.Seed(ctx, model.OccurrenceCodeSeed)
	require.NoError(t, err)

	codes, err := repo.FinalizationCodes(ctx, model.FinalizationProcesses)
	require.NoError(t, err)

	assert.Contains(t, codes, "1")     // mercadoria entregue, process entrega
	assert.Contains(t, codes, "61")    // process finalizadora
	assert.NotContains(t, codes, "99") // type baixa but process geral
	assert.NotContains(t, codes, "84") // informative transit event
}
