package ports

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
)

// RunStatStoreContract runs a suite of tests to verify that a StatStore implementation
// adheres to the defined interface contract.
func RunStatStoreContract(t *testing.T, store StatStore) {
	ctx := context.Background()
	statType := "contract_" + uuid.NewString()[:8]

	t.Run("Save and Load", func(t *testing.T) {
		row := &domain.StatRow{UUID: uuid.New(), StatType: statType, Val: 3}
		require.NoError(t, store.Save(ctx, row), "Save should not return error")
		assert.NotZero(t, row.ID, "Save should assign an ID")

		loaded, err := store.Load(ctx, row.UUID, statType)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, *row, loaded)
	})

	t.Run("Upsert keeps one row per user and stat", func(t *testing.T) {
		id := uuid.New()
		first := &domain.StatRow{UUID: id, StatType: statType, Val: 1}
		require.NoError(t, store.Save(ctx, first))

		second := &domain.StatRow{UUID: id, StatType: statType, Val: 7}
		require.NoError(t, store.Save(ctx, second))
		assert.Equal(t, first.ID, second.ID, "Upsert should reuse the row ID")

		rows, err := store.ListByUser(ctx, id)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 7.0, rows[0].Val)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, uuid.New(), statType)
		assert.ErrorIs(t, err, domain.ErrStatNotFound)
	})

	t.Run("ListByUser", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, store.Save(ctx,
			&domain.StatRow{UUID: id, StatType: "b_" + statType, Val: 2},
			&domain.StatRow{UUID: id, StatType: "a_" + statType, Val: 1},
		))

		rows, err := store.ListByUser(ctx, id)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "a_"+statType, rows[0].StatType)
		assert.Equal(t, "b_"+statType, rows[1].StatType)
	})

	t.Run("Top", func(t *testing.T) {
		topType := "top_" + statType
		for _, v := range []float64{5, 50, 20, 1} {
			require.NoError(t, store.Save(ctx, &domain.StatRow{UUID: uuid.New(), StatType: topType, Val: v}))
		}

		rows, err := store.Top(ctx, topType, 3)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []float64{50, 20, 5}, []float64{rows[0].Val, rows[1].Val, rows[2].Val})
	})

	t.Run("Delete", func(t *testing.T) {
		row := &domain.StatRow{UUID: uuid.New(), StatType: statType, Val: 1}
		require.NoError(t, store.Save(ctx, row))

		require.NoError(t, store.Delete(ctx, row.UUID, statType), "Delete should not return error")
		_, err := store.Load(ctx, row.UUID, statType)
		assert.ErrorIs(t, err, domain.ErrStatNotFound, "Load after Delete should return ErrStatNotFound")

		assert.NoError(t, store.Delete(ctx, row.UUID, statType), "Deleting twice should not fail")
	})
}
