package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/inquest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract runs a suite of tests to verify that a RunStore
// implementation adheres to the defined interface contract.
func RunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	newRecord := func(id string) *domain.RunRecord {
		state := domain.NewTaskState("sample-1", "2+2?")
		state.Output = &domain.ModelOutput{Completion: "4"}
		return &domain.RunRecord{
			ID:        id,
			Task:      "arithmetic",
			Status:    domain.RunStatusSuccess,
			State:     state,
			StartedAt: time.Now().UTC(),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		record := newRecord(runID)

		err := store.Save(ctx, record)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, record.ID, loaded.ID)
		assert.Equal(t, domain.RunStatusSuccess, loaded.Status)
		require.NotNil(t, loaded.State)
		assert.Equal(t, "4", loaded.State.Completion())
		assert.Equal(t, "2+2?", loaded.State.Input)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		record := newRecord(runID)
		record.Status = domain.RunStatusRunning
		require.NoError(t, store.Save(ctx, record))

		record.Status = domain.RunStatusError
		record.Error = "backend unreachable"
		require.NoError(t, store.Save(ctx, record))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, domain.RunStatusError, loaded.Status)
		assert.Equal(t, "backend unreachable", loaded.Error)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newRecord(runID)))

		err := store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, newRecord(id1))
		_ = store.Save(ctx, newRecord(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
