package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskore/taskore/core"
	"github.com/taskore/taskore/errors"
	"github.com/taskore/taskore/modules/storage"
)

func noopFunc(ctx context.Context, job *core.Job) error {
	return nil
}

func TestInMemoryStorage(t *testing.T) {
	var _ core.Storage = (*storage.InMemory)(nil)

	ctx := context.Background()

	t.Run("persists the cancellable flag", func(t *testing.T) {
		store := storage.NewInMemory()
		job := core.NewJob("cleanup", noopFunc, nil, nil, core.WithJobID("t1"))
		require.NoError(t, store.SaveJob(ctx, job))

		require.NoError(t, store.SaveJobAsCancellable(ctx, "t1", true))
		flag, ok := store.Cancellable("t1")
		require.True(t, ok)
		assert.True(t, flag)

		// Idempotent: repeating the same write is fine.
		require.NoError(t, store.SaveJobAsCancellable(ctx, "t1", true))
	})

	t.Run("unknown job id", func(t *testing.T) {
		store := storage.NewInMemory()
		err := store.SaveJobAsCancellable(ctx, "missing", true)
		assert.True(t, errors.Is(errors.ErrJobNotFound, err))
	})

	t.Run("backs a live job record", func(t *testing.T) {
		store := storage.NewInMemory()
		job := core.NewJob("cleanup", noopFunc, nil, nil,
			core.WithJobID("t2"),
			core.WithStorage(store),
		)
		require.NoError(t, store.SaveJob(ctx, job))

		require.NoError(t, job.SaveAsCancellable(ctx, true))
		flag, ok := store.Cancellable("t2")
		require.True(t, ok)
		assert.True(t, flag)
		assert.True(t, job.Cancellable)
	})
}
