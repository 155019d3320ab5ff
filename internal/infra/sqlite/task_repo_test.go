package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
)

func newTestRepo(t *testing.T) *TaskRepository {
	t.Helper()
	db, err := InitDB(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewTaskRepository(db)
}

func newTask(id string, status domain.TaskStatus, updatedAt int64) *domain.Task {
	return &domain.Task{
		ID:        id,
		ChatID:    100,
		Status:    status,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
		SKULines:  []domain.SKULine{{SKU: 123456789, TotalQty: 10}},
	}
}

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert and get", func(t *testing.T) {
		repo := newTestRepo(t)

		task := newTask("a", domain.StatusWaitWindow, 1000)
		task.DesiredFromISO = "2030-09-26T05:00:00Z"
		require.NoError(t, repo.Upsert(ctx, task))

		got, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, domain.StatusWaitWindow, got.Status)
		require.Equal(t, "2030-09-26T05:00:00Z", got.DesiredFromISO)
		require.Equal(t, int64(123456789), got.SKULines[0].SKU)

		task.Status = domain.StatusPollDraft
		task.DraftID = "555"
		require.NoError(t, repo.Upsert(ctx, task))

		got, err = repo.Get(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, domain.StatusPollDraft, got.Status)
		require.Equal(t, "555", got.DraftID)
	})

	t.Run("get missing returns nil", func(t *testing.T) {
		repo := newTestRepo(t)
		got, err := repo.Get(ctx, "nope")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("list orders by creation", func(t *testing.T) {
		repo := newTestRepo(t)
		require.NoError(t, repo.Upsert(ctx, newTask("b", domain.StatusWaitWindow, 2000)))
		require.NoError(t, repo.Upsert(ctx, newTask("a", domain.StatusWaitWindow, 1000)))

		tasks, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		require.Equal(t, "a", tasks[0].ID)
		require.Equal(t, "b", tasks[1].ID)
	})

	t.Run("list active skips terminal statuses", func(t *testing.T) {
		repo := newTestRepo(t)
		require.NoError(t, repo.Upsert(ctx, newTask("w", domain.StatusWaitWindow, 1000)))
		require.NoError(t, repo.Upsert(ctx, newTask("d", domain.StatusDone, 1001)))
		require.NoError(t, repo.Upsert(ctx, newTask("f", domain.StatusFailed, 1002)))
		require.NoError(t, repo.Upsert(ctx, newTask("c", domain.StatusCreated, 1003)))
		require.NoError(t, repo.Upsert(ctx, newTask("x", domain.StatusCanceled, 1004)))
		require.NoError(t, repo.Upsert(ctx, newTask("p", domain.StatusPollSupply, 1005)))

		tasks, err := repo.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		require.Equal(t, "w", tasks[0].ID)
		require.Equal(t, "p", tasks[1].ID)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newTestRepo(t)
		require.NoError(t, repo.Upsert(ctx, newTask("a", domain.StatusWaitWindow, 1000)))
		require.NoError(t, repo.Delete(ctx, "a"))

		got, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("purge terminal respects cutoff", func(t *testing.T) {
		repo := newTestRepo(t)
		require.NoError(t, repo.Upsert(ctx, newTask("old-done", domain.StatusDone, 1000)))
		require.NoError(t, repo.Upsert(ctx, newTask("new-done", domain.StatusDone, 9000)))
		require.NoError(t, repo.Upsert(ctx, newTask("old-active", domain.StatusPollDraft, 1000)))

		removed, err := repo.PurgeTerminalOlderThan(ctx, 5000)
		require.NoError(t, err)
		require.Equal(t, int64(1), removed)

		tasks, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
	})

	t.Run("purge all", func(t *testing.T) {
		repo := newTestRepo(t)
		require.NoError(t, repo.Upsert(ctx, newTask("a", domain.StatusWaitWindow, 1000)))
		require.NoError(t, repo.Upsert(ctx, newTask("b", domain.StatusDone, 1000)))

		removed, err := repo.PurgeAll(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(2), removed)
	})

	t.Run("heal creating flags", func(t *testing.T) {
		repo := newTestRepo(t)

		stuck := newTask("stuck", domain.StatusSupplyCreating, 1000)
		stuck.Creating = true
		stuck.CreatingSinceTS = 900
		stuck.NextAttemptTS = 99999
		stuck.RetryAfterTS = 99999
		require.NoError(t, repo.Upsert(ctx, stuck))

		clean := newTask("clean", domain.StatusCargoCreating, 1000)
		require.NoError(t, repo.Upsert(ctx, clean))

		waiting := newTask("waiting", domain.StatusWaitWindow, 1000)
		waiting.Creating = true
		require.NoError(t, repo.Upsert(ctx, waiting))

		healed, err := repo.HealCreatingFlags(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, healed)

		got, err := repo.Get(ctx, "stuck")
		require.NoError(t, err)
		require.False(t, got.Creating)
		require.Zero(t, got.CreatingSinceTS)
		require.Zero(t, got.NextAttemptTS)
		require.Zero(t, got.RetryAfterTS)

		got, err = repo.Get(ctx, "waiting")
		require.NoError(t, err)
		require.True(t, got.Creating)
	})
}
