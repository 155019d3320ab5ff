package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
)

// TaskRepository persists supply tasks. The full task document is stored as
// JSON alongside the columns the worker queries on.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Upsert writes a task, replacing any existing row with the same id.
func (r *TaskRepository) Upsert(ctx context.Context, t *domain.Task) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", t.ID, err)
	}

	const q = `
		INSERT INTO supply_tasks (id, chat_id, status, next_attempt_ts, created_at, updated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			chat_id = excluded.chat_id,
			status = excluded.status,
			next_attempt_ts = excluded.next_attempt_ts,
			updated_at = excluded.updated_at,
			payload = excluded.payload
	`
	_, err = r.db.ExecContext(ctx, q, t.ID, t.ChatID, string(t.Status), t.NextAttemptTS, t.CreatedAt, t.UpdatedAt, string(payload))
	if err != nil {
		return fmt.Errorf("upsert task %s: %w", t.ID, err)
	}
	return nil
}

// Get returns a task by id, or nil when it does not exist.
func (r *TaskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	const q = `SELECT payload FROM supply_tasks WHERE id = ? LIMIT 1`
	var payload string
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return decodeTask(payload)
}

// List returns all tasks ordered by creation time.
func (r *TaskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	const q = `SELECT payload FROM supply_tasks ORDER BY created_at`
	return r.queryTasks(ctx, q)
}

// ListActive returns tasks not in a terminal status, oldest first.
func (r *TaskRepository) ListActive(ctx context.Context) ([]*domain.Task, error) {
	const q = `
		SELECT payload FROM supply_tasks
		WHERE status NOT IN (?, ?, ?, ?)
		ORDER BY created_at
	`
	return r.queryTasks(ctx, q,
		string(domain.StatusDone), string(domain.StatusFailed),
		string(domain.StatusCanceled), string(domain.StatusCreated))
}

func (r *TaskRepository) queryTasks(ctx context.Context, q string, args ...interface{}) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		t, err := decodeTask(payload)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Delete removes a task by id.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM supply_tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// PurgeTerminalOlderThan removes finished tasks whose last update is before
// the cutoff. Returns the number of rows removed.
func (r *TaskRepository) PurgeTerminalOlderThan(ctx context.Context, cutoffTS int64) (int64, error) {
	const q = `
		DELETE FROM supply_tasks
		WHERE status IN (?, ?, ?, ?) AND updated_at < ?
	`
	res, err := r.db.ExecContext(ctx, q,
		string(domain.StatusDone), string(domain.StatusFailed),
		string(domain.StatusCanceled), string(domain.StatusCreated), cutoffTS)
	if err != nil {
		return 0, fmt.Errorf("purge terminal tasks: %w", err)
	}
	return res.RowsAffected()
}

// PurgeAll removes every task. Returns the number of rows removed.
func (r *TaskRepository) PurgeAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM supply_tasks`)
	if err != nil {
		return 0, fmt.Errorf("purge all tasks: %w", err)
	}
	return res.RowsAffected()
}

// HealCreatingFlags clears stuck in-flight markers left behind by a crash so
// the next tick picks the tasks up again. Returns the number of tasks healed.
func (r *TaskRepository) HealCreatingFlags(ctx context.Context) (int, error) {
	const q = `
		SELECT payload FROM supply_tasks
		WHERE status IN (?, ?, ?)
	`
	tasks, err := r.queryTasks(ctx, q,
		string(domain.StatusSupplyCreating), string(domain.StatusCargoCreating), string(domain.StatusLabelsCreating))
	if err != nil {
		return 0, err
	}

	healed := 0
	for _, t := range tasks {
		if !t.Creating {
			continue
		}
		t.Creating = false
		t.CreatingSinceTS = 0
		t.NextAttemptTS = 0
		t.RetryAfterTS = 0
		t.Touch()
		if err := r.Upsert(ctx, t); err != nil {
			return healed, err
		}
		healed++
	}
	return healed, nil
}

func decodeTask(payload string) (*domain.Task, error) {
	var t domain.Task
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return nil, fmt.Errorf("decode task payload: %w", err)
	}
	return &t, nil
}
