package supply

import (
	"context"
	"time"

	"github.com/sellerops/ozon-supply-connector/internal/app/config"
	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Worker runs the booking loop: every interval it heals crash leftovers,
// purges old tasks and advances each active task one step.
type Worker struct {
	pipeline *Pipeline
	store    TaskStore
	cfg      *config.Config

	kick   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWorker(pipeline *Pipeline, store TaskStore, cfg *config.Config) *Worker {
	return &Worker{
		pipeline: pipeline,
		store:    store,
		cfg:      cfg,
		kick:     make(chan struct{}, 1),
	}
}

// RegisterWorker hooks the worker into the application lifecycle.
func RegisterWorker(lc fx.Lifecycle, w *Worker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return w.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			w.Stop()
			return nil
		},
	})
}

func (w *Worker) Start(ctx context.Context) error {
	healed, err := w.store.HealCreatingFlags(ctx)
	if err != nil {
		return err
	}
	if healed > 0 {
		zap.L().Info("healed stuck in-flight markers", zap.Int("count", healed))
	}

	runCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.run(runCtx)
	return nil
}

func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

// TickNow forces a tick outside the regular schedule.
func (w *Worker) TickNow() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	interval := time.Duration(w.cfg.SupplyProcessInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick(ctx)
		case <-w.kick:
			w.Tick(ctx)
		}
	}
}

// Tick runs one full pass over the task list.
func (w *Worker) Tick(ctx context.Context) {
	if removed := w.cleanup(ctx); removed > 0 {
		zap.L().Info("purged tasks", zap.Int("count", removed))
	}

	tasks, err := w.store.ListActive(ctx)
	if err != nil {
		zap.L().Error("list active tasks failed", zap.Error(err))
		return
	}

	draftsLeft := w.cfg.SupplyMaxDraftsPerTick
	suppliesLeft := w.cfg.SupplyMaxSupplyCreatesPerTick
	now := domain.NowTS()

	for _, t := range tasks {
		if ctx.Err() != nil {
			return
		}

		// create endpoints are paced across the whole tick, not per task
		due := now >= t.NextAttemptTS && (t.RetryAfterTS == 0 || now >= t.RetryAfterTS)
		switch t.Status {
		case domain.StatusDraftCreating:
			if due {
				if draftsLeft <= 0 {
					continue
				}
				draftsLeft--
			}
		case domain.StatusSupplyCreating:
			if due {
				if suppliesLeft <= 0 {
					continue
				}
				suppliesLeft--
			}
		}

		w.pipeline.Advance(ctx, t)
	}
}

// cleanup applies the retention rules: finished tasks age out after the purge
// window, CREATED tasks auto-delete, and tasks stuck without progress for too
// long are dropped.
func (w *Worker) cleanup(ctx context.Context) int {
	removed := 0
	now := domain.NowTS()

	cutoff := now - int64(w.cfg.SupplyPurgeAgeDays)*86400
	if n, err := w.store.PurgeTerminalOlderThan(ctx, cutoff); err != nil {
		zap.L().Error("purge terminal tasks failed", zap.Error(err))
	} else {
		removed += int(n)
	}

	tasks, err := w.store.List(ctx)
	if err != nil {
		zap.L().Error("list tasks for cleanup failed", zap.Error(err))
		return removed
	}

	staleCutoff := now - int64(w.cfg.PurgeStaleHours)*3600
	createdCutoff := now - int64(w.cfg.AutoDeleteCreatedMinutes)*60

	for _, t := range tasks {
		drop := false
		switch {
		case t.Status == domain.StatusCreated:
			drop = w.cfg.AutoDeleteCreatedImmediate || t.UpdatedAt < createdCutoff
		case !t.Status.Terminal() && t.UpdatedAt > 0 && t.UpdatedAt < staleCutoff:
			drop = true
		}
		if !drop {
			continue
		}
		if err := w.store.Delete(ctx, t.ID); err != nil {
			zap.L().Error("delete task failed", zap.String("task", t.Short()), zap.Error(err))
			continue
		}
		removed++
	}
	return removed
}
