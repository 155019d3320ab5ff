package supply

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sellerops/ozon-supply-connector/internal/app/config"
	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
	"github.com/sellerops/ozon-supply-connector/internal/app/schedule"
	"go.uber.org/zap"
)

// ErrTaskNotFound is returned for operations on an unknown task id.
var ErrTaskNotFound = errors.New("task not found")

// ErrNotRetryable is returned when a task cannot be reset and retried.
var ErrNotRetryable = errors.New("task is not retryable")

// Service is the management surface over the booking pipeline.
type Service interface {
	// CreateFromTemplate parses a schedule template and creates one task per
	// product line. Parse problems come back as error codes.
	CreateFromTemplate(ctx context.Context, text string, chatID int64) ([]*domain.Task, []string, error)
	// List returns every stored task.
	List(ctx context.Context) ([]*domain.Task, error)
	// Get returns a task by id.
	Get(ctx context.Context, id string) (*domain.Task, error)
	// Cancel stops a task permanently.
	Cancel(ctx context.Context, id string) error
	// Retry resets a task back to the start of the pipeline.
	Retry(ctx context.Context, id string) error
	// Purge removes stale non-final tasks past the retention window.
	Purge(ctx context.Context) (int64, error)
	// PurgeAll removes every task.
	PurgeAll(ctx context.Context) (int64, error)
	// TickNow forces a worker pass outside the regular schedule.
	TickNow()
}

// ServiceImpl implementation of Service.
type ServiceImpl struct {
	store      TaskStore
	worker     *Worker
	cfg        *config.Config
	warehouses schedule.WarehouseMap
	loc        *time.Location
}

func NewService(store TaskStore, worker *Worker, cfg *config.Config) (*ServiceImpl, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &ServiceImpl{
		store:      store,
		worker:     worker,
		cfg:        cfg,
		warehouses: schedule.ParseWarehouseMap(cfg.SupplyWarehouseMap),
		loc:        loc,
	}, nil
}

func (s *ServiceImpl) CreateFromTemplate(ctx context.Context, text string, chatID int64) ([]*domain.Task, []string, error) {
	parsed, errs := schedule.ParseTemplate(text, s.loc,
		time.Duration(s.cfg.SupplyMinLeadMin)*time.Minute, s.cfg.SupplyMaxRollDays, s.warehouses)
	if len(errs) > 0 {
		return nil, errs, nil
	}

	windowEnd, err := schedule.ParseISO(parsed.DesiredToISO)
	if err != nil {
		return nil, []string{"failed_parse_datetime"}, nil
	}

	now := domain.NowTS()
	tasks := make([]*domain.Task, 0, len(parsed.Items))
	for _, line := range parsed.Items {
		t := &domain.Task{
			ID:        uuid.NewString(),
			ChatID:    chatID,
			Status:    domain.StatusWaitWindow,
			CreatedAt: now,
			UpdatedAt: now,

			DateISO:        parsed.DateISO,
			DesiredFromISO: parsed.DesiredFromISO,
			DesiredToISO:   parsed.DesiredToISO,
			WindowEndTS:    windowEnd.Unix(),

			SupplyType:    parsed.SupplyType,
			SKULines:      []domain.SKULine{line},
			WarehouseName: line.WarehouseName,
		}
		if t.SupplyType == "" {
			t.SupplyType = s.cfg.SupplyTypeDefault
		}
		if line.WarehouseName != "" {
			if id, ok := s.warehouses.Resolve(line.WarehouseName); ok {
				t.ChosenWarehouseID = id
			}
		}
		if t.ChosenWarehouseID == 0 && parsed.WarehouseID != 0 {
			t.ChosenWarehouseID = parsed.WarehouseID
		}
		if s.cfg.DropID != 0 {
			t.DropOffWarehouseID = s.cfg.DropID
		}
		if parsed.Rolled {
			t.RecordEvent("WINDOW_ROLLED", parsed.DesiredFromISO)
		}
		t.RecordEvent("CREATED", "")

		if err := s.store.Upsert(ctx, t); err != nil {
			return tasks, nil, err
		}
		tasks = append(tasks, t)
		zap.L().Info("task created",
			zap.String("task", t.Short()),
			zap.Int64("sku", line.SKU),
			zap.String("window", parsed.DesiredFromISO+" - "+parsed.DesiredToISO))
	}

	s.worker.TickNow()
	return tasks, nil, nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]*domain.Task, error) {
	return s.store.List(ctx)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (*domain.Task, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

func (s *ServiceImpl) Cancel(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	t.Status = domain.StatusCanceled
	t.RecordEvent("CANCELED", "")
	t.Touch()
	return s.store.Upsert(ctx, t)
}

func (s *ServiceImpl) Retry(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !t.Status.Retryable() {
		return ErrNotRetryable
	}

	// reset every pipeline artifact, keep the request itself
	t.DraftOperationID = ""
	t.DraftID = ""
	t.DraftCreatedTS = 0
	t.SlotFrom = ""
	t.SlotTo = ""
	t.SlotID = ""
	t.DraftTimeslotSetUnsupported = false
	t.SupplyOperationID = ""
	t.OrderID = ""
	t.SupplyOrderNumber = ""
	t.SupplyID = ""
	t.CargoOperationID = ""
	t.CargoIDs = nil
	t.LabelsOperationID = ""
	t.LabelsFileGUID = ""
	t.LabelsPDFPath = ""
	t.BundleID = ""
	t.DropOffWarehouseID = 0
	t.Creating = false
	t.CreatingSinceTS = 0
	t.NextAttemptTS = 0
	t.RetryAfterTS = 0
	t.CreateBackoffSec = 0
	t.OpStartedTS = 0
	t.OpRetries = 0
	t.DraftRLAttempts = 0
	t.InfoRLAttempts = 0
	t.TimeslotRLAttempts = 0
	t.SupplyStatusRLAttempts = 0
	t.StaleDraftRecreates = 0
	t.CargoPrepPrompted = false
	t.LastError = ""
	t.FailedTS = 0

	t.Status = domain.StatusWaitWindow
	t.RecordEvent("RETRIED", "")
	t.Touch()
	if err := s.store.Upsert(ctx, t); err != nil {
		return err
	}

	s.worker.TickNow()
	return nil
}

func (s *ServiceImpl) Purge(ctx context.Context) (int64, error) {
	cutoff := domain.NowTS() - int64(s.cfg.SupplyPurgeAgeDays)*86400
	removed, err := s.store.PurgeTerminalOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	tasks, err := s.store.List(ctx)
	if err != nil {
		return removed, err
	}
	staleCutoff := domain.NowTS() - int64(s.cfg.PurgeStaleHours)*3600
	for _, t := range tasks {
		if t.Status.Terminal() || t.UpdatedAt == 0 || t.UpdatedAt >= staleCutoff {
			continue
		}
		if err := s.store.Delete(ctx, t.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *ServiceImpl) PurgeAll(ctx context.Context) (int64, error) {
	return s.store.PurgeAll(ctx)
}

func (s *ServiceImpl) TickNow() {
	s.worker.TickNow()
}
