package supply

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/sellerops/ozon-supply-connector/internal/app/config"
	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
	"github.com/sellerops/ozon-supply-connector/internal/app/ozon"
	"go.uber.org/zap"
)

// Pipeline advances a single task through its booking stages. Every stage
// persists the task before returning so a restart resumes where it left off.
type Pipeline struct {
	client   ozon.ClientServices
	store    TaskStore
	notifier Notifier
	cfg      *config.Config
	gate     *draftGate
	loc      *time.Location
}

func NewPipeline(client ozon.ClientServices, store TaskStore, notifier Notifier, cfg *config.Config) (*Pipeline, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		client:   client,
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		gate:     newDraftGate(cfg.DraftCreateMinSpacingSeconds),
		loc:      loc,
	}, nil
}

func (p *Pipeline) save(ctx context.Context, t *domain.Task) {
	t.Touch()
	if err := p.store.Upsert(ctx, t); err != nil {
		zap.L().Error("persist task failed", zap.String("task", t.Short()), zap.Error(err))
	}
}

// scheduleIn sets the next attempt at least one second away.
func (p *Pipeline) scheduleIn(ctx context.Context, t *domain.Task, sec int) {
	if sec < 1 {
		sec = 1
	}
	t.NextAttemptTS = domain.NowTS() + int64(sec)
	p.save(ctx, t)
}

func (p *Pipeline) setRetryAfter(t *domain.Task, seconds int, jitterMax float64) {
	if seconds < 1 {
		seconds = 1
	}
	jitter := int64(rand.Float64() * jitterMax)
	t.RetryAfterTS = domain.NowTS() + int64(seconds) + jitter
	t.NextAttemptTS = t.RetryAfterTS
}

// incBackoff returns the current create backoff and doubles it for next time.
func (p *Pipeline) incBackoff(t *domain.Task) int {
	b := t.CreateBackoffSec
	if b < p.cfg.CreateInitialBackoff {
		b = p.cfg.CreateInitialBackoff
	}
	if b > p.cfg.CreateMaxBackoff {
		b = p.cfg.CreateMaxBackoff
	}
	next := b * 2
	if next > p.cfg.CreateMaxBackoff {
		next = p.cfg.CreateMaxBackoff
	}
	t.CreateBackoffSec = next
	return b
}

func (p *Pipeline) notify(ctx context.Context, t *domain.Task, text string) {
	if err := p.notifier.NotifyText(ctx, t.ChatID, fmt.Sprintf("[%s] %s", t.Short(), text)); err != nil {
		zap.L().Warn("notify failed", zap.String("task", t.Short()), zap.Error(err))
	}
}

func (p *Pipeline) fail(ctx context.Context, t *domain.Task, reason string) {
	t.Fail(reason)
	t.RecordEvent("FAILED", reason)
	p.save(ctx, t)
	p.notify(ctx, t, reason)
}

// clampRL bounds a 429 wait between the short retry floor and the 429 cap.
func (p *Pipeline) clampRL(wait int) int {
	if wait < p.cfg.On429ShortRetrySec {
		wait = p.cfg.On429ShortRetrySec
	}
	if wait > p.cfg.RateLimitMaxOn429 {
		wait = p.cfg.RateLimitMaxOn429
	}
	return wait
}

// Advance runs one step of the task state machine.
func (p *Pipeline) Advance(ctx context.Context, t *domain.Task) {
	if t.Status.Terminal() {
		return
	}

	now := domain.NowTS()
	if t.WindowEndTS > 0 && now > t.WindowEndTS {
		p.fail(ctx, t, "acceptance window expired")
		return
	}

	// legacy rate-limited tasks with a booked order resume at order fetch
	if t.OrderID != "" && (t.Status == domain.StatusTimeslotSearch || t.Status == domain.StatusRateLimit) {
		t.Status = domain.StatusSupplyOrderFetch
		t.OpStartedTS = now
		t.OpRetries = 0
		p.scheduleIn(ctx, t, 1)
		return
	}

	switch t.Status {
	case domain.StatusCargoPrep, domain.StatusCargoCreating, domain.StatusPollCargo,
		domain.StatusLabelsCreating, domain.StatusPollLabels, domain.StatusLabelsReady:
	default:
		if now < t.NextAttemptTS {
			return
		}
		if t.RetryAfterTS > 0 && now < t.RetryAfterTS {
			return
		}
	}

	switch t.Status {
	case domain.StatusWaitWindow:
		p.stepWaitWindow(ctx, t)
	case domain.StatusDraftCreating:
		p.stepDraftCreate(ctx, t)
	case domain.StatusPollDraft:
		p.stepPollDraft(ctx, t)
	case domain.StatusTimeslotSearch, domain.StatusTimeslotSetting:
		p.stepTimeslotSearch(ctx, t)
	case domain.StatusSupplyCreating:
		p.stepSupplyCreate(ctx, t)
	case domain.StatusPollSupply:
		p.stepPollSupply(ctx, t)
	case domain.StatusSupplyOrderFetch, domain.StatusOrderDataFilling:
		p.stepOrderFetch(ctx, t)
	case domain.StatusCargoPrep:
		p.stepCargoPrep(ctx, t)
	case domain.StatusCargoCreating:
		p.stepCargoCreate(ctx, t)
	case domain.StatusPollCargo:
		p.stepPollCargo(ctx, t)
	case domain.StatusLabelsCreating:
		p.stepLabelsCreate(ctx, t)
	case domain.StatusPollLabels, domain.StatusLabelsReady:
		p.stepPollLabels(ctx, t)
	default:
		zap.L().Warn("task in unknown status", zap.String("task", t.Short()), zap.String("status", string(t.Status)))
	}
}

func (p *Pipeline) stepWaitWindow(ctx context.Context, t *domain.Task) {
	t.Status = domain.StatusDraftCreating
	t.Creating = false
	t.CreateBackoffSec = 0
	t.DraftRLAttempts = 0
	t.DraftCreatedTS = 0
	t.RecordEvent("WINDOW_OPEN", "")
	p.scheduleIn(ctx, t, 1)
}

func (p *Pipeline) stepDraftCreate(ctx context.Context, t *domain.Task) {
	if wait := p.gate.Reserve(time.Now()); wait > 0 {
		p.scheduleIn(ctx, t, int(wait/time.Second)+1)
		return
	}
	if t.Creating {
		return
	}

	t.Creating = true
	t.CreatingSinceTS = domain.NowTS()
	p.save(ctx, t)

	opID, err := p.client.DraftCreate(ctx, t, p.cfg.ClusterIDs())
	t.Creating = false
	t.CreatingSinceTS = 0

	if wait, ok := ozon.RateLimitWait(err); ok {
		var rl *ozon.RateLimitError
		errors.As(err, &rl)

		var sec int
		if rl != nil && rl.PerSecond {
			sec = wait + 10
			if sec < 30 {
				sec = 30
			}
			sec += rand.Intn(16)
		} else {
			t.DraftRLAttempts++
			sec = p.clampRL(wait) + t.DraftRLAttempts*3
			if sec > p.cfg.DraftCreateMaxBackoff {
				sec = p.cfg.DraftCreateMaxBackoff
			}
		}

		p.setRetryAfter(t, sec, 1.5)
		t.LastError = "429 Too Many Requests (draft/create)"
		p.gate.SetCooldown(time.Now(), time.Duration(sec+1)*time.Second)
		p.scheduleIn(ctx, t, sec+1)
		return
	}
	if err != nil {
		if ozon.IsRetryable(err) {
			delay := p.incBackoff(t)
			if delay < p.cfg.SupplyCreateMinRetrySeconds {
				delay = p.cfg.SupplyCreateMinRetrySeconds
			}
			t.LastError = fmt.Sprintf("draft create transient: %v", err)
			p.scheduleIn(ctx, t, delay)
			return
		}
		p.fail(ctx, t, fmt.Sprintf("draft create: %v", err))
		return
	}

	t.DraftRLAttempts = 0
	t.DraftOperationID = opID
	t.OpStartedTS = domain.NowTS()
	t.OpRetries = 0
	t.Status = domain.StatusPollDraft
	t.RecordEvent("DRAFT_SUBMITTED", opID)
	p.scheduleIn(ctx, t, p.cfg.OperationPollIntervalSeconds)
}

func (p *Pipeline) stepPollDraft(ctx context.Context, t *domain.Task) {
	if domain.NowTS()-t.OpStartedTS > int64(p.cfg.OperationPollTimeoutSeconds) {
		p.fail(ctx, t, "draft operation timed out")
		return
	}

	info, err := p.client.DraftCreateInfo(ctx, t.DraftOperationID)
	if wait, ok := ozon.RateLimitWait(err); ok {
		t.InfoRLAttempts++
		sec := p.clampRL(wait) + t.InfoRLAttempts*2
		if sec > 60 {
			sec = 60
		}
		p.setRetryAfter(t, sec, 1.5)
		t.LastError = "429 Too Many Requests (draft/info)"
		p.scheduleIn(ctx, t, sec+1)
		return
	}
	t.InfoRLAttempts = 0

	if err != nil {
		t.OpRetries++
		if t.OpRetries > p.cfg.SupplyMaxOperationRetries {
			p.fail(ctx, t, fmt.Sprintf("draft info: %v", err))
			return
		}
		p.scheduleIn(ctx, t, p.cfg.OperationPollIntervalSeconds)
		return
	}
	if info.InProgress {
		p.scheduleIn(ctx, t, p.cfg.OperationPollIntervalSeconds)
		return
	}

	t.DraftID = info.DraftID
	t.DraftCreatedTS = domain.NowTS()

	chosen := chooseWarehouseSmart(t, info.Warehouses)
	if chosen == 0 {
		chosen = t.ChosenWarehouseID
	}
	t.ChosenWarehouseID = chosen
	for _, w := range info.Warehouses {
		if w.ID == chosen && w.BundleID != "" {
			t.BundleID = w.BundleID
			break
		}
	}

	t.Status = domain.StatusTimeslotSearch
	t.RecordEvent("DRAFT_READY", t.DraftID)
	p.scheduleIn(ctx, t, 1)
}

func (p *Pipeline) stepTimeslotSearch(ctx context.Context, t *domain.Task) {
	if t.ChosenWarehouseID <= 0 {
		p.fail(ctx, t, "warehouse not resolved")
		return
	}

	slots, err := p.client.TimeslotInfo(ctx, t.DraftID, []int64{t.ChosenWarehouseID}, t.DateISO, t.BundleID)
	if wait, ok := ozon.RateLimitWait(err); ok {
		t.TimeslotRLAttempts++
		sec := p.clampRL(wait) + t.TimeslotRLAttempts*2
		if sec > 45 {
			sec = 45
		}
		p.setRetryAfter(t, sec, 1.5)
		t.LastError = "429 Too Many Requests (timeslot)"
		p.scheduleIn(ctx, t, sec+1)
		return
	}
	if ozon.IsNotFound(err) {
		// the draft went stale on the seller side, start over with a new one
		zap.L().Info("draft missing, recreating",
			zap.String("task", t.Short()), zap.String("draft", t.DraftID))
		t.StaleDraftRecreates++
		t.DraftID = ""
		t.DraftOperationID = ""
		t.DraftCreatedTS = 0
		t.Status = domain.StatusDraftCreating
		t.RecordEvent("DRAFT_STALE", "timeslot info returned 404")
		p.scheduleIn(ctx, t, 1)
		return
	}
	t.TimeslotRLAttempts = 0

	if err != nil || len(slots) == 0 {
		p.scheduleIn(ctx, t, p.cfg.SlotPollIntervalSeconds)
		return
	}

	desiredFrom := t.DesiredFromISO
	desiredTo := t.DesiredToISO
	matched := matchSlot(slots, desiredFrom, desiredTo)

	if matched == nil && p.cfg.TimeslotAllowFallback {
		near := nearestSlotWithinDelta(slots, desiredFrom, p.cfg.TimeslotFallbackDeltaMin, p.cfg.DropID)
		if near != nil {
			matched = near
			desiredFrom = near.FromInTimezone
			desiredTo = near.ToInTimezone
		}
	}
	if matched == nil {
		p.scheduleIn(ctx, t, p.cfg.SlotPollIntervalSeconds)
		return
	}

	t.SlotFrom = matched.FromInTimezone
	t.SlotTo = matched.ToInTimezone
	t.SlotID = matched.ID
	if matched.DropOffID != 0 {
		t.DropOffWarehouseID = matched.DropOffID
	}

	dropID := t.DropOffWarehouseID
	if dropID == 0 {
		dropID = p.cfg.DropID
	}
	// pinning the slot on the draft is best effort; a 404 here does not
	// force a draft recreate
	if dropID != 0 && !t.DraftTimeslotSetUnsupported {
		err := p.client.DraftTimeslotSet(ctx, t.DraftID, dropID, ozon.TimeslotRef{
			FromInTimezone: t.SlotFrom,
			ToInTimezone:   t.SlotTo,
		})
		if wait, ok := ozon.RateLimitWait(err); ok {
			sec := p.clampRL(wait)
			p.setRetryAfter(t, sec, 1.0)
			t.LastError = "429 Too Many Requests (draft/timeslot/set)"
			p.scheduleIn(ctx, t, sec+1)
			return
		}
		if ozon.IsNotFound(err) {
			t.DraftTimeslotSetUnsupported = true
		} else if err != nil {
			zap.L().Warn("draft timeslot set failed, proceeding",
				zap.String("task", t.Short()), zap.Error(err))
		}
	}

	t.DesiredFromISO = desiredFrom
	t.DesiredToISO = desiredTo
	t.Status = domain.StatusSupplyCreating
	t.RecordEvent("SLOT_MATCHED", fmt.Sprintf("%s - %s", t.SlotFrom, t.SlotTo))
	p.scheduleIn(ctx, t, p.cfg.SupplyCreateStageDelaySeconds)
}

func (p *Pipeline) stepSupplyCreate(ctx context.Context, t *domain.Task) {
	if t.Creating {
		return
	}
	t.Creating = true
	t.CreatingSinceTS = domain.NowTS()
	p.save(ctx, t)

	opID, err := p.client.SupplyCreate(ctx, t)
	t.Creating = false
	t.CreatingSinceTS = 0

	if wait, ok := ozon.RateLimitWait(err); ok {
		sec := p.clampRL(wait)
		p.setRetryAfter(t, sec, 1.5)
		t.LastError = "429 Too Many Requests (supply/create)"
		p.scheduleIn(ctx, t, sec+1)
		return
	}
	if err != nil {
		if ozon.IsRetryable(err) {
			delay := p.incBackoff(t)
			if delay < p.cfg.SupplyCreateMinRetrySeconds {
				delay = p.cfg.SupplyCreateMinRetrySeconds
			}
			t.LastError = fmt.Sprintf("supply create transient: %v", err)
			p.scheduleIn(ctx, t, delay)
			return
		}
		// slot may have been taken, go look for another
		t.LastError = fmt.Sprintf("supply create: %v", err)
		t.Status = domain.StatusTimeslotSearch
		t.RecordEvent("SUPPLY_CREATE_REJECTED", t.LastError)
		p.scheduleIn(ctx, t, p.cfg.SlotPollIntervalSeconds)
		return
	}

	t.SupplyOperationID = opID
	t.OpStartedTS = domain.NowTS()
	t.OpRetries = 0
	t.Status = domain.StatusPollSupply
	t.RecordEvent("SUPPLY_SUBMITTED", opID)
	p.scheduleIn(ctx, t, p.cfg.OperationPollIntervalSeconds)
}

func (p *Pipeline) stepPollSupply(ctx context.Context, t *domain.Task) {
	orderID, err := p.client.SupplyCreateStatus(ctx, t.SupplyOperationID)
	if wait, ok := ozon.RateLimitWait(err); ok {
		t.SupplyStatusRLAttempts++
		sec := p.clampRL(wait) + t.SupplyStatusRLAttempts*2
		if sec > 45 {
			sec = 45
		}
		p.setRetryAfter(t, sec, 1.5)
		t.LastError = "429 Too Many Requests (supply/status)"
		p.scheduleIn(ctx, t, sec+1)
		return
	}
	t.SupplyStatusRLAttempts = 0

	if ozon.IsInProgress(err) {
		p.scheduleIn(ctx, t, p.cfg.OperationPollIntervalSeconds)
		return
	}
	if err != nil {
		t.OpRetries++
		if t.OpRetries > p.cfg.SupplyMaxOperationRetries {
			p.fail(ctx, t, fmt.Sprintf("supply status: %v", err))
			return
		}
		p.scheduleIn(ctx, t, p.cfg.OperationPollIntervalSeconds)
		return
	}

	t.OrderID = orderID
	t.Status = domain.StatusSupplyOrderFetch
	t.OpStartedTS = domain.NowTS()
	t.OpRetries = 0
	t.RecordEvent("ORDER_BOOKED", orderID)
	p.scheduleIn(ctx, t, 1)
}

// stepOrderFetch finalizes a booked order. The order detail endpoint is not
// public, so the supply id only becomes known when the seller fills it in, and
// in its absence the task finishes as CREATED with a prompt to complete the
// cargo details in the seller portal.
func (p *Pipeline) stepOrderFetch(ctx context.Context, t *domain.Task) {
	if t.SupplyID != "" && p.cfg.AutoCreateCargoes {
		t.Status = domain.StatusCargoPrep
		t.NextAttemptTS = domain.NowTS()
		t.RetryAfterTS = 0
		p.scheduleIn(ctx, t, 1)
		return
	}

	if !t.CargoPrepPrompted {
		window := fmt.Sprintf("%s - %s", t.DesiredFromISO, t.DesiredToISO)
		warehouse := t.WarehouseName
		if warehouse == "" {
			warehouse = fmt.Sprintf("ID %d", t.ChosenWarehouseID)
		}
		p.notify(ctx, t, fmt.Sprintf(
			"supply order booked: order %s, window %s, warehouse %s. Fill in cargo details at %s",
			t.OrderID, window, warehouse, p.cfg.SellerPortalURL))
		t.CargoPrepPrompted = true
		t.RecordEvent("ORDER_PROMPTED", t.OrderID)
	}

	if p.cfg.AutoDeleteCreatedImmediate {
		if err := p.store.Delete(ctx, t.ID); err != nil {
			zap.L().Error("delete created task failed", zap.String("task", t.Short()), zap.Error(err))
		}
		t.Status = domain.StatusCreated
		return
	}

	t.Status = domain.StatusCreated
	p.save(ctx, t)
}

func (p *Pipeline) stepCargoPrep(ctx context.Context, t *domain.Task) {
	boxes := 0
	for _, line := range t.SKULines {
		if line.Boxes > 0 && line.PerBox > 0 {
			boxes += line.Boxes
		}
	}
	if boxes == 0 {
		p.fail(ctx, t, "no box composition on task, cannot create cargoes")
		return
	}
	t.Status = domain.StatusCargoCreating
	t.RecordEvent("CARGO_PREP_DONE", fmt.Sprintf("%d boxes", boxes))
	p.scheduleIn(ctx, t, 1)
}

func (p *Pipeline) stepCargoCreate(ctx context.Context, t *domain.Task) {
	if t.Creating {
		return
	}
	t.Creating = true
	t.CreatingSinceTS = domain.NowTS()
	p.save(ctx, t)

	opID, err := p.client.CargoesCreate(ctx, t)
	t.Creating = false
	t.CreatingSinceTS = 0

	if wait, ok := ozon.RateLimitWait(err); ok {
		sec := wait
		if sec < p.cfg.SupplyCreateMinRetrySeconds {
			sec = p.cfg.SupplyCreateMinRetrySeconds
		}
		p.setRetryAfter(t, sec, 1.0)
		t.LastError = "429 Too Many Requests (cargoes/create)"
		p.scheduleIn(ctx, t, sec)
		return
	}
	if err != nil {
		if ozon.IsRetryable(err) {
			delay := p.incBackoff(t)
			if delay < p.cfg.SupplyCreateMinRetrySeconds {
				delay = p.cfg.SupplyCreateMinRetrySeconds
			}
			t.LastError = fmt.Sprintf("cargoes create transient: %v", err)
			p.scheduleIn(ctx, t, delay)
			return
		}
		p.fail(ctx, t, fmt.Sprintf("cargoes create: %v", err))
		return
	}

	t.CargoOperationID = opID
	t.OpStartedTS = domain.NowTS()
	t.OpRetries = 0
	t.Status = domain.StatusPollCargo
	t.RecordEvent("CARGO_SUBMITTED", opID)
	p.scheduleIn(ctx, t, p.cfg.OperationPollIntervalSeconds)
}

func (p *Pipeline) stepPollCargo(ctx context.Context, t *domain.Task) {
	cargoIDs, err := p.client.CargoesCreateInfo(ctx, t.CargoOperationID)
	if wait, ok := ozon.RateLimitWait(err); ok {
		sec := wait
		if sec < p.cfg.SupplyCreateMinRetrySeconds {
			sec = p.cfg.SupplyCreateMinRetrySeconds
		}
		p.setRetryAfter(t, sec, 1.0)
		t.LastError = "429 Too Many Requests (cargoes/info)"
		p.scheduleIn(ctx, t, sec)
		return
	}
	if ozon.IsInProgress(err) {
		p.scheduleIn(ctx, t, p.cfg.OperationPollIntervalSeconds)
		return
	}
	if err != nil {
		t.OpRetries++
		if t.OpRetries > p.cfg.SupplyMaxOperationRetries {
			p.fail(ctx, t, fmt.Sprintf("cargoes info: %v", err))
			return
		}
		p.scheduleIn(ctx, t, p.cfg.OperationPollIntervalSeconds)
		return
	}

	t.CargoIDs = cargoIDs
	if p.cfg.AutoCreateLabels {
		t.Status = domain.StatusLabelsCreating
	} else {
		t.Status = domain.StatusDone
	}
	t.RecordEvent("CARGO_READY", fmt.Sprintf("%d cargoes", len(cargoIDs)))
	p.scheduleIn(ctx, t, 1)
}

func (p *Pipeline) stepLabelsCreate(ctx context.Context, t *domain.Task) {
	if t.Creating {
		return
	}
	t.Creating = true
	t.CreatingSinceTS = domain.NowTS()
	p.save(ctx, t)

	opID, err := p.client.LabelsCreate(ctx, t.SupplyID, t.CargoIDs)
	t.Creating = false
	t.CreatingSinceTS = 0

	if wait, ok := ozon.RateLimitWait(err); ok {
		sec := wait
		if sec < p.cfg.SupplyCreateMinRetrySeconds {
			sec = p.cfg.SupplyCreateMinRetrySeconds
		}
		p.setRetryAfter(t, sec, 1.0)
		t.LastError = "429 Too Many Requests (labels/create)"
		p.scheduleIn(ctx, t, sec)
		return
	}
	if err != nil {
		if ozon.IsRetryable(err) {
			delay := p.incBackoff(t)
			if delay < p.cfg.SupplyCreateMinRetrySeconds {
				delay = p.cfg.SupplyCreateMinRetrySeconds
			}
			t.LastError = fmt.Sprintf("labels create transient: %v", err)
			p.scheduleIn(ctx, t, delay)
			return
		}
		p.fail(ctx, t, fmt.Sprintf("labels create: %v", err))
		return
	}

	t.LabelsOperationID = opID
	t.OpStartedTS = domain.NowTS()
	t.OpRetries = 0
	t.Status = domain.StatusPollLabels
	t.RecordEvent("LABELS_SUBMITTED", opID)
	p.scheduleIn(ctx, t, p.cfg.OperationPollIntervalSeconds)
}

func (p *Pipeline) stepPollLabels(ctx context.Context, t *domain.Task) {
	fileGUID, err := p.client.LabelsStatus(ctx, t.LabelsOperationID)
	if wait, ok := ozon.RateLimitWait(err); ok {
		sec := wait
		if sec < p.cfg.SupplyCreateMinRetrySeconds {
			sec = p.cfg.SupplyCreateMinRetrySeconds
		}
		p.setRetryAfter(t, sec, 1.0)
		t.LastError = "429 Too Many Requests (labels/get)"
		p.scheduleIn(ctx, t, sec)
		return
	}
	if ozon.IsInProgress(err) {
		p.scheduleIn(ctx, t, p.cfg.OperationPollIntervalSeconds)
		return
	}
	if err != nil {
		t.OpRetries++
		if t.OpRetries > p.cfg.SupplyMaxOperationRetries {
			p.fail(ctx, t, fmt.Sprintf("labels status: %v", err))
			return
		}
		p.scheduleIn(ctx, t, p.cfg.OperationPollIntervalSeconds)
		return
	}

	t.LabelsFileGUID = fileGUID
	t.Status = domain.StatusLabelsReady
	t.RecordEvent("LABELS_READY", fileGUID)
	p.save(ctx, t)

	pdf, err := p.client.LabelsFile(ctx, fileGUID)
	if err == nil && len(pdf) > 0 {
		path := filepath.Join(p.cfg.DataDir, fmt.Sprintf("labels_%s.pdf", t.ID))
		if werr := os.WriteFile(path, pdf, 0o644); werr != nil {
			zap.L().Error("write labels pdf failed", zap.String("task", t.Short()), zap.Error(werr))
		} else {
			t.LabelsPDFPath = path
			p.save(ctx, t)
			if p.cfg.AutoSendLabelPDF {
				caption := fmt.Sprintf("labels for supply %s order %s", t.SupplyID, t.SupplyOrderNumber)
				if nerr := p.notifier.NotifyFile(ctx, t.ChatID, path, caption); nerr != nil {
					zap.L().Warn("send labels pdf failed", zap.String("task", t.Short()), zap.Error(nerr))
				}
			}
		}
	} else if err != nil {
		zap.L().Warn("labels download failed", zap.String("task", t.Short()), zap.Error(err))
	}

	t.Status = domain.StatusDone
	p.save(ctx, t)
	p.notify(ctx, t, fmt.Sprintf("done: supply %s, %d cargoes", t.SupplyID, len(t.CargoIDs)))
}
