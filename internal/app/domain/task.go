package domain

import "time"

// maxHistoryEvents bounds the per-task event log.
const maxHistoryEvents = 500

// SKULine is one product row of a supply request.
type SKULine struct {
	SKU           int64  `json:"sku"`
	TotalQty      int    `json:"total_qty"`
	Boxes         int    `json:"boxes,omitempty"`
	PerBox        int    `json:"per_box,omitempty"`
	WarehouseName string `json:"warehouse_name,omitempty"`
}

// HistoryEvent is a single audit record on a task.
type HistoryEvent struct {
	TS     int64  `json:"ts"`
	Event  string `json:"event"`
	Detail string `json:"detail,omitempty"`
}

// Task is a supply booking request moving through the seller-API pipeline.
type Task struct {
	ID        string     `json:"id"`
	ChatID    int64      `json:"chat_id"`
	Status    TaskStatus `json:"status"`
	CreatedAt int64      `json:"created_at"`
	UpdatedAt int64      `json:"updated_at"`

	DateISO        string `json:"date_iso"`
	DesiredFromISO string `json:"desired_from_iso"`
	DesiredToISO   string `json:"desired_to_iso"`
	WindowEndTS    int64  `json:"window_end_ts,omitempty"`

	SupplyType         string    `json:"supply_type,omitempty"`
	SKULines           []SKULine `json:"sku_lines"`
	WarehouseName      string    `json:"warehouse_name,omitempty"`
	ChosenWarehouseID  int64     `json:"chosen_warehouse_id,omitempty"`
	DropOffWarehouseID int64     `json:"dropoff_warehouse_id,omitempty"`
	BundleID           string    `json:"bundle_id,omitempty"`

	DraftOperationID string `json:"draft_operation_id,omitempty"`
	DraftID          string `json:"draft_id,omitempty"`
	DraftCreatedTS   int64  `json:"draft_created_ts,omitempty"`

	SlotFrom                    string `json:"slot_from,omitempty"`
	SlotTo                      string `json:"slot_to,omitempty"`
	SlotID                      string `json:"slot_id,omitempty"`
	DraftTimeslotSetUnsupported bool   `json:"draft_timeslot_set_unsupported,omitempty"`

	SupplyOperationID string `json:"supply_operation_id,omitempty"`
	OrderID           string `json:"order_id,omitempty"`
	SupplyOrderNumber string `json:"supply_order_number,omitempty"`
	SupplyID          string `json:"supply_id,omitempty"`

	CargoOperationID  string   `json:"cargo_operation_id,omitempty"`
	CargoIDs          []string `json:"cargo_ids,omitempty"`
	LabelsOperationID string   `json:"labels_operation_id,omitempty"`
	LabelsFileGUID    string   `json:"labels_file_guid,omitempty"`
	LabelsPDFPath     string   `json:"labels_pdf_path,omitempty"`

	Creating               bool  `json:"creating,omitempty"`
	CreatingSinceTS        int64 `json:"creating_since_ts,omitempty"`
	NextAttemptTS          int64 `json:"next_attempt_ts,omitempty"`
	RetryAfterTS           int64 `json:"retry_after_ts,omitempty"`
	CreateBackoffSec       int   `json:"create_backoff_sec,omitempty"`
	OpStartedTS            int64 `json:"op_started_ts,omitempty"`
	OpRetries              int   `json:"op_retries,omitempty"`
	DraftRLAttempts        int   `json:"draft_rl_attempts,omitempty"`
	InfoRLAttempts         int   `json:"info_rl_attempts,omitempty"`
	TimeslotRLAttempts     int   `json:"timeslot_rl_attempts,omitempty"`
	SupplyStatusRLAttempts int   `json:"supply_status_rl_attempts,omitempty"`
	StaleDraftRecreates    int   `json:"stale_draft_recreates,omitempty"`
	CargoPrepPrompted      bool  `json:"cargo_prep_prompted,omitempty"`

	LastError string         `json:"last_error,omitempty"`
	FailedTS  int64          `json:"failed_ts,omitempty"`
	History   []HistoryEvent `json:"history,omitempty"`
}

// NowTS returns the current unix time in seconds.
func NowTS() int64 {
	return time.Now().Unix()
}

// Short returns the leading id fragment used in log lines and notifications.
func (t *Task) Short() string {
	if len(t.ID) <= 8 {
		return t.ID
	}
	return t.ID[:8]
}

// Touch bumps the updated timestamp.
func (t *Task) Touch() {
	t.UpdatedAt = NowTS()
}

// Fail moves the task to FAILED with the given reason.
func (t *Task) Fail(reason string) {
	t.Status = StatusFailed
	t.LastError = reason
	t.FailedTS = NowTS()
	t.Touch()
}

// RecordEvent appends an audit event, keeping only the newest entries.
func (t *Task) RecordEvent(event, detail string) {
	t.History = append(t.History, HistoryEvent{TS: NowTS(), Event: event, Detail: detail})
	if len(t.History) > maxHistoryEvents {
		t.History = t.History[len(t.History)-maxHistoryEvents:]
	}
}

// Items returns the sku/quantity pairs for draft and supply payloads.
// Quantity precedence is boxes*per-box, then total, then 1.
func (t *Task) Items() []Item {
	items := make([]Item, 0, len(t.SKULines))
	for _, line := range t.SKULines {
		qty := line.TotalQty
		if line.Boxes > 0 && line.PerBox > 0 {
			qty = line.Boxes * line.PerBox
		}
		if qty <= 0 {
			qty = 1
		}
		items = append(items, Item{SKU: line.SKU, Quantity: qty})
	}
	return items
}

// Item is a sku/quantity pair sent to the seller API.
type Item struct {
	SKU      int64 `json:"sku"`
	Quantity int   `json:"quantity"`
}
