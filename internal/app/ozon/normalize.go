package ozon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// flexInt64 decodes an id sent either as a JSON number or a string.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt64(n)
	return nil
}

// flexString decodes a value sent either as a string or a number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(bytes.TrimSpace(data))
	return nil
}

type operationIDBody struct {
	OperationID flexString `json:"operation_id"`
	Result      struct {
		OperationID flexString `json:"operation_id"`
	} `json:"result"`
}

// extractOperationID pulls operation_id from the top level or from result.
func extractOperationID(raw []byte) string {
	var body operationIDBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.OperationID != "" {
		return string(body.OperationID)
	}
	return string(body.Result.OperationID)
}

type rawWarehouse struct {
	WarehouseID     flexInt64 `json:"warehouse_id"`
	Name            string    `json:"name"`
	SupplyWarehouse struct {
		WarehouseID flexInt64 `json:"warehouse_id"`
		Name        string    `json:"name"`
	} `json:"supply_warehouse"`
	BundleIDs []struct {
		BundleID string `json:"bundle_id"`
		ID       string `json:"id"`
	} `json:"bundle_ids"`
	Status struct {
		IsAvailable *bool  `json:"is_available"`
		State       string `json:"state"`
	} `json:"status"`
}

func (w rawWarehouse) toWarehouse() (Warehouse, bool) {
	id := int64(w.SupplyWarehouse.WarehouseID)
	name := w.SupplyWarehouse.Name
	if id == 0 {
		id = int64(w.WarehouseID)
		name = w.Name
	}
	if id == 0 {
		return Warehouse{}, false
	}
	bundle := ""
	if len(w.BundleIDs) > 0 {
		bundle = w.BundleIDs[0].BundleID
		if bundle == "" {
			bundle = w.BundleIDs[0].ID
		}
	}
	available := true
	if w.Status.IsAvailable != nil {
		available = *w.Status.IsAvailable
	}
	if !available {
		available = strings.HasSuffix(strings.ToUpper(w.Status.State), "AVAILABLE")
	}
	return Warehouse{ID: id, Name: name, BundleID: bundle, Available: available}, true
}

type draftInfoBody struct {
	DraftID    int64
	Status     string
	raw        []rawWarehouse
	rawCluster []rawWarehouse
}

type draftInfoResponse struct {
	DraftID    flexInt64      `json:"draft_id"`
	Status     string         `json:"status"`
	Warehouses []rawWarehouse `json:"warehouses"`
	Clusters   []struct {
		Warehouses []rawWarehouse `json:"warehouses"`
	} `json:"clusters"`
	Result struct {
		DraftID    flexInt64      `json:"draft_id"`
		Status     string         `json:"status"`
		Warehouses []rawWarehouse `json:"warehouses"`
		Clusters   []struct {
			Warehouses []rawWarehouse `json:"warehouses"`
		} `json:"clusters"`
	} `json:"result"`
}

func (r draftInfoResponse) flatten() draftInfoBody {
	body := draftInfoBody{
		DraftID: int64(r.DraftID),
		Status:  r.Status,
		raw:     r.Warehouses,
	}
	for _, cl := range r.Clusters {
		body.rawCluster = append(body.rawCluster, cl.Warehouses...)
	}
	if body.DraftID == 0 {
		body.DraftID = int64(r.Result.DraftID)
	}
	if body.Status == "" {
		body.Status = r.Result.Status
	}
	if len(body.raw) == 0 {
		body.raw = r.Result.Warehouses
	}
	if len(body.rawCluster) == 0 {
		for _, cl := range r.Result.Clusters {
			body.rawCluster = append(body.rawCluster, cl.Warehouses...)
		}
	}
	return body
}

// warehouses prefers the flat list and falls back to the cluster grouping.
func (b draftInfoBody) warehouses() []Warehouse {
	src := b.raw
	if len(src) == 0 {
		src = b.rawCluster
	}
	out := make([]Warehouse, 0, len(src))
	for _, w := range src {
		if wh, ok := w.toWarehouse(); ok {
			out = append(out, wh)
		}
	}
	return out
}

type supplyStatusBody struct {
	Status   string
	OrderID  flexString
	OrderIDs []flexString
}

type supplyStatusResponse struct {
	Status   string       `json:"status"`
	OrderID  flexString   `json:"order_id"`
	OrderIDs []flexString `json:"order_ids"`
	Result   struct {
		Status   string       `json:"status"`
		OrderID  flexString   `json:"order_id"`
		OrderIDs []flexString `json:"order_ids"`
	} `json:"result"`
}

func (r supplyStatusResponse) flatten() supplyStatusBody {
	body := supplyStatusBody{Status: r.Status, OrderID: r.OrderID, OrderIDs: r.OrderIDs}
	if body.Status == "" {
		body.Status = r.Result.Status
	}
	if body.OrderID == "" {
		body.OrderID = r.Result.OrderID
	}
	if len(body.OrderIDs) == 0 {
		body.OrderIDs = r.Result.OrderIDs
	}
	return body
}

func (b supplyStatusBody) orderID() string {
	if b.OrderID != "" {
		return string(b.OrderID)
	}
	if len(b.OrderIDs) > 0 {
		return string(b.OrderIDs[0])
	}
	return ""
}

type labelsStatusBody struct {
	Status   string
	FileGUID string
}

type labelsStatusResponse struct {
	Status   string `json:"status"`
	FileGUID string `json:"file_guid"`
	Result   struct {
		Status   string `json:"status"`
		FileGUID string `json:"file_guid"`
	} `json:"result"`
}

func (r labelsStatusResponse) flatten() labelsStatusBody {
	body := labelsStatusBody{Status: r.Status, FileGUID: r.FileGUID}
	if body.Status == "" {
		body.Status = r.Result.Status
	}
	if body.FileGUID == "" {
		body.FileGUID = r.Result.FileGUID
	}
	return body
}

type cargoesInfoResponse struct {
	Status string `json:"status"`
	Result struct {
		Status  string `json:"status"`
		Cargoes []struct {
			CargoID flexString `json:"cargo_id"`
			Value   struct {
				CargoID flexString `json:"cargo_id"`
			} `json:"value"`
		} `json:"cargoes"`
	} `json:"result"`
	Cargoes []struct {
		CargoID flexString `json:"cargo_id"`
		Value   struct {
			CargoID flexString `json:"cargo_id"`
		} `json:"value"`
	} `json:"cargoes"`
}

// parseCargoesInfo handles both the v1 and v2 response shapes.
func parseCargoesInfo(raw []byte, mock bool) ([]string, error) {
	if mock {
		return []string{"cargo-mock"}, nil
	}

	var resp cargoesInfoResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("cargoes info: decode: %w", err)
	}

	status := strings.ToUpper(resp.Status)
	if status == "" {
		status = strings.ToUpper(resp.Result.Status)
	}
	switch status {
	case "", "STATUS_IN_PROGRESS", "IN_PROGRESS", "PENDING":
	case "FAILED":
		return nil, fmt.Errorf("cargoes info: failed: %s", clampBody(raw))
	case "SUCCESS", "OK", "DONE":
	default:
		return nil, fmt.Errorf("cargoes info: status %s", status)
	}

	var ids []string
	entries := resp.Result.Cargoes
	if len(entries) == 0 {
		entries = resp.Cargoes
	}
	for _, e := range entries {
		id := string(e.Value.CargoID)
		if id == "" {
			id = string(e.CargoID)
		}
		if id != "" && id != "0" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, ErrInProgress
	}
	return ids, nil
}

func clampBody(raw []byte) string {
	s := string(raw)
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}

type rawTimeslot struct {
	From           string     `json:"from"`
	To             string     `json:"to"`
	FromInTimezone string     `json:"from_in_timezone"`
	ToInTimezone   string     `json:"to_in_timezone"`
	ID             flexString `json:"id"`
}

type timeslotInfoResponse struct {
	Timeslots []rawTimeslot `json:"timeslots"`
	DropOff   []dropOffDays `json:"drop_off_warehouse_timeslots"`
	Result    struct {
		Timeslots []rawTimeslot `json:"timeslots"`
		DropOff   []dropOffDays `json:"drop_off_warehouse_timeslots"`
	} `json:"result"`
}

type dropOffDays struct {
	DropOffWarehouseID flexInt64 `json:"drop_off_warehouse_id"`
	Days               []struct {
		Timeslots []rawTimeslot `json:"timeslots"`
	} `json:"days"`
}

// normalizeTimeslots flattens both response shapes into one slot list with
// local ISO times and epochs for comparison.
func (c *ClientServicesImpl) normalizeTimeslots(raw []byte) []Timeslot {
	var resp timeslotInfoResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}

	flat := resp.Timeslots
	if len(flat) == 0 {
		flat = resp.Result.Timeslots
	}
	drop := resp.DropOff
	if len(drop) == 0 {
		drop = resp.Result.DropOff
	}

	var out []Timeslot
	for _, s := range flat {
		if slot, ok := c.toSlot(s, 0); ok {
			out = append(out, slot)
		}
	}
	for _, entry := range drop {
		for _, day := range entry.Days {
			for _, s := range day.Timeslots {
				if slot, ok := c.toSlot(s, int64(entry.DropOffWarehouseID)); ok {
					out = append(out, slot)
				}
			}
		}
	}
	return out
}

func (c *ClientServicesImpl) toSlot(s rawTimeslot, dropID int64) (Timeslot, bool) {
	from := s.FromInTimezone
	if from == "" {
		from = s.From
	}
	to := s.ToInTimezone
	if to == "" {
		to = s.To
	}
	if from == "" || to == "" {
		return Timeslot{}, false
	}

	slot := Timeslot{
		FromInTimezone: c.toLocalISO(from),
		ToInTimezone:   c.toLocalISO(to),
		ID:             string(s.ID),
		DropOffID:      dropID,
	}
	slot.FromEpoch = epoch(slot.FromInTimezone)
	slot.ToEpoch = epoch(slot.ToInTimezone)
	if slot.FromEpoch == 0 || slot.ToEpoch == 0 {
		return Timeslot{}, false
	}
	return slot, true
}

// toLocalISO rewrites an ISO timestamp into the configured timezone.
func (c *ClientServicesImpl) toLocalISO(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.In(c.loc).Format("2006-01-02T15:04:05-07:00")
}

func epoch(s string) int64 {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}
