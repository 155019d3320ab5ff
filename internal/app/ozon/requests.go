package ozon

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
	"github.com/sellerops/ozon-supply-connector/internal/app/schedule"
)

const supplyTypeCrossdock = "CREATE_TYPE_CROSSDOCK"

func (c *ClientServicesImpl) DraftCreate(ctx context.Context, task *domain.Task, clusterIDs []int64) (string, error) {
	items := make([]map[string]interface{}, 0, len(task.SKULines))
	for _, it := range task.Items() {
		items = append(items, map[string]interface{}{
			"sku":      strconv.FormatInt(it.SKU, 10),
			"quantity": it.Quantity,
		})
	}

	dropID := task.DropOffWarehouseID
	if dropID == 0 {
		dropID = c.dropOffID
	}
	usedType := task.SupplyType
	if usedType == "" && dropID != 0 {
		usedType = supplyTypeCrossdock
	}

	payload := map[string]interface{}{
		"items": items,
		"type":  usedType,
	}
	if dropID != 0 {
		// the endpoint has accepted three spellings of this field over time
		payload["drop_off_point_warehouse_id"] = dropID
		payload["dropoff_warehouse_id"] = dropID
		payload["dropoffWarehouseId"] = dropID
	}
	if len(clusterIDs) > 0 {
		payload["cluster_ids"] = clusterIDs
	}
	task.SupplyType = usedType

	raw, _, _, err := c.post(ctx, "draft create", "/v1/draft/create", payload)
	if err != nil {
		return "", err
	}
	if c.mock {
		return "op-draft-" + task.Short(), nil
	}
	opID := extractOperationID(raw)
	if opID == "" {
		return "", fmt.Errorf("draft create: no operation_id in response")
	}
	return opID, nil
}

func (c *ClientServicesImpl) DraftCreateInfo(ctx context.Context, operationID string) (*DraftInfo, error) {
	raw, _, _, err := c.post(ctx, "draft info", "/v1/draft/create/info", map[string]string{"operation_id": operationID})
	if err != nil {
		return nil, err
	}

	var resp draftInfoResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("draft info: decode: %w", err)
	}
	body := resp.flatten()

	if body.DraftID == 0 && c.mock {
		return &DraftInfo{DraftID: "draft-mock", Warehouses: []Warehouse{{ID: 1, Name: "MOCK", Available: true}}}, nil
	}
	if body.DraftID == 0 {
		s := strings.ToUpper(body.Status)
		if s == "" || s == "IN_PROGRESS" || s == "PENDING" {
			return &DraftInfo{InProgress: true}, nil
		}
		return nil, fmt.Errorf("draft info: status %s without draft_id", s)
	}

	info := &DraftInfo{DraftID: strconv.FormatInt(body.DraftID, 10)}
	info.Warehouses = body.warehouses()
	return info, nil
}

func (c *ClientServicesImpl) TimeslotInfo(ctx context.Context, draftID string, warehouseIDs []int64, dateISO string, bundleID string) ([]Timeslot, error) {
	dayFrom, dayTo, err := schedule.DayRange(dateISO, c.loc)
	if err != nil {
		return nil, fmt.Errorf("timeslot info: %w", err)
	}

	build := func(toZ string) map[string]interface{} {
		pl := map[string]interface{}{
			"draft_id":      idValue(draftID),
			"warehouse_ids": warehouseIDs,
			"date_from":     dayFrom,
			"date_to":       toZ,
		}
		if bundleID != "" {
			pl["bundle_id"] = bundleID
		}
		if c.dropOffID != 0 {
			pl["drop_off_point_warehouse_id"] = c.dropOffID
		}
		return pl
	}

	raw, _, _, err := c.post(ctx, "timeslot info", "/v1/draft/timeslot/info", build(dayTo))
	if err == nil {
		if slots := c.normalizeTimeslots(raw); len(slots) > 0 {
			return slots, nil
		}
		err = fmt.Errorf("timeslot info: no slots for %s", dateISO)
	}
	if IsNotFound(err) || c.extraDays == 0 {
		return nil, err
	}

	// widen the search window before giving up on the day
	extDate, rerr := schedule.AddDays(dateISO, c.extraDays, c.loc)
	if rerr != nil {
		return nil, err
	}
	_, extTo, rerr := schedule.DayRange(extDate, c.loc)
	if rerr != nil {
		return nil, err
	}
	raw2, _, _, err2 := c.post(ctx, "timeslot info", "/v1/draft/timeslot/info", build(extTo))
	if err2 != nil {
		return nil, err2
	}
	if slots := c.normalizeTimeslots(raw2); len(slots) > 0 {
		return slots, nil
	}
	return nil, err
}

func (c *ClientServicesImpl) DraftTimeslotSet(ctx context.Context, draftID string, dropOffWarehouseID int64, slot TimeslotRef) error {
	body := map[string]interface{}{
		"id":                          idValue(draftID),
		"drop_off_point_warehouse_id": dropOffWarehouseID,
		"timeslot":                    slot,
	}
	_, _, _, err := c.post(ctx, "timeslot set", "/v1/draft/timeslot/set", body)
	return err
}

func (c *ClientServicesImpl) SupplyCreate(ctx context.Context, task *domain.Task) (string, error) {
	if c.mock {
		return "op-supply-" + task.Short(), nil
	}
	if task.ChosenWarehouseID <= 0 {
		return "", fmt.Errorf("supply create: warehouse id is zero")
	}

	base := map[string]interface{}{
		"draft_id":         idValue(task.DraftID),
		"from_in_timezone": task.DesiredFromISO,
		"to_in_timezone":   task.DesiredToISO,
		"warehouse_id":     task.ChosenWarehouseID,
	}

	// payload variants the endpoint has been seen to require, tried in order
	variants := []map[string]interface{}{clone(base)}
	dropID := task.DropOffWarehouseID
	if dropID == 0 {
		dropID = c.dropOffID
	}
	if dropID != 0 {
		v := clone(base)
		v["drop_off_point_warehouse_id"] = dropID
		variants = append(variants, v)
	}
	if task.SlotID != "" {
		v := clone(base)
		v["timeslot_id"] = idValue(task.SlotID)
		variants = append(variants, v)
	}
	if task.BundleID != "" {
		v := clone(base)
		v["bundle_id"] = task.BundleID
		variants = append(variants, v)
	}

	var lastErr error
	for _, pl := range variants {
		raw, _, _, err := c.post(ctx, "supply create", "/v1/draft/supply/create", pl)
		if err == nil {
			opID := extractOperationID(raw)
			if opID == "" {
				return "", fmt.Errorf("supply create: no operation_id in response")
			}
			return opID, nil
		}
		if _, ok := RateLimitWait(err); ok {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("supply create: %w", lastErr)
}

func (c *ClientServicesImpl) SupplyCreateStatus(ctx context.Context, operationID string) (string, error) {
	raw, _, _, err := c.post(ctx, "supply status", "/v1/draft/supply/create/status", map[string]string{"operation_id": operationID})
	if err != nil {
		return "", err
	}
	if c.mock {
		return "100001", nil
	}

	var resp supplyStatusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("supply status: decode: %w", err)
	}
	body := resp.flatten()

	orderID := body.orderID()
	status := strings.ToLower(body.Status)
	switch {
	case orderID != "":
		return orderID, nil
	case strings.Contains(status, "success"):
		return "", fmt.Errorf("supply status: success without order_id")
	case strings.Contains(status, "error") || strings.Contains(status, "fail"):
		return "", fmt.Errorf("supply status: %s", body.Status)
	}
	return "", ErrInProgress
}

func (c *ClientServicesImpl) CargoesCreate(ctx context.Context, task *domain.Task) (string, error) {
	supplyID, err := strconv.ParseInt(strings.TrimSpace(task.SupplyID), 10, 64)
	if err != nil {
		return "", fmt.Errorf("cargoes create: supply_id %q is not numeric", task.SupplyID)
	}

	cargoes := make([]map[string]interface{}, 0)
	for _, line := range task.SKULines {
		if line.Boxes <= 0 || line.PerBox <= 0 {
			continue
		}
		for i := 0; i < line.Boxes; i++ {
			cargoes = append(cargoes, map[string]interface{}{
				"key": uuid.NewString(),
				"value": map[string]interface{}{
					"type": "BOX",
					"items": []map[string]interface{}{{
						"offer_id": strconv.FormatInt(line.SKU, 10),
						"quant":    line.PerBox,
						"quantity": line.PerBox,
					}},
				},
			})
		}
	}
	if len(cargoes) == 0 {
		return "", fmt.Errorf("cargoes create: no box lines on task")
	}

	body := map[string]interface{}{
		"supply_id":              supplyID,
		"delete_current_version": true,
		"cargoes":                cargoes,
	}
	raw, _, _, err := c.post(ctx, "cargoes create", "/v1/cargoes/create", body)
	if err != nil {
		return "", err
	}
	if c.mock {
		return "op-cargo-" + task.Short(), nil
	}
	opID := extractOperationID(raw)
	if opID == "" {
		return "", fmt.Errorf("cargoes create: no operation_id in response")
	}
	return opID, nil
}

func (c *ClientServicesImpl) CargoesCreateInfo(ctx context.Context, operationID string) ([]string, error) {
	payload := map[string]string{"operation_id": operationID}

	raw, _, _, err := c.post(ctx, "cargoes info", "/v2/cargoes/create/info", payload)
	if err == nil {
		return parseCargoesInfo(raw, c.mock)
	}
	if !IsNotFound(err) {
		return nil, err
	}

	// older accounts only answer on v1
	raw, _, _, err = c.post(ctx, "cargoes info", "/v1/cargoes/create/info", payload)
	if err != nil {
		return nil, err
	}
	return parseCargoesInfo(raw, c.mock)
}

func (c *ClientServicesImpl) LabelsCreate(ctx context.Context, supplyID string, cargoIDs []string) (string, error) {
	payload := map[string]interface{}{"supply_id": idValue(supplyID)}
	if len(cargoIDs) > 0 {
		payload["cargo_ids"] = cargoIDs
	}
	raw, _, _, err := c.post(ctx, "labels create", "/v1/cargoes-label/create", payload)
	if err != nil {
		return "", err
	}
	if c.mock {
		return "op-labels-mock", nil
	}
	opID := extractOperationID(raw)
	if opID == "" {
		return "", fmt.Errorf("labels create: no operation_id in response")
	}
	return opID, nil
}

func (c *ClientServicesImpl) LabelsStatus(ctx context.Context, operationID string) (string, error) {
	raw, _, _, err := c.post(ctx, "labels status", "/v1/cargoes-label/get", map[string]string{"operation_id": operationID})
	if err != nil {
		return "", err
	}
	if c.mock {
		return "mock-file-guid", nil
	}

	var resp labelsStatusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("labels status: decode: %w", err)
	}
	body := resp.flatten()

	switch strings.ToUpper(body.Status) {
	case "", "IN_PROGRESS", "PENDING":
		return "", ErrInProgress
	case "SUCCESS", "OK", "DONE":
		if body.FileGUID == "" {
			return "", fmt.Errorf("labels status: success without file_guid")
		}
		return body.FileGUID, nil
	}
	return "", fmt.Errorf("labels status: %s", body.Status)
}

func (c *ClientServicesImpl) LabelsFile(ctx context.Context, fileGUID string) ([]byte, error) {
	return c.getFile(ctx, "/v1/cargoes-label/file/"+fileGUID)
}

func clone(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
