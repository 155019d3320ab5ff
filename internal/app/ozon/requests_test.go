package ozon

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
)

func TestDraftCreateInfo(t *testing.T) {
	t.Run("still in progress", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status": "IN_PROGRESS"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		info, err := c.DraftCreateInfo(context.Background(), "op-1")
		require.NoError(t, err)
		require.True(t, info.InProgress)
		require.Empty(t, info.DraftID)
	})

	t.Run("flat warehouses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{
				"result": {
					"draft_id": "987654",
					"warehouses": [
						{"warehouse_id": 11, "name": "УФА_РФЦ", "status": {"is_available": true}},
						{"warehouse_id": 12, "name": "КАЗАНЬ", "status": {"is_available": false}}
					]
				}
			}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		info, err := c.DraftCreateInfo(context.Background(), "op-1")
		require.NoError(t, err)
		require.Equal(t, "987654", info.DraftID)
		require.Len(t, info.Warehouses, 2)
		require.True(t, info.Warehouses[0].Available)
		require.False(t, info.Warehouses[1].Available)
	})

	t.Run("cluster nested warehouses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{
				"draft_id": 555,
				"clusters": [
					{"warehouses": [
						{
							"supply_warehouse": {"warehouse_id": 21, "name": "ТВЕРЬ_ХАБ"},
							"bundle_ids": [{"bundle_id": "bundle-1"}],
							"status": {"state": "WAREHOUSE_STATE_AVAILABLE"}
						}
					]}
				]
			}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		info, err := c.DraftCreateInfo(context.Background(), "op-1")
		require.NoError(t, err)
		require.Equal(t, "555", info.DraftID)
		require.Len(t, info.Warehouses, 1)
		require.Equal(t, int64(21), info.Warehouses[0].ID)
		require.Equal(t, "ТВЕРЬ_ХАБ", info.Warehouses[0].Name)
		require.Equal(t, "bundle-1", info.Warehouses[0].BundleID)
		require.True(t, info.Warehouses[0].Available)
	})

	t.Run("terminal status without draft id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status": "CALCULATION_STATUS_FAILED"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		_, err := c.DraftCreateInfo(context.Background(), "op-1")
		require.Error(t, err)
	})
}

func TestTimeslotInfo(t *testing.T) {
	t.Run("flat timeslots", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			require.Equal(t, float64(987), payload["draft_id"])
			_, _ = w.Write([]byte(`{
				"timeslots": [
					{"from_in_timezone": "2030-09-26T05:00:00Z", "to_in_timezone": "2030-09-26T06:00:00Z", "id": 31}
				]
			}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		slots, err := c.TimeslotInfo(context.Background(), "987", []int64{11}, "2030-09-26", "")
		require.NoError(t, err)
		require.Len(t, slots, 1)
		require.Equal(t, "2030-09-26T08:00:00+03:00", slots[0].FromInTimezone)
		require.Equal(t, "31", slots[0].ID)
		require.NotZero(t, slots[0].FromEpoch)
	})

	t.Run("drop off day grouping", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{
				"result": {
					"drop_off_warehouse_timeslots": [
						{
							"drop_off_warehouse_id": 777,
							"days": [
								{"timeslots": [{"from": "2030-09-26T05:00:00Z", "to": "2030-09-26T06:00:00Z"}]}
							]
						}
					]
				}
			}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		slots, err := c.TimeslotInfo(context.Background(), "987", []int64{11}, "2030-09-26", "")
		require.NoError(t, err)
		require.Len(t, slots, 1)
		require.Equal(t, int64(777), slots[0].DropOffID)
	})

	t.Run("widens the search window when the day is empty", func(t *testing.T) {
		var dateTos []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			dateTos = append(dateTos, payload["date_to"].(string))
			if len(dateTos) == 1 {
				_, _ = w.Write([]byte(`{"timeslots": []}`))
				return
			}
			_, _ = w.Write([]byte(`{
				"timeslots": [{"from_in_timezone": "2030-09-28T05:00:00Z", "to_in_timezone": "2030-09-28T06:00:00Z"}]
			}`))
		}))
		defer server.Close()

		cfg := testConfig(server.URL)
		cfg.SupplyTimeslotSearchExtraDays = 7
		c, err := NewClientServices(cfg)
		require.NoError(t, err)

		slots, err := c.TimeslotInfo(context.Background(), "987", []int64{11}, "2030-09-26", "")
		require.NoError(t, err)
		require.Len(t, slots, 1)

		require.Len(t, dateTos, 2)
		require.Equal(t, "2030-09-26T20:59:59Z", dateTos[0])
		require.Equal(t, "2030-10-03T20:59:59Z", dateTos[1])
	})

	t.Run("stale draft passes 404 through", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		cfg := testConfig(server.URL)
		cfg.SupplyTimeslotSearchExtraDays = 7
		c, err := NewClientServices(cfg)
		require.NoError(t, err)

		_, err = c.TimeslotInfo(context.Background(), "987", []int64{11}, "2030-09-26", "")
		require.True(t, IsNotFound(err))
	})
}

func TestSupplyCreate(t *testing.T) {
	t.Run("falls through payload variants", func(t *testing.T) {
		var bodies []map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			bodies = append(bodies, payload)
			if len(bodies) == 1 {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"message": "drop_off_point_warehouse_id required"}`))
				return
			}
			_, _ = w.Write([]byte(`{"operation_id": "op-supply-1"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		task := &domain.Task{
			ID:                 "task-0002-abcd",
			DraftID:            "555",
			DesiredFromISO:     "2030-09-26T05:00:00Z",
			DesiredToISO:       "2030-09-26T06:00:00Z",
			ChosenWarehouseID:  11,
			DropOffWarehouseID: 777,
		}
		opID, err := c.SupplyCreate(context.Background(), task)
		require.NoError(t, err)
		require.Equal(t, "op-supply-1", opID)

		require.Len(t, bodies, 2)
		_, hasDrop := bodies[0]["drop_off_point_warehouse_id"]
		require.False(t, hasDrop)
		require.Equal(t, float64(777), bodies[1]["drop_off_point_warehouse_id"])
	})

	t.Run("rate limit aborts the variant loop", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		task := &domain.Task{
			ID:                 "task-0003-abcd",
			DraftID:            "555",
			ChosenWarehouseID:  11,
			DropOffWarehouseID: 777,
		}
		_, err := c.SupplyCreate(context.Background(), task)
		_, ok := RateLimitWait(err)
		require.True(t, ok)
		require.Equal(t, 1, calls)
	})

	t.Run("missing warehouse id", func(t *testing.T) {
		c := newTestClient(t, "http://127.0.0.1:1")
		_, err := c.SupplyCreate(context.Background(), &domain.Task{ID: "task-0004-abcd", DraftID: "555"})
		require.Error(t, err)
	})
}

func TestSupplyCreateStatus(t *testing.T) {
	run := func(t *testing.T, body string) (string, error) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		return c.SupplyCreateStatus(context.Background(), "op-1")
	}

	t.Run("order id at top level", func(t *testing.T) {
		orderID, err := run(t, `{"order_id": 100500}`)
		require.NoError(t, err)
		require.Equal(t, "100500", orderID)
	})

	t.Run("order ids under result", func(t *testing.T) {
		orderID, err := run(t, `{"result": {"order_ids": ["100501"]}}`)
		require.NoError(t, err)
		require.Equal(t, "100501", orderID)
	})

	t.Run("still in progress", func(t *testing.T) {
		_, err := run(t, `{"status": "PENDING"}`)
		require.True(t, IsInProgress(err))
	})

	t.Run("success without order id", func(t *testing.T) {
		_, err := run(t, `{"status": "success"}`)
		require.Error(t, err)
		require.False(t, IsInProgress(err))
	})

	t.Run("failed", func(t *testing.T) {
		_, err := run(t, `{"result": {"status": "ERROR"}}`)
		require.Error(t, err)
		require.False(t, IsInProgress(err))
	})
}

func TestCargoes(t *testing.T) {
	t.Run("create builds one cargo per box", func(t *testing.T) {
		var payload map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, &payload))
			_, _ = w.Write([]byte(`{"operation_id": "op-cargo-1"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		task := &domain.Task{
			ID:       "task-0005-abcd",
			SupplyID: "321",
			SKULines: []domain.SKULine{
				{SKU: 123456789, TotalQty: 10, Boxes: 2, PerBox: 5},
				{SKU: 987654321, TotalQty: 3},
			},
		}
		opID, err := c.CargoesCreate(context.Background(), task)
		require.NoError(t, err)
		require.Equal(t, "op-cargo-1", opID)

		require.Equal(t, float64(321), payload["supply_id"])
		require.Equal(t, true, payload["delete_current_version"])
		require.Len(t, payload["cargoes"], 2)
	})

	t.Run("create rejects non numeric supply id", func(t *testing.T) {
		c := newTestClient(t, "http://127.0.0.1:1")
		task := &domain.Task{
			ID:       "task-0006-abcd",
			SupplyID: "abc",
			SKULines: []domain.SKULine{{SKU: 1234567, Boxes: 1, PerBox: 1}},
		}
		_, err := c.CargoesCreate(context.Background(), task)
		require.Error(t, err)
	})

	t.Run("info falls back to v1 on 404", func(t *testing.T) {
		var paths []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			if r.URL.Path == "/v2/cargoes/create/info" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`{
				"status": "SUCCESS",
				"result": {"cargoes": [{"value": {"cargo_id": "9001"}}, {"cargo_id": "9002"}]}
			}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		ids, err := c.CargoesCreateInfo(context.Background(), "op-1")
		require.NoError(t, err)
		require.Equal(t, []string{"9001", "9002"}, ids)
		require.Equal(t, []string{"/v2/cargoes/create/info", "/v1/cargoes/create/info"}, paths)
	})

	t.Run("info in progress without cargo ids", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status": "STATUS_IN_PROGRESS"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		_, err := c.CargoesCreateInfo(context.Background(), "op-1")
		require.True(t, IsInProgress(err))
	})

	t.Run("info failed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status": "FAILED", "error_messages": ["bad box"]}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		_, err := c.CargoesCreateInfo(context.Background(), "op-1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "bad box")
	})
}

func TestLabelsStatus(t *testing.T) {
	run := func(t *testing.T, body string) (string, error) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL)
		return c.LabelsStatus(context.Background(), "op-1")
	}

	t.Run("ready", func(t *testing.T) {
		guid, err := run(t, `{"result": {"status": "SUCCESS", "file_guid": "guid-1"}}`)
		require.NoError(t, err)
		require.Equal(t, "guid-1", guid)
	})

	t.Run("pending", func(t *testing.T) {
		_, err := run(t, `{"status": "PENDING"}`)
		require.True(t, IsInProgress(err))
	})

	t.Run("failed", func(t *testing.T) {
		_, err := run(t, `{"status": "FAILED"}`)
		require.Error(t, err)
		require.False(t, IsInProgress(err))
	})
}
