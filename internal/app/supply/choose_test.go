package supply

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
	"github.com/sellerops/ozon-supply-connector/internal/app/ozon"
)

func TestChooseWarehouse(t *testing.T) {
	t.Parallel()

	t.Run("empty list", func(t *testing.T) {
		require.Zero(t, chooseWarehouse(nil))
	})

	t.Run("prefers available", func(t *testing.T) {
		warehouses := []ozon.Warehouse{
			{ID: 1, Available: false},
			{ID: 2, Available: true},
		}
		require.Equal(t, int64(2), chooseWarehouse(warehouses))
	})

	t.Run("falls back to first", func(t *testing.T) {
		warehouses := []ozon.Warehouse{
			{ID: 1, Available: false},
			{ID: 2, Available: false},
		}
		require.Equal(t, int64(1), chooseWarehouse(warehouses))
	})
}

func TestChooseWarehouseSmart(t *testing.T) {
	t.Parallel()

	warehouses := []ozon.Warehouse{
		{ID: 1, Name: "ХОРУГВИНО_РФЦ", Available: true},
		{ID: 2, Name: "УФА РФЦ", Available: true},
		{ID: 3, Name: "КАЗАНЬ", Available: false},
	}

	t.Run("keeps pre-chosen id when still offered", func(t *testing.T) {
		task := &domain.Task{ChosenWarehouseID: 2}
		require.Equal(t, int64(2), chooseWarehouseSmart(task, warehouses))
	})

	t.Run("scores by name tokens", func(t *testing.T) {
		task := &domain.Task{WarehouseName: "Уфа-РФЦ"}
		require.Equal(t, int64(2), chooseWarehouseSmart(task, warehouses))
	})

	t.Run("uses item line warehouse name", func(t *testing.T) {
		task := &domain.Task{SKULines: []domain.SKULine{{SKU: 1, WarehouseName: "уфа рфц"}}}
		require.Equal(t, int64(2), chooseWarehouseSmart(task, warehouses))
	})

	t.Run("pre-chosen id gone from draft", func(t *testing.T) {
		task := &domain.Task{ChosenWarehouseID: 99, WarehouseName: "Уфа РФЦ"}
		require.Equal(t, int64(2), chooseWarehouseSmart(task, warehouses))
	})

	t.Run("no name falls back to first available", func(t *testing.T) {
		task := &domain.Task{}
		got := chooseWarehouseSmart(task, warehouses)
		require.NotZero(t, got)
		require.NotEqual(t, int64(3), got)
	})
}

func TestMatchSlot(t *testing.T) {
	t.Parallel()

	slots := []ozon.Timeslot{
		{
			FromInTimezone: "2030-09-26T08:00:00+03:00", ToInTimezone: "2030-09-26T09:00:00+03:00",
			FromEpoch: slotEpoch("2030-09-26T08:00:00+03:00"), ToEpoch: slotEpoch("2030-09-26T09:00:00+03:00"),
		},
		{
			FromInTimezone: "2030-09-26T09:00:00+03:00", ToInTimezone: "2030-09-26T10:00:00+03:00",
			FromEpoch: slotEpoch("2030-09-26T09:00:00+03:00"), ToEpoch: slotEpoch("2030-09-26T10:00:00+03:00"),
		},
	}

	t.Run("literal match", func(t *testing.T) {
		s := matchSlot(slots, "2030-09-26T09:00:00+03:00", "2030-09-26T10:00:00+03:00")
		require.NotNil(t, s)
		require.Equal(t, slots[1].FromInTimezone, s.FromInTimezone)
	})

	t.Run("epoch match across timezone spellings", func(t *testing.T) {
		s := matchSlot(slots, "2030-09-26T05:00:00Z", "2030-09-26T06:00:00Z")
		require.NotNil(t, s)
		require.Equal(t, slots[0].FromInTimezone, s.FromInTimezone)
	})

	t.Run("no match", func(t *testing.T) {
		require.Nil(t, matchSlot(slots, "2030-09-26T11:00:00+03:00", "2030-09-26T12:00:00+03:00"))
	})
}

func TestNearestSlotWithinDelta(t *testing.T) {
	t.Parallel()

	base := slotEpoch("2030-09-26T08:00:00+03:00")
	slots := []ozon.Timeslot{
		{FromInTimezone: "before", FromEpoch: base - 30*60},
		{FromInTimezone: "after", FromEpoch: base + 60*60},
		{FromInTimezone: "far", FromEpoch: base + 10*3600},
		{FromInTimezone: "other-drop", FromEpoch: base, DropOffID: 999},
	}

	t.Run("prefers slot at or after the target", func(t *testing.T) {
		s := nearestSlotWithinDelta(slots, "2030-09-26T08:00:00+03:00", 120, 0)
		require.NotNil(t, s)
		require.Equal(t, "after", s.FromInTimezone)
	})

	t.Run("takes an earlier slot when nothing later fits", func(t *testing.T) {
		s := nearestSlotWithinDelta(slots[:1], "2030-09-26T08:00:00+03:00", 120, 0)
		require.NotNil(t, s)
		require.Equal(t, "before", s.FromInTimezone)
	})

	t.Run("filters on drop off id", func(t *testing.T) {
		s := nearestSlotWithinDelta(slots, "2030-09-26T08:00:00+03:00", 120, 777)
		require.NotNil(t, s)
		require.Equal(t, "after", s.FromInTimezone)
	})

	t.Run("nothing within delta", func(t *testing.T) {
		require.Nil(t, nearestSlotWithinDelta(slots[2:3], "2030-09-26T08:00:00+03:00", 120, 0))
	})

	t.Run("bad desired time", func(t *testing.T) {
		require.Nil(t, nearestSlotWithinDelta(slots, "garbage", 120, 0))
	})
}
