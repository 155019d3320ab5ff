package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	t.Parallel()

	moscow, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	warehouses := ParseWarehouseMap("УФА_РФЦ=123;Казань=456")
	minLead := 30 * time.Minute

	t.Run("full template", func(t *testing.T) {
		text := "На 26.09.2030, 08:00-09:00\n" +
			"Склад: УФА_РФЦ\n" +
			"123456789 — кол-во 10, 1 коробка, по 10 шт\n"

		parsed, errs := ParseTemplate(text, moscow, minLead, 14, warehouses)
		require.Empty(t, errs)
		require.NotNil(t, parsed)

		require.Equal(t, "2030-09-26T05:00:00Z", parsed.DesiredFromISO)
		require.Equal(t, "2030-09-26T06:00:00Z", parsed.DesiredToISO)
		require.Equal(t, "2030-09-26", parsed.DateISO)
		require.False(t, parsed.Rolled)
		require.Equal(t, "УФА_РФЦ", parsed.WarehouseName)
		require.Equal(t, int64(123), parsed.WarehouseID)

		require.Len(t, parsed.Items, 1)
		item := parsed.Items[0]
		require.Equal(t, int64(123456789), item.SKU)
		require.Equal(t, 10, item.TotalQty)
		require.Equal(t, 1, item.Boxes)
		require.Equal(t, 10, item.PerBox)
		require.Equal(t, "УФА_РФЦ", item.WarehouseName)
	})

	t.Run("command line sets supply type", func(t *testing.T) {
		text := "/schedule_supply crossdock\n" +
			"На 26.09.2030, 08:00-09:00\n" +
			"Склад: Казань\n" +
			"123456789 — кол-во 5\n"

		parsed, errs := ParseTemplate(text, moscow, minLead, 14, warehouses)
		require.Empty(t, errs)
		require.Equal(t, "CROSSDOCK", parsed.SupplyType)
		require.Equal(t, int64(456), parsed.WarehouseID)
		require.Len(t, parsed.Items, 1)
		require.Equal(t, 5, parsed.Items[0].TotalQty)
	})

	t.Run("warehouse from item line tail", func(t *testing.T) {
		text := "На 26.09.2030, 08:00-09:00\n" +
			"123456789 — кол-во 10, 2 коробки, по 5 шт, Казань\n"

		parsed, errs := ParseTemplate(text, moscow, minLead, 14, warehouses)
		require.Empty(t, errs)
		require.Equal(t, "Казань", parsed.WarehouseName)
		require.Equal(t, int64(456), parsed.WarehouseID)
		require.Equal(t, 2, parsed.Items[0].Boxes)
		require.Equal(t, 5, parsed.Items[0].PerBox)
	})

	t.Run("quantity derived from boxes", func(t *testing.T) {
		text := "На 26.09.2030, 08:00-09:00\n" +
			"Склад: УФА_РФЦ\n" +
			"123456789 — 3 коробки, по 7 шт\n"

		parsed, errs := ParseTemplate(text, moscow, minLead, 14, warehouses)
		require.Empty(t, errs)
		require.Equal(t, 21, parsed.Items[0].TotalQty)
	})

	t.Run("stale window rolls", func(t *testing.T) {
		text := "На 26.09.2020, 08:00-09:00\n" +
			"Склад: УФА_РФЦ\n" +
			"123456789 — кол-во 10\n"

		parsed, errs := ParseTemplate(text, moscow, minLead, 14, warehouses)
		require.Empty(t, errs)
		require.True(t, parsed.Rolled)

		from, err := ParseISO(parsed.DesiredFromISO)
		require.NoError(t, err)
		require.True(t, from.After(time.Now()))
	})

	t.Run("noise lines tolerated", func(t *testing.T) {
		text := "На 26.09.2030, 08:00-09:00\n" +
			"Контакт: Иван\n" +
			"123456789 — кол-во 10\n"

		parsed, errs := ParseTemplate(text, moscow, minLead, 14, warehouses)
		require.Empty(t, errs)
		require.Len(t, parsed.Items, 1)
	})

	t.Run("empty input", func(t *testing.T) {
		_, errs := ParseTemplate("  \n ", moscow, minLead, 14, warehouses)
		require.Equal(t, []string{"empty_input"}, errs)
	})

	t.Run("missing header", func(t *testing.T) {
		_, errs := ParseTemplate("123456789 — кол-во 10", moscow, minLead, 14, warehouses)
		require.Contains(t, errs, "missing_date_line")
	})

	t.Run("no items", func(t *testing.T) {
		_, errs := ParseTemplate("На 26.09.2030, 08:00-09:00", moscow, minLead, 14, warehouses)
		require.Contains(t, errs, "no_sku_items_parsed")
	})
}
