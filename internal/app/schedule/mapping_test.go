package schedule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	t.Run("folds separators and case", func(t *testing.T) {
		require.Equal(t, "УФА_РФЦ", NormalizeName("уфа рфц"))
		require.Equal(t, "УФА_РФЦ", NormalizeName("Уфа-РФЦ"))
		require.Equal(t, "УФА_РФЦ", NormalizeName("  УФА_РФЦ  "))
		require.Equal(t, "УФА_РФЦ", NormalizeName("Уфа/РФЦ"))
	})

	t.Run("folds yo", func(t *testing.T) {
		require.Equal(t, NormalizeName("Орёл"), NormalizeName("Орел"))
	})

	t.Run("drops punctuation", func(t *testing.T) {
		require.Equal(t, "ХОРУГВИНО_2", NormalizeName("Хоругвино (2)"))
	})

	t.Run("empty", func(t *testing.T) {
		require.Equal(t, "", NormalizeName("   "))
	})
}

func TestParseWarehouseMap(t *testing.T) {
	t.Parallel()

	t.Run("semicolon and comma separated", func(t *testing.T) {
		m := ParseWarehouseMap("УФА_РФЦ=123; Казань=456,ТВЕРЬ_ХАБ=789")
		require.Len(t, m, 3)

		id, ok := m.Resolve("Уфа РФЦ")
		require.True(t, ok)
		require.Equal(t, int64(123), id)

		id, ok = m.Resolve("казань")
		require.True(t, ok)
		require.Equal(t, int64(456), id)
	})

	t.Run("skips malformed pairs", func(t *testing.T) {
		m := ParseWarehouseMap("УФА_РФЦ=123;broken;Казань=abc;=77")
		require.Len(t, m, 1)

		_, ok := m.Resolve("Казань")
		require.False(t, ok)
	})

	t.Run("empty input", func(t *testing.T) {
		require.Empty(t, ParseWarehouseMap("  "))
	})

	t.Run("unknown name", func(t *testing.T) {
		m := ParseWarehouseMap("УФА_РФЦ=123")
		_, ok := m.Resolve("Самара")
		require.False(t, ok)
		_, ok = m.Resolve("")
		require.False(t, ok)
	})

	t.Run("name by id", func(t *testing.T) {
		m := ParseWarehouseMap("УФА_РФЦ=123;Казань=456")
		name, ok := m.NameByID(456)
		require.True(t, ok)
		require.Equal(t, "КАЗАНЬ", name)

		_, ok = m.NameByID(999)
		require.False(t, ok)
	})
}
