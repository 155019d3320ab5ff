// Package schedule parses human-written supply schedules and resolves the
// warehouses and delivery windows they name.
package schedule

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	spaceRunRE     = regexp.MustCompile(`\s+`)
	separatorRE    = regexp.MustCompile(`[ \-\x{2014}\./]+`)
	nonWordRE      = regexp.MustCompile(`[^\w\x{0400}-\x{04FF}]+`)
	underscoreRE   = regexp.MustCompile(`_+`)
	mapSeparatorRE = regexp.MustCompile(`[;,]+`)

	upperRU = cases.Upper(language.Russian)
)

// NormalizeName reduces a warehouse name to its canonical map key: ё folded
// to е, separators collapsed to single underscores, punctuation stripped,
// Russian upper case.
func NormalizeName(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return s
	}
	s = strings.NewReplacer("ё", "е", "Ё", "Е").Replace(s)
	s = spaceRunRE.ReplaceAllString(s, " ")
	s = separatorRE.ReplaceAllString(s, "_")
	s = nonWordRE.ReplaceAllString(s, "")
	s = underscoreRE.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return upperRU.String(s)
}

// WarehouseMap maps normalized warehouse names to warehouse ids.
type WarehouseMap map[string]int64

// ParseWarehouseMap reads the "Name=ID;Name=ID" (or comma-separated) format
// of SUPPLY_WAREHOUSE_MAP. Pairs with a non-numeric id are skipped.
func ParseWarehouseMap(raw string) WarehouseMap {
	mapping := WarehouseMap{}
	if strings.TrimSpace(raw) == "" {
		return mapping
	}
	for _, pair := range mapSeparatorRE.Split(raw, -1) {
		pair = strings.TrimSpace(pair)
		if pair == "" || !strings.Contains(pair, "=") {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		key := NormalizeName(parts[0])
		id, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil || key == "" {
			continue
		}
		mapping[key] = id
	}
	return mapping
}

// Resolve returns the warehouse id for a display name, if mapped.
func (m WarehouseMap) Resolve(name string) (int64, bool) {
	if name == "" {
		return 0, false
	}
	id, ok := m[NormalizeName(name)]
	return id, ok
}

// Keys returns the normalized keys in sorted order, for operator hints.
func (m WarehouseMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NameByID reverses the map for display purposes. The first match in key
// order wins when two names share an id.
func (m WarehouseMap) NameByID(id int64) (string, bool) {
	for _, k := range m.Keys() {
		if m[k] == id {
			return k, true
		}
	}
	return "", false
}
