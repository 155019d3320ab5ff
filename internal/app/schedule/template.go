package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
)

// The template format, as operators type it:
//
//	На 26.09.2025, 08:00-09:00
//	Склад: УФА_РФЦ
//	123456789 — кол-во 10, 1 коробка, по 10 шт
//
// The warehouse may instead trail the item line after the last comma.
var (
	dashClass = "[-‐‑‒–—―−]"

	headerRE    = regexp.MustCompile(`^\s*[Нн]а\s+(\d{2}\.\d{2}\.\d{4}),\s*(\d{2}:\d{2})\s*` + dashClass + `\s*(\d{2}:\d{2})\s*$`)
	warehouseRE = regexp.MustCompile(`^\s*(?:Склад|СКЛАД|склад)\s*[:\-]\s*(.+?)\s*$`)
	skuLineRE   = regexp.MustCompile(`^\s*(\d{6,})\s*(?:` + dashClass + `|:)\s*(.+)$`)

	totalQtyRE = regexp.MustCompile(`(?i)(?:кол-во|количество)\s*[:=]?\s*(\d+)`)
	boxesRE    = regexp.MustCompile(`(?i)(\d+)\s*коробк`)
	perBoxRE   = regexp.MustCompile(`(?i)по\s*(\d+)\s*шт`)

	commandRE = regexp.MustCompile(`^/schedule_supply(?:\s+(\S+))?`)

	dashRE = regexp.MustCompile(dashClass)
)

// Parsed is the result of reading one schedule template.
type Parsed struct {
	DateISO        string
	DesiredFromISO string
	DesiredToISO   string
	Rolled         bool
	SupplyType     string
	WarehouseName  string
	WarehouseID    int64
	Items          []domain.SKULine
}

// canonDashes maps every unicode dash variant onto the ASCII hyphen so the
// line regexes only need one class.
func canonDashes(s string) string {
	return dashRE.ReplaceAllString(s, "-")
}

// ParseTemplate reads a schedule template. The first line may be the
// /schedule_supply command with an optional supply type; the header line sets
// the desired window in the given timezone (rolled forward when stale); an
// optional warehouse line or an item-line tail names the warehouse.
//
// Parse problems are returned as error codes; an empty slice means the
// template is usable.
func ParseTemplate(text string, loc *time.Location, minLead time.Duration, maxRollDays int, warehouses WarehouseMap) (*Parsed, []string) {
	var errs []string

	lines := make([]string, 0, 8)
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) != "" {
			lines = append(lines, strings.TrimRight(raw, " \t\r"))
		}
	}
	if len(lines) == 0 {
		return nil, []string{"empty_input"}
	}

	out := &Parsed{}

	if m := commandRE.FindStringSubmatch(strings.TrimSpace(lines[0])); m != nil {
		if m[1] != "" {
			out.SupplyType = strings.ToUpper(m[1])
		}
		lines = lines[1:]
	}

	var headerLine, warehouseLine string
	var itemLines []string
	for _, ln := range lines {
		switch {
		case headerLine == "" && headerRE.MatchString(ln):
			headerLine = ln
		case warehouseLine == "" && warehouseRE.MatchString(ln):
			warehouseLine = ln
		default:
			itemLines = append(itemLines, ln)
		}
	}

	if headerLine == "" {
		errs = append(errs, "missing_date_line")
	} else {
		m := headerRE.FindStringSubmatch(headerLine)
		day, errDay := time.ParseInLocation("02.01.2006", m[1], loc)
		tFrom, errFrom := time.Parse("15:04", m[2])
		tTo, errTo := time.Parse("15:04", m[3])
		if errDay != nil || errFrom != nil || errTo != nil {
			errs = append(errs, "failed_parse_datetime")
		} else {
			start := time.Date(day.Year(), day.Month(), day.Day(), tFrom.Hour(), tFrom.Minute(), 0, 0, loc)
			end := time.Date(day.Year(), day.Month(), day.Day(), tTo.Hour(), tTo.Minute(), 0, 0, loc)
			fromISO, toISO, rolled, err := RollWindowForward(ToUTCISO(start), ToUTCISO(end), loc, minLead, maxRollDays)
			if err != nil {
				errs = append(errs, "failed_parse_datetime")
			} else {
				out.DesiredFromISO = fromISO
				out.DesiredToISO = toISO
				out.Rolled = rolled
				if from, err := ParseISO(fromISO); err == nil {
					out.DateISO = from.In(loc).Format("2006-01-02")
				}
			}
		}
	}

	if warehouseLine != "" {
		m := warehouseRE.FindStringSubmatch(warehouseLine)
		out.WarehouseName = strings.TrimSpace(m[1])
		if id, ok := warehouses.Resolve(out.WarehouseName); ok {
			out.WarehouseID = id
		}
	}

	for _, raw := range itemLines {
		item, tail := parseItemLine(raw)
		if item == nil {
			// Non-item noise is tolerated, same as contact lines in the
			// freeform bot input.
			continue
		}
		if out.WarehouseName == "" {
			if name, id, ok := warehouseFromTail(tail, warehouses); ok {
				out.WarehouseName = name
				out.WarehouseID = id
			}
		}
		if item.WarehouseName == "" {
			item.WarehouseName = out.WarehouseName
		}
		out.Items = append(out.Items, *item)
	}

	if len(out.Items) == 0 {
		errs = append(errs, "no_sku_items_parsed")
	}

	return out, errs
}

// parseItemLine reads one SKU line; the returned tail is everything after
// the sku separator, used for inline warehouse detection.
func parseItemLine(line string) (*domain.SKULine, string) {
	m := skuLineRE.FindStringSubmatch(canonDashes(line))
	if m == nil {
		return nil, ""
	}
	sku, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, ""
	}
	tail := m[2]

	item := &domain.SKULine{SKU: sku}
	if qm := totalQtyRE.FindStringSubmatch(tail); qm != nil {
		item.TotalQty, _ = strconv.Atoi(qm[1])
	}
	if bm := boxesRE.FindStringSubmatch(tail); bm != nil {
		item.Boxes, _ = strconv.Atoi(bm[1])
	}
	if pm := perBoxRE.FindStringSubmatch(tail); pm != nil {
		item.PerBox, _ = strconv.Atoi(pm[1])
	}
	if item.TotalQty == 0 && item.Boxes > 0 && item.PerBox > 0 {
		item.TotalQty = item.Boxes * item.PerBox
	}
	if item.TotalQty == 0 {
		item.TotalQty = 1
	}
	return item, tail
}

// warehouseFromTail checks whether the token after the last comma of an item
// line is a known warehouse name.
func warehouseFromTail(tail string, warehouses WarehouseMap) (string, int64, bool) {
	parts := strings.Split(tail, ",")
	candidate := strings.TrimSpace(parts[len(parts)-1])
	if candidate == "" {
		return "", 0, false
	}
	if id, ok := warehouses.Resolve(candidate); ok {
		return candidate, id, true
	}
	return "", 0, false
}
