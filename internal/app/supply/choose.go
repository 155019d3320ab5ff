package supply

import (
	"regexp"
	"strings"
	"time"

	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
	"github.com/sellerops/ozon-supply-connector/internal/app/ozon"
)

var tokenStripRE = regexp.MustCompile(`(?i)[^a-zа-я0-9\s-]+`)

func nameTokens(s string) map[string]struct{} {
	s = strings.ToLower(s)
	s = tokenStripRE.ReplaceAllString(s, " ")
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	out := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		out[t] = struct{}{}
	}
	return out
}

func nameMatchScore(desired, candidate string) int {
	dt := nameTokens(desired)
	ct := nameTokens(candidate)
	if len(dt) == 0 || len(ct) == 0 {
		return 0
	}
	score := 0
	for t := range dt {
		if _, ok := ct[t]; ok {
			score++
		}
	}
	return score
}

// chooseWarehouse picks the first available warehouse, or the first at all.
func chooseWarehouse(warehouses []ozon.Warehouse) int64 {
	if len(warehouses) == 0 {
		return 0
	}
	for _, w := range warehouses {
		if w.Available {
			return w.ID
		}
	}
	return warehouses[0].ID
}

// chooseWarehouseSmart keeps a pre-chosen id when the draft still offers it,
// otherwise scores candidates by name-token overlap with the requested
// warehouse and falls back to plain availability.
func chooseWarehouseSmart(task *domain.Task, warehouses []ozon.Warehouse) int64 {
	if task.ChosenWarehouseID != 0 {
		for _, w := range warehouses {
			if w.ID == task.ChosenWarehouseID {
				return task.ChosenWarehouseID
			}
		}
	}

	desired := task.WarehouseName
	if desired == "" && len(task.SKULines) > 0 {
		desired = task.SKULines[0].WarehouseName
	}

	var best int64
	bestScore := -1
	for _, w := range warehouses {
		if w.ID == 0 || !w.Available {
			continue
		}
		if sc := nameMatchScore(desired, w.Name); sc > bestScore {
			best = w.ID
			bestScore = sc
		}
	}
	if best != 0 {
		return best
	}
	return chooseWarehouse(warehouses)
}

// matchSlot returns the slot exactly matching the desired window, if any.
func matchSlot(slots []ozon.Timeslot, desiredFrom, desiredTo string) *ozon.Timeslot {
	fromEpoch := slotEpoch(desiredFrom)
	toEpoch := slotEpoch(desiredTo)
	for i := range slots {
		if slots[i].FromInTimezone == desiredFrom && slots[i].ToInTimezone == desiredTo {
			return &slots[i]
		}
		if fromEpoch != 0 && slots[i].FromEpoch == fromEpoch && slots[i].ToEpoch == toEpoch {
			return &slots[i]
		}
	}
	return nil
}

// nearestSlotWithinDelta finds the closest slot to the desired start within
// the delta, preferring one at or after the desired time.
func nearestSlotWithinDelta(slots []ozon.Timeslot, desiredFrom string, deltaMin int, dropID int64) *ozon.Timeslot {
	target := slotEpoch(desiredFrom)
	if target == 0 {
		return nil
	}

	var bestAfter, bestAny *ozon.Timeslot
	var bestAfterD, bestAnyD int64
	for i := range slots {
		s := &slots[i]
		if dropID != 0 && s.DropOffID != 0 && s.DropOffID != dropID {
			continue
		}
		if s.FromEpoch == 0 {
			continue
		}
		d := s.FromEpoch - target
		if d < 0 {
			d = -d
		}
		if d > int64(deltaMin)*60 {
			continue
		}
		if s.FromEpoch >= target && (bestAfter == nil || d < bestAfterD) {
			bestAfter = s
			bestAfterD = d
		}
		if bestAny == nil || d < bestAnyD {
			bestAny = s
			bestAnyD = d
		}
	}
	if bestAfter != nil {
		return bestAfter
	}
	return bestAny
}

func slotEpoch(iso string) int64 {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return 0
	}
	return t.Unix()
}
