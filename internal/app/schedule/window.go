package schedule

import (
	"fmt"
	"time"
)

// ToUTCISO renders a time as UTC ISO-8601 with a Z suffix and no sub-second
// part, the format the seller API expects.
func ToUTCISO(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

// ParseISO accepts both Z-suffixed and offset ISO timestamps.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// RollWindowForward moves a desired delivery window forward when it has
// already passed or starts closer than minLead. The window duration is
// preserved, the new start is snapped to the hour, and the roll never goes
// further than maxDaysAhead days.
//
// Returns the (possibly unchanged) window plus whether it was rolled.
func RollWindowForward(fromISO, toISO string, loc *time.Location, minLead time.Duration, maxDaysAhead int) (string, string, bool, error) {
	from, err := ParseISO(fromISO)
	if err != nil {
		return fromISO, toISO, false, err
	}
	to, err := ParseISO(toISO)
	if err != nil {
		return fromISO, toISO, false, err
	}

	now := time.Now().In(loc)
	lead := from.In(loc).Sub(now)
	if lead >= minLead && to.After(now) {
		return fromISO, toISO, false, nil
	}

	duration := to.Sub(from)
	start := now.Add(minLead).Truncate(time.Hour)
	for i := 0; i < maxDaysAhead; i++ {
		if start.Sub(now) >= minLead {
			break
		}
		start = start.AddDate(0, 0, 1)
	}
	end := start.Add(duration)

	return ToUTCISO(start), ToUTCISO(end), true, nil
}

// DayRange returns the inclusive local day window [00:00, 23:59:59] for a
// YYYY-MM-DD date, in UTC ISO form for timeslot queries.
func DayRange(dateISO string, loc *time.Location) (string, string, error) {
	day, err := time.ParseInLocation("2006-01-02", dateISO, loc)
	if err != nil {
		return "", "", fmt.Errorf("parse date %q: %w", dateISO, err)
	}
	start := day
	end := day.Add(24*time.Hour - time.Second)
	return ToUTCISO(start), ToUTCISO(end), nil
}

// AddDays shifts a YYYY-MM-DD date by a number of days.
func AddDays(dateISO string, days int, loc *time.Location) (string, error) {
	day, err := time.ParseInLocation("2006-01-02", dateISO, loc)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", dateISO, err)
	}
	return day.AddDate(0, 0, days).Format("2006-01-02"), nil
}
