package schedule

import (
	"fmt"
	"strings"
	"time"
)

// TimeSlots is the fixed set of bookable one-hour windows at the office,
// 08:00 through 16:00. The order here is the order they are shown in.
var TimeSlots = []string{"08-09", "09-10", "10-11", "11-12", "12-1", "1-2", "2-3", "3-4"}

const (
	// LeadDays is the minimum number of days between today and the
	// earliest bookable date, inclusive of the last day.
	LeadDays = 7

	// WeekdayCapacity is the per-slot capacity when no block entry
	// overrides it. Weekends default to zero, the office is closed.
	WeekdayCapacity = 6

	DateLayout = "2006-01-02"
)

// NormalizeSlot reduces a slot label to a canonical "H:00-H:00" form so that
// the compact ("8-9") and human ("8:00AM-9:00AM") shapes compare equal. Only
// the leading hour digits of each side matter; AM/PM and minutes are ignored.
// Labels that do not look like a time range are returned trimmed as-is.
func NormalizeSlot(label string) string {
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(label)
	}
	start, okStart := leadingInt(parts[0])
	end, okEnd := leadingInt(parts[1])
	if !okStart || !okEnd {
		return strings.TrimSpace(label)
	}
	return fmt.Sprintf("%d:00-%d:00", start, end)
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	value := 0
	digits := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		value = value*10 + int(r-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	return value, true
}

// CanonicalSlot maps any recognisable slot label onto the fixed TimeSlots
// entry it denotes. The second return is false for labels outside the set.
func CanonicalSlot(label string) (string, bool) {
	norm := NormalizeSlot(label)
	for _, slot := range TimeSlots {
		if NormalizeSlot(slot) == norm {
			return slot, true
		}
	}
	return "", false
}

// DefaultCapacity is the fallback per-slot capacity for a date with no block
// entry: office closed on weekends, six otherwise. Both the month aggregate
// and the per-date slot table go through this one function.
func DefaultCapacity(date time.Time) int {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return 0
	}
	return WeekdayCapacity
}

// ParseDate parses an ISO yyyy-MM-dd date string.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return parsed, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
