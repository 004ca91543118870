// Package datetime provides date and week-grid utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/retailcast/demand-forecast/pkg/constants"
)

const (
	// DateLayout is the format expected for week dates in config files and
	// input data and is also the output date format.
	DateLayout = constants.DateLayout
)

// parseLayouts are the layouts accepted for raw input dates, tried in order.
var parseLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate converts a raw date value into a time.Time truncated to midnight
// UTC. Accepted inputs are time.Time values and strings in any of the
// supported layouts.
func ParseDate(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return Midnight(v), nil
	case string:
		for _, layout := range parseLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return Midnight(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date format %q", v)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", value)
	}
}

// Midnight truncates a time to midnight UTC of the same calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday on or before the given date; all weekly grids
// are anchored to Monday.
func WeekStart(t time.Time) time.Time {
	t = Midnight(t)
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset)
}

// NextWeekday returns the next occurrence of the given weekday strictly after
// the given time.
func NextWeekday(after time.Time, weekday time.Weekday) time.Time {
	t := Midnight(after).AddDate(0, 0, 1)
	for t.Weekday() != weekday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// OffsetWeeks returns the date offset by the given number of weeks.
func OffsetWeeks(t time.Time, weeks int) time.Time {
	return t.AddDate(0, 0, weeks*constants.DaysPerWeek)
}

// WeeksBetween returns the number of whole weeks from first to second. Both
// dates are expected to sit on the same weekly grid.
func WeeksBetween(first, second time.Time) int {
	return int(second.Sub(first).Hours() / (24 * constants.DaysPerWeek))
}
