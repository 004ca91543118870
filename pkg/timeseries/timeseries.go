// Package timeseries defines the canonical weekly sales series and the
// cleaning and validation routines that produce it from raw records.
package timeseries

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/retailcast/demand-forecast/pkg/constants"
	"github.com/retailcast/demand-forecast/pkg/datetime"
	"github.com/retailcast/demand-forecast/pkg/mathutil"
	"github.com/retailcast/demand-forecast/pkg/validation"
)

// Record is a raw input row keyed by field name, as delivered by upstream
// ingestion (CSV rows, API payloads).
type Record map[string]interface{}

// WeeklySample is one week of observed sales on the Monday-anchored grid.
type WeeklySample struct {
	WeekStart time.Time `json:"weekStart"`
	UnitsSold int       `json:"unitsSold"`
}

// Clean normalizes raw records into a canonical weekly series: dates are
// parsed and aligned to the Monday grid, duplicates collapse to the last-seen
// value, missing weeks are zero-filled, values above the 99th percentile of
// the observed distribution are capped to it, and negative values clip to
// zero. The result is sorted ascending with no gaps and no duplicate weeks.
func Clean(records []Record, dateField, valueField string) ([]WeeklySample, error) {
	if len(records) == 0 {
		return nil, validation.NewValidationError("records", "input series is empty")
	}
	if dateField == "" || valueField == "" {
		return nil, validation.NewValidationError("fields", "date and value field names are required")
	}

	// Last-seen value wins for duplicate weeks.
	byWeek := make(map[time.Time]float64)
	for i, record := range records {
		rawDate, ok := record[dateField]
		if !ok || rawDate == nil {
			return nil, validation.NewValidationError(dateField, "record %d is missing the date field", i)
		}
		rawValue, ok := record[valueField]
		if !ok || rawValue == nil {
			return nil, validation.NewValidationError(valueField, "record %d is missing the value field", i)
		}

		date, err := datetime.ParseDate(rawDate)
		if err != nil {
			return nil, validation.NewValidationError(dateField, "record %d: %v", i, err)
		}
		value, err := toFloat(rawValue)
		if err != nil {
			return nil, validation.NewValidationError(valueField, "record %d: %v", i, err)
		}

		byWeek[datetime.WeekStart(date)] = value
	}

	weeks := make([]time.Time, 0, len(byWeek))
	for week := range byWeek {
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	observed := make([]float64, 0, len(weeks))
	for _, week := range weeks {
		observed = append(observed, byWeek[week])
	}
	cap99 := mathutil.Percentile(observed, constants.OutlierPercentile)

	// Reindex onto the complete weekly grid, zero-filling gaps.
	first, last := weeks[0], weeks[len(weeks)-1]
	samples := make([]WeeklySample, 0, datetime.WeeksBetween(first, last)+1)
	for week := first; !week.After(last); week = datetime.OffsetWeeks(week, 1) {
		value := byWeek[week]
		value = mathutil.Min(value, cap99)
		value = mathutil.ClampNonNegative(value)
		samples = append(samples, WeeklySample{
			WeekStart: week,
			UnitsSold: int(math.Round(value)),
		})
	}

	return samples, nil
}

// Validate is a non-throwing predicate over a cleaned series. It fails closed,
// returning false plus a human-readable reason when the series is too short or
// contains negative values.
func Validate(samples []WeeklySample, minWeeks int) (bool, string) {
	if len(samples) < minWeeks {
		return false, fmt.Sprintf("series has %d weeks of history, need at least %d", len(samples), minWeeks)
	}
	for i, sample := range samples {
		if sample.UnitsSold < 0 {
			return false, fmt.Sprintf("week %s has negative units sold (%d)",
				sample.WeekStart.Format(datetime.DateLayout), sample.UnitsSold)
		}
		if i > 0 && !samples[i-1].WeekStart.Before(sample.WeekStart) {
			return false, fmt.Sprintf("series is not strictly ordered at week %s",
				sample.WeekStart.Format(datetime.DateLayout))
		}
	}
	return true, ""
}

// ValidateRecords applies the same fail-closed checks to raw records before
// cleaning: enough rows, no missing values, parseable dates, no negatives.
func ValidateRecords(records []Record, dateField, valueField string, minWeeks int) (bool, string) {
	if len(records) < minWeeks {
		return false, fmt.Sprintf("series has %d records, need at least %d", len(records), minWeeks)
	}
	for i, record := range records {
		rawDate, ok := record[dateField]
		if !ok || rawDate == nil {
			return false, fmt.Sprintf("record %d is missing the %s field", i, dateField)
		}
		if _, err := datetime.ParseDate(rawDate); err != nil {
			return false, fmt.Sprintf("record %d: %v", i, err)
		}
		rawValue, ok := record[valueField]
		if !ok || rawValue == nil {
			return false, fmt.Sprintf("record %d is missing the %s field", i, valueField)
		}
		value, err := toFloat(rawValue)
		if err != nil {
			return false, fmt.Sprintf("record %d: %v", i, err)
		}
		if value < 0 {
			return false, fmt.Sprintf("record %d has negative units sold (%v)", i, rawValue)
		}
	}
	return true, ""
}

// Records converts a cleaned series back into raw record form, which is
// convenient for idempotence checks and for re-submitting cleaned data.
func Records(samples []WeeklySample, dateField, valueField string) []Record {
	records := make([]Record, 0, len(samples))
	for _, sample := range samples {
		records = append(records, Record{
			dateField:  sample.WeekStart,
			valueField: sample.UnitsSold,
		})
	}
	return records
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		var n json.Number = json.Number(v)
		return n.Float64()
	default:
		return 0, fmt.Errorf("unsupported value type %T", value)
	}
}
