// Package testutil provides common utility functions for testing.
package testutil

import (
	"time"

	"github.com/retailcast/demand-forecast/pkg/cluster"
	"github.com/retailcast/demand-forecast/pkg/datetime"
	"github.com/retailcast/demand-forecast/pkg/timeseries"
)

// SeriesStart is the Monday used as the first week of generated series.
var SeriesStart = datetime.MustParseTime(datetime.DateLayout, "2025-01-06")

// LinearSeries generates weeks of cleaned samples starting at SeriesStart with
// units base, base+step, base+2*step, ...
func LinearSeries(weeks, base, step int) []timeseries.WeeklySample {
	samples := make([]timeseries.WeeklySample, weeks)
	for i := range samples {
		samples[i] = timeseries.WeeklySample{
			WeekStart: datetime.OffsetWeeks(SeriesStart, i),
			UnitsSold: base + i*step,
		}
	}
	return samples
}

// FlatSeries generates weeks of cleaned samples all carrying the same units.
func FlatSeries(weeks, units int) []timeseries.WeeklySample {
	return LinearSeries(weeks, units, 0)
}

// LinearRecords generates raw records matching LinearSeries, keyed by the
// given field names.
func LinearRecords(dateField, valueField string, weeks, base, step int) []timeseries.Record {
	records := make([]timeseries.Record, weeks)
	for i := range records {
		records[i] = timeseries.Record{
			dateField:  datetime.OffsetWeeks(SeriesStart, i).Format(datetime.DateLayout),
			valueField: base + i*step,
		}
	}
	return records
}

// TenStoreRoster returns ten stores split 3/3/4 across the flagship, standard,
// and outlet segments with the given per-store weekly volume.
func TenStoreRoster(avgWeeklyUnits float64) []cluster.Store {
	segments := []string{
		"flagship", "flagship", "flagship",
		"standard", "standard", "standard",
		"outlet", "outlet", "outlet", "outlet",
	}
	stores := make([]cluster.Store, len(segments))
	for i, segment := range segments {
		stores[i] = cluster.Store{
			ID:             storeID(i),
			Name:           "Store " + storeID(i),
			Segment:        segment,
			AvgWeeklyUnits: avgWeeklyUnits,
		}
	}
	return stores
}

func storeID(i int) string {
	return string(rune('A' + i))
}

// FixedNow is a stable reference time (a Wednesday) for forecaster clocks.
var FixedNow = time.Date(2025, time.August, 27, 12, 0, 0, 0, time.UTC)
