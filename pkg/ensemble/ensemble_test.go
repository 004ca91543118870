package ensemble

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/retailcast/demand-forecast/pkg/datetime"
	"github.com/retailcast/demand-forecast/pkg/forecaster"
	"github.com/retailcast/demand-forecast/pkg/timeseries"
	"github.com/retailcast/demand-forecast/pkg/validation"
)

func result(source string, total int) forecaster.ForecastResult {
	return forecaster.ForecastResult{Source: source, TotalDemand: total}
}

func TestCombineTotalIsFlooredAverage(t *testing.T) {
	tests := []struct {
		name     string
		totalA   int
		totalB   int
		expected int
	}{
		{"Even sum", 8000, 7500, 7750},
		{"Odd sum floors", 7, 4, 5},
		{"Both zero", 0, 0, 0},
		{"One zero", 100, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combined, err := Combine(result("trend", tt.totalA), result("baseline", tt.totalB))
			if err != nil {
				t.Fatalf("Combine() error = %v", err)
			}
			if combined.TotalDemand != tt.expected {
				t.Errorf("TotalDemand = %d, expected %d", combined.TotalDemand, tt.expected)
			}
		})
	}
}

func TestCombineTotalIsCommutative(t *testing.T) {
	a := result("trend", 8123)
	b := result("baseline", 7457)

	ab, err := Combine(a, b)
	if err != nil {
		t.Fatalf("Combine(a, b) error = %v", err)
	}
	ba, err := Combine(b, a)
	if err != nil {
		t.Fatalf("Combine(b, a) error = %v", err)
	}
	if ab.TotalDemand != ba.TotalDemand {
		t.Errorf("total not commutative: %d vs %d", ab.TotalDemand, ba.TotalDemand)
	}
	if ab.VariancePct != ba.VariancePct {
		t.Errorf("variance not commutative: %v vs %v", ab.VariancePct, ba.VariancePct)
	}
}

func TestCombineVariance(t *testing.T) {
	tests := []struct {
		name             string
		totalA           int
		totalB           int
		expectedVariance float64
		expectedFlag     bool
	}{
		{"Mild disagreement", 8000, 7500, 500.0 / 7750.0, false},
		{"Strong disagreement", 8000, 4000, 4000.0 / 6000.0, true},
		{"Perfect agreement", 5000, 5000, 0, false},
		{"Both zero", 0, 0, 0, false},
		{"Just under threshold", 110, 90, 20.0 / 100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combined, err := Combine(result("trend", tt.totalA), result("baseline", tt.totalB))
			if err != nil {
				t.Fatalf("Combine() error = %v", err)
			}
			if math.Abs(combined.VariancePct-tt.expectedVariance) > 1e-9 {
				t.Errorf("VariancePct = %v, expected %v", combined.VariancePct, tt.expectedVariance)
			}
			if combined.HighVariance != tt.expectedFlag {
				t.Errorf("HighVariance = %v, expected %v", combined.HighVariance, tt.expectedFlag)
			}
		})
	}
}

func TestCombineComponentTotals(t *testing.T) {
	combined, err := Combine(result("trend", 8000), result("baseline", 7500))
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if combined.ComponentTotals["trend"] != 8000 || combined.ComponentTotals["baseline"] != 7500 {
		t.Errorf("ComponentTotals = %v", combined.ComponentTotals)
	}
}

func TestCombineRejectsNegativeTotals(t *testing.T) {
	for _, pair := range [][2]int{{-1, 100}, {100, -1}} {
		_, err := Combine(result("trend", pair[0]), result("baseline", pair[1]))
		var argErr *validation.InvalidArgumentError
		if !errors.As(err, &argErr) {
			t.Errorf("Combine(%d, %d) error = %v, expected *validation.InvalidArgumentError", pair[0], pair[1], err)
		}
	}
}

func TestCombineRescalesReferenceCurve(t *testing.T) {
	seasonStart := datetime.MustParseTime(datetime.DateLayout, "2025-09-01")
	model := forecaster.NewTrendForecaster(nil, time.Time{}, forecaster.Params{})
	series := []timeseries.WeeklySample{
		{WeekStart: datetime.MustParseTime(datetime.DateLayout, "2025-01-06"), UnitsSold: 1000},
		{WeekStart: datetime.MustParseTime(datetime.DateLayout, "2025-01-13"), UnitsSold: 1000},
	}
	a, err := model.Forecast(series, 6, seasonStart)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	b := result("baseline", a.TotalDemand/2)

	combined, err := Combine(a, b)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}

	if len(combined.WeeklyCurve) != len(a.WeeklyCurve) {
		t.Fatalf("curve length = %d, expected %d", len(combined.WeeklyCurve), len(a.WeeklyCurve))
	}
	ratio := float64(combined.TotalDemand) / float64(a.TotalDemand)
	for i, week := range combined.WeeklyCurve {
		ref := a.WeeklyCurve[i]
		if !week.WeekStart.Equal(ref.WeekStart) {
			t.Errorf("week %d start changed during rescale", week.WeekNumber)
		}
		if expected := int(float64(ref.ForecastedUnits) * ratio); week.ForecastedUnits != expected {
			t.Errorf("week %d units = %d, expected %d", week.WeekNumber, week.ForecastedUnits, expected)
		}
		if week.ConfidenceLower > week.ForecastedUnits || week.ForecastedUnits > week.ConfidenceUpper {
			t.Errorf("week %d violates band invariant after rescale", week.WeekNumber)
		}
	}
}

func TestCombineZeroReferenceTotal(t *testing.T) {
	a := forecaster.ForecastResult{
		Source:      "trend",
		TotalDemand: 0,
		WeeklyCurve: []forecaster.WeekProjection{
			{WeekNumber: 1, ForecastedUnits: 0, ConfidenceLower: 0, ConfidenceUpper: 0},
		},
	}
	combined, err := Combine(a, result("baseline", 100))
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if combined.TotalDemand != 50 {
		t.Errorf("TotalDemand = %d, expected 50", combined.TotalDemand)
	}
	if combined.WeeklyCurve[0].ForecastedUnits != 0 {
		t.Errorf("zero reference curve should stay zeroed")
	}
}
