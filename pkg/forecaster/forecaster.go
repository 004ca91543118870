// Package forecaster defines the single-model forecasting contract and the
// interchangeable model implementations behind it.
package forecaster

import (
	"math"
	"time"

	"github.com/retailcast/demand-forecast/pkg/constants"
	"github.com/retailcast/demand-forecast/pkg/datetime"
	"github.com/retailcast/demand-forecast/pkg/timeseries"
	"github.com/retailcast/demand-forecast/pkg/validation"
)

// WeekProjection is one week of a forecast curve with its confidence band.
type WeekProjection struct {
	WeekNumber      int       `json:"weekNumber"`
	WeekStart       time.Time `json:"weekStart"`
	WeekEnd         time.Time `json:"weekEnd"`
	ForecastedUnits int       `json:"forecastedUnits"`
	ConfidenceLower int       `json:"confidenceLower"`
	ConfidenceUpper int       `json:"confidenceUpper"`
}

// ForecastResult is the output of a single model run: a season total plus the
// weekly curve derived from the same run, tagged with the producing model.
type ForecastResult struct {
	Source      string           `json:"source"`
	TotalDemand int              `json:"totalDemand"`
	WeeklyCurve []WeekProjection `json:"weeklyCurve"`
}

// Forecaster is the abstraction boundary between the pipeline and any demand
// model. Implementations are pure: no I/O, no shared state, no clock reads.
type Forecaster interface {
	Name() string
	Forecast(series []timeseries.WeeklySample, horizonWeeks int, seasonStart time.Time) (ForecastResult, error)
}

// Params tunes the curve shaping shared by the model implementations. Zero
// values fall back to the package defaults.
type Params struct {
	// ConfidenceBand is the symmetric relative band around each weekly
	// projection. The fixed band is a placeholder policy; a model-derived
	// interval would replace it without changing the interface.
	ConfidenceBand float64

	// CurveDecay is the week-over-week geometric decay of the launch curve.
	CurveDecay float64
}

func (p Params) withDefaults() Params {
	if p.ConfidenceBand <= 0 {
		p.ConfidenceBand = constants.DefaultConfidenceBand
	}
	if p.CurveDecay <= 0 || p.CurveDecay >= 1 {
		p.CurveDecay = constants.DefaultCurveDecay
	}
	return p
}

// checkInputs applies the shared argument validation for a model run and
// resolves the season start. A zero seasonStart defaults to the next Monday
// strictly after now.
func checkInputs(series []timeseries.WeeklySample, horizonWeeks int, seasonStart, now time.Time) (time.Time, error) {
	if err := validation.ValidateHorizon(horizonWeeks); err != nil {
		return time.Time{}, err
	}
	if len(series) == 0 {
		return time.Time{}, validation.NewValidationError("series", "cleaned series is empty")
	}
	if seasonStart.IsZero() {
		seasonStart = datetime.NextWeekday(now, time.Monday)
	}
	return datetime.Midnight(seasonStart), nil
}

// buildCurve distributes a season total across the horizon using normalized
// geometric weights, so earlier weeks carry more demand. Weekly units are
// floored, which keeps the implied percentages summing to at most 1.0 and the
// curve monotonically non-increasing.
func buildCurve(total, horizonWeeks int, seasonStart time.Time, params Params) []WeekProjection {
	weights := make([]float64, horizonWeeks)
	sum := 0.0
	for i := range weights {
		weights[i] = math.Pow(params.CurveDecay, float64(i))
		sum += weights[i]
	}

	curve := make([]WeekProjection, horizonWeeks)
	for i := range curve {
		weekStart := datetime.OffsetWeeks(seasonStart, i)
		units := int(math.Floor(float64(total) * weights[i] / sum))
		curve[i] = WeekProjection{
			WeekNumber:      i + 1,
			WeekStart:       weekStart,
			WeekEnd:         weekStart.AddDate(0, 0, constants.DaysPerWeek-1),
			ForecastedUnits: units,
			ConfidenceLower: int(math.Floor(float64(units) * (1 - params.ConfidenceBand))),
			ConfidenceUpper: int(math.Ceil(float64(units) * (1 + params.ConfidenceBand))),
		}
	}
	return curve
}
