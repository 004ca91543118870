package forecaster

import (
	"math"
	"time"

	"github.com/retailcast/demand-forecast/pkg/timeseries"
	"go.uber.org/zap"
)

// TrendSource tags forecasts produced by the trend model.
const TrendSource = "trend"

// TrendForecaster projects demand by fitting an ordinary least-squares line
// through the cleaned history and extending it across the horizon.
type TrendForecaster struct {
	logger *zap.Logger
	now    time.Time
	params Params
}

// NewTrendForecaster creates a trend forecaster. The current time is injected
// so the model never reads the clock itself. If logger is nil, it will use a
// no-op logger to prevent panics.
func NewTrendForecaster(logger *zap.Logger, now time.Time, params Params) *TrendForecaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrendForecaster{logger: logger, now: now, params: params.withDefaults()}
}

// Name returns the source tag for this model.
func (f *TrendForecaster) Name() string {
	return TrendSource
}

// Forecast fits the trend line, sums the projected weekly values over the
// horizon (clamped at zero), and shapes the result into a launch curve.
func (f *TrendForecaster) Forecast(series []timeseries.WeeklySample, horizonWeeks int, seasonStart time.Time) (ForecastResult, error) {
	start, err := checkInputs(series, horizonWeeks, seasonStart, f.now)
	if err != nil {
		return ForecastResult{}, err
	}

	slope, intercept := fitLine(series)

	total := 0.0
	for i := 0; i < horizonWeeks; i++ {
		x := float64(len(series) + i)
		projected := intercept + slope*x
		if projected > 0 {
			total += projected
		}
	}
	totalDemand := int(math.Round(total))

	f.logger.Debug("trend forecast computed",
		zap.String("op", "forecaster.TrendForecaster.Forecast"),
		zap.Float64("slope", slope),
		zap.Float64("intercept", intercept),
		zap.Int("totalDemand", totalDemand),
	)

	return ForecastResult{
		Source:      TrendSource,
		TotalDemand: totalDemand,
		WeeklyCurve: buildCurve(totalDemand, horizonWeeks, start, f.params),
	}, nil
}

// fitLine computes the least-squares slope and intercept of units over week
// index. A single-sample series yields a flat line.
func fitLine(series []timeseries.WeeklySample) (slope, intercept float64) {
	n := float64(len(series))
	if len(series) == 1 {
		return 0, float64(series[0].UnitsSold)
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, sample := range series {
		x := float64(i)
		y := float64(sample.UnitsSold)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
