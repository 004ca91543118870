package forecaster

import (
	"math"
	"time"

	"github.com/retailcast/demand-forecast/pkg/constants"
	"github.com/retailcast/demand-forecast/pkg/timeseries"
	"go.uber.org/zap"
)

// BaselineSource tags forecasts produced by the moving-average model.
const BaselineSource = "baseline"

// BaselineForecaster projects demand from the trailing moving average of
// recent weeks. It deliberately ignores trend, which makes it a useful
// counterweight to the trend model in the ensemble.
type BaselineForecaster struct {
	logger      *zap.Logger
	now         time.Time
	windowWeeks int
	params      Params
}

// NewBaselineForecaster creates a baseline forecaster averaging over the given
// trailing window. A non-positive window falls back to the default of one
// quarter. If logger is nil, it will use a no-op logger to prevent panics.
func NewBaselineForecaster(logger *zap.Logger, now time.Time, windowWeeks int, params Params) *BaselineForecaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	if windowWeeks <= 0 {
		windowWeeks = constants.DefaultBaselineWindowWeeks
	}
	return &BaselineForecaster{logger: logger, now: now, windowWeeks: windowWeeks, params: params.withDefaults()}
}

// Name returns the source tag for this model.
func (f *BaselineForecaster) Name() string {
	return BaselineSource
}

// Forecast multiplies the trailing average weekly demand by the horizon and
// shapes the result into a launch curve.
func (f *BaselineForecaster) Forecast(series []timeseries.WeeklySample, horizonWeeks int, seasonStart time.Time) (ForecastResult, error) {
	start, err := checkInputs(series, horizonWeeks, seasonStart, f.now)
	if err != nil {
		return ForecastResult{}, err
	}

	window := f.windowWeeks
	if window > len(series) {
		window = len(series)
	}
	sum := 0
	for _, sample := range series[len(series)-window:] {
		sum += sample.UnitsSold
	}
	average := float64(sum) / float64(window)
	totalDemand := int(math.Round(average * float64(horizonWeeks)))

	f.logger.Debug("baseline forecast computed",
		zap.String("op", "forecaster.BaselineForecaster.Forecast"),
		zap.Int("windowWeeks", window),
		zap.Float64("averageWeeklyUnits", average),
		zap.Int("totalDemand", totalDemand),
	)

	return ForecastResult{
		Source:      BaselineSource,
		TotalDemand: totalDemand,
		WeeklyCurve: buildCurve(totalDemand, horizonWeeks, start, f.params),
	}, nil
}
