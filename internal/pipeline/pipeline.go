// Package pipeline wires the cleaning, forecasting, ensembling, and
// allocation stages into one pipeline run.
package pipeline

import (
	"sync"
	"time"

	"github.com/retailcast/demand-forecast/internal/config"
	"github.com/retailcast/demand-forecast/pkg/cluster"
	"github.com/retailcast/demand-forecast/pkg/ensemble"
	"github.com/retailcast/demand-forecast/pkg/forecaster"
	"github.com/retailcast/demand-forecast/pkg/timeseries"
	"github.com/retailcast/demand-forecast/pkg/validation"
	"go.uber.org/zap"
)

// Result carries every stage's output for one pipeline invocation. All fields
// are built fresh per run and never mutated afterwards.
type Result struct {
	CleanedSeries []timeseries.WeeklySample   `json:"cleanedSeries"`
	Components    []forecaster.ForecastResult `json:"components"`
	Ensemble      ensemble.EnsembleForecast   `json:"ensemble"`
	Shares        []cluster.ClusterShare      `json:"shares"`
}

// Run executes the full pipeline: validate and clean the raw series, evaluate
// both forecasters, combine them, and allocate the combined total across the
// configured clusters. The two model runs are independent pure computations
// and are evaluated concurrently. On any failure no partial result is
// returned.
func Run(logger *zap.Logger, conf *config.Configuration, records []timeseries.Record, stores []cluster.Store, now time.Time) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if ok, reason := timeseries.ValidateRecords(records, conf.Input.DateField, conf.Input.ValueField, conf.Forecast.MinHistoryWeeks); !ok {
		return nil, validation.NewValidationError("series", "%s", reason)
	}

	cleaned, err := timeseries.Clean(records, conf.Input.DateField, conf.Input.ValueField)
	if err != nil {
		return nil, err
	}
	logger.Debug("series cleaned",
		zap.String("op", "pipeline.Run"),
		zap.Int("weeks", len(cleaned)),
	)

	seasonStart, err := resolveSeasonStart(conf.Forecast.SeasonStart)
	if err != nil {
		return nil, err
	}

	params := forecaster.Params{
		ConfidenceBand: conf.Forecast.ConfidenceBand,
		CurveDecay:     conf.Forecast.CurveDecay,
	}
	models := []forecaster.Forecaster{
		forecaster.NewTrendForecaster(logger, now, params),
		forecaster.NewBaselineForecaster(logger, now, conf.Forecast.BaselineWindowWeeks, params),
	}

	results := make([]forecaster.ForecastResult, len(models))
	errs := make([]error, len(models))
	var wg sync.WaitGroup
	for i, model := range models {
		wg.Add(1)
		go func(i int, model forecaster.Forecaster) {
			defer wg.Done()
			results[i], errs[i] = model.Forecast(cleaned, conf.Forecast.HorizonWeeks, seasonStart)
		}(i, model)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// The trend model is always the reference curve operand.
	combined, err := ensemble.Combine(results[0], results[1])
	if err != nil {
		return nil, err
	}
	logger.Info("ensemble forecast computed",
		zap.String("op", "pipeline.Run"),
		zap.Int("totalDemand", combined.TotalDemand),
		zap.Float64("variancePct", combined.VariancePct),
		zap.Bool("highVariance", combined.HighVariance),
	)
	if combined.HighVariance {
		logger.Warn("component forecasts disagree beyond the variance threshold",
			zap.String("op", "pipeline.Run"),
			zap.Float64("variancePct", combined.VariancePct),
		)
	}

	defs := conf.ClusterDefinitions()
	allocator := cluster.NewAllocator(logger)
	assigned, err := allocator.AssignClusters(stores, defs, len(defs))
	if err != nil {
		return nil, err
	}
	shares, err := allocator.Allocate(assigned, defs, combined.TotalDemand)
	if err != nil {
		return nil, err
	}

	return &Result{
		CleanedSeries: cleaned,
		Components:    results,
		Ensemble:      combined,
		Shares:        shares,
	}, nil
}

// resolveSeasonStart parses the configured season start date. An empty value
// returns the zero time, which the forecasters resolve to the next Monday.
func resolveSeasonStart(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(config.DateLayout, value)
	if err != nil {
		return time.Time{}, validation.NewValidationError("seasonStart", "%v", err)
	}
	return t, nil
}
