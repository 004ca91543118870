// Package ensemble reconciles two single-model forecasts into one combined
// forecast and flags disagreement between the models.
package ensemble

import (
	"math"

	"github.com/retailcast/demand-forecast/pkg/constants"
	"github.com/retailcast/demand-forecast/pkg/forecaster"
	"github.com/retailcast/demand-forecast/pkg/validation"
)

// EnsembleForecast is the reconciled output of two model runs. HighVariance is
// advisory metadata for downstream consumers, not an error condition.
type EnsembleForecast struct {
	TotalDemand     int                         `json:"totalDemand"`
	ComponentTotals map[string]int              `json:"componentTotals"`
	WeeklyCurve     []forecaster.WeekProjection `json:"weeklyCurve"`
	VariancePct     float64                     `json:"variancePct"`
	HighVariance    bool                        `json:"highVariance"`
}

// Combine averages the two component totals (floored) and rescales the first
// operand's curve to the combined total. The unweighted average is the
// simplest reconciliation absent per-model confidence scores; the first
// operand is always the reference curve.
func Combine(a, b forecaster.ForecastResult) (EnsembleForecast, error) {
	if a.TotalDemand < 0 {
		return EnsembleForecast{}, validation.NewInvalidArgumentError("a.TotalDemand",
			"component total must be non-negative, got %d", a.TotalDemand)
	}
	if b.TotalDemand < 0 {
		return EnsembleForecast{}, validation.NewInvalidArgumentError("b.TotalDemand",
			"component total must be non-negative, got %d", b.TotalDemand)
	}

	total := (a.TotalDemand + b.TotalDemand) / 2

	variance := 0.0
	if a.TotalDemand+b.TotalDemand > 0 {
		mean := float64(a.TotalDemand+b.TotalDemand) / 2
		variance = math.Abs(float64(a.TotalDemand)-float64(b.TotalDemand)) / mean
	}

	return EnsembleForecast{
		TotalDemand: total,
		ComponentTotals: map[string]int{
			a.Source: a.TotalDemand,
			b.Source: b.TotalDemand,
		},
		WeeklyCurve:  rescaleCurve(a.WeeklyCurve, a.TotalDemand, total),
		VariancePct:  variance,
		HighVariance: variance > constants.HighVarianceThreshold,
	}, nil
}

// rescaleCurve scales every projection in the reference curve by
// newTotal/refTotal, truncating to integers. A zero reference total leaves a
// zeroed curve of the same shape.
func rescaleCurve(curve []forecaster.WeekProjection, refTotal, newTotal int) []forecaster.WeekProjection {
	rescaled := make([]forecaster.WeekProjection, len(curve))
	copy(rescaled, curve)
	if refTotal == 0 {
		for i := range rescaled {
			rescaled[i].ForecastedUnits = 0
			rescaled[i].ConfidenceLower = 0
			rescaled[i].ConfidenceUpper = 0
		}
		return rescaled
	}

	ratio := float64(newTotal) / float64(refTotal)
	for i := range rescaled {
		rescaled[i].ForecastedUnits = int(float64(rescaled[i].ForecastedUnits) * ratio)
		rescaled[i].ConfidenceLower = int(float64(rescaled[i].ConfidenceLower) * ratio)
		rescaled[i].ConfidenceUpper = int(float64(rescaled[i].ConfidenceUpper) * ratio)
	}
	return rescaled
}
