// Package constants provides shared constants for the demand-forecast application.
package constants

// DateLayout is the format expected for week dates in config files and input
// data and is also the output date format.
const DateLayout = "2006-01-02"

// Forecasting constants
const (
	// DaysPerWeek is the length of the weekly grid step
	DaysPerWeek = 7

	// MinHorizonWeeks is the smallest accepted forecast horizon
	MinHorizonWeeks = 1

	// MaxHorizonWeeks is the largest accepted forecast horizon (one year)
	MaxHorizonWeeks = 52

	// DefaultHorizonWeeks is the horizon used when none is configured
	DefaultHorizonWeeks = 12

	// DefaultConfidenceBand is the symmetric band applied around weekly
	// projections (±15%)
	DefaultConfidenceBand = 0.15

	// DefaultCurveDecay is the week-over-week geometric decay of the launch
	// curve; earlier weeks receive more demand
	DefaultCurveDecay = 0.85

	// DefaultMinHistoryWeeks is the minimum history length accepted by
	// validation when none is configured
	DefaultMinHistoryWeeks = 8

	// DefaultBaselineWindowWeeks is the trailing window for the baseline
	// moving-average model (one quarter)
	DefaultBaselineWindowWeeks = 13

	// HighVarianceThreshold flags ensemble forecasts whose component totals
	// disagree by more than this relative amount
	HighVarianceThreshold = 0.20

	// OutlierPercentile is the percentile above which cleaned values are capped
	OutlierPercentile = 0.99
)

// Allocation constants
const (
	// ShareTolerance is the tolerance when checking that allocation
	// percentages sum to 1.0
	ShareTolerance = 1e-6

	// SharePrecision is the number of decimal places kept for allocation
	// percentages
	SharePrecision = 6
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size for
	// forecast submissions (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024
)
