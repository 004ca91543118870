// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"

	"github.com/retailcast/demand-forecast/pkg/cluster"
	"github.com/retailcast/demand-forecast/pkg/constants"
	"github.com/spf13/viper"
)

// DateLayout is the format expected for dates in config files and is also the
// output date format.
const DateLayout = constants.DateLayout

// Configuration holds all configuration for demand-forecast.
type Configuration struct {
	Input    InputConfig     `yaml:"input"`
	Forecast ForecastConfig  `yaml:"forecast"`
	Clusters []ClusterConfig `yaml:"clusters"`
	Stores   []StoreConfig   `yaml:"stores"`
	Logging  LoggingConfig   `yaml:"logging,omitempty"`
	Output   OutputConfig    `yaml:"output,omitempty"`
}

// InputConfig names the fields of the raw sales records.
type InputConfig struct {
	DateField  string `yaml:"dateField"`
	ValueField string `yaml:"valueField"`
}

// ForecastConfig holds the forecasting parameters.
type ForecastConfig struct {
	HorizonWeeks        int     `yaml:"horizonWeeks"`
	SeasonStart         string  `yaml:"seasonStart,omitempty"` // YYYY-MM-DD; empty defaults to next Monday
	MinHistoryWeeks     int     `yaml:"minHistoryWeeks"`
	ConfidenceBand      float64 `yaml:"confidenceBand"`
	CurveDecay          float64 `yaml:"curveDecay"`
	BaselineWindowWeeks int     `yaml:"baselineWindowWeeks"`
}

// ClusterConfig declares one cluster and the store segments that map into it.
type ClusterConfig struct {
	ID            string   `yaml:"id"`
	Segments      []string `yaml:"segments"`
	FallbackShare float64  `yaml:"fallbackShare"`
}

// StoreConfig describes one store in the roster.
type StoreConfig struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	Segment        string  `yaml:"segment"`
	AvgWeeklyUnits float64 `yaml:"avgWeeklyUnits"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.ApplyDefaults()
	return &configuration, nil
}

// ApplyDefaults fills in any unset parameters with the package defaults.
func (c *Configuration) ApplyDefaults() {
	if c.Input.DateField == "" {
		c.Input.DateField = "week_start_date"
	}
	if c.Input.ValueField == "" {
		c.Input.ValueField = "units_sold"
	}
	if c.Forecast.HorizonWeeks == 0 {
		c.Forecast.HorizonWeeks = constants.DefaultHorizonWeeks
	}
	if c.Forecast.MinHistoryWeeks == 0 {
		c.Forecast.MinHistoryWeeks = constants.DefaultMinHistoryWeeks
	}
	if c.Forecast.ConfidenceBand == 0 {
		c.Forecast.ConfidenceBand = constants.DefaultConfidenceBand
	}
	if c.Forecast.CurveDecay == 0 {
		c.Forecast.CurveDecay = constants.DefaultCurveDecay
	}
	if c.Forecast.BaselineWindowWeeks == 0 {
		c.Forecast.BaselineWindowWeeks = constants.DefaultBaselineWindowWeeks
	}
	if len(c.Clusters) == 0 {
		c.Clusters = DefaultClusters()
	}
}

// DefaultClusters is the reference three-cluster segmentation used when the
// config declares none.
func DefaultClusters() []ClusterConfig {
	return []ClusterConfig{
		{ID: "flagship", Segments: []string{"flagship", "mall"}, FallbackShare: 0.40},
		{ID: "standard", Segments: []string{"standard", "street"}, FallbackShare: 0.35},
		{ID: "outlet", Segments: []string{"outlet", "clearance"}, FallbackShare: 0.25},
	}
}

// ClusterDefinitions converts the configured clusters into the allocator's
// definition type.
func (c *Configuration) ClusterDefinitions() []cluster.Definition {
	defs := make([]cluster.Definition, 0, len(c.Clusters))
	for _, cc := range c.Clusters {
		defs = append(defs, cluster.Definition{
			ID:            cc.ID,
			Segments:      cc.Segments,
			FallbackShare: cc.FallbackShare,
		})
	}
	return defs
}

// StoreRoster converts the configured stores into the allocator's store type.
func (c *Configuration) StoreRoster() []cluster.Store {
	stores := make([]cluster.Store, 0, len(c.Stores))
	for _, sc := range c.Stores {
		stores = append(stores, cluster.Store{
			ID:             sc.ID,
			Name:           sc.Name,
			Segment:        sc.Segment,
			AvgWeeklyUnits: sc.AvgWeeklyUnits,
		})
	}
	return stores
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Warnings do not stop a run; hard parameter errors surface
// later as typed errors from the pipeline.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Forecast.HorizonWeeks < constants.MinHorizonWeeks || c.Forecast.HorizonWeeks > constants.MaxHorizonWeeks {
		warnings = append(warnings, fmt.Sprintf("forecast horizon %d is outside [%d, %d] and will be rejected",
			c.Forecast.HorizonWeeks, constants.MinHorizonWeeks, constants.MaxHorizonWeeks))
	}
	if c.Forecast.ConfidenceBand < 0 || c.Forecast.ConfidenceBand >= 1 {
		warnings = append(warnings, fmt.Sprintf("confidence band %.2f is outside [0, 1)", c.Forecast.ConfidenceBand))
	}
	if c.Forecast.CurveDecay <= 0 || c.Forecast.CurveDecay >= 1 {
		warnings = append(warnings, fmt.Sprintf("curve decay %.2f is outside (0, 1)", c.Forecast.CurveDecay))
	}

	seen := make(map[string]bool)
	fallbackSum := 0.0
	for _, cc := range c.Clusters {
		if cc.ID == "" {
			warnings = append(warnings, "cluster with empty id")
			continue
		}
		if seen[cc.ID] {
			warnings = append(warnings, fmt.Sprintf("duplicate cluster id %q", cc.ID))
		}
		seen[cc.ID] = true
		fallbackSum += cc.FallbackShare
	}
	if len(c.Clusters) > 0 && (fallbackSum < 1-constants.ShareTolerance || fallbackSum > 1+constants.ShareTolerance) {
		warnings = append(warnings, fmt.Sprintf("cluster fallback shares sum to %.4f, expected 1.0", fallbackSum))
	}

	for _, sc := range c.Stores {
		if sc.ID == "" {
			warnings = append(warnings, fmt.Sprintf("store %q has no id", sc.Name))
		}
		if sc.AvgWeeklyUnits < 0 {
			warnings = append(warnings, fmt.Sprintf("store %q has negative average weekly units", sc.ID))
		}
	}

	return warnings
}
