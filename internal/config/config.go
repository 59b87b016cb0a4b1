// Package config loads pipeline tunables from an optional YAML file and
// LABCHECK_-prefixed environment variables. Every threshold the
// validators apply lives here so callers can loosen or tighten them
// without code changes.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every tunable threshold in the validation pipeline.
type Config struct {
	// MinRowCount is the floor below which an extraction is flagged as
	// incomplete. Lab reports shorter than this are rare enough that a
	// low row count usually means the model stopped early.
	MinRowCount int `mapstructure:"min_row_count"`

	// AgeToleranceYears is how far the model-provided age may drift
	// from the DOB-derived age before the DOB wins.
	AgeToleranceYears int `mapstructure:"age_tolerance_years"`

	// MagnitudeRatioLow and MagnitudeRatioHigh bound the plausible
	// ratio between a value and its range limits. Ratios outside
	// [low, high] indicate the range was read from the wrong row.
	MagnitudeRatioLow  float64 `mapstructure:"magnitude_ratio_low"`
	MagnitudeRatioHigh float64 `mapstructure:"magnitude_ratio_high"`

	// NeighborWindow is how many preceding rows are checked when
	// looking for values copied from an adjacent row.
	NeighborWindow int `mapstructure:"neighbor_window"`

	// MaxPromptIssues caps how many issues the corrective prompt
	// enumerates.
	MaxPromptIssues int `mapstructure:"max_prompt_issues"`

	// MaxAttempts bounds the re-extraction loop in the runner.
	MaxAttempts int `mapstructure:"max_attempts"`
}

// DefaultConfig returns the thresholds the pipeline ships with.
func DefaultConfig() Config {
	return Config{
		MinRowCount:        5,
		AgeToleranceYears:  2,
		MagnitudeRatioLow:  0.1,
		MagnitudeRatioHigh: 10,
		NeighborWindow:     3,
		MaxPromptIssues:    10,
		MaxAttempts:        3,
	}
}

// Load reads configuration from the given file (optional) plus the
// environment and returns the merged Config.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("min_row_count", defaults.MinRowCount)
	v.SetDefault("age_tolerance_years", defaults.AgeToleranceYears)
	v.SetDefault("magnitude_ratio_low", defaults.MagnitudeRatioLow)
	v.SetDefault("magnitude_ratio_high", defaults.MagnitudeRatioHigh)
	v.SetDefault("neighbor_window", defaults.NeighborWindow)
	v.SetDefault("max_prompt_issues", defaults.MaxPromptIssues)
	v.SetDefault("max_attempts", defaults.MaxAttempts)

	v.SetEnvPrefix("LABCHECK")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("labcheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.labcheck")
	}

	// Config file is optional unless one was named explicitly.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
