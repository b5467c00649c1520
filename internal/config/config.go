// Package config defines the validation run configuration and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults; Load layers file/env.
// - External errors are wrapped via this package's sentinel kinds.
package config

import (
	"context"
	"runtime"

	"github.com/clinstat/trs/internal/domain/model"
)

// RiskCategory configures one ordinal bucket of the score range. The
// partition, including the high-risk boundary, is configuration, never a
// hardcoded constant.
type RiskCategory struct {
	Name           string  `koanf:"name"`
	Lo             int     `koanf:"lo"`
	Hi             int     `koanf:"hi"`
	Description    string  `koanf:"description"`
	Recommendation string  `koanf:"recommendation"`
	MortalityRate  float64 `koanf:"mortality_rate"`
}

// Config contains process configuration for a validation run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// CohortPath points at the input cohort CSV. When empty, a synthetic
	// cohort is generated instead.
	CohortPath string `koanf:"cohort_path"`

	// ReportPath is where the JSON report is written; empty means stdout.
	ReportPath string `koanf:"report_path"`

	// BootstrapIterations is B, the number of resampling iterations.
	BootstrapIterations int `koanf:"bootstrap_iterations"`

	// LandmarkDays are the days at which landmark cohorts are built.
	LandmarkDays []float64 `koanf:"landmark_days"`

	// Horizons are the prediction horizons evaluated per landmark.
	Horizons []float64 `koanf:"horizons"`

	// PrimaryHorizon selects the horizon used for bootstrap validation and
	// stratification.
	PrimaryHorizon float64 `koanf:"primary_horizon"`

	// SkipTolerance is the maximum tolerated bootstrap skip rate.
	SkipTolerance float64 `koanf:"skip_tolerance"`

	// Seed makes resampling reproducible.
	Seed int64 `koanf:"seed"`

	// WorkerCount sets the number of bootstrap workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxMissingCovariates bounds missing data per subject before exclusion.
	MaxMissingCovariates int `koanf:"max_missing_covariates"`

	// CalibrationBins sets the number of observed-vs-expected bins.
	CalibrationBins int `koanf:"calibration_bins"`

	// RiskCategories partition [0, max score]; validated at startup.
	RiskCategories []RiskCategory `koanf:"risk_categories"`
}

// New creates a Config with defaults mirroring the derivation study:
// 1000 iterations, landmark days 3/5/7, horizons 30/60/90 with 90 primary,
// 5% skip tolerance, seed 42, and the corrected LOW 0-1 / MEDIUM 2 /
// HIGH 3-8 partition. Context is accepted first per the project convention
// and reserved for future loading hooks.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		CohortPath:           "",
		ReportPath:           "",
		BootstrapIterations:  1000,
		LandmarkDays:         []float64{3, 5, 7},
		Horizons:             []float64{30, 60, 90},
		PrimaryHorizon:       90,
		SkipTolerance:        0.05,
		Seed:                 42,
		WorkerCount:          runtime.NumCPU(),
		MaxMissingCovariates: 2,
		CalibrationBins:      10,
		RiskCategories: []RiskCategory{
			{
				Name: "LOW", Lo: 0, Hi: 1,
				Description:    "Low Risk",
				Recommendation: "Standard weaning protocol",
				MortalityRate:  0.10,
			},
			{
				Name: "MEDIUM", Lo: 2, Hi: 2,
				Description:    "Medium Risk",
				Recommendation: "Enhanced monitoring and assessment",
				MortalityRate:  0.33,
			},
			{
				Name: "HIGH", Lo: 3, Hi: 8,
				Description:    "High Risk",
				Recommendation: "Consider early tracheostomy (day 5-7)",
				MortalityRate:  0.46,
			},
		},
	}
}

// Categories converts the configured partition to domain records.
func (c *Config) Categories() []model.RiskCategory {
	out := make([]model.RiskCategory, len(c.RiskCategories))
	for i, rc := range c.RiskCategories {
		out[i] = model.RiskCategory{
			Name:           rc.Name,
			Lo:             rc.Lo,
			Hi:             rc.Hi,
			Description:    rc.Description,
			Recommendation: rc.Recommendation,
			MortalityRate:  rc.MortalityRate,
		}
	}
	return out
}
