package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if TRS_CONFIG is set
//  3. env (prefix TRS_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("TRS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TRS_SEED, TRS_BOOTSTRAP_ITERATIONS, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("TRS_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "trs_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects impossible configuration at startup; partition validation
// against the score definition happens in the app layer where the maximum
// score is known.
func (c *Config) validate() error {
	if c.BootstrapIterations < 1 {
		return fmt.Errorf("%w: bootstrap_iterations %d must be at least 1", ErrInvalidConfig, c.BootstrapIterations)
	}
	if c.SkipTolerance < 0 || c.SkipTolerance >= 1 {
		return fmt.Errorf("%w: skip_tolerance %g must be in [0,1)", ErrInvalidConfig, c.SkipTolerance)
	}
	if len(c.Horizons) == 0 {
		return fmt.Errorf("%w: at least one horizon required", ErrInvalidConfig)
	}
	for _, h := range c.Horizons {
		if h <= 0 {
			return fmt.Errorf("%w: horizon %g must be positive", ErrInvalidConfig, h)
		}
	}
	if c.PrimaryHorizon <= 0 {
		return fmt.Errorf("%w: primary_horizon %g must be positive", ErrInvalidConfig, c.PrimaryHorizon)
	}
	for _, d := range c.LandmarkDays {
		if d < 0 {
			return fmt.Errorf("%w: landmark day %g must not be negative", ErrInvalidConfig, d)
		}
	}
	if c.MaxMissingCovariates < 0 {
		return fmt.Errorf("%w: max_missing_covariates %d must not be negative", ErrInvalidConfig, c.MaxMissingCovariates)
	}
	if c.CalibrationBins < 1 {
		return fmt.Errorf("%w: calibration_bins %d must be at least 1", ErrInvalidConfig, c.CalibrationBins)
	}
	if len(c.RiskCategories) == 0 {
		return fmt.Errorf("%w: at least one risk category required", ErrInvalidConfig)
	}
	return nil
}
