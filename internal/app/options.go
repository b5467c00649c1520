package app

import (
	"github.com/clinstat/trs/internal/bootstrap"
	"github.com/clinstat/trs/internal/domain/model"
	"github.com/clinstat/trs/internal/domain/score"
	"github.com/clinstat/trs/internal/domain/threshold"
	"github.com/clinstat/trs/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLandmarkDays sets the landmark days to analyze.
func WithLandmarkDays(days []float64) Option {
	return func(s *Service) {
		if len(days) > 0 {
			s.landmarkDays = days
		}
	}
}

// WithHorizons sets the prediction horizons evaluated per landmark.
func WithHorizons(horizons []float64) Option {
	return func(s *Service) {
		if len(horizons) > 0 {
			s.horizons = horizons
		}
	}
}

// WithPrimaryHorizon sets the horizon used for bootstrap validation,
// stratification and calibration.
func WithPrimaryHorizon(h float64) Option {
	return func(s *Service) {
		if h > 0 {
			s.primaryHorizon = h
		}
	}
}

// WithRiskCategories replaces the default partition. The partition must tile
// [0, max score]; New fails otherwise.
func WithRiskCategories(cats []model.RiskCategory) Option {
	return func(s *Service) {
		if len(cats) > 0 {
			s.categories = cats
		}
	}
}

// WithCalibrationBins sets the number of calibration bins.
func WithCalibrationBins(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.calibBins = n
		}
	}
}

// WithComponentPlan replaces the component table whose thresholds are
// re-derived per cohort. Defaults to the canonical published definition.
func WithComponentPlan(plan []model.Component) Option {
	return func(s *Service) {
		if len(plan) > 0 {
			s.plan = plan
		}
	}
}

// WithCalculator sets a custom score calculator.
func WithCalculator(c *score.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.calc = c
		}
	}
}

// WithOptimizer sets a custom threshold optimizer.
func WithOptimizer(o *threshold.Optimizer) Option {
	return func(s *Service) {
		if o != nil {
			s.optimizer = o
		}
	}
}

// WithValidator sets a custom bootstrap validator.
func WithValidator(v *bootstrap.Validator) Option {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}
