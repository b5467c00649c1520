package bootstrap

import "github.com/clinstat/trs/pkg/logger"

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithIterations sets the number of bootstrap iterations B.
func WithIterations(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.iterations = n
		}
	}
}

// WithSeed sets the base seed for the per-iteration generators.
func WithSeed(seed int64) Option {
	return func(v *Validator) {
		v.seed = seed
	}
}

// WithSkipTolerance sets the maximum tolerated fraction of skipped
// iterations before the run fails as unstable.
func WithSkipTolerance(t float64) Option {
	return func(v *Validator) {
		if t >= 0 && t < 1 {
			v.tolerance = t
		}
	}
}

// WithWorkers sets the number of parallel workers. Zero or negative means
// one worker per CPU.
func WithWorkers(n int) Option {
	return func(v *Validator) {
		v.workers = n
	}
}

// WithLogger sets a custom logger for the validator.
func WithLogger(log logger.Logger) Option {
	return func(v *Validator) {
		if log != nil {
			v.log = log
		}
	}
}
