// Package bootstrap orchestrates optimism-corrected resampling validation:
// B independent iterations that re-derive the score model on a bootstrap
// sample, evaluate it on the sample (apparent) and on the original cohort
// (test), and aggregate the optimism into a bias-corrected estimate with
// percentile confidence bounds.
package bootstrap

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/clinstat/trs/internal/domain/cohort"
	"github.com/clinstat/trs/internal/domain/model"
	"github.com/clinstat/trs/pkg/logger"
	"github.com/clinstat/trs/pkg/metrics"
)

// Default validator configuration constants.
const (
	defaultIterations = 1000
	defaultSeed       = 42
	defaultTolerance  = 0.05 // maximum tolerated skip rate

	lowerPercentile = 0.025
	upperPercentile = 0.975

	// seedStride decorrelates per-iteration generators so results do not
	// depend on which worker runs which iteration.
	seedStride = 0x9E3779B9
)

// Deriver re-fits the score model (thresholds and definition) on a cohort.
type Deriver func(ctx context.Context, c *cohort.Cohort) (*model.ScoreDefinition, error)

// Metric evaluates a scalar performance figure for a definition on a cohort.
// A non-evaluable combination returns an error; inside an iteration that
// skips the iteration rather than failing the run.
type Metric func(ctx context.Context, c *cohort.Cohort, def *model.ScoreDefinition) (float64, error)

// Report aggregates one metric across all completed iterations.
type Report struct {
	RunID  string
	Metric string

	Original      float64 // originally derived model on the original cohort
	ApparentMean  float64
	TestMean      float64
	MeanOptimism  float64
	BiasCorrected float64 // Original - MeanOptimism, by construction

	CILower float64 // 2.5th percentile of the test distribution
	CIUpper float64 // 97.5th percentile
	HasCI   bool

	Iterations int // requested
	Completed  int
	Skipped    int
	SkipRate   float64
	Elapsed    time.Duration
}

// Validator runs the resampling loop on a worker pool.
type Validator struct {
	iterations int
	seed       int64
	tolerance  float64
	workers    int
	log        logger.Logger
}

// New creates a Validator with configuration options.
func New(opts ...Option) *Validator {
	v := &Validator{
		iterations: defaultIterations,
		seed:       defaultSeed,
		tolerance:  defaultTolerance,
		log:        logger.Get().Named("bootstrap"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the full procedure for one named metric. The original cohort
// is never mutated; every iteration draws a private resample. Iterations
// that cannot be evaluated are skipped and counted; if the skip rate exceeds
// the tolerance the run fails with an error wrapping ErrUnstableBootstrap,
// carrying the diagnostic counts accumulated so far.
func (v *Validator) Validate(ctx context.Context, name string, original *cohort.Cohort, derive Deriver, metric Metric) (Report, error) {
	start := time.Now()
	report := Report{
		RunID:      uuid.New().String(),
		Metric:     name,
		Iterations: v.iterations,
	}

	originalDef, err := derive(ctx, original)
	if err != nil {
		return report, fmt.Errorf("deriving model on original cohort: %w", err)
	}
	report.Original, err = metric(ctx, original, originalDef)
	if err != nil {
		return report, fmt.Errorf("evaluating %s on original cohort: %w", name, err)
	}

	pool := newPool(ctx, v, original, derive, metric)
	accs := pool.run(ctx)

	// Reduce-style merge of per-worker accumulators.
	var merged accumulator
	for _, a := range accs {
		merged.merge(a)
	}
	report.Completed = merged.completed
	report.Skipped = merged.skipped
	report.Elapsed = time.Since(start)
	metrics.RecordRunDuration(report.Elapsed.Seconds())

	attempted := merged.completed + merged.skipped
	if attempted > 0 {
		report.SkipRate = float64(merged.skipped) / float64(attempted)
	}
	if merged.completed > 0 {
		report.ApparentMean = merged.sumApparent / float64(merged.completed)
		report.TestMean = stat.Mean(merged.tests, nil)
		report.MeanOptimism = merged.sumOptimism / float64(merged.completed)
		report.BiasCorrected = report.Original - report.MeanOptimism
	}
	if len(merged.tests) >= 2 {
		sort.Float64s(merged.tests)
		report.CILower = stat.Quantile(lowerPercentile, stat.Empirical, merged.tests, nil)
		report.CIUpper = stat.Quantile(upperPercentile, stat.Empirical, merged.tests, nil)
		report.HasCI = true
	}

	if report.SkipRate > v.tolerance {
		v.log.Error(ctx, "bootstrap unstable",
			logger.String("metric", name),
			logger.Int("skipped", report.Skipped),
			logger.Int("completed", report.Completed),
			logger.Float64("skipRate", report.SkipRate),
		)
		return report, fmt.Errorf("metric %s: %d/%d iterations skipped (rate %.3f, tolerance %.3f): %w",
			name, report.Skipped, attempted, report.SkipRate, v.tolerance, ErrUnstableBootstrap)
	}
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("validation interrupted: %w", err)
	}

	v.log.Info(ctx, "bootstrap validation complete",
		logger.String("metric", name),
		logger.Float64("original", report.Original),
		logger.Float64("biasCorrected", report.BiasCorrected),
		logger.Int("completed", report.Completed),
		logger.Int("skipped", report.Skipped),
	)
	return report, nil
}

// iterationRNG returns the generator for iteration i, a pure function of the
// configured seed so scheduling cannot change results.
func (v *Validator) iterationRNG(i int) *rand.Rand {
	s := v.seed + int64(i+1)*int64(seedStride)
	return rand.New(rand.NewSource(s)) //nolint:gosec // reproducible resampling by design
}
