// Package threshold discovers optimal cut-points for continuous predictors
// by maximizing the Youden index over all observed values.
package threshold

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/clinstat/trs/internal/domain/model"
)

// Default optimizer configuration constants.
const (
	defaultResamples = 1000 // bootstrap resamples for the cut-point CI
	defaultSeed      = 42

	lowerPercentile = 0.025
	upperPercentile = 0.975
)

// Option applies a configuration option to the Optimizer.
type Option func(*Optimizer)

// WithResamples sets the number of bootstrap resamples for confidence bounds.
func WithResamples(n int) Option {
	return func(o *Optimizer) {
		if n > 0 {
			o.resamples = n
		}
	}
}

// WithSeed sets the seed for bootstrap resampling.
func WithSeed(seed int64) Option {
	return func(o *Optimizer) {
		o.seed = seed
	}
}

// Optimizer searches candidate cut-points for the one maximizing
// sensitivity + specificity - 1. Ties are broken toward the candidate
// closest to the variable's median, then toward the smaller value, so the
// search is fully deterministic.
type Optimizer struct {
	resamples int
	seed      int64
}

// New creates an Optimizer with configuration options.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{
		resamples: defaultResamples,
		seed:      defaultSeed,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize returns the Youden-optimal threshold for the variable, without
// confidence bounds. values and labels are parallel; labels mark subjects
// with the outcome. Fails with ErrInsufficientData when either outcome class
// is empty.
func (o *Optimizer) Optimize(variable string, dir model.Direction, values []float64, labels []bool) (model.Threshold, error) {
	if len(values) != len(labels) {
		return model.Threshold{}, fmt.Errorf("values (%d) and labels (%d) differ in length", len(values), len(labels))
	}
	return bestCut(variable, dir, values, labels)
}

// OptimizeCI returns the optimal threshold with bootstrap percentile bounds
// on the cut-point itself, capturing cut-point instability rather than just
// point-estimate uncertainty. Degenerate resamples with an empty outcome
// class are skipped.
func (o *Optimizer) OptimizeCI(variable string, dir model.Direction, values []float64, labels []bool) (model.Threshold, error) {
	best, err := o.Optimize(variable, dir, values, labels)
	if err != nil {
		return model.Threshold{}, err
	}

	rng := rand.New(rand.NewSource(o.seed)) //nolint:gosec // deterministic resampling by design
	n := len(values)
	cuts := make([]float64, 0, o.resamples)
	bv := make([]float64, n)
	bl := make([]bool, n)

	for b := 0; b < o.resamples; b++ {
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			bv[i] = values[j]
			bl[i] = labels[j]
		}
		t, err := bestCut(variable, dir, bv, bl)
		if err != nil {
			continue // one-class resample, not informative
		}
		cuts = append(cuts, t.Cut)
	}

	if len(cuts) >= 2 {
		sort.Float64s(cuts)
		best.Lower = stat.Quantile(lowerPercentile, stat.Empirical, cuts, nil)
		best.Upper = stat.Quantile(upperPercentile, stat.Empirical, cuts, nil)
		best.HasCI = true
	}
	return best, nil
}

// bestCut runs the deterministic grid search over distinct observed values.
func bestCut(variable string, dir model.Direction, values []float64, labels []bool) (model.Threshold, error) {
	pos, neg := 0, 0
	for _, l := range labels {
		if l {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return model.Threshold{}, fmt.Errorf("variable %s: %w", variable, ErrInsufficientData)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)

	candidates := unique(sorted)
	best := model.Threshold{Variable: variable, Direction: dir, Youden: math.Inf(-1)}

	for _, cut := range candidates {
		tp, tn := 0, 0
		for i, v := range values {
			predicted := v > cut
			if dir == model.Below {
				predicted = v < cut
			}
			switch {
			case predicted && labels[i]:
				tp++
			case !predicted && !labels[i]:
				tn++
			}
		}
		sens := float64(tp) / float64(pos)
		spec := float64(tn) / float64(neg)
		youden := sens + spec - 1

		if better(youden, cut, best.Youden, best.Cut, median) {
			best.Cut = cut
			best.Sensitivity = sens
			best.Specificity = spec
			best.Youden = youden
		}
	}
	return best, nil
}

// better prefers a higher Youden index, then the cut nearest the median,
// then the smaller cut.
func better(j, cut, bestJ, bestCut, median float64) bool {
	if j != bestJ {
		return j > bestJ
	}
	d, bd := math.Abs(cut-median), math.Abs(bestCut-median)
	if d != bd {
		return d < bd
	}
	return cut < bestCut
}

// unique collapses a sorted slice to its distinct values.
func unique(sorted []float64) []float64 {
	out := sorted[:0:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}
