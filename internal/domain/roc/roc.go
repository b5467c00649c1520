// Package roc computes time-dependent discrimination metrics for censored
// outcomes: ROC curves and AUC at a prediction horizon, Harrell's
// concordance index, and the Brier score.
package roc

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/integrate"
)

// Result is the ROC curve for one (landmark, horizon) pair. Thresholds are
// descending; Sensitivity and Specificity are parallel to them. Immutable
// once returned.
type Result struct {
	Horizon     float64
	Thresholds  []float64
	Sensitivity []float64
	Specificity []float64
	AUC         float64

	Cases    int
	Controls int
	// Excluded counts subjects censored before the horizon without an
	// event: neither confirmed case nor valid control.
	Excluded int
}

// Compute partitions subjects at the horizon and evaluates sensitivity and
// specificity at every distinct score value. Cases are subjects with an
// observed event at or before the horizon; controls are subjects still at
// risk beyond it. An empty class makes the pair non-evaluable and returns an
// error wrapping ErrNonEvaluable rather than AUC = 0.
func Compute(scores []int, times []float64, events []bool, horizon float64) (Result, error) {
	if len(scores) != len(times) || len(scores) != len(events) {
		return Result{}, fmt.Errorf("scores (%d), times (%d) and events (%d) differ in length",
			len(scores), len(times), len(events))
	}
	if horizon <= 0 {
		return Result{}, fmt.Errorf("horizon %g must be positive", horizon)
	}

	var caseScores, controlScores []int
	excluded := 0
	for i := range scores {
		switch {
		case times[i] <= horizon && events[i]:
			caseScores = append(caseScores, scores[i])
		case times[i] > horizon:
			controlScores = append(controlScores, scores[i])
		default:
			excluded++
		}
	}
	if len(caseScores) == 0 || len(controlScores) == 0 {
		return Result{}, fmt.Errorf("horizon %g: %d cases, %d controls: %w",
			horizon, len(caseScores), len(controlScores), ErrNonEvaluable)
	}

	res := Result{
		Horizon:  horizon,
		Cases:    len(caseScores),
		Controls: len(controlScores),
		Excluded: excluded,
	}

	// Descending thresholds over distinct scores, with a leading threshold
	// above the maximum so the curve starts at (0, 0).
	for _, c := range descendingThresholds(scores) {
		tp, tn := 0, 0
		for _, s := range caseScores {
			if float64(s) >= c {
				tp++
			}
		}
		for _, s := range controlScores {
			if float64(s) < c {
				tn++
			}
		}
		res.Thresholds = append(res.Thresholds, c)
		res.Sensitivity = append(res.Sensitivity, float64(tp)/float64(len(caseScores)))
		res.Specificity = append(res.Specificity, float64(tn)/float64(len(controlScores)))
	}

	// Trapezoid over (1-specificity, sensitivity); descending thresholds
	// give ascending false-positive rates.
	fpr := make([]float64, len(res.Thresholds))
	for i, sp := range res.Specificity {
		fpr[i] = 1 - sp
	}
	res.AUC = integrate.Trapezoidal(fpr, res.Sensitivity)
	return res, nil
}

// descendingThresholds returns the distinct score values high to low, led by
// max+1.
func descendingThresholds(scores []int) []float64 {
	distinct := make(map[int]struct{}, len(scores))
	for _, s := range scores {
		distinct[s] = struct{}{}
	}
	out := make([]float64, 0, len(distinct)+1)
	for s := range distinct {
		out = append(out, float64(s))
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return append([]float64{out[0] + 1}, out...)
}
