// Package stratify buckets integer scores into ordinal risk categories and
// reports per-category outcomes, adjacent odds ratios, and calibration.
package stratify

import (
	"fmt"
	"math"
	"sort"

	"github.com/clinstat/trs/internal/domain/model"
)

// Statistical constants.
const (
	z95 = 1.959964 // two-sided 95% normal quantile

	// Haldane-Anscombe correction applied when any contingency cell is zero.
	continuityCorrection = 0.5
)

// CategorySummary reports outcomes for one risk category. Count includes
// every scored subject in the range; EventRate is computed over evaluable
// subjects only (cases and controls at the horizon).
type CategorySummary struct {
	Category  model.RiskCategory
	Count     int
	Evaluable int
	Events    int
	EventRate float64
}

// OddsRatio compares an adjacent category pair (higher vs lower) with a 95%
// confidence interval from the standard log-odds approximation.
type OddsRatio struct {
	LowerCategory  string
	HigherCategory string
	Value          float64
	CILower        float64
	CIUpper        float64
	Corrected      bool // a zero cell required the continuity correction
}

// Summary is the full stratification table for one cohort and horizon.
type Summary struct {
	Horizon      float64
	Categories   []CategorySummary
	AdjacentOdds []OddsRatio
}

// ValidatePartition checks that the categories tile [0, maxScore] exactly:
// ordered, no gaps, no overlaps. The partition is configuration; a defect
// here is fatal and never silently repaired.
func ValidatePartition(cats []model.RiskCategory, maxScore int) error {
	if len(cats) == 0 {
		return fmt.Errorf("no categories: %w", ErrInvalidPartition)
	}
	next := 0
	for _, c := range cats {
		if c.Hi < c.Lo {
			return fmt.Errorf("category %q range [%d,%d] is inverted: %w", c.Name, c.Lo, c.Hi, ErrInvalidPartition)
		}
		if c.Lo != next {
			return fmt.Errorf("category %q starts at %d, expected %d: %w", c.Name, c.Lo, next, ErrInvalidPartition)
		}
		next = c.Hi + 1
	}
	if next != maxScore+1 {
		return fmt.Errorf("categories end at %d, expected max score %d: %w", next-1, maxScore, ErrInvalidPartition)
	}
	return nil
}

// Stratify validates the partition and assembles the per-category outcome
// table with adjacent odds ratios. Subjects censored before the horizon
// without an event count toward Count but not toward rates.
func Stratify(cats []model.RiskCategory, maxScore int, scores []int, times []float64, events []bool, horizon float64) (Summary, error) {
	if err := ValidatePartition(cats, maxScore); err != nil {
		return Summary{}, err
	}
	if len(scores) != len(times) || len(scores) != len(events) {
		return Summary{}, fmt.Errorf("scores (%d), times (%d) and events (%d) differ in length",
			len(scores), len(times), len(events))
	}

	sum := Summary{Horizon: horizon, Categories: make([]CategorySummary, len(cats))}
	for i, c := range cats {
		sum.Categories[i] = CategorySummary{Category: c}
	}

	for i, s := range scores {
		if s < 0 || s > maxScore {
			return Summary{}, fmt.Errorf("score %d outside [0,%d]", s, maxScore)
		}
		ci := categoryIndex(cats, s)
		cs := &sum.Categories[ci]
		cs.Count++
		switch {
		case times[i] <= horizon && events[i]:
			cs.Evaluable++
			cs.Events++
		case times[i] > horizon:
			cs.Evaluable++
		}
	}
	for i := range sum.Categories {
		cs := &sum.Categories[i]
		if cs.Evaluable > 0 {
			cs.EventRate = float64(cs.Events) / float64(cs.Evaluable)
		}
	}

	for i := 0; i+1 < len(sum.Categories); i++ {
		lo, hi := &sum.Categories[i], &sum.Categories[i+1]
		sum.AdjacentOdds = append(sum.AdjacentOdds, oddsRatio(lo, hi))
	}
	return sum, nil
}

func categoryIndex(cats []model.RiskCategory, score int) int {
	for i := range cats {
		if cats[i].Contains(score) {
			return i
		}
	}
	// Unreachable once the partition is validated.
	return len(cats) - 1
}

// oddsRatio computes the higher-vs-lower odds ratio for an adjacent pair with
// a log-odds 95% CI.
func oddsRatio(lo, hi *CategorySummary) OddsRatio {
	a := float64(hi.Events)
	b := float64(hi.Evaluable - hi.Events)
	c := float64(lo.Events)
	d := float64(lo.Evaluable - lo.Events)

	or := OddsRatio{LowerCategory: lo.Category.Name, HigherCategory: hi.Category.Name}
	if a == 0 || b == 0 || c == 0 || d == 0 {
		a += continuityCorrection
		b += continuityCorrection
		c += continuityCorrection
		d += continuityCorrection
		or.Corrected = true
	}

	or.Value = (a / b) / (c / d)
	se := math.Sqrt(1/a + 1/b + 1/c + 1/d)
	or.CILower = math.Exp(math.Log(or.Value) - z95*se)
	or.CIUpper = math.Exp(math.Log(or.Value) + z95*se)
	return or
}

// RiskByScore maps each observed score value to the empirical event rate at
// the horizon among evaluable subjects with that score. Used to turn the
// integer score into a predicted probability for Brier and calibration.
func RiskByScore(scores []int, times []float64, events []bool, horizon float64) (map[int]float64, error) {
	if len(scores) != len(times) || len(scores) != len(events) {
		return nil, fmt.Errorf("scores (%d), times (%d) and events (%d) differ in length",
			len(scores), len(times), len(events))
	}
	cases := make(map[int]int)
	evaluable := make(map[int]int)
	for i, s := range scores {
		switch {
		case times[i] <= horizon && events[i]:
			cases[s]++
			evaluable[s]++
		case times[i] > horizon:
			evaluable[s]++
		}
	}
	out := make(map[int]float64, len(evaluable))
	for s, n := range evaluable {
		out[s] = float64(cases[s]) / float64(n)
	}
	return out, nil
}

// CalibrationBin is one observed-vs-expected group in the calibration table.
type CalibrationBin struct {
	N             int
	MeanPredicted float64
	ObservedRate  float64
}

// Calibration groups evaluable subjects into bins of ascending predicted
// risk (Hosmer-Lemeshow style) and reports observed against expected rates.
func Calibration(predicted []float64, times []float64, events []bool, horizon float64, bins int) ([]CalibrationBin, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("bins %d must be positive", bins)
	}
	if len(predicted) != len(times) || len(predicted) != len(events) {
		return nil, fmt.Errorf("predicted (%d), times (%d) and events (%d) differ in length",
			len(predicted), len(times), len(events))
	}

	type obs struct {
		p float64
		y float64
	}
	var rows []obs
	for i := range predicted {
		switch {
		case times[i] <= horizon && events[i]:
			rows = append(rows, obs{predicted[i], 1})
		case times[i] > horizon:
			rows = append(rows, obs{predicted[i], 0})
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("horizon %g: no evaluable subjects", horizon)
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].p < rows[b].p })

	if bins > len(rows) {
		bins = len(rows)
	}
	out := make([]CalibrationBin, 0, bins)
	for b := 0; b < bins; b++ {
		start := b * len(rows) / bins
		end := (b + 1) * len(rows) / bins
		if start == end {
			continue
		}
		var sp, sy float64
		for _, r := range rows[start:end] {
			sp += r.p
			sy += r.y
		}
		n := end - start
		out = append(out, CalibrationBin{
			N:             n,
			MeanPredicted: sp / float64(n),
			ObservedRate:  sy / float64(n),
		})
	}
	return out, nil
}
