// Package score computes the integer point-sum risk score defined by a
// model.ScoreDefinition.
package score

import (
	"fmt"

	"github.com/clinstat/trs/internal/domain/cohort"
	"github.com/clinstat/trs/internal/domain/model"
)

// Default calculator configuration constants.
const (
	defaultMaxMissing = 2 // components that may be missing before the result is invalid
)

// Result is the computed score for one subject with a per-component
// breakdown. Total is always in [0, definition.MaxScore()].
type Result struct {
	SubjectID  string
	Total      int
	Components map[string]int
	Details    []string
	Warnings   []string
	Valid      bool
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithMaxMissing sets how many components may be missing before scoring
// fails. Zero makes every component required.
func WithMaxMissing(n int) Option {
	return func(c *Calculator) {
		if n >= 0 {
			c.maxMissing = n
		}
	}
}

// Calculator evaluates score definitions against subjects. It is stateless
// apart from the missing-data policy: the same definition and subject always
// produce the same integer.
type Calculator struct {
	maxMissing int
}

// NewCalculator creates a calculator with the default missing-data policy.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{maxMissing: defaultMaxMissing}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Score evaluates every component predicate and sums the awarded points.
// Missing components contribute zero points and a warning; when more than
// the configured number are missing the result is unreliable and an error
// wrapping ErrMissingCovariate is returned alongside it.
func (c *Calculator) Score(def *model.ScoreDefinition, s *model.Subject) (Result, error) {
	res := Result{
		SubjectID:  s.ID,
		Components: make(map[string]int, def.Len()),
		Valid:      true,
	}
	missing := 0

	for i := 0; i < def.Len(); i++ {
		comp := def.At(i)
		switch comp.Kind {
		case model.ThresholdComponent:
			v, ok := s.Numeric[comp.Threshold.Variable]
			if !ok {
				missing++
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s missing", comp.Name))
				continue
			}
			if comp.Threshold.Predict(v) {
				res.Components[comp.Name] = comp.Points
				res.Total += comp.Points
				res.Details = append(res.Details, fmt.Sprintf("%s %s %g (%.1f): +%d points",
					comp.Name, comp.Threshold.Direction, comp.Threshold.Cut, v, comp.Points))
			} else {
				res.Components[comp.Name] = 0
				res.Details = append(res.Details, fmt.Sprintf("%s %s %g (%.1f): +0 points",
					comp.Name, inverseOp(comp.Threshold.Direction), comp.Threshold.Cut, v))
			}
		case model.BooleanComponent:
			v, ok := s.Boolean[comp.Variable]
			if !ok {
				missing++
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s missing", comp.Name))
				continue
			}
			if v {
				res.Components[comp.Name] = comp.Points
				res.Total += comp.Points
				res.Details = append(res.Details, fmt.Sprintf("%s present: +%d points", comp.Name, comp.Points))
			} else {
				res.Components[comp.Name] = 0
				res.Details = append(res.Details, fmt.Sprintf("%s absent: +0 points", comp.Name))
			}
		}
	}

	if missing > c.maxMissing {
		res.Valid = false
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%d missing components (max %d); result unreliable", missing, c.maxMissing))
		return res, fmt.Errorf("subject %s: %d components missing: %w", s.ID, missing, ErrMissingCovariate)
	}
	return res, nil
}

// inverseOp renders the complement of a threshold predicate for detail lines.
func inverseOp(d model.Direction) string {
	if d == model.Below {
		return ">="
	}
	return "<="
}

// ScoreCohort scores every subject, returning integers aligned with the
// cohort's subject order. The first invalid subject aborts the batch.
func (c *Calculator) ScoreCohort(def *model.ScoreDefinition, co *cohort.Cohort) ([]int, error) {
	scores := make([]int, co.Len())
	for i := 0; i < co.Len(); i++ {
		s := co.At(i)
		res, err := c.Score(def, &s)
		if err != nil {
			return nil, err
		}
		scores[i] = res.Total
	}
	return scores, nil
}
