// Package model contains domain records passed between layers.
package model

// Direction indicates which side of a cut-point predicts the event.
type Direction int

// Threshold directions.
const (
	// Above predicts the event when value > cut (e.g. MELD).
	Above Direction = iota
	// Below predicts the event when value < cut (e.g. platelets).
	Below
)

// String returns the comparison operator for the direction.
func (d Direction) String() string {
	if d == Below {
		return "<"
	}
	return ">"
}

// Subject is a single cohort member. Covariates are split by type so the
// schema can be validated once at load time; a covariate absent from both
// maps is missing.
type Subject struct {
	ID          string
	Numeric     map[string]float64
	Boolean     map[string]bool
	TimeToEvent float64 // strictly positive
	Event       bool    // true if the event was observed, false if censored
}

// HasNumeric reports whether the named numeric covariate is present.
func (s *Subject) HasNumeric(name string) bool {
	_, ok := s.Numeric[name]
	return ok
}

// HasBoolean reports whether the named boolean covariate is present.
func (s *Subject) HasBoolean(name string) bool {
	_, ok := s.Boolean[name]
	return ok
}

// Threshold is an optimal cut-point for one continuous variable, produced by
// the threshold optimizer and read-only afterward.
type Threshold struct {
	Variable    string
	Cut         float64
	Direction   Direction
	Sensitivity float64
	Specificity float64
	Youden      float64

	// Bootstrap confidence bounds for the cut-point, valid when HasCI is set.
	Lower float64
	Upper float64
	HasCI bool
}

// Predict evaluates the threshold predicate against a value.
func (t *Threshold) Predict(value float64) bool {
	if t.Direction == Below {
		return value < t.Cut
	}
	return value > t.Cut
}

// VariableSpec documents a continuous covariate: unit and plausible range.
// Values outside the range are flagged at load time, not rejected.
type VariableSpec struct {
	Name        string
	Unit        string
	Min         float64
	Max         float64
	Description string
}

// InRange reports whether a value lies inside the plausible range.
func (v *VariableSpec) InRange(x float64) bool {
	return x >= v.Min && x <= v.Max
}

// RiskCategory is one named ordinal bucket of the score range. The set of
// categories in use must tile [0, MaxScore] with no gaps or overlaps.
type RiskCategory struct {
	Name string
	Lo   int // inclusive
	Hi   int // inclusive

	// Clinical metadata carried through to reporting.
	Description    string
	Recommendation string
	MortalityRate  float64 // reference event rate from the derivation study
}

// Contains reports whether a score falls in this category.
func (c *RiskCategory) Contains(score int) bool {
	return score >= c.Lo && score <= c.Hi
}
