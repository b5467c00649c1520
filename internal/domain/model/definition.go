package model

import (
	"encoding/json"
	"fmt"
)

// ComponentKind distinguishes threshold predicates from boolean covariates.
type ComponentKind int

// Score component kinds.
const (
	ThresholdComponent ComponentKind = iota
	BooleanComponent
)

// Component is one scored predicate: a threshold over a continuous variable
// or a boolean covariate, worth a fixed number of points when satisfied.
type Component struct {
	Name      string
	Kind      ComponentKind
	Threshold Threshold // valid when Kind == ThresholdComponent
	Variable  string    // boolean covariate name when Kind == BooleanComponent
	Points    int
}

// ScoreDefinition is an ordered, immutable list of scored components. The
// maximum achievable score is derived once at construction from the same
// table used to award points; every consumer displaying "out of N" must read
// it from MaxScore.
type ScoreDefinition struct {
	components []Component
	maxScore   int
}

// NewScoreDefinition builds a definition and derives the maximum score.
func NewScoreDefinition(components []Component) (*ScoreDefinition, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("score definition needs at least one component")
	}
	maxScore := 0
	seen := make(map[string]struct{}, len(components))
	for i := range components {
		c := &components[i]
		if c.Name == "" {
			return nil, fmt.Errorf("component %d has no name", i)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("duplicate component %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Points <= 0 {
			return nil, fmt.Errorf("component %q has non-positive points %d", c.Name, c.Points)
		}
		if c.Kind == BooleanComponent && c.Variable == "" {
			return nil, fmt.Errorf("boolean component %q names no covariate", c.Name)
		}
		if c.Kind == ThresholdComponent && c.Threshold.Variable == "" {
			return nil, fmt.Errorf("threshold component %q names no variable", c.Name)
		}
		maxScore += c.Points
	}
	cp := make([]Component, len(components))
	copy(cp, components)
	return &ScoreDefinition{components: cp, maxScore: maxScore}, nil
}

// Components returns a copy of the ordered component table.
func (d *ScoreDefinition) Components() []Component {
	cp := make([]Component, len(d.components))
	copy(cp, d.components)
	return cp
}

// Len returns the number of components.
func (d *ScoreDefinition) Len() int { return len(d.components) }

// At returns the i-th component.
func (d *ScoreDefinition) At(i int) Component { return d.components[i] }

// MaxScore is the single canonical maximum: the sum of all component points.
func (d *ScoreDefinition) MaxScore() int { return d.maxScore }

// MarshalJSON exposes the component table and derived maximum in reports.
func (d *ScoreDefinition) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Components []Component `json:"components"`
		MaxScore   int         `json:"max_score"`
	}{d.Components(), d.maxScore})
}
