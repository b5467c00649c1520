// Package cohort holds immutable subject collections and the landmark
// builder used to remove immortal-time bias.
//
// Conventions:
// - A Cohort is sealed at construction; accessors return copies.
// - Per-subject defects exclude the subject with a counted reason and never
//   fail the whole load; schema-level defects are fatal.
package cohort

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/clinstat/trs/internal/domain/model"
	"github.com/clinstat/trs/pkg/logger"
)

// Default cohort configuration constants.
const (
	defaultMaxMissing = 2 // covariates that may be absent before exclusion
)

// Schema names the covariates every subject must be able to carry.
type Schema struct {
	Numeric []string
	Boolean []string
}

// Covariates returns the total number of covariates in the schema.
func (s Schema) Covariates() int { return len(s.Numeric) + len(s.Boolean) }

// Exclusion records why a subject was dropped during construction.
type Exclusion struct {
	SubjectID string
	Reason    string
}

// Cohort is an ordered, immutable collection of subjects sharing a schema.
// For a landmark cohort, Day reports the landmark day and times are relative
// to it; the full cohort has Day zero.
type Cohort struct {
	subjects []model.Subject
	schema   Schema
	day      float64
}

// Option applies a configuration option to cohort construction.
type Option func(*builder)

type builder struct {
	maxMissing int
	specs      []model.VariableSpec
	log        logger.Logger
}

// WithMaxMissing sets how many covariates a subject may lack before it is
// excluded.
func WithMaxMissing(n int) Option {
	return func(b *builder) {
		if n >= 0 {
			b.maxMissing = n
		}
	}
}

// WithVariableSpecs enables plausible-range warnings for numeric covariates.
func WithVariableSpecs(specs []model.VariableSpec) Option {
	return func(b *builder) {
		b.specs = specs
	}
}

// WithLogger sets a custom logger for construction diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(b *builder) {
		if log != nil {
			b.log = log
		}
	}
}

// New validates and seals a cohort. Subjects with non-positive times or too
// many missing covariates are excluded and reported; duplicate subject IDs
// and an empty retained cohort are fatal.
func New(ctx context.Context, subjects []model.Subject, schema Schema, opts ...Option) (*Cohort, []Exclusion, error) {
	b := &builder{
		maxMissing: defaultMaxMissing,
		log:        logger.Get().Named("cohort"),
	}
	for _, opt := range opts {
		opt(b)
	}

	seen := make(map[string]struct{}, len(subjects))
	retained := make([]model.Subject, 0, len(subjects))
	var excluded []Exclusion

	for i := range subjects {
		s := subjects[i]
		if s.ID == "" {
			return nil, nil, fmt.Errorf("subject %d: %w", i, ErrMissingSubjectID)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, nil, fmt.Errorf("subject %q: %w", s.ID, ErrDuplicateSubject)
		}
		seen[s.ID] = struct{}{}

		if s.TimeToEvent <= 0 {
			excluded = append(excluded, Exclusion{
				SubjectID: s.ID,
				Reason:    fmt.Sprintf("non-positive time_to_event %g", s.TimeToEvent),
			})
			continue
		}

		missing := countMissing(&s, schema)
		if missing > b.maxMissing {
			excluded = append(excluded, Exclusion{
				SubjectID: s.ID,
				Reason:    fmt.Sprintf("%d missing covariates (max %d)", missing, b.maxMissing),
			})
			continue
		}

		b.warnOutOfRange(ctx, &s)
		retained = append(retained, s)
	}

	for _, ex := range excluded {
		b.log.Warn(ctx, "subject excluded",
			logger.String("subjectID", ex.SubjectID),
			logger.String("reason", ex.Reason),
		)
	}

	if len(retained) == 0 {
		return nil, excluded, ErrEmptyCohort
	}

	return &Cohort{subjects: retained, schema: schema}, excluded, nil
}

func countMissing(s *model.Subject, schema Schema) int {
	missing := 0
	for _, name := range schema.Numeric {
		if !s.HasNumeric(name) {
			missing++
		}
	}
	for _, name := range schema.Boolean {
		if !s.HasBoolean(name) {
			missing++
		}
	}
	return missing
}

func (b *builder) warnOutOfRange(ctx context.Context, s *model.Subject) {
	for i := range b.specs {
		spec := &b.specs[i]
		v, ok := s.Numeric[spec.Name]
		if ok && !spec.InRange(v) {
			b.log.Warn(ctx, "covariate outside plausible range",
				logger.String("subjectID", s.ID),
				logger.String("variable", spec.Name),
				logger.Float64("value", v),
			)
		}
	}
}

// Len returns the number of subjects.
func (c *Cohort) Len() int { return len(c.subjects) }

// Day returns the landmark day this cohort is conditioned on (0 for none).
func (c *Cohort) Day() float64 { return c.day }

// Schema returns the covariate schema.
func (c *Cohort) Schema() Schema { return c.schema }

// At returns the i-th subject by value. Covariate maps are shared and must
// be treated as read-only.
func (c *Cohort) At(i int) model.Subject { return c.subjects[i] }

// Times returns a copy of all time-to-event values in subject order.
func (c *Cohort) Times() []float64 {
	out := make([]float64, len(c.subjects))
	for i := range c.subjects {
		out[i] = c.subjects[i].TimeToEvent
	}
	return out
}

// Events returns a copy of all event indicators in subject order.
func (c *Cohort) Events() []bool {
	out := make([]bool, len(c.subjects))
	for i := range c.subjects {
		out[i] = c.subjects[i].Event
	}
	return out
}

// NumericValues returns the named covariate with a parallel presence mask.
func (c *Cohort) NumericValues(name string) (values []float64, present []bool) {
	values = make([]float64, len(c.subjects))
	present = make([]bool, len(c.subjects))
	for i := range c.subjects {
		values[i], present[i] = c.subjects[i].Numeric[name]
	}
	return values, present
}

// Resample draws a bootstrap sample of the same size with replacement. The
// result is an independently owned cohort suitable for iteration-local use.
func (c *Cohort) Resample(rng *rand.Rand) *Cohort {
	n := len(c.subjects)
	drawn := make([]model.Subject, n)
	for i := 0; i < n; i++ {
		drawn[i] = c.subjects[rng.Intn(n)]
	}
	return &Cohort{subjects: drawn, schema: c.schema, day: c.day}
}
