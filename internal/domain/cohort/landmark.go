package cohort

import (
	"fmt"

	"github.com/clinstat/trs/internal/domain/model"
)

// Landmark conditions a cohort on survival to the given day: only subjects
// with time_to_event strictly beyond the day are retained, and each retained
// subject's clock is restarted at the landmark. A subject whose event
// occurred before the day can therefore never contribute follow-up, which is
// what removes immortal-time bias.
//
// Each call returns an independently owned cohort; calls for different days
// share nothing mutable.
func Landmark(c *Cohort, day float64) (*Cohort, error) {
	if day < 0 {
		return nil, fmt.Errorf("landmark day %g must not be negative", day)
	}

	retained := make([]model.Subject, 0, c.Len())
	for i := range c.subjects {
		s := c.subjects[i]
		if s.TimeToEvent <= day {
			continue
		}
		// The filter guarantees any observed event lies after the landmark,
		// so the indicator carries over to the shifted origin unchanged.
		s.TimeToEvent -= day
		retained = append(retained, s)
	}

	if len(retained) == 0 {
		return nil, fmt.Errorf("landmark day %g: %w", day, ErrNoSurvivors)
	}

	return &Cohort{subjects: retained, schema: c.schema, day: day}, nil
}
