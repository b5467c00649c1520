// Package survival provides the Kaplan-Meier product-limit estimator used
// for per-category survival reporting.
package survival

import (
	"fmt"
	"sort"
)

// Curve is a right-continuous step function S(t). Times are the distinct
// event times in ascending order; Survival, AtRisk and Events are parallel.
type Curve struct {
	Times    []float64
	Survival []float64
	AtRisk   []int
	Events   []int
}

// KaplanMeier estimates the survival function from right-censored data.
// Censored subjects leave the risk set at their censoring time without
// contributing an event.
func KaplanMeier(times []float64, events []bool) (Curve, error) {
	n := len(times)
	if n == 0 {
		return Curve{}, fmt.Errorf("no subjects")
	}
	if len(events) != n {
		return Curve{}, fmt.Errorf("times (%d) and events (%d) differ in length", n, len(events))
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return times[order[a]] < times[order[b]] })

	var curve Curve
	surv := 1.0
	atRisk := n
	i := 0
	for i < n {
		t := times[order[i]]
		deaths, leaving := 0, 0
		for i < n && times[order[i]] == t {
			if events[order[i]] {
				deaths++
			}
			leaving++
			i++
		}
		if deaths > 0 {
			surv *= 1 - float64(deaths)/float64(atRisk)
			curve.Times = append(curve.Times, t)
			curve.Survival = append(curve.Survival, surv)
			curve.AtRisk = append(curve.AtRisk, atRisk)
			curve.Events = append(curve.Events, deaths)
		}
		atRisk -= leaving
	}
	return curve, nil
}

// At evaluates the step function at time t. Before the first event time the
// estimate is 1.
func (c *Curve) At(t float64) float64 {
	s := 1.0
	for i, ti := range c.Times {
		if ti > t {
			break
		}
		s = c.Survival[i]
	}
	return s
}
