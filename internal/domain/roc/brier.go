package roc

import "fmt"

// Brier computes the Brier score at a horizon: the mean squared difference
// between predicted event probabilities and the observed outcome. Subjects
// censored before the horizon without an event are excluded, matching the
// case/control partition used for the ROC. Lower is better; 0.25 is the
// score of a coin flip.
func Brier(predicted []float64, times []float64, events []bool, horizon float64) (float64, error) {
	n := len(predicted)
	if len(times) != n || len(events) != n {
		return 0, fmt.Errorf("predicted (%d), times (%d) and events (%d) differ in length",
			n, len(times), len(events))
	}

	sum, count := 0.0, 0
	for i := range predicted {
		var outcome float64
		switch {
		case times[i] <= horizon && events[i]:
			outcome = 1
		case times[i] > horizon:
			outcome = 0
		default:
			continue
		}
		d := predicted[i] - outcome
		sum += d * d
		count++
	}
	if count == 0 {
		return 0, fmt.Errorf("horizon %g: no evaluable subjects: %w", horizon, ErrNonEvaluable)
	}
	return sum / float64(count), nil
}
