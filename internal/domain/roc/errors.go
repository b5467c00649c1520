package roc

import "errors"

// Sentinel kinds for discrimination-metric errors.
var (
	ErrNonEvaluable = errors.New("metric not evaluable: an outcome class is empty")
)
