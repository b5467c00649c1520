package bootstrap

import "errors"

// Sentinel kinds for bootstrap errors.
var (
	// ErrUnstableBootstrap signals that too many iterations were skipped:
	// the cohort is too small or the outcome too rare for reliable
	// resampling inference.
	ErrUnstableBootstrap = errors.New("bootstrap skip-rate tolerance exceeded")
)
