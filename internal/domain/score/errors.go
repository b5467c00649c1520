package score

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrMissingCovariate = errors.New("required covariate missing")
)
