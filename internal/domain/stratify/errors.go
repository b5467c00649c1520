package stratify

import "errors"

// Sentinel kinds for stratification errors.
var (
	ErrInvalidPartition = errors.New("risk categories do not tile the score range")
)
