package loader

import "errors"

// Sentinel kinds for loader errors.
var (
	ErrMissingColumn = errors.New("required column missing from header")
	ErrBadValue      = errors.New("cell could not be parsed")
)
