package threshold

import "errors"

// Sentinel kinds for optimizer errors.
var (
	ErrInsufficientData = errors.New("an outcome class is empty")
)
