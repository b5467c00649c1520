package cohort

import "errors"

// Sentinel kinds for cohort errors.
var (
	ErrEmptyCohort      = errors.New("no subjects retained")
	ErrDuplicateSubject = errors.New("duplicate subject id")
	ErrMissingSubjectID = errors.New("missing subject id")
	ErrNoSurvivors      = errors.New("no subjects at risk at landmark day")
)
