package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateJob is returned when two records share an id. Duplicates
	// are rejected, never replaced.
	ErrDuplicateJob = errors.New("scheduler: duplicate job id")

	ErrNilFunc            = errors.New("scheduler: nil job function")
	ErrNilTrigger         = errors.New("scheduler: nil trigger")
	ErrUnsupportedTrigger = errors.New("scheduler: unsupported trigger")
	ErrInvalidSchedule    = errors.New("scheduler: invalid schedule")
)

// RegistrationError reports the job the engine refused. It aborts Start.
type RegistrationError struct {
	JobID string
	Err   error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("scheduler: register job %q: %v", e.JobID, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }
