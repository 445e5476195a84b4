package job

import (
	"errors"
	"fmt"
)

// ErrInvalidDeclaration matches any *InvalidDeclarationError.
var ErrInvalidDeclaration = errors.New("job: invalid declaration")

// InvalidDeclarationError reports a declaration that cannot become a Record.
type InvalidDeclarationError struct {
	JobID  string
	Reason string
	Err    error
}

func (e *InvalidDeclarationError) Error() string {
	msg := fmt.Sprintf("job: invalid declaration %q: %s", e.JobID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidDeclarationError) Unwrap() error { return e.Err }

func (e *InvalidDeclarationError) Is(target error) bool { return target == ErrInvalidDeclaration }
