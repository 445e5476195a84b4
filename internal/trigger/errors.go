package trigger

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidType matches any *InvalidTypeError.
	ErrInvalidType = errors.New("trigger: invalid trigger type")

	// ErrInvalidParams is returned when a parameter mapping does not fit the
	// trigger family it was given for.
	ErrInvalidParams = errors.New("trigger: invalid trigger parameters")
)

// InvalidTypeError reports an unrecognised trigger tag.
type InvalidTypeError struct {
	Tag string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("trigger: invalid trigger type %q", e.Tag)
}

func (e *InvalidTypeError) Is(target error) bool { return target == ErrInvalidType }

func paramErr(key, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParams, key, fmt.Sprintf(format, args...))
}
