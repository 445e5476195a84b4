// Package job turns job declarations into immutable records ready to be
// registered with the scheduler.
package job

import (
	"context"
	"slices"
	"strings"

	"github.com/edkuperman/cronzimus/internal/trigger"
)

// Func is the calling convention of every task unit. Args are the values
// bound at declaration time, passed through verbatim on each firing.
type Func func(ctx context.Context, args ...any) error

// Record is one schedulable unit.
type Record struct {
	ID      string
	Func    Func
	Trigger trigger.Trigger
	Args    []any
}

// Declaration is the tuple form a registry lists its jobs in.
type Declaration struct {
	Func   Func
	Kind   trigger.Kind
	Params trigger.Params
	ID     string
	Args   []any
}

// Create builds a Record. A bad trigger tag is returned as the
// *trigger.InvalidTypeError produced by trigger.Build, unwrapped; any other
// problem is reported as *InvalidDeclarationError.
func Create(fn Func, kind trigger.Kind, params trigger.Params, id string, args ...any) (Record, error) {
	t, err := trigger.Build(kind, params)
	if err != nil {
		if _, ok := err.(*trigger.InvalidTypeError); ok {
			return Record{}, err
		}
		return Record{}, &InvalidDeclarationError{JobID: id, Reason: "invalid trigger parameters", Err: err}
	}

	if strings.TrimSpace(id) == "" {
		return Record{}, &InvalidDeclarationError{JobID: id, Reason: "empty id"}
	}
	if fn == nil {
		return Record{}, &InvalidDeclarationError{JobID: id, Reason: "nil function"}
	}

	return Record{
		ID:      id,
		Func:    fn,
		Trigger: t,
		Args:    slices.Clone(args),
	}, nil
}

// FromDeclaration is Create applied to a Declaration.
func FromDeclaration(d Declaration) (Record, error) {
	return Create(d.Func, d.Kind, d.Params, d.ID, d.Args...)
}

// Run invokes the record's function with its bound arguments.
func (r Record) Run(ctx context.Context) error {
	return r.Func(ctx, r.Args...)
}
