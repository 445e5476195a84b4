// Package schedule is the job registry: the fixed list of jobs this process
// runs, materialised into records once at startup.
package schedule

import (
	"slices"

	"github.com/edkuperman/cronzimus/internal/db"
	"github.com/edkuperman/cronzimus/internal/job"
	"github.com/edkuperman/cronzimus/internal/tasks"
	"github.com/edkuperman/cronzimus/internal/trigger"
)

// Deps are the shared dependencies bound into job arguments. The registry
// borrows them; bootstrap owns their lifetime.
type Deps struct {
	DB *db.Database
}

// Declarations lists every job of the process, in registration order.
//
// Examples of the other trigger families:
//
//	{Kind: trigger.KindDate, Params: trigger.Params{"run_at": someTime}}
//	{Kind: trigger.KindCron, Params: trigger.Params{"second": "0-59/10"}}
func Declarations(deps Deps) []job.Declaration {
	return []job.Declaration{
		{
			Func:   tasks.Sample,
			Kind:   trigger.KindInterval,
			Params: trigger.Params{"seconds": 5},
			ID:     "sample_task",
			Args:   []any{deps.DB},
		},
	}
}

// Registry is an ordered, read-only set of job records.
type Registry struct {
	jobs []job.Record
}

// New builds the registry from Declarations.
func New(deps Deps) (*Registry, error) {
	return NewFromDeclarations(Declarations(deps))
}

// NewFromDeclarations builds a registry from decls. The first invalid or
// duplicate declaration fails the whole registry.
func NewFromDeclarations(decls []job.Declaration) (*Registry, error) {
	seen := make(map[string]struct{}, len(decls))
	jobs := make([]job.Record, 0, len(decls))
	for _, d := range decls {
		rec, err := job.FromDeclaration(d)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, &job.InvalidDeclarationError{JobID: rec.ID, Reason: "duplicate id"}
		}
		seen[rec.ID] = struct{}{}
		jobs = append(jobs, rec)
	}
	return &Registry{jobs: jobs}, nil
}

// Jobs returns a copy of the records in declaration order. Each record's
// Args slice is copied too; the argument values themselves are shared.
func (r *Registry) Jobs() []job.Record {
	out := slices.Clone(r.jobs)
	for i := range out {
		out[i].Args = slices.Clone(out[i].Args)
	}
	return out
}

// Lookup returns the record with the given id.
func (r *Registry) Lookup(id string) (job.Record, bool) {
	for _, rec := range r.jobs {
		if rec.ID == id {
			rec.Args = slices.Clone(rec.Args)
			return rec, true
		}
	}
	return job.Record{}, false
}

// Len returns the number of records.
func (r *Registry) Len() int { return len(r.jobs) }
