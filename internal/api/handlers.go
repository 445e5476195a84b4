package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/edkuperman/cronzimus/internal/scheduler"
)

// SchedulerView is the read-only part of the scheduler the API exposes.
type SchedulerView interface {
	Running() bool
	Entries() []scheduler.EntryInfo
	Entry(id string) (scheduler.EntryInfo, bool)
}

// Handlers wires up all API endpoints.
type Handlers struct {
	sched SchedulerView
}

func NewHandlers(sched SchedulerView) *Handlers {
	return &Handlers{sched: sched}
}

// health reports liveness of the HTTP surface only. It does not inspect the
// scheduler or the database.
func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
}

// readiness reports whether the process's dependencies answer.
func (h *Handlers) readiness(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("readiness check failed")
			writeErr(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type schedulerStatus struct {
	Running bool `json:"running"`
	Jobs    int  `json:"jobs"`
}

func (h *Handlers) schedulerStatus(w http.ResponseWriter, r *http.Request) {
	if h.sched == nil {
		writeJSON(w, http.StatusOK, schedulerStatus{})
		return
	}
	writeJSON(w, http.StatusOK, schedulerStatus{
		Running: h.sched.Running(),
		Jobs:    len(h.sched.Entries()),
	})
}

func (h *Handlers) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.EntryInfo{}
	if h.sched != nil {
		jobs = append(jobs, h.sched.Entries()...)
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *Handlers) getJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.sched == nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("job %q not found", id))
		return
	}
	info, ok := h.sched.Entry(id)
	if !ok {
		hlog.FromRequest(r).Debug().Str("job_id", id).Msg("job lookup missed")
		writeErr(w, http.StatusNotFound, fmt.Errorf("job %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
