package scheduler

import (
	"time"

	"github.com/edkuperman/cronzimus/internal/trigger"
)

// EntryInfo describes one registered job.
type EntryInfo struct {
	ID          string       `json:"id"`
	TriggerKind trigger.Kind `json:"trigger_kind"`
	Trigger     string       `json:"trigger"`
	Args        int          `json:"args"`
	NextRun     *time.Time   `json:"next_run_time"`
	PrevRun     *time.Time   `json:"prev_run_time"`
}

// Entries lists registered jobs in registration order.
func (s *Scheduler) Entries() []EntryInfo {
	out := make([]EntryInfo, 0, len(s.records))
	for _, rec := range s.records {
		info, _ := s.Entry(rec.ID)
		out = append(out, info)
	}
	return out
}

// Entry returns the job registered under id.
func (s *Scheduler) Entry(id string) (EntryInfo, bool) {
	eid, ok := s.entries[id]
	if !ok {
		return EntryInfo{}, false
	}
	var info EntryInfo
	for _, rec := range s.records {
		if rec.ID == id {
			info = EntryInfo{
				ID:          rec.ID,
				TriggerKind: rec.Trigger.Kind(),
				Trigger:     rec.Trigger.String(),
				Args:        len(rec.Args),
			}
			break
		}
	}

	e := s.cron.Entry(eid)
	// The engine only keeps next/prev fresh while it is running.
	if s.Running() {
		info.NextRun = timePtr(e.Next)
	}
	info.PrevRun = timePtr(e.Prev)
	return info, true
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
