package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/edkuperman/cronzimus/internal/trigger"
)

// intervalSchedule fires at anchor + k*period. Without an explicit start
// the anchor is one period after registration. Past End, Next returns the
// zero time, which the engine treats as "never".
type intervalSchedule struct {
	anchor time.Time
	period time.Duration
	end    time.Time
}

func newIntervalSchedule(t trigger.Interval, now time.Time) (intervalSchedule, error) {
	period := t.Period()
	if period <= 0 {
		return intervalSchedule{}, fmt.Errorf("%w: non-positive interval %s", ErrInvalidSchedule, period)
	}
	anchor := t.Start
	if anchor.IsZero() {
		anchor = now.Add(period)
	}
	return intervalSchedule{anchor: rebase(anchor, period, now), period: period, end: t.End}, nil
}

// rebase moves an anchor that lies before now forward by whole periods so
// it sits within one period of now. The step count is computed in seconds
// so anchors centuries back do not overflow time.Duration.
func rebase(anchor time.Time, period time.Duration, now time.Time) time.Time {
	if !anchor.Before(now) {
		return anchor
	}
	secs := int64(period / time.Second)
	if secs <= 0 || period%time.Second != 0 {
		// Sub-second periods only come from hand-built triggers.
		if now.Sub(anchor) < math.MaxInt64 {
			return anchor
		}
		return now
	}
	steps := (now.Unix() - anchor.Unix()) / secs
	return time.Unix(anchor.Unix()+steps*secs, int64(anchor.Nanosecond())).In(anchor.Location())
}

func (s intervalSchedule) Next(t time.Time) time.Time {
	next := s.anchor
	if !t.Before(s.anchor) {
		k := t.Sub(s.anchor)/s.period + 1
		next = s.anchor.Add(k * s.period)
	}
	if !next.After(t) {
		// Never hand the engine a time at or before t: it would fire
		// in a tight loop.
		next = t.Add(s.period)
	}
	if !s.end.IsZero() && next.After(s.end) {
		return time.Time{}
	}
	return next.In(t.Location())
}

// onceSchedule fires a single time at `at`. A run time already in the past
// at registration is never fired.
type onceSchedule struct {
	at time.Time
}

func (s onceSchedule) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at.In(t.Location())
	}
	return time.Time{}
}
