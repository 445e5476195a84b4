// Package trigger describes when a job fires. A Trigger is one of three
// closed families (interval, date, cron) and carries only plain data; the
// scheduler package translates it into engine-native schedules.
package trigger

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Kind is the routing tag of a trigger family.
type Kind string

const (
	KindInterval Kind = "interval"
	KindDate     Kind = "date"
	KindCron     Kind = "cron"
)

// Kinds lists every supported trigger family.
func Kinds() []Kind { return []Kind{KindInterval, KindDate, KindCron} }

// ParseKind maps a raw tag to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindInterval, KindDate, KindCron:
		return k, nil
	default:
		return "", &InvalidTypeError{Tag: s}
	}
}

// Trigger is implemented by Interval, Date and Cron only.
type Trigger interface {
	Kind() Kind
	String() string
	sealed()
}

// Interval fires every Period(), anchored at Start when set.
type Interval struct {
	Weeks   int
	Days    int
	Hours   int
	Minutes int
	Seconds int
	Start   time.Time
	End     time.Time
}

func (Interval) Kind() Kind { return KindInterval }
func (Interval) sealed()    {}

// Period returns the total interval length, or 0 when a component is
// negative or the sum does not fit in a time.Duration.
func (t Interval) Period() time.Duration {
	d, err := t.period()
	if err != nil {
		return 0
	}
	return d
}

// period sums the components, reporting the first one that overflows.
func (t Interval) period() (time.Duration, error) {
	parts := []struct {
		key  string
		n    int
		unit time.Duration
	}{
		{"weeks", t.Weeks, 7 * 24 * time.Hour},
		{"days", t.Days, 24 * time.Hour},
		{"hours", t.Hours, time.Hour},
		{"minutes", t.Minutes, time.Minute},
		{"seconds", t.Seconds, time.Second},
	}

	var total time.Duration
	for _, p := range parts {
		if p.n < 0 {
			return 0, paramErr(p.key, "must not be negative")
		}
		if int64(p.n) > math.MaxInt64/int64(p.unit) {
			return 0, paramErr(p.key, "value %d overflows the interval", p.n)
		}
		d := time.Duration(p.n) * p.unit
		if total > math.MaxInt64-d {
			return 0, paramErr(p.key, "interval total overflows")
		}
		total += d
	}
	return total, nil
}

func (t Interval) String() string {
	return fmt.Sprintf("interval[%s]", t.Period())
}

// Date fires exactly once at RunAt.
type Date struct {
	RunAt time.Time
}

func (Date) Kind() Kind { return KindDate }
func (Date) sealed()    {}

func (t Date) String() string {
	return fmt.Sprintf("date[%s]", t.RunAt.Format(time.RFC3339))
}

// Cron is a calendar schedule. Field syntax follows robfig/cron, where
// day_of_week 0 is Sunday and three-letter names are accepted.
type Cron struct {
	Second    string
	Minute    string
	Hour      string
	Day       string
	Month     string
	DayOfWeek string
	Timezone  string
}

func (Cron) Kind() Kind { return KindCron }
func (Cron) sealed()    {}

// Expression renders the six-field form "sec min hour dom month dow".
// Fields more significant than the least significant explicit field default
// to "*", less significant ones to their minimum. DayOfWeek defaults to "*".
func (t Cron) Expression() string {
	// Ordered from most to least significant.
	fields := []struct {
		val string
		min string
	}{
		{t.Month, "1"},
		{t.Day, "1"},
		{t.DayOfWeek, "*"},
		{t.Hour, "0"},
		{t.Minute, "0"},
		{t.Second, "0"},
	}

	least := -1
	for i, f := range fields {
		if f.val != "" {
			least = i
		}
	}

	out := make([]string, len(fields))
	for i, f := range fields {
		switch {
		case f.val != "":
			out[i] = f.val
		case i < least:
			out[i] = "*"
		default:
			out[i] = f.min
		}
	}

	expr := strings.Join([]string{out[5], out[4], out[3], out[1], out[0], out[2]}, " ")
	if t.Timezone != "" {
		expr = "CRON_TZ=" + t.Timezone + " " + expr
	}
	return expr
}

func (t Cron) String() string {
	var parts []string
	for _, f := range []struct{ name, val string }{
		{"month", t.Month},
		{"day", t.Day},
		{"day_of_week", t.DayOfWeek},
		{"hour", t.Hour},
		{"minute", t.Minute},
		{"second", t.Second},
	} {
		if f.val != "" {
			parts = append(parts, fmt.Sprintf("%s='%s'", f.name, f.val))
		}
	}
	if t.Timezone != "" {
		parts = append(parts, fmt.Sprintf("timezone='%s'", t.Timezone))
	}
	return "cron[" + strings.Join(parts, ", ") + "]"
}

var (
	_ Trigger = Interval{}
	_ Trigger = Date{}
	_ Trigger = Cron{}
)
