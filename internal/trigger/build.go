package trigger

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Params holds the named parameters of a trigger, keyed the way job
// declarations spell them ("seconds", "run_at", "day_of_week", ...).
type Params map[string]any

// Build validates params for kind and returns the matching trigger.
// An unknown kind yields *InvalidTypeError; malformed params yield an error
// matching ErrInvalidParams.
func Build(kind Kind, params Params) (Trigger, error) {
	switch kind {
	case KindInterval:
		return buildInterval(params)
	case KindDate:
		return buildDate(params)
	case KindCron:
		return buildCron(params)
	default:
		return nil, &InvalidTypeError{Tag: string(kind)}
	}
}

func buildInterval(p Params) (Trigger, error) {
	var t Interval
	for _, key := range sortedKeys(p) {
		v := p[key]
		var err error
		switch key {
		case "weeks":
			t.Weeks, err = intParam(key, v)
		case "days":
			t.Days, err = intParam(key, v)
		case "hours":
			t.Hours, err = intParam(key, v)
		case "minutes":
			t.Minutes, err = intParam(key, v)
		case "seconds":
			t.Seconds, err = intParam(key, v)
		case "start_time", "start_date":
			t.Start, err = timeParam(key, v)
		case "end_time", "end_date":
			t.End, err = timeParam(key, v)
		default:
			err = paramErr(key, "unknown interval parameter")
		}
		if err != nil {
			return nil, err
		}
	}

	period, err := t.period()
	if err != nil {
		return nil, err
	}
	if period == 0 {
		return nil, paramErr("interval", "period must be greater than zero")
	}
	if !t.Start.IsZero() && !t.End.IsZero() && t.End.Before(t.Start) {
		return nil, paramErr("end_time", "must not be before start_time")
	}
	return t, nil
}

func buildDate(p Params) (Trigger, error) {
	var t Date
	for _, key := range sortedKeys(p) {
		switch key {
		case "run_at", "run_date":
			at, err := timeParam(key, p[key])
			if err != nil {
				return nil, err
			}
			t.RunAt = at
		default:
			return nil, paramErr(key, "unknown date parameter")
		}
	}
	if t.RunAt.IsZero() {
		return nil, paramErr("run_at", "required")
	}
	return t, nil
}

func buildCron(p Params) (Trigger, error) {
	var t Cron
	for _, key := range sortedKeys(p) {
		v := p[key]
		var err error
		switch key {
		case "second":
			t.Second, err = fieldParam(key, v)
		case "minute":
			t.Minute, err = fieldParam(key, v)
		case "hour":
			t.Hour, err = fieldParam(key, v)
		case "day":
			t.Day, err = fieldParam(key, v)
		case "month":
			t.Month, err = fieldParam(key, v)
		case "day_of_week":
			t.DayOfWeek, err = fieldParam(key, v)
		case "timezone":
			t.Timezone, err = timezoneParam(key, v)
		default:
			err = paramErr(key, "unknown cron parameter")
		}
		if err != nil {
			return nil, err
		}
	}

	if t.Second == "" && t.Minute == "" && t.Hour == "" &&
		t.Day == "" && t.Month == "" && t.DayOfWeek == "" {
		return nil, paramErr("cron", "at least one field is required")
	}
	return t, nil
}

// sortedKeys keeps error reporting deterministic across map iteration.
func sortedKeys(p Params) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func intParam(key string, v any) (int, error) {
	var n int64
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt32 {
			return 0, paramErr(key, "value %d out of range", u)
		}
		n = int64(u)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) {
			return 0, paramErr(key, "value %v is not a whole number", f)
		}
		n = int64(f)
	default:
		return 0, paramErr(key, "expected an integer, got %T", v)
	}
	if n < 0 {
		return 0, paramErr(key, "must not be negative")
	}
	if n > math.MaxInt32 {
		return 0, paramErr(key, "value %d out of range", n)
	}
	return int(n), nil
}

func timeParam(key string, v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, paramErr(key, "zero time")
		}
		return x, nil
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, paramErr(key, "zero time")
		}
		return *x, nil
	case string:
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(x))
		if err != nil {
			return time.Time{}, paramErr(key, "invalid RFC 3339 timestamp %q", x)
		}
		return t, nil
	default:
		return time.Time{}, paramErr(key, "expected a timestamp, got %T", v)
	}
}

func fieldParam(key string, v any) (string, error) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return "", paramErr(key, "empty field")
		}
		if strings.ContainsAny(s, " \t\n") {
			return "", paramErr(key, "field %q must not contain whitespace", x)
		}
		return s, nil
	default:
		n, err := intParam(key, v)
		if err != nil {
			return "", paramErr(key, "expected a string or integer, got %T", v)
		}
		return strconv.Itoa(n), nil
	}
}

func timezoneParam(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", paramErr(key, "expected a string, got %T", v)
	}
	s = strings.TrimSpace(s)
	if _, err := time.LoadLocation(s); err != nil || s == "" {
		return "", paramErr(key, "unknown location %q", s)
	}
	return s, nil
}
