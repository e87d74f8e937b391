package collection

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateKind selects which family of layouts a value is parsed with
type DateKind int

const (
	// CalendarDate is a day without time of day, e.g. a due date
	CalendarDate DateKind = iota + 1
	// Timestamp is an instant, e.g. an interaction creation time
	Timestamp
)

// String returns the kind name
func (k DateKind) String() string {
	switch k {
	case CalendarDate:
		return "date"
	case Timestamp:
		return "datetime"
	default:
		return "unknown"
	}
}

// Layouts are tried in order; the first successful parse wins.
var (
	timestampLayouts = []string{
		"2006-01-02 15:04:05.999999Z0700",
		"2006-01-02 15:04:05.999999Z07:00",
		"2006-01-02 15:04:05",
	}
	calendarDateLayouts = []string{
		"2006-01-02",
	}
)

// ErrDateAbsent is returned for empty input. Callers treat it like a
// ParseFault: nothing is written.
var ErrDateAbsent = errors.New("date value is empty")

// ParseFault describes a value no known layout accepted
type ParseFault struct {
	Field string
	Value string
	Kind  string
}

// Error implements the error interface
func (f *ParseFault) Error() string {
	if f.Field != "" {
		return fmt.Sprintf("cannot parse %s %q as %s", f.Field, f.Value, f.Kind)
	}
	return fmt.Sprintf("cannot parse %q as %s", f.Value, f.Kind)
}

// NormalizeDate parses value with the layouts for kind. It returns
// ErrDateAbsent for blank input and a *ParseFault when every layout fails.
// Values without an offset are taken as UTC. Calendar dates are returned at
// midnight UTC.
func NormalizeDate(value string, kind DateKind) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrDateAbsent
	}

	layouts := calendarDateLayouts
	if kind == Timestamp {
		layouts = timestampLayouts
	}

	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			if kind == CalendarDate {
				return truncateToDate(t), nil
			}
			return t, nil
		}
	}
	return time.Time{}, &ParseFault{Value: value, Kind: kind.String()}
}

// IsParseFault reports whether err is a *ParseFault
func IsParseFault(err error) bool {
	var fault *ParseFault
	return errors.As(err, &fault)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same calendar day
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
