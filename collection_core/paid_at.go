package collection_core

import (
	"fmt"
	"strings"
	"time"
)

// LocalTimeLayout is the layout written into the local ledger. It matches
// the ISO string produced by the capture flow. Only UTC values written in it
// sort in time order; rows carrying an offset or no zone at all do not.
const LocalTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// MaxZoneOffset is the widest UTC offset in use. A zoneless timestamp read
// as text is at most this far from the instant it stands for.
const MaxZoneOffset = 14 * time.Hour

var zonedLayouts = []string{
	LocalTimeLayout,
	time.RFC3339Nano,
	time.RFC3339,
}

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

func FormatLocalTime(t time.Time) string {
	return t.UTC().Format(LocalTimeLayout)
}

// ParseLocalTime parses a local ledger timestamp. Values without an offset
// are read in loc.
func ParseLocalTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrTransformError)
	}

	if loc == nil {
		loc = time.Local
	}

	for _, layout := range zonedLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
	}

	for _, layout := range zonelessLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: cannot parse timestamp %q", ErrTransformError, raw)
}

// ParseDate truncates t to its calendar day in loc.
func ParseDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}

	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayRange returns the first and last instant of the local day containing t.
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := ParseDate(t, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}
