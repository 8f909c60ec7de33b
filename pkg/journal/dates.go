package journal

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the storage format of ledger dates.
	DateLayout = "2006-01-02"
	// MonthLayout is the format of a month prefix.
	MonthLayout = "2006-01"

	// timestampLayout matches SQLite's CURRENT_TIMESTAMP.
	timestampLayout = "2006-01-02 15:04:05"
)

// civilDate drops the clock and zone of t, keeping the calendar date it
// shows in its own location. Arithmetic on the result is free of DST jumps.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders the calendar date of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatMonth renders the month prefix of t as YYYY-MM.
func FormatMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseMonth validates a strict YYYY-MM month. Queries accept any prefix;
// this is for callers that want to reject typos before querying.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month %q must be YYYY-MM", ErrInvalidDate, s)
	}
	return t, nil
}

func monthPattern(monthPrefix string) string {
	return monthPrefix + "%"
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp reads created_at values. Rows written by SQLite's default
// use timestampLayout; anything else that parses as RFC 3339 is accepted too.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
