// Package codec converts dates and date-times to and from their ISO-8601 wire form.
package codec

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Layouts accepted for date-times lacking a zone designator. Such values are
// interpreted as UTC.
var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseDate parses an ISO-8601 calendar date. A full date-time is accepted as
// well; its time of day is discarded.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := ParseDateTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("codec: invalid ISO-8601 date %q", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string { return t.Format(dateLayout) }

// ParseDateTime parses an ISO-8601 date-time. RFC 3339 input keeps its offset,
// zone-less input is read as UTC, and a bare date means midnight UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	// Accept RFC3339Nano (trailing zeros optional)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("codec: invalid ISO-8601 date-time %q", s)
}

// FormatDateTime renders t in RFC 3339 with sub-second precision trimmed.
// UTC values end in "Z"; other offsets are preserved.
func FormatDateTime(t time.Time) string { return t.Format(time.RFC3339Nano) }
