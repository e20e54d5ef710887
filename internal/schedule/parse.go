package schedule

import (
	"strings"
	"time"
)

// weekdays maps the relative-phrase vocabulary for weekday names.
// Order matters only for determinism; matching is substring-based.
var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// layouts are the explicit formats tried after relative phrases and
// RFC 3339, in order. First valid parse wins.
var layouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 3:04 PM",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000Z07:00",
}

// Parse turns heterogeneous date/time input into an instant in the
// clinic's timezone. Recognition order: relative phrases, RFC 3339, then
// the fixed layout list. Relative phrases resolve against now; a weekday
// name always means the next occurrence strictly after today, so "monday"
// spoken on a Monday means the following week.
func Parse(input string, now time.Time, loc *time.Location) (time.Time, error) {
	if t, ok := parseRelative(input, now.In(loc)); ok {
		return t, nil
	}

	trimmed := strings.TrimSpace(input)
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return t.In(loc), nil
		}
	}

	return time.Time{}, &DateParseError{Input: input}
}

// ParseDay resolves input to the calendar day it refers to, at midnight in
// the clinic's timezone. It accepts everything Parse accepts plus a bare
// "YYYY-MM-DD" date, which is how the voice agent usually sends dates.
func ParseDay(input string, now time.Time, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(input)
	if t, err := time.ParseInLocation("2006-01-02", trimmed, loc); err == nil {
		return t, nil
	}
	t, err := Parse(input, now, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// parseRelative matches the small fixed vocabulary of relative phrases,
// case-insensitive, substring match. The resolved instant keeps now's
// time of day.
func parseRelative(input string, now time.Time) (time.Time, bool) {
	phrase := strings.ToLower(strings.TrimSpace(input))

	switch {
	case strings.Contains(phrase, "today"):
		return now, true
	case strings.Contains(phrase, "tomorrow"):
		return now.AddDate(0, 0, 1), true
	case strings.Contains(phrase, "next week"):
		return now.AddDate(0, 0, 7), true
	}

	for _, wd := range weekdays {
		if strings.Contains(phrase, wd.name) {
			offset := int(wd.day) - int(now.Weekday())
			// A same-named day is always next week's, never today.
			if offset <= 0 {
				offset += 7
			}
			return now.AddDate(0, 0, offset), true
		}
	}

	return time.Time{}, false
}
