package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Interval is a half-open time range [Start, End). It represents either a
// busy period from the calendar backend or a candidate/available slot.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the interval.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether two half-open intervals share any time.
// Touching intervals (one ends exactly where the other starts) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// SortIntervals orders intervals ascending by start time, in place.
// The calendar backend usually returns events already ordered, but the
// contract does not guarantee it.
func SortIntervals(ivs []Interval) {
	sort.Slice(ivs, func(i, j int) bool {
		return ivs[i].Start.Before(ivs[j].Start)
	})
}

// ClockTime is a wall-clock time of day (hours and minutes, no date).
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses a "HH:MM" string (24-hour) into a ClockTime.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("invalid time of day %q (want HH:MM)", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid minute in %q", s)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// Minutes returns the time of day as minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// On anchors the wall-clock time to the given day, in the day's location.
func (c ClockTime) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// String returns the time of day in "HH:MM" form.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Before reports whether c is earlier in the day than other.
func (c ClockTime) Before(other ClockTime) bool {
	return c.Minutes() < other.Minutes()
}

// TimeWindow bounds a slot search within a single day. Start must be
// before End.
type TimeWindow struct {
	Start ClockTime
	End   ClockTime
}

// NewTimeWindow builds a TimeWindow from "HH:MM" strings and validates
// that the window is non-empty.
func NewTimeWindow(start, end string) (TimeWindow, error) {
	s, err := ParseClockTime(start)
	if err != nil {
		return TimeWindow{}, err
	}
	e, err := ParseClockTime(end)
	if err != nil {
		return TimeWindow{}, err
	}
	if !s.Before(e) {
		return TimeWindow{}, fmt.Errorf("time window start %s must be before end %s", s, e)
	}
	return TimeWindow{Start: s, End: e}, nil
}

// AppointmentType identifies one of the clinic's fixed appointment kinds.
type AppointmentType string

// The closed set of appointment types the clinic offers.
const (
	TypeCleaning     AppointmentType = "cleaning"
	TypeCheckup      AppointmentType = "checkup"
	TypeConsultation AppointmentType = "consultation"
	TypeFilling      AppointmentType = "filling"
	TypeRootCanal    AppointmentType = "root_canal"
	TypeCrown        AppointmentType = "crown"
	TypeExtraction   AppointmentType = "extraction"
	TypeEmergency    AppointmentType = "emergency"
)

// AppointmentTypes lists all valid appointment types in a stable order.
var AppointmentTypes = []AppointmentType{
	TypeCleaning,
	TypeCheckup,
	TypeConsultation,
	TypeFilling,
	TypeRootCanal,
	TypeCrown,
	TypeExtraction,
	TypeEmergency,
}

// ParseAppointmentType validates a caller-supplied type string.
// Input is case-insensitive; spaces are accepted in place of underscores
// (voice agents tend to say "root canal").
func ParseAppointmentType(s string) (AppointmentType, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	for _, at := range AppointmentTypes {
		if string(at) == normalized {
			return at, nil
		}
	}
	return "", fmt.Errorf("unknown appointment type %q (valid types: %s)", s, joinTypes())
}

func joinTypes() string {
	names := make([]string, len(AppointmentTypes))
	for i, at := range AppointmentTypes {
		names[i] = string(at)
	}
	return strings.Join(names, ", ")
}

// DurationBounds describes the allowed and default duration for an
// appointment type.
type DurationBounds struct {
	Default     time.Duration
	Min         time.Duration
	Max         time.Duration
	Description string
}
