package schedule

import (
	"fmt"
	"time"
)

// DateParseError indicates that no recognition rule matched the input.
type DateParseError struct {
	Input string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("could not understand the date or time %q", e.Input)
}

// InvalidDurationError indicates a duration outside the global bounds,
// not on the 15-minute grid, or outside the per-type allowed range.
type InvalidDurationError struct {
	Duration time.Duration
	// Type is set when the per-type range was violated; empty for
	// violations of the global bounds.
	Type AppointmentType
	Min  time.Duration
	Max  time.Duration
}

func (e *InvalidDurationError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("a %s appointment takes between %d and %d minutes, not %d",
			e.Type, int(e.Min.Minutes()), int(e.Max.Minutes()), int(e.Duration.Minutes()))
	}
	return fmt.Sprintf("appointment duration must be a multiple of 15 minutes between %d and %d, got %d",
		int(e.Min.Minutes()), int(e.Max.Minutes()), int(e.Duration.Minutes()))
}

// PolicyReason identifies why an instant is not bookable.
type PolicyReason string

const (
	ReasonOutsideHours PolicyReason = "outside_business_hours"
	ReasonWeekend      PolicyReason = "weekend"
	ReasonHoliday      PolicyReason = "holiday"
	ReasonTooSoon      PolicyReason = "too_soon"
	ReasonTooFarOut    PolicyReason = "too_far_out"
)

// OutOfPolicyError indicates a requested instant violates a booking policy
// rule. The Reason distinguishes the variants for the tool layer.
type OutOfPolicyError struct {
	Reason PolicyReason
	When   time.Time
}

func (e *OutOfPolicyError) Error() string {
	switch e.Reason {
	case ReasonWeekend:
		return fmt.Sprintf("the clinic is closed on %s", e.When.Weekday())
	case ReasonHoliday:
		return fmt.Sprintf("the clinic is closed on %s (holiday)", e.When.Format("2006-01-02"))
	case ReasonTooSoon:
		return "appointments must be booked at least a few hours in advance"
	case ReasonTooFarOut:
		return "that date is too far in the future to book"
	default:
		return fmt.Sprintf("%s is outside the clinic's business hours", e.When.Format("15:04"))
	}
}

// NoAvailableSlotError indicates the computed slot list was empty, or the
// requested exact time was not among the available slots.
type NoAvailableSlotError struct {
	Day  time.Time
	Type AppointmentType
}

func (e *NoAvailableSlotError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("no available slots on %s for %s", e.Day.Format("2006-01-02"), e.Type)
	}
	return fmt.Sprintf("no available slots on %s", e.Day.Format("2006-01-02"))
}
