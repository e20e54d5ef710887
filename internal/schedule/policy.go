package schedule

import (
	"time"
)

// Granularity is the fixed step size of the slot scan. It is independent
// of the requested duration: a 45-minute request is still offered at
// every 15-minute boundary.
const Granularity = 15 * time.Minute

// Global duration bounds, independent of appointment type.
const (
	MinDuration = 15 * time.Minute
	MaxDuration = 240 * time.Minute
)

// Rules carries the clinic-level policy constants the predicates evaluate
// against. A Rules value is built once at startup from configuration and
// treated as immutable afterwards.
type Rules struct {
	// OpenAt and CloseAt bound the business day. CloseAt is exclusive.
	OpenAt  ClockTime
	CloseAt ClockTime

	// MinAdvance is the lead time: an instant is bookable only strictly
	// after now+MinAdvance.
	MinAdvance time.Duration

	// MaxAdvanceDays is the booking horizon in days.
	MaxAdvanceDays int

	// Buffer pads candidate intervals on both ends during conflict checks.
	Buffer time.Duration

	// Types maps each appointment type to its duration bounds.
	Types map[AppointmentType]DurationBounds

	// Holidays lists full-day closures as "YYYY-MM-DD" strings.
	Holidays map[string]bool
}

// DefaultRules returns the clinic's standard policy: 09:00-17:00 weekdays,
// 2 hour lead time, 90 day horizon, 5 minute conflict buffer, and the
// fixed per-type duration table.
func DefaultRules() Rules {
	return Rules{
		OpenAt:         ClockTime{Hour: 9},
		CloseAt:        ClockTime{Hour: 17},
		MinAdvance:     2 * time.Hour,
		MaxAdvanceDays: 90,
		Buffer:         5 * time.Minute,
		Types:          defaultTypeTable(),
		Holidays:       map[string]bool{},
	}
}

func defaultTypeTable() map[AppointmentType]DurationBounds {
	min := time.Minute
	return map[AppointmentType]DurationBounds{
		TypeCleaning:     {Default: 45 * min, Min: 30 * min, Max: 90 * min, Description: "Regular dental cleaning"},
		TypeCheckup:      {Default: 30 * min, Min: 15 * min, Max: 30 * min, Description: "Routine examination"},
		TypeConsultation: {Default: 45 * min, Min: 30 * min, Max: 90 * min, Description: "New patient consultation"},
		TypeFilling:      {Default: 60 * min, Min: 30 * min, Max: 120 * min, Description: "Dental filling procedure"},
		TypeRootCanal:    {Default: 120 * min, Min: 60 * min, Max: 180 * min, Description: "Root canal treatment"},
		TypeCrown:        {Default: 90 * min, Min: 60 * min, Max: 150 * min, Description: "Crown procedure"},
		TypeExtraction:   {Default: 45 * min, Min: 30 * min, Max: 90 * min, Description: "Tooth extraction"},
		TypeEmergency:    {Default: 30 * min, Min: 15 * min, Max: 60 * min, Description: "Emergency dental care"},
	}
}

// DefaultDuration returns the standard duration for an appointment type,
// falling back to 30 minutes for unknown types.
func (r Rules) DefaultDuration(at AppointmentType) time.Duration {
	if bounds, ok := r.Types[at]; ok {
		return bounds.Default
	}
	return 30 * time.Minute
}

// WithinBusinessHours reports whether the instant falls inside the
// clinic's opening hours. Weekends are always closed; the closing time is
// exclusive.
func (r Rules) WithinBusinessHours(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minutes := t.Hour()*60 + t.Minute()
	return minutes >= r.OpenAt.Minutes() && minutes < r.CloseAt.Minutes()
}

// IsHoliday reports whether the instant's date is a configured full-day
// closure.
func (r Rules) IsHoliday(t time.Time) bool {
	return r.Holidays[t.Format("2006-01-02")]
}

// CanBook reports whether the instant satisfies the minimum lead time:
// strictly later than now plus the minimum advance.
func (r Rules) CanBook(t, now time.Time) bool {
	return t.After(now.Add(r.MinAdvance))
}

// WithinMaxAdvance reports whether the instant is inside the booking
// horizon: strictly earlier than now plus the maximum advance.
func (r Rules) WithinMaxAdvance(t, now time.Time) bool {
	return t.Before(now.AddDate(0, 0, r.MaxAdvanceDays))
}

// ValidateDuration checks the type-independent duration rules: a multiple
// of 15 minutes within [15, 240].
func (r Rules) ValidateDuration(d time.Duration) error {
	if d < MinDuration || d > MaxDuration || d%Granularity != 0 {
		return &InvalidDurationError{Duration: d, Min: MinDuration, Max: MaxDuration}
	}
	return nil
}

// DurationAllowed reports whether the duration lies within the type's
// allowed range. Unknown types are rejected.
func (r Rules) DurationAllowed(at AppointmentType, d time.Duration) bool {
	bounds, ok := r.Types[at]
	if !ok {
		return false
	}
	return d >= bounds.Min && d <= bounds.Max
}

// CheckBookable applies every relevant policy predicate to a requested
// instant and returns the first failure, in fixed reporting order:
// duration validity, business hours (including weekend and holiday
// closures), lead time, then horizon. A nil return means the request is
// bookable as far as policy is concerned; conflicts against the calendar
// are checked separately.
func (r Rules) CheckBookable(t time.Time, d time.Duration, at AppointmentType, now time.Time) error {
	if err := r.ValidateDuration(d); err != nil {
		return err
	}
	if bounds, ok := r.Types[at]; ok && (d < bounds.Min || d > bounds.Max) {
		return &InvalidDurationError{Duration: d, Type: at, Min: bounds.Min, Max: bounds.Max}
	}

	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return &OutOfPolicyError{Reason: ReasonWeekend, When: t}
	}
	if r.IsHoliday(t) {
		return &OutOfPolicyError{Reason: ReasonHoliday, When: t}
	}
	if !r.WithinBusinessHours(t) {
		return &OutOfPolicyError{Reason: ReasonOutsideHours, When: t}
	}

	if !r.CanBook(t, now) {
		return &OutOfPolicyError{Reason: ReasonTooSoon, When: t}
	}
	if !r.WithinMaxAdvance(t, now) {
		return &OutOfPolicyError{Reason: ReasonTooFarOut, When: t}
	}
	return nil
}
