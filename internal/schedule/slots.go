package schedule

import (
	"time"
)

// AvailableSlots computes the free, bookable slots of exactly the given
// duration on a day.
//
// The busy list must be ordered ascending by start time (the calendar
// client guarantees this); intervals may overlap or touch. The scan walks
// a cursor from the day's start bound in fixed Granularity steps,
// emitting a slot at every step whose interval fits before the next busy
// period and whose end does not spill past the day's end bound. A slot
// ending exactly at the end bound is included; one ending a minute later
// is dropped, not truncated.
//
// The window, when given, narrows the scan inside the business day;
// otherwise the clinic's opening hours bound it.
func (r Rules) AvailableSlots(day time.Time, busy []Interval, duration time.Duration, window *TimeWindow) []Interval {
	dayStart := r.OpenAt.On(day)
	dayEnd := r.CloseAt.On(day)
	if window != nil {
		dayStart = window.Start.On(day)
		dayEnd = window.End.On(day)
	}

	var slots []Interval
	t := dayStart

	for _, b := range busy {
		// Emit candidates that fit entirely before this busy period.
		for !t.Add(duration).After(b.Start) {
			if !t.Add(duration).After(dayEnd) {
				slots = append(slots, Interval{Start: t, End: t.Add(duration)})
			}
			t = t.Add(Granularity)
		}
		// Jump past the busy period. max(t, b.End) keeps the cursor
		// monotonic when busy intervals overlap or touch.
		if b.End.After(t) {
			t = b.End
		}
	}

	// Tail of the day after the last busy period.
	for !t.Add(duration).After(dayEnd) {
		slots = append(slots, Interval{Start: t, End: t.Add(duration)})
		t = t.Add(Granularity)
	}

	return slots
}
