package schedule

import (
	"time"
)

// HasConflict reports whether a candidate interval, padded by buffer on
// both ends, collides with an existing interval. Padded adjacency counts:
// a candidate ending exactly buffer minutes before an existing
// appointment is still a conflict, so back-to-back bookings always keep
// the buffer free.
func HasConflict(candStart, candEnd, existStart, existEnd time.Time, buffer time.Duration) bool {
	paddedStart := candStart.Add(-buffer)
	paddedEnd := candEnd.Add(buffer)
	return !(paddedEnd.Before(existStart) || paddedStart.After(existEnd))
}

// Conflicts reports whether the candidate interval collides with any busy
// interval, using the buffer-padded check. This is the booking flow's
// defense in depth for caller-supplied exact times that never went
// through AvailableSlots.
func Conflicts(candidate Interval, busy []Interval, buffer time.Duration) bool {
	for _, b := range busy {
		if HasConflict(candidate.Start, candidate.End, b.Start, b.End, buffer) {
			return true
		}
	}
	return false
}
