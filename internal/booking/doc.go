// Package booking orchestrates the appointment flows shared by the MCP
// tools and the REST API: availability lookup, booking, cancellation,
// rescheduling and patient lookups.
//
// The service sits between the schedule package (policy and slot
// computation) and the calendar package (the appointment store). Every
// mutation runs the same pipeline: normalize the caller's input, apply
// the booking policy, check the requested interval against the day's
// busy list, then touch the calendar. Transport layers only translate
// requests in and results out.
package booking
