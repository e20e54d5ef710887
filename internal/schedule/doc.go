// Package schedule implements the scheduling core for the dental clinic:
// date/time normalization, booking policy checks, free-slot computation,
// and conflict detection.
//
// All functions in this package are pure: they depend only on their
// arguments (including an explicit "now" and the clinic Rules) and never
// touch the environment, the calendar backend, or any shared state. They
// are safe to call concurrently.
//
// # Components
//
//   - Parse / ParseDay / FormatInstant: turn heterogeneous caller input
//     (ISO strings, a fixed set of layouts, relative phrases like
//     "tomorrow" or "friday") into instants in the clinic's timezone,
//     and format instants for spoken confirmation.
//   - Rules: business-hours, lead-time, horizon, and duration predicates,
//     combined by CheckBookable in a fixed reporting order.
//   - Rules.AvailableSlots: walks a day's busy intervals and emits every
//     bookable slot of the requested duration on the 15-minute grid.
//   - HasConflict / Conflicts: buffer-padded overlap checks used as a
//     second line of defense when a caller supplies an exact time.
//
// Failures are reported as typed errors (DateParseError,
// InvalidDurationError, OutOfPolicyError, NoAvailableSlotError) so the
// tool layer can translate them into voice-agent friendly messages.
package schedule
