// Package calendar wraps the Google Calendar API as the clinic's
// appointment store.
//
// The calendar is the only persistent state: an appointment is a calendar
// event whose summary and description carry the patient and appointment
// details in a fixed layout. The client exposes the small set of
// operations the booking tools need (busy intervals, CRUD, phone lookup)
// and maps events to domain types; all scheduling decisions live in the
// schedule package.
//
// Credentials come from the environment (GOOGLE_ACCESS_TOKEN,
// GOOGLE_REFRESH_TOKEN, GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET), with the
// target calendar selected by GOOGLE_CALENDAR_ID.
package calendar
