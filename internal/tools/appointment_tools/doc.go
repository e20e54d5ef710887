// Package appointment_tools provides the MCP tools for managing dental
// appointments: checking availability, booking, cancelling, rescheduling,
// listing, fetching and finding appointments by patient phone number.
//
// Each tool binds its argument bag into a typed parameter struct once at
// the boundary, hands the request to the booking service, and shapes the
// outcome into a response a voice agent can read to the patient verbatim.
package appointment_tools
