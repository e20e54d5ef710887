// Package resources provides MCP resources for exposing clinic data.
// Resources are read-only data sources that MCP clients can fetch, such as
// the clinic's opening hours, booking rules and appointment type table.
package resources
