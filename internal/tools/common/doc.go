// Package common wraps MCP tool handlers with the cross-cutting concerns
// every appointment tool shares: tracing spans, invocation metrics,
// booking mutation counters and audit logging.
package common
