// Package server provides the shared server infrastructure for the
// booking application: the server context, health checking, the
// Prometheus metrics server, and the plain HTTP/REST API.
//
// ServerContext holds the clinic configuration and the calendar client
// backing the appointment store. The client is created lazily so the
// server can start and answer health probes before Google credentials
// are in place.
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed for
// Kubernetes probes. Readiness requires the calendar credentials to be
// configured; a server that cannot reach the appointment store reports
// itself not ready rather than failing requests later.
//
// RESTServer exposes the booking flows over chi-routed JSON endpoints
// under /api/v1 for clients that do not speak MCP, with CORS open for
// browser-based frontends and a request ID on every response.
package server
