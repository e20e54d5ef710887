package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vanheeren/dentalcal/internal/calendar"
	"github.com/vanheeren/dentalcal/internal/config"
	"github.com/vanheeren/dentalcal/internal/instrumentation"
)

// ServerContext holds the shared state for the booking server: the clinic
// configuration and the calendar client backing the appointment store.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	clinic      *config.ClinicConfig
	client      *calendar.Client
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context. The calendar client is
// initialized lazily so the server can start (and report health) before
// Google credentials are available.
func NewServerContext(ctx context.Context, clinic *config.ClinicConfig) (*ServerContext, error) {
	if clinic == nil {
		return nil, fmt.Errorf("clinic configuration is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		clinic: clinic,
	}

	// Eagerly connect when credentials are present; a failure here is not
	// fatal, the first tool call will retry.
	if creds, err := calendar.CredentialsFromEnv(); err == nil {
		client, err := calendar.NewClient(shutdownCtx, creds, calendar.CalendarIDFromEnv(), clinic.Location)
		if err == nil {
			sc.client = client
		}
	}

	return sc, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Clinic returns the clinic configuration.
func (sc *ServerContext) Clinic() *config.ClinicConfig {
	return sc.clinic
}

// Location returns the clinic's time zone.
func (sc *ServerContext) Location() *time.Location {
	return sc.clinic.Location
}

// CalendarClient returns the calendar client, creating it on first use.
// An error is returned when credentials are missing or invalid.
func (sc *ServerContext) CalendarClient() (*calendar.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.client != nil {
		return sc.client, nil
	}

	creds, err := calendar.CredentialsFromEnv()
	if err != nil {
		return nil, err
	}

	client, err := calendar.NewClient(sc.ctx, creds, calendar.CalendarIDFromEnv(), sc.clinic.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	if sc.metrics != nil {
		client.SetMetrics(sc.metrics)
	}

	sc.client = client
	return client, nil
}

// SetCalendarClient sets the calendar client. Used by tests to inject a
// pre-built client.
func (sc *ServerContext) SetCalendarClient(client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.client = client
}

// CalendarConfigured reports whether a calendar client is available or can
// be created from the environment.
func (sc *ServerContext) CalendarConfigured() bool {
	sc.mu.RLock()
	if sc.client != nil {
		sc.mu.RUnlock()
		return true
	}
	sc.mu.RUnlock()

	creds, err := calendar.CredentialsFromEnv()
	return err == nil && creds.Configured()
}

// SetInstrumentation attaches the metrics recorder and audit logger.
// Both are optional; tool handlers tolerate their absence.
func (sc *ServerContext) SetInstrumentation(metrics *instrumentation.Metrics, auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
	sc.auditLogger = auditLogger
	if sc.client != nil {
		sc.client.SetMetrics(metrics)
	}
}

// Metrics returns the metrics recorder, or nil when instrumentation is
// disabled.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil when audit logging is
// disabled.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
