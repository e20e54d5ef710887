package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/vanheeren/dentalcal/internal/instrumentation"
	"github.com/vanheeren/dentalcal/internal/schedule"
)

// googleTokenURL is the OAuth2 token endpoint used to refresh the
// environment-supplied access token.
const googleTokenURL = "https://oauth2.googleapis.com/token"

// Credentials holds the OAuth material for the clinic's Google account.
// The refresh token keeps the client alive across access-token expiry.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
}

// CredentialsFromEnv reads the Google OAuth credentials from the
// environment. All four variables must be set.
func CredentialsFromEnv() (Credentials, error) {
	creds := Credentials{
		AccessToken:  os.Getenv("GOOGLE_ACCESS_TOKEN"),
		RefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	}
	if !creds.Configured() {
		return Credentials{}, fmt.Errorf("incomplete Google Calendar credentials: " +
			"GOOGLE_ACCESS_TOKEN, GOOGLE_REFRESH_TOKEN, GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must all be set")
	}
	return creds, nil
}

// Configured reports whether all credential fields are present.
func (c Credentials) Configured() bool {
	return c.AccessToken != "" && c.RefreshToken != "" && c.ClientID != "" && c.ClientSecret != ""
}

// CalendarIDFromEnv returns the target calendar, defaulting to the
// account's primary calendar.
func CalendarIDFromEnv() string {
	if id := os.Getenv("GOOGLE_CALENDAR_ID"); id != "" {
		return id
	}
	return "primary"
}

// Client wraps the Google Calendar service for a single clinic calendar.
type Client struct {
	svc        *calendar.Service
	calendarID string
	timezone   string
	loc        *time.Location
	metrics    *instrumentation.Metrics
}

// NewClient creates a Calendar client authenticated with the given
// credentials. The access token is treated as expired so the first call
// refreshes it through the refresh token.
func NewClient(ctx context.Context, creds Credentials, calendarID string, loc *time.Location) (*Client, error) {
	if !creds.Configured() {
		return nil, fmt.Errorf("calendar credentials are not configured")
	}
	if loc == nil {
		return nil, fmt.Errorf("location cannot be nil")
	}

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: googleTokenURL,
		},
	}
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		// Expiry in the past forces a refresh on first use; the env does
		// not tell us how old the access token is.
		Expiry: time.Now().Add(-time.Minute),
	}
	tokenSource := conf.TokenSource(ctx, token)

	client := oauth2.NewClient(ctx, tokenSource)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:        svc,
		calendarID: calendarID,
		timezone:   loc.String(),
		loc:        loc,
	}, nil
}

// CalendarID returns the calendar this client operates on.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// SetMetrics attaches a metrics recorder so calendar API calls are counted
// and timed. A nil recorder disables recording.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

func (c *Client) record(ctx context.Context, operation string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordCalendarOperation(ctx, operation, status, time.Since(start))
}

// ListBusyIntervals returns the occupied intervals between dayStart and
// dayEnd, sorted by start time. All-day and cancelled events do not block
// slots.
func (c *Client) ListBusyIntervals(ctx context.Context, dayStart, dayEnd time.Time) (_ []schedule.Interval, err error) {
	defer func(start time.Time) { c.record(ctx, instrumentation.OperationListBusy, start, err) }(time.Now())

	events, err := c.listEvents(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list busy intervals: %w", err)
	}

	var busy []schedule.Interval
	for _, event := range events {
		a := toAppointment(event, c.loc)
		if a.Start.IsZero() || a.End.IsZero() {
			continue
		}
		busy = append(busy, a.Interval())
	}

	// The API orders by start time already; sort anyway so the slot scan
	// never sees unordered input.
	schedule.SortIntervals(busy)
	return busy, nil
}

// ListAppointments returns appointments between rangeStart and rangeEnd,
// ordered by start time.
func (c *Client) ListAppointments(ctx context.Context, rangeStart, rangeEnd time.Time) (_ []Appointment, err error) {
	defer func(start time.Time) { c.record(ctx, instrumentation.OperationList, start, err) }(time.Now())

	events, err := c.listEvents(ctx, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	var appointments []Appointment
	for _, event := range events {
		a := toAppointment(event, c.loc)
		if a.Start.IsZero() {
			continue
		}
		appointments = append(appointments, a)
	}
	return appointments, nil
}

func (c *Client) listEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	result, err := c.svc.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	events := make([]*calendar.Event, 0, len(result.Items))
	for _, event := range result.Items {
		if event.Status == "cancelled" {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// CreateAppointment creates the calendar event for a booked appointment.
// The patient is attached as attendee and receives the clinic's standard
// reminders (email a day ahead, popup an hour ahead).
func (c *Client) CreateAppointment(ctx context.Context, input AppointmentInput) (_ *Appointment, err error) {
	defer func(start time.Time) { c.record(ctx, instrumentation.OperationCreate, start, err) }(time.Now())

	event := &calendar.Event{
		Summary:     composeSummary(input.Type, input.PatientName),
		Description: composeDescription(input),
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 60},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
	if input.PatientEmail != "" {
		event.Attendees = []*calendar.EventAttendee{
			{Email: input.PatientEmail, DisplayName: input.PatientName},
		}
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	a := toAppointment(created, c.loc)
	return &a, nil
}

// GetAppointment retrieves a single appointment by event ID.
func (c *Client) GetAppointment(ctx context.Context, id string) (_ *Appointment, err error) {
	defer func(start time.Time) { c.record(ctx, instrumentation.OperationGet, start, err) }(time.Now())

	event, err := c.svc.Events.Get(c.calendarID, id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	a := toAppointment(event, c.loc)
	return &a, nil
}

// UpdateAppointmentTime moves an existing appointment to a new interval,
// keeping the patient details intact.
func (c *Client) UpdateAppointmentTime(ctx context.Context, id string, start, end time.Time) (_ *Appointment, err error) {
	defer func(began time.Time) { c.record(ctx, instrumentation.OperationUpdate, began, err) }(time.Now())

	existing, err := c.svc.Events.Get(c.calendarID, id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing appointment: %w", err)
	}

	existing.Start = &calendar.EventDateTime{
		DateTime: start.Format(time.RFC3339),
		TimeZone: c.timezone,
	}
	existing.End = &calendar.EventDateTime{
		DateTime: end.Format(time.RFC3339),
		TimeZone: c.timezone,
	}

	updated, err := c.svc.Events.Update(c.calendarID, id, existing).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	a := toAppointment(updated, c.loc)
	return &a, nil
}

// DeleteAppointment removes the event backing a cancelled appointment.
func (c *Client) DeleteAppointment(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { c.record(ctx, instrumentation.OperationDelete, start, err) }(time.Now())

	if err := c.svc.Events.Delete(c.calendarID, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

// FindAppointmentsByPhone returns the appointments in the range whose
// stored patient phone matches the given number.
func (c *Client) FindAppointmentsByPhone(ctx context.Context, phone string, rangeStart, rangeEnd time.Time) ([]Appointment, error) {
	appointments, err := c.ListAppointments(ctx, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	var matches []Appointment
	for _, a := range appointments {
		if a.PatientPhone != "" && PhoneMatches(a.PatientPhone, phone) {
			matches = append(matches, a)
		}
	}
	return matches, nil
}

// IsNotFound reports whether an error from the calendar backend means the
// event does not exist (deleted or never created).
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}
