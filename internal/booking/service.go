package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/vanheeren/dentalcal/internal/calendar"
	"github.com/vanheeren/dentalcal/internal/config"
	"github.com/vanheeren/dentalcal/internal/schedule"
)

// Store is the slice of the calendar client the booking flows need.
// Accepting the interface keeps the service testable without a live
// Google Calendar behind it.
type Store interface {
	ListBusyIntervals(ctx context.Context, dayStart, dayEnd time.Time) ([]schedule.Interval, error)
	ListAppointments(ctx context.Context, rangeStart, rangeEnd time.Time) ([]calendar.Appointment, error)
	CreateAppointment(ctx context.Context, input calendar.AppointmentInput) (*calendar.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*calendar.Appointment, error)
	UpdateAppointmentTime(ctx context.Context, id string, start, end time.Time) (*calendar.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
	FindAppointmentsByPhone(ctx context.Context, phone string, rangeStart, rangeEnd time.Time) ([]calendar.Appointment, error)
}

// Service implements the appointment flows on top of a Store and the
// clinic's booking policy.
type Service struct {
	store Store
	rules schedule.Rules
	loc   *time.Location

	// now is the clock; overridable in tests.
	now func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the service's clock. Used by tests to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a booking service for the given store and clinic.
func NewService(store Store, clinic *config.ClinicConfig, opts ...Option) *Service {
	s := &Service{
		store: store,
		rules: clinic.Rules,
		loc:   clinic.Location,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the active booking policy.
func (s *Service) Rules() schedule.Rules {
	return s.rules
}

// Location returns the clinic's time zone.
func (s *Service) Location() *time.Location {
	return s.loc
}

// AvailabilityRequest asks for the free slots on a day.
type AvailabilityRequest struct {
	// Date is required: "YYYY-MM-DD", a relative phrase, or any format
	// the normalizer understands.
	Date string
	// Type is required and selects the default duration.
	Type string
	// DurationMinutes overrides the type's default when positive.
	DurationMinutes int
	// StartTime and EndTime ("HH:MM") optionally narrow the search
	// inside the business day.
	StartTime string
	EndTime   string
}

// AvailabilityResult is a computed slot list for one day.
type AvailabilityResult struct {
	Day      time.Time
	Type     schedule.AppointmentType
	Duration time.Duration
	Slots    []schedule.Interval
}

// Availability computes the bookable slots for the requested day. Days
// the clinic is closed yield an empty slot list rather than an error;
// slots inside the lead time or past the horizon are filtered out.
func (s *Service) Availability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error) {
	if req.Date == "" {
		return nil, &InvalidRequestError{Field: "date", Reason: "a date is required"}
	}
	if req.Type == "" {
		return nil, &InvalidRequestError{Field: "appointment_type", Reason: "an appointment type is required"}
	}

	at, err := schedule.ParseAppointmentType(req.Type)
	if err != nil {
		return nil, &InvalidRequestError{Field: "appointment_type", Reason: err.Error()}
	}

	now := s.now().In(s.loc)
	day, err := schedule.ParseDay(req.Date, now, s.loc)
	if err != nil {
		return nil, err
	}

	duration, err := s.resolveDuration(at, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	result := &AvailabilityResult{Day: day, Type: at, Duration: duration}

	// Closed days have no slots; that is an answer, not an error.
	if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday || s.rules.IsHoliday(day) {
		return result, nil
	}

	window, err := s.searchWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	busy, err := s.store.ListBusyIntervals(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load the day's schedule: %w", err)
	}

	for _, slot := range s.rules.AvailableSlots(day, busy, duration, window) {
		if !s.rules.CanBook(slot.Start, now) || !s.rules.WithinMaxAdvance(slot.Start, now) {
			continue
		}
		result.Slots = append(result.Slots, slot)
	}
	return result, nil
}

// BookRequest carries everything needed to book an appointment. The
// start is given either as a combined DateTime or as separate Date and
// StartTime fields (the voice agent sends the latter).
type BookRequest struct {
	PatientName  string
	PatientEmail string
	PatientPhone string
	// DateTime is the requested start, in any format the normalizer
	// understands.
	DateTime string
	// Date and StartTime ("HH:MM") are the split alternative to DateTime.
	Date      string
	StartTime string
	Type      string
	// DurationMinutes overrides the type's default when positive.
	DurationMinutes int
	Notes           string
}

// Book validates the request against the booking policy, checks the
// requested interval against the day's busy list, and creates the
// appointment.
func (s *Service) Book(ctx context.Context, req BookRequest) (*calendar.Appointment, error) {
	if req.PatientName == "" {
		return nil, &InvalidRequestError{Field: "patient_name", Reason: "the patient's name is required"}
	}
	if req.PatientEmail == "" {
		return nil, &InvalidRequestError{Field: "patient_email", Reason: "the patient's email is required"}
	}
	if req.Type == "" {
		return nil, &InvalidRequestError{Field: "appointment_type", Reason: "an appointment type is required"}
	}

	at, err := schedule.ParseAppointmentType(req.Type)
	if err != nil {
		return nil, &InvalidRequestError{Field: "appointment_type", Reason: err.Error()}
	}

	now := s.now().In(s.loc)
	start, err := s.resolveInstant(req.DateTime, req.Date, req.StartTime, now)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	if req.DurationMinutes <= 0 {
		duration = s.rules.DefaultDuration(at)
	}

	if err := s.rules.CheckBookable(start, duration, at, now); err != nil {
		return nil, err
	}

	end := start.Add(duration)
	if err := s.ensureFree(ctx, start, end, ""); err != nil {
		return nil, err
	}

	appointment, err := s.store.CreateAppointment(ctx, calendar.AppointmentInput{
		PatientName:  req.PatientName,
		PatientEmail: req.PatientEmail,
		PatientPhone: req.PatientPhone,
		Type:         at,
		Notes:        req.Notes,
		Start:        start,
		End:          end,
		Timezone:     s.loc.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to book the appointment: %w", err)
	}
	return appointment, nil
}

// Cancel removes an appointment and returns what was cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (*calendar.Appointment, error) {
	if id == "" {
		return nil, &InvalidRequestError{Field: "appointment_id", Reason: "an appointment ID is required"}
	}

	appointment, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if calendar.IsNotFound(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}

	if err := s.store.DeleteAppointment(ctx, id); err != nil {
		if calendar.IsNotFound(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to cancel the appointment: %w", err)
	}
	return appointment, nil
}

// RescheduleRequest moves an existing appointment to a new time. As
// with BookRequest the new start is either a combined NewDateTime or
// split NewDate and NewStartTime fields.
type RescheduleRequest struct {
	ID           string
	NewDateTime  string
	NewDate      string
	NewStartTime string
	// DurationMinutes overrides the current duration when positive.
	DurationMinutes int
}

// Reschedule moves an appointment. The new time runs through the same
// policy gate as a fresh booking; the appointment's own interval does
// not count as a conflict.
func (s *Service) Reschedule(ctx context.Context, req RescheduleRequest) (*calendar.Appointment, error) {
	if req.ID == "" {
		return nil, &InvalidRequestError{Field: "appointment_id", Reason: "an appointment ID is required"}
	}

	existing, err := s.store.GetAppointment(ctx, req.ID)
	if err != nil {
		if calendar.IsNotFound(err) {
			return nil, &NotFoundError{ID: req.ID}
		}
		return nil, err
	}

	now := s.now().In(s.loc)
	start, err := s.resolveInstant(req.NewDateTime, req.NewDate, req.NewStartTime, now)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	if req.DurationMinutes <= 0 {
		duration = existing.End.Sub(existing.Start)
	}
	if duration <= 0 {
		duration = s.rules.DefaultDuration(existing.Type)
	}

	if err := s.rules.CheckBookable(start, duration, existing.Type, now); err != nil {
		return nil, err
	}

	end := start.Add(duration)
	if err := s.ensureFree(ctx, start, end, req.ID); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateAppointmentTime(ctx, req.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule the appointment: %w", err)
	}
	return updated, nil
}

// List returns the appointments between two dates. Both bounds are
// inclusive days; they default to today and a week out.
func (s *Service) List(ctx context.Context, startDate, endDate string) ([]calendar.Appointment, error) {
	now := s.now().In(s.loc)

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	if startDate != "" {
		var err error
		start, err = schedule.ParseDay(startDate, now, s.loc)
		if err != nil {
			return nil, err
		}
	}

	end := start.AddDate(0, 0, 7)
	if endDate != "" {
		day, err := schedule.ParseDay(endDate, now, s.loc)
		if err != nil {
			return nil, err
		}
		end = day.AddDate(0, 0, 1)
	}
	if !start.Before(end) {
		return nil, &InvalidRequestError{Field: "end_date", Reason: "the end date must not be before the start date"}
	}

	return s.store.ListAppointments(ctx, start, end)
}

// Get fetches a single appointment by ID.
func (s *Service) Get(ctx context.Context, id string) (*calendar.Appointment, error) {
	if id == "" {
		return nil, &InvalidRequestError{Field: "appointment_id", Reason: "an appointment ID is required"}
	}

	appointment, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if calendar.IsNotFound(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}
	return appointment, nil
}

// FindByPhone returns upcoming appointments whose patient phone matches.
// The search spans from today to the end of the booking horizon.
func (s *Service) FindByPhone(ctx context.Context, phone string) ([]calendar.Appointment, error) {
	if calendar.NormalizePhone(phone) == "" {
		return nil, &InvalidRequestError{Field: "phone", Reason: "a phone number is required"}
	}

	now := s.now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, s.rules.MaxAdvanceDays+1)

	return s.store.FindAppointmentsByPhone(ctx, phone, start, end)
}

// resolveInstant turns either a combined date-time string or a split
// date plus "HH:MM" start time into an instant in the clinic's timezone.
func (s *Service) resolveInstant(dateTime, date, startTime string, now time.Time) (time.Time, error) {
	if dateTime != "" {
		return schedule.Parse(dateTime, now, s.loc)
	}
	if date == "" || startTime == "" {
		return time.Time{}, &InvalidRequestError{Field: "date_time", Reason: "a date and start time are required"}
	}
	day, err := schedule.ParseDay(date, now, s.loc)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := schedule.ParseClockTime(startTime)
	if err != nil {
		return time.Time{}, &InvalidRequestError{Field: "start_time", Reason: err.Error()}
	}
	return clock.On(day), nil
}

// resolveDuration picks the effective duration for a type and validates
// it against the global and per-type bounds.
func (s *Service) resolveDuration(at schedule.AppointmentType, minutes int) (time.Duration, error) {
	duration := time.Duration(minutes) * time.Minute
	if minutes <= 0 {
		duration = s.rules.DefaultDuration(at)
	}
	if err := s.rules.ValidateDuration(duration); err != nil {
		return 0, err
	}
	if !s.rules.DurationAllowed(at, duration) {
		bounds := s.rules.Types[at]
		return 0, &schedule.InvalidDurationError{Duration: duration, Type: at, Min: bounds.Min, Max: bounds.Max}
	}
	return duration, nil
}

// searchWindow builds the optional intra-day window, defaulting a missing
// side to the clinic's opening or closing time.
func (s *Service) searchWindow(startTime, endTime string) (*schedule.TimeWindow, error) {
	if startTime == "" && endTime == "" {
		return nil, nil
	}
	if startTime == "" {
		startTime = s.rules.OpenAt.String()
	}
	if endTime == "" {
		endTime = s.rules.CloseAt.String()
	}
	window, err := schedule.NewTimeWindow(startTime, endTime)
	if err != nil {
		return nil, &InvalidRequestError{Field: "time_window", Reason: err.Error()}
	}
	return &window, nil
}

// ensureFree checks the requested interval against the day's busy list,
// optionally ignoring one appointment (the one being moved).
func (s *Service) ensureFree(ctx context.Context, start, end time.Time, ignoreID string) error {
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, s.loc)

	var busy []schedule.Interval
	if ignoreID == "" {
		var err error
		busy, err = s.store.ListBusyIntervals(ctx, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			return fmt.Errorf("failed to load the day's schedule: %w", err)
		}
	} else {
		appointments, err := s.store.ListAppointments(ctx, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			return fmt.Errorf("failed to load the day's schedule: %w", err)
		}
		for _, a := range appointments {
			if a.ID == ignoreID || a.Start.IsZero() || a.End.IsZero() {
				continue
			}
			busy = append(busy, a.Interval())
		}
		schedule.SortIntervals(busy)
	}

	if schedule.Conflicts(schedule.Interval{Start: start, End: end}, busy, s.rules.Buffer) {
		return &SlotTakenError{Start: start, End: end}
	}
	return nil
}
