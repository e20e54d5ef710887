package booking

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/vanheeren/dentalcal/internal/calendar"
	"github.com/vanheeren/dentalcal/internal/config"
	"github.com/vanheeren/dentalcal/internal/schedule"
)

// fakeStore is an in-memory Store for exercising the flows without a
// calendar backend.
type fakeStore struct {
	busy         []schedule.Interval
	appointments []calendar.Appointment

	created []calendar.AppointmentInput
	deleted []string
	moved   map[string]schedule.Interval

	listErr error
}

func (f *fakeStore) ListBusyIntervals(_ context.Context, _, _ time.Time) ([]schedule.Interval, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.busy, nil
}

func (f *fakeStore) ListAppointments(_ context.Context, rangeStart, rangeEnd time.Time) ([]calendar.Appointment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []calendar.Appointment
	for _, a := range f.appointments {
		if a.Start.Before(rangeEnd) && a.End.After(rangeStart) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateAppointment(_ context.Context, input calendar.AppointmentInput) (*calendar.Appointment, error) {
	f.created = append(f.created, input)
	return &calendar.Appointment{
		ID:           "evt_new",
		PatientName:  input.PatientName,
		PatientEmail: input.PatientEmail,
		PatientPhone: input.PatientPhone,
		Type:         input.Type,
		Notes:        input.Notes,
		Start:        input.Start,
		End:          input.End,
	}, nil
}

func (f *fakeStore) GetAppointment(_ context.Context, id string) (*calendar.Appointment, error) {
	for _, a := range f.appointments {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, &googleapi.Error{Code: http.StatusNotFound}
}

func (f *fakeStore) UpdateAppointmentTime(ctx context.Context, id string, start, end time.Time) (*calendar.Appointment, error) {
	a, err := f.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.moved == nil {
		f.moved = make(map[string]schedule.Interval)
	}
	f.moved[id] = schedule.Interval{Start: start, End: end}
	a.Start, a.End = start, end
	return a, nil
}

func (f *fakeStore) DeleteAppointment(_ context.Context, id string) error {
	if _, err := f.GetAppointment(context.Background(), id); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) FindAppointmentsByPhone(ctx context.Context, phone string, rangeStart, rangeEnd time.Time) ([]calendar.Appointment, error) {
	appointments, err := f.ListAppointments(ctx, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	var matches []calendar.Appointment
	for _, a := range appointments {
		if a.PatientPhone != "" && calendar.PhoneMatches(a.PatientPhone, phone) {
			matches = append(matches, a)
		}
	}
	return matches, nil
}

func testClinic(t *testing.T) *config.ClinicConfig {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	return &config.ClinicConfig{
		ClinicName: "Tandarts Praktijk Van Heeren",
		Timezone:   "Europe/Amsterdam",
		Location:   loc,
		Rules:      schedule.DefaultRules(),
	}
}

// newTestService returns a service with a fixed clock: Tuesday
// 2026-09-01 12:00 in the clinic's timezone.
func newTestService(t *testing.T, store *fakeStore) *Service {
	t.Helper()
	clinic := testClinic(t)
	return NewService(store, clinic, WithClock(func() time.Time {
		return time.Date(2026, time.September, 1, 12, 0, 0, 0, clinic.Location)
	}))
}

func at(t *testing.T, day, hhmm string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	parsed, err := time.ParseInLocation("2006-01-02 15:04", day+" "+hhmm, loc)
	require.NoError(t, err)
	return parsed
}

func TestAvailability(t *testing.T) {
	store := &fakeStore{
		busy: []schedule.Interval{
			{Start: at(t, "2026-09-02", "10:00"), End: at(t, "2026-09-02", "10:30")},
		},
	}
	svc := newTestService(t, store)

	result, err := svc.Availability(context.Background(), AvailabilityRequest{
		Date: "2026-09-02",
		Type: "checkup",
	})
	require.NoError(t, err)

	assert.Equal(t, schedule.TypeCheckup, result.Type)
	assert.Equal(t, 30*time.Minute, result.Duration)
	require.NotEmpty(t, result.Slots)
	assert.Equal(t, at(t, "2026-09-02", "09:00"), result.Slots[0].Start)

	// No slot may overlap the busy interval.
	for _, slot := range result.Slots {
		assert.False(t, slot.Overlaps(store.busy[0]), "slot %v overlaps busy period", slot)
	}
}

func TestAvailabilityWindow(t *testing.T) {
	svc := newTestService(t, &fakeStore{})

	result, err := svc.Availability(context.Background(), AvailabilityRequest{
		Date:      "2026-09-02",
		Type:      "checkup",
		StartTime: "14:00",
		EndTime:   "16:00",
	})
	require.NoError(t, err)

	require.Len(t, result.Slots, 4)
	assert.Equal(t, at(t, "2026-09-02", "14:00"), result.Slots[0].Start)
	assert.Equal(t, at(t, "2026-09-02", "15:30"), result.Slots[3].Start)
}

func TestAvailabilityClosedDay(t *testing.T) {
	svc := newTestService(t, &fakeStore{})

	// 2026-09-05 is a Saturday.
	result, err := svc.Availability(context.Background(), AvailabilityRequest{
		Date: "2026-09-05",
		Type: "cleaning",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Slots)
}

func TestAvailabilityFiltersLeadTime(t *testing.T) {
	svc := newTestService(t, &fakeStore{})

	// Same day as the clock (Tuesday 12:00, lead time 2h): slots at or
	// before 14:00 are gone.
	result, err := svc.Availability(context.Background(), AvailabilityRequest{
		Date: "2026-09-01",
		Type: "checkup",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Slots)
	assert.True(t, result.Slots[0].Start.After(at(t, "2026-09-01", "14:00")))
}

func TestAvailabilityValidation(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	ctx := context.Background()

	_, err := svc.Availability(ctx, AvailabilityRequest{Date: "2026-09-02"})
	var invalid *InvalidRequestError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "appointment_type", invalid.Field)

	_, err = svc.Availability(ctx, AvailabilityRequest{Date: "2026-09-02", Type: "tattoo"})
	require.ErrorAs(t, err, &invalid)

	// A checkup longer than its per-type maximum.
	_, err = svc.Availability(ctx, AvailabilityRequest{Date: "2026-09-02", Type: "checkup", DurationMinutes: 45})
	var duration *schedule.InvalidDurationError
	require.ErrorAs(t, err, &duration)
	assert.Equal(t, schedule.TypeCheckup, duration.Type)
}

func TestBook(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store)

	appointment, err := svc.Book(context.Background(), BookRequest{
		PatientName:  "Jane de Vries",
		PatientEmail: "jane@example.com",
		PatientPhone: "+31612345678",
		DateTime:     "2026-09-02 10:00",
		Type:         "cleaning",
		Notes:        "first visit",
	})
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	input := store.created[0]
	assert.Equal(t, at(t, "2026-09-02", "10:00"), input.Start)
	// Cleaning defaults to 45 minutes.
	assert.Equal(t, at(t, "2026-09-02", "10:45"), input.End)
	assert.Equal(t, schedule.TypeCleaning, input.Type)
	assert.Equal(t, "evt_new", appointment.ID)
}

func TestBookSplitDateAndTime(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store)

	_, err := svc.Book(context.Background(), BookRequest{
		PatientName:  "Jane de Vries",
		PatientEmail: "jane@example.com",
		Date:         "2026-09-02",
		StartTime:    "10:00",
		Type:         "checkup",
	})
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, at(t, "2026-09-02", "10:00"), store.created[0].Start)

	// A relative phrase also works for the date half: the clock is
	// Tuesday, so "tomorrow" is Wednesday the 2nd.
	_, err = svc.Book(context.Background(), BookRequest{
		PatientName:  "Jane de Vries",
		PatientEmail: "jane@example.com",
		Date:         "tomorrow",
		StartTime:    "11:00",
		Type:         "checkup",
	})
	require.NoError(t, err)
	require.Len(t, store.created, 2)
	assert.Equal(t, at(t, "2026-09-02", "11:00"), store.created[1].Start)
}

func TestBookConflict(t *testing.T) {
	store := &fakeStore{
		busy: []schedule.Interval{
			{Start: at(t, "2026-09-02", "10:30"), End: at(t, "2026-09-02", "11:00")},
		},
	}
	svc := newTestService(t, store)

	_, err := svc.Book(context.Background(), BookRequest{
		PatientName:  "Jane de Vries",
		PatientEmail: "jane@example.com",
		DateTime:     "2026-09-02 10:00",
		Type:         "cleaning",
	})
	var taken *SlotTakenError
	require.ErrorAs(t, err, &taken)
	assert.Empty(t, store.created)
}

func TestBookPolicyViolations(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	ctx := context.Background()

	base := BookRequest{
		PatientName:  "Jane de Vries",
		PatientEmail: "jane@example.com",
		Type:         "checkup",
	}

	tests := []struct {
		name     string
		dateTime string
		reason   schedule.PolicyReason
	}{
		{"weekend", "2026-09-05 10:00", schedule.ReasonWeekend},
		{"outside hours", "2026-09-02 18:00", schedule.ReasonOutsideHours},
		{"too soon", "2026-09-01 13:00", schedule.ReasonTooSoon},
		{"too far out", "2027-01-15 10:00", schedule.ReasonTooFarOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			req.DateTime = tt.dateTime
			_, err := svc.Book(ctx, req)
			var policyErr *schedule.OutOfPolicyError
			require.ErrorAs(t, err, &policyErr)
			assert.Equal(t, tt.reason, policyErr.Reason)
		})
	}
}

func TestBookMissingFields(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	ctx := context.Background()

	var invalid *InvalidRequestError

	_, err := svc.Book(ctx, BookRequest{PatientEmail: "jane@example.com", DateTime: "2026-09-02 10:00", Type: "checkup"})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "patient_name", invalid.Field)

	_, err = svc.Book(ctx, BookRequest{PatientName: "Jane", DateTime: "2026-09-02 10:00", Type: "checkup"})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "patient_email", invalid.Field)
}

func TestCancel(t *testing.T) {
	store := &fakeStore{
		appointments: []calendar.Appointment{
			{
				ID:          "evt_1",
				PatientName: "Jane de Vries",
				Start:       at(t, "2026-09-02", "10:00"),
				End:         at(t, "2026-09-02", "10:30"),
			},
		},
	}
	svc := newTestService(t, store)

	cancelled, err := svc.Cancel(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.Equal(t, "evt_1", cancelled.ID)
	assert.Equal(t, []string{"evt_1"}, store.deleted)

	_, err = svc.Cancel(context.Background(), "evt_missing")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "evt_missing", notFound.ID)
}

func TestReschedule(t *testing.T) {
	store := &fakeStore{
		appointments: []calendar.Appointment{
			{
				ID:    "evt_1",
				Type:  schedule.TypeCheckup,
				Start: at(t, "2026-09-02", "10:00"),
				End:   at(t, "2026-09-02", "10:30"),
			},
		},
	}
	svc := newTestService(t, store)

	// Moving within the appointment's own footprint must not count as a
	// conflict with itself.
	moved, err := svc.Reschedule(context.Background(), RescheduleRequest{
		ID:          "evt_1",
		NewDateTime: "2026-09-02 10:15",
	})
	require.NoError(t, err)
	assert.Equal(t, at(t, "2026-09-02", "10:15"), moved.Start)
	assert.Equal(t, at(t, "2026-09-02", "10:45"), moved.End)
}

func TestRescheduleConflict(t *testing.T) {
	store := &fakeStore{
		appointments: []calendar.Appointment{
			{
				ID:    "evt_1",
				Type:  schedule.TypeCheckup,
				Start: at(t, "2026-09-02", "10:00"),
				End:   at(t, "2026-09-02", "10:30"),
			},
			{
				ID:    "evt_2",
				Type:  schedule.TypeCleaning,
				Start: at(t, "2026-09-02", "14:00"),
				End:   at(t, "2026-09-02", "14:45"),
			},
		},
	}
	svc := newTestService(t, store)

	_, err := svc.Reschedule(context.Background(), RescheduleRequest{
		ID:          "evt_1",
		NewDateTime: "2026-09-02 14:15",
	})
	var taken *SlotTakenError
	require.ErrorAs(t, err, &taken)
	assert.Empty(t, store.moved)
}

func TestReschedulePolicyGate(t *testing.T) {
	store := &fakeStore{
		appointments: []calendar.Appointment{
			{
				ID:    "evt_1",
				Type:  schedule.TypeCheckup,
				Start: at(t, "2026-09-02", "10:00"),
				End:   at(t, "2026-09-02", "10:30"),
			},
		},
	}
	svc := newTestService(t, store)

	_, err := svc.Reschedule(context.Background(), RescheduleRequest{
		ID:          "evt_1",
		NewDateTime: "2026-09-05 10:00", // Saturday
	})
	var policyErr *schedule.OutOfPolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Equal(t, schedule.ReasonWeekend, policyErr.Reason)
}

func TestList(t *testing.T) {
	store := &fakeStore{
		appointments: []calendar.Appointment{
			{ID: "evt_1", Start: at(t, "2026-09-02", "10:00"), End: at(t, "2026-09-02", "10:30")},
			{ID: "evt_2", Start: at(t, "2026-10-01", "10:00"), End: at(t, "2026-10-01", "10:30")},
		},
	}
	svc := newTestService(t, store)

	// Default range is today plus a week: only evt_1 falls inside.
	appointments, err := svc.List(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, "evt_1", appointments[0].ID)

	appointments, err = svc.List(context.Background(), "2026-09-01", "2026-10-31")
	require.NoError(t, err)
	assert.Len(t, appointments, 2)

	_, err = svc.List(context.Background(), "2026-09-10", "2026-09-01")
	var invalid *InvalidRequestError
	require.ErrorAs(t, err, &invalid)
}

func TestListPropagatesStoreErrors(t *testing.T) {
	store := &fakeStore{listErr: errors.New("backend unavailable")}
	svc := newTestService(t, store)

	_, err := svc.List(context.Background(), "", "")
	require.Error(t, err)
}

func TestFindByPhone(t *testing.T) {
	store := &fakeStore{
		appointments: []calendar.Appointment{
			{ID: "evt_1", PatientPhone: "+31612345678", Start: at(t, "2026-09-02", "10:00"), End: at(t, "2026-09-02", "10:30")},
			{ID: "evt_2", PatientPhone: "+31687654321", Start: at(t, "2026-09-03", "10:00"), End: at(t, "2026-09-03", "10:30")},
		},
	}
	svc := newTestService(t, store)

	matches, err := svc.FindByPhone(context.Background(), "0612345678")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "evt_1", matches[0].ID)

	_, err = svc.FindByPhone(context.Background(), "")
	var invalid *InvalidRequestError
	require.ErrorAs(t, err, &invalid)
}
