package calendar

import (
	"fmt"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/vanheeren/dentalcal/internal/schedule"
)

// Appointment is a booked appointment reconstructed from a calendar event.
type Appointment struct {
	ID           string
	Summary      string
	PatientName  string
	PatientEmail string
	PatientPhone string
	Type         schedule.AppointmentType
	Notes        string
	Start        time.Time
	End          time.Time
	Status       string
}

// Interval returns the appointment's occupied time as a schedule interval.
func (a Appointment) Interval() schedule.Interval {
	return schedule.Interval{Start: a.Start, End: a.End}
}

// AppointmentInput carries everything needed to create an appointment event.
type AppointmentInput struct {
	PatientName  string
	PatientEmail string
	PatientPhone string
	Type         schedule.AppointmentType
	Notes        string
	Start        time.Time
	End          time.Time
	Timezone     string
}

// composeSummary builds the event title, e.g. "Checkup - Jane de Vries".
func composeSummary(at schedule.AppointmentType, patientName string) string {
	return fmt.Sprintf("%s - %s", titleCase(string(at)), patientName)
}

// composeDescription builds the fixed-layout event description the parser
// on the read side understands.
func composeDescription(in AppointmentInput) string {
	notes := in.Notes
	if notes == "" {
		notes = "None"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Patient: %s\n", in.PatientName)
	fmt.Fprintf(&b, "Email: %s\n", in.PatientEmail)
	if in.PatientPhone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", in.PatientPhone)
	}
	fmt.Fprintf(&b, "Type: %s\n", in.Type)
	fmt.Fprintf(&b, "Notes: %s", notes)
	return b.String()
}

// titleCase renders an appointment type for the event title: underscores
// become spaces and each word is capitalized ("root_canal" -> "Root Canal").
func titleCase(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// toAppointment maps a calendar event back to an Appointment, recovering
// patient details from the description layout written by composeDescription.
// Events created outside this system map with empty patient fields.
func toAppointment(event *calendar.Event, loc *time.Location) Appointment {
	a := Appointment{
		ID:      event.Id,
		Summary: event.Summary,
		Status:  event.Status,
	}

	if event.Start != nil && event.Start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, event.Start.DateTime); err == nil {
			a.Start = t.In(loc)
		}
	}
	if event.End != nil && event.End.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, event.End.DateTime); err == nil {
			a.End = t.In(loc)
		}
	}

	for _, line := range strings.Split(event.Description, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Patient":
			a.PatientName = value
		case "Email":
			a.PatientEmail = value
		case "Phone":
			a.PatientPhone = value
		case "Type":
			if at, err := schedule.ParseAppointmentType(value); err == nil {
				a.Type = at
			}
		case "Notes":
			if value != "None" {
				a.Notes = value
			}
		}
	}

	return a
}

// NormalizePhone reduces a phone number to bare digits for comparison.
// A leading international prefix ("+" or "00") is dropped so that
// "+31 6 1234 5678", "0031612345678" and "0612345678" can still match.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	digits = strings.TrimPrefix(digits, "00")
	return digits
}

// PhoneMatches reports whether two phone numbers plausibly refer to the
// same line. After normalization, numbers match when equal or when one is
// a suffix of the other (country code vs. local leading zero).
func PhoneMatches(a, b string) bool {
	na, nb := NormalizePhone(a), NormalizePhone(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	// Compare the subscriber part, ignoring country code or leading zero.
	// Require a reasonable length so "8" does not match everything.
	const minSuffix = 7
	if len(na) >= minSuffix && strings.HasSuffix(nb, strings.TrimPrefix(na, "0")) {
		return true
	}
	if len(nb) >= minSuffix && strings.HasSuffix(na, strings.TrimPrefix(nb, "0")) {
		return true
	}
	return false
}
