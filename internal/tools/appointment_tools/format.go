package appointment_tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/vanheeren/dentalcal/internal/booking"
	"github.com/vanheeren/dentalcal/internal/calendar"
	"github.com/vanheeren/dentalcal/internal/schedule"
)

// maxListedSlots caps how many slots are read out; the remainder is
// summarized so the voice agent does not recite forty times of day.
const maxListedSlots = 10

// formatAvailability renders the slot list for spoken delivery.
func formatAvailability(svc *booking.Service, result *booking.AvailabilityResult) string {
	date := result.Day.Format("2006-01-02")

	switch {
	case result.Day.Weekday() == time.Saturday || result.Day.Weekday() == time.Sunday:
		return fmt.Sprintf("Clinic is closed on %s", strings.ToLower(result.Day.Weekday().String()))
	case svc.Rules().IsHoliday(result.Day):
		return fmt.Sprintf("Clinic is closed on %s (holiday)", date)
	case len(result.Slots) == 0:
		return fmt.Sprintf("No available slots on %s for %s", date, result.Type)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available slots on %s for %s (%s time):\n", date, result.Type, cityName(svc.Location()))
	for i, slot := range result.Slots {
		if i == maxListedSlots {
			break
		}
		fmt.Fprintf(&b, "- %s\n", slot.Start.Format("15:04"))
	}
	if extra := len(result.Slots) - maxListedSlots; extra > 0 {
		fmt.Fprintf(&b, "... and %d more slots", extra)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatBooked is the confirmation read back after a successful booking.
func formatBooked(a *calendar.Appointment, notes string) string {
	var b strings.Builder
	b.WriteString("✅ Appointment booked successfully!\n\n")
	fmt.Fprintf(&b, "Appointment ID: %s\n", a.ID)
	fmt.Fprintf(&b, "Patient: %s\n", a.PatientName)
	fmt.Fprintf(&b, "Email: %s\n", a.PatientEmail)
	fmt.Fprintf(&b, "Date: %s\n", a.Start.Format("2006-01-02"))
	fmt.Fprintf(&b, "Time: %s\n", a.Start.Format("15:04"))
	fmt.Fprintf(&b, "Type: %s\n", a.Type)
	if notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", notes)
	}
	b.WriteString("\n📅 Event created in Google Calendar")
	return b.String()
}

// formatAppointmentList renders one bullet per appointment.
func formatAppointmentList(appointments []calendar.Appointment, startLabel, endLabel string) string {
	if len(appointments) == 0 {
		return fmt.Sprintf("No appointments found between %s and %s", startLabel, endLabel)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Appointments between %s and %s:\n\n", startLabel, endLabel)
	for _, a := range appointments {
		fmt.Fprintf(&b, "• %s: %s - %s\n", a.ID, a.Summary, a.Start.Format("2006-01-02 15:04"))
	}
	return b.String()
}

// formatAppointmentDetails renders a single appointment in full.
func formatAppointmentDetails(a *calendar.Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Appointment %s:\n\n", a.ID)
	if a.PatientName != "" {
		fmt.Fprintf(&b, "Patient: %s\n", a.PatientName)
	}
	if a.PatientEmail != "" {
		fmt.Fprintf(&b, "Email: %s\n", a.PatientEmail)
	}
	if a.PatientPhone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", a.PatientPhone)
	}
	if a.Type != "" {
		fmt.Fprintf(&b, "Type: %s\n", a.Type)
	}
	fmt.Fprintf(&b, "When: %s (%d minutes)\n", schedule.FormatInstant(a.Start), int(a.End.Sub(a.Start).Minutes()))
	if a.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", a.Notes)
	}
	if a.Status != "" {
		fmt.Fprintf(&b, "Status: %s\n", a.Status)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatRescheduled confirms the move with the new spoken time.
func formatRescheduled(a *calendar.Appointment) string {
	var b strings.Builder
	b.WriteString("✅ Appointment rescheduled!\n\n")
	fmt.Fprintf(&b, "Appointment ID: %s\n", a.ID)
	fmt.Fprintf(&b, "New time: %s", schedule.FormatInstant(a.Start))
	return b.String()
}

// formatCancelled confirms the cancellation.
func formatCancelled(a *calendar.Appointment, reason string) string {
	var b strings.Builder
	b.WriteString("✅ Appointment cancelled.\n\n")
	fmt.Fprintf(&b, "Appointment ID: %s\n", a.ID)
	if a.PatientName != "" {
		fmt.Fprintf(&b, "Patient: %s\n", a.PatientName)
	}
	if !a.Start.IsZero() {
		fmt.Fprintf(&b, "Was scheduled for: %s\n", schedule.FormatInstant(a.Start))
	}
	if reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", reason)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatPhoneMatches renders the lookup result for a phone number.
func formatPhoneMatches(appointments []calendar.Appointment, phone string) string {
	if len(appointments) == 0 {
		return fmt.Sprintf("No upcoming appointments found for %s", phone)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d upcoming appointment(s) for %s:\n\n", len(appointments), phone)
	for _, a := range appointments {
		fmt.Fprintf(&b, "• %s: %s - %s\n", a.ID, a.Summary, a.Start.Format("2006-01-02 15:04"))
	}
	return b.String()
}

// cityName renders an IANA zone for speech: "Europe/Amsterdam" becomes
// "Amsterdam".
func cityName(loc *time.Location) string {
	name := loc.String()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ReplaceAll(name, "_", " ")
}
