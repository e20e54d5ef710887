package appointment_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vanheeren/dentalcal/internal/booking"
	"github.com/vanheeren/dentalcal/internal/server"
)

// checkAvailabilityParams is the typed argument set of check_availability.
type checkAvailabilityParams struct {
	Date            string
	StartTime       string
	EndTime         string
	AppointmentType string
	DurationMinutes int
}

func bindCheckAvailability(args map[string]any) (checkAvailabilityParams, error) {
	p := checkAvailabilityParams{AppointmentType: "checkup"}

	date, ok := args["date"].(string)
	if !ok || date == "" {
		return p, fmt.Errorf("date is required")
	}
	p.Date = date

	if v, ok := args["start_time"].(string); ok {
		p.StartTime = v
	}
	if v, ok := args["end_time"].(string); ok {
		p.EndTime = v
	}
	if v, ok := args["appointment_type"].(string); ok && v != "" {
		p.AppointmentType = v
	}
	if v, ok := args["duration_minutes"].(float64); ok && v > 0 {
		p.DurationMinutes = int(v)
	}
	return p, nil
}

func handleCheckAvailability(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	p, err := bindCheckAvailability(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := getBookingService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := svc.Availability(ctx, booking.AvailabilityRequest{
		Date:            p.Date,
		Type:            p.AppointmentType,
		DurationMinutes: p.DurationMinutes,
		StartTime:       p.StartTime,
		EndTime:         p.EndTime,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAvailability(svc, result)), nil
}

// bookAppointmentParams is the typed argument set of book_appointment.
type bookAppointmentParams struct {
	PatientName     string
	PatientEmail    string
	PatientPhone    string
	Date            string
	StartTime       string
	AppointmentType string
	DurationMinutes int
	Notes           string
}

func bindBookAppointment(args map[string]any) (bookAppointmentParams, error) {
	p := bookAppointmentParams{AppointmentType: "checkup"}

	name, ok := args["patient_name"].(string)
	if !ok || name == "" {
		return p, fmt.Errorf("patient_name is required")
	}
	p.PatientName = name

	email, ok := args["patient_email"].(string)
	if !ok || email == "" {
		return p, fmt.Errorf("patient_email is required")
	}
	p.PatientEmail = email

	date, ok := args["date"].(string)
	if !ok || date == "" {
		return p, fmt.Errorf("date is required")
	}
	p.Date = date

	startTime, ok := args["start_time"].(string)
	if !ok || startTime == "" {
		return p, fmt.Errorf("start_time is required")
	}
	p.StartTime = startTime

	if v, ok := args["patient_phone"].(string); ok {
		p.PatientPhone = v
	}
	if v, ok := args["appointment_type"].(string); ok && v != "" {
		p.AppointmentType = v
	}
	if v, ok := args["duration_minutes"].(float64); ok && v > 0 {
		p.DurationMinutes = int(v)
	}
	if v, ok := args["notes"].(string); ok {
		p.Notes = v
	}
	return p, nil
}

func handleBookAppointment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	p, err := bindBookAppointment(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := getBookingService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	appointment, err := svc.Book(ctx, booking.BookRequest{
		PatientName:     p.PatientName,
		PatientEmail:    p.PatientEmail,
		PatientPhone:    p.PatientPhone,
		Date:            p.Date,
		StartTime:       p.StartTime,
		Type:            p.AppointmentType,
		DurationMinutes: p.DurationMinutes,
		Notes:           p.Notes,
	})
	if err != nil {
		var taken *booking.SlotTakenError
		if errors.As(err, &taken) {
			return mcp.NewToolResultError(fmt.Sprintf("Sorry, the slot %s at %s is not available.", p.Date, p.StartTime)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBooked(appointment, p.Notes)), nil
}

// listAppointmentsParams is the typed argument set of list_appointments.
type listAppointmentsParams struct {
	StartDate string
	EndDate   string
}

func bindListAppointments(args map[string]any) (listAppointmentsParams, error) {
	var p listAppointmentsParams

	startDate, ok := args["start_date"].(string)
	if !ok || startDate == "" {
		return p, fmt.Errorf("start_date is required")
	}
	p.StartDate = startDate

	if v, ok := args["end_date"].(string); ok {
		p.EndDate = v
	}
	return p, nil
}

func handleListAppointments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	p, err := bindListAppointments(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := getBookingService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	appointments, err := svc.List(ctx, p.StartDate, p.EndDate)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	endLabel := p.EndDate
	if endLabel == "" {
		endLabel = p.StartDate
	}
	return mcp.NewToolResultText(formatAppointmentList(appointments, p.StartDate, endLabel)), nil
}

func handleGetAppointment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, ok := args["appointment_id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("appointment_id is required"), nil
	}

	svc, err := getBookingService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	appointment, err := svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAppointmentDetails(appointment)), nil
}

// rescheduleParams is the typed argument set of reschedule_appointment.
type rescheduleParams struct {
	AppointmentID   string
	NewDate         string
	NewStartTime    string
	DurationMinutes int
}

func bindReschedule(args map[string]any) (rescheduleParams, error) {
	var p rescheduleParams

	id, ok := args["appointment_id"].(string)
	if !ok || id == "" {
		return p, fmt.Errorf("appointment_id is required")
	}
	p.AppointmentID = id

	newDate, ok := args["new_date"].(string)
	if !ok || newDate == "" {
		return p, fmt.Errorf("new_date is required")
	}
	p.NewDate = newDate

	newStartTime, ok := args["new_start_time"].(string)
	if !ok || newStartTime == "" {
		return p, fmt.Errorf("new_start_time is required")
	}
	p.NewStartTime = newStartTime

	if v, ok := args["duration_minutes"].(float64); ok && v > 0 {
		p.DurationMinutes = int(v)
	}
	return p, nil
}

func handleRescheduleAppointment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	p, err := bindReschedule(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := getBookingService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	appointment, err := svc.Reschedule(ctx, booking.RescheduleRequest{
		ID:              p.AppointmentID,
		NewDate:         p.NewDate,
		NewStartTime:    p.NewStartTime,
		DurationMinutes: p.DurationMinutes,
	})
	if err != nil {
		var taken *booking.SlotTakenError
		if errors.As(err, &taken) {
			return mcp.NewToolResultError(fmt.Sprintf("Sorry, the slot %s at %s is not available.", p.NewDate, p.NewStartTime)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRescheduled(appointment)), nil
}

func handleCancelAppointment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, ok := args["appointment_id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("appointment_id is required"), nil
	}
	reason, _ := args["reason"].(string)

	svc, err := getBookingService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	appointment, err := svc.Cancel(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCancelled(appointment, reason)), nil
}

func handleFindByPhone(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	phone, ok := args["phone"].(string)
	if !ok || strings.TrimSpace(phone) == "" {
		return mcp.NewToolResultError("phone is required"), nil
	}

	svc, err := getBookingService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	appointments, err := svc.FindByPhone(ctx, phone)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPhoneMatches(appointments, phone)), nil
}
