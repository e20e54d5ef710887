package appointment_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/vanheeren/dentalcal/internal/booking"
	"github.com/vanheeren/dentalcal/internal/instrumentation"
	"github.com/vanheeren/dentalcal/internal/server"
	"github.com/vanheeren/dentalcal/internal/tools/common"
)

// getBookingService builds a booking service over the server context's
// calendar client.
func getBookingService(sc *server.ServerContext) (*booking.Service, error) {
	client, err := sc.CalendarClient()
	if err != nil {
		return nil, fmt.Errorf("the appointment calendar is not available: %w", err)
	}
	return booking.NewService(client, sc.Clinic()), nil
}

// RegisterAppointmentTools registers all appointment tools with the MCP
// server. In read-only mode the mutating tools (book, cancel, reschedule)
// are not registered.
func RegisterAppointmentTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Check availability tool (read-only, always available)
	checkAvailabilityTool := mcp.NewTool("check_availability",
		mcp.WithDescription("Check available appointment slots for a specific date and time range."),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("The date to check (YYYY-MM-DD, or a phrase like 'tomorrow' or 'next monday')"),
		),
		mcp.WithString("start_time",
			mcp.Description("Earliest time of day to consider (HH:MM, 24-hour)"),
		),
		mcp.WithString("end_time",
			mcp.Description("Latest time of day to consider (HH:MM, 24-hour)"),
		),
		mcp.WithString("appointment_type",
			mcp.Description("Appointment type: cleaning, checkup, consultation, filling, root_canal, crown, extraction, emergency (default: checkup)"),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Description("Appointment duration in minutes (default: the standard duration for the type)"),
		),
	)

	s.AddTool(checkAvailabilityTool, common.InstrumentedToolHandler("check_availability", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckAvailability(ctx, request, sc)
		}))

	// List appointments tool
	listAppointmentsTool := mcp.NewTool("list_appointments",
		mcp.WithDescription("List upcoming appointments for a date range."),
		mcp.WithString("start_date",
			mcp.Required(),
			mcp.Description("Start of the range (YYYY-MM-DD)"),
		),
		mcp.WithString("end_date",
			mcp.Description("End of the range, inclusive (YYYY-MM-DD, default: one week after start)"),
		),
	)

	s.AddTool(listAppointmentsTool, common.InstrumentedToolHandler("list_appointments", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAppointments(ctx, request, sc)
		}))

	// Get appointment tool
	getAppointmentTool := mcp.NewTool("get_appointment",
		mcp.WithDescription("Get details of a specific appointment."),
		mcp.WithString("appointment_id",
			mcp.Required(),
			mcp.Description("The ID of the appointment"),
		),
	)

	s.AddTool(getAppointmentTool, common.InstrumentedToolHandler("get_appointment", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAppointment(ctx, request, sc)
		}))

	// Find appointments by phone tool
	findByPhoneTool := mcp.NewTool("find_appointments_by_phone",
		mcp.WithDescription("Find upcoming appointments by the patient's phone number."),
		mcp.WithString("phone",
			mcp.Required(),
			mcp.Description("The patient's phone number (any common format)"),
		),
	)

	s.AddTool(findByPhoneTool, common.InstrumentedToolHandler("find_appointments_by_phone", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindByPhone(ctx, request, sc)
		}))

	// Register mutating tools only if not in read-only mode
	if !readOnly {
		// Book appointment tool
		bookAppointmentTool := mcp.NewTool("book_appointment",
			mcp.WithDescription("Book a new dental appointment."),
			mcp.WithString("patient_name",
				mcp.Required(),
				mcp.Description("The patient's full name"),
			),
			mcp.WithString("patient_email",
				mcp.Required(),
				mcp.Description("The patient's email address"),
			),
			mcp.WithString("patient_phone",
				mcp.Description("The patient's phone number"),
			),
			mcp.WithString("date",
				mcp.Required(),
				mcp.Description("The appointment date (YYYY-MM-DD, or a phrase like 'tomorrow')"),
			),
			mcp.WithString("start_time",
				mcp.Required(),
				mcp.Description("The start time (HH:MM, 24-hour)"),
			),
			mcp.WithString("appointment_type",
				mcp.Description("Appointment type (default: checkup)"),
			),
			mcp.WithNumber("duration_minutes",
				mcp.Description("Appointment duration in minutes (default: the standard duration for the type)"),
			),
			mcp.WithString("notes",
				mcp.Description("Notes for the practitioner"),
			),
		)

		s.AddTool(bookAppointmentTool, common.InstrumentedBookingHandler("book_appointment", instrumentation.BookingBook, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleBookAppointment(ctx, request, sc)
			}))

		// Reschedule appointment tool
		rescheduleAppointmentTool := mcp.NewTool("reschedule_appointment",
			mcp.WithDescription("Reschedule an existing appointment to a new time."),
			mcp.WithString("appointment_id",
				mcp.Required(),
				mcp.Description("The ID of the appointment to move"),
			),
			mcp.WithString("new_date",
				mcp.Required(),
				mcp.Description("The new date (YYYY-MM-DD, or a phrase like 'next friday')"),
			),
			mcp.WithString("new_start_time",
				mcp.Required(),
				mcp.Description("The new start time (HH:MM, 24-hour)"),
			),
			mcp.WithNumber("duration_minutes",
				mcp.Description("New duration in minutes (default: keep the current duration)"),
			),
		)

		s.AddTool(rescheduleAppointmentTool, common.InstrumentedBookingHandler("reschedule_appointment", instrumentation.BookingReschedule, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleRescheduleAppointment(ctx, request, sc)
			}))

		// Cancel appointment tool
		cancelAppointmentTool := mcp.NewTool("cancel_appointment",
			mcp.WithDescription("Cancel an existing appointment."),
			mcp.WithString("appointment_id",
				mcp.Required(),
				mcp.Description("The ID of the appointment to cancel"),
			),
			mcp.WithString("reason",
				mcp.Description("Why the appointment is being cancelled"),
			),
		)

		s.AddTool(cancelAppointmentTool, common.InstrumentedBookingHandler("cancel_appointment", instrumentation.BookingCancel, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCancelAppointment(ctx, request, sc)
			}))
	}

	return nil
}
