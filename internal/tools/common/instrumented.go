package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vanheeren/dentalcal/internal/instrumentation"
	"github.com/vanheeren/dentalcal/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with metrics and audit logging.
// It records tool invocation metrics and logs the invocation for audit purposes.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return InstrumentedBookingHandler(toolName, "", sc, handler)
}

// InstrumentedBookingHandler is like InstrumentedToolHandler but also tags
// the invocation with the booking operation (book, cancel, reschedule) for
// the audit trail.
//
// Usage:
//
//	s.AddTool(bookTool, common.InstrumentedBookingHandler("book_appointment", instrumentation.BookingBook, sc, handler))
func InstrumentedBookingHandler(
	toolName string,
	operation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Get metrics and audit logger (may be nil if not configured)
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		// If no instrumentation configured, just call the handler
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		// Start timing and create invocation record
		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx)
		if operation != "" {
			invocation.WithOperation(operation)
		}

		// Patient identity, when the tool takes one, goes into the audit
		// record in anonymized form.
		args := request.GetArguments()
		email, _ := args["patient_email"].(string)
		phone, _ := args["patient_phone"].(string)
		if email != "" || phone != "" {
			invocation.WithPatient(email, phone)
		}
		if id, ok := args["appointment_id"].(string); ok && id != "" {
			invocation.WithAppointment(id, "")
		}

		// Call the actual handler
		result, err := handler(ctx, request)
		duration := time.Since(start)

		// Determine status
		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			if err != nil {
				invocation.CompleteWithError(err)
			} else {
				invocation.Complete(false, nil)
			}
		} else {
			invocation.CompleteSuccess()
		}

		// Record metrics
		if metrics != nil {
			appointmentType, _ := args["appointment_type"].(string)
			if appointmentType != "" {
				metrics.RecordToolInvocationWithType(ctx, toolName, status, appointmentType, duration)
			} else {
				metrics.RecordToolInvocation(ctx, toolName, status, duration)
			}
			if operation != "" {
				metrics.RecordBooking(ctx, operation, appointmentType, status)
			}
		}

		// Log audit
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}
