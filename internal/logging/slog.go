package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation     = "operation"
	KeyTool          = "tool"
	KeyTransport     = "transport"
	KeyAppointmentID = "appointment_id"
	KeyPatientHash   = "patient_hash"
	KeyDuration      = "duration"
	KeyStatus        = "status"
	KeyError         = "error"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithTransport returns a logger with the transport attribute set.
func WithTransport(logger *slog.Logger, transport string) *slog.Logger {
	return logger.With(slog.String(KeyTransport, transport))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// AppointmentID returns a slog attribute for a calendar event ID. Event
// IDs are opaque and carry no PII, so they are logged verbatim.
func AppointmentID(id string) slog.Attr {
	return slog.String(KeyAppointmentID, id)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		// Return an empty Group that slog will omit from output
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a hashed representation of a patient email for
// logging purposes. This allows correlation of log entries without
// exposing PII.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return "patient:" + hex.EncodeToString(hash[:8])
}

// AnonymizePhone returns a hashed representation of a patient phone
// number. Formatting characters are stripped first so the same number
// always hashes identically regardless of how the caller wrote it.
func AnonymizePhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '+' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(digits))
	return "phone:" + hex.EncodeToString(hash[:8])
}

// PatientHash returns a slog attribute with the anonymized patient email.
// This is a convenience function to reduce repetition in logging calls and
// ensure consistent attribute naming across the codebase.
//
// Usage:
//
//	logger.Info("appointment booked", logging.PatientHash(email))
func PatientHash(email string) slog.Attr {
	return slog.String(KeyPatientHash, AnonymizeEmail(email))
}

// PhoneHash returns a slog attribute with the anonymized patient phone
// number.
func PhoneHash(phone string) slog.Attr {
	return slog.String(KeyPatientHash, AnonymizePhone(phone))
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content,
// as even partial token prefixes (like JWT headers) can aid attacks.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
