// Package logging provides structured logging utilities for the dentalcal
// application.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (patient email and phone anonymization)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "book_appointment")
//	logger.Info("appointment booked",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("booking request",
//	    logging.PatientHash(email))
//
// # Security Considerations
//
// This package is designed with security in mind:
//   - Patient emails and phone numbers are hashed to prevent PII leakage
//     while allowing correlation
//   - OAuth tokens are never logged directly
package logging
