package cmd

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"check_availability", "Availability Tools"},
		{"book_appointment", "Booking Tools"},
		{"reschedule_appointment", "Booking Tools"},
		{"cancel_appointment", "Booking Tools"},
		{"list_appointments", "Lookup Tools"},
		{"get_appointment", "Lookup Tools"},
		{"find_appointments_by_phone", "Lookup Tools"},
		{"something_else", "Other"},
	}

	for _, tt := range tests {
		if got := getCategoryFromToolName(tt.name); got != tt.expected {
			t.Errorf("getCategoryFromToolName(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestGenerateToolMarkdown(t *testing.T) {
	tool := mcp.NewTool("book_appointment",
		mcp.WithDescription("Book a new dental appointment."),
		mcp.WithString("patient_name",
			mcp.Required(),
			mcp.Description("The patient's full name"),
		),
		mcp.WithString("notes",
			mcp.Description("Notes for the practitioner"),
		),
	)

	markdown := generateToolMarkdown(tool)

	if !strings.Contains(markdown, "### book_appointment") {
		t.Errorf("missing tool heading: %q", markdown)
	}
	if !strings.Contains(markdown, "Book a new dental appointment.") {
		t.Errorf("missing description: %q", markdown)
	}
	if !strings.Contains(markdown, "- `patient_name` (required): The patient's full name") {
		t.Errorf("missing required argument line: %q", markdown)
	}
	if !strings.Contains(markdown, "- `notes` (optional): Notes for the practitioner") {
		t.Errorf("missing optional argument line: %q", markdown)
	}
}

func TestGenerateToolsMarkdownGroupsByCategory(t *testing.T) {
	tools := []mcp.Tool{
		mcp.NewTool("check_availability", mcp.WithDescription("Check slots.")),
		mcp.NewTool("book_appointment", mcp.WithDescription("Book.")),
	}

	markdown := generateToolsMarkdown(tools)

	if !strings.Contains(markdown, "## Availability Tools") {
		t.Errorf("missing availability section: %q", markdown)
	}
	if !strings.Contains(markdown, "## Booking Tools") {
		t.Errorf("missing booking section: %q", markdown)
	}
	if !strings.Contains(markdown, "- [Availability Tools](#availability-tools)") {
		t.Errorf("missing table of contents entry: %q", markdown)
	}
}
