package instrumentation

import "testing"

func TestExtractUserDomain(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"jane@example.com", "example.com"},
		{"user@gmail.com", "gmail.com"},
		{"admin@company.org", "company.org"},
		{"test@subdomain.example.com", "subdomain.example.com"},
		{"invalid", "unknown"},
		{"", "unknown"},
		{"@", "unknown"},
		{"user@", "unknown"},
		{"@domain.com", "domain.com"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			result := ExtractUserDomain(tt.email)
			if result != tt.expected {
				t.Errorf("ExtractUserDomain(%q) = %q, want %q", tt.email, result, tt.expected)
			}
		})
	}
}

func TestSafeTypeLabel(t *testing.T) {
	allowed := map[string]bool{"checkup": true, "cleaning": true}

	tests := []struct {
		input    string
		expected string
	}{
		{"checkup", "checkup"},
		{"cleaning", "cleaning"},
		{"haircut", "unknown"},
		{"", "unknown"},
		{"CHECKUP", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := SafeTypeLabel(tt.input, allowed)
			if result != tt.expected {
				t.Errorf("SafeTypeLabel(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestOperationConstants(t *testing.T) {
	operations := map[string]string{
		OperationListBusy: "list_busy",
		OperationList:     "list",
		OperationGet:      "get",
		OperationCreate:   "create",
		OperationUpdate:   "update",
		OperationDelete:   "delete",
	}

	for constant, expected := range operations {
		if constant != expected {
			t.Errorf("Operation constant = %q, want %q", constant, expected)
		}
	}
}
