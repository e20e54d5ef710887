package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/vanheeren/dentalcal/internal/server"
)

// RegisterClinicResources registers static clinic information resources.
// These let an agent answer questions about the practice without spending
// a tool call: opening hours, booking rules and the appointment type table.
func RegisterClinicResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	infoResource := mcp.NewResource(
		"clinic://info",
		"Clinic Information",
		mcp.WithResourceDescription("Name, timezone, opening hours and booking rules of the clinic"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(infoResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleClinicInfo(ctx, request, sc)
	})

	typesResource := mcp.NewResource(
		"clinic://appointment-types",
		"Appointment Types",
		mcp.WithResourceDescription("The appointment types the clinic offers, with their duration rules"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(typesResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAppointmentTypes(ctx, request, sc)
	})

	return nil
}

// handleClinicInfo returns the clinic's identity and booking rules.
func handleClinicInfo(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	clinic := sc.Clinic()
	rules := clinic.Rules

	holidays := make([]string, 0, len(rules.Holidays))
	for day := range rules.Holidays {
		holidays = append(holidays, day)
	}
	sort.Strings(holidays)

	infoData := map[string]interface{}{
		"name":            clinic.ClinicName,
		"timezone":        clinic.Timezone,
		"opensAt":         rules.OpenAt.String(),
		"closesAt":        rules.CloseAt.String(),
		"closedOn":        []string{"saturday", "sunday"},
		"holidays":        holidays,
		"minAdvance":      rules.MinAdvance.String(),
		"maxAdvanceDays":  rules.MaxAdvanceDays,
		"slotGranularity": "15m",
	}

	jsonData, err := json.MarshalIndent(infoData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal clinic info: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// handleAppointmentTypes returns the appointment type table.
func handleAppointmentTypes(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	rules := sc.Clinic().Rules

	types := make([]map[string]interface{}, 0, len(rules.Types))
	for at, bounds := range rules.Types {
		types = append(types, map[string]interface{}{
			"type":            string(at),
			"description":     bounds.Description,
			"defaultDuration": int(bounds.Default.Minutes()),
			"minDuration":     int(bounds.Min.Minutes()),
			"maxDuration":     int(bounds.Max.Minutes()),
		})
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i]["type"].(string) < types[j]["type"].(string)
	})

	jsonData, err := json.MarshalIndent(types, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal appointment types: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
