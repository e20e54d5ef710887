package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vanheeren/dentalcal/internal/schedule"
)

// Defaults for Tandarts Praktijk Van Heeren.
const (
	DefaultClinicName      = "Tandarts Praktijk Van Heeren"
	DefaultTimezone        = "Europe/Amsterdam"
	DefaultOpenAt          = "09:00"
	DefaultCloseAt         = "17:00"
	DefaultMinAdvanceHours = 2
	DefaultMaxAdvanceDays  = 90
	DefaultBufferMinutes   = 5
)

// ClinicConfig is the clinic's scheduling configuration, built once at
// startup and treated as immutable afterwards.
type ClinicConfig struct {
	// ClinicName appears in tool responses and created calendar events.
	ClinicName string

	// Timezone is the IANA zone name all patient-facing date/time
	// interpretation happens in. Location is the resolved zone.
	Timezone string
	Location *time.Location

	// Rules carries business hours, lead time, booking horizon, the
	// conflict buffer, the per-type duration table, and holiday closures.
	Rules schedule.Rules
}

// Load builds a ClinicConfig from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over .env entries.
func Load() (*ClinicConfig, error) {
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load()

	cfg := &ClinicConfig{
		ClinicName: envOrDefault("CLINIC_NAME", DefaultClinicName),
		Timezone:   envOrDefault("CLINIC_TIMEZONE", DefaultTimezone),
		Rules:      schedule.DefaultRules(),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid CLINIC_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	openAt, err := schedule.ParseClockTime(envOrDefault("CLINIC_OPEN", DefaultOpenAt))
	if err != nil {
		return nil, fmt.Errorf("invalid CLINIC_OPEN: %w", err)
	}
	closeAt, err := schedule.ParseClockTime(envOrDefault("CLINIC_CLOSE", DefaultCloseAt))
	if err != nil {
		return nil, fmt.Errorf("invalid CLINIC_CLOSE: %w", err)
	}
	if !openAt.Before(closeAt) {
		return nil, fmt.Errorf("CLINIC_OPEN %s must be before CLINIC_CLOSE %s", openAt, closeAt)
	}
	cfg.Rules.OpenAt = openAt
	cfg.Rules.CloseAt = closeAt

	minAdvance, err := envInt("CLINIC_MIN_ADVANCE_HOURS", DefaultMinAdvanceHours)
	if err != nil {
		return nil, err
	}
	if minAdvance < 0 {
		return nil, fmt.Errorf("CLINIC_MIN_ADVANCE_HOURS must not be negative, got %d", minAdvance)
	}
	cfg.Rules.MinAdvance = time.Duration(minAdvance) * time.Hour

	maxAdvance, err := envInt("CLINIC_MAX_ADVANCE_DAYS", DefaultMaxAdvanceDays)
	if err != nil {
		return nil, err
	}
	if maxAdvance < 1 {
		return nil, fmt.Errorf("CLINIC_MAX_ADVANCE_DAYS must be at least 1, got %d", maxAdvance)
	}
	cfg.Rules.MaxAdvanceDays = maxAdvance

	buffer, err := envInt("CLINIC_BUFFER_MINUTES", DefaultBufferMinutes)
	if err != nil {
		return nil, err
	}
	if buffer < 0 {
		return nil, fmt.Errorf("CLINIC_BUFFER_MINUTES must not be negative, got %d", buffer)
	}
	cfg.Rules.Buffer = time.Duration(buffer) * time.Minute

	holidays, err := parseHolidays(os.Getenv("CLINIC_HOLIDAYS"))
	if err != nil {
		return nil, err
	}
	for day := range holidays {
		cfg.Rules.Holidays[day] = true
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

// parseHolidays parses a comma-separated list of YYYY-MM-DD closure dates.
func parseHolidays(raw string) (map[string]bool, error) {
	holidays := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		day := strings.TrimSpace(part)
		if day == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", day); err != nil {
			return nil, fmt.Errorf("invalid CLINIC_HOLIDAYS entry %q: want YYYY-MM-DD", day)
		}
		holidays[day] = true
	}
	return holidays, nil
}
