package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanheeren/dentalcal/internal/schedule"
)

func TestLoadDefaults(t *testing.T) {
	clearClinicEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultClinicName, cfg.ClinicName)
	assert.Equal(t, "Europe/Amsterdam", cfg.Timezone)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "Europe/Amsterdam", cfg.Location.String())

	assert.Equal(t, schedule.ClockTime{Hour: 9}, cfg.Rules.OpenAt)
	assert.Equal(t, schedule.ClockTime{Hour: 17}, cfg.Rules.CloseAt)
	assert.Equal(t, 2*time.Hour, cfg.Rules.MinAdvance)
	assert.Equal(t, 90, cfg.Rules.MaxAdvanceDays)
	assert.Equal(t, 5*time.Minute, cfg.Rules.Buffer)
	assert.Empty(t, cfg.Rules.Holidays)

	// The per-type table is populated for every known appointment type.
	for _, at := range schedule.AppointmentTypes {
		_, ok := cfg.Rules.Types[at]
		assert.True(t, ok, "missing duration bounds for %s", at)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearClinicEnv(t)
	t.Setenv("CLINIC_NAME", "Praktijk Test")
	t.Setenv("CLINIC_TIMEZONE", "Europe/Berlin")
	t.Setenv("CLINIC_OPEN", "08:30")
	t.Setenv("CLINIC_CLOSE", "18:00")
	t.Setenv("CLINIC_MIN_ADVANCE_HOURS", "4")
	t.Setenv("CLINIC_MAX_ADVANCE_DAYS", "30")
	t.Setenv("CLINIC_BUFFER_MINUTES", "10")
	t.Setenv("CLINIC_HOLIDAYS", "2026-12-25, 2026-12-26")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Praktijk Test", cfg.ClinicName)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.Equal(t, schedule.ClockTime{Hour: 8, Minute: 30}, cfg.Rules.OpenAt)
	assert.Equal(t, schedule.ClockTime{Hour: 18}, cfg.Rules.CloseAt)
	assert.Equal(t, 4*time.Hour, cfg.Rules.MinAdvance)
	assert.Equal(t, 30, cfg.Rules.MaxAdvanceDays)
	assert.Equal(t, 10*time.Minute, cfg.Rules.Buffer)
	assert.True(t, cfg.Rules.Holidays["2026-12-25"])
	assert.True(t, cfg.Rules.Holidays["2026-12-26"])
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown timezone", "CLINIC_TIMEZONE", "Mars/Olympus"},
		{"malformed open time", "CLINIC_OPEN", "9am"},
		{"open after close", "CLINIC_OPEN", "18:00"},
		{"non-numeric lead time", "CLINIC_MIN_ADVANCE_HOURS", "two"},
		{"negative lead time", "CLINIC_MIN_ADVANCE_HOURS", "-1"},
		{"zero horizon", "CLINIC_MAX_ADVANCE_DAYS", "0"},
		{"negative buffer", "CLINIC_BUFFER_MINUTES", "-5"},
		{"malformed holiday", "CLINIC_HOLIDAYS", "Christmas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearClinicEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func clearClinicEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CLINIC_NAME",
		"CLINIC_TIMEZONE",
		"CLINIC_OPEN",
		"CLINIC_CLOSE",
		"CLINIC_MIN_ADVANCE_HOURS",
		"CLINIC_MAX_ADVANCE_DAYS",
		"CLINIC_BUFFER_MINUTES",
		"CLINIC_HOLIDAYS",
	} {
		t.Setenv(key, "")
	}
}
