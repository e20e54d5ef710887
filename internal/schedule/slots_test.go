package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T) time.Time {
	t.Helper()
	// Friday, March 15th 2024.
	return time.Date(2024, time.March, 15, 0, 0, 0, 0, amsterdam(t))
}

func at(d time.Time, hour, minute int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location())
}

func TestAvailableSlotsEmptyDay(t *testing.T) {
	rules := DefaultRules()
	d := day(t)

	slots := rules.AvailableSlots(d, nil, 30*time.Minute, nil)

	// 09:00 through 16:30 on the 15-minute grid: 31 starts.
	require.Len(t, slots, 31)
	assert.True(t, slots[0].Start.Equal(at(d, 9, 0)))
	assert.True(t, slots[len(slots)-1].Start.Equal(at(d, 16, 30)))
	// Last slot ends exactly at closing time.
	assert.True(t, slots[len(slots)-1].End.Equal(at(d, 17, 0)))
}

func TestAvailableSlotsMorningWindow(t *testing.T) {
	// End-to-end scenario: one busy interval 09:00-09:30, 30-minute slots
	// in a 09:00-12:00 window. First free slot starts 09:30, last 11:30.
	rules := DefaultRules()
	d := day(t)

	busy := []Interval{{Start: at(d, 9, 0), End: at(d, 9, 30)}}
	window := &TimeWindow{Start: ClockTime{Hour: 9}, End: ClockTime{Hour: 12}}

	slots := rules.AvailableSlots(d, busy, 30*time.Minute, window)

	require.NotEmpty(t, slots)
	assert.True(t, slots[0].Start.Equal(at(d, 9, 30)), "first slot = %v", slots[0].Start)
	assert.True(t, slots[1].Start.Equal(at(d, 9, 45)))
	assert.True(t, slots[2].Start.Equal(at(d, 10, 0)))

	last := slots[len(slots)-1]
	assert.True(t, last.Start.Equal(at(d, 11, 30)), "last slot = %v", last.Start)
	assert.True(t, last.End.Equal(at(d, 12, 0)))

	// 09:30 through 11:30 inclusive on the 15-minute grid.
	assert.Len(t, slots, 9)
}

func TestAvailableSlotsBoundary(t *testing.T) {
	rules := DefaultRules()
	d := day(t)

	t.Run("slot ending exactly at close is included", func(t *testing.T) {
		window := &TimeWindow{Start: ClockTime{Hour: 16, Minute: 30}, End: ClockTime{Hour: 17}}
		slots := rules.AvailableSlots(d, nil, 30*time.Minute, window)
		require.Len(t, slots, 1)
		assert.True(t, slots[0].End.Equal(at(d, 17, 0)))
	})

	t.Run("slot spilling past close is dropped, not truncated", func(t *testing.T) {
		window := &TimeWindow{Start: ClockTime{Hour: 16, Minute: 31}, End: ClockTime{Hour: 17}}
		slots := rules.AvailableSlots(d, nil, 30*time.Minute, window)
		assert.Empty(t, slots)
	})
}

func TestAvailableSlotsFixedGranularity(t *testing.T) {
	// Requesting 45-minute slots still advances the scan in 15-minute
	// steps, producing overlapping start candidates.
	rules := DefaultRules()
	d := day(t)

	window := &TimeWindow{Start: ClockTime{Hour: 9}, End: ClockTime{Hour: 11}}
	slots := rules.AvailableSlots(d, nil, 45*time.Minute, window)

	require.NotEmpty(t, slots)
	assert.True(t, slots[0].Start.Equal(at(d, 9, 0)))
	assert.True(t, slots[1].Start.Equal(at(d, 9, 15)))
	assert.True(t, slots[0].Overlaps(slots[1]))

	last := slots[len(slots)-1]
	assert.True(t, last.Start.Equal(at(d, 10, 15)))
	assert.True(t, last.End.Equal(at(d, 11, 0)))
}

func TestAvailableSlotsOverlappingBusy(t *testing.T) {
	rules := DefaultRules()
	d := day(t)

	// Overlapping and adjacent busy intervals; cursor must stay monotonic.
	busy := []Interval{
		{Start: at(d, 9, 0), End: at(d, 10, 0)},
		{Start: at(d, 9, 30), End: at(d, 10, 30)},
		{Start: at(d, 10, 30), End: at(d, 11, 0)},
	}
	window := &TimeWindow{Start: ClockTime{Hour: 9}, End: ClockTime{Hour: 12}}

	slots := rules.AvailableSlots(d, busy, 30*time.Minute, window)

	require.NotEmpty(t, slots)
	assert.True(t, slots[0].Start.Equal(at(d, 11, 0)), "first slot = %v", slots[0].Start)
	for _, s := range slots {
		for _, b := range busy {
			assert.False(t, s.Overlaps(b), "slot %v overlaps busy %v", s, b)
		}
	}
}

func TestAvailableSlotsMidDayGap(t *testing.T) {
	rules := DefaultRules()
	d := day(t)

	busy := []Interval{
		{Start: at(d, 10, 0), End: at(d, 10, 45)},
		{Start: at(d, 14, 0), End: at(d, 15, 0)},
	}

	slots := rules.AvailableSlots(d, busy, 30*time.Minute, nil)

	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.Equal(t, 30*time.Minute, s.Duration())
		assert.False(t, s.Start.Before(at(d, 9, 0)))
		assert.False(t, s.End.After(at(d, 17, 0)))
		for _, b := range busy {
			assert.False(t, s.Overlaps(b), "slot %v overlaps busy %v", s, b)
		}
	}

	// The scan resumes at the busy end, not on the next grid boundary.
	var starts []time.Time
	for _, s := range slots {
		starts = append(starts, s.Start)
	}
	assert.Contains(t, starts, at(d, 10, 45))
}

func TestAvailableSlotsProperties(t *testing.T) {
	// For every valid duration, slots have exactly that length, sit inside
	// business hours, never overlap busy intervals, and the computation is
	// idempotent.
	rules := DefaultRules()
	d := day(t)

	busy := []Interval{
		{Start: at(d, 9, 30), End: at(d, 10, 0)},
		{Start: at(d, 12, 0), End: at(d, 13, 0)},
		{Start: at(d, 16, 0), End: at(d, 16, 30)},
	}

	for minutes := 15; minutes <= 240; minutes += 15 {
		duration := time.Duration(minutes) * time.Minute

		first := rules.AvailableSlots(d, busy, duration, nil)
		second := rules.AvailableSlots(d, busy, duration, nil)
		assert.Equal(t, first, second, "not idempotent for %d minutes", minutes)

		prev := time.Time{}
		for _, s := range first {
			assert.Equal(t, duration, s.Duration())
			assert.False(t, s.Start.Before(at(d, 9, 0)))
			assert.False(t, s.End.After(at(d, 17, 0)))
			assert.True(t, s.Start.After(prev), "slots out of order")
			prev = s.Start
			for _, b := range busy {
				assert.False(t, s.Overlaps(b))
			}
		}
	}
}
