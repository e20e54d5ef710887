package schedule

import (
	"fmt"
	"time"
)

// FormatInstant renders an instant for spoken confirmation, e.g.
// "Friday, March 15th, 2024 at 2:00 PM". Downstream text consumers rely
// on this exact shape; do not change it without checking them.
func FormatInstant(t time.Time) string {
	return fmt.Sprintf("%s, %s %s, %d at %s",
		t.Weekday(), t.Month(), ordinal(t.Day()), t.Year(), t.Format("3:04 PM"))
}

// ordinal returns the day of month with its English ordinal suffix.
func ordinal(day int) string {
	suffix := "th"
	// 11th, 12th and 13th break the last-digit rule.
	if day%100 < 11 || day%100 > 13 {
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", day, suffix)
}
