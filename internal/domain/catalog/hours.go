package catalog

import (
	"fmt"
	"time"
)

// DayHours is an opening window expressed as "HH:MM" wall-clock times
type DayHours struct {
	Open  string `json:"open" yaml:"open"`
	Close string `json:"close" yaml:"close"`
}

// OpeningHours maps a weekday to its opening window; a nil or missing
// entry means the store is closed that day.
type OpeningHours map[time.Weekday]*DayHours

// For returns the window for a weekday, or nil when closed
func (h OpeningHours) For(day time.Weekday) *DayHours {
	if h == nil {
		return nil
	}
	return h[day]
}

// IsOpenAt reports whether t falls inside the window of its weekday.
// Windows closing at or before their opening time run past midnight.
func (h OpeningHours) IsOpenAt(t time.Time) bool {
	window := h.For(t.Weekday())
	if window == nil {
		return false
	}
	open, err := minutesOfDay(window.Open)
	if err != nil {
		return false
	}
	closeAt, err := minutesOfDay(window.Close)
	if err != nil {
		return false
	}
	now := t.Hour()*60 + t.Minute()
	if closeAt <= open {
		return now >= open || now < closeAt
	}
	return now >= open && now < closeAt
}

func (h OpeningHours) validate() error {
	for day, window := range h {
		if window == nil {
			continue
		}
		if _, err := minutesOfDay(window.Open); err != nil {
			return fmt.Errorf("%s opening time: %w", day, err)
		}
		if _, err := minutesOfDay(window.Close); err != nil {
			return fmt.Errorf("%s closing time: %w", day, err)
		}
	}
	return nil
}

func minutesOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	return t.Hour()*60 + t.Minute(), nil
}
