package board

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

const minutesPerDay = 24 * 60

// TimeToMinutes converts "HH:MM" to minutes since midnight.
// Returns 0 for invalid input.
func TimeToMinutes(t string) int {
	if len(t) < 5 {
		return 0
	}
	hours := int(t[0]-'0')*10 + int(t[1]-'0')
	mins := int(t[3]-'0')*10 + int(t[4]-'0')
	return hours*60 + mins
}

// MinutesToTime converts minutes since midnight to "HH:MM" format.
func MinutesToTime(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= minutesPerDay {
		m = minutesPerDay - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// SlotMinutes returns the length of a slot. A slot whose end is not after its
// start runs past midnight.
func SlotMinutes(start, end string) int {
	s, e := TimeToMinutes(start), TimeToMinutes(end)
	if e <= s {
		e += minutesPerDay
	}
	return e - s
}

// FormatClock renders "HH:MM" for display. format "12" gives "9:05 AM";
// anything else returns the 24-hour value unchanged.
func FormatClock(hhmm, format string) string {
	if format != "12" {
		return hhmm
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("3:04 PM")
}

func validateTime(s string) error {
	if len(s) != 5 {
		return fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return nil
}

// sortSlots orders slots by start minutes, keeping insertion order on ties.
func sortSlots(slots []TimeSlot) {
	slices.SortStableFunc(slots, func(a, b TimeSlot) int {
		return cmp.Compare(TimeToMinutes(a.StartTime), TimeToMinutes(b.StartTime))
	})
}
