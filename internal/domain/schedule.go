package domain

import "time"

// The booking grid is fixed: every 30 minutes from 08:00 to 20:00 inclusive,
// skipping the 12:00 and 12:30 lunch slots, 23 candidate times per day.
const (
	gridOpenHour   = 8
	gridCloseHour  = 20
	gridStepMin    = 30
	lunchSlotOne   = "12:00"
	lunchSlotTwo   = "12:30"
	SlotTimeLayout = "15:04"
	SlotDateLayout = "2006-01-02"
)

// SlotGrid returns all candidate "HH:MM" times for one day.
func SlotGrid() []string {
	slots := make([]string, 0, 23)
	t := time.Date(0, 1, 1, gridOpenHour, 0, 0, 0, time.UTC)
	end := time.Date(0, 1, 1, gridCloseHour, 0, 0, 0, time.UTC)
	for !t.After(end) {
		hm := t.Format(SlotTimeLayout)
		if hm != lunchSlotOne && hm != lunchSlotTwo {
			slots = append(slots, hm)
		}
		t = t.Add(gridStepMin * time.Minute)
	}
	return slots
}

// ValidSlotTime reports whether hm is one of the grid times.
func ValidSlotTime(hm string) bool {
	for _, s := range SlotGrid() {
		if s == hm {
			return true
		}
	}
	return false
}

// AvailableTimes computes the bookable times for date given the set of
// already reserved "HH:MM" values on that date. Dates strictly before today
// have no bookable times. Pure over its inputs; callers must recompute on
// every query because reservations change concurrently.
func AvailableTimes(date, today time.Time, reserved map[string]bool) []string {
	if DateOnly(date).Before(DateOnly(today)) {
		return []string{}
	}
	out := make([]string, 0, 23)
	for _, hm := range SlotGrid() {
		if !reserved[hm] {
			out = append(out, hm)
		}
	}
	return out
}

// DateOnly truncates t to midnight UTC so (date, time) pairs compare by
// calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
