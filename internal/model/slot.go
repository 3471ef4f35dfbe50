package model

import (
	"strings"
	"time"
)

// Slot is one open reservation time on a payload's date.
type Slot struct {
	Hour   int
	Minute int
}

// ParseSlot parses a reservation button label like "7:00PM". Returns false for
// anything that does not look like a clock time; callers skip those entries.
func ParseSlot(text string) (Slot, bool) {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(text), " ", ""))
	t, err := time.Parse("3:04PM", s)
	if err != nil {
		return Slot{}, false
	}
	return Slot{Hour: t.Hour(), Minute: t.Minute()}, true
}

// String renders the slot in the ledger/message format, e.g. "07:00PM".
func (s Slot) String() string {
	return time.Date(0, 1, 1, s.Hour, s.Minute, 0, 0, time.UTC).Format("03:04PM")
}

// Before reports whether s is earlier in the day than o.
func (s Slot) Before(o Slot) bool {
	if s.Hour != o.Hour {
		return s.Hour < o.Hour
	}
	return s.Minute < o.Minute
}

// InWindow reports whether the slot falls inside the half-open hour window
// [minHour, maxHour). A slot at exactly maxHour:00 is out.
func (s Slot) InWindow(minHour, maxHour int) bool {
	return s.Hour >= minHour && s.Hour < maxHour
}

// EarliestSlot returns the earliest of a non-empty slot list.
func EarliestSlot(slots []Slot) Slot {
	earliest := slots[0]
	for _, s := range slots[1:] {
		if s.Before(earliest) {
			earliest = s
		}
	}
	return earliest
}
