// Package availability computes the bookable time slots for a calendar day.
// The salon offers ten fixed hourly slots, 09:00 through 18:00.  On the
// current day, slots that start at or before the lead-time cutoff are removed.
package availability

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/salon-booking/internal/calendar"
)

const (
	FirstHour = 9
	LastHour  = 18
	// MorningLastHour is the last slot of the morning half.
	MorningLastHour = 13
	// CutoffMinute is the minute past the hour after which the current hour's
	// slot is no longer offered.
	CutoffMinute = 30
)

var (
	// ErrPastDate is returned when slots are requested for a day before now's
	// day.  Callers must not ask for past dates.
	ErrPastDate = errors.New("availability: date is in the past")
	// ErrUnknownSlot is returned by ParseSlot for labels outside the fixed grid.
	ErrUnknownSlot = errors.New("availability: unknown slot")
)

// TimeSlot is one hourly booking opportunity.  Available is computed per
// request and never stored.
type TimeSlot struct {
	Label     string `json:"label"`
	Hour      int    `json:"hour"`
	Available bool   `json:"is_available"`
}

// IsMorning reports whether the slot belongs to the morning half.
func (s TimeSlot) IsMorning() bool { return s.Hour <= MorningLastHour }

func slotAt(hour int) TimeSlot {
	return TimeSlot{Label: fmt.Sprintf("%02d:00", hour), Hour: hour, Available: true}
}

// AllSlots returns the fixed slot grid in ascending order.
func AllSlots() []TimeSlot {
	out := make([]TimeSlot, 0, LastHour-FirstHour+1)
	for h := FirstHour; h <= LastHour; h++ {
		out = append(out, slotAt(h))
	}
	return out
}

// GetAvailableSlots returns the slots offerable on date as seen at now.  Dates
// after now's day get the whole grid.  On now's day a slot is dropped when
// its hour is before now's hour, or equals it and at least CutoffMinute
// minutes of the hour have elapsed.  date is compared in now's location.
func GetAvailableSlots(date calendar.Date, now time.Time) ([]TimeSlot, error) {
	today := calendar.Today(now)
	if date.Before(today) {
		return nil, ErrPastDate
	}
	all := AllSlots()
	if date.After(today) {
		return all, nil
	}
	out := all[:0]
	for _, s := range all {
		if s.Hour < now.Hour() {
			continue
		}
		if s.Hour == now.Hour() && now.Minute() >= CutoffMinute {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Partition splits ascending slots into the morning (<= 13:00) and afternoon
// (>= 14:00) halves.
func Partition(slots []TimeSlot) (morning, afternoon []TimeSlot) {
	morning = []TimeSlot{}
	afternoon = []TimeSlot{}
	for _, s := range slots {
		if s.IsMorning() {
			morning = append(morning, s)
		} else {
			afternoon = append(afternoon, s)
		}
	}
	return morning, afternoon
}

// Contains reports whether label names one of slots.
func Contains(slots []TimeSlot, label string) bool {
	for _, s := range slots {
		if s.Label == label {
			return true
		}
	}
	return false
}

// ParseSlot maps "10:00" (or "10") to its grid slot.
func ParseSlot(label string) (TimeSlot, error) {
	label = strings.TrimSpace(label)
	h, m, found := strings.Cut(label, ":")
	if found && m != "00" {
		return TimeSlot{}, fmt.Errorf("%w: %q", ErrUnknownSlot, label)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < FirstHour || hour > LastHour {
		return TimeSlot{}, fmt.Errorf("%w: %q", ErrUnknownSlot, label)
	}
	return slotAt(hour), nil
}
