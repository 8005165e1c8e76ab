// Package booking implements the booking flow: a pure state-transition
// function over the customer's in-progress selection, and a Controller that
// feeds it events and calls the booking store on confirmation.
package booking

import (
	"time"

	"github.com/iliyamo/salon-booking/internal/availability"
	"github.com/iliyamo/salon-booking/internal/calendar"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/session"
)

// Step is the position of a flow in the booking sequence.
type Step int

const (
	AwaitingService Step = iota
	AwaitingDate
	AwaitingTime
	AwaitingConfirmation
	Confirmed
	Abandoned
)

var stepNames = [...]string{
	AwaitingService:      "awaiting_service",
	AwaitingDate:         "awaiting_date",
	AwaitingTime:         "awaiting_time",
	AwaitingConfirmation: "awaiting_confirmation",
	Confirmed:            "confirmed",
	Abandoned:            "abandoned",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

// MarshalText lets Step appear by name in JSON.
func (s Step) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether no further transition is possible.
func (s Step) Terminal() bool { return s == Confirmed || s == Abandoned }

// Indicator maps the step onto the three-stage progress indicator shown to
// customers: 1 choose service, 2 choose time, 3 confirm.
func (s Step) Indicator() int {
	switch s {
	case AwaitingService:
		return 1
	case AwaitingDate, AwaitingTime:
		return 2
	default:
		return 3
	}
}

// Selection is the in-progress choice.  A non-nil Time always comes with a
// non-nil Date.
type Selection struct {
	Service *model.Service
	Date    *calendar.Date
	Time    *availability.TimeSlot
}

// Complete reports whether service, date and time are all chosen.
func (s Selection) Complete() bool { return s.Service != nil && s.Date != nil && s.Time != nil }

// State is the full flow state.  Submitting is set while a confirmation is
// being persisted; Booking is set once the flow is Confirmed.
type State struct {
	Step       Step
	Selection  Selection
	Submitting bool
	Booking    *model.Booking
}

// Event is an input to Transition.
type Event interface{ event() }

// ServiceSelected chooses the service to book.
type ServiceSelected struct{ Service model.Service }

// DateSelected chooses the appointment day.  Latest, when non-zero, is the
// last day customers may book.
type DateSelected struct {
	Date   calendar.Date
	Latest calendar.Date
	Now    time.Time
}

// TimeSelected chooses a slot by label ("10:00") on the selected day.
type TimeSelected struct {
	Label string
	Now   time.Time
}

// BackRequested returns to the previous step.
type BackRequested struct{}

// ConfirmRequested asks to persist the selection.  Decision is the session
// gate's verdict for the caller.
type ConfirmRequested struct {
	Decision session.Decision
	Now      time.Time
}

// PersistSucceeded reports that the store saved the booking.
type PersistSucceeded struct{ Booking model.Booking }

// PersistFailed reports that the store call failed.
type PersistFailed struct{ Err error }

// FlowAbandoned tears the flow down and discards the selection.
type FlowAbandoned struct{}

func (ServiceSelected) event()  {}
func (DateSelected) event()     {}
func (TimeSelected) event()     {}
func (BackRequested) event()    {}
func (ConfirmRequested) event() {}
func (PersistSucceeded) event() {}
func (PersistFailed) event()    {}
func (FlowAbandoned) event()    {}
