package booking

import (
	"errors"
	"strconv"

	"github.com/iliyamo/salon-booking/internal/availability"
	"github.com/iliyamo/salon-booking/internal/calendar"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/session"
)

// Transition applies ev to s.  It has no side effects.  When the event is
// rejected the returned state is s unchanged and the error is a *FlowError,
// or ErrFlowClosed for a store result that arrives after abandonment.
func Transition(s State, ev Event) (State, error) {
	switch e := ev.(type) {
	case FlowAbandoned:
		return abandon(s)
	case PersistSucceeded:
		return persisted(s, e)
	case PersistFailed:
		return persistFailed(s)
	}

	if s.Step == Abandoned {
		return s, ErrFlowClosed
	}
	if s.Step == Confirmed {
		return s, outOfOrder(opName(ev), s.Step)
	}
	if s.Submitting {
		return s, &FlowError{Kind: KindOutOfOrder, Op: opName(ev), Msg: "confirmation in progress"}
	}

	switch e := ev.(type) {
	case ServiceSelected:
		return selectService(s, e)
	case DateSelected:
		return selectDate(s, e)
	case TimeSelected:
		return selectTime(s, e)
	case BackRequested:
		return back(s)
	case ConfirmRequested:
		return confirm(s, e)
	}
	return s, &FlowError{Kind: KindOutOfOrder, Op: opName(ev), Msg: "unknown event"}
}

func opName(ev Event) string {
	switch ev.(type) {
	case ServiceSelected:
		return "select service"
	case DateSelected:
		return "select date"
	case TimeSelected:
		return "select time"
	case BackRequested:
		return "back"
	case ConfirmRequested:
		return "confirm"
	case PersistSucceeded, PersistFailed:
		return "persist"
	case FlowAbandoned:
		return "abandon"
	}
	return "event"
}

func selectService(s State, e ServiceSelected) (State, error) {
	const op = "select service"
	if s.Step != AwaitingService {
		return s, outOfOrder(op, s.Step)
	}
	svc := e.Service
	switch {
	case svc.ID == 0:
		return s, invalid(op, "service id is required")
	case !svc.IsActive:
		return s, invalid(op, "service is not offered")
	case svc.Price == 0 || svc.DurationMinutes == 0:
		return s, invalid(op, "service has no price or duration")
	}
	next := s
	next.Selection.Service = &svc
	next.Step = AwaitingDate
	return next, nil
}

func selectDate(s State, e DateSelected) (State, error) {
	const op = "select date"
	if s.Step == AwaitingService || s.Selection.Service == nil {
		return s, outOfOrder(op, s.Step)
	}
	if e.Date.IsZero() {
		return s, invalid(op, "date is required")
	}
	if !e.Latest.IsZero() && e.Date.After(e.Latest) {
		return s, invalid(op, "date is outside the booking window")
	}
	// Today stays selectable after the last slot; it just lists none.
	_, err := availability.GetAvailableSlots(e.Date, e.Now)
	if errors.Is(err, availability.ErrPastDate) {
		return s, invalid(op, "date is in the past")
	}
	if err != nil {
		return s, &FlowError{Kind: KindInvalidSelection, Op: op, Err: err}
	}
	d := e.Date
	next := s
	next.Selection.Date = &d
	// A new day invalidates the previous slot.
	next.Selection.Time = nil
	next.Step = AwaitingTime
	return next, nil
}

func selectTime(s State, e TimeSelected) (State, error) {
	const op = "select time"
	// Any open step with a stored date accepts a slot, including after back().
	if s.Selection.Date == nil {
		return s, outOfOrder(op, s.Step)
	}
	slot, err := availability.ParseSlot(e.Label)
	if err != nil {
		return s, &FlowError{Kind: KindInvalidSelection, Op: op, Err: err}
	}
	slots, err := availability.GetAvailableSlots(*s.Selection.Date, e.Now)
	if err != nil || !availability.Contains(slots, slot.Label) {
		return s, invalid(op, slot.Label+" is not available")
	}
	next := s
	next.Selection.Time = &slot
	next.Step = AwaitingConfirmation
	return next, nil
}

// back retains every selection made so far.
func back(s State) (State, error) {
	next := s
	switch s.Step {
	case AwaitingDate:
		next.Step = AwaitingService
	case AwaitingTime:
		next.Step = AwaitingDate
	case AwaitingConfirmation:
		next.Step = AwaitingTime
	default:
		return s, outOfOrder("back", s.Step)
	}
	return next, nil
}

func confirm(s State, e ConfirmRequested) (State, error) {
	const op = "confirm"
	if s.Step != AwaitingConfirmation || !s.Selection.Complete() {
		return s, outOfOrder(op, s.Step)
	}
	if e.Decision != session.Allow {
		return s, &FlowError{Kind: KindAuthRequired, Op: op, Decision: e.Decision}
	}
	slots, err := availability.GetAvailableSlots(*s.Selection.Date, e.Now)
	if err != nil || !availability.Contains(slots, s.Selection.Time.Label) {
		return s, invalid(op, s.Selection.Time.Label+" is no longer available")
	}
	next := s
	next.Submitting = true
	return next, nil
}

func persisted(s State, e PersistSucceeded) (State, error) {
	if s.Step == Abandoned {
		return s, ErrFlowClosed
	}
	if !s.Submitting {
		return s, outOfOrder("persist", s.Step)
	}
	b := e.Booking
	next := s
	next.Submitting = false
	next.Booking = &b
	next.Step = Confirmed
	return next, nil
}

// persistFailed leaves the selection intact so the caller can retry.
func persistFailed(s State) (State, error) {
	if s.Step == Abandoned {
		return s, ErrFlowClosed
	}
	if !s.Submitting {
		return s, outOfOrder("persist", s.Step)
	}
	next := s
	next.Submitting = false
	return next, nil
}

func abandon(s State) (State, error) {
	switch s.Step {
	case Abandoned:
		return s, nil
	case Confirmed:
		return s, outOfOrder("abandon", s.Step)
	}
	return State{Step: Abandoned}, nil
}

// NewBooking builds the pending booking for a complete selection.
func NewBooking(sel Selection, userID uint64, notes string) model.Booking {
	return model.Booking{
		UserID:      userID,
		ServiceID:   sel.Service.ID,
		BookingDate: *sel.Date,
		BookingTime: sel.Time.Label,
		Status:      model.StatusPending,
		Notes:       notes,
	}
}

// Intent tells the client which page to show next.
type Intent struct {
	Page  string            `json:"page"`
	Query map[string]string `json:"query,omitempty"`
}

// IntentFor returns the navigation target for s.
func IntentFor(s State) Intent {
	switch s.Step {
	case AwaitingService:
		return Intent{Page: "/services"}
	case AwaitingDate, AwaitingTime, AwaitingConfirmation:
		if s.Selection.Service == nil {
			return Intent{Page: "/services"}
		}
		q := map[string]string{"service_id": strconv.FormatUint(s.Selection.Service.ID, 10)}
		if s.Selection.Date != nil {
			q["date"] = s.Selection.Date.String()
		}
		if s.Step == AwaitingConfirmation && s.Selection.Time != nil {
			q["time"] = s.Selection.Time.Label
			return Intent{Page: "/booking/confirm", Query: q}
		}
		return Intent{Page: "/booking", Query: q}
	case Confirmed:
		return Intent{Page: "/my-bookings"}
	}
	return Intent{Page: "/"}
}

// LoginIntent is where an unauthenticated customer is sent on confirm.
func LoginIntent() Intent { return Intent{Page: "/login"} }

// latestDay is the last bookable day of a window of n days starting today.
func latestDay(today calendar.Date, n int) calendar.Date {
	if n <= 0 {
		return calendar.Date{}
	}
	return today.AddDays(n - 1)
}
