package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/salon-booking/internal/calendar"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/session"
)

var (
	testNow   = time.Date(2025, 9, 13, 14, 35, 0, 0, time.UTC)
	testToday = calendar.DateOf(testNow)

	facial = model.Service{
		ID:              2,
		Name:            "抗衰老面部护理",
		Price:           498,
		DurationMinutes: 90,
		Category:        "面部护理",
		IsActive:        true,
	}
)

func mustStep(t *testing.T, s State, ev Event) State {
	t.Helper()
	next, err := Transition(s, ev)
	if err != nil {
		t.Fatalf("Transition(%s, %T): %v", s.Step, ev, err)
	}
	return next
}

func readyToConfirm(t *testing.T) State {
	t.Helper()
	s := mustStep(t, State{}, ServiceSelected{Service: facial})
	s = mustStep(t, s, DateSelected{Date: testToday.AddDays(1), Now: testNow})
	return mustStep(t, s, TimeSelected{Label: "10:00", Now: testNow})
}

func wantKind(t *testing.T, err error, k Kind) {
	t.Helper()
	var fe *FlowError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FlowError", err)
	}
	if fe.Kind != k {
		t.Fatalf("kind = %s, want %s (%v)", fe.Kind, k, err)
	}
}

func TestTransition_HappyPath(t *testing.T) {
	s := readyToConfirm(t)
	if s.Step != AwaitingConfirmation || !s.Selection.Complete() {
		t.Fatalf("state = %+v", s)
	}
	s = mustStep(t, s, ConfirmRequested{Decision: session.Allow, Now: testNow})
	if !s.Submitting {
		t.Fatal("expected Submitting after confirm")
	}
	b := NewBooking(s.Selection, 7, "")
	if b.Status != model.StatusPending || b.ServiceID != 2 || b.BookingTime != "10:00" || !b.BookingDate.Equal(testToday.AddDays(1)) {
		t.Fatalf("payload = %+v", b)
	}
	b.ID = 99
	s = mustStep(t, s, PersistSucceeded{Booking: b})
	if s.Step != Confirmed || s.Submitting || s.Booking.ID != 99 {
		t.Fatalf("state = %+v", s)
	}
	if IntentFor(s).Page != "/my-bookings" {
		t.Errorf("intent = %+v", IntentFor(s))
	}
}

func TestTransition_RejectionsLeaveStateUnchanged(t *testing.T) {
	ready := readyToConfirm(t)
	cases := []struct {
		name string
		s    State
		ev   Event
		kind Kind
	}{
		{"time before date", mustStep(t, State{}, ServiceSelected{Service: facial}), TimeSelected{Label: "10:00", Now: testNow}, KindOutOfOrder},
		{"date before service", State{}, DateSelected{Date: testToday.AddDays(1), Now: testNow}, KindOutOfOrder},
		{"confirm early", mustStep(t, State{}, ServiceSelected{Service: facial}), ConfirmRequested{Decision: session.Allow, Now: testNow}, KindOutOfOrder},
		{"back at start", State{}, BackRequested{}, KindOutOfOrder},
		{"service twice", mustStep(t, State{}, ServiceSelected{Service: facial}), ServiceSelected{Service: facial}, KindOutOfOrder},
		{"inactive service", State{}, ServiceSelected{Service: model.Service{ID: 3, Price: 1, DurationMinutes: 1}}, KindInvalidSelection},
		{"past date", mustStep(t, State{}, ServiceSelected{Service: facial}), DateSelected{Date: testToday.AddDays(-1), Now: testNow}, KindInvalidSelection},
		{"beyond window", mustStep(t, State{}, ServiceSelected{Service: facial}), DateSelected{Date: testToday.AddDays(7), Latest: testToday.AddDays(6), Now: testNow}, KindInvalidSelection},
		{"elapsed slot", mustStep(t, mustStep(t, State{}, ServiceSelected{Service: facial}), DateSelected{Date: testToday, Now: testNow}), TimeSelected{Label: "14:00", Now: testNow}, KindInvalidSelection},
		{"unknown slot", ready, TimeSelected{Label: "20:00", Now: testNow}, KindInvalidSelection},
		{"anonymous confirm", ready, ConfirmRequested{Decision: session.Redirect, Now: testNow}, KindAuthRequired},
		{"pending confirm", ready, ConfirmRequested{Decision: session.Pending, Now: testNow}, KindAuthRequired},
		{"slot passed by confirm", ready, ConfirmRequested{Decision: session.Allow, Now: testNow.Add(24 * time.Hour)}, KindInvalidSelection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.s, tc.ev)
			wantKind(t, err, tc.kind)
			if next.Step != tc.s.Step || next.Selection != tc.s.Selection || next.Submitting != tc.s.Submitting {
				t.Fatalf("state changed on rejection: %+v -> %+v", tc.s, next)
			}
		})
	}
}

func TestTransition_AuthRequiredCarriesDecision(t *testing.T) {
	_, err := Transition(readyToConfirm(t), ConfirmRequested{Decision: session.Pending, Now: testNow})
	var fe *FlowError
	if !errors.As(err, &fe) || fe.Decision != session.Pending || !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("err = %v", err)
	}
}

func TestTransition_SubmittingBlocksOtherEvents(t *testing.T) {
	s := mustStep(t, readyToConfirm(t), ConfirmRequested{Decision: session.Allow, Now: testNow})
	for _, ev := range []Event{
		BackRequested{},
		TimeSelected{Label: "11:00", Now: testNow},
		ConfirmRequested{Decision: session.Allow, Now: testNow},
	} {
		if _, err := Transition(s, ev); !errors.Is(err, ErrOutOfOrder) {
			t.Errorf("%T while submitting: err = %v", ev, err)
		}
	}
}

func TestTransition_PersistFailedKeepsSelection(t *testing.T) {
	ready := readyToConfirm(t)
	s := mustStep(t, ready, ConfirmRequested{Decision: session.Allow, Now: testNow})
	s = mustStep(t, s, PersistFailed{Err: errors.New("db down")})
	if s.Step != AwaitingConfirmation || s.Submitting || s.Selection != ready.Selection {
		t.Fatalf("state = %+v", s)
	}
	// retry
	mustStep(t, s, ConfirmRequested{Decision: session.Allow, Now: testNow})
}

func TestTransition_BackRetainsData(t *testing.T) {
	s := readyToConfirm(t)
	s = mustStep(t, s, BackRequested{})
	if s.Step != AwaitingTime || s.Selection.Time == nil {
		t.Fatalf("back from confirmation: %+v", s)
	}
	s = mustStep(t, s, BackRequested{})
	if s.Step != AwaitingDate || s.Selection.Date == nil {
		t.Fatalf("back from time: %+v", s)
	}
	s = mustStep(t, s, BackRequested{})
	if s.Step != AwaitingService || s.Selection.Service == nil {
		t.Fatalf("back from date: %+v", s)
	}
}

func TestTransition_NewDateClearsTime(t *testing.T) {
	s := readyToConfirm(t)
	s = mustStep(t, s, BackRequested{})
	s = mustStep(t, s, BackRequested{})
	s = mustStep(t, s, DateSelected{Date: testToday.AddDays(2), Now: testNow})
	if s.Step != AwaitingTime || s.Selection.Time != nil {
		t.Fatalf("state = %+v", s)
	}
}

func TestTransition_TodayAfterLastSlotIsSelectable(t *testing.T) {
	late := time.Date(2025, 9, 13, 18, 45, 0, 0, time.UTC)
	s := mustStep(t, mustStep(t, State{}, ServiceSelected{Service: facial}), DateSelected{Date: testToday, Now: late})
	if s.Step != AwaitingTime || !s.Selection.Date.Equal(testToday) {
		t.Fatalf("state = %+v", s)
	}
	if _, err := Transition(s, TimeSelected{Label: "18:00", Now: late}); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("elapsed last slot: err = %v", err)
	}
}

func TestTransition_TimeAfterBackKeepsDate(t *testing.T) {
	s := mustStep(t, State{}, ServiceSelected{Service: facial})
	s = mustStep(t, s, DateSelected{Date: testToday.AddDays(1), Now: testNow})
	s = mustStep(t, s, BackRequested{})
	if s.Step != AwaitingDate || s.Selection.Date == nil {
		t.Fatalf("after back: %+v", s)
	}
	s = mustStep(t, s, TimeSelected{Label: "10:00", Now: testNow})
	if s.Step != AwaitingConfirmation || s.Selection.Time.Label != "10:00" {
		t.Fatalf("state = %+v", s)
	}

	// two steps back, the service step still holds a date
	s = mustStep(t, mustStep(t, mustStep(t, s, BackRequested{}), BackRequested{}), BackRequested{})
	if s.Step != AwaitingService {
		t.Fatalf("step = %s", s.Step)
	}
	if s = mustStep(t, s, TimeSelected{Label: "11:00", Now: testNow}); s.Step != AwaitingConfirmation || !s.Selection.Complete() {
		t.Fatalf("state = %+v", s)
	}
}

func TestTransition_ReselectTimeFromConfirmation(t *testing.T) {
	s := mustStep(t, readyToConfirm(t), TimeSelected{Label: "16:00", Now: testNow})
	if s.Step != AwaitingConfirmation || s.Selection.Time.Label != "16:00" {
		t.Fatalf("state = %+v", s)
	}
}

func TestTransition_Abandon(t *testing.T) {
	s := mustStep(t, readyToConfirm(t), ConfirmRequested{Decision: session.Allow, Now: testNow})
	s = mustStep(t, s, FlowAbandoned{})
	if s.Step != Abandoned || s.Selection.Service != nil {
		t.Fatalf("state = %+v", s)
	}
	if _, err := Transition(s, PersistSucceeded{Booking: model.Booking{ID: 1}}); !errors.Is(err, ErrFlowClosed) {
		t.Fatalf("late result: err = %v", err)
	}
	if _, err := Transition(s, ServiceSelected{Service: facial}); !errors.Is(err, ErrFlowClosed) {
		t.Fatalf("select after abandon: err = %v", err)
	}
	if next, err := Transition(s, FlowAbandoned{}); err != nil || next.Step != Abandoned {
		t.Fatalf("abandon twice: %v", err)
	}
}

func TestTransition_GatingInvariant(t *testing.T) {
	// Walk every event from every reachable state and check that a time is
	// never held without a date, and confirmation never lacks a selection.
	events := []Event{
		ServiceSelected{Service: facial},
		DateSelected{Date: testToday.AddDays(1), Now: testNow},
		TimeSelected{Label: "10:00", Now: testNow},
		BackRequested{},
		ConfirmRequested{Decision: session.Allow, Now: testNow},
		PersistSucceeded{Booking: model.Booking{ID: 1}},
		PersistFailed{Err: errors.New("x")},
		FlowAbandoned{},
	}
	frontier := []State{{}}
	seen := 0
	for depth := 0; depth < 6; depth++ {
		var next []State
		for _, s := range frontier {
			for _, ev := range events {
				n, err := Transition(s, ev)
				if err != nil {
					continue
				}
				seen++
				if n.Selection.Time != nil && n.Selection.Date == nil {
					t.Fatalf("time without date after %T", ev)
				}
				if n.Step == AwaitingConfirmation && !n.Selection.Complete() {
					t.Fatalf("incomplete selection in confirmation after %T", ev)
				}
				if n.Step == Confirmed && n.Booking == nil {
					t.Fatalf("confirmed without booking")
				}
				next = append(next, n)
			}
		}
		frontier = next
	}
	if seen == 0 {
		t.Fatal("no transitions explored")
	}
}

func TestStep_Indicator(t *testing.T) {
	want := map[Step]int{AwaitingService: 1, AwaitingDate: 2, AwaitingTime: 2, AwaitingConfirmation: 3, Confirmed: 3}
	for s, n := range want {
		if s.Indicator() != n {
			t.Errorf("%s.Indicator() = %d, want %d", s, s.Indicator(), n)
		}
	}
}

func TestIntentFor(t *testing.T) {
	s := mustStep(t, mustStep(t, State{}, ServiceSelected{Service: facial}), DateSelected{Date: testToday.AddDays(1), Now: testNow})
	in := IntentFor(s)
	if in.Page != "/booking" || in.Query["service_id"] != "2" || in.Query["date"] != "2025-09-14" {
		t.Fatalf("intent = %+v", in)
	}
	in = IntentFor(readyToConfirm(t))
	if in.Page != "/booking/confirm" || in.Query["time"] != "10:00" {
		t.Fatalf("confirmation intent = %+v", in)
	}
}
