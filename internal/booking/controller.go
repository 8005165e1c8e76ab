package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/availability"
	"github.com/iliyamo/salon-booking/internal/calendar"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/session"
)

// Store persists a confirmed booking and returns it with its id and
// timestamps filled in.
type Store interface {
	CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error)
}

// DefaultWindowDays is how many days ahead, today included, customers may book.
const DefaultWindowDays = 7

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// WithLocation sets the salon's time zone; "today" and slot cutoffs are
// evaluated in it.
func WithLocation(loc *time.Location) Option { return func(c *Controller) { c.loc = loc } }

// WithWindowDays sets the booking window.  n <= 0 removes the upper bound.
func WithWindowDays(n int) Option { return func(c *Controller) { c.windowDays = n } }

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option { return func(c *Controller) { c.log = l } }

// Controller drives one customer's booking flow.  It is safe for concurrent
// use; the lock is never held across the store call.
type Controller struct {
	mu    sync.Mutex
	state State

	store      Store
	now        func() time.Time
	loc        *time.Location
	windowDays int
	log        *zap.Logger
}

// NewController returns a flow in AwaitingService.
func NewController(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		now:        time.Now,
		loc:        time.Local,
		windowDays: DefaultWindowDays,
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Snapshot is a read-only view of a flow for clients.
type Snapshot struct {
	Step       Step                   `json:"step"`
	StepNumber int                    `json:"step_number"`
	Service    *model.Service         `json:"service,omitempty"`
	Date       *calendar.Date         `json:"date,omitempty"`
	DateLabel  string                 `json:"date_label,omitempty"`
	Time       *availability.TimeSlot `json:"time,omitempty"`
	Submitting bool                   `json:"submitting"`
	Booking    *model.Booking         `json:"booking,omitempty"`
	Next       Intent                 `json:"next"`
}

func (c *Controller) clock() time.Time { return c.now().In(c.loc) }

func (c *Controller) snapshotLocked() Snapshot {
	s := c.state
	snap := Snapshot{
		Step:       s.Step,
		StepNumber: s.Step.Indicator(),
		Service:    s.Selection.Service,
		Date:       s.Selection.Date,
		Time:       s.Selection.Time,
		Submitting: s.Submitting,
		Booking:    s.Booking,
		Next:       IntentFor(s),
	}
	if s.Selection.Date != nil {
		snap.DateLabel = calendar.FormatChinese(*s.Selection.Date)
	}
	return snap
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current view of the flow.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) apply(ev Event) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := Transition(c.state, ev)
	if err != nil {
		return c.snapshotLocked(), err
	}
	c.state = next
	return c.snapshotLocked(), nil
}

// SelectService stores the service and moves to AwaitingDate.
func (c *Controller) SelectService(svc model.Service) (Snapshot, error) {
	return c.apply(ServiceSelected{Service: svc})
}

// SelectDate stores the day, clears any chosen slot and moves to AwaitingTime.
func (c *Controller) SelectDate(d calendar.Date) (Snapshot, error) {
	now := c.clock()
	return c.apply(DateSelected{Date: d, Latest: latestDay(calendar.Today(now), c.windowDays), Now: now})
}

// SelectTime stores the slot and moves to AwaitingConfirmation.
func (c *Controller) SelectTime(label string) (Snapshot, error) {
	return c.apply(TimeSelected{Label: label, Now: c.clock()})
}

// Back returns to the previous step, keeping the selections.
func (c *Controller) Back() (Snapshot, error) { return c.apply(BackRequested{}) }

// Abandon tears the flow down.  A confirmation still in flight is discarded
// when its result arrives.
func (c *Controller) Abandon() (Snapshot, error) { return c.apply(FlowAbandoned{}) }

// Slots returns the slots for the selected day, or ErrOutOfOrder before a day
// is chosen.
func (c *Controller) Slots() ([]availability.TimeSlot, error) {
	c.mu.Lock()
	d := c.state.Selection.Date
	step := c.state.Step
	c.mu.Unlock()
	if d == nil {
		return nil, outOfOrder("list slots", step)
	}
	return availability.GetAvailableSlots(*d, c.clock())
}

// BookableDates lists the days of the booking window starting today.
func (c *Controller) BookableDates() []calendar.Date {
	n := c.windowDays
	if n <= 0 {
		n = DefaultWindowDays
	}
	return calendar.UpcomingDates(c.clock(), n)
}

// Confirm persists the selection for the session's user.  Only an
// authenticated session proceeds; otherwise a KindAuthRequired error carries
// the gate's decision.  A store failure leaves the selection in place and
// returns a retryable KindPersistence error.
func (c *Controller) Confirm(ctx context.Context, sess *session.Session, notes string) (Snapshot, error) {
	decision := session.Gate(sess)
	var user *session.User
	if decision == session.Allow {
		if user = sess.User(); user == nil {
			// signed out between the two reads
			decision = session.Redirect
		}
	}

	c.mu.Lock()
	next, err := Transition(c.state, ConfirmRequested{Decision: decision, Now: c.clock()})
	if err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}
	c.state = next
	payload := NewBooking(next.Selection, user.ID, notes)
	c.mu.Unlock()

	saved, storeErr := c.store.CreateBooking(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if storeErr != nil {
		next, err = Transition(c.state, PersistFailed{Err: storeErr})
		if errors.Is(err, ErrFlowClosed) {
			return c.snapshotLocked(), err
		}
		c.state = next
		c.log.Warn("booking store failed", zap.Uint64("user_id", payload.UserID), zap.Error(storeErr))
		return c.snapshotLocked(), &FlowError{Kind: KindPersistence, Op: "confirm", Err: storeErr}
	}
	next, err = Transition(c.state, PersistSucceeded{Booking: saved})
	if err != nil {
		c.log.Info("discarding booking result for closed flow", zap.Uint64("booking_id", saved.ID))
		return c.snapshotLocked(), err
	}
	c.state = next
	c.log.Info("booking confirmed",
		zap.Uint64("booking_id", saved.ID),
		zap.Uint64("user_id", saved.UserID),
		zap.Stringer("date", saved.BookingDate),
		zap.String("time", saved.BookingTime))
	return c.snapshotLocked(), nil
}
