package booking

import (
	"errors"
	"fmt"

	"github.com/iliyamo/salon-booking/internal/session"
)

// Kind classifies a flow rejection.
type Kind int

const (
	// KindOutOfOrder: the transition is not allowed in the current step.
	KindOutOfOrder Kind = iota + 1
	// KindInvalidSelection: right step, but the chosen value is not allowed.
	KindInvalidSelection
	// KindPersistence: the booking store failed; the caller may retry.
	KindPersistence
	// KindAuthRequired: the session gate did not allow the caller through.
	KindAuthRequired
)

func (k Kind) String() string {
	switch k {
	case KindOutOfOrder:
		return "out_of_order_transition"
	case KindInvalidSelection:
		return "invalid_selection"
	case KindPersistence:
		return "persistence_failure"
	case KindAuthRequired:
		return "auth_required"
	}
	return "unknown"
}

// Sentinels for errors.Is against a *FlowError of the matching kind.
var (
	ErrOutOfOrder       = errors.New("out of order transition")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrPersistence      = errors.New("persistence failure")
	ErrAuthRequired     = errors.New("authentication required")

	// ErrFlowClosed is returned when a flow was abandoned, including when a
	// store result arrives after the flow was torn down.
	ErrFlowClosed = errors.New("booking flow closed")
)

// FlowError is a typed rejection from the booking flow.
type FlowError struct {
	Kind Kind
	Op   string
	Msg  string
	// Decision is set for KindAuthRequired.
	Decision session.Decision
	Err      error
}

func (e *FlowError) Error() string {
	s := fmt.Sprintf("booking %s: %s", e.Op, e.Kind)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *FlowError) Unwrap() error { return e.Err }

func (e *FlowError) Is(target error) bool {
	switch target {
	case ErrOutOfOrder:
		return e.Kind == KindOutOfOrder
	case ErrInvalidSelection:
		return e.Kind == KindInvalidSelection
	case ErrPersistence:
		return e.Kind == KindPersistence
	case ErrAuthRequired:
		return e.Kind == KindAuthRequired
	}
	return false
}

// Retryable reports whether repeating the same request may succeed.
func (e *FlowError) Retryable() bool { return e.Kind == KindPersistence }

func outOfOrder(op string, s Step) *FlowError {
	return &FlowError{Kind: KindOutOfOrder, Op: op, Msg: "not allowed while " + s.String()}
}

func invalid(op, msg string) *FlowError {
	return &FlowError{Kind: KindInvalidSelection, Op: op, Msg: msg}
}
