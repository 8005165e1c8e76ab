// Package repository holds the MySQL data access layer and the sentinel
// errors shared across repositories.  Higher layers such as handlers use
// them to distinguish failure scenarios.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of the
// record's current state, such as cancelling a completed booking.  Handlers
// translate this into 409.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned for missing rows.
var ErrNotFound = errors.New("not found")

// ErrServiceNotFound is returned by the catalog for unknown or inactive
// services.  It wraps ErrNotFound.
var ErrServiceNotFound = &notFound{what: "service"}

// ErrBookingNotFound is returned for unknown bookings or bookings of another
// user.  It wraps ErrNotFound.
var ErrBookingNotFound = &notFound{what: "booking"}

// ErrEmailExists is returned on sign-up with a registered email.
var ErrEmailExists = errors.New("email already exists")

type notFound struct{ what string }

func (e *notFound) Error() string { return e.what + " not found" }
func (e *notFound) Unwrap() error { return ErrNotFound }
