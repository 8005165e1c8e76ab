// Package queue carries domain events over RabbitMQ: the payload types, a
// topic-exchange publisher, and the consumer that appends booking events to
// the booking log.
package queue

// Routing keys on the events exchange.
const (
	KeyBookingCreated       = "booking.created"
	KeyBookingCancelled     = "booking.cancelled"
	KeyBookingStatusChanged = "booking.status_changed"
	KeyUserRegistered       = "user.registered"
)

// BookingEvent is published whenever a booking is created, cancelled or moved
// to another status.  It carries enough for downstream consumers to log or
// notify without querying the primary database.
type BookingEvent struct {
	BookingID      uint64 `json:"booking_id"`
	UserID         uint64 `json:"user_id"`
	ServiceID      uint64 `json:"service_id"`
	ServiceName    string `json:"service_name,omitempty"`
	Price          uint32 `json:"price,omitempty"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	Notes          string `json:"notes,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}

// UserRegisteredEvent is published on sign-up.  VerifyToken is set when the
// account waits for email verification; a mailer consumes it.
type UserRegisteredEvent struct {
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	VerifyToken string `json:"verify_token,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}
