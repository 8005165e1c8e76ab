package model

import (
	"time"

	"github.com/iliyamo/salon-booking/internal/calendar"
)

// BookingStatus is the lifecycle state of a confirmed booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// AllStatuses lists the statuses in display order.
var AllStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// ParseStatus validates a status string.
func ParseStatus(s string) (BookingStatus, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Label returns the customer-facing label of the status.
func (s BookingStatus) Label() string {
	switch s {
	case StatusPending:
		return "待确认"
	case StatusConfirmed:
		return "已确认"
	case StatusCompleted:
		return "已完成"
	case StatusCancelled:
		return "已取消"
	}
	return string(s)
}

// Terminal reports whether no further status change is possible.
func (s BookingStatus) Terminal() bool { return s == StatusCompleted || s == StatusCancelled }

// CanTransitionTo reports whether the salon may move a booking from s to next.
// pending -> confirmed | cancelled, confirmed -> completed | cancelled.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// Booking mirrors a row of the `bookings` table.  A booking is created only
// when a customer confirms a completed selection; it starts as pending.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – customer who booked.
//  ServiceID   – booked service.
//  BookingDate – calendar day of the appointment.
//  BookingTime – slot label, "HH:00".
//  Status      – pending, confirmed, completed or cancelled.
//  Notes       – free text left by the customer.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Booking struct {
	ID          uint64        `json:"id"`           // bookings.id
	UserID      uint64        `json:"user_id"`      // bookings.user_id
	ServiceID   uint64        `json:"service_id"`   // bookings.service_id
	BookingDate calendar.Date `json:"booking_date"` // bookings.booking_date
	BookingTime string        `json:"booking_time"` // bookings.booking_time
	Status      BookingStatus `json:"status"`       // bookings.status
	Notes       string        `json:"notes"`        // bookings.notes
	CreatedAt   time.Time     `json:"created_at"`   // bookings.created_at
	UpdatedAt   time.Time     `json:"updated_at"`   // bookings.updated_at
}

// BookingDetail is a booking joined with its service for history listings.
type BookingDetail struct {
	Booking
	StatusLabel string         `json:"status_label"`
	DateLabel   string         `json:"date_label"`
	Service     ServiceSummary `json:"service"`
}
