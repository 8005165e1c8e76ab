// Package service holds the application services that sit between the HTTP
// handlers and the repositories: bookings, authentication and the catalog.
// Services publish domain events and own the business rules that span more
// than one repository.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/calendar"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/queue"
)

// BookingRepository is the persistence BookingService needs.
// *repository.BookingRepo implements it.
type BookingRepository interface {
	Create(ctx context.Context, b model.Booking) (model.Booking, error)
	ListForUser(ctx context.Context, userID uint64, status model.BookingStatus) ([]model.BookingDetail, error)
	GetForUser(ctx context.Context, id, userID uint64) (model.BookingDetail, error)
	CountByStatus(ctx context.Context, userID uint64) (map[model.BookingStatus]int, error)
	Cancel(ctx context.Context, id, userID uint64) (model.Booking, model.BookingStatus, error)
	UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) (model.Booking, model.BookingStatus, error)
	HasConflict(ctx context.Context, date calendar.Date, slot string, serviceID uint64) (bool, error)
}

// ServiceLookup resolves a service by id.  *repository.ServiceRepo
// implements it.
type ServiceLookup interface {
	GetByID(ctx context.Context, id uint64) (model.Service, error)
}

// publishTimeout bounds event publishing after a write has committed.
const publishTimeout = 3 * time.Second

// BookingService creates and maintains bookings and emits booking events.
// It is the store behind the booking flow.
type BookingService struct {
	repo    BookingRepository
	catalog ServiceLookup
	pub     queue.Publisher
	log     *zap.Logger
	now     func() time.Time
}

// NewBookingService wires the service.  A nil publisher disables events.
func NewBookingService(repo BookingRepository, catalog ServiceLookup, pub queue.Publisher, log *zap.Logger) *BookingService {
	if pub == nil {
		pub = queue.NopPublisher{}
	}
	return &BookingService{repo: repo, catalog: catalog, pub: pub, log: log, now: time.Now}
}

// CreateBooking persists a pending booking and publishes booking.created.
func (s *BookingService) CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	saved, err := s.repo.Create(ctx, b)
	if err != nil {
		return model.Booking{}, err
	}
	s.publish(ctx, queue.KeyBookingCreated, saved, "")
	return saved, nil
}

// History is a customer's booking list with per-status counts.
type History struct {
	Bookings []model.BookingDetail       `json:"bookings"`
	Counts   map[model.BookingStatus]int `json:"counts"`
	Total    int                         `json:"total"`
}

// History lists the user's bookings, optionally filtered by status.  Counts
// always cover every status so the client can label its filter tabs.
func (s *BookingService) History(ctx context.Context, userID uint64, status model.BookingStatus) (History, error) {
	list, err := s.repo.ListForUser(ctx, userID, status)
	if err != nil {
		return History{}, err
	}
	counts, err := s.repo.CountByStatus(ctx, userID)
	if err != nil {
		return History{}, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return History{Bookings: list, Counts: counts, Total: total}, nil
}

// Get returns one of the user's bookings.
func (s *BookingService) Get(ctx context.Context, id, userID uint64) (model.BookingDetail, error) {
	return s.repo.GetForUser(ctx, id, userID)
}

// Cancel cancels one of the user's bookings and publishes booking.cancelled.
func (s *BookingService) Cancel(ctx context.Context, id, userID uint64) (model.Booking, error) {
	b, prev, err := s.repo.Cancel(ctx, id, userID)
	if err != nil {
		return model.Booking{}, err
	}
	s.log.Info("booking cancelled", zap.Uint64("booking_id", id), zap.Uint64("user_id", userID))
	s.publish(ctx, queue.KeyBookingCancelled, b, prev)
	return b, nil
}

// UpdateStatus is the salon-side status change (confirm, complete, cancel).
// It publishes booking.status_changed, or booking.cancelled for cancellations.
func (s *BookingService) UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) (model.Booking, error) {
	b, prev, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return model.Booking{}, err
	}
	key := queue.KeyBookingStatusChanged
	if status == model.StatusCancelled {
		key = queue.KeyBookingCancelled
	}
	s.log.Info("booking status changed", zap.Uint64("booking_id", id), zap.String("from", string(prev)), zap.String("to", string(status)))
	s.publish(ctx, key, b, prev)
	return b, nil
}

// SlotTaken reports whether another live booking holds the slot for the
// service.  Customer bookings are not blocked by it; the salon uses it to
// spot double bookings.
func (s *BookingService) SlotTaken(ctx context.Context, date calendar.Date, slot string, serviceID uint64) (bool, error) {
	return s.repo.HasConflict(ctx, date, slot, serviceID)
}

// publish sends the event outside the request's cancellation; failures are
// logged and never fail the write that already committed.
func (s *BookingService) publish(ctx context.Context, key string, b model.Booking, prev model.BookingStatus) {
	ev := queue.BookingEvent{
		BookingID:      b.ID,
		UserID:         b.UserID,
		ServiceID:      b.ServiceID,
		Date:           b.BookingDate.String(),
		Time:           b.BookingTime,
		Status:         string(b.Status),
		PreviousStatus: string(prev),
		Notes:          b.Notes,
		OccurredAt:     s.now().UTC().Format(time.RFC3339),
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if svc, err := s.catalog.GetByID(pctx, b.ServiceID); err == nil {
		ev.ServiceName = svc.Name
		ev.Price = svc.Price
	}
	if err := s.pub.Publish(pctx, key, ev); err != nil {
		s.log.Warn("publish booking event failed", zap.String("key", key), zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
}
