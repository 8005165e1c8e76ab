package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/salon-booking/internal/calendar"
	"github.com/iliyamo/salon-booking/internal/model"
)

// BookingRepo persists bookings.  booking_date is a DATE column; it is read
// back as midnight UTC and converted to a calendar.Date.
type BookingRepo struct{ db *sql.DB }

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `b.id, b.user_id, b.service_id, b.booking_date, b.booking_time, b.status, b.notes, b.created_at, b.updated_at`

type scanner interface{ Scan(...any) error }

func scanBooking(row scanner, extra ...any) (model.Booking, error) {
	var (
		b   model.Booking
		day time.Time
	)
	dest := append([]any{&b.ID, &b.UserID, &b.ServiceID, &day, &b.BookingTime, &b.Status, &b.Notes, &b.CreatedAt, &b.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.Booking{}, err
	}
	b.BookingDate = calendar.DateOf(day)
	return b, nil
}

// Create inserts b and returns the stored row.  The status is whatever the
// caller set; the booking flow always passes pending.
func (r *BookingRepo) Create(ctx context.Context, b model.Booking) (model.Booking, error) {
	if b.Status == "" {
		b.Status = model.StatusPending
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (user_id, service_id, booking_date, booking_time, status, notes) VALUES (?,?,?,?,?,?)`,
		b.UserID, b.ServiceID, b.BookingDate.String(), b.BookingTime, b.Status, b.Notes)
	if err != nil {
		return model.Booking{}, fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Booking{}, err
	}
	return r.get(ctx, r.db, uint64(id), 0, false)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// get loads one booking.  userID 0 skips the ownership filter.
func (r *BookingRepo) get(ctx context.Context, q querier, id, userID uint64, forUpdate bool) (model.Booking, error) {
	query := `SELECT ` + bookingCols + ` FROM bookings b WHERE b.id = ?`
	args := []any{id}
	if userID != 0 {
		query += ` AND b.user_id = ?`
		args = append(args, userID)
	}
	if forUpdate {
		query += ` FOR UPDATE`
	}
	b, err := scanBooking(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

const detailJoin = `, s.name, s.description, s.duration_minutes, s.price, s.category, s.image_url
	FROM bookings b JOIN services s ON s.id = b.service_id`

func scanDetail(row scanner) (model.BookingDetail, error) {
	var d model.BookingDetail
	b, err := scanBooking(row, &d.Service.Name, &d.Service.Description, &d.Service.DurationMinutes,
		&d.Service.Price, &d.Service.Category, &d.Service.ImageURL)
	if err != nil {
		return d, err
	}
	d.Booking = b
	d.StatusLabel = b.Status.Label()
	d.DateLabel = calendar.FormatChinese(b.BookingDate)
	return d, nil
}

// ListForUser returns the user's bookings joined with their services, by
// appointment date and time.  An empty status lists every status.
func (r *BookingRepo) ListForUser(ctx context.Context, userID uint64, status model.BookingStatus) ([]model.BookingDetail, error) {
	q := `SELECT ` + bookingCols + detailJoin + ` WHERE b.user_id = ?`
	args := []any{userID}
	if status != "" {
		q += ` AND b.status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY b.booking_date ASC, b.booking_time ASC, b.id ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()
	out := []model.BookingDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetForUser returns one of the user's bookings with its service.
func (r *BookingRepo) GetForUser(ctx context.Context, id, userID uint64) (model.BookingDetail, error) {
	d, err := scanDetail(r.db.QueryRowContext(ctx,
		`SELECT `+bookingCols+detailJoin+` WHERE b.id = ? AND b.user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrBookingNotFound
	}
	return d, err
}

// CountByStatus returns the number of the user's bookings per status.  Every
// status is present in the map, zero when absent.
func (r *BookingRepo) CountByStatus(ctx context.Context, userID uint64) (map[model.BookingStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM bookings WHERE user_id = ? GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	defer rows.Close()
	out := make(map[model.BookingStatus]int, len(model.AllStatuses))
	for _, s := range model.AllStatuses {
		out[s] = 0
	}
	for rows.Next() {
		var (
			s model.BookingStatus
			n int
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

// Cancel cancels one of the user's bookings and returns it with its previous
// status.  Completed or already cancelled bookings yield ErrConflict.
func (r *BookingRepo) Cancel(ctx context.Context, id, userID uint64) (model.Booking, model.BookingStatus, error) {
	return r.transition(ctx, id, userID, model.StatusCancelled)
}

// UpdateStatus moves any booking to status, honoring the status transition
// rules.  It returns the updated booking and the previous status.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) (model.Booking, model.BookingStatus, error) {
	return r.transition(ctx, id, 0, status)
}

func (r *BookingRepo) transition(ctx context.Context, id, userID uint64, to model.BookingStatus) (model.Booking, model.BookingStatus, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, "", err
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := r.get(ctx, tx, id, userID, true)
	if err != nil {
		return model.Booking{}, "", err
	}
	if !cur.Status.CanTransitionTo(to) {
		return model.Booking{}, cur.Status, fmt.Errorf("booking %d is %s: %w", id, cur.Status, ErrConflict)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, to, id); err != nil {
		return model.Booking{}, "", fmt.Errorf("update booking: %w", err)
	}
	updated, err := r.get(ctx, tx, id, 0, false)
	if err != nil {
		return model.Booking{}, "", err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, "", err
	}
	return updated, cur.Status, nil
}

// HasConflict reports whether a non-cancelled booking already holds the slot
// for the service.  The booking flow does not consult it; several customers
// may book the same slot.
func (r *BookingRepo) HasConflict(ctx context.Context, date calendar.Date, slot string, serviceID uint64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookings WHERE booking_date = ? AND booking_time = ? AND service_id = ? AND status <> 'cancelled')`,
		date.String(), slot, serviceID).Scan(&exists)
	return exists, err
}
