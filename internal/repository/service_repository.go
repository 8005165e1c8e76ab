package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/salon-booking/internal/model"
)

// ServiceRepo reads and maintains the treatment catalog.
type ServiceRepo struct{ db *sql.DB }

// NewServiceRepo returns a ServiceRepo bound to db.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

const serviceCols = `id, name, description, price, duration_minutes, category, image_url, is_active, created_at`

func scanService(row interface{ Scan(...any) error }) (model.Service, error) {
	var s model.Service
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.DurationMinutes,
		&s.Category, &s.ImageURL, &s.IsActive, &s.CreatedAt)
	return s, err
}

// List returns active services ordered by creation time.  A non-empty
// category filters the list.
func (r *ServiceRepo) List(ctx context.Context, category string) ([]model.Service, error) {
	q := `SELECT ` + serviceCols + ` FROM services WHERE is_active = TRUE`
	args := []any{}
	if category != "" {
		q += ` AND category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()
	out := []model.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID returns an active service.  Inactive or unknown ids yield
// ErrServiceNotFound.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (model.Service, error) {
	s, err := scanService(r.db.QueryRowContext(ctx,
		`SELECT `+serviceCols+` FROM services WHERE id = ? AND is_active = TRUE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Service{}, ErrServiceNotFound
	}
	return s, err
}

// Categories returns the distinct categories of active services in catalog
// order.
func (r *ServiceRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category FROM services WHERE is_active = TRUE GROUP BY category ORDER BY MIN(created_at), MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts a new active service and returns it as stored.
func (r *ServiceRepo) Create(ctx context.Context, s model.Service) (model.Service, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO services (name, description, price, duration_minutes, category, image_url) VALUES (?,?,?,?,?,?)`,
		s.Name, s.Description, s.Price, s.DurationMinutes, s.Category, s.ImageURL)
	if err != nil {
		return model.Service{}, fmt.Errorf("insert service: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Service{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// SetActive shows or hides a service.  Existing bookings are untouched.
func (r *ServiceRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE services SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM services WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrServiceNotFound
		}
	}
	return nil
}
