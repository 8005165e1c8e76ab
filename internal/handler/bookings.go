package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/calendar"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/service"
)

// Bookings is the booking API for customers and the salon.
// *service.BookingService implements it.
type Bookings interface {
	History(ctx context.Context, userID uint64, status model.BookingStatus) (service.History, error)
	Get(ctx context.Context, id, userID uint64) (model.BookingDetail, error)
	Cancel(ctx context.Context, id, userID uint64) (model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) (model.Booking, error)
	SlotTaken(ctx context.Context, date calendar.Date, slot string, serviceID uint64) (bool, error)
}

// BookingsHandler serves a customer's booking history.  All routes require
// JWT authentication.
type BookingsHandler struct {
	Bookings Bookings
}

func NewBookingsHandler(b Bookings) *BookingsHandler { return &BookingsHandler{Bookings: b} }

// List handles GET /v1/my-bookings[?status=].
func (h *BookingsHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var status model.BookingStatus
	if raw := c.QueryParam("status"); raw != "" && raw != "all" {
		st, ok := model.ParseStatus(raw)
		if !ok {
			return badRequest(c, "status must be one of pending, confirmed, completed, cancelled")
		}
		status = st
	}
	hist, err := h.Bookings.History(c.Request().Context(), uid, status)
	if err != nil {
		return writeError(c, err, nil)
	}
	if hist.Bookings == nil {
		hist.Bookings = []model.BookingDetail{}
	}
	return c.JSON(http.StatusOK, hist)
}

// Get handles GET /v1/bookings/:id.  Other users' bookings are reported as
// not found.
func (h *BookingsHandler) Get(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	b, err := h.Bookings.Get(c.Request().Context(), id, uid)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel handles POST /v1/bookings/:id/cancel.  Completed and cancelled
// bookings answer 409.
func (h *BookingsHandler) Cancel(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	b, err := h.Bookings.Cancel(c.Request().Context(), id, uid)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, b)
}
