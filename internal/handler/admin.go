package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/availability"
	"github.com/iliyamo/salon-booking/internal/calendar"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/service"
)

// AdminHandler lets salon staff maintain the catalog and move bookings
// through their lifecycle.  Routes require the ADMIN role.
type AdminHandler struct {
	Catalog  Catalog
	Bookings Bookings
}

func NewAdminHandler(c Catalog, b Bookings) *AdminHandler {
	return &AdminHandler{Catalog: c, Bookings: b}
}

// CreateService handles POST /v1/admin/services.
func (h *AdminHandler) CreateService(c echo.Context) error {
	var in service.NewServiceInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	svc, err := h.Catalog.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusCreated, svc)
}

// DeactivateService handles DELETE /v1/admin/services/:id.  The row is kept
// so existing bookings still resolve.
func (h *AdminHandler) DeactivateService(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid service id")
	}
	if err := h.Catalog.SetActive(c.Request().Context(), id, false); err != nil {
		return writeError(c, err, nil)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateBookingStatus handles PATCH /v1/admin/bookings/:id/status.
func (h *AdminHandler) UpdateBookingStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	st, ok := model.ParseStatus(body.Status)
	if !ok {
		return badRequest(c, "status must be one of pending, confirmed, completed, cancelled")
	}
	b, err := h.Bookings.UpdateStatus(c.Request().Context(), id, st)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, b)
}

// SlotCheck handles GET /v1/admin/slots?date=&time=&service_id= and reports
// whether a live booking already holds the slot.  Customer bookings are not
// blocked on it.
func (h *AdminHandler) SlotCheck(c echo.Context) error {
	d, err := calendar.Parse(c.QueryParam("date"))
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	slot, err := availability.ParseSlot(c.QueryParam("time"))
	if err != nil {
		return badRequest(c, "time must be one of the hourly slots 09:00-18:00")
	}
	serviceID, err := strconv.ParseUint(c.QueryParam("service_id"), 10, 64)
	if err != nil || serviceID == 0 {
		return badRequest(c, "invalid service_id")
	}
	taken, err := h.Bookings.SlotTaken(c.Request().Context(), d, slot.Label, serviceID)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, echo.Map{"date": d, "time": slot.Label, "service_id": serviceID, "taken": taken})
}
