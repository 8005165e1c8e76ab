package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/availability"
	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/calendar"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/validation"
)

// ServiceGetter resolves an active service for the flow.
type ServiceGetter interface {
	Get(ctx context.Context, id uint64) (model.Service, error)
}

// FlowHandler drives booking flows kept in a Registry.  Routes run behind
// OptionalAuth and ResolveSession; only confirm needs a signed-in user.
type FlowHandler struct {
	Flows    *booking.Registry
	Services ServiceGetter
	Store    booking.Store
	Options  []booking.Option
}

func NewFlowHandler(flows *booking.Registry, services ServiceGetter, store booking.Store, opts ...booking.Option) *FlowHandler {
	return &FlowHandler{Flows: flows, Services: services, Store: store, Options: opts}
}

type flowResp struct {
	ID    string                  `json:"id"`
	Flow  booking.Snapshot        `json:"flow"`
	Slots []availability.TimeSlot `json:"slots,omitempty"`
}

func (h *FlowHandler) respond(c echo.Context, status int, id string, ctrl *booking.Controller, snap booking.Snapshot) error {
	resp := flowResp{ID: id, Flow: snap}
	if snap.Date != nil && (snap.Step == booking.AwaitingTime || snap.Step == booking.AwaitingConfirmation) {
		slots, err := ctrl.Slots()
		if err != nil {
			zap.L().Warn("listing flow slots", zap.String("flow_id", id), zap.Error(err))
		}
		resp.Slots = slots
	}
	return c.JSON(status, resp)
}

func (h *FlowHandler) rejected(c echo.Context, id string, snap booking.Snapshot, err error) error {
	return writeError(c, err, echo.Map{"id": id, "flow": snap})
}

func (h *FlowHandler) lookup(c echo.Context) (string, *booking.Controller, error) {
	id := c.Param("id")
	uid, _ := middleware.UserID(c)
	ctrl, err := h.Flows.Get(id, uid)
	return id, ctrl, err
}

func (h *FlowHandler) service(ctx context.Context, id uint64) (model.Service, error) {
	svc, err := h.Services.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Service{}, &booking.FlowError{Kind: booking.KindInvalidSelection, Op: "select service", Msg: "service not available"}
	}
	return svc, err
}

// Start handles POST /v1/booking/flows.  With service_id the flow starts at
// the date step, as when arriving from a service card.
func (h *FlowHandler) Start(c echo.Context) error {
	var body struct {
		ServiceID uint64 `json:"service_id"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	ctrl := booking.NewController(h.Store, h.Options...)
	if body.ServiceID != 0 {
		svc, err := h.service(c.Request().Context(), body.ServiceID)
		if err != nil {
			return writeError(c, err, nil)
		}
		if _, err := ctrl.SelectService(svc); err != nil {
			return writeError(c, err, nil)
		}
	}
	uid, _ := middleware.UserID(c)
	id := h.Flows.Add(ctrl, uid)
	return h.respond(c, http.StatusCreated, id, ctrl, ctrl.Snapshot())
}

// Get handles GET /v1/booking/flows/:id.
func (h *FlowHandler) Get(c echo.Context) error {
	id, ctrl, err := h.lookup(c)
	if err != nil {
		return writeError(c, err, nil)
	}
	snap := ctrl.Snapshot()
	if snap.Step == booking.Abandoned {
		return writeError(c, booking.ErrFlowClosed, nil)
	}
	return h.respond(c, http.StatusOK, id, ctrl, snap)
}

// SelectService handles PUT /v1/booking/flows/:id/service.
func (h *FlowHandler) SelectService(c echo.Context) error {
	id, ctrl, err := h.lookup(c)
	if err != nil {
		return writeError(c, err, nil)
	}
	var body struct {
		ServiceID uint64 `json:"service_id"`
	}
	if err := c.Bind(&body); err != nil || body.ServiceID == 0 {
		return badRequest(c, "service_id required")
	}
	svc, err := h.service(c.Request().Context(), body.ServiceID)
	if err != nil {
		return h.rejected(c, id, ctrl.Snapshot(), err)
	}
	snap, err := ctrl.SelectService(svc)
	if err != nil {
		return h.rejected(c, id, snap, err)
	}
	return h.respond(c, http.StatusOK, id, ctrl, snap)
}

// SelectDate handles PUT /v1/booking/flows/:id/date.
func (h *FlowHandler) SelectDate(c echo.Context) error {
	id, ctrl, err := h.lookup(c)
	if err != nil {
		return writeError(c, err, nil)
	}
	var body struct {
		Date string `json:"date"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	d, err := calendar.Parse(strings.TrimSpace(body.Date))
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	snap, err := ctrl.SelectDate(d)
	if err != nil {
		return h.rejected(c, id, snap, err)
	}
	return h.respond(c, http.StatusOK, id, ctrl, snap)
}

// SelectTime handles PUT /v1/booking/flows/:id/time.
func (h *FlowHandler) SelectTime(c echo.Context) error {
	id, ctrl, err := h.lookup(c)
	if err != nil {
		return writeError(c, err, nil)
	}
	var body struct {
		Time string `json:"time"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Time) == "" {
		return badRequest(c, "time required")
	}
	snap, err := ctrl.SelectTime(strings.TrimSpace(body.Time))
	if err != nil {
		return h.rejected(c, id, snap, err)
	}
	return h.respond(c, http.StatusOK, id, ctrl, snap)
}

// Back handles POST /v1/booking/flows/:id/back.
func (h *FlowHandler) Back(c echo.Context) error {
	id, ctrl, err := h.lookup(c)
	if err != nil {
		return writeError(c, err, nil)
	}
	snap, err := ctrl.Back()
	if err != nil {
		return h.rejected(c, id, snap, err)
	}
	return h.respond(c, http.StatusOK, id, ctrl, snap)
}

// Confirm handles POST /v1/booking/flows/:id/confirm.  The session gate
// decides: anonymous callers get 401 with a login redirect and the flow is
// kept so they can resume after signing in.
func (h *FlowHandler) Confirm(c echo.Context) error {
	id, ctrl, err := h.lookup(c)
	if err != nil {
		return writeError(c, err, nil)
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	notes := strings.TrimSpace(body.Notes)
	if !validation.Length(notes, 0, 500) {
		return writeError(c, &validation.ValidationError{Fields: map[string]string{"notes": "备注不能超过500个字符"}}, nil)
	}
	snap, err := ctrl.Confirm(c.Request().Context(), middleware.SessionFrom(c), notes)
	if err != nil {
		return h.rejected(c, id, snap, err)
	}
	return h.respond(c, http.StatusCreated, id, ctrl, snap)
}

// Abandon handles DELETE /v1/booking/flows/:id.
func (h *FlowHandler) Abandon(c echo.Context) error {
	uid, _ := middleware.UserID(c)
	if err := h.Flows.Remove(c.Param("id"), uid); err != nil {
		return writeError(c, err, nil)
	}
	return c.NoContent(http.StatusNoContent)
}
