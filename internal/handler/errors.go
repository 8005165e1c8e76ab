package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/availability"
	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/service"
	"github.com/iliyamo/salon-booking/internal/session"
	"github.com/iliyamo/salon-booking/internal/validation"
)

// writeError maps service, flow and repository errors to a JSON response.
// extra is merged into the body, e.g. the flow snapshot after a rejection.
func writeError(c echo.Context, err error, extra echo.Map) error {
	status, body := classify(err)
	for k, v := range extra {
		body[k] = v
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.JSON(status, body)
}

func classify(err error) (int, echo.Map) {
	var (
		fe *booking.FlowError
		ve *validation.ValidationError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, echo.Map{"error": "validation failed", "fields": ve.Fields}
	case errors.As(err, &fe):
		body := echo.Map{"error": fe.Error(), "kind": fe.Kind.String()}
		switch fe.Kind {
		case booking.KindOutOfOrder:
			return http.StatusConflict, body
		case booking.KindInvalidSelection:
			return http.StatusUnprocessableEntity, body
		case booking.KindPersistence:
			body["error"] = "booking could not be saved"
			body["retryable"] = true
			return http.StatusServiceUnavailable, body
		case booking.KindAuthRequired:
			if fe.Decision == session.Pending {
				body["pending"] = true
			} else {
				body["redirect"] = booking.LoginIntent().Page
			}
			return http.StatusUnauthorized, body
		}
	case errors.Is(err, booking.ErrFlowClosed):
		return http.StatusGone, echo.Map{"error": err.Error()}
	case errors.Is(err, booking.ErrFlowNotFound):
		return http.StatusNotFound, echo.Map{"error": err.Error()}
	case errors.Is(err, booking.ErrFlowForbidden), errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden, echo.Map{"error": err.Error()}
	case errors.Is(err, availability.ErrPastDate):
		return http.StatusUnprocessableEntity, echo.Map{"error": "date is in the past"}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, echo.Map{"error": err.Error()}
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, echo.Map{"error": "booking status does not allow this change"}
	case errors.Is(err, repository.ErrEmailExists):
		return http.StatusConflict, echo.Map{"error": "email already registered"}
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidRefresh):
		return http.StatusUnauthorized, echo.Map{"error": err.Error()}
	case errors.Is(err, service.ErrAccountInactive):
		return http.StatusForbidden, echo.Map{"error": err.Error(), "needs_verification": true}
	case errors.Is(err, service.ErrVerificationToken):
		return http.StatusBadRequest, echo.Map{"error": err.Error()}
	}
	return http.StatusInternalServerError, echo.Map{"error": "internal error"}
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
