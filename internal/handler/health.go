package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and, with dependencies attached, readiness.
type HealthHandler struct {
	DB    Pinger
	Redis func(ctx context.Context) error
}

// Health is a simple health-check endpoint used by load balancers.  It
// returns a plain text "ok" with a 200 status.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready checks MySQL and, when configured, Redis.  Redis is optional: a
// failing ping degrades the report without failing it.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	status := http.StatusOK
	report := echo.Map{"db": "ok"}
	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			report["db"] = err.Error()
		}
	}
	if h.Redis != nil {
		report["redis"] = "ok"
		if err := h.Redis(ctx); err != nil {
			report["redis"] = "degraded: " + err.Error()
		}
	}
	return c.JSON(status, report)
}
