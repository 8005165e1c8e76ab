package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/model"
)

// RegisterAdmin registers salon staff endpoints under /v1/admin.  All routes
// require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Catalog ----
	g.POST("/services", h.CreateService)
	g.DELETE("/services/:id", h.DeactivateService) // hides the service; bookings keep it

	// ---- Bookings ----
	g.PATCH("/bookings/:id/status", h.UpdateBookingStatus)
	g.GET("/slots", h.SlotCheck)
}
