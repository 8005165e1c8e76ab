package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/model"
)

// RegisterBookingFlow registers the booking flow.  Every step is open to
// anonymous callers so a customer can pick a service, day and slot before
// signing in; confirm consults the session gate and answers 401 until the
// caller presents a token.
func RegisterBookingFlow(e *echo.Echo, f *handler.FlowHandler, jwtSecret string) {
	g := e.Group(
		"/v1/booking/flows",
		middleware.OptionalAuth(jwtSecret),
		middleware.ResolveSession(),
	)
	g.POST("", f.Start)
	g.GET("/:id", f.Get)
	g.PUT("/:id/service", f.SelectService)
	g.PUT("/:id/date", f.SelectDate)
	g.PUT("/:id/time", f.SelectTime)
	g.POST("/:id/back", f.Back)
	g.POST("/:id/confirm", f.Confirm)
	g.DELETE("/:id", f.Abandon)
}

// RegisterCustomer registers customer-scoped endpoints under /v1.  All routes
// require a valid JWT and a CUSTOMER or ADMIN role, and pass the session
// gate.  Customers manage their profile and their own bookings.
func RegisterCustomer(e *echo.Echo, a *handler.AuthHandler, b *handler.BookingsHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
		middleware.ResolveSession(),
		middleware.RequireSession(),
	)
	g.GET("/me", a.Me)
	g.PATCH("/me", a.UpdateMe)

	g.GET("/my-bookings", b.List)
	g.GET("/bookings/:id", b.Get)
	g.POST("/bookings/:id/cancel", b.Cancel)
}
