// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/middleware"
)

// RegisterRoutes registers the health endpoints.  /healthz is liveness only;
// /readyz pings MySQL and Redis.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", h.Ready)
}

// RegisterAuth registers the authentication routes.  Sign-up, sign-in and
// token exchange live under /v1/auth and need no token; the session probe
// and logout accept an optional bearer.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access only issues a new
	// access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/verify", a.Verify)
	// Logout revokes the refresh token in the body, or all tokens of the
	// bearer when the body is empty.
	g.POST("/logout", a.Logout, middleware.OptionalAuth(jwtSecret))
	e.POST("/v1/logout", a.Logout, middleware.OptionalAuth(jwtSecret))

	// The session probe reports what the session gate would decide.
	e.GET("/v1/session", a.Session, middleware.OptionalAuth(jwtSecret), middleware.ResolveSession())
}

// RegisterPublic registers unauthenticated browse endpoints: the catalog,
// slot availability and the password strength meter.  Catalog responses go
// through the Redis response cache when one is configured.
func RegisterPublic(e *echo.Echo, p *handler.CatalogHandler, av *handler.AvailabilityHandler, cache echo.MiddlewareFunc) {
	cat := e.Group("/v1/services", cache)
	cat.GET("", p.List)
	// categories is registered before :id so the static segment wins
	cat.GET("/categories", p.Categories)
	cat.GET("/:id", p.Get)

	e.GET("/v1/availability", av.Slots)
	e.GET("/v1/availability/dates", av.Dates)
	e.POST("/v1/validation/password-strength", handler.PasswordStrength)
}
