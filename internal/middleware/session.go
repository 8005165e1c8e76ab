package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/session"
)

// ResolveSession mounts a session for the request from whatever the auth
// middleware found.  It must run after OptionalAuth or JWTAuth.
func ResolveSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var u *session.User
			if id, ok := UserID(c); ok {
				u = &session.User{ID: id, Role: Role(c)}
			}
			c.Set(CtxSession, session.Resolved(u))
			return next(c)
		}
	}
}

// RequireSession guards a page with the session gate.  A pending session
// yields 401 with pending:true so the client waits and retries; an anonymous
// one yields 401 with a redirect to /login.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch session.Gate(SessionFrom(c)) {
			case session.Allow:
				return next(c)
			case session.Pending:
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session pending", "pending": true})
			default:
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required", "redirect": "/login"})
			}
		}
	}
}
