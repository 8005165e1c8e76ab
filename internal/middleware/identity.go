package middleware

// identity.go holds the context keys set by the auth middleware and the
// accessors handlers use to read them.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/session"
)

// Context keys.
const (
	CtxUserID  = "user_id"
	CtxRole    = "role"
	CtxSession = "session"
)

// UserID returns the authenticated user's id, if any.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(CtxUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated user's role, or "".
func Role(c echo.Context) string {
	r, _ := c.Get(CtxRole).(string)
	return r
}

// SessionFrom returns the session resolved for the request.  Without
// ResolveSession in the chain the session is unmounted.
func SessionFrom(c echo.Context) *session.Session {
	if s, ok := c.Get(CtxSession).(*session.Session); ok && s != nil {
		return s
	}
	return session.New()
}

// identityKey identifies the caller for rate limiting: the user id when
// signed in, "anon" otherwise.
func identityKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
