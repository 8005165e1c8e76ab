package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/handler"
)

func TestRoutesRegistered(t *testing.T) {
	e := echo.New()
	noCache := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	RegisterRoutes(e, &handler.HealthHandler{})
	RegisterAuth(e, handler.NewAuthHandler(nil), "s")
	RegisterPublic(e, handler.NewCatalogHandler(nil), handler.NewAvailabilityHandler(time.UTC, 7), noCache)
	RegisterBookingFlow(e, handler.NewFlowHandler(booking.NewRegistry(time.Minute, nil), nil, nil), "s")
	RegisterCustomer(e, handler.NewAuthHandler(nil), handler.NewBookingsHandler(nil), "s")
	RegisterAdmin(e, handler.NewAdminHandler(nil, nil), "s")

	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /v1/auth/register",
		"POST /v1/auth/verify",
		"GET /v1/session",
		"GET /v1/services/categories",
		"GET /v1/availability",
		"POST /v1/booking/flows",
		"PUT /v1/booking/flows/:id/time",
		"POST /v1/booking/flows/:id/confirm",
		"DELETE /v1/booking/flows/:id",
		"PATCH /v1/me",
		"GET /v1/my-bookings",
		"POST /v1/bookings/:id/cancel",
		"DELETE /v1/admin/services/:id",
		"PATCH /v1/admin/bookings/:id/status",
	} {
		if !have[want] {
			t.Errorf("route %q not registered", want)
		}
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	e := echo.New()
	RegisterCustomer(e, handler.NewAuthHandler(nil), handler.NewBookingsHandler(nil), "s")
	RegisterAdmin(e, handler.NewAdminHandler(nil, nil), "s")
	for _, path := range []string{"/v1/my-bookings", "/v1/me", "/v1/admin/slots"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status %d, want 401", path, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e, &handler.HealthHandler{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}
}
