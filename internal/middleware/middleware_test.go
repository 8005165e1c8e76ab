package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/utils"
)

const secret = "test-secret"

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func withToken(req *http.Request, id uint64, role string) *http.Request {
	at, _ := utils.NewAccessToken(secret, id, role, 5)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	return req
}

func TestOptionalAuthAndSessionGate(t *testing.T) {
	e := echo.New()
	e.GET("/page", func(c echo.Context) error {
		id, _ := UserID(c)
		return c.JSON(http.StatusOK, echo.Map{"user_id": id, "role": Role(c)})
	}, OptionalAuth(secret), ResolveSession(), RequireSession())

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/page", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: code = %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["redirect"] != "/login" {
		t.Fatalf("anonymous body = %v", body)
	}

	bad := httptest.NewRequest(http.MethodGet, "/page", nil)
	bad.Header.Set("Authorization", "Bearer nope")
	if rec := serve(e, bad); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: code = %d", rec.Code)
	}

	rec = serve(e, withToken(httptest.NewRequest(http.MethodGet, "/page", nil), 9, "CUSTOMER"))
	if rec.Code != http.StatusOK {
		t.Fatalf("signed in: code = %d body = %s", rec.Code, rec.Body)
	}
}

func TestRequireSession_PendingWithoutResolver(t *testing.T) {
	e := echo.New()
	e.GET("/page", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireSession())
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/page", nil))
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if rec.Code != http.StatusUnauthorized || body["pending"] != true {
		t.Fatalf("code = %d body = %v", rec.Code, body)
	}
}

func TestJWTAuthAndRole(t *testing.T) {
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, JWTAuth(secret), RequireRole("ADMIN"))

	if rec := serve(e, httptest.NewRequest(http.MethodGet, "/admin", nil)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}
	if rec := serve(e, withToken(httptest.NewRequest(http.MethodGet, "/admin", nil), 1, "CUSTOMER")); rec.Code != http.StatusForbidden {
		t.Fatalf("customer: %d", rec.Code)
	}
	if rec := serve(e, withToken(httptest.NewRequest(http.MethodGet, "/admin", nil), 1, "ADMIN")); rec.Code != http.StatusNoContent {
		t.Fatalf("admin: %d", rec.Code)
	}
}

func TestTokenBucket_InProcessFallback(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, nil, zap.NewNop()))

	for i := 0; i < 2; i++ {
		if rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil)); rec.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, rec.Code)
		}
	}
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("third request: code %d retry %q", rec.Code, rec.Header().Get("Retry-After"))
	}
}

func TestCachePayloadCodec(t *testing.T) {
	h := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, h, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatal(err)
	}
	status, hdr, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || hdr.Get("Content-Type") != "application/json" || string(body) != `{"ok":true}` {
		t.Fatalf("decoded %d %v %q %v", status, hdr, body, ok)
	}
	if _, _, _, ok := decodePayload(bs[:5]); ok {
		t.Fatal("short payload should not decode")
	}
}
