package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	at, err := NewAccessToken("s3cret", 42, "CUSTOMER", 15)
	if err != nil {
		t.Fatal(err)
	}
	c, err := ParseAccessToken("s3cret", at.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	id, _ := c.UserID()
	if id != 42 || c.Role != "CUSTOMER" {
		t.Fatalf("claims = %+v", c)
	}
}

func TestParseAccessToken_Rejects(t *testing.T) {
	at, _ := NewAccessToken("s3cret", 42, "CUSTOMER", 15)
	expired, _ := NewAccessToken("s3cret", 42, "CUSTOMER", -1)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "42"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	for name, raw := range map[string]string{
		"wrong secret": at.Token,
		"expired":      expired.Token,
		"alg none":     none,
		"garbage":      "not.a.jwt",
	} {
		secret := "s3cret"
		if name == "wrong secret" {
			secret = "other"
		}
		if _, err := ParseAccessToken(secret, raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(30)
	if err != nil {
		t.Fatal(err)
	}
	if len(rt.Raw) != 96 {
		t.Errorf("raw length = %d", len(rt.Raw))
	}
	h := HashRefreshRaw(rt.Raw)
	if len(h) != 64 || h == rt.Raw || strings.ToLower(h) != h {
		t.Errorf("hash = %q", h)
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("Passw0rd", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(h, "Passw0rd") || VerifyPassword(h, "passw0rd") {
		t.Error("bcrypt verify mismatch")
	}
}
