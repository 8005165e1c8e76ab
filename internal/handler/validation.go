package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/validation"
)

// PasswordStrength handles POST /v1/validation/password-strength so sign-up
// forms can show the meter without duplicating the rules.
func PasswordStrength(c echo.Context) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"strength": validation.PasswordStrength(body.Password),
		"valid":    validation.ValidatePassword(body.Password),
		"strong":   validation.ValidateStrongPassword(body.Password),
	})
}
