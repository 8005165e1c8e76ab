package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/service"
	"github.com/iliyamo/salon-booking/internal/session"
	"github.com/iliyamo/salon-booking/internal/utils"
)

// Authenticator is the account API the auth endpoints need.
// *service.AuthService implements it.
type Authenticator interface {
	SignUp(ctx context.Context, in service.SignUpInput) (service.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (model.User, service.TokenPair, error)
	Refresh(ctx context.Context, raw string) (model.User, service.TokenPair, error)
	Access(ctx context.Context, raw string) (utils.AccessToken, error)
	SignOut(ctx context.Context, userID uint64, raw string) error
	Verify(ctx context.Context, token string) (model.User, error)
	Profile(ctx context.Context, userID uint64) (model.User, error)
	UpdateProfile(ctx context.Context, userID uint64, name, phone string) (model.User, error)
}

// AuthHandler serves sign-up, sign-in, token exchange, the session probe and
// the profile endpoints.
type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(a Authenticator) *AuthHandler { return &AuthHandler{Auth: a} }

// authTimeout bounds the DB work of one auth request.
const authTimeout = 5 * time.Second

// ----- DTOs -----

type registerReq struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type verifyReq struct {
	Token string `json:"token"`
}
type profileReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, Name: u.Name, Phone: u.Phone, Role: u.Role}
}

func toAuthResp(u model.User, p service.TokenPair) authResp {
	return authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: p.Access.Token, Expires: p.Access.Exp},
		Refresh: tokenPart{Token: p.Refresh.Raw, Expires: p.Refresh.Exp}, // raw back to client
	}
}

// Register creates the account.  It answers 201 with tokens, or 202 when the
// email has to be verified first.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
	defer cancel()

	res, err := h.Auth.SignUp(ctx, service.SignUpInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Name:            req.Name,
		Phone:           req.Phone,
	})
	if err != nil {
		return writeError(c, err, nil)
	}
	if res.NeedsVerification {
		return c.JSON(http.StatusAccepted, echo.Map{"user": toUserPart(res.User), "needs_verification": true})
	}
	return c.JSON(http.StatusCreated, toAuthResp(res.User, *res.Tokens))
}

// Login verifies the password and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
	defer cancel()

	u, pair, err := h.Auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, toAuthResp(u, pair))
}

// Refresh rotates the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
	defer cancel()

	u, pair, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, toAuthResp(u, pair))
}

// RefreshAccess returns a new access token and keeps the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
	defer cancel()

	access, err := h.Auth.Access(ctx, req.RefreshToken)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, echo.Map{"access": tokenPart{Token: access.Token, Expires: access.Exp}})
}

// Logout revokes the refresh token in the body, or every token of the
// bearer's user when the body has none.  It runs behind OptionalAuth.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	uid, _ := middleware.UserID(c)
	if uid == 0 && strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "provide Authorization header or refresh_token")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
	defer cancel()

	if err := h.Auth.SignOut(ctx, uid, req.RefreshToken); err != nil {
		return writeError(c, err, nil)
	}
	return c.NoContent(http.StatusNoContent)
}

// Verify redeems an email verification token.
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return badRequest(c, "token required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
	defer cancel()

	u, err := h.Auth.Verify(ctx, req.Token)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u), "verified": true})
}

type sessionResp struct {
	User          *session.User `json:"user"`
	Authenticated bool          `json:"authenticated"`
	Mounted       bool          `json:"mounted"`
}

// Session reports the caller's session as the gate sees it.  Signed-in
// callers get their email and name filled in from the profile.
func (h *AuthHandler) Session(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	resp := sessionResp{User: sess.User(), Authenticated: sess.Authenticated(), Mounted: sess.Mounted()}
	if resp.User != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
		defer cancel()
		if u, err := h.Auth.Profile(ctx, resp.User.ID); err == nil {
			resp.User.Email = u.Email
			resp.User.Name = u.Name
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Me returns the signed-in user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Auth.Profile(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// UpdateMe changes the profile's name and phone.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	u, err := h.Auth.UpdateProfile(c.Request().Context(), uid, req.Name, req.Phone)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}
