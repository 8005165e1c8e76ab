package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/utils"
	"github.com/iliyamo/salon-booking/internal/validation"
)

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive is returned on sign-in before the email is verified.
	ErrAccountInactive = errors.New("account not verified")
	// ErrInvalidRefresh is returned for unknown, revoked or expired refresh
	// tokens.
	ErrInvalidRefresh = errors.New("invalid refresh token")
)

// UserStore is the account persistence AuthService needs.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, name, phone string) (model.User, error)
	SetActive(ctx context.Context, id uint64, active bool) error
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// TokenPair is what a successful sign-in hands to the client.  Refresh is the
// raw token; only its hash is stored.
type TokenPair struct {
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// SignUpInput is the registration form.
type SignUpInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Name            string
	Phone           string
}

// SignUpResult is either a signed-in user or one waiting for verification.
type SignUpResult struct {
	User              model.User
	Tokens            *TokenPair
	NeedsVerification bool
}

// AuthService signs customers up and in and issues tokens.
type AuthService struct {
	cfg    config.Config
	users  UserStore
	tokens TokenStore
	verify VerificationStore
	pub    queue.Publisher
	log    *zap.Logger
}

// NewAuthService wires the service.  Email verification is enabled only when
// cfg asks for it and verify is non-nil.
func NewAuthService(cfg config.Config, users UserStore, tokens TokenStore, verify VerificationStore, pub queue.Publisher, log *zap.Logger) *AuthService {
	if pub == nil {
		pub = queue.NopPublisher{}
	}
	if !cfg.EmailVerification {
		verify = nil
	}
	return &AuthService{cfg: cfg, users: users, tokens: tokens, verify: verify, pub: pub, log: log}
}

// VerificationRequired reports whether new accounts must verify their email.
func (s *AuthService) VerificationRequired() bool { return s.verify != nil }

func signUpValidator(confirm string) *validation.FormValidator {
	return validation.NewFormValidator().
		AddRule("email", validation.Required, "请输入邮箱地址").
		AddRule("email", validation.ValidateEmail, "请输入有效的邮箱地址").
		AddRule("password", validation.Required, "请输入密码").
		AddRule("password", validation.ValidatePassword, "密码至少8位，需包含大小写字母和数字").
		AddRule("confirm_password", func(v string) bool { return v == confirm }, "两次输入的密码不一致").
		AddRule("name", func(v string) bool { return validation.Length(v, 0, 50) }, "姓名不能超过50个字符").
		AddRule("phone", func(v string) bool { return v == "" || validation.ValidatePhone(v) }, "请输入有效的手机号码")
}

// SignUp validates the form, creates the account and signs it in.  With
// email verification on, the account starts inactive, a token is stored and
// no tokens are issued.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (SignUpResult, error) {
	in.Email = repository.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	err := signUpValidator(in.Password).Validate(map[string]string{
		"email":            in.Email,
		"password":         in.Password,
		"confirm_password": in.ConfirmPassword,
		"name":             in.Name,
		"phone":            in.Phone,
	})
	if err != nil {
		return SignUpResult{}, err
	}
	if in.Name == "" {
		in.Name = strings.SplitN(in.Email, "@", 2)[0]
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return SignUpResult{}, err
	}
	u := model.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Phone:        in.Phone,
		Role:         model.RoleCustomer,
		IsActive:     !s.VerificationRequired(),
	}
	id, err := s.users.Create(ctx, u)
	if err != nil {
		return SignUpResult{}, err
	}
	u.ID = id
	s.log.Info("user registered", zap.Uint64("user_id", id), zap.Bool("needs_verification", !u.IsActive))

	ev := queue.UserRegisteredEvent{UserID: id, Email: u.Email, Name: u.Name, OccurredAt: time.Now().UTC().Format(time.RFC3339)}
	if s.VerificationRequired() {
		token, err := utils.RandomHex(32)
		if err != nil {
			return SignUpResult{}, err
		}
		if err := s.verify.Put(ctx, token, id, s.cfg.VerifyTokenTTL); err != nil {
			return SignUpResult{}, err
		}
		ev.VerifyToken = token
		s.publishRegistered(ctx, ev)
		return SignUpResult{User: u, NeedsVerification: true}, nil
	}
	s.publishRegistered(ctx, ev)

	pair, err := s.issue(ctx, u)
	if err != nil {
		return SignUpResult{}, err
	}
	return SignUpResult{User: u, Tokens: &pair}, nil
}

func (s *AuthService) publishRegistered(ctx context.Context, ev queue.UserRegisteredEvent) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.pub.Publish(pctx, queue.KeyUserRegistered, ev); err != nil {
		s.log.Warn("publish user.registered failed", zap.Uint64("user_id", ev.UserID), zap.Error(err))
	}
}

// Verify redeems an email verification token and activates the account.
func (s *AuthService) Verify(ctx context.Context, token string) (model.User, error) {
	if s.verify == nil {
		return model.User{}, ErrVerificationToken
	}
	id, err := s.verify.Take(ctx, strings.TrimSpace(token))
	if err != nil {
		return model.User{}, err
	}
	if err := s.users.SetActive(ctx, id, true); err != nil {
		return model.User{}, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("email verified", zap.Uint64("user_id", id))
	return u, nil
}

// SignIn checks the password and issues a token pair.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (model.User, TokenPair, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return model.User{}, TokenPair{}, &validation.ValidationError{Fields: map[string]string{"email": "请输入邮箱和密码"}}
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, TokenPair{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return model.User{}, TokenPair{}, ErrAccountInactive
	}
	pair, err := s.issue(ctx, u)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates a refresh token: the old one is revoked and a new pair is
// issued.
func (s *AuthService) Refresh(ctx context.Context, raw string) (model.User, TokenPair, error) {
	hash := utils.HashRefreshRaw(strings.TrimSpace(raw))
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, TokenPair{}, ErrInvalidRefresh
	}
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return model.User{}, TokenPair{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, TokenPair{}, ErrInvalidRefresh
	}
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	pair, err := s.issue(ctx, u)
	return u, pair, err
}

// Access issues a fresh access token for a valid refresh token without
// rotating it.
func (s *AuthService) Access(ctx context.Context, raw string) (utils.AccessToken, error) {
	userID, err := s.tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(strings.TrimSpace(raw)))
	if errors.Is(err, repository.ErrNotFound) {
		return utils.AccessToken{}, ErrInvalidRefresh
	}
	if err != nil {
		return utils.AccessToken{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return utils.AccessToken{}, ErrInvalidRefresh
	}
	if err != nil {
		return utils.AccessToken{}, err
	}
	return utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, s.cfg.AccessTTLMin)
}

// SignOut revokes one refresh token when raw is given, otherwise every token
// of userID.
func (s *AuthService) SignOut(ctx context.Context, userID uint64, raw string) error {
	if raw = strings.TrimSpace(raw); raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := s.tokens.ValidateRefresh(ctx, hash); err != nil {
			return ErrInvalidRefresh
		}
		return s.tokens.RevokeByHash(ctx, hash)
	}
	if userID == 0 {
		return ErrInvalidRefresh
	}
	return s.tokens.RevokeAllForUser(ctx, userID)
}

// Profile loads the user record.
func (s *AuthService) Profile(ctx context.Context, userID uint64) (model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile changes name and phone after validating them.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, name, phone string) (model.User, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	err := validation.NewFormValidator().
		AddRule("name", validation.Required, "请输入姓名").
		AddRule("name", func(v string) bool { return validation.Length(v, 1, 50) }, "姓名不能超过50个字符").
		AddRule("phone", func(v string) bool { return v == "" || validation.ValidatePhone(v) }, "请输入有效的手机号码").
		Validate(map[string]string{"name": name, "phone": phone})
	if err != nil {
		return model.User{}, err
	}
	return s.users.UpdateProfile(ctx, userID, name, phone)
}

func (s *AuthService) issue(ctx context.Context, u model.User) (TokenPair, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
