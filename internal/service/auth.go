package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/stockroom/internal/crypto"
	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/limiter"
	"github.com/and161185/stockroom/internal/model"
	"github.com/and161185/stockroom/internal/repository"
)

// TokenService is the session lifecycle the authentication service drives.
type TokenService interface {
	Issue(ctx context.Context, userID int64, sessionID string) (model.TokenPair, error)
	VerifyAccess(token string) (model.TokenPayload, error)
	VerifyRefresh(ctx context.Context, token string) (model.TokenPayload, error)
	Invalidate(ctx context.Context, token string) error
	Rotate(ctx context.Context, token string) (model.TokenPair, error)
}

// AuthService defines sign-up, sign-in and session operations.
type AuthService interface {
	// SignUp registers a user and starts a session.
	SignUp(ctx context.Context, name, email, password string) (model.TokenPair, error)
	// SignIn checks credentials, rate-limited by (email, ip), and starts a session.
	SignIn(ctx context.Context, email, password, ip string) (model.TokenPair, error)
	// Refresh rotates a refresh token.
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	// SignOut revokes the session of a refresh token.
	SignOut(ctx context.Context, refreshToken string) (bool, error)
	// Authenticate verifies an access token.
	Authenticate(accessToken string) (model.TokenPayload, error)
	// Me returns the signed-in user.
	Me(ctx context.Context, userID int64) (model.UserInfo, error)
}

type AuthServiceImpl struct {
	authUsers repository.AuthUserRepository
	users     repository.UserRepository
	tokens    TokenService
	lim       limiter.Limiter
	rec       Recorder
	log       *zap.Logger
}

// AuthOption configures AuthServiceImpl.
type AuthOption func(*AuthServiceImpl)

// WithAuthRecorder sets the metrics recorder.
func WithAuthRecorder(r Recorder) AuthOption {
	return func(s *AuthServiceImpl) { s.rec = r }
}

// NewAuthService constructs AuthService with required dependencies. A nil
// limiter disables sign-in throttling.
func NewAuthService(authUsers repository.AuthUserRepository, users repository.UserRepository, tokens TokenService, lim limiter.Limiter, log *zap.Logger, opts ...AuthOption) *AuthServiceImpl {
	if lim == nil {
		lim = limiter.Nop{}
	}
	s := &AuthServiceImpl{
		authUsers: authUsers,
		users:     users,
		tokens:    tokens,
		lim:       lim,
		rec:       nopRecorder{},
		log:       log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// dummyHash is verified against when the email is unknown, so both failure
// paths of SignIn cost one password verification.
var dummyHash = sync.OnceValue(func() string {
	h, err := pkgcrypto.HashPassword("stockroom-dummy-password")
	if err != nil {
		return ""
	}
	return h
})

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates the user, hashing the password with argon2id, and issues
// the first token pair.
func (s *AuthServiceImpl) SignUp(ctx context.Context, name, email, password string) (pair model.TokenPair, err error) {
	defer func() { s.rec.AuthEvent("sign_up", outcome(err)) }()

	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if name == "" || email == "" || password == "" {
		return model.TokenPair{}, errs.RootValidation("name, email and password are required")
	}

	taken, err := s.authUsers.EmailExists(ctx, email)
	if err != nil {
		return model.TokenPair{}, storeErr(s.log, "check email", err)
	}
	if taken {
		return model.TokenPair{}, errs.EmailAlreadyExists(email)
	}

	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return model.TokenPair{}, errs.Internal(err)
	}
	u, err := s.authUsers.Create(ctx, model.NewAuthUser{Name: name, Email: email, PasswordHash: hash})
	if errors.Is(err, errs.ErrEmailAlreadyExists) {
		// lost a race with a concurrent sign-up
		return model.TokenPair{}, errs.EmailAlreadyExists(email)
	}
	if err != nil {
		return model.TokenPair{}, storeErr(s.log, "create user", err)
	}
	s.log.Info("user signed up", zap.Int64("user_id", u.ID))
	return s.tokens.Issue(ctx, u.ID, "")
}

// SignIn never tells an unknown email from a wrong password.
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password, ip string) (pair model.TokenPair, err error) {
	defer func() { s.rec.AuthEvent("sign_in", outcome(err)) }()

	email = normalizeEmail(email)
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.TokenPair{}, storeErr(s.log, "check sign-in limit", err)
	}
	if !allowed {
		return model.TokenPair{}, errs.RateLimited()
	}

	u, err := s.authUsers.FindByEmail(ctx, email)
	if err != nil {
		return model.TokenPair{}, storeErr(s.log, "find user", err)
	}

	stored := dummyHash()
	if u != nil {
		stored = u.PasswordHash
	}
	ok, verr := pkgcrypto.VerifyPassword(password, stored)
	if verr != nil && u != nil {
		s.log.Error("stored password hash is malformed", zap.Int64("user_id", u.ID), zap.Error(verr))
		return model.TokenPair{}, errs.Internal(verr)
	}
	if u == nil || !ok {
		blocked, _, ferr := s.lim.Failure(ctx, email, ipHash)
		if ferr != nil {
			s.log.Warn("record sign-in failure", zap.Error(ferr))
		}
		if blocked {
			return model.TokenPair{}, errs.RateLimited()
		}
		return model.TokenPair{}, errs.InvalidCredentials()
	}

	if err := s.lim.Success(ctx, email, ipHash); err != nil {
		s.log.Warn("reset sign-in limit", zap.Error(err))
	}
	return s.tokens.Issue(ctx, u.ID, "")
}

// Refresh exchanges a refresh token for a new pair of the same session.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (pair model.TokenPair, err error) {
	defer func() { s.rec.AuthEvent("refresh", outcome(err)) }()
	return s.tokens.Rotate(ctx, refreshToken)
}

// SignOut verifies the refresh token and deletes its session. Signing out
// twice reports INVALID_TOKEN.
func (s *AuthServiceImpl) SignOut(ctx context.Context, refreshToken string) (ok bool, err error) {
	defer func() { s.rec.AuthEvent("sign_out", outcome(err)) }()
	if _, err := s.tokens.VerifyRefresh(ctx, refreshToken); err != nil {
		return false, err
	}
	if err := s.tokens.Invalidate(ctx, refreshToken); err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate verifies an access token without any store lookup.
func (s *AuthServiceImpl) Authenticate(accessToken string) (model.TokenPayload, error) {
	return s.tokens.VerifyAccess(accessToken)
}

// Me looks up the user behind a verified token.
func (s *AuthServiceImpl) Me(ctx context.Context, userID int64) (model.UserInfo, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.UserInfo{}, storeErr(s.log, "find user", err)
	}
	if u == nil {
		return model.UserInfo{}, errs.NotFound("user", userID)
	}
	return *u, nil
}
