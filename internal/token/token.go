// Package token issues, verifies, rotates and revokes access/refresh token
// pairs.
//
// Access tokens are verified by signature and expiry only. Refresh tokens
// are additionally bound to a session entry in an expiring store, keyed by
// (user, session) and holding a salted hash of the token: an entry is
// written on issue and deleted on rotation or sign-out, so a refresh token
// is usable at most once.
package token

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/stockroom/internal/crypto"
	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/kv"
	"github.com/and161185/stockroom/internal/model"
)

// Token lifetimes.
const (
	AccessTTL  = 900 * time.Second
	RefreshTTL = 604800 * time.Second
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// claims carries {sub, jti, iat, exp}. Kind keeps the two token kinds apart
// and Nonce makes every issued token distinct, even for a session rotated
// twice within the same second.
type claims struct {
	Kind  string `json:"typ"`
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// Service manages token pairs.
type Service struct {
	store      kv.Store
	accessKey  []byte
	refreshKey []byte
	now        func() time.Time
	log        *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a token service. accessKey and refreshKey are the
// HS256 signing keys of the two token kinds and must differ.
func NewService(store kv.Store, accessKey, refreshKey []byte, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:      store,
		accessKey:  accessKey,
		refreshKey: refreshKey,
		now:        time.Now,
		log:        log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func storeKey(userID int64, sessionID string) string {
	return fmt.Sprintf("refresh:%d:%s", userID, sessionID)
}

// Issue creates a token pair for userID. An empty sessionID starts a new
// session; a non-empty one continues it (rotation).
func (s *Service) Issue(ctx context.Context, userID int64, sessionID string) (model.TokenPair, error) {
	if sessionID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return model.TokenPair{}, errs.Internal(err)
		}
		sessionID = id.String()
	}
	now := s.now().Truncate(time.Second)

	access, err := s.sign(s.accessKey, kindAccess, userID, sessionID, now, now.Add(AccessTTL))
	if err != nil {
		return model.TokenPair{}, errs.Internal(err)
	}
	refresh, err := s.sign(s.refreshKey, kindRefresh, userID, sessionID, now, now.Add(RefreshTTL))
	if err != nil {
		return model.TokenPair{}, errs.Internal(err)
	}
	hash, err := pkgcrypto.HashToken(refresh)
	if err != nil {
		return model.TokenPair{}, errs.Internal(err)
	}
	if err := s.store.SetWithTTL(ctx, storeKey(userID, sessionID), hash, RefreshTTL); err != nil {
		s.log.Error("store refresh session", zap.Int64("user_id", userID), zap.Error(err))
		return model.TokenPair{}, errs.Database("token store unavailable", err)
	}
	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks an access token's signature and expiry.
func (s *Service) VerifyAccess(token string) (model.TokenPayload, error) {
	c, err := s.parse(s.accessKey, token, true)
	if err != nil {
		return model.TokenPayload{}, err
	}
	return payload(c, kindAccess)
}

// VerifyRefresh checks a refresh token's signature and expiry, then that its
// session entry exists and holds the token's hash.
func (s *Service) VerifyRefresh(ctx context.Context, token string) (model.TokenPayload, error) {
	c, err := s.parse(s.refreshKey, token, true)
	if err != nil {
		return model.TokenPayload{}, err
	}
	p, err := payload(c, kindRefresh)
	if err != nil {
		return model.TokenPayload{}, err
	}
	stored, found, err := s.store.Get(ctx, storeKey(p.UserID, p.SessionID))
	if err != nil {
		s.log.Error("load refresh session", zap.Int64("user_id", p.UserID), zap.Error(err))
		return model.TokenPayload{}, errs.Database("token store unavailable", err)
	}
	if !found || !pkgcrypto.VerifyToken(token, stored) {
		return model.TokenPayload{}, errs.InvalidToken()
	}
	return p, nil
}

// Invalidate deletes the session entry of a refresh token. Expiry is not
// checked, so a session can be revoked right up to and past its end; the
// signature still is, and the entry is only deleted while it holds this
// token's hash. An absent or superseded entry is reported as InvalidToken.
func (s *Service) Invalidate(ctx context.Context, token string) error {
	c, err := s.parse(s.refreshKey, token, false)
	if err != nil {
		return err
	}
	p, err := payload(c, kindRefresh)
	if err != nil {
		return err
	}
	key := storeKey(p.UserID, p.SessionID)
	stored, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Error("load refresh session", zap.Int64("user_id", p.UserID), zap.Error(err))
		return errs.Database("token store unavailable", err)
	}
	if !found || !pkgcrypto.VerifyToken(token, stored) {
		return errs.InvalidToken()
	}
	n, err := s.store.DeleteIfValue(ctx, key, stored)
	if err != nil {
		s.log.Error("delete refresh session", zap.Int64("user_id", p.UserID), zap.Error(err))
		return errs.Database("token store unavailable", err)
	}
	if n == 0 {
		return errs.InvalidToken()
	}
	return nil
}

// Rotate exchanges a refresh token for a new pair of the same session. Of
// concurrent rotations of one token only one conditional delete succeeds,
// so only one caller gets a new pair.
func (s *Service) Rotate(ctx context.Context, token string) (model.TokenPair, error) {
	p, err := s.VerifyRefresh(ctx, token)
	if err != nil {
		return model.TokenPair{}, err
	}
	if err := s.Invalidate(ctx, token); err != nil {
		return model.TokenPair{}, err
	}
	return s.Issue(ctx, p.UserID, p.SessionID)
}

func (s *Service) sign(key []byte, kind string, userID int64, sessionID string, iat, exp time.Time) (string, error) {
	nonce, err := pkgcrypto.RandBytes(8)
	if err != nil {
		return "", err
	}
	c := claims{
		Kind:  kind,
		Nonce: hex.EncodeToString(nonce),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(key)
}

func (s *Service) parse(key []byte, token string, validate bool) (*claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if !validate {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return key, nil }, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.TokenExpired()
		}
		return nil, errs.InvalidToken()
	}
	return &c, nil
}

func payload(c *claims, kind string) (model.TokenPayload, error) {
	if c.Kind != kind || c.ID == "" || c.IssuedAt == nil || c.ExpiresAt == nil {
		return model.TokenPayload{}, errs.InvalidToken()
	}
	uid, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return model.TokenPayload{}, errs.InvalidToken()
	}
	return model.TokenPayload{
		UserID:    uid,
		SessionID: c.ID,
		IssuedAt:  c.IssuedAt.Unix(),
		ExpiresAt: c.ExpiresAt.Unix(),
	}, nil
}
