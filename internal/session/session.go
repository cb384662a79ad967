// Package session keeps the visitor's API token and pending login e-mail in a
// key/value backend and decodes the token's identity claims.
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"hbnb_web/internal/domain"
)

// Fixed storage keys.
const (
	KeyToken        = "token"
	KeyPendingEmail = "pendingEmail"
)

type Session struct {
	kv domain.KV
}

func New(kv domain.KV) *Session { return &Session{kv: kv} }

// SaveToken persists the token, overwriting any prior value.
func (s *Session) SaveToken(ctx context.Context, token string) error {
	if s == nil {
		return domain.ErrNoSession
	}
	return s.kv.Set(ctx, KeyToken, token)
}

// Token returns the persisted token. Storage errors read as "no token".
func (s *Session) Token(ctx context.Context) (string, bool) {
	return s.get(ctx, KeyToken)
}

// Logout removes the persisted token.
func (s *Session) Logout(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.kv.Del(ctx, KeyToken)
}

// CurrentUser decodes the persisted token. A missing or undecodable token
// yields no user; the decode error is logged, never returned.
func (s *Session) CurrentUser(ctx context.Context) (*domain.Claims, bool) {
	tok, ok := s.Token(ctx)
	if !ok {
		return nil, false
	}
	c, err := DecodeClaims(tok)
	if err != nil {
		log.Debug().Err(err).Msg("session token not decodable")
		return nil, false
	}
	return c, true
}

func (s *Session) SetPendingEmail(ctx context.Context, email string) error {
	if s == nil {
		return domain.ErrNoSession
	}
	return s.kv.Set(ctx, KeyPendingEmail, email)
}

func (s *Session) PendingEmail(ctx context.Context) (string, bool) {
	return s.get(ctx, KeyPendingEmail)
}

func (s *Session) ClearPendingEmail(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.kv.Del(ctx, KeyPendingEmail)
}

func (s *Session) get(ctx context.Context, key string) (string, bool) {
	if s == nil || s.kv == nil {
		return "", false
	}
	v, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("session read failed")
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// DecodeClaims reads the token payload without verifying the signature; the
// API verifies it on every authorized call.
func DecodeClaims(token string) (*domain.Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	c := &domain.Claims{Raw: map[string]any(mc)}
	switch sub := mc["sub"].(type) {
	case string:
		c.UserID = sub
	case float64:
		c.UserID = strconv.FormatInt(int64(sub), 10)
	}
	if c.UserID == "" {
		return nil, fmt.Errorf("decode token: missing sub claim")
	}
	c.Email, _ = mc["email"].(string)
	c.Name, _ = mc["username"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time.UTC()
		c.ExpiresAt = &t
	}
	return c, nil
}

// IsOwner compares the session identity with a resource owner id.
func IsOwner(c *domain.Claims, ownerID int64) bool {
	if c == nil || c.UserID == "" {
		return false
	}
	return c.UserID == strconv.FormatInt(ownerID, 10)
}

// UserID returns the numeric identity of the claims, or 0.
func UserID(c *domain.Claims) int64 {
	if c == nil {
		return 0
	}
	id, _ := strconv.ParseInt(c.UserID, 10, 64)
	return id
}

// Expired reports whether the token's exp claim is in the past. Callers use it
// for display only; the API remains the authority.
func Expired(c *domain.Claims, now time.Time) bool {
	return c != nil && c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// From returns the request's session, or nil (which behaves as logged out).
func From(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
