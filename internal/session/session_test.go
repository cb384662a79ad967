package session_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hbnb_web/internal/session"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestSession_SaveTokenOverwritesAndLogoutRemoves(t *testing.T) {
	ctx := context.Background()
	s := session.New(session.NewMemoryKV())

	if _, ok := s.Token(ctx); ok {
		t.Fatalf("expected no token initially")
	}
	_ = s.SaveToken(ctx, "first")
	_ = s.SaveToken(ctx, "second")
	if tok, ok := s.Token(ctx); !ok || tok != "second" {
		t.Fatalf("expected overwritten token, got %q %v", tok, ok)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := s.Token(ctx); ok {
		t.Fatalf("expected token removed")
	}
}

func TestSession_CurrentUser(t *testing.T) {
	ctx := context.Background()
	s := session.New(session.NewMemoryKV())

	if u, ok := s.CurrentUser(ctx); ok || u != nil {
		t.Fatalf("expected no user without token")
	}

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	_ = s.SaveToken(ctx, signed(t, jwt.MapClaims{
		"sub":      "42",
		"email":    "ana@example.com",
		"username": "ana",
		"exp":      exp.Unix(),
	}))
	u, ok := s.CurrentUser(ctx)
	if !ok {
		t.Fatalf("expected current user")
	}
	if u.UserID != "42" || u.Email != "ana@example.com" || u.Name != "ana" {
		t.Fatalf("unexpected claims: %+v", u)
	}
	if u.ExpiresAt == nil || !u.ExpiresAt.Equal(exp.UTC()) {
		t.Fatalf("unexpected exp: %v", u.ExpiresAt)
	}
	if session.UserID(u) != 42 {
		t.Fatalf("expected numeric id 42")
	}
}

func TestSession_UndecodableTokenIsNoUser(t *testing.T) {
	ctx := context.Background()
	s := session.New(session.NewMemoryKV())
	_ = s.SaveToken(ctx, "not-a-jwt")

	if u, ok := s.CurrentUser(ctx); ok || u != nil {
		t.Fatalf("expected decode failure to read as logged out, got %+v", u)
	}
	// the token itself stays; only identity is unavailable
	if _, ok := s.Token(ctx); !ok {
		t.Fatalf("token should still be stored")
	}
}

func TestSession_NumericSub(t *testing.T) {
	c, err := session.DecodeClaims(signed(t, jwt.MapClaims{"sub": 7}))
	if err != nil {
		t.Fatalf("DecodeClaims: %v", err)
	}
	if c.UserID != "7" {
		t.Fatalf("expected sub 7, got %q", c.UserID)
	}
	if _, err := session.DecodeClaims(signed(t, jwt.MapClaims{"email": "x@y"})); err == nil {
		t.Fatalf("expected error without sub")
	}
}

func TestIsOwner(t *testing.T) {
	c, _ := session.DecodeClaims(signed(t, jwt.MapClaims{"sub": "9"}))
	if !session.IsOwner(c, 9) {
		t.Fatalf("expected owner match")
	}
	if session.IsOwner(c, 10) {
		t.Fatalf("expected owner mismatch")
	}
	if session.IsOwner(nil, 9) {
		t.Fatalf("nil claims never own")
	}
}

func TestExpired(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	c, _ := session.DecodeClaims(signed(t, jwt.MapClaims{"sub": "1", "exp": past.Unix()}))
	if !session.Expired(c, time.Now()) {
		t.Fatalf("expected expired")
	}
}

func TestSession_PendingEmail(t *testing.T) {
	ctx := context.Background()
	s := session.New(session.NewMemoryKV())
	_ = s.SetPendingEmail(ctx, "ana@example.com")
	if e, ok := s.PendingEmail(ctx); !ok || e != "ana@example.com" {
		t.Fatalf("unexpected pending email %q", e)
	}
	_ = s.ClearPendingEmail(ctx)
	if _, ok := s.PendingEmail(ctx); ok {
		t.Fatalf("expected pending email cleared")
	}
}

func TestSession_NilIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	s := session.From(ctx)
	if _, ok := s.Token(ctx); ok {
		t.Fatalf("nil session has no token")
	}
	if _, ok := s.CurrentUser(ctx); ok {
		t.Fatalf("nil session has no user")
	}

	bound := session.New(session.NewMemoryKV())
	if session.From(session.WithSession(ctx, bound)) != bound {
		t.Fatalf("expected session from context")
	}
}

func TestFileKV_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	s1 := session.New(session.NewFileKV(path))
	if err := s1.SaveToken(ctx, "tok"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	s2 := session.New(session.NewFileKV(path))
	if tok, ok := s2.Token(ctx); !ok || tok != "tok" {
		t.Fatalf("expected token from file, got %q %v", tok, ok)
	}
	_ = s2.Logout(ctx)
	if _, ok := s1.Token(ctx); ok {
		t.Fatalf("expected token removed from file")
	}
}
