package app_test

import (
	"context"
	"errors"
	"testing"

	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
	"hbnb_web/internal/session"
)

func TestLoginThenVerify(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.token = "header.payload.sig"
	s := session.New(session.NewMemoryKV())
	a := app.NewAccountService(api)

	if err := a.StartLogin(ctx, s, " ana@example.com ", "secret"); err != nil {
		t.Fatalf("StartLogin: %v", err)
	}
	if email, ok := s.PendingEmail(ctx); !ok || email != "ana@example.com" {
		t.Fatalf("expected pending email, got %q %v", email, ok)
	}

	if err := a.Verify(ctx, s, "123456"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if tok, ok := s.Token(ctx); !ok || tok != "header.payload.sig" {
		t.Fatalf("expected token saved, got %q", tok)
	}
	if _, ok := s.PendingEmail(ctx); ok {
		t.Fatalf("pending email must be cleared")
	}
	v := api.ops("verify")
	if len(v) != 1 || v[0].arg != "ana@example.com/123456" {
		t.Fatalf("unexpected verify call: %+v", v)
	}
}

func TestStartLogin_InvalidEmailMakesNoCall(t *testing.T) {
	api := newFakeAPI()
	a := app.NewAccountService(api)
	err := a.StartLogin(context.Background(), session.New(session.NewMemoryKV()), "not-an-email", "x")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Message != app.MsgEmailInvalid {
		t.Fatalf("expected email validation error, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no API call")
	}
}

func TestStartLogin_RejectedKeepsNoPendingEmail(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.failOn["login"] = domain.ErrUnauthorized
	s := session.New(session.NewMemoryKV())

	err := app.NewAccountService(api).StartLogin(ctx, s, "ana@example.com", "bad")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, ok := s.PendingEmail(ctx); ok {
		t.Fatalf("no pending email after a rejected login")
	}
}

func TestVerify_WithoutPendingEmail(t *testing.T) {
	api := newFakeAPI()
	err := app.NewAccountService(api).Verify(context.Background(), session.New(session.NewMemoryKV()), "123456")
	if !errors.Is(err, app.ErrLoginExpired) {
		t.Fatalf("expected ErrLoginExpired, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no API call")
	}
}

func TestVerify_BadCodeKeepsPendingEmail(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.failOn["verify"] = domain.ErrUnauthorized
	s := session.New(session.NewMemoryKV())
	_ = s.SetPendingEmail(ctx, "ana@example.com")

	if err := app.NewAccountService(api).Verify(ctx, s, "000000"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, ok := s.PendingEmail(ctx); !ok {
		t.Fatalf("pending email must survive a wrong code")
	}
	if _, ok := s.Token(ctx); ok {
		t.Fatalf("no token after a wrong code")
	}
}

func TestProfile_NoTokenMakesNoCall(t *testing.T) {
	api := newFakeAPI()
	_, err := app.NewAccountService(api).Profile(context.Background(), session.New(session.NewMemoryKV()))
	if !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no API call, got %+v", api.calls)
	}
}

func TestProfile_LogoutThenProfile(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	s := session.New(session.NewMemoryKV())
	_ = s.SaveToken(ctx, "tok")
	a := app.NewAccountService(api)

	if err := a.Logout(ctx, s); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := a.Profile(ctx, s); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no API call after logout")
	}
}

func TestProfile_LoadsUserData(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.user = domain.User{ID: 9, Username: "ana"}
	api.reviews = []domain.Review{{ID: 1, UserID: 9}}
	s := session.New(session.NewMemoryKV())
	_ = s.SaveToken(ctx, "tok")

	p, err := app.NewAccountService(api).Profile(ctx, s)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.User.Username != "ana" || len(p.Reservations) != 1 || len(p.Reviews) != 1 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if me := api.ops("me"); len(me) != 1 || me[0].arg != "tok" {
		t.Fatalf("expected Me with token, got %+v", me)
	}
}
