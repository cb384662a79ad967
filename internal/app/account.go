package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hbnb_web/internal/domain"
	"hbnb_web/internal/session"
)

// ErrLoginExpired means step two was reached without a pending e-mail.
var ErrLoginExpired = errors.New("no pending login")

type AccountService struct {
	api domain.AccountAPI
}

func NewAccountService(api domain.AccountAPI) *AccountService {
	return &AccountService{api: api}
}

// StartLogin submits the credentials and remembers the e-mail for the
// verification step.
func (a *AccountService) StartLogin(ctx context.Context, s *session.Session, email, password string) error {
	email = strings.TrimSpace(email)
	if err := firstValidationError(validate.Struct(loginRules{Email: email, Password: password}), map[string]string{
		"Email":    MsgEmailInvalid,
		"Password": MsgPasswordRequired,
	}); err != nil {
		return err
	}
	if err := a.api.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return s.SetPendingEmail(ctx, email)
}

// Verify exchanges the code for a token, stores it and forgets the pending e-mail.
func (a *AccountService) Verify(ctx context.Context, s *session.Session, code string) error {
	email, ok := s.PendingEmail(ctx)
	if !ok {
		return ErrLoginExpired
	}
	code = strings.TrimSpace(code)
	if err := firstValidationError(validate.Struct(codeRules{Code: code}), map[string]string{
		"Code": MsgCodeInvalid,
	}); err != nil {
		return err
	}
	tok, err := a.api.Verify2FA(ctx, email, code)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if err := s.SaveToken(ctx, tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := s.ClearPendingEmail(ctx); err != nil {
		log.Warn().Err(err).Msg("clear pending email failed")
	}
	return nil
}

func (a *AccountService) Logout(ctx context.Context, s *session.Session) error {
	return s.Logout(ctx)
}

type Profile struct {
	User            domain.User
	Reservations    []domain.Reservation
	Reviews         []domain.Review
	ReservationsErr error
	ReviewsErr      error
}

// Profile loads the signed-in user. Without a token it returns ErrNoSession
// and issues no request.
func (a *AccountService) Profile(ctx context.Context, s *session.Session) (Profile, error) {
	tok, ok := s.Token(ctx)
	if !ok {
		return Profile{}, domain.ErrNoSession
	}
	u, err := a.api.Me(ctx, tok)
	if err != nil {
		return Profile{}, fmt.Errorf("load profile: %w", err)
	}
	p := Profile{User: u}

	var g errgroup.Group
	g.Go(func() error {
		p.Reservations, p.ReservationsErr = a.api.ReservationsByUser(ctx, u.ID)
		return nil
	})
	g.Go(func() error {
		p.Reviews, p.ReviewsErr = a.api.ReviewsByUser(ctx, u.ID)
		return nil
	})
	_ = g.Wait()

	if p.ReservationsErr != nil {
		log.Warn().Err(p.ReservationsErr).Int64("user_id", u.ID).Msg("reservations fetch failed")
	}
	if p.ReviewsErr != nil {
		log.Warn().Err(p.ReviewsErr).Int64("user_id", u.ID).Msg("reviews fetch failed")
	}
	return p, nil
}
