// Package view holds presentation state and the rules for what a visitor
// may see or do on a page.
package view

import (
	"errors"
	"strings"

	"hbnb_web/internal/domain"
	"hbnb_web/internal/session"
)

type PageState int

const (
	Idle PageState = iota
	Loading
	Success
	Error
	Empty
)

func (s PageState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	case Empty:
		return "empty"
	}
	return "idle"
}

// Page is the render model of one page or page section.
type Page[T any] struct {
	State   PageState
	Data    T
	Message string
}

// Loaded builds the page from a fetch result. A failed fetch renders the
// message for err; an empty result renders emptyMsg.
func Loaded[T any](data T, err error, fallback string, isEmpty func(T) bool, emptyMsg string) Page[T] {
	if err != nil {
		return Page[T]{State: Error, Message: Message(err, fallback)}
	}
	if isEmpty != nil && isEmpty(data) {
		return Page[T]{State: Empty, Data: data, Message: emptyMsg}
	}
	return Page[T]{State: Success, Data: data}
}

// CanEditPlace reports whether the visitor owns the place.
func CanEditPlace(c *domain.Claims, p domain.Place) bool {
	return session.IsOwner(c, p.OwnerID)
}

// CanDeleteReview reports whether the visitor wrote the review.
func CanDeleteReview(c *domain.Claims, r domain.Review) bool {
	return session.IsOwner(c, r.UserID)
}

// Message picks the text shown for err: the validation message, the server's
// own message, the network message, or fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	if errors.Is(err, domain.ErrUnreachable) {
		return MsgNetwork
	}
	if errors.Is(err, domain.ErrNoSession) {
		return MsgSessionExpired
	}
	var sm domain.ServerMessager
	if errors.As(err, &sm) {
		if m := strings.TrimSpace(sm.ServerMessage()); m != "" {
			return m
		}
	}
	return fallback
}
