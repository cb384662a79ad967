package domain

import "errors"

var (
	// ErrNoSession means no token is stored for the visitor.
	ErrNoSession = errors.New("no session token")
	// ErrIncomplete is returned when the place exists but a sub-resource batch failed.
	ErrIncomplete = errors.New("place workflow incomplete")

	// Remote API failures. Adapters wrap or unwrap to these.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrUnreachable  = errors.New("api unreachable")
)

// ServerMessager is implemented by errors that carry a message reported by the API.
type ServerMessager interface {
	ServerMessage() string
}

// ValidationError is a local validation failure; no request was issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }
