package domain

import (
	"context"
	"time"
)

// PlaceAPI is the subset of the remote API the place workflow drives.
type PlaceAPI interface {
	CreatePlace(ctx context.Context, token string, in PlaceInput) (Place, error)
	UpdatePlace(ctx context.Context, token string, id int64, in PlaceInput) (Place, error)
	DeletePlace(ctx context.Context, token string, id int64) error
	AddAmenity(ctx context.Context, token string, placeID int64, name string) error
	UploadImage(ctx context.Context, token string, placeID int64, f *ImageFile) (Image, error)
	AddImageURL(ctx context.Context, token string, placeID int64, url string) (Image, error)
}

// ReadAPI covers the read-only fetches of the listing and detail pages.
type ReadAPI interface {
	ListPlaces(ctx context.Context) ([]Place, error)
	GetPlace(ctx context.Context, id int64) (Place, error)
	ListAmenities(ctx context.Context, placeID int64) ([]Amenity, error)
	ListReviews(ctx context.Context, placeID int64) ([]Review, error)
	ReservationsByPlace(ctx context.Context, placeID int64) ([]Reservation, error)
}

// AccountAPI covers authentication and the profile page.
type AccountAPI interface {
	Login(ctx context.Context, email, password string) error
	Verify2FA(ctx context.Context, email, code string) (string, error)
	Me(ctx context.Context, token string) (User, error)
	ReservationsByUser(ctx context.Context, userID int64) ([]Reservation, error)
	ReviewsByUser(ctx context.Context, userID int64) ([]Review, error)
}

// ReviewAPI covers review mutations.
type ReviewAPI interface {
	CreateReview(ctx context.Context, token string, placeID int64, in ReviewInput) (Review, error)
	DeleteReview(ctx context.Context, token string, placeID, reviewID int64) error
}

// KV is the persistent key/value storage behind a session.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Journal records workflow outcomes so orphaned places can be found later.
type Journal interface {
	Record(ctx context.Context, o WorkflowOutcome) error
	ListIncomplete(ctx context.Context, limit int) ([]WorkflowOutcome, error)
}

type OutcomeStatus string

const (
	OutcomeComplete           OutcomeStatus = "complete"
	OutcomeIncomplete         OutcomeStatus = "incomplete"
	OutcomeCompensated        OutcomeStatus = "compensated"
	OutcomeCompensationFailed OutcomeStatus = "compensation_failed"
)

type WorkflowOutcome struct {
	ID              int64         `json:"id,omitempty"`
	PlaceID         int64         `json:"place_id"`
	Operation       string        `json:"operation"` // create|update
	Status          OutcomeStatus `json:"status"`
	AmenitiesFailed int           `json:"amenities_failed"`
	ImagesFailed    int           `json:"images_failed"`
	Detail          string        `json:"detail,omitempty"`
	RecordedAt      time.Time     `json:"recorded_at"`
}
