package hbnbapi

import (
	"context"
	"errors"
	"fmt"

	"hbnb_web/internal/domain"
)

// ---- Auth & profile ----

// Login submits credentials; success means a verification code was e-mailed.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.Post(ctx, "/auth/login", body, nil)
}

// Verify2FA exchanges the e-mailed code for an access token.
func (c *Client) Verify2FA(ctx context.Context, email, code string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"email": email, "code": code}
	if err := c.Post(ctx, "/auth/verify-2fa", body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &APIError{Method: "POST", Path: "/auth/verify-2fa", Status: 200, Message: "missing access_token"}
	}
	return out.AccessToken, nil
}

func (c *Client) Me(ctx context.Context, token string) (domain.User, error) {
	var u domain.User
	err := c.Get(ctx, "/users/me", &u, WithToken(token))
	return u, err
}

// ---- Places ----

func (c *Client) ListPlaces(ctx context.Context) ([]domain.Place, error) {
	var out []domain.Place
	err := c.Get(ctx, "/places/", &out)
	return out, err
}

func (c *Client) GetPlace(ctx context.Context, id int64) (domain.Place, error) {
	var p domain.Place
	err := c.Get(ctx, fmt.Sprintf("/places/%d/", id), &p)
	return p, err
}

func (c *Client) CreatePlace(ctx context.Context, token string, in domain.PlaceInput) (domain.Place, error) {
	var p domain.Place
	err := c.Post(ctx, "/places/", in, &p, WithToken(token))
	return p, err
}

func (c *Client) UpdatePlace(ctx context.Context, token string, id int64, in domain.PlaceInput) (domain.Place, error) {
	var p domain.Place
	err := c.Put(ctx, fmt.Sprintf("/places/%d/", id), in, &p, WithToken(token))
	return p, err
}

func (c *Client) DeletePlace(ctx context.Context, token string, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/places/%d/", id), nil, WithToken(token))
}

// ---- Amenities ----

func (c *Client) AddAmenity(ctx context.Context, token string, placeID int64, name string) error {
	body := map[string]string{"name": name}
	return c.Post(ctx, fmt.Sprintf("/places/%d/amenities", placeID), body, nil, WithToken(token))
}

func (c *Client) ListAmenities(ctx context.Context, placeID int64) ([]domain.Amenity, error) {
	var out []domain.Amenity
	err := c.Get(ctx, fmt.Sprintf("/places/%d/amenities", placeID), &out)
	return out, err
}

// ---- Images ----

func (c *Client) UploadImage(ctx context.Context, token string, placeID int64, f *domain.ImageFile) (domain.Image, error) {
	var img domain.Image
	body := &Multipart{Field: "file", Filename: f.Filename, ContentType: f.ContentType, Body: f.Body}
	err := c.Post(ctx, fmt.Sprintf("/places/%d/images", placeID), body, &img, WithToken(token))
	return img, err
}

func (c *Client) AddImageURL(ctx context.Context, token string, placeID int64, url string) (domain.Image, error) {
	var img domain.Image
	body := map[string]string{"url": url}
	err := c.Post(ctx, fmt.Sprintf("/places/%d/images", placeID), body, &img, WithToken(token))
	return img, err
}

// ---- Reviews ----

func (c *Client) ListReviews(ctx context.Context, placeID int64) ([]domain.Review, error) {
	var out []domain.Review
	err := c.Get(ctx, fmt.Sprintf("/places/%d/reviews", placeID), &out)
	return out, err
}

func (c *Client) CreateReview(ctx context.Context, token string, placeID int64, in domain.ReviewInput) (domain.Review, error) {
	var r domain.Review
	err := c.Post(ctx, fmt.Sprintf("/places/%d/reviews", placeID), in, &r, WithToken(token))
	return r, err
}

func (c *Client) DeleteReview(ctx context.Context, token string, placeID, reviewID int64) error {
	return c.Delete(ctx, fmt.Sprintf("/places/%d/reviews/%d", placeID, reviewID), nil, WithToken(token))
}

func (c *Client) ReviewsByUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	var out []domain.Review
	err := notFoundIsEmpty(c.Get(ctx, fmt.Sprintf("/reviews/user/%d", userID), &out))
	return out, err
}

// ---- Reservations ----

// The API answers 404 when a place or user has no reservations; that is an empty list here.

func (c *Client) ReservationsByPlace(ctx context.Context, placeID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := notFoundIsEmpty(c.Get(ctx, fmt.Sprintf("/reservations/place/%d", placeID), &out))
	return out, err
}

func (c *Client) ReservationsByUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := notFoundIsEmpty(c.Get(ctx, fmt.Sprintf("/reservations/user/%d", userID), &out))
	return out, err
}

func notFoundIsEmpty(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
