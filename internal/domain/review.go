package domain

import "time"

type Review struct {
	ID        int64      `json:"id"`
	PlaceID   int64      `json:"place_id"`
	UserID    int64      `json:"user_id"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	UserName  string     `json:"user_name,omitempty"`
	UserPhoto string     `json:"user_photo,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type ReviewInput struct {
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
}

// Reservation is read-only here; the API owns its lifecycle.
type Reservation struct {
	ID            int64  `json:"id"`
	PlaceID       int64  `json:"place_id"`
	UserID        int64  `json:"user_id"`
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
}

type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Country     string `json:"country,omitempty"`
	Town        string `json:"town,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
}

// Claims is the identity decoded from a session token.
type Claims struct {
	UserID    string
	Email     string
	Name      string
	ExpiresAt *time.Time
	Raw       map[string]any
}
