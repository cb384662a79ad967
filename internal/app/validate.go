package app

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"hbnb_web/internal/domain"
)

// User-visible validation messages.
const (
	MsgNameRequired       = "Le nom du lieu est obligatoire."
	MsgPriceInvalid       = "Le prix par nuit doit être un nombre."
	MsgCoordinatesInvalid = "Les coordonnées doivent être des nombres valides."
	MsgRatingRange        = "La note doit être comprise entre 1 et 5."
	MsgCommentTooLong     = "Le commentaire est trop long."
	MsgEmailInvalid       = "Adresse e-mail invalide."
	MsgPasswordRequired   = "Le mot de passe est obligatoire."
	MsgCodeInvalid        = "Le code doit contenir 6 chiffres."
)

// Place form failures. They match with errors.Is and carry the user message.
var (
	ErrNameRequired       = &domain.ValidationError{Field: "name", Message: MsgNameRequired}
	ErrPriceInvalid       = &domain.ValidationError{Field: "price_by_night", Message: MsgPriceInvalid}
	ErrCoordinatesInvalid = &domain.ValidationError{Field: "coordinates", Message: MsgCoordinatesInvalid}
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PlaceForm is the raw place form input. Numbers arrive as text.
type PlaceForm struct {
	Name        string
	Description string
	Price       string
	Location    string
	Country     string
	Town        string
	Latitude    string
	Longitude   string
	Amenities   []string
	Images      []domain.ImageSource
}

type coordinates struct {
	Latitude  *float64 `validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `validate:"omitempty,gte=-180,lte=180"`
}

// ValidatePlace checks the form locally and returns the API payload.
// Name is checked before price so the first message matches the first bad field.
func ValidatePlace(f PlaceForm) (domain.PlaceInput, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return domain.PlaceInput{}, ErrNameRequired
	}
	price, ok := parseNumber(f.Price)
	if !ok {
		return domain.PlaceInput{}, ErrPriceInvalid
	}

	lat, okLat := parseOptional(f.Latitude)
	lon, okLon := parseOptional(f.Longitude)
	if !okLat || !okLon {
		return domain.PlaceInput{}, ErrCoordinatesInvalid
	}
	if err := validate.Struct(coordinates{Latitude: lat, Longitude: lon}); err != nil {
		return domain.PlaceInput{}, ErrCoordinatesInvalid
	}

	return domain.PlaceInput{
		Name:         name,
		Description:  strings.TrimSpace(f.Description),
		PriceByNight: price,
		Location:     strings.TrimSpace(f.Location),
		Country:      strings.TrimSpace(f.Country),
		Town:         strings.TrimSpace(f.Town),
		Latitude:     lat,
		Longitude:    lon,
	}, nil
}

// parseNumber accepts "120", "120.5" and "120,5". NaN and infinities are rejected.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseOptional maps "" to nil and rejects non-numeric text.
func parseOptional(s string) (*float64, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	f, ok := parseNumber(s)
	if !ok {
		return nil, false
	}
	return &f, true
}

type reviewRules struct {
	Rating  int    `validate:"min=1,max=5"`
	Comment string `validate:"max=2000"`
}

func ValidateReview(in domain.ReviewInput) (domain.ReviewInput, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	err := validate.Struct(reviewRules{Rating: in.Rating, Comment: in.Comment})
	return in, firstValidationError(err, map[string]string{
		"Rating":  MsgRatingRange,
		"Comment": MsgCommentTooLong,
	})
}

type loginRules struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type codeRules struct {
	Code string `validate:"required,len=6,numeric"`
}

// firstValidationError converts validator output into a ValidationError with
// the message registered for the first failing field.
func firstValidationError(err error, messages map[string]string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ValidationError{Field: strings.ToLower(fe.Field()), Message: messages[fe.Field()]}
	}
	return err
}
