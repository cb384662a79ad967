package app_test

import (
	"errors"
	"testing"

	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
)

func TestValidatePlace(t *testing.T) {
	cases := []struct {
		name    string
		form    app.PlaceForm
		wantMsg string
		price   float64
	}{
		{name: "valid", form: app.PlaceForm{Name: "Cabin", Price: "120"}, price: 120},
		{name: "comma decimal", form: app.PlaceForm{Name: "Cabin", Price: "99,5"}, price: 99.5},
		{name: "trimmed name", form: app.PlaceForm{Name: "  Loft ", Price: " 80 "}, price: 80},
		{name: "empty name", form: app.PlaceForm{Name: "", Price: "120"}, wantMsg: app.MsgNameRequired},
		{name: "blank name", form: app.PlaceForm{Name: "   ", Price: "120"}, wantMsg: app.MsgNameRequired},
		{name: "name checked first", form: app.PlaceForm{Name: "", Price: "abc"}, wantMsg: app.MsgNameRequired},
		{name: "missing price", form: app.PlaceForm{Name: "Cabin"}, wantMsg: app.MsgPriceInvalid},
		{name: "text price", form: app.PlaceForm{Name: "Cabin", Price: "cheap"}, wantMsg: app.MsgPriceInvalid},
		{name: "NaN price", form: app.PlaceForm{Name: "Cabin", Price: "NaN"}, wantMsg: app.MsgPriceInvalid},
		{name: "lowercase nan price", form: app.PlaceForm{Name: "Cabin", Price: "nan"}, wantMsg: app.MsgPriceInvalid},
		{name: "Inf price", form: app.PlaceForm{Name: "Cabin", Price: "Inf"}, wantMsg: app.MsgPriceInvalid},
		{name: "+Infinity price", form: app.PlaceForm{Name: "Cabin", Price: "+Infinity"}, wantMsg: app.MsgPriceInvalid},
		{name: "-inf price", form: app.PlaceForm{Name: "Cabin", Price: "-inf"}, wantMsg: app.MsgPriceInvalid},
		{name: "NaN latitude", form: app.PlaceForm{Name: "Cabin", Price: "1", Latitude: "NaN"}, wantMsg: app.MsgCoordinatesInvalid},
		{name: "bad latitude", form: app.PlaceForm{Name: "Cabin", Price: "1", Latitude: "north"}, wantMsg: app.MsgCoordinatesInvalid},
		{name: "latitude out of range", form: app.PlaceForm{Name: "Cabin", Price: "1", Latitude: "91"}, wantMsg: app.MsgCoordinatesInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, err := app.ValidatePlace(tc.form)
			if tc.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				if in.PriceByNight != tc.price {
					t.Fatalf("price: got %v want %v", in.PriceByNight, tc.price)
				}
				return
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Message != tc.wantMsg {
				t.Fatalf("expected %q, got %v", tc.wantMsg, err)
			}
		})
	}
}

func TestValidatePlace_SentinelErrors(t *testing.T) {
	if _, err := app.ValidatePlace(app.PlaceForm{Price: "1"}); !errors.Is(err, app.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := app.ValidatePlace(app.PlaceForm{Name: "x", Price: "y"}); !errors.Is(err, app.ErrPriceInvalid) {
		t.Fatalf("expected ErrPriceInvalid, got %v", err)
	}
	if _, err := app.ValidatePlace(app.PlaceForm{Name: "x", Price: "1", Longitude: "east"}); !errors.Is(err, app.ErrCoordinatesInvalid) {
		t.Fatalf("expected ErrCoordinatesInvalid, got %v", err)
	}
}

func TestValidatePlace_Coordinates(t *testing.T) {
	in, err := app.ValidatePlace(app.PlaceForm{Name: "Cabin", Price: "120", Latitude: "45.5", Longitude: ""})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if in.Latitude == nil || *in.Latitude != 45.5 {
		t.Fatalf("expected latitude 45.5, got %v", in.Latitude)
	}
	if in.Longitude != nil {
		t.Fatalf("expected absent longitude")
	}
}

func TestValidateReview(t *testing.T) {
	if _, err := app.ValidateReview(domain.ReviewInput{Rating: 5, Comment: " Super "}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, r := range []int{0, 6, -1} {
		_, err := app.ValidateReview(domain.ReviewInput{Rating: r})
		var ve *domain.ValidationError
		if !errors.As(err, &ve) || ve.Message != app.MsgRatingRange {
			t.Fatalf("rating %d: expected range error, got %v", r, err)
		}
	}
}
