package app_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"hbnb_web/internal/domain"
)

// ---- fakes ----

type call struct {
	op      string
	placeID int64
	arg     string
}

// fakeAPI records every call in order and fails the ones named in failOn.
type fakeAPI struct {
	mu      sync.Mutex
	calls   []call
	nextID  int64
	failOn  map[string]error
	place   domain.Place
	places  []domain.Place
	ams     []domain.Amenity
	reviews []domain.Review
	user    domain.User
	token   string
}

func newFakeAPI() *fakeAPI { return &fakeAPI{nextID: 42, failOn: map[string]error{}} }

func (f *fakeAPI) record(op string, placeID int64, arg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: op, placeID: placeID, arg: arg})
	if err, ok := f.failOn[op+":"+arg]; ok {
		return err
	}
	if err, ok := f.failOn[op]; ok {
		return err
	}
	return nil
}

func (f *fakeAPI) ops(op string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) CreatePlace(ctx context.Context, token string, in domain.PlaceInput) (domain.Place, error) {
	if err := f.record("create", 0, in.Name); err != nil {
		return domain.Place{}, err
	}
	return domain.Place{ID: f.nextID, Name: in.Name, PriceByNight: in.PriceByNight}, nil
}

func (f *fakeAPI) UpdatePlace(ctx context.Context, token string, id int64, in domain.PlaceInput) (domain.Place, error) {
	if err := f.record("update", id, in.Name); err != nil {
		return domain.Place{}, err
	}
	return domain.Place{ID: id, Name: in.Name}, nil
}

func (f *fakeAPI) DeletePlace(ctx context.Context, token string, id int64) error {
	return f.record("delete", id, "")
}

func (f *fakeAPI) AddAmenity(ctx context.Context, token string, placeID int64, name string) error {
	return f.record("amenity", placeID, name)
}

func (f *fakeAPI) UploadImage(ctx context.Context, token string, placeID int64, file *domain.ImageFile) (domain.Image, error) {
	b, _ := io.ReadAll(file.Body)
	if err := f.record("upload", placeID, file.Filename+"="+string(b)); err != nil {
		return domain.Image{}, err
	}
	return domain.Image{ID: 1, URL: "/uploads/" + file.Filename}, nil
}

func (f *fakeAPI) AddImageURL(ctx context.Context, token string, placeID int64, url string) (domain.Image, error) {
	if err := f.record("image_url", placeID, url); err != nil {
		return domain.Image{}, err
	}
	return domain.Image{ID: 2, URL: url}, nil
}

func (f *fakeAPI) ListPlaces(ctx context.Context) ([]domain.Place, error) {
	if err := f.record("list", 0, ""); err != nil {
		return nil, err
	}
	return f.places, nil
}

func (f *fakeAPI) GetPlace(ctx context.Context, id int64) (domain.Place, error) {
	if err := f.record("get", id, ""); err != nil {
		return domain.Place{}, err
	}
	return f.place, nil
}

func (f *fakeAPI) ListAmenities(ctx context.Context, placeID int64) ([]domain.Amenity, error) {
	if err := f.record("amenities", placeID, ""); err != nil {
		return nil, err
	}
	return f.ams, nil
}

func (f *fakeAPI) ListReviews(ctx context.Context, placeID int64) ([]domain.Review, error) {
	if err := f.record("reviews", placeID, ""); err != nil {
		return nil, err
	}
	return f.reviews, nil
}

func (f *fakeAPI) ReservationsByPlace(ctx context.Context, placeID int64) ([]domain.Reservation, error) {
	if err := f.record("place_reservations", placeID, ""); err != nil {
		return nil, err
	}
	return []domain.Reservation{{ID: 3, PlaceID: placeID, StartDatetime: "2025-07-01", EndDatetime: "2025-07-04"}}, nil
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) error {
	return f.record("login", 0, email)
}

func (f *fakeAPI) Verify2FA(ctx context.Context, email, code string) (string, error) {
	if err := f.record("verify", 0, email+"/"+code); err != nil {
		return "", err
	}
	return f.token, nil
}

func (f *fakeAPI) Me(ctx context.Context, token string) (domain.User, error) {
	if err := f.record("me", 0, token); err != nil {
		return domain.User{}, err
	}
	return f.user, nil
}

func (f *fakeAPI) ReservationsByUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	if err := f.record("user_reservations", userID, ""); err != nil {
		return nil, err
	}
	return []domain.Reservation{{ID: 1, PlaceID: 42, UserID: userID}}, nil
}

func (f *fakeAPI) ReviewsByUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	if err := f.record("user_reviews", userID, ""); err != nil {
		return nil, err
	}
	return f.reviews, nil
}

func (f *fakeAPI) CreateReview(ctx context.Context, token string, placeID int64, in domain.ReviewInput) (domain.Review, error) {
	if err := f.record("create_review", placeID, fmt.Sprintf("%d:%s", in.Rating, in.Comment)); err != nil {
		return domain.Review{}, err
	}
	return domain.Review{ID: 9, PlaceID: placeID, Rating: in.Rating, Comment: in.Comment}, nil
}

func (f *fakeAPI) DeleteReview(ctx context.Context, token string, placeID, reviewID int64) error {
	return f.record("delete_review", placeID, fmt.Sprint(reviewID))
}

type fakeJournal struct {
	mu  sync.Mutex
	out []domain.WorkflowOutcome
}

func (j *fakeJournal) Record(ctx context.Context, o domain.WorkflowOutcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.out = append(j.out, o)
	return nil
}

func (j *fakeJournal) ListIncomplete(ctx context.Context, limit int) ([]domain.WorkflowOutcome, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var res []domain.WorkflowOutcome
	for _, o := range j.out {
		if o.Status != domain.OutcomeComplete {
			res = append(res, o)
		}
	}
	return res, nil
}

var errBoom = errors.New("boom")

func jpeg(name string) domain.ImageSource {
	return domain.FileImage(&domain.ImageFile{Filename: name, ContentType: "image/jpeg", Body: strings.NewReader("DATA")})
}
