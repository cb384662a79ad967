package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hbnb_web/internal/domain"
)

const keyPlaces = "places"

func keyPlace(id int64) string { return fmt.Sprintf("place:%d", id) }

// PlaceDetail is everything the detail page shows. Amenity and review fetch
// failures do not fail the page; they are reported next to their section.
type PlaceDetail struct {
	Place        domain.Place
	Amenities    []domain.Amenity
	Reviews      []domain.Review
	Reservations []domain.Reservation
	AmenitiesErr error
	ReviewsErr   error
	// ReservationsErr only hides the section.
	ReservationsErr error
}

type QueryService struct {
	api      domain.ReadAPI
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewQueryService wires the read side. cache may be nil.
func NewQueryService(api domain.ReadAPI, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{api: api, cache: c, cacheTTL: ttl}
}

func (s *QueryService) ListPlaces(ctx context.Context) ([]domain.Place, error) {
	var out []domain.Place
	if s.cacheGet(ctx, keyPlaces, &out) {
		return out, nil
	}
	out, err := s.api.ListPlaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	s.cacheSet(ctx, keyPlaces, out)
	return out, nil
}

func (s *QueryService) GetPlace(ctx context.Context, id int64) (domain.Place, error) {
	var p domain.Place
	if s.cacheGet(ctx, keyPlace(id), &p) {
		return p, nil
	}
	p, err := s.api.GetPlace(ctx, id)
	if err != nil {
		return domain.Place{}, fmt.Errorf("get place %d: %w", id, err)
	}
	s.cacheSet(ctx, keyPlace(id), p)
	return p, nil
}

// PlaceDetail fetches the place and its amenities, reviews and reservations concurrently.
// Reviews are never cached so a posted review shows on the next render.
func (s *QueryService) PlaceDetail(ctx context.Context, id int64) (PlaceDetail, error) {
	var d PlaceDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.GetPlace(gctx, id)
		d.Place = p
		return err
	})
	g.Go(func() error {
		d.Amenities, d.AmenitiesErr = s.api.ListAmenities(gctx, id)
		return nil
	})
	g.Go(func() error {
		d.Reviews, d.ReviewsErr = s.api.ListReviews(gctx, id)
		return nil
	})
	g.Go(func() error {
		d.Reservations, d.ReservationsErr = s.api.ReservationsByPlace(gctx, id)
		return nil
	})
	if err := g.Wait(); err != nil {
		return PlaceDetail{}, err
	}

	if d.AmenitiesErr != nil {
		log.Warn().Err(d.AmenitiesErr).Int64("place_id", id).Msg("amenities fetch failed")
		d.Amenities = d.Place.Amenities
	}
	if d.ReviewsErr != nil {
		log.Warn().Err(d.ReviewsErr).Int64("place_id", id).Msg("reviews fetch failed")
	}
	return d, nil
}

// Invalidate drops cached copies after a place mutation.
func (s *QueryService) Invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, keyPlaces)
	if id > 0 {
		_ = s.cache.Del(ctx, keyPlace(id))
	}
}

func (s *QueryService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache get failed")
		return false
	}
	return ok
}

func (s *QueryService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
}
