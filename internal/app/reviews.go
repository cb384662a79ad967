package app

import (
	"context"
	"fmt"

	"hbnb_web/internal/domain"
	"hbnb_web/internal/session"
)

type ReviewService struct {
	api domain.ReviewAPI
}

func NewReviewService(api domain.ReviewAPI) *ReviewService {
	return &ReviewService{api: api}
}

// Create posts a review for the place. A visitor without a token gets
// ErrNoSession and no request is made.
func (r *ReviewService) Create(ctx context.Context, s *session.Session, placeID int64, in domain.ReviewInput) (domain.Review, error) {
	tok, ok := s.Token(ctx)
	if !ok {
		return domain.Review{}, domain.ErrNoSession
	}
	in, err := ValidateReview(in)
	if err != nil {
		return domain.Review{}, err
	}
	rv, err := r.api.CreateReview(ctx, tok, placeID, in)
	if err != nil {
		return domain.Review{}, fmt.Errorf("create review: %w", err)
	}
	return rv, nil
}

func (r *ReviewService) Delete(ctx context.Context, s *session.Session, placeID, reviewID int64) error {
	tok, ok := s.Token(ctx)
	if !ok {
		return domain.ErrNoSession
	}
	if err := r.api.DeleteReview(ctx, tok, placeID, reviewID); err != nil {
		return fmt.Errorf("delete review %d: %w", reviewID, err)
	}
	return nil
}
