// Package reviews manages tool reviews and the derived rating aggregate.
package reviews

import (
	"context"
	"errors"

	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/review"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

// ErrInvalidRating is returned when a rating falls outside 1..5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Service manages reviews.
type Service struct {
	store storage.ReviewStore
	log   *logger.Logger
}

// New constructs a review service.
func New(store storage.ReviewStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reviews")
	}
	return &Service{store: store, log: log}
}

// Create stores a review. One review per user per tool; the tool's rating
// and review count are refreshed in the same transaction.
func (s *Service) Create(ctx context.Context, r review.Review) (review.Review, error) {
	if r.Rating < 1 || r.Rating > 5 {
		return review.Review{}, ErrInvalidRating
	}
	created, err := s.store.CreateReview(ctx, r)
	if err != nil {
		return review.Review{}, err
	}
	s.log.WithField("user_id", created.UserID).
		WithField("tool_id", created.ToolID).
		WithField("rating", created.Rating).
		Info("review created")
	return created, nil
}

// Update changes an existing review's rating or comment.
func (s *Service) Update(ctx context.Context, r review.Review) (review.Review, error) {
	if r.Rating < 1 || r.Rating > 5 {
		return review.Review{}, ErrInvalidRating
	}
	return s.store.UpdateReview(ctx, r)
}

// ListForTool returns a tool's reviews, newest first.
func (s *Service) ListForTool(ctx context.Context, toolID int64) ([]review.Review, error) {
	return s.store.ListToolReviews(ctx, toolID)
}

// ForUserAndTool returns the user's review of the tool, if any.
func (s *Service) ForUserAndTool(ctx context.Context, userID string, toolID int64) (review.Review, error) {
	return s.store.GetUserToolReview(ctx, userID, toolID)
}
