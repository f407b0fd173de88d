// Package favorites manages a user's favorite tools.
package favorites

import (
	"context"
	"fmt"

	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/catalog"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/favorite"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

// Service manages favorites.
type Service struct {
	tools storage.ToolStore
	store storage.FavoriteStore
	log   *logger.Logger
}

// New constructs a favorites service.
func New(tools storage.ToolStore, store storage.FavoriteStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("favorites")
	}
	return &Service{tools: tools, store: store, log: log}
}

// Add favorites a tool for the user. Favoriting twice stores a second row;
// listings deduplicate.
func (s *Service) Add(ctx context.Context, userID string, toolID int64) (favorite.Favorite, error) {
	if toolID == 0 {
		return favorite.Favorite{}, fmt.Errorf("tool_id is required")
	}
	if _, err := s.tools.GetTool(ctx, toolID); err != nil {
		return favorite.Favorite{}, err
	}

	created, err := s.store.AddFavorite(ctx, favorite.Favorite{UserID: userID, ToolID: toolID})
	if err != nil {
		return favorite.Favorite{}, err
	}
	s.log.WithField("user_id", userID).WithField("tool_id", toolID).Info("favorite added")
	return created, nil
}

// Remove deletes all of the user's favorite rows for the tool.
func (s *Service) Remove(ctx context.Context, userID string, toolID int64) error {
	if err := s.store.RemoveFavorite(ctx, userID, toolID); err != nil {
		return err
	}
	s.log.WithField("user_id", userID).WithField("tool_id", toolID).Info("favorite removed")
	return nil
}

// ListTools returns the user's favorite tools, most recently favorited first.
func (s *Service) ListTools(ctx context.Context, userID string) ([]catalog.Tool, error) {
	return s.store.ListFavoriteTools(ctx, userID)
}

// IsFavorited reports whether the user has favorited the tool.
func (s *Service) IsFavorited(ctx context.Context, userID string, toolID int64) (bool, error) {
	return s.store.IsFavorited(ctx, userID, toolID)
}
