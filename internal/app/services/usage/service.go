// Package usage records tool usage and serves usage analytics.
package usage

import (
	"context"
	"fmt"

	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/usage"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

// Service records usage events.
type Service struct {
	store storage.UsageStore
	log   *logger.Logger
}

// New constructs a usage service.
func New(store storage.UsageStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("usage")
	}
	return &Service{store: store, log: log}
}

// Record persists one usage event and bumps the tool counter.
func (s *Service) Record(ctx context.Context, u usage.Usage) (usage.Usage, error) {
	if u.ToolID == 0 {
		return usage.Usage{}, fmt.Errorf("tool_id is required")
	}
	recorded, err := s.store.RecordUsage(ctx, u)
	if err != nil {
		return usage.Usage{}, err
	}
	s.log.WithField("tool_id", recorded.ToolID).Debug("usage recorded")
	return recorded, nil
}

// ListForUser returns the caller's usage history, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]usage.Usage, error) {
	return s.store.ListUserUsage(ctx, userID)
}

// Stats returns aggregate usage for a tool.
func (s *Service) Stats(ctx context.Context, toolID int64) (usage.Stats, error) {
	return s.store.UsageStats(ctx, toolID)
}
