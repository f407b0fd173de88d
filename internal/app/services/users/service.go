// Package users manages user profiles synced from the login provider.
package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/user"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

// Service manages user records.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a user service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.store.GetUser(ctx, id)
}

// Upsert creates or refreshes a user profile. The plan is never touched on
// update; it belongs to the billing flow.
func (s *Service) Upsert(ctx context.Context, u user.User) (user.User, error) {
	if strings.TrimSpace(u.ID) == "" {
		return user.User{}, fmt.Errorf("user id is required")
	}
	if u.Plan != "" && !u.Plan.Valid() {
		return user.User{}, fmt.Errorf("unsupported plan %q", u.Plan)
	}
	saved, err := s.store.UpsertUser(ctx, u)
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("user_id", saved.ID).Info("user profile synced")
	return saved, nil
}
