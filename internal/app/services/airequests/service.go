// Package airequests manages AI tool generation requests. Status transitions
// are driven externally; this service only persists and validates them.
package airequests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/airequest"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

// ErrEmptyQuery is returned when a request has no query text.
var ErrEmptyQuery = errors.New("query is required")

// Service manages AI tool requests.
type Service struct {
	store storage.AIRequestStore
	log   *logger.Logger
}

// New constructs an AI request service.
func New(store storage.AIRequestStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("airequests")
	}
	return &Service{store: store, log: log}
}

// Create files a new request in pending state.
func (s *Service) Create(ctx context.Context, r airequest.Request) (airequest.Request, error) {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return airequest.Request{}, ErrEmptyQuery
	}
	r.Status = airequest.StatusPending
	created, err := s.store.CreateAIRequest(ctx, r)
	if err != nil {
		return airequest.Request{}, err
	}
	s.log.WithField("user_id", created.UserID).WithField("request_id", created.ID).Info("ai tool request filed")
	return created, nil
}

// Get fetches a single request.
func (s *Service) Get(ctx context.Context, id int64) (airequest.Request, error) {
	return s.store.GetAIRequest(ctx, id)
}

// ListForUser returns the caller's requests, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]airequest.Request, error) {
	return s.store.ListUserAIRequests(ctx, userID)
}

// Transition moves a request to a new status. Completed requests may carry
// the generated tool id.
func (s *Service) Transition(ctx context.Context, id int64, status airequest.Status, generatedToolID int64) (airequest.Request, error) {
	if !status.Valid() {
		return airequest.Request{}, fmt.Errorf("unsupported status %q", status)
	}

	req, err := s.store.GetAIRequest(ctx, id)
	if err != nil {
		return airequest.Request{}, err
	}

	req.Status = status
	if generatedToolID != 0 {
		req.GeneratedToolID = generatedToolID
	}
	if status == airequest.StatusCompleted || status == airequest.StatusFailed {
		now := time.Now().UTC()
		req.CompletedAt = &now
	}

	updated, err := s.store.UpdateAIRequest(ctx, req)
	if err != nil {
		return airequest.Request{}, err
	}
	s.log.WithField("request_id", id).WithField("status", string(status)).Info("ai tool request updated")
	return updated, nil
}
