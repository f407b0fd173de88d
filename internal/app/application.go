// Package app wires the domain services together and manages their
// lifecycle.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ahan30/mindsaidurai-tools/internal/app/auth"
	airequestsvc "github.com/ahan30/mindsaidurai-tools/internal/app/services/airequests"
	catalogsvc "github.com/ahan30/mindsaidurai-tools/internal/app/services/catalog"
	"github.com/ahan30/mindsaidurai-tools/internal/app/services/execution"
	favoritesvc "github.com/ahan30/mindsaidurai-tools/internal/app/services/favorites"
	reviewsvc "github.com/ahan30/mindsaidurai-tools/internal/app/services/reviews"
	usagesvc "github.com/ahan30/mindsaidurai-tools/internal/app/services/usage"
	usersvc "github.com/ahan30/mindsaidurai-tools/internal/app/services/users"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage/memory"
	"github.com/ahan30/mindsaidurai-tools/internal/app/system"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users      storage.UserStore
	Categories storage.CategoryStore
	Tools      storage.ToolStore
	Usage      storage.UsageStore
	Favorites  storage.FavoriteStore
	Reviews    storage.ReviewStore
	AIRequests storage.AIRequestStore
	Sessions   auth.SessionStore
}

// Options tunes optional application behavior.
type Options struct {
	Verifier      auth.Verifier
	SessionTTL    time.Duration
	CookieName    string
	SecureCookie  bool
	SweepInterval time.Duration
	Execution     execution.Provider
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users      *usersvc.Service
	Catalog    *catalogsvc.Service
	Usage      *usagesvc.Service
	Favorites  *favoritesvc.Service
	Reviews    *reviewsvc.Service
	AIRequests *airequestsvc.Service
	Execution  execution.Provider
	Sessions   *auth.Provider
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if opts.Verifier == nil {
		return nil, fmt.Errorf("token verifier is required")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Categories == nil {
		stores.Categories = mem
	}
	if stores.Tools == nil {
		stores.Tools = mem
	}
	if stores.Usage == nil {
		stores.Usage = mem
	}
	if stores.Favorites == nil {
		stores.Favorites = mem
	}
	if stores.Reviews == nil {
		stores.Reviews = mem
	}
	if stores.AIRequests == nil {
		stores.AIRequests = mem
	}
	if stores.Sessions == nil {
		stores.Sessions = mem
	}

	if opts.Execution == nil {
		opts.Execution = execution.NewMockProvider(0, log.Named("execution"))
	}

	manager := system.NewManager()

	sessions := auth.NewProvider(stores.Sessions, stores.Users, opts.Verifier, auth.Options{
		TTL:          opts.SessionTTL,
		CookieName:   opts.CookieName,
		SecureCookie: opts.SecureCookie,
	}, log.Named("auth"))

	for _, name := range []string{"catalog", "usage", "favorites", "reviews", "airequests"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	sweeper := auth.NewSweeper(stores.Sessions, opts.SweepInterval, log.Named("session-sweeper"))
	if err := manager.Register(sweeper); err != nil {
		return nil, fmt.Errorf("register %s: %w", sweeper.Name(), err)
	}

	return &Application{
		manager:    manager,
		log:        log,
		Users:      usersvc.New(stores.Users, log),
		Catalog:    catalogsvc.New(stores.Categories, stores.Tools, log),
		Usage:      usagesvc.New(stores.Usage, log),
		Favorites:  favoritesvc.New(stores.Tools, stores.Favorites, log),
		Reviews:    reviewsvc.New(stores.Reviews, log),
		AIRequests: airequestsvc.New(stores.AIRequests, log),
		Execution:  opts.Execution,
		Sessions:   sessions,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
