// Package storage declares the persistence interfaces for the catalog
// service and the sentinel errors shared by their implementations.
package storage

import (
	"context"
	"errors"

	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/airequest"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/catalog"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/favorite"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/review"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/usage"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/user"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicateReview is returned when a (user, tool) pair already has a
// review.
var ErrDuplicateReview = errors.New("review already exists")

// UserStore persists user profiles from the login provider.
type UserStore interface {
	GetUser(ctx context.Context, id string) (user.User, error)
	UpsertUser(ctx context.Context, u user.User) (user.User, error)
}

// CategoryStore persists tool categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error)
	GetCategory(ctx context.Context, id int64) (catalog.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (catalog.Category, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
}

// ToolStore persists tools and serves the catalog listings.
type ToolStore interface {
	CreateTool(ctx context.Context, t catalog.Tool) (catalog.Tool, error)
	UpdateTool(ctx context.Context, t catalog.Tool) (catalog.Tool, error)
	GetTool(ctx context.Context, id int64) (catalog.Tool, error)
	GetToolBySlug(ctx context.Context, slug string) (catalog.Tool, error)

	// ListTools returns active tools ordered by usage count. categoryID 0
	// means all categories.
	ListTools(ctx context.Context, categoryID int64, limit, offset int) ([]catalog.Tool, error)
	ListFreeTools(ctx context.Context) ([]catalog.Tool, error)
	ListPremiumTools(ctx context.Context) ([]catalog.Tool, error)
	ListPopularTools(ctx context.Context, limit int) ([]catalog.Tool, error)
	ListRecentTools(ctx context.Context, limit int) ([]catalog.Tool, error)

	// SearchTools matches the query as a substring of name, description or
	// short description across active tools.
	SearchTools(ctx context.Context, query string) ([]catalog.Tool, error)
}

// UsageStore persists usage records and the derived per-tool counter.
type UsageStore interface {
	// RecordUsage inserts the usage row and increments the tool's usage
	// count atomically. Returns ErrNotFound when the tool does not exist.
	RecordUsage(ctx context.Context, u usage.Usage) (usage.Usage, error)
	ListUserUsage(ctx context.Context, userID string) ([]usage.Usage, error)
	UsageStats(ctx context.Context, toolID int64) (usage.Stats, error)
}

// AIRequestStore persists AI tool generation requests.
type AIRequestStore interface {
	CreateAIRequest(ctx context.Context, r airequest.Request) (airequest.Request, error)
	GetAIRequest(ctx context.Context, id int64) (airequest.Request, error)
	UpdateAIRequest(ctx context.Context, r airequest.Request) (airequest.Request, error)
	ListUserAIRequests(ctx context.Context, userID string) ([]airequest.Request, error)
}

// FavoriteStore persists user favorites.
type FavoriteStore interface {
	AddFavorite(ctx context.Context, f favorite.Favorite) (favorite.Favorite, error)
	RemoveFavorite(ctx context.Context, userID string, toolID int64) error
	ListFavoriteTools(ctx context.Context, userID string) ([]catalog.Tool, error)
	IsFavorited(ctx context.Context, userID string, toolID int64) (bool, error)
}

// ReviewStore persists reviews and the derived rating aggregate on the tool.
type ReviewStore interface {
	// CreateReview inserts the review and recomputes the tool's rating and
	// review count in the same transaction. Returns ErrDuplicateReview when
	// the user already reviewed the tool and ErrNotFound when the tool does
	// not exist.
	CreateReview(ctx context.Context, r review.Review) (review.Review, error)
	UpdateReview(ctx context.Context, r review.Review) (review.Review, error)
	ListToolReviews(ctx context.Context, toolID int64) ([]review.Review, error)
	GetUserToolReview(ctx context.Context, userID string, toolID int64) (review.Review, error)
}
