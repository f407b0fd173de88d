// Package catalog serves the category and tool listings.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/catalog"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

// ErrEmptyQuery is returned when a search query is missing or blank.
var ErrEmptyQuery = errors.New("search query is required")

// Default listing sizes, matching the public API contract.
const (
	DefaultListLimit    = 50
	DefaultShelfLimit   = 10
	DefaultPopularLimit = 10
)

// ListRequest selects a tool listing.
type ListRequest struct {
	Type       catalog.ListType
	CategoryID int64
	Limit      int
	Offset     int
}

// Service exposes the read side of the catalog plus the seed-path writes.
type Service struct {
	categories storage.CategoryStore
	tools      storage.ToolStore
	log        *logger.Logger
}

// New constructs a catalog service.
func New(categories storage.CategoryStore, tools storage.ToolStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	return &Service{categories: categories, tools: tools, log: log}
}

// Categories lists all categories ordered by name.
func (s *Service) Categories(ctx context.Context) ([]catalog.Category, error) {
	return s.categories.ListCategories(ctx)
}

// CategoryBySlug resolves a single category.
func (s *Service) CategoryBySlug(ctx context.Context, slug string) (catalog.Category, error) {
	return s.categories.GetCategoryBySlug(ctx, slug)
}

// CategoryByID resolves a single category.
func (s *Service) CategoryByID(ctx context.Context, id int64) (catalog.Category, error) {
	return s.categories.GetCategory(ctx, id)
}

// Tools serves a listing according to the request type.
func (s *Service) Tools(ctx context.Context, req ListRequest) ([]catalog.Tool, error) {
	switch req.Type {
	case catalog.ListFree:
		return s.tools.ListFreeTools(ctx)
	case catalog.ListPremium:
		return s.tools.ListPremiumTools(ctx)
	case catalog.ListPopular:
		return s.tools.ListPopularTools(ctx, orDefault(req.Limit, DefaultPopularLimit))
	case catalog.ListRecent:
		return s.tools.ListRecentTools(ctx, orDefault(req.Limit, DefaultShelfLimit))
	case catalog.ListDefault:
		return s.tools.ListTools(ctx, req.CategoryID, orDefault(req.Limit, DefaultListLimit), req.Offset)
	default:
		return nil, fmt.Errorf("unsupported listing type %q", req.Type)
	}
}

// PopularTools lists the most used tools.
func (s *Service) PopularTools(ctx context.Context, limit int) ([]catalog.Tool, error) {
	return s.tools.ListPopularTools(ctx, orDefault(limit, DefaultPopularLimit))
}

// Search matches tools by name or description substring.
func (s *Service) Search(ctx context.Context, query string) ([]catalog.Tool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	return s.tools.SearchTools(ctx, query)
}

// ToolBySlug resolves a single tool.
func (s *Service) ToolBySlug(ctx context.Context, slug string) (catalog.Tool, error) {
	return s.tools.GetToolBySlug(ctx, slug)
}

// ToolByID resolves a single tool.
func (s *Service) ToolByID(ctx context.Context, id int64) (catalog.Tool, error) {
	return s.tools.GetTool(ctx, id)
}

// CreateCategory adds a category. Used by the seed path.
func (s *Service) CreateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Slug) == "" {
		return catalog.Category{}, fmt.Errorf("category name and slug are required")
	}
	created, err := s.categories.CreateCategory(ctx, c)
	if err != nil {
		return catalog.Category{}, err
	}
	s.log.WithField("category", created.Slug).Info("category created")
	return created, nil
}

// CreateTool adds a tool. Used by the seed path.
func (s *Service) CreateTool(ctx context.Context, t catalog.Tool) (catalog.Tool, error) {
	if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.Slug) == "" {
		return catalog.Tool{}, fmt.Errorf("tool name and slug are required")
	}
	if t.CategoryID == 0 {
		return catalog.Tool{}, fmt.Errorf("category_id is required")
	}
	if _, err := s.categories.GetCategory(ctx, t.CategoryID); err != nil {
		return catalog.Tool{}, fmt.Errorf("category validation failed: %w", err)
	}
	created, err := s.tools.CreateTool(ctx, t)
	if err != nil {
		return catalog.Tool{}, err
	}
	s.log.WithField("tool", created.Slug).Info("tool created")
	return created, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
