// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ahan30/mindsaidurai-tools/internal/app/auth"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/airequest"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/catalog"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/favorite"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/review"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/usage"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/user"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces plus the
// session store.
type Store struct {
	mu         sync.RWMutex
	nextID     int64
	users      map[string]user.User
	categories map[int64]catalog.Category
	tools      map[int64]catalog.Tool
	usages     map[int64]usage.Usage
	favorites  map[int64]favorite.Favorite
	reviews    map[int64]review.Review
	aiRequests map[int64]airequest.Request
	sessions   map[string]auth.Session
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.CategoryStore = (*Store)(nil)
var _ storage.ToolStore = (*Store)(nil)
var _ storage.UsageStore = (*Store)(nil)
var _ storage.FavoriteStore = (*Store)(nil)
var _ storage.ReviewStore = (*Store)(nil)
var _ storage.AIRequestStore = (*Store)(nil)
var _ auth.SessionStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:     1,
		users:      make(map[string]user.User),
		categories: make(map[int64]catalog.Category),
		tools:      make(map[int64]catalog.Tool),
		usages:     make(map[int64]usage.Usage),
		favorites:  make(map[int64]favorite.Favorite),
		reviews:    make(map[int64]review.Review),
		aiRequests: make(map[int64]airequest.Request),
		sessions:   make(map[string]auth.Session),
	}
}

func (s *Store) nextIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// UserStore implementation ----------------------------------------------------

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) UpsertUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.users[u.ID]; ok {
		existing.Email = u.Email
		existing.FirstName = u.FirstName
		existing.LastName = u.LastName
		existing.ProfileImageURL = u.ProfileImageURL
		existing.UpdatedAt = now
		s.users[u.ID] = existing
		return existing, nil
	}

	if u.Plan == "" {
		u.Plan = user.PlanFree
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = u
	return u, nil
}

// CategoryStore implementation ------------------------------------------------

func (s *Store) CreateCategory(_ context.Context, c catalog.Category) (catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextIDLocked()
	c.CreatedAt = time.Now().UTC()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return catalog.Category{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *Store) GetCategoryBySlug(_ context.Context, slug string) (catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return catalog.Category{}, storage.ErrNotFound
}

func (s *Store) ListCategories(_ context.Context) ([]catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]catalog.Category, 0, len(s.categories))
	for _, c := range s.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ToolStore implementation ----------------------------------------------------

func (s *Store) CreateTool(_ context.Context, t catalog.Tool) (catalog.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	t.ID = s.nextIDLocked()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Tags = append([]string(nil), t.Tags...)
	s.tools[t.ID] = t

	if c, ok := s.categories[t.CategoryID]; ok {
		c.ToolCount++
		s.categories[c.ID] = c
	}
	return cloneTool(t), nil
}

func (s *Store) UpdateTool(_ context.Context, t catalog.Tool) (catalog.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.tools[t.ID]
	if !ok {
		return catalog.Tool{}, storage.ErrNotFound
	}

	t.CreatedAt = original.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	t.Tags = append([]string(nil), t.Tags...)
	s.tools[t.ID] = t
	return cloneTool(t), nil
}

func (s *Store) GetTool(_ context.Context, id int64) (catalog.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tools[id]
	if !ok {
		return catalog.Tool{}, storage.ErrNotFound
	}
	return cloneTool(t), nil
}

func (s *Store) GetToolBySlug(_ context.Context, slug string) (catalog.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tools {
		if t.Slug == slug {
			return cloneTool(t), nil
		}
	}
	return catalog.Tool{}, storage.ErrNotFound
}

func (s *Store) ListTools(_ context.Context, categoryID int64, limit, offset int) ([]catalog.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.activeToolsLocked(func(t catalog.Tool) bool {
		return categoryID == 0 || t.CategoryID == categoryID
	})
	sortByUsage(result)
	return page(result, limit, offset), nil
}

func (s *Store) ListFreeTools(_ context.Context) ([]catalog.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.activeToolsLocked(func(t catalog.Tool) bool { return !t.IsPremium })
	sortByUsage(result)
	return result, nil
}

func (s *Store) ListPremiumTools(_ context.Context) ([]catalog.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.activeToolsLocked(func(t catalog.Tool) bool { return t.IsPremium })
	sortByUsage(result)
	return result, nil
}

func (s *Store) ListPopularTools(_ context.Context, limit int) ([]catalog.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.activeToolsLocked(nil)
	sortByUsage(result)
	return page(result, limit, 0), nil
}

func (s *Store) ListRecentTools(_ context.Context, limit int) ([]catalog.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.activeToolsLocked(nil)
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return page(result, limit, 0), nil
}

func (s *Store) SearchTools(_ context.Context, query string) ([]catalog.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	result := s.activeToolsLocked(func(t catalog.Tool) bool {
		return strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Description), q) ||
			strings.Contains(strings.ToLower(t.ShortDescription), q)
	})
	sortByUsage(result)
	return result, nil
}

func (s *Store) activeToolsLocked(match func(catalog.Tool) bool) []catalog.Tool {
	result := make([]catalog.Tool, 0)
	for _, t := range s.tools {
		if !t.IsActive {
			continue
		}
		if match != nil && !match(t) {
			continue
		}
		result = append(result, cloneTool(t))
	}
	return result
}

// UsageStore implementation ---------------------------------------------------

func (s *Store) RecordUsage(_ context.Context, u usage.Usage) (usage.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tool, ok := s.tools[u.ToolID]
	if !ok {
		return usage.Usage{}, storage.ErrNotFound
	}

	u.ID = s.nextIDLocked()
	u.UsedAt = time.Now().UTC()
	s.usages[u.ID] = u

	tool.UsageCount++
	tool.UpdatedAt = u.UsedAt
	s.tools[tool.ID] = tool
	return u, nil
}

func (s *Store) ListUserUsage(_ context.Context, userID string) ([]usage.Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]usage.Usage, 0)
	for _, u := range s.usages {
		if u.UserID != nil && *u.UserID == userID {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UsedAt.Equal(result[j].UsedAt) {
			return result[i].UsedAt.After(result[j].UsedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (s *Store) UsageStats(_ context.Context, toolID int64) (usage.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := usage.Stats{}
	seen := make(map[string]struct{})
	for _, u := range s.usages {
		if u.ToolID != toolID {
			continue
		}
		stats.Count++
		if u.UserID != nil {
			seen[*u.UserID] = struct{}{}
		}
	}
	stats.UniqueUsers = len(seen)
	return stats, nil
}

// FavoriteStore implementation ------------------------------------------------

func (s *Store) AddFavorite(_ context.Context, f favorite.Favorite) (favorite.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tools[f.ToolID]; !ok {
		return favorite.Favorite{}, storage.ErrNotFound
	}

	f.ID = s.nextIDLocked()
	f.CreatedAt = time.Now().UTC()
	s.favorites[f.ID] = f
	return f, nil
}

func (s *Store) RemoveFavorite(_ context.Context, userID string, toolID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, f := range s.favorites {
		if f.UserID == userID && f.ToolID == toolID {
			delete(s.favorites, id)
		}
	}
	return nil
}

func (s *Store) ListFavoriteTools(_ context.Context, userID string) ([]catalog.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	favs := make([]favorite.Favorite, 0)
	for _, f := range s.favorites {
		if f.UserID == userID {
			favs = append(favs, f)
		}
	}
	sort.Slice(favs, func(i, j int) bool {
		if !favs[i].CreatedAt.Equal(favs[j].CreatedAt) {
			return favs[i].CreatedAt.After(favs[j].CreatedAt)
		}
		return favs[i].ID > favs[j].ID
	})

	result := make([]catalog.Tool, 0, len(favs))
	seen := make(map[int64]struct{})
	for _, f := range favs {
		if _, dup := seen[f.ToolID]; dup {
			continue
		}
		if t, ok := s.tools[f.ToolID]; ok {
			seen[f.ToolID] = struct{}{}
			result = append(result, cloneTool(t))
		}
	}
	return result, nil
}

func (s *Store) IsFavorited(_ context.Context, userID string, toolID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.favorites {
		if f.UserID == userID && f.ToolID == toolID {
			return true, nil
		}
	}
	return false, nil
}

// ReviewStore implementation --------------------------------------------------

func (s *Store) CreateReview(_ context.Context, r review.Review) (review.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tool, ok := s.tools[r.ToolID]
	if !ok {
		return review.Review{}, storage.ErrNotFound
	}
	for _, existing := range s.reviews {
		if existing.UserID == r.UserID && existing.ToolID == r.ToolID {
			return review.Review{}, storage.ErrDuplicateReview
		}
	}

	r.ID = s.nextIDLocked()
	r.CreatedAt = time.Now().UTC()
	s.reviews[r.ID] = r

	rating, count := s.ratingAggregateLocked(r.ToolID)
	tool.Rating = rating
	tool.ReviewCount = count
	tool.UpdatedAt = r.CreatedAt
	s.tools[tool.ID] = tool
	return r, nil
}

func (s *Store) UpdateReview(_ context.Context, r review.Review) (review.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.reviews[r.ID]
	if !ok {
		return review.Review{}, storage.ErrNotFound
	}

	r.UserID = original.UserID
	r.ToolID = original.ToolID
	r.CreatedAt = original.CreatedAt
	s.reviews[r.ID] = r

	if tool, ok := s.tools[r.ToolID]; ok {
		rating, count := s.ratingAggregateLocked(r.ToolID)
		tool.Rating = rating
		tool.ReviewCount = count
		tool.UpdatedAt = time.Now().UTC()
		s.tools[tool.ID] = tool
	}
	return r, nil
}

func (s *Store) ListToolReviews(_ context.Context, toolID int64) ([]review.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]review.Review, 0)
	for _, r := range s.reviews {
		if r.ToolID == toolID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (s *Store) GetUserToolReview(_ context.Context, userID string, toolID int64) (review.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reviews {
		if r.UserID == userID && r.ToolID == toolID {
			return r, nil
		}
	}
	return review.Review{}, storage.ErrNotFound
}

func (s *Store) ratingAggregateLocked(toolID int64) (int, int) {
	sum, count := 0, 0
	for _, r := range s.reviews {
		if r.ToolID == toolID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	rating := (sum + count/2) / count
	return rating, count
}

// AIRequestStore implementation -----------------------------------------------

func (s *Store) CreateAIRequest(_ context.Context, r airequest.Request) (airequest.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.nextIDLocked()
	r.RequestedAt = time.Now().UTC()
	if r.Status == "" {
		r.Status = airequest.StatusPending
	}
	s.aiRequests[r.ID] = r
	return r, nil
}

func (s *Store) GetAIRequest(_ context.Context, id int64) (airequest.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.aiRequests[id]
	if !ok {
		return airequest.Request{}, storage.ErrNotFound
	}
	return r, nil
}

func (s *Store) UpdateAIRequest(_ context.Context, r airequest.Request) (airequest.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.aiRequests[r.ID]
	if !ok {
		return airequest.Request{}, storage.ErrNotFound
	}

	r.UserID = original.UserID
	r.Query = original.Query
	r.RequestedAt = original.RequestedAt
	s.aiRequests[r.ID] = r
	return r, nil
}

func (s *Store) ListUserAIRequests(_ context.Context, userID string) ([]airequest.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]airequest.Request, 0)
	for _, r := range s.aiRequests {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].RequestedAt.Equal(result[j].RequestedAt) {
			return result[i].RequestedAt.After(result[j].RequestedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// SessionStore implementation -------------------------------------------------

func (s *Store) GetSession(_ context.Context, sid string) (auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sid]
	if !ok {
		return auth.Session{}, storage.ErrNotFound
	}
	return sess, nil
}

func (s *Store) PutSession(_ context.Context, sess auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.SID] = sess
	return nil
}

func (s *Store) DeleteSession(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sid)
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for sid, sess := range s.sessions {
		if !sess.Expire.After(before) {
			delete(s.sessions, sid)
			n++
		}
	}
	return n, nil
}

// Helpers ---------------------------------------------------------------------

func cloneTool(t catalog.Tool) catalog.Tool {
	t.Tags = append([]string(nil), t.Tags...)
	return t
}

func sortByUsage(tools []catalog.Tool) {
	sort.Slice(tools, func(i, j int) bool {
		if tools[i].UsageCount != tools[j].UsageCount {
			return tools[i].UsageCount > tools[j].UsageCount
		}
		return tools[i].ID < tools[j].ID
	})
}

func page(tools []catalog.Tool, limit, offset int) []catalog.Tool {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(tools) {
		return []catalog.Tool{}
	}
	tools = tools[offset:]
	if limit > 0 && limit < len(tools) {
		tools = tools[:limit]
	}
	return tools
}
