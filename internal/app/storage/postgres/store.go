// Package postgres implements the storage interfaces over PostgreSQL using
// database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"github.com/ahan30/mindsaidurai-tools/internal/app/auth"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/airequest"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/catalog"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/favorite"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/review"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/usage"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/user"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.CategoryStore = (*Store)(nil)
var _ storage.ToolStore = (*Store)(nil)
var _ storage.UsageStore = (*Store)(nil)
var _ storage.FavoriteStore = (*Store)(nil)
var _ storage.ReviewStore = (*Store)(nil)
var _ storage.AIRequestStore = (*Store)(nil)
var _ auth.SessionStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// --- UserStore --------------------------------------------------------------

const userColumns = `id, email, first_name, last_name, profile_image_url, plan, plan_expires_at, created_at, updated_at`

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (s *Store) UpsertUser(ctx context.Context, u user.User) (user.User, error) {
	if u.Plan == "" {
		u.Plan = user.PlanFree
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, profile_image_url, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    profile_image_url = EXCLUDED.profile_image_url,
		    updated_at = now()
		RETURNING `+userColumns+`
	`, u.ID, u.Email, u.FirstName, u.LastName, u.ProfileImageURL, u.Plan)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u       user.User
		expires sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImageURL, &u.Plan, &expires, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, mapNotFound(err)
	}
	if expires.Valid {
		t := expires.Time.UTC()
		u.PlanExpiresAt = &t
	}
	return u, nil
}

// --- CategoryStore ----------------------------------------------------------

const categoryColumns = `id, name, slug, icon, description, color, tool_count, created_at`

func (s *Store) CreateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO tool_categories (name, slug, icon, description, color, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING `+categoryColumns+`
	`, c.Name, c.Slug, c.Icon, c.Description, c.Color)
	return scanCategory(row)
}

func (s *Store) GetCategory(ctx context.Context, id int64) (catalog.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM tool_categories
		WHERE id = $1
	`, id)
	return scanCategory(row)
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (catalog.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM tool_categories
		WHERE slug = $1
	`, slug)
	return scanCategory(row)
}

func (s *Store) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM tool_categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func scanCategory(row rowScanner) (catalog.Category, error) {
	var c catalog.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.Description, &c.Color, &c.ToolCount, &c.CreatedAt); err != nil {
		return catalog.Category{}, mapNotFound(err)
	}
	return c, nil
}

// --- ToolStore --------------------------------------------------------------

const toolColumns = `id, name, slug, description, short_description, category_id, icon, is_premium, is_ai_generated, usage_count, rating, review_count, tags, metadata, is_active, created_at, updated_at`

func (s *Store) CreateTool(ctx context.Context, t catalog.Tool) (catalog.Tool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return catalog.Tool{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO tools (name, slug, description, short_description, category_id, icon, is_premium, is_ai_generated, tags, metadata, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		RETURNING `+toolColumns+`
	`, t.Name, t.Slug, t.Description, t.ShortDescription, t.CategoryID, t.Icon, t.IsPremium, t.IsAIGenerated, pq.Array(t.Tags), nullJSON(t.Metadata), t.IsActive)

	created, err := scanTool(row)
	if err != nil {
		return catalog.Tool{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE tool_categories SET tool_count = tool_count + 1 WHERE id = $1
	`, created.CategoryID); err != nil {
		return catalog.Tool{}, err
	}

	if err := tx.Commit(); err != nil {
		return catalog.Tool{}, err
	}
	return created, nil
}

func (s *Store) UpdateTool(ctx context.Context, t catalog.Tool) (catalog.Tool, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE tools
		SET name = $2, slug = $3, description = $4, short_description = $5, category_id = $6,
		    icon = $7, is_premium = $8, is_ai_generated = $9, tags = $10, metadata = $11,
		    is_active = $12, updated_at = now()
		WHERE id = $1
		RETURNING `+toolColumns+`
	`, t.ID, t.Name, t.Slug, t.Description, t.ShortDescription, t.CategoryID, t.Icon,
		t.IsPremium, t.IsAIGenerated, pq.Array(t.Tags), nullJSON(t.Metadata), t.IsActive)
	return scanTool(row)
}

func (s *Store) GetTool(ctx context.Context, id int64) (catalog.Tool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+toolColumns+`
		FROM tools
		WHERE id = $1
	`, id)
	return scanTool(row)
}

func (s *Store) GetToolBySlug(ctx context.Context, slug string) (catalog.Tool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+toolColumns+`
		FROM tools
		WHERE slug = $1
	`, slug)
	return scanTool(row)
}

func (s *Store) ListTools(ctx context.Context, categoryID int64, limit, offset int) ([]catalog.Tool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+toolColumns+`
		FROM tools
		WHERE is_active AND ($1 = 0 OR category_id = $1)
		ORDER BY usage_count DESC, id
		LIMIT $2 OFFSET $3
	`, categoryID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectTools(rows)
}

func (s *Store) ListFreeTools(ctx context.Context) ([]catalog.Tool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+toolColumns+`
		FROM tools
		WHERE is_active AND NOT is_premium
		ORDER BY usage_count DESC, id
	`)
	if err != nil {
		return nil, err
	}
	return collectTools(rows)
}

func (s *Store) ListPremiumTools(ctx context.Context) ([]catalog.Tool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+toolColumns+`
		FROM tools
		WHERE is_active AND is_premium
		ORDER BY usage_count DESC, id
	`)
	if err != nil {
		return nil, err
	}
	return collectTools(rows)
}

func (s *Store) ListPopularTools(ctx context.Context, limit int) ([]catalog.Tool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+toolColumns+`
		FROM tools
		WHERE is_active
		ORDER BY usage_count DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectTools(rows)
}

func (s *Store) ListRecentTools(ctx context.Context, limit int) ([]catalog.Tool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+toolColumns+`
		FROM tools
		WHERE is_active
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectTools(rows)
}

func (s *Store) SearchTools(ctx context.Context, query string) ([]catalog.Tool, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+toolColumns+`
		FROM tools
		WHERE is_active AND (name ILIKE $1 OR description ILIKE $1 OR short_description ILIKE $1)
		ORDER BY usage_count DESC, id
	`, pattern)
	if err != nil {
		return nil, err
	}
	return collectTools(rows)
}

func collectTools(rows *sql.Rows) ([]catalog.Tool, error) {
	defer rows.Close()

	var result []catalog.Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func scanTool(row rowScanner) (catalog.Tool, error) {
	var (
		t           catalog.Tool
		metadataRaw []byte
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Description, &t.ShortDescription, &t.CategoryID,
		&t.Icon, &t.IsPremium, &t.IsAIGenerated, &t.UsageCount, &t.Rating, &t.ReviewCount,
		pq.Array(&t.Tags), &metadataRaw, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return catalog.Tool{}, mapNotFound(err)
	}
	if len(metadataRaw) > 0 {
		t.Metadata = json.RawMessage(metadataRaw)
	}
	return t, nil
}

// --- UsageStore -------------------------------------------------------------

func (s *Store) RecordUsage(ctx context.Context, u usage.Usage) (usage.Usage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return usage.Usage{}, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE tools SET usage_count = usage_count + 1, updated_at = now() WHERE id = $1
	`, u.ToolID)
	if err != nil {
		return usage.Usage{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return usage.Usage{}, storage.ErrNotFound
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO tool_usage (user_id, tool_id, session_id, used_at, metadata)
		VALUES ($1, $2, $3, now(), $4)
		RETURNING id, used_at
	`, u.UserID, u.ToolID, u.SessionID, nullJSON(u.Metadata))
	if err := row.Scan(&u.ID, &u.UsedAt); err != nil {
		return usage.Usage{}, err
	}

	if err := tx.Commit(); err != nil {
		return usage.Usage{}, err
	}
	return u, nil
}

func (s *Store) ListUserUsage(ctx context.Context, userID string) ([]usage.Usage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, tool_id, session_id, used_at, metadata
		FROM tool_usage
		WHERE user_id = $1
		ORDER BY used_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []usage.Usage
	for rows.Next() {
		var (
			u           usage.Usage
			metadataRaw []byte
		)
		if err := rows.Scan(&u.ID, &u.UserID, &u.ToolID, &u.SessionID, &u.UsedAt, &metadataRaw); err != nil {
			return nil, err
		}
		if len(metadataRaw) > 0 {
			u.Metadata = json.RawMessage(metadataRaw)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *Store) UsageStats(ctx context.Context, toolID int64) (usage.Stats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT count(*), count(DISTINCT user_id)
		FROM tool_usage
		WHERE tool_id = $1
	`, toolID)

	var stats usage.Stats
	if err := row.Scan(&stats.Count, &stats.UniqueUsers); err != nil {
		return usage.Stats{}, err
	}
	return stats, nil
}

// --- FavoriteStore ----------------------------------------------------------

func (s *Store) AddFavorite(ctx context.Context, f favorite.Favorite) (favorite.Favorite, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO user_favorites (user_id, tool_id, created_at)
		VALUES ($1, $2, now())
		RETURNING id, created_at
	`, f.UserID, f.ToolID)
	if err := row.Scan(&f.ID, &f.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return favorite.Favorite{}, storage.ErrNotFound
		}
		return favorite.Favorite{}, err
	}
	return f, nil
}

func (s *Store) RemoveFavorite(ctx context.Context, userID string, toolID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM user_favorites WHERE user_id = $1 AND tool_id = $2
	`, userID, toolID)
	return err
}

func (s *Store) ListFavoriteTools(ctx context.Context, userID string) ([]catalog.Tool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT ON (t.id) t.id, t.name, t.slug, t.description, t.short_description,
		       t.category_id, t.icon, t.is_premium, t.is_ai_generated, t.usage_count, t.rating,
		       t.review_count, t.tags, t.metadata, t.is_active, t.created_at, t.updated_at,
		       f.created_at AS favorited_at
		FROM user_favorites f
		JOIN tools t ON t.id = f.tool_id
		WHERE f.user_id = $1
		ORDER BY t.id, favorited_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type entry struct {
		tool        catalog.Tool
		favoritedAt time.Time
	}
	var entries []entry
	for rows.Next() {
		var (
			e           entry
			metadataRaw []byte
		)
		if err := rows.Scan(&e.tool.ID, &e.tool.Name, &e.tool.Slug, &e.tool.Description,
			&e.tool.ShortDescription, &e.tool.CategoryID, &e.tool.Icon, &e.tool.IsPremium,
			&e.tool.IsAIGenerated, &e.tool.UsageCount, &e.tool.Rating, &e.tool.ReviewCount,
			pq.Array(&e.tool.Tags), &metadataRaw, &e.tool.IsActive, &e.tool.CreatedAt,
			&e.tool.UpdatedAt, &e.favoritedAt); err != nil {
			return nil, err
		}
		if len(metadataRaw) > 0 {
			e.tool.Metadata = json.RawMessage(metadataRaw)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].favoritedAt.After(entries[j].favoritedAt) })
	result := make([]catalog.Tool, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.tool)
	}
	return result, nil
}

func (s *Store) IsFavorited(ctx context.Context, userID string, toolID int64) (bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_favorites WHERE user_id = $1 AND tool_id = $2
		)
	`, userID, toolID)

	var favorited bool
	if err := row.Scan(&favorited); err != nil {
		return false, err
	}
	return favorited, nil
}

// --- ReviewStore ------------------------------------------------------------

func (s *Store) CreateReview(ctx context.Context, r review.Review) (review.Review, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return review.Review{}, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tool_reviews WHERE user_id = $1 AND tool_id = $2
		)
	`, r.UserID, r.ToolID).Scan(&exists); err != nil {
		return review.Review{}, err
	}
	if exists {
		return review.Review{}, storage.ErrDuplicateReview
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO tool_reviews (user_id, tool_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, created_at
	`, r.UserID, r.ToolID, r.Rating, r.Comment)
	if err := row.Scan(&r.ID, &r.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return review.Review{}, storage.ErrDuplicateReview
			case "foreign_key_violation":
				return review.Review{}, storage.ErrNotFound
			}
		}
		return review.Review{}, err
	}

	if err := refreshRating(ctx, tx, r.ToolID); err != nil {
		return review.Review{}, err
	}

	if err := tx.Commit(); err != nil {
		return review.Review{}, err
	}
	return r, nil
}

func (s *Store) UpdateReview(ctx context.Context, r review.Review) (review.Review, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return review.Review{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE tool_reviews
		SET rating = $2, comment = $3
		WHERE id = $1
		RETURNING id, user_id, tool_id, rating, comment, created_at
	`, r.ID, r.Rating, r.Comment)
	if err := row.Scan(&r.ID, &r.UserID, &r.ToolID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
		return review.Review{}, mapNotFound(err)
	}

	if err := refreshRating(ctx, tx, r.ToolID); err != nil {
		return review.Review{}, err
	}

	if err := tx.Commit(); err != nil {
		return review.Review{}, err
	}
	return r, nil
}

// refreshRating recomputes the tool's aggregate from its reviews inside the
// caller's transaction.
func refreshRating(ctx context.Context, tx *sql.Tx, toolID int64) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE tools
		SET rating = COALESCE((
		        SELECT round(avg(rating))::int FROM tool_reviews WHERE tool_id = $1
		    ), 0),
		    review_count = (SELECT count(*) FROM tool_reviews WHERE tool_id = $1),
		    updated_at = now()
		WHERE id = $1
	`, toolID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListToolReviews(ctx context.Context, toolID int64) ([]review.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, tool_id, rating, comment, created_at
		FROM tool_reviews
		WHERE tool_id = $1
		ORDER BY created_at DESC, id DESC
	`, toolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []review.Review
	for rows.Next() {
		var r review.Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.ToolID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *Store) GetUserToolReview(ctx context.Context, userID string, toolID int64) (review.Review, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, tool_id, rating, comment, created_at
		FROM tool_reviews
		WHERE user_id = $1 AND tool_id = $2
	`, userID, toolID)

	var r review.Review
	if err := row.Scan(&r.ID, &r.UserID, &r.ToolID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
		return review.Review{}, mapNotFound(err)
	}
	return r, nil
}

// --- AIRequestStore ---------------------------------------------------------

func (s *Store) CreateAIRequest(ctx context.Context, r airequest.Request) (airequest.Request, error) {
	if r.Status == "" {
		r.Status = airequest.StatusPending
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO ai_tool_requests (user_id, query, status, metadata, requested_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, requested_at
	`, r.UserID, r.Query, r.Status, nullJSON(r.Metadata))
	if err := row.Scan(&r.ID, &r.RequestedAt); err != nil {
		return airequest.Request{}, err
	}
	return r, nil
}

func (s *Store) GetAIRequest(ctx context.Context, id int64) (airequest.Request, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, query, status, generated_tool_id, metadata, requested_at, completed_at
		FROM ai_tool_requests
		WHERE id = $1
	`, id)
	return scanAIRequest(row)
}

func (s *Store) UpdateAIRequest(ctx context.Context, r airequest.Request) (airequest.Request, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE ai_tool_requests
		SET status = $2, generated_tool_id = $3, metadata = $4, completed_at = $5
		WHERE id = $1
		RETURNING id, user_id, query, status, generated_tool_id, metadata, requested_at, completed_at
	`, r.ID, r.Status, nullID(r.GeneratedToolID), nullJSON(r.Metadata), nullTime(r.CompletedAt))
	return scanAIRequest(row)
}

func (s *Store) ListUserAIRequests(ctx context.Context, userID string) ([]airequest.Request, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, query, status, generated_tool_id, metadata, requested_at, completed_at
		FROM ai_tool_requests
		WHERE user_id = $1
		ORDER BY requested_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []airequest.Request
	for rows.Next() {
		r, err := scanAIRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func scanAIRequest(row rowScanner) (airequest.Request, error) {
	var (
		r           airequest.Request
		toolID      sql.NullInt64
		metadataRaw []byte
		completedAt sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Query, &r.Status, &toolID, &metadataRaw, &r.RequestedAt, &completedAt); err != nil {
		return airequest.Request{}, mapNotFound(err)
	}
	if toolID.Valid {
		r.GeneratedToolID = toolID.Int64
	}
	if len(metadataRaw) > 0 {
		r.Metadata = json.RawMessage(metadataRaw)
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		r.CompletedAt = &t
	}
	return r, nil
}

// --- SessionStore -----------------------------------------------------------

func (s *Store) GetSession(ctx context.Context, sid string) (auth.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT sid, sess, expire
		FROM sessions
		WHERE sid = $1
	`, sid)

	var (
		sess    auth.Session
		dataRaw []byte
	)
	if err := row.Scan(&sess.SID, &dataRaw, &sess.Expire); err != nil {
		return auth.Session{}, mapNotFound(err)
	}
	if err := json.Unmarshal(dataRaw, &sess.Data); err != nil {
		return auth.Session{}, fmt.Errorf("decode session %s: %w", sid, err)
	}
	return sess, nil
}

func (s *Store) PutSession(ctx context.Context, sess auth.Session) error {
	dataRaw, err := json.Marshal(sess.Data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (sid, sess, expire)
		VALUES ($1, $2, $3)
		ON CONFLICT (sid) DO UPDATE SET sess = EXCLUDED.sess, expire = EXCLUDED.expire
	`, sess.SID, dataRaw, sess.Expire)
	return err
}

func (s *Store) DeleteSession(ctx context.Context, sid string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE sid = $1
	`, sid)
	return err
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE expire <= $1
	`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// --- helpers ----------------------------------------------------------------

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func nullID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
