// Package httpapi exposes the REST API over the application services.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	app "github.com/ahan30/mindsaidurai-tools/internal/app"
	"github.com/ahan30/mindsaidurai-tools/internal/app/auth"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/airequest"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/catalog"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/review"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/usage"
	"github.com/ahan30/mindsaidurai-tools/internal/app/metrics"
	airequestsvc "github.com/ahan30/mindsaidurai-tools/internal/app/services/airequests"
	catalogsvc "github.com/ahan30/mindsaidurai-tools/internal/app/services/catalog"
	reviewsvc "github.com/ahan30/mindsaidurai-tools/internal/app/services/reviews"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
	"github.com/ahan30/mindsaidurai-tools/internal/middleware"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app   *app.Application
	authn *middleware.Authenticator
	audit *auditLog
	log   *logger.Logger
}

// NewHandler returns a router exposing the REST API. Session resolution is
// applied to every /api route; gated routes additionally require a verified
// identity.
func NewHandler(application *app.Application, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}

	var sink auditSink
	if fileSink, err := newFileAuditSink(os.Getenv("AUDIT_LOG_PATH")); err != nil {
		log.WithError(err).Warn("audit log file disabled")
	} else if fileSink != nil {
		sink = fileSink
	}

	h := &handler{
		app:   application,
		authn: middleware.NewAuthenticator(application.Sessions, log),
		audit: newAuditLog(200, sink),
		log:   log,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(mux.MiddlewareFunc(h.authn.Optional))

	api.HandleFunc("/auth/callback", h.authCallback).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.authLogout).Methods(http.MethodPost)
	api.Handle("/auth/user", h.require(h.authUser)).Methods(http.MethodGet)

	api.HandleFunc("/categories", h.categories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{slug}", h.categoryBySlug).Methods(http.MethodGet)

	api.HandleFunc("/tools", h.tools).Methods(http.MethodGet)
	api.HandleFunc("/tools/search", h.searchTools).Methods(http.MethodGet)
	api.HandleFunc("/tools/{slug}", h.toolBySlug).Methods(http.MethodGet)
	api.HandleFunc("/tools/{id}/use", h.useTool).Methods(http.MethodPost)
	api.HandleFunc("/tools/{id}/execute", h.executeTool).Methods(http.MethodPost)
	api.HandleFunc("/tools/{id}/stats", h.toolStats).Methods(http.MethodGet)
	api.Handle("/tools/{id}/reviews", h.require(h.createReview)).Methods(http.MethodPost)
	api.HandleFunc("/tools/{id}/reviews", h.listReviews).Methods(http.MethodGet)

	api.Handle("/ai-tools/request", h.require(h.createAIRequest)).Methods(http.MethodPost)
	api.Handle("/ai-tools/requests", h.require(h.listAIRequests)).Methods(http.MethodGet)

	api.Handle("/favorites", h.require(h.addFavorite)).Methods(http.MethodPost)
	api.Handle("/favorites", h.require(h.listFavorites)).Methods(http.MethodGet)
	api.Handle("/favorites/{toolId}", h.require(h.removeFavorite)).Methods(http.MethodDelete)
	api.Handle("/favorites/{toolId}/check", h.require(h.checkFavorite)).Methods(http.MethodGet)

	api.HandleFunc("/analytics/popular-tools", h.popularTools).Methods(http.MethodGet)
	api.Handle("/user/usage", h.require(h.userUsage)).Methods(http.MethodGet)
	api.Handle("/audit", h.require(h.auditEntries)).Methods(http.MethodGet)

	return r
}

func (h *handler) require(next http.HandlerFunc) http.Handler {
	return h.authn.Require(next)
}

// --- auth -------------------------------------------------------------------

func (h *handler) authCallback(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(payload.Token) == "" {
		writeMessage(w, http.StatusBadRequest, "Token is required")
		return
	}

	u, cookie, err := h.app.Sessions.Callback(r.Context(), payload.Token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h.serviceError(w, err)
		return
	}

	http.SetCookie(w, cookie)
	h.recordAudit(r, u.ID, http.StatusOK)
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) authLogout(w http.ResponseWriter, r *http.Request) {
	sid := auth.SessionIDFrom(r.Context())
	cookie, err := h.app.Sessions.Logout(r.Context(), sid)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *handler) authUser(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())
	u, err := h.app.Users.Get(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// --- catalog ----------------------------------------------------------------

func (h *handler) categories(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Catalog.Categories(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(list))
}

func (h *handler) categoryBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.app.Catalog.CategoryBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) tools(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := catalogsvc.ListRequest{Type: catalog.ListType(q.Get("type"))}
	switch req.Type {
	case catalog.ListDefault, catalog.ListFree, catalog.ListPremium, catalog.ListPopular, catalog.ListRecent:
	default:
		writeMessage(w, http.StatusBadRequest, "Invalid listing type")
		return
	}

	var err error
	if req.Limit, err = intParam(q.Get("limit")); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	if req.Offset, err = intParam(q.Get("offset")); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	if raw := q.Get("category"); raw != "" {
		if id, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil {
			req.CategoryID = id
		} else {
			c, lookupErr := h.app.Catalog.CategoryBySlug(r.Context(), raw)
			if lookupErr != nil {
				h.serviceError(w, lookupErr)
				return
			}
			req.CategoryID = c.ID
		}
	}

	list, err := h.app.Catalog.Tools(r.Context(), req)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(list))
}

func (h *handler) searchTools(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		if errors.Is(err, catalogsvc.ErrEmptyQuery) {
			writeMessage(w, http.StatusBadRequest, "Search query is required")
			return
		}
		h.serviceError(w, err)
		return
	}
	metrics.RecordSearch()
	writeJSON(w, http.StatusOK, orEmpty(list))
}

func (h *handler) toolBySlug(w http.ResponseWriter, r *http.Request) {
	t, err := h.app.Catalog.ToolBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handler) popularTools(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	list, err := h.app.Catalog.PopularTools(r.Context(), limit)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(list))
}

// --- usage ------------------------------------------------------------------

func (h *handler) useTool(w http.ResponseWriter, r *http.Request) {
	toolID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var payload struct {
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record := usage.Usage{
		ToolID:    toolID,
		SessionID: auth.SessionIDFrom(r.Context()),
		Metadata:  payload.Metadata,
	}
	identity, authenticated := auth.IdentityFrom(r.Context())
	if authenticated {
		userID := identity.UserID
		record.UserID = &userID
	}

	recorded, err := h.app.Usage.Record(r.Context(), record)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	metrics.RecordToolUsage(strconv.FormatInt(toolID, 10), authenticated)
	h.recordAudit(r, identity.UserID, http.StatusOK)
	writeJSON(w, http.StatusOK, recorded)
}

func (h *handler) executeTool(w http.ResponseWriter, r *http.Request) {
	toolID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var payload struct {
		Input json.RawMessage `json:"input"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tool, err := h.app.Catalog.ToolByID(r.Context(), toolID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	categorySlug := ""
	if c, err := h.app.Catalog.CategoryByID(r.Context(), tool.CategoryID); err == nil {
		categorySlug = c.Slug
	}

	result, err := h.app.Execution.Execute(r.Context(), tool, categorySlug, payload.Input)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	metrics.RecordToolExecution(tool.Slug, result.Kind)
	identity, _ := auth.IdentityFrom(r.Context())
	h.recordAudit(r, identity.UserID, http.StatusOK)
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) toolStats(w http.ResponseWriter, r *http.Request) {
	toolID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	stats, err := h.app.Usage.Stats(r.Context(), toolID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) userUsage(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())
	list, err := h.app.Usage.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(list))
}

// --- reviews ----------------------------------------------------------------

func (h *handler) createReview(w http.ResponseWriter, r *http.Request) {
	toolID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var payload struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identity, _ := auth.IdentityFrom(r.Context())
	created, err := h.app.Reviews.Create(r.Context(), review.Review{
		UserID:  identity.UserID,
		ToolID:  toolID,
		Rating:  payload.Rating,
		Comment: payload.Comment,
	})
	if err != nil {
		h.serviceError(w, err)
		return
	}

	metrics.RecordReview()
	h.recordAudit(r, identity.UserID, http.StatusCreated)
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) listReviews(w http.ResponseWriter, r *http.Request) {
	toolID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.app.Reviews.ListForTool(r.Context(), toolID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(list))
}

// --- favorites --------------------------------------------------------------

func (h *handler) addFavorite(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ToolID int64 `json:"toolId"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identity, _ := auth.IdentityFrom(r.Context())
	created, err := h.app.Favorites.Add(r.Context(), identity.UserID, payload.ToolID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.recordAudit(r, identity.UserID, http.StatusCreated)
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	toolID, ok := h.pathID(w, r, "toolId")
	if !ok {
		return
	}
	identity, _ := auth.IdentityFrom(r.Context())
	if err := h.app.Favorites.Remove(r.Context(), identity.UserID, toolID); err != nil {
		h.serviceError(w, err)
		return
	}
	h.recordAudit(r, identity.UserID, http.StatusNoContent)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())
	list, err := h.app.Favorites.ListTools(r.Context(), identity.UserID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(list))
}

func (h *handler) checkFavorite(w http.ResponseWriter, r *http.Request) {
	toolID, ok := h.pathID(w, r, "toolId")
	if !ok {
		return
	}
	identity, _ := auth.IdentityFrom(r.Context())
	favorited, err := h.app.Favorites.IsFavorited(r.Context(), identity.UserID, toolID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isFavorited": favorited})
}

// --- AI tool requests -------------------------------------------------------

func (h *handler) createAIRequest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Query    string          `json:"query"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identity, _ := auth.IdentityFrom(r.Context())
	created, err := h.app.AIRequests.Create(r.Context(), airequest.Request{
		UserID:   identity.UserID,
		Query:    payload.Query,
		Metadata: payload.Metadata,
	})
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.recordAudit(r, identity.UserID, http.StatusCreated)
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) listAIRequests(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())
	list, err := h.app.AIRequests.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(list))
}

// --- audit ------------------------------------------------------------------

func (h *handler) auditEntries(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(h.audit.list(limit)))
}

// --- plumbing ---------------------------------------------------------------

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses the named path segment as a numeric id, writing a 400 on
// malformed input.
func (h *handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid tool ID")
		return 0, false
	}
	return id, true
}

// serviceError maps service and storage failures onto the API error
// taxonomy. Unexpected causes are logged, never echoed.
func (h *handler) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, storage.ErrDuplicateReview):
		writeMessage(w, http.StatusBadRequest, "You have already reviewed this tool")
	case errors.Is(err, reviewsvc.ErrInvalidRating),
		errors.Is(err, catalogsvc.ErrEmptyQuery),
		errors.Is(err, airequestsvc.ErrEmptyQuery):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		h.log.WithError(err).Error("request failed")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *handler) recordAudit(r *http.Request, userID string, status int) {
	h.audit.add(auditEntry{
		Time:       time.Now().UTC(),
		User:       userID,
		Path:       r.URL.Path,
		Method:     r.Method,
		Status:     status,
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
}

// intParam parses a non-negative numeric query parameter. Empty means unset.
func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %d", v)
	}
	return v, nil
}

// orEmpty keeps list payloads as [] instead of null.
func orEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
