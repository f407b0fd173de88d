package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	app "github.com/ahan30/mindsaidurai-tools/internal/app"
	"github.com/ahan30/mindsaidurai-tools/internal/app/auth"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/catalog"
)

const testSecret = "test-secret-for-handler-tests"

type fixture struct {
	handler  http.Handler
	app      *app.Application
	pdfTool  catalog.Tool
	aiTool   catalog.Tool
	category catalog.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	verifier, err := auth.NewHMACVerifier(testSecret, "", "")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	application, err := app.New(app.Stores{}, app.Options{Verifier: verifier}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	ctx := context.Background()
	pdfCat, err := application.Catalog.CreateCategory(ctx, catalog.Category{Name: "PDF Tools", Slug: "pdf-tools", Icon: "file", Color: "#f00"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	aiCat, err := application.Catalog.CreateCategory(ctx, catalog.Category{Name: "AI Tools", Slug: "ai-tools", Icon: "bot", Color: "#0f0"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	pdfTool, err := application.Catalog.CreateTool(ctx, catalog.Tool{
		Name: "PDF Merger", Slug: "pdf-merger", CategoryID: pdfCat.ID,
		Description: "Merge PDF documents", ShortDescription: "Merge PDFs",
		Tags: []string{"pdf"}, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create tool: %v", err)
	}
	aiTool, err := application.Catalog.CreateTool(ctx, catalog.Tool{
		Name: "Text Summarizer", Slug: "text-summarizer", CategoryID: aiCat.ID,
		Description: "Summarize long text", ShortDescription: "Summaries",
		IsPremium: true, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create tool: %v", err)
	}

	return &fixture{
		handler:  NewHandler(application, nil),
		app:      application,
		pdfTool:  pdfTool,
		aiTool:   aiTool,
		category: pdfCat,
	}
}

func (f *fixture) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	f.handler.ServeHTTP(resp, req)
	return resp
}

func (f *fixture) login(t *testing.T, subject string) *http.Cookie {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":        subject,
		"email":      subject + "@example.com",
		"first_name": "Test",
		"last_name":  "User",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	resp := f.do(http.MethodPost, "/api/auth/callback", map[string]string{"token": token})
	if resp.Code != http.StatusOK {
		t.Fatalf("callback: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	for _, c := range resp.Result().Cookies() {
		if c.Name == "toolshub_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("callback did not set a session cookie")
	return nil
}

func decodeBody[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
	return out
}

func TestAuthFlow(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodPost, "/api/auth/callback", map[string]string{"token": "garbage"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", resp.Code)
	}

	resp = f.do(http.MethodGet, "/api/auth/user", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("no session: expected 401, got %d", resp.Code)
	}

	cookie := f.login(t, "user-1")
	resp = f.do(http.MethodGet, "/api/auth/user", nil, cookie)
	if resp.Code != http.StatusOK {
		t.Fatalf("auth user: expected 200, got %d", resp.Code)
	}
	u := decodeBody[map[string]any](t, resp)
	if u["id"] != "user-1" || u["email"] != "user-1@example.com" {
		t.Fatalf("unexpected user payload: %v", u)
	}
	if u["plan"] != "free" {
		t.Fatalf("expected default free plan, got %v", u["plan"])
	}

	resp = f.do(http.MethodPost, "/api/auth/logout", nil, cookie)
	if resp.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.Code)
	}
	resp = f.do(http.MethodGet, "/api/auth/user", nil, cookie)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", resp.Code)
	}
}

func TestCategories(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodGet, "/api/categories", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("categories: expected 200, got %d", resp.Code)
	}
	list := decodeBody[[]map[string]any](t, resp)
	if len(list) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(list))
	}
	// ordered by name
	if list[0]["slug"] != "ai-tools" || list[1]["slug"] != "pdf-tools" {
		t.Fatalf("unexpected order: %v", list)
	}
	if list[1]["toolCount"].(float64) != 1 {
		t.Fatalf("expected tool_count 1, got %v", list[1]["toolCount"])
	}

	resp = f.do(http.MethodGet, "/api/categories/pdf-tools", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("category by slug: expected 200, got %d", resp.Code)
	}
	resp = f.do(http.MethodGet, "/api/categories/nope", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unknown category: expected 404, got %d", resp.Code)
	}
}

func TestToolListings(t *testing.T) {
	f := newFixture(t)

	// bump the premium tool so ordering by usage is observable
	for i := 0; i < 3; i++ {
		resp := f.do(http.MethodPost, fmt.Sprintf("/api/tools/%d/use", f.aiTool.ID), nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("use: expected 200, got %d", resp.Code)
		}
	}

	resp := f.do(http.MethodGet, "/api/tools", nil)
	list := decodeBody[[]map[string]any](t, resp)
	if len(list) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(list))
	}
	if list[0]["slug"] != "text-summarizer" {
		t.Fatalf("expected most used tool first, got %v", list[0]["slug"])
	}

	resp = f.do(http.MethodGet, "/api/tools?type=free", nil)
	list = decodeBody[[]map[string]any](t, resp)
	if len(list) != 1 || list[0]["slug"] != "pdf-merger" {
		t.Fatalf("free listing wrong: %v", list)
	}

	resp = f.do(http.MethodGet, "/api/tools?type=premium", nil)
	list = decodeBody[[]map[string]any](t, resp)
	if len(list) != 1 || list[0]["slug"] != "text-summarizer" {
		t.Fatalf("premium listing wrong: %v", list)
	}

	resp = f.do(http.MethodGet, "/api/tools?category="+fmt.Sprint(f.category.ID), nil)
	list = decodeBody[[]map[string]any](t, resp)
	if len(list) != 1 || list[0]["slug"] != "pdf-merger" {
		t.Fatalf("category filter wrong: %v", list)
	}

	resp = f.do(http.MethodGet, "/api/tools?category=pdf-tools", nil)
	list = decodeBody[[]map[string]any](t, resp)
	if len(list) != 1 || list[0]["slug"] != "pdf-merger" {
		t.Fatalf("category slug filter wrong: %v", list)
	}

	resp = f.do(http.MethodGet, "/api/tools?limit=abc", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: expected 400, got %d", resp.Code)
	}
	resp = f.do(http.MethodGet, "/api/tools?type=bogus", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad type: expected 400, got %d", resp.Code)
	}

	resp = f.do(http.MethodGet, "/api/tools/pdf-merger", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("tool by slug: expected 200, got %d", resp.Code)
	}
	resp = f.do(http.MethodGet, "/api/tools/missing", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unknown tool: expected 404, got %d", resp.Code)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodGet, "/api/tools/search", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("missing q: expected 400, got %d", resp.Code)
	}

	resp = f.do(http.MethodGet, "/api/tools/search?q=summarize", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", resp.Code)
	}
	list := decodeBody[[]map[string]any](t, resp)
	if len(list) != 1 || list[0]["slug"] != "text-summarizer" {
		t.Fatalf("search results wrong: %v", list)
	}

	resp = f.do(http.MethodGet, "/api/tools/search?q=zzz-no-match", nil)
	list = decodeBody[[]map[string]any](t, resp)
	if len(list) != 0 {
		t.Fatalf("expected empty results, got %v", list)
	}
	if strings.TrimSpace(resp.Body.String()) != "[]" {
		t.Fatalf("expected [] body, got %q", resp.Body.String())
	}
}

func TestUseToolAnonymous(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodPost, fmt.Sprintf("/api/tools/%d/use", f.pdfTool.ID), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("use: expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"userId":null`) {
		t.Fatalf("anonymous usage should carry null userId: %s", resp.Body.String())
	}
	record := decodeBody[map[string]any](t, resp)
	if record["sessionId"] == "" {
		t.Fatal("expected a generated session id")
	}

	resp = f.do(http.MethodGet, "/api/tools/pdf-merger", nil)
	tool := decodeBody[map[string]any](t, resp)
	if tool["usageCount"].(float64) != 1 {
		t.Fatalf("expected usage count 1, got %v", tool["usageCount"])
	}

	resp = f.do(http.MethodPost, "/api/tools/999/use", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unknown tool: expected 404, got %d", resp.Code)
	}
	resp = f.do(http.MethodPost, "/api/tools/abc/use", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", resp.Code)
	}
}

func TestUseToolAuthenticated(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t, "user-7")

	resp := f.do(http.MethodPost, fmt.Sprintf("/api/tools/%d/use", f.pdfTool.ID), map[string]any{"metadata": map[string]string{"source": "test"}}, cookie)
	if resp.Code != http.StatusOK {
		t.Fatalf("use: expected 200, got %d", resp.Code)
	}
	record := decodeBody[map[string]any](t, resp)
	if record["userId"] != "user-7" {
		t.Fatalf("expected userId user-7, got %v", record["userId"])
	}

	resp = f.do(http.MethodGet, "/api/user/usage", nil, cookie)
	if resp.Code != http.StatusOK {
		t.Fatalf("user usage: expected 200, got %d", resp.Code)
	}
	list := decodeBody[[]map[string]any](t, resp)
	if len(list) != 1 {
		t.Fatalf("expected 1 usage row, got %d", len(list))
	}

	resp = f.do(http.MethodGet, fmt.Sprintf("/api/tools/%d/stats", f.pdfTool.ID), nil)
	stats := decodeBody[map[string]any](t, resp)
	if stats["count"].(float64) != 1 || stats["uniqueUsers"].(float64) != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestFavorites(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodPost, "/api/favorites", map[string]any{"toolId": f.pdfTool.ID})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous favorite: expected 401, got %d", resp.Code)
	}

	cookie := f.login(t, "user-2")

	resp = f.do(http.MethodPost, "/api/favorites", map[string]any{"toolId": int64(999)}, cookie)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unknown tool: expected 404, got %d", resp.Code)
	}

	resp = f.do(http.MethodPost, "/api/favorites", map[string]any{"toolId": f.pdfTool.ID}, cookie)
	if resp.Code != http.StatusCreated {
		t.Fatalf("add favorite: expected 201, got %d", resp.Code)
	}

	resp = f.do(http.MethodGet, fmt.Sprintf("/api/favorites/%d/check", f.pdfTool.ID), nil, cookie)
	check := decodeBody[map[string]bool](t, resp)
	if !check["isFavorited"] {
		t.Fatal("expected isFavorited true")
	}

	resp = f.do(http.MethodGet, "/api/favorites", nil, cookie)
	list := decodeBody[[]map[string]any](t, resp)
	if len(list) != 1 || list[0]["slug"] != "pdf-merger" {
		t.Fatalf("favorites list wrong: %v", list)
	}

	resp = f.do(http.MethodDelete, fmt.Sprintf("/api/favorites/%d", f.pdfTool.ID), nil, cookie)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("remove favorite: expected 204, got %d", resp.Code)
	}
	resp = f.do(http.MethodGet, fmt.Sprintf("/api/favorites/%d/check", f.pdfTool.ID), nil, cookie)
	check = decodeBody[map[string]bool](t, resp)
	if check["isFavorited"] {
		t.Fatal("expected isFavorited false after removal")
	}
}

func TestReviews(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t, "user-3")
	path := fmt.Sprintf("/api/tools/%d/reviews", f.pdfTool.ID)

	resp := f.do(http.MethodPost, path, map[string]any{"rating": 6, "comment": "!"}, cookie)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("rating out of range: expected 400, got %d", resp.Code)
	}

	resp = f.do(http.MethodPost, path, map[string]any{"rating": 4, "comment": "solid"}, cookie)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create review: expected 201, got %d (%s)", resp.Code, resp.Body.String())
	}

	resp = f.do(http.MethodPost, path, map[string]any{"rating": 5, "comment": "again"}, cookie)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("duplicate review: expected 400, got %d", resp.Code)
	}

	other := f.login(t, "user-4")
	resp = f.do(http.MethodPost, path, map[string]any{"rating": 5, "comment": "great"}, other)
	if resp.Code != http.StatusCreated {
		t.Fatalf("second reviewer: expected 201, got %d", resp.Code)
	}

	resp = f.do(http.MethodGet, "/api/tools/pdf-merger", nil)
	tool := decodeBody[map[string]any](t, resp)
	if tool["reviewCount"].(float64) != 2 {
		t.Fatalf("expected review count 2, got %v", tool["reviewCount"])
	}
	// round(avg(4,5)) = 5 with half-up rounding
	if tool["rating"].(float64) != 5 {
		t.Fatalf("expected rounded rating 5, got %v", tool["rating"])
	}

	resp = f.do(http.MethodGet, path, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list reviews: expected 200, got %d", resp.Code)
	}
	list := decodeBody[[]map[string]any](t, resp)
	if len(list) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(list))
	}
}

func TestAIRequests(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodPost, "/api/ai-tools/request", map[string]any{"query": "make me a tool"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous request: expected 401, got %d", resp.Code)
	}

	cookie := f.login(t, "user-5")

	resp = f.do(http.MethodPost, "/api/ai-tools/request", map[string]any{"query": "   "}, cookie)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("blank query: expected 400, got %d", resp.Code)
	}

	resp = f.do(http.MethodPost, "/api/ai-tools/request", map[string]any{"query": "invoice generator"}, cookie)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create request: expected 201, got %d", resp.Code)
	}
	created := decodeBody[map[string]any](t, resp)
	if created["status"] != "pending" {
		t.Fatalf("expected pending status, got %v", created["status"])
	}

	resp = f.do(http.MethodGet, "/api/ai-tools/requests", nil, cookie)
	list := decodeBody[[]map[string]any](t, resp)
	if len(list) != 1 || list[0]["query"] != "invoice generator" {
		t.Fatalf("requests list wrong: %v", list)
	}
}

func TestExecuteTool(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodPost, fmt.Sprintf("/api/tools/%d/execute", f.pdfTool.ID), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("execute: expected 200, got %d", resp.Code)
	}
	result := decodeBody[map[string]any](t, resp)
	if result["kind"] != "pdf" {
		t.Fatalf("expected pdf result for pdf-tools category, got %v", result["kind"])
	}
	if result["downloadUrl"] == "" {
		t.Fatal("expected a download url")
	}

	resp = f.do(http.MethodPost, fmt.Sprintf("/api/tools/%d/execute", f.aiTool.ID), nil)
	result = decodeBody[map[string]any](t, resp)
	if result["kind"] != "text" {
		t.Fatalf("expected text result for ai-tools category, got %v", result["kind"])
	}

	resp = f.do(http.MethodPost, "/api/tools/999/execute", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unknown tool: expected 404, got %d", resp.Code)
	}
}

func TestPopularAnalytics(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 2; i++ {
		f.do(http.MethodPost, fmt.Sprintf("/api/tools/%d/use", f.pdfTool.ID), nil)
	}
	f.do(http.MethodPost, fmt.Sprintf("/api/tools/%d/use", f.aiTool.ID), nil)

	resp := f.do(http.MethodGet, "/api/analytics/popular-tools?limit=1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("popular: expected 200, got %d", resp.Code)
	}
	list := decodeBody[[]map[string]any](t, resp)
	if len(list) != 1 || list[0]["slug"] != "pdf-merger" {
		t.Fatalf("popular list wrong: %v", list)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp := f.do(http.MethodGet, "/healthz", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.Code)
	}
}

func TestToolListingRejectsNegativePaging(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{
		"/api/tools?offset=-1",
		"/api/tools?limit=-5",
		"/api/analytics/popular-tools?limit=-1",
	} {
		resp := f.do(http.MethodGet, path, nil)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d (%s)", path, resp.Code, resp.Body.String())
		}
	}

	resp := f.do(http.MethodGet, "/api/tools?offset=0&limit=1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("valid paging: expected 200, got %d", resp.Code)
	}
}

func TestAuditEndpoint(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodGet, "/api/audit", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous audit read: expected 401, got %d", resp.Code)
	}

	cookie := f.login(t, "auditor")
	f.do(http.MethodPost, fmt.Sprintf("/api/tools/%d/use", f.pdfTool.ID), nil, cookie)
	f.do(http.MethodPost, fmt.Sprintf("/api/tools/%d/use", f.aiTool.ID), nil, cookie)

	resp = f.do(http.MethodGet, "/api/audit", nil, cookie)
	if resp.Code != http.StatusOK {
		t.Fatalf("audit read: expected 200, got %d", resp.Code)
	}
	entries := decodeBody[[]map[string]any](t, resp)
	// Login callback plus two usages.
	if len(entries) != 3 {
		t.Fatalf("expected 3 audit entries, got %d: %v", len(entries), entries)
	}
	last := entries[len(entries)-1]
	if last["user"] != "auditor" || last["method"] != "POST" {
		t.Fatalf("unexpected audit entry: %v", last)
	}

	resp = f.do(http.MethodGet, "/api/audit?limit=1", nil, cookie)
	if got := decodeBody[[]map[string]any](t, resp); len(got) != 1 {
		t.Fatalf("expected limited snapshot of 1, got %d", len(got))
	}

	resp = f.do(http.MethodGet, "/api/audit?limit=-1", nil, cookie)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("negative limit: expected 400, got %d", resp.Code)
	}
}
