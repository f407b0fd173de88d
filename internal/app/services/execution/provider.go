// Package execution hosts the tool execution provider. The HTTP layer is
// agnostic to the provider implementation; the default mock fabricates
// results locally the way the original client did.
package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/catalog"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

// Result kinds, keyed off the tool's category.
const (
	KindPDF     = "pdf"
	KindImage   = "image"
	KindText    = "text"
	KindCode    = "code"
	KindGeneric = "generic"
)

// Result is the typed outcome of a tool run.
type Result struct {
	Kind        string          `json:"kind"`
	ToolID      int64           `json:"toolId"`
	DownloadURL string          `json:"downloadUrl,omitempty"`
	FileName    string          `json:"fileName,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Text        string          `json:"text,omitempty"`
	Code        string          `json:"code,omitempty"`
	Language    string          `json:"language,omitempty"`
	Output      json.RawMessage `json:"output,omitempty"`
	Duration    time.Duration   `json:"-"`
	DurationMS  int64           `json:"durationMs"`
}

// Provider runs a tool against caller input and produces a typed result.
type Provider interface {
	Execute(ctx context.Context, tool catalog.Tool, categorySlug string, input json.RawMessage) (Result, error)
}

// MockProvider fabricates plausible results without calling any backend.
type MockProvider struct {
	delay time.Duration
	log   *logger.Logger
}

// NewMockProvider constructs the default provider. delay simulates backend
// latency and may be zero.
func NewMockProvider(delay time.Duration, log *logger.Logger) *MockProvider {
	if log == nil {
		log = logger.NewDefault("execution")
	}
	return &MockProvider{delay: delay, log: log}
}

// Execute implements Provider. The input payload is accepted but unused by
// the mock.
func (p *MockProvider) Execute(ctx context.Context, tool catalog.Tool, categorySlug string, _ json.RawMessage) (Result, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}

	result := fabricate(tool, categorySlug)
	result.ToolID = tool.ID
	result.Duration = p.delay
	result.DurationMS = p.delay.Milliseconds()

	p.log.WithField("tool", tool.Slug).WithField("kind", result.Kind).Debug("tool executed")
	return result, nil
}

// fabricate picks the result shape from the category slug, mirroring the
// original mock's substring heuristics.
func fabricate(tool catalog.Tool, categorySlug string) Result {
	slug := strings.ToLower(categorySlug)
	switch {
	case strings.Contains(slug, "pdf"):
		return Result{
			Kind:        KindPDF,
			DownloadURL: fmt.Sprintf("/downloads/%s.pdf", uuid.NewString()),
			FileName:    tool.Slug + ".pdf",
		}
	case strings.Contains(slug, "image"):
		return Result{
			Kind:     KindImage,
			ImageURL: fmt.Sprintf("/generated/%s.png", uuid.NewString()),
		}
	case strings.Contains(slug, "ai"), strings.Contains(slug, "text"):
		return Result{
			Kind: KindText,
			Text: fmt.Sprintf("Generated output from %s.", tool.Name),
		}
	case strings.Contains(slug, "code"), strings.Contains(slug, "developer"):
		return Result{
			Kind:     KindCode,
			Code:     fmt.Sprintf("// output of %s\n", tool.Slug),
			Language: "javascript",
		}
	default:
		return Result{
			Kind:   KindGeneric,
			Output: json.RawMessage(`{"status":"ok"}`),
		}
	}
}
