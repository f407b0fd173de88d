package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/catalog"
)

func TestMockProviderKinds(t *testing.T) {
	p := NewMockProvider(0, nil)
	tool := catalog.Tool{ID: 7, Name: "Widget", Slug: "widget"}

	cases := []struct {
		categorySlug string
		wantKind     string
	}{
		{"pdf-tools", KindPDF},
		{"image-tools", KindImage},
		{"ai-tools", KindText},
		{"text-utilities", KindText},
		{"developer-tools", KindCode},
		{"code-helpers", KindCode},
		{"misc", KindGeneric},
	}

	for _, tc := range cases {
		result, err := p.Execute(context.Background(), tool, tc.categorySlug, nil)
		if err != nil {
			t.Fatalf("%s: execute: %v", tc.categorySlug, err)
		}
		if result.Kind != tc.wantKind {
			t.Fatalf("%s: expected kind %s, got %s", tc.categorySlug, tc.wantKind, result.Kind)
		}
		if result.ToolID != tool.ID {
			t.Fatalf("%s: tool id not set", tc.categorySlug)
		}
	}
}

func TestMockProviderResultShape(t *testing.T) {
	p := NewMockProvider(0, nil)
	tool := catalog.Tool{ID: 1, Name: "Merger", Slug: "pdf-merger"}

	result, err := p.Execute(context.Background(), tool, "pdf-tools", nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.DownloadURL == "" || result.FileName != "pdf-merger.pdf" {
		t.Fatalf("unexpected pdf result: %+v", result)
	}
}

func TestMockProviderHonorsContext(t *testing.T) {
	p := NewMockProvider(time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Execute(ctx, catalog.Tool{ID: 1}, "misc", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
