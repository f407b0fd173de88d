package airequests_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/airequest"
	airequestsvc "github.com/ahan30/mindsaidurai-tools/internal/app/services/airequests"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage/memory"
)

func TestCreateRequiresQuery(t *testing.T) {
	svc := airequestsvc.New(memory.New(), nil)

	_, err := svc.Create(context.Background(), airequest.Request{UserID: "u1", Query: "   "})
	if !errors.Is(err, airequestsvc.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestCreateStartsPending(t *testing.T) {
	svc := airequestsvc.New(memory.New(), nil)

	created, err := svc.Create(context.Background(), airequest.Request{
		UserID: "u1",
		Query:  "  summarize contracts  ",
		Status: airequest.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != airequest.StatusPending {
		t.Fatalf("expected pending, got %q", created.Status)
	}
	if created.Query != "summarize contracts" {
		t.Fatalf("query not trimmed: %q", created.Query)
	}
	if created.RequestedAt.IsZero() {
		t.Fatal("requested_at not set")
	}
}

func TestTransitionSetsCompletedAt(t *testing.T) {
	svc := airequestsvc.New(memory.New(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, airequest.Request{UserID: "u1", Query: "build a tool"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	processing, err := svc.Transition(ctx, created.ID, airequest.StatusProcessing, 0)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if processing.CompletedAt != nil {
		t.Fatal("processing request should not be completed")
	}

	completed, err := svc.Transition(ctx, created.ID, airequest.StatusCompleted, 42)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if completed.CompletedAt == nil {
		t.Fatal("completed_at not set")
	}
	if completed.GeneratedToolID != 42 {
		t.Fatalf("generated tool id not recorded: %d", completed.GeneratedToolID)
	}
}

func TestTransitionValidatesStatus(t *testing.T) {
	svc := airequestsvc.New(memory.New(), nil)

	if _, err := svc.Transition(context.Background(), 1, airequest.Status("bogus"), 0); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if _, err := svc.Transition(context.Background(), 99, airequest.StatusFailed, 0); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown request, got %v", err)
	}
}

func TestListForUser(t *testing.T) {
	svc := airequestsvc.New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, airequest.Request{UserID: "u1", Query: "first"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, airequest.Request{UserID: "u2", Query: "other"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, airequest.Request{UserID: "u1", Query: "second"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := svc.ListForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(list))
	}
	if list[0].Query != "second" {
		t.Fatalf("expected newest first, got %q", list[0].Query)
	}
}
