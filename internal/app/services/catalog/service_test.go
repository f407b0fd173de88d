package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/ahan30/mindsaidurai-tools/internal/app/domain/catalog"
	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/usage"
	catalogsvc "github.com/ahan30/mindsaidurai-tools/internal/app/services/catalog"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage/memory"
)

func newService(t *testing.T) (*catalogsvc.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return catalogsvc.New(store, store, nil), store
}

func seedCatalog(t *testing.T, svc *catalogsvc.Service) (domain.Category, domain.Tool, domain.Tool) {
	t.Helper()
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, domain.Category{Name: "PDF Tools", Slug: "pdf-tools"})
	require.NoError(t, err)

	free, err := svc.CreateTool(ctx, domain.Tool{Name: "PDF Merger", Slug: "pdf-merger", CategoryID: cat.ID, IsActive: true})
	require.NoError(t, err)

	premium, err := svc.CreateTool(ctx, domain.Tool{Name: "PDF Signer", Slug: "pdf-signer", CategoryID: cat.ID, IsPremium: true, IsActive: true})
	require.NoError(t, err)

	return cat, free, premium
}

func TestToolsDispatchByType(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	_, free, premium := seedCatalog(t, svc)

	_, err := store.RecordUsage(ctx, usage.Usage{ToolID: premium.ID, SessionID: "s"})
	require.NoError(t, err)

	freeList, err := svc.Tools(ctx, catalogsvc.ListRequest{Type: domain.ListFree})
	require.NoError(t, err)
	require.Len(t, freeList, 1)
	require.Equal(t, free.Slug, freeList[0].Slug)

	premiumList, err := svc.Tools(ctx, catalogsvc.ListRequest{Type: domain.ListPremium})
	require.NoError(t, err)
	require.Len(t, premiumList, 1)
	require.Equal(t, premium.Slug, premiumList[0].Slug)

	popular, err := svc.Tools(ctx, catalogsvc.ListRequest{Type: domain.ListPopular, Limit: 1})
	require.NoError(t, err)
	require.Len(t, popular, 1)
	require.Equal(t, premium.Slug, popular[0].Slug)

	all, err := svc.Tools(ctx, catalogsvc.ListRequest{Type: domain.ListDefault})
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = svc.Tools(ctx, catalogsvc.ListRequest{Type: domain.ListType("bogus")})
	require.Error(t, err)
}

func TestToolsFiltersByCategory(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	cat, _, _ := seedCatalog(t, svc)

	other, err := svc.CreateCategory(ctx, domain.Category{Name: "Other", Slug: "other"})
	require.NoError(t, err)
	_, err = svc.CreateTool(ctx, domain.Tool{Name: "Other Tool", Slug: "other-tool", CategoryID: other.ID, IsActive: true})
	require.NoError(t, err)

	tools, err := svc.Tools(ctx, catalogsvc.ListRequest{Type: domain.ListDefault, CategoryID: cat.ID})
	require.NoError(t, err)
	require.Len(t, tools, 2)
	for _, tool := range tools {
		require.Equal(t, cat.ID, tool.CategoryID)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	svc, _ := newService(t)
	seedCatalog(t, svc)

	_, err := svc.Search(context.Background(), "   ")
	require.ErrorIs(t, err, catalogsvc.ErrEmptyQuery)

	tools, err := svc.Search(context.Background(), "merger")
	require.NoError(t, err)
	require.Len(t, tools, 1)
	require.Equal(t, "pdf-merger", tools[0].Slug)
}

func TestToolBySlugNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.ToolBySlug(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateToolValidatesCategory(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateTool(context.Background(), domain.Tool{Name: "Orphan", Slug: "orphan", CategoryID: 999})
	require.Error(t, err)

	_, err = svc.CreateTool(context.Background(), domain.Tool{Slug: "unnamed", CategoryID: 1})
	require.Error(t, err)
}
