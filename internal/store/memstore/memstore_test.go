package memstore

import (
	"context"
	"testing"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/store"
	"github.com/stretchr/testify/require"
)

func TestTenantCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()
	ts := s.Tenants()

	got, err := ts.Get(ctx, "acme")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, ts.Put(ctx, "acme", &v1.Tenant{ID: "acme"}))
	got, err = ts.Get(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, "acme", got.ID)

	require.NoError(t, ts.Delete(ctx, "acme"))
	got, err = ts.Get(ctx, "acme")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestTenantListPagination(t *testing.T) {
	ctx := context.Background()
	s := New()
	ts := s.Tenants()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, ts.Put(ctx, id, &v1.Tenant{ID: id}))
	}

	page1, err := ts.List(ctx, store.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	require.NotEmpty(t, page1.Cursor)

	page2, err := ts.List(ctx, store.ListOptions{Limit: 2, Cursor: page1.Cursor})
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	require.NotEmpty(t, page2.Cursor)

	page3, err := ts.List(ctx, store.ListOptions{Limit: 2, Cursor: page2.Cursor})
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	require.Empty(t, page3.Cursor)
}

func TestBundleFingerprintTTL(t *testing.T) {
	ctx := context.Background()
	s := New()
	bs := s.Bundles()
	require.NoError(t, bs.PutByFingerprint(ctx, "abc123", &v1.Bundle{MainModule: "x"}, 0))
	got, err := bs.GetByFingerprint(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "x", got.MainModule)
}

func TestWorkerDeleteAllAlsoResetsCursors(t *testing.T) {
	ctx := context.Background()
	s := New()
	ws := s.Workers()
	require.NoError(t, ws.Put(ctx, "acme", "w1", &v1.Worker{TenantID: "acme", ID: "w1"}))
	_, err := ws.List(ctx, "acme", store.ListOptions{})
	require.NoError(t, err)
	require.Contains(t, s.workerCursors, "acme")

	n, err := ws.DeleteAll(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NotContains(t, s.workerCursors, "acme")

	list, err := ws.List(ctx, "acme", store.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, list.Items)
}
