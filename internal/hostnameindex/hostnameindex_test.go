package hostnameindex

import (
	"context"
	"testing"

	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/amartyaa/workerplatform/internal/store/memstore"
	"github.com/stretchr/testify/require"
)

func TestAddAndResolve(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	idx := New(s.Hostnames())

	bound, err := idx.Add(ctx, "acme", "api", []string{"app.acme.com"})
	require.NoError(t, err)
	require.Equal(t, []string{"app.acme.com"}, bound)

	route, err := idx.Resolve(ctx, "app.acme.com")
	require.NoError(t, err)
	require.Equal(t, "acme", route.TenantID)
	require.Equal(t, "api", route.WorkerID)
}

func TestAddConflictKeepsFirstBinding(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	idx := New(s.Hostnames())

	_, err := idx.Add(ctx, "acme", "api", []string{"app.acme.com"})
	require.NoError(t, err)

	_, err = idx.Add(ctx, "acme", "api2", []string{"app.acme.com"})
	require.Error(t, err)
	require.True(t, perr.Is(err, perr.KindConflict))

	route, err := idx.Resolve(ctx, "app.acme.com")
	require.NoError(t, err)
	require.Equal(t, "api", route.WorkerID)
}

func TestAddIsIdempotentForSameOwner(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	idx := New(s.Hostnames())

	_, err := idx.Add(ctx, "acme", "api", []string{"app.acme.com"})
	require.NoError(t, err)
	_, err = idx.Add(ctx, "acme", "api", []string{"app.acme.com"})
	require.NoError(t, err)
}

func TestRemoveOnlyAffectsOwnHostnames(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	idx := New(s.Hostnames())

	_, err := idx.Add(ctx, "acme", "api", []string{"app.acme.com"})
	require.NoError(t, err)

	require.NoError(t, idx.Remove(ctx, "acme", "other", []string{"app.acme.com"}))
	route, err := idx.Resolve(ctx, "app.acme.com")
	require.NoError(t, err)
	require.NotNil(t, route)

	require.NoError(t, idx.Remove(ctx, "acme", "api", []string{"app.acme.com"}))
	route, err = idx.Resolve(ctx, "app.acme.com")
	require.NoError(t, err)
	require.Nil(t, route)
}

func TestDeleteByWorker(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	idx := New(s.Hostnames())

	_, err := idx.Add(ctx, "acme", "api", []string{"a.acme.com", "b.acme.com"})
	require.NoError(t, err)

	n, err := idx.DeleteByWorker(ctx, "acme", "api")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	hosts, err := idx.ListByWorker(ctx, "acme", "api")
	require.NoError(t, err)
	require.Empty(t, hosts)
}
