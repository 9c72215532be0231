package stubcache

import (
	"context"
	"testing"
	"time"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/loader/inproc"
	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/amartyaa/workerplatform/internal/store/memstore"
	"github.com/stretchr/testify/require"
)

func noDefaults(ctx context.Context) (v1.PlatformDefaults, error) {
	return v1.PlatformDefaults{}, nil
}

func seedWorker(t *testing.T, s *memstore.Store, tenantID, workerID string, version int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Tenants().Put(ctx, tenantID, &v1.Tenant{ID: tenantID}))
	require.NoError(t, s.Workers().Put(ctx, tenantID, workerID, &v1.Worker{
		TenantID: tenantID,
		ID:       workerID,
		Metadata: v1.WorkerMetadata{Version: version},
	}))
	require.NoError(t, s.Bundles().Put(ctx, tenantID, workerID, version, &v1.Bundle{
		MainModule: "index.js",
		Modules:    map[string]string{"index.js": "new Response('hello')"},
		Version:    version,
		BuiltAt:    time.Time{},
	}))
}

func TestFetchColdStartsAndCaches(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	seedWorker(t, s, "acme", "api", 1)

	ldr := inproc.New()
	c := New(s.Tenants(), s.Workers(), s.Bundles(), ldr, noDefaults)

	stub, version, err := c.Fetch(ctx, "acme", "api")
	require.NoError(t, err)
	require.Equal(t, 1, version)
	require.NotNil(t, stub)

	stub2, version2, err := c.Fetch(ctx, "acme", "api")
	require.NoError(t, err)
	require.Equal(t, 1, version2)
	require.Same(t, stub, stub2)
}

func TestFetchMissingTenantOrWorker(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	ldr := inproc.New()
	c := New(s.Tenants(), s.Workers(), s.Bundles(), ldr, noDefaults)

	_, _, err := c.Fetch(ctx, "ghost", "api")
	require.Error(t, err)
	require.True(t, perr.Is(err, perr.KindNotFound))

	require.NoError(t, s.Tenants().Put(ctx, "acme", &v1.Tenant{ID: "acme"}))
	_, _, err = c.Fetch(ctx, "acme", "ghost")
	require.Error(t, err)
	require.True(t, perr.Is(err, perr.KindNotFound))
}

func TestInvalidateWorkerForcesColdStart(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	seedWorker(t, s, "acme", "api", 1)

	ldr := inproc.New()
	c := New(s.Tenants(), s.Workers(), s.Bundles(), ldr, noDefaults)

	_, _, err := c.Fetch(ctx, "acme", "api")
	require.NoError(t, err)

	c.InvalidateWorker("acme", "api")

	_, ok := c.entries[key("acme", "api")]
	require.False(t, ok)
}

func TestWorkerVersionBumpBypassesStaleCacheEntry(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	seedWorker(t, s, "acme", "api", 1)

	ldr := inproc.New()
	c := New(s.Tenants(), s.Workers(), s.Bundles(), ldr, noDefaults)

	_, v1Got, err := c.Fetch(ctx, "acme", "api")
	require.NoError(t, err)
	require.Equal(t, 1, v1Got)

	w, err := s.Workers().Get(ctx, "acme", "api")
	require.NoError(t, err)
	w.Metadata.Version = 2
	require.NoError(t, s.Workers().Put(ctx, "acme", "api", w))
	require.NoError(t, s.Bundles().Put(ctx, "acme", "api", 2, &v1.Bundle{
		MainModule: "index.js",
		Modules:    map[string]string{"index.js": "new Response('v2')"},
		Version:    2,
	}))

	_, v2Got, err := c.Fetch(ctx, "acme", "api")
	require.NoError(t, err)
	require.Equal(t, 2, v2Got)
}

func TestInvalidateTenantOnlyDropsThatTenantsEntries(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	seedWorker(t, s, "acme", "api", 1)
	seedWorker(t, s, "globex", "api", 1)

	ldr := inproc.New()
	c := New(s.Tenants(), s.Workers(), s.Bundles(), ldr, noDefaults)

	_, _, err := c.Fetch(ctx, "acme", "api")
	require.NoError(t, err)
	_, _, err = c.Fetch(ctx, "globex", "api")
	require.NoError(t, err)

	c.InvalidateTenant("acme")

	_, ok := c.entries[key("acme", "api")]
	require.False(t, ok)
	_, ok = c.entries[key("globex", "api")]
	require.True(t, ok)
}

func TestInvalidateAllClearsEveryEntry(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	seedWorker(t, s, "acme", "api", 1)

	ldr := inproc.New()
	c := New(s.Tenants(), s.Workers(), s.Bundles(), ldr, noDefaults)

	_, _, err := c.Fetch(ctx, "acme", "api")
	require.NoError(t, err)

	c.InvalidateAll()
	require.Empty(t, c.entries)
}
