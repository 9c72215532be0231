package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/bundler/simple"
	"github.com/amartyaa/workerplatform/internal/cache"
	"github.com/amartyaa/workerplatform/internal/loader/inproc"
	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/amartyaa/workerplatform/internal/store"
	"github.com/amartyaa/workerplatform/internal/store/memstore"
)

func newTestPlatform(t *testing.T) *Platform {
	t.Helper()
	s := memstore.New()
	bc := cache.New(s.Bundles(), simple.New())
	return New(Deps{
		Log:         logr.Discard(),
		Tenants:     s.Tenants(),
		Workers:     s.Workers(),
		Bundles:     s.Bundles(),
		Hostnames:   s.Hostnames(),
		Templates:   s.Templates(),
		Defaults:    s.Defaults(),
		Outbound:    s.OutboundWorkers(),
		Tail:        s.TailWorkers(),
		BundleCache: bc,
		Loader:      inproc.New(),
	})
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	buf := make([]byte, 4096)
	n, _ := resp.Body.Read(buf)
	return string(buf[:n])
}

// Scenario 1: create-then-fetch.
func TestCreateThenFetch(t *testing.T) {
	ctx := context.Background()
	p := newTestPlatform(t)

	_, err := p.CreateTenant(ctx, "acme", v1.ConfigPartial{})
	require.NoError(t, err)

	files := map[string]string{
		"src/index.ts": "export default{fetch(){return new Response('hi')}}",
		"package.json": `{"main":"src/index.ts"}`,
	}
	w, err := p.CreateWorker(ctx, "acme", "api", v1.ConfigPartial{}, files, nil, v1.BuildOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, w.Metadata.Version)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := p.Fetch(ctx, "acme", "api", "", req)
	require.NoError(t, err)
	require.Equal(t, "hi", readBody(t, resp))
}

// Scenario 2: update bumps version and invalidates cache.
func TestUpdateBumpsVersionAndInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	p := newTestPlatform(t)

	_, err := p.CreateTenant(ctx, "acme", v1.ConfigPartial{})
	require.NoError(t, err)

	files := map[string]string{
		"src/index.ts": "export default{fetch(){return new Response('hi')}}",
		"package.json": `{"main":"src/index.ts"}`,
	}
	_, err = p.CreateWorker(ctx, "acme", "api", v1.ConfigPartial{}, files, nil, v1.BuildOptions{})
	require.NoError(t, err)

	updated := map[string]string{
		"src/index.ts": "export default{fetch(){return new Response('ho')}}",
		"package.json": `{"main":"src/index.ts"}`,
	}
	w, err := p.UpdateWorker(ctx, "acme", "api", v1.ConfigPartial{}, updated, v1.BuildOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, w.Metadata.Version)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := p.Fetch(ctx, "acme", "api", "", req)
	require.NoError(t, err)
	require.Equal(t, "ho", readBody(t, resp))

	bundle, err := p.bundles.Get(ctx, "acme", "api", 2)
	require.NoError(t, err)
	require.NotNil(t, bundle)
}

// Scenario 4: hostname conflict keeps the first binding.
func TestHostnameConflictKeepsFirstBinding(t *testing.T) {
	ctx := context.Background()
	p := newTestPlatform(t)

	_, err := p.CreateTenant(ctx, "acme", v1.ConfigPartial{})
	require.NoError(t, err)

	files := map[string]string{
		"src/index.ts": "export default{fetch(){return new Response('one')}}",
		"package.json": `{"main":"src/index.ts"}`,
	}
	_, err = p.CreateWorker(ctx, "acme", "api", v1.ConfigPartial{}, files, []string{"app.acme.com"}, v1.BuildOptions{})
	require.NoError(t, err)

	files2 := map[string]string{
		"src/index.ts": "export default{fetch(){return new Response('two')}}",
		"package.json": `{"main":"src/index.ts"}`,
	}
	_, err = p.CreateWorker(ctx, "acme", "api2", v1.ConfigPartial{}, files2, []string{"app.acme.com"}, v1.BuildOptions{})
	require.Error(t, err)
	require.True(t, perr.Is(err, perr.KindConflict))

	route, err := p.hostnameIdx.Resolve(ctx, "app.acme.com")
	require.NoError(t, err)
	require.Equal(t, "api", route.WorkerID)
}

// Scenario 5: template interpolation.
func TestTemplateInterpolation(t *testing.T) {
	ctx := context.Background()
	p := newTestPlatform(t)

	_, err := p.CreateTenant(ctx, "acme", v1.ConfigPartial{})
	require.NoError(t, err)

	_, err = p.RegisterTemplate(ctx, "tpl", "A Template", "", map[string]string{
		"src/index.ts": "const x={{v}};",
	}, []v1.Slot{{Name: "v", Default: "1"}}, nil)
	require.NoError(t, err)

	w, err := p.CreateWorkerFromTemplate(ctx, "acme", "tpl", "api", map[string]string{"v": "42"}, v1.ConfigPartial{}, nil, v1.BuildOptions{})
	require.NoError(t, err)
	require.Equal(t, "const x=42;", w.Files["src/index.ts"])

	preview, err := p.PreviewTemplateFiles(ctx, "tpl", map[string]string{})
	require.NoError(t, err)
	require.Equal(t, "const x=1;", preview["src/index.ts"])
}

// Scenario 6: build cache hit across two ephemeral runs.
func TestRunEphemeralBuildCacheHit(t *testing.T) {
	ctx := context.Background()
	p := newTestPlatform(t)

	_, err := p.CreateTenant(ctx, "acme", v1.ConfigPartial{})
	require.NoError(t, err)

	files := map[string]string{
		"src/index.ts": "export default{fetch(){return new Response('ephemeral')}}",
		"package.json": `{"main":"src/index.ts"}`,
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res1, err := p.RunEphemeral(ctx, "acme", files, v1.ConfigPartial{}, v1.BuildOptions{}, "", req)
	require.NoError(t, err)
	require.False(t, res1.Cached)

	res2, err := p.RunEphemeral(ctx, "acme", files, v1.ConfigPartial{}, v1.BuildOptions{}, "", req)
	require.NoError(t, err)
	require.True(t, res2.Cached)
	require.Equal(t, "ephemeral", readBody(t, res2.Response))
}

func TestDeleteTenantCascades(t *testing.T) {
	ctx := context.Background()
	p := newTestPlatform(t)

	_, err := p.CreateTenant(ctx, "acme", v1.ConfigPartial{})
	require.NoError(t, err)

	files := map[string]string{
		"src/index.ts": "export default{fetch(){return new Response('hi')}}",
		"package.json": `{"main":"src/index.ts"}`,
	}
	_, err = p.CreateWorker(ctx, "acme", "api", v1.ConfigPartial{}, files, []string{"app.acme.com"}, v1.BuildOptions{})
	require.NoError(t, err)

	require.NoError(t, p.DeleteTenant(ctx, "acme"))

	_, err = p.GetWorker(ctx, "acme", "api")
	require.True(t, perr.Is(err, perr.KindNotFound))

	route, err := p.hostnameIdx.Resolve(ctx, "app.acme.com")
	require.NoError(t, err)
	require.Nil(t, route)

	gone, err := p.tenants.Get(ctx, "acme")
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestSweepOrphansRemovesDanglingHostname(t *testing.T) {
	ctx := context.Background()
	p := newTestPlatform(t)

	_, err := p.CreateTenant(ctx, "acme", v1.ConfigPartial{})
	require.NoError(t, err)

	require.NoError(t, p.hostnames.Put(ctx, "orphan.acme.com", &v1.HostnameRoute{
		Hostname: "orphan.acme.com", TenantID: "acme", WorkerID: "ghost",
	}))

	n, err := p.SweepOrphans(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	route, err := p.hostnames.Get(ctx, "orphan.acme.com")
	require.NoError(t, err)
	require.Nil(t, route)
}

// Explicit hostname add/remove, independent of create/delete.
func TestAddAndRemoveHostnames(t *testing.T) {
	ctx := context.Background()
	p := newTestPlatform(t)

	_, err := p.CreateTenant(ctx, "acme", v1.ConfigPartial{})
	require.NoError(t, err)

	files := map[string]string{
		"src/index.ts": "export default{fetch(){return new Response('hi')}}",
		"package.json": `{"main":"src/index.ts"}`,
	}
	_, err = p.CreateWorker(ctx, "acme", "api", v1.ConfigPartial{}, files, nil, v1.BuildOptions{})
	require.NoError(t, err)

	w, err := p.AddHostnames(ctx, "acme", "api", []string{"app.acme.com", "www.acme.com"})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"app.acme.com", "www.acme.com"}, w.Hostnames)

	route, err := p.hostnameIdx.Resolve(ctx, "app.acme.com")
	require.NoError(t, err)
	require.Equal(t, "api", route.WorkerID)

	w, err = p.RemoveHostnames(ctx, "acme", "api", []string{"app.acme.com"})
	require.NoError(t, err)
	require.Equal(t, []string{"www.acme.com"}, w.Hostnames)

	route, err = p.hostnameIdx.Resolve(ctx, "app.acme.com")
	require.NoError(t, err)
	require.Nil(t, route)
}

func TestListTenantsPagination(t *testing.T) {
	ctx := context.Background()
	p := newTestPlatform(t)

	for _, id := range []string{"a", "b", "c"} {
		_, err := p.CreateTenant(ctx, id, v1.ConfigPartial{})
		require.NoError(t, err)
	}

	res, err := p.ListTenants(ctx, store.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	require.NotEmpty(t, res.Cursor)
}
