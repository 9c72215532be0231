/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package platform

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/cache"
	"github.com/amartyaa/workerplatform/internal/config"
	"github.com/amartyaa/workerplatform/internal/hashutil"
	"github.com/amartyaa/workerplatform/internal/metrics"
	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/amartyaa/workerplatform/internal/store"
	"github.com/amartyaa/workerplatform/internal/stubcache"
)

// CreateWorker runs the full create sequence of spec.md §4.9: verify the
// tenant, verify (tenantId, id) uniqueness, build+cache via C4, write the
// version-1 bundle, write the worker record after the bundle, then
// register hostnames with a best-effort rollback on conflict.
func (p *Platform) CreateWorker(ctx context.Context, tenantID, workerID string, cfg v1.ConfigPartial, files map[string]string, hostnames []string, build v1.BuildOptions) (v1.Worker, error) {
	if t, err := p.tenants.Get(ctx, tenantID); err != nil {
		return v1.Worker{}, perr.Storage(err)
	} else if t == nil {
		return v1.Worker{}, perr.NotFound("tenant", tenantID)
	}

	if existing, err := p.workers.Get(ctx, tenantID, workerID); err != nil {
		return v1.Worker{}, perr.Storage(err)
	} else if existing != nil {
		return v1.Worker{}, perr.Conflict("worker %q already exists for tenant %q", workerID, tenantID)
	}

	bundle, _, err := p.bundleCache.GetOrBuild(ctx, files, build)
	if err != nil {
		return v1.Worker{}, err
	}

	if err := cache.PutVersioned(ctx, p.bundles, tenantID, workerID, 1, bundle); err != nil {
		return v1.Worker{}, err
	}

	now := time.Now().UTC()
	w := v1.Worker{
		TenantID:      tenantID,
		ID:            workerID,
		ConfigPartial: cfg,
		Files:         files,
		Metadata:      v1.WorkerMetadata{CreatedAt: now, UpdatedAt: now, Version: 1},
	}

	if err := p.workers.Put(ctx, tenantID, workerID, &w); err != nil {
		metrics.RecordOperationError("createWorker", string(perr.KindStorage))
		return v1.Worker{}, perr.Storage(err)
	}

	if len(hostnames) > 0 {
		bound, err := p.hostnameIdx.Add(ctx, tenantID, workerID, hostnames)
		if err != nil {
			// The hostname index rolls back the hostnames it bound in this
			// call; the bundle and worker record stay written.
			return v1.Worker{}, err
		}
		w.Hostnames = bound
		if err := p.workers.Put(ctx, tenantID, workerID, &w); err != nil {
			metrics.RecordOperationError("createWorker", string(perr.KindStorage))
			return v1.Worker{}, perr.Storage(err)
		}
	}

	return w, nil
}

// UpdateWorker merges partial and any replacement files over the current
// record, builds the new version, writes bundle-before-record, and
// invalidates the stub cache entry (spec.md §4.9).
func (p *Platform) UpdateWorker(ctx context.Context, tenantID, workerID string, partial v1.ConfigPartial, files map[string]string, build v1.BuildOptions) (v1.Worker, error) {
	existing, err := p.workers.Get(ctx, tenantID, workerID)
	if err != nil {
		return v1.Worker{}, perr.Storage(err)
	}
	if existing == nil {
		return v1.Worker{}, perr.NotFound("worker", workerID)
	}

	existing.ConfigPartial = mergeConfigPartial(existing.ConfigPartial, partial)
	if files != nil {
		existing.Files = files
	}

	bundle, _, err := p.bundleCache.GetOrBuild(ctx, existing.Files, build)
	if err != nil {
		return v1.Worker{}, err
	}

	newVersion := existing.Metadata.Version + 1
	if err := cache.PutVersioned(ctx, p.bundles, tenantID, workerID, newVersion, bundle); err != nil {
		return v1.Worker{}, err
	}

	existing.Metadata.Version = newVersion
	existing.Metadata.UpdatedAt = time.Now().UTC()

	if err := p.workers.Put(ctx, tenantID, workerID, existing); err != nil {
		metrics.RecordOperationError("updateWorker", string(perr.KindStorage))
		return v1.Worker{}, perr.Storage(err)
	}

	p.stubs.InvalidateWorker(tenantID, workerID)
	p.Log.Info("updated worker", "tenant", tenantID, "worker", workerID, "version", newVersion)
	return *existing, nil
}

// AddHostnames binds additional hostnames to an existing worker via the
// hostname index, independent of create/delete (spec.md §3 "added/removed
// via explicit hostname ops"), and persists the widened Hostnames list.
func (p *Platform) AddHostnames(ctx context.Context, tenantID, workerID string, hostnames []string) (v1.Worker, error) {
	existing, err := p.workers.Get(ctx, tenantID, workerID)
	if err != nil {
		return v1.Worker{}, perr.Storage(err)
	}
	if existing == nil {
		return v1.Worker{}, perr.NotFound("worker", workerID)
	}

	bound, err := p.hostnameIdx.Add(ctx, tenantID, workerID, hostnames)
	if err != nil {
		return v1.Worker{}, err
	}

	existing.Hostnames = dedupHostnames(existing.Hostnames, bound)
	existing.Metadata.UpdatedAt = time.Now().UTC()

	if err := p.workers.Put(ctx, tenantID, workerID, existing); err != nil {
		metrics.RecordOperationError("addHostnames", string(perr.KindStorage))
		return v1.Worker{}, perr.Storage(err)
	}
	return *existing, nil
}

// RemoveHostnames releases hostnames bound to an existing worker,
// independent of create/delete, and persists the narrowed Hostnames list.
func (p *Platform) RemoveHostnames(ctx context.Context, tenantID, workerID string, hostnames []string) (v1.Worker, error) {
	existing, err := p.workers.Get(ctx, tenantID, workerID)
	if err != nil {
		return v1.Worker{}, perr.Storage(err)
	}
	if existing == nil {
		return v1.Worker{}, perr.NotFound("worker", workerID)
	}

	if err := p.hostnameIdx.Remove(ctx, tenantID, workerID, hostnames); err != nil {
		return v1.Worker{}, err
	}

	existing.Hostnames = removeHostnames(existing.Hostnames, hostnames)
	existing.Metadata.UpdatedAt = time.Now().UTC()

	if err := p.workers.Put(ctx, tenantID, workerID, existing); err != nil {
		metrics.RecordOperationError("removeHostnames", string(perr.KindStorage))
		return v1.Worker{}, perr.Storage(err)
	}
	return *existing, nil
}

// dedupHostnames appends newlyBound to current, dropping duplicates.
func dedupHostnames(current, newlyBound []string) []string {
	seen := make(map[string]bool, len(current))
	out := make([]string, 0, len(current)+len(newlyBound))
	for _, h := range current {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	for _, h := range newlyBound {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	return out
}

// removeHostnames drops every entry of removed from current.
func removeHostnames(current, removed []string) []string {
	drop := make(map[string]bool, len(removed))
	for _, h := range removed {
		drop[h] = true
	}
	out := make([]string, 0, len(current))
	for _, h := range current {
		if !drop[h] {
			out = append(out, h)
		}
	}
	return out
}

// GetWorker returns the worker, or NotFoundError if absent.
func (p *Platform) GetWorker(ctx context.Context, tenantID, workerID string) (v1.Worker, error) {
	w, err := p.workers.Get(ctx, tenantID, workerID)
	if err != nil {
		return v1.Worker{}, perr.Storage(err)
	}
	if w == nil {
		return v1.Worker{}, perr.NotFound("worker", workerID)
	}
	return *w, nil
}

// ListWorkers paginates over a tenant's workers.
func (p *Platform) ListWorkers(ctx context.Context, tenantID string, opts store.ListOptions) (store.ListResult[*v1.Worker], error) {
	res, err := p.workers.List(ctx, tenantID, opts)
	if err != nil {
		return store.ListResult[*v1.Worker]{}, perr.Storage(err)
	}
	return res, nil
}

// DeleteWorker drops hostname routes and every bundle version, then the
// worker record, invalidating its stub cache entry.
func (p *Platform) DeleteWorker(ctx context.Context, tenantID, workerID string) error {
	existing, err := p.workers.Get(ctx, tenantID, workerID)
	if err != nil {
		return perr.Storage(err)
	}
	if existing == nil {
		return perr.NotFound("worker", workerID)
	}

	var errs error
	if _, err := p.hostnameIdx.DeleteByWorker(ctx, tenantID, workerID); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := p.bundles.DeleteAll(ctx, tenantID, workerID); err != nil {
		errs = multierr.Append(errs, perr.Storage(err))
	}
	if err := p.workers.Delete(ctx, tenantID, workerID); err != nil {
		errs = multierr.Append(errs, perr.Storage(err))
	}

	p.stubs.InvalidateWorker(tenantID, workerID)

	if errs != nil {
		metrics.RecordOperationError("deleteWorker", string(perr.KindStorage))
	}
	return errs
}

// Fetch obtains a stub via the stub cache, resolves its entrypoint and
// dispatches req against it (spec.md §4.9).
func (p *Platform) Fetch(ctx context.Context, tenantID, workerID, entrypoint string, req *http.Request) (*http.Response, error) {
	start := time.Now()
	stub, _, err := p.stubs.Fetch(ctx, tenantID, workerID)
	if err != nil {
		return nil, err
	}

	fetcher, err := stub.GetEntrypoint(entrypoint)
	if err != nil {
		return nil, perr.Loader("entrypoint %q unavailable: %v", entrypoint, err)
	}

	resp, err := fetcher.Dispatch(ctx, req)
	metrics.RecordFetch("worker", time.Since(start).Seconds())
	return resp, err
}

// RunResult is what runEphemeral and the /api/run HTTP handler report
// back: the dispatched response plus build/cache timing (spec.md §6).
type RunResult struct {
	Response   *http.Response
	MainModule string
	Cached     bool
	Timing     RunTiming
}

// RunTiming mirrors spec.md §6's `{buildTime, loadTime, runTime, total, cached}`.
type RunTiming struct {
	BuildTime time.Duration
	LoadTime  time.Duration
	RunTime   time.Duration
	Total     time.Duration
	Cached    bool
}

// RunEphemeral resolves effective config from tenant+defaults+ad-hoc
// overrides, builds (or reuses) a fingerprint-keyed bundle, cold-starts a
// throwaway stub, and dispatches req. No Worker or HostnameRoute record
// is ever written (spec.md §4.9).
func (p *Platform) RunEphemeral(ctx context.Context, tenantID string, files map[string]string, overrides v1.ConfigPartial, build v1.BuildOptions, entrypoint string, req *http.Request) (RunResult, error) {
	total := time.Now()

	defaults, err := p.currentDefaults(ctx)
	if err != nil {
		return RunResult{}, err
	}
	tenant := v1.Tenant{}
	if tenantID != "" {
		t, err := p.tenants.Get(ctx, tenantID)
		if err != nil {
			return RunResult{}, perr.Storage(err)
		}
		if t == nil {
			return RunResult{}, perr.NotFound("tenant", tenantID)
		}
		tenant = *t
	}

	eff, err := config.Resolve(defaults, tenant, &overrides)
	if err != nil {
		return RunResult{}, err
	}

	buildStart := time.Now()
	bundle, cached, err := p.bundleCache.GetOrBuild(ctx, files, build)
	buildTime := time.Since(buildStart)
	if err != nil {
		return RunResult{}, err
	}

	loadStart := time.Now()
	fp := hashutil.Fingerprint(files, build)
	stub, err := stubcache.FetchEphemeral(ctx, p.ldr, p.bundles, tenantID, fp, eff)
	loadTime := time.Since(loadStart)
	if err != nil {
		return RunResult{}, err
	}

	fetcher, err := stub.GetEntrypoint(entrypoint)
	if err != nil {
		return RunResult{}, perr.Loader("entrypoint %q unavailable: %v", entrypoint, err)
	}

	runStart := time.Now()
	resp, err := fetcher.Dispatch(ctx, req)
	runTime := time.Since(runStart)
	metrics.RecordFetch("ephemeral", time.Since(total).Seconds())
	if err != nil {
		return RunResult{}, err
	}

	return RunResult{
		Response:   resp,
		MainModule: bundle.MainModule,
		Cached:     cached,
		Timing: RunTiming{
			BuildTime: buildTime,
			LoadTime:  loadTime,
			RunTime:   runTime,
			Total:     time.Since(total),
			Cached:    cached,
		},
	}, nil
}

// Route parses the request's host, resolves it to a (tenant, worker) via
// the hostname index, and fetches; it returns (nil, nil) if the hostname
// is unbound (spec.md §4.9).
func (p *Platform) Route(ctx context.Context, req *http.Request) (*http.Response, error) {
	host := req.URL.Hostname()
	if host == "" {
		host = req.Host
	}

	route, err := p.hostnameIdx.Resolve(ctx, host)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, nil
	}

	return p.Fetch(ctx, route.TenantID, route.WorkerID, "", req)
}
