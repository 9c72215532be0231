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

// Package platform implements the public façade (spec.md §4.9): tenant,
// worker, template and hostname operations, orchestrating the config
// resolver, bundle cache, stub cache and hostname index underneath one
// API surface.
package platform

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/cache"
	"github.com/amartyaa/workerplatform/internal/hostnameindex"
	"github.com/amartyaa/workerplatform/internal/loader"
	"github.com/amartyaa/workerplatform/internal/metrics"
	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/amartyaa/workerplatform/internal/store"
	"github.com/amartyaa/workerplatform/internal/stubcache"
)

// Platform is the control plane façade. Every exported method is safe to
// call concurrently; per-key ordering follows the single-writer
// assumption the stores provide (spec.md §5).
type Platform struct {
	Log logr.Logger

	tenants   store.TenantStore
	workers   store.WorkerStore
	bundles   store.BundleStore
	hostnames store.HostnameStore
	templates store.TemplateStore
	defaults  store.DefaultsStore
	outbound  store.AuxWorkerStore
	tail      store.AuxWorkerStore

	bundleCache *cache.BundleCache
	hostnameIdx *hostnameindex.Index
	stubs       *stubcache.Cache
	ldr         loader.Loader
}

// Deps bundles every collaborator Platform orchestrates.
type Deps struct {
	Log logr.Logger

	Tenants   store.TenantStore
	Workers   store.WorkerStore
	Bundles   store.BundleStore
	Hostnames store.HostnameStore
	Templates store.TemplateStore
	Defaults  store.DefaultsStore
	Outbound  store.AuxWorkerStore
	Tail      store.AuxWorkerStore

	BundleCache *cache.BundleCache
	Loader      loader.Loader
}

// New wires a Platform from its dependencies.
func New(d Deps) *Platform {
	p := &Platform{
		Log:         d.Log,
		tenants:     d.Tenants,
		workers:     d.Workers,
		bundles:     d.Bundles,
		hostnames:   d.Hostnames,
		templates:   d.Templates,
		defaults:    d.Defaults,
		outbound:    d.Outbound,
		tail:        d.Tail,
		bundleCache: d.BundleCache,
		hostnameIdx: hostnameindex.New(d.Hostnames),
		ldr:         d.Loader,
	}
	p.stubs = stubcache.New(d.Tenants, d.Workers, d.Bundles, d.Loader, p.currentDefaults)
	return p
}

func (p *Platform) currentDefaults(ctx context.Context) (v1.PlatformDefaults, error) {
	d, err := p.defaults.Get(ctx)
	if err != nil {
		return v1.PlatformDefaults{}, perr.Storage(err)
	}
	if d == nil {
		return v1.PlatformDefaults{}, nil
	}
	return *d, nil
}

// GetDefaults returns the current platform defaults.
func (p *Platform) GetDefaults(ctx context.Context) (v1.PlatformDefaults, error) {
	return p.currentDefaults(ctx)
}

// UpdateDefaults merges partial over the current defaults, persists the
// result before invalidating every cached stub (spec.md §4.9: "write
// happens before cache invalidation").
func (p *Platform) UpdateDefaults(ctx context.Context, partial v1.ConfigPartial) (v1.PlatformDefaults, error) {
	current, err := p.currentDefaults(ctx)
	if err != nil {
		return v1.PlatformDefaults{}, err
	}

	merged := mergeConfigPartial(current.ConfigPartial, partial)
	updated := v1.PlatformDefaults{ConfigPartial: merged}

	if err := p.defaults.Put(ctx, &updated); err != nil {
		metrics.RecordOperationError("updateDefaults", string(perr.KindStorage))
		return v1.PlatformDefaults{}, perr.Storage(err)
	}

	p.stubs.InvalidateAll()
	return updated, nil
}

// mergeConfigPartial overlays partial's set fields onto base, field by
// field — the same "update replaces only what's set" rule updateTenant
// and updateWorker apply to their own partials.
func mergeConfigPartial(base, partial v1.ConfigPartial) v1.ConfigPartial {
	out := base
	if partial.Env != nil {
		out.Env = partial.Env
	}
	if partial.CompatibilityDate != "" {
		out.CompatibilityDate = partial.CompatibilityDate
	}
	if partial.CompatibilityFlags != nil {
		out.CompatibilityFlags = partial.CompatibilityFlags
	}
	if partial.Limits != nil {
		out.Limits = partial.Limits
	}
	if partial.GlobalOutbound != "" {
		out.GlobalOutbound = partial.GlobalOutbound
	}
	if partial.Tails != nil {
		out.Tails = partial.Tails
	}
	return out
}

// CreateTenant writes a new Tenant record, failing with ConflictError if
// the id already exists (spec.md §4.9).
func (p *Platform) CreateTenant(ctx context.Context, id string, cfg v1.ConfigPartial) (v1.Tenant, error) {
	existing, err := p.tenants.Get(ctx, id)
	if err != nil {
		return v1.Tenant{}, perr.Storage(err)
	}
	if existing != nil {
		return v1.Tenant{}, perr.Conflict("tenant %q already exists", id)
	}

	now := time.Now().UTC()
	t := v1.Tenant{
		ID:            id,
		ConfigPartial: cfg,
		Metadata:      v1.TenantMetadata{CreatedAt: now, UpdatedAt: now},
	}
	if err := p.tenants.Put(ctx, id, &t); err != nil {
		metrics.RecordOperationError("createTenant", string(perr.KindStorage))
		return v1.Tenant{}, perr.Storage(err)
	}
	return t, nil
}

// UpdateTenant merges partial over the existing tenant config, bumps
// updatedAt, and invalidates every stub cache entry for the tenant.
func (p *Platform) UpdateTenant(ctx context.Context, id string, partial v1.ConfigPartial) (v1.Tenant, error) {
	existing, err := p.tenants.Get(ctx, id)
	if err != nil {
		return v1.Tenant{}, perr.Storage(err)
	}
	if existing == nil {
		return v1.Tenant{}, perr.NotFound("tenant", id)
	}

	existing.ConfigPartial = mergeConfigPartial(existing.ConfigPartial, partial)
	existing.Metadata.UpdatedAt = time.Now().UTC()

	if err := p.tenants.Put(ctx, id, existing); err != nil {
		metrics.RecordOperationError("updateTenant", string(perr.KindStorage))
		return v1.Tenant{}, perr.Storage(err)
	}

	p.stubs.InvalidateTenant(id)
	return *existing, nil
}

// GetTenant returns the tenant, or NotFoundError if absent.
func (p *Platform) GetTenant(ctx context.Context, id string) (v1.Tenant, error) {
	t, err := p.tenants.Get(ctx, id)
	if err != nil {
		return v1.Tenant{}, perr.Storage(err)
	}
	if t == nil {
		return v1.Tenant{}, perr.NotFound("tenant", id)
	}
	return *t, nil
}

// ListTenants paginates over every tenant.
func (p *Platform) ListTenants(ctx context.Context, opts store.ListOptions) (store.ListResult[*v1.Tenant], error) {
	res, err := p.tenants.List(ctx, opts)
	if err != nil {
		return store.ListResult[*v1.Tenant]{}, perr.Storage(err)
	}
	return res, nil
}

// DeleteTenant cascades: deletes every worker (which itself cascades to
// bundles and hostnames), then the tenant record. Partial failure leaves
// a best-effort consistent state; callers may re-invoke (spec.md §4.9).
func (p *Platform) DeleteTenant(ctx context.Context, id string) error {
	existing, err := p.tenants.Get(ctx, id)
	if err != nil {
		return perr.Storage(err)
	}
	if existing == nil {
		return perr.NotFound("tenant", id)
	}

	var errs error
	res, err := p.workers.List(ctx, id, store.ListOptions{})
	if err != nil {
		errs = multierr.Append(errs, perr.Storage(err))
	} else {
		for _, w := range res.Items {
			if err := p.DeleteWorker(ctx, id, w.ID); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}

	if _, err := p.outbound.DeleteAll(ctx, id); err != nil {
		errs = multierr.Append(errs, perr.Storage(err))
	}
	if _, err := p.tail.DeleteAll(ctx, id); err != nil {
		errs = multierr.Append(errs, perr.Storage(err))
	}

	if err := p.tenants.Delete(ctx, id); err != nil {
		errs = multierr.Append(errs, perr.Storage(err))
	}

	p.stubs.InvalidateTenant(id)

	if errs != nil {
		p.Log.Error(errs, "deleteTenant left a partial state", "tenant", id)
		metrics.RecordOperationError("deleteTenant", string(perr.KindStorage))
	} else {
		p.Log.Info("deleted tenant", "tenant", id)
	}
	return errs
}
