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

// Package stubcache implements the stub cache (spec §4.8): loader handles
// keyed by (tenant, worker), guarded by worker version, invalidated on
// config change at any inheritance level.
package stubcache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/config"
	"github.com/amartyaa/workerplatform/internal/loader"
	"github.com/amartyaa/workerplatform/internal/metrics"
	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/amartyaa/workerplatform/internal/store"
)

type entry struct {
	version int
	stub    loader.Stub
}

// Cache is the (tenant, worker) -> {version, stub} cache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	tenants     store.TenantStore
	workers     store.WorkerStore
	bundles     store.BundleStore
	loader      loader.Loader
	getDefaults func(ctx context.Context) (v1.PlatformDefaults, error)
}

// New returns a Cache wired to its dependencies. getDefaults is called on
// every cache miss to resolve the current platform defaults.
func New(tenants store.TenantStore, workers store.WorkerStore, bundles store.BundleStore, ldr loader.Loader, getDefaults func(ctx context.Context) (v1.PlatformDefaults, error)) *Cache {
	return &Cache{
		entries:     make(map[string]entry),
		tenants:     tenants,
		workers:     workers,
		bundles:     bundles,
		loader:      ldr,
		getDefaults: getDefaults,
	}
}

func key(tenantID, workerID string) string { return tenantID + "/" + workerID }

// Fetch implements spec §4.8's fetch(t, w) flow: load records, fast-path
// on a cache hit at the current version, else resolve effective config,
// cold-start a stub from the Loader, cache it, and return it.
func (c *Cache) Fetch(ctx context.Context, tenantID, workerID string) (loader.Stub, int, error) {
	var tenant *v1.Tenant
	var worker *v1.Worker

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := c.tenants.Get(gctx, tenantID)
		if err != nil {
			return perr.Storage(err)
		}
		tenant = t
		return nil
	})
	g.Go(func() error {
		w, err := c.workers.Get(gctx, tenantID, workerID)
		if err != nil {
			return perr.Storage(err)
		}
		worker = w
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if tenant == nil {
		return nil, 0, perr.NotFound("tenant", tenantID)
	}
	if worker == nil {
		return nil, 0, perr.NotFound("worker", workerID)
	}

	k := key(tenantID, workerID)

	c.mu.Lock()
	if e, ok := c.entries[k]; ok && e.version == worker.Metadata.Version {
		c.mu.Unlock()
		metrics.RecordStubCache("hit")
		return e.stub, e.version, nil
	}
	c.mu.Unlock()
	metrics.RecordStubCache("miss")

	defaults, err := c.getDefaults(ctx)
	if err != nil {
		return nil, 0, err
	}
	eff, err := config.Resolve(defaults, *tenant, &worker.ConfigPartial)
	if err != nil {
		return nil, 0, err
	}

	version := worker.Metadata.Version
	name := fmt.Sprintf("%s:%s:v%d", tenantID, workerID, version)
	cold := versionedColdStart{store: c.bundles, tenantID: tenantID, workerID: workerID, version: version, config: eff}

	stub, err := c.loader.Get(ctx, name, cold)
	if err != nil {
		return nil, 0, err
	}

	c.mu.Lock()
	c.entries[k] = entry{version: version, stub: stub}
	c.mu.Unlock()

	return stub, version, nil
}

// InvalidateWorker drops the cache entry for (tenantID, workerID), e.g.
// after updateWorker (spec §4.8).
func (c *Cache) InvalidateWorker(tenantID, workerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key(tenantID, workerID))
}

// InvalidateTenant drops every cache entry belonging to tenantID, e.g.
// after updateTenant (spec §4.8).
func (c *Cache) InvalidateTenant(tenantID string) {
	prefix := tenantID + "/"
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
}

// InvalidateAll drops every cache entry, e.g. after updateDefaults
// (spec §4.8).
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// FetchEphemeral resolves a stub for a fingerprint-keyed ephemeral run
// (spec §4.9 runEphemeral), bypassing the (tenant, worker) cache entirely:
// ephemeral runs have no persisted Worker record to key a cache entry on.
func FetchEphemeral(ctx context.Context, ldr loader.Loader, bundles store.BundleStore, tenantID, fingerprint string, eff v1.EffectiveConfig) (loader.Stub, error) {
	name := fmt.Sprintf("%s:ephemeral:%s", tenantID, fingerprint)
	cold := fingerprintColdStart{store: bundles, fingerprint: fingerprint, config: eff}
	return ldr.Get(ctx, name, cold)
}
