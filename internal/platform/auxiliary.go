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
	"time"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/amartyaa/workerplatform/internal/store"
)

// auxStoreFor returns the backing store for an AuxWorkerKind; outbound
// interceptors and tail observers share identical CRUD shape (spec.md
// Glossary, SPEC_FULL.md §4 C9 expansion) and differ only in which
// EffectiveConfig field references them.
func (p *Platform) auxStoreFor(kind v1.AuxWorkerKind) store.AuxWorkerStore {
	if kind == v1.AuxWorkerOutbound {
		return p.outbound
	}
	return p.tail
}

// RegisterAuxWorker creates an outbound interceptor or tail observer,
// failing with ConflictError if (tenantID, id) already exists.
func (p *Platform) RegisterAuxWorker(ctx context.Context, kind v1.AuxWorkerKind, tenantID, id string, files map[string]string) (v1.AuxWorker, error) {
	s := p.auxStoreFor(kind)
	if existing, err := s.Get(ctx, tenantID, id); err != nil {
		return v1.AuxWorker{}, perr.Storage(err)
	} else if existing != nil {
		return v1.AuxWorker{}, perr.Conflict("%s worker %q already exists for tenant %q", kind, id, tenantID)
	}

	now := time.Now().UTC()
	w := v1.AuxWorker{
		TenantID: tenantID,
		ID:       id,
		Kind:     kind,
		Files:    files,
		Metadata: v1.WorkerMetadata{CreatedAt: now, UpdatedAt: now, Version: 1},
	}
	if err := s.Put(ctx, tenantID, id, &w); err != nil {
		return v1.AuxWorker{}, perr.Storage(err)
	}
	return w, nil
}

// UpdateAuxWorker replaces an outbound/tail worker's files, bumping its
// version the same way a Worker update does.
func (p *Platform) UpdateAuxWorker(ctx context.Context, kind v1.AuxWorkerKind, tenantID, id string, files map[string]string) (v1.AuxWorker, error) {
	s := p.auxStoreFor(kind)
	existing, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return v1.AuxWorker{}, perr.Storage(err)
	}
	if existing == nil {
		return v1.AuxWorker{}, perr.NotFound(string(kind)+" worker", id)
	}

	existing.Files = files
	existing.Metadata.Version++
	existing.Metadata.UpdatedAt = time.Now().UTC()

	if err := s.Put(ctx, tenantID, id, existing); err != nil {
		return v1.AuxWorker{}, perr.Storage(err)
	}
	return *existing, nil
}

// GetAuxWorker returns the outbound/tail worker, or NotFoundError if absent.
func (p *Platform) GetAuxWorker(ctx context.Context, kind v1.AuxWorkerKind, tenantID, id string) (v1.AuxWorker, error) {
	w, err := p.auxStoreFor(kind).Get(ctx, tenantID, id)
	if err != nil {
		return v1.AuxWorker{}, perr.Storage(err)
	}
	if w == nil {
		return v1.AuxWorker{}, perr.NotFound(string(kind)+" worker", id)
	}
	return *w, nil
}

// ListAuxWorkers paginates a tenant's outbound/tail workers.
func (p *Platform) ListAuxWorkers(ctx context.Context, kind v1.AuxWorkerKind, tenantID string, opts store.ListOptions) (store.ListResult[*v1.AuxWorker], error) {
	res, err := p.auxStoreFor(kind).List(ctx, tenantID, opts)
	if err != nil {
		return store.ListResult[*v1.AuxWorker]{}, perr.Storage(err)
	}
	return res, nil
}

// DeleteAuxWorker removes an outbound/tail worker record. Deliberately
// does not verify it is unreferenced by any EffectiveConfig: the loader
// descriptor carries these by name only, so a dangling reference simply
// fails at dispatch time, the same way a deleted Worker would.
func (p *Platform) DeleteAuxWorker(ctx context.Context, kind v1.AuxWorkerKind, tenantID, id string) error {
	s := p.auxStoreFor(kind)
	existing, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return perr.Storage(err)
	}
	if existing == nil {
		return perr.NotFound(string(kind)+" worker", id)
	}
	if err := s.Delete(ctx, tenantID, id); err != nil {
		return perr.Storage(err)
	}
	return nil
}

// SweepOrphans scans tenant workers and removes bundle versions and
// hostname routes whose owning worker no longer exists. It is an
// optional operational tool, not on any hot path (spec.md §9).
func (p *Platform) SweepOrphans(ctx context.Context, tenantID string) (int, error) {
	workers, err := p.workers.List(ctx, tenantID, store.ListOptions{})
	if err != nil {
		return 0, perr.Storage(err)
	}
	live := make(map[string]bool, len(workers.Items))
	for _, w := range workers.Items {
		live[w.ID] = true
	}

	swept := 0

	workerIDs, err := p.bundles.ListWorkerIDs(ctx, tenantID)
	if err != nil {
		return swept, perr.Storage(err)
	}
	for _, workerID := range workerIDs {
		if live[workerID] {
			continue
		}
		n, err := p.bundles.DeleteAll(ctx, tenantID, workerID)
		if err != nil {
			return swept, perr.Storage(err)
		}
		swept += n
	}

	routes, err := p.hostnames.ListAll(ctx)
	if err != nil {
		return swept, perr.Storage(err)
	}
	for _, route := range routes {
		if route.TenantID != tenantID || live[route.WorkerID] {
			continue
		}
		if err := p.hostnames.Delete(ctx, route.Hostname); err != nil {
			return swept, perr.Storage(err)
		}
		swept++
	}

	return swept, nil
}
