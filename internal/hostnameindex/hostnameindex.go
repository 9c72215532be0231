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

// Package hostnameindex implements the exclusive hostname -> (tenant,
// worker) binding (spec §4.7), including compare-after-write conflict
// repair for stores without a conditional-write primitive.
package hostnameindex

import (
	"context"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/metrics"
	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/amartyaa/workerplatform/internal/store"
)

// Index resolves and mutates the hostname -> route binding.
type Index struct {
	store store.HostnameStore
}

// New returns an Index backed by the given HostnameStore.
func New(s store.HostnameStore) *Index {
	return &Index{store: s}
}

// Resolve looks up the route for a hostname, or nil if unbound.
func (idx *Index) Resolve(ctx context.Context, hostname string) (*v1.HostnameRoute, error) {
	r, err := idx.store.Get(ctx, hostname)
	if err != nil {
		return nil, perr.Storage(err)
	}
	return r, nil
}

// Add binds each hostname in hostnames to (tenantID, workerID). If a
// hostname already resolves elsewhere, Add fails with ConflictError and
// rolls back any hostnames it had already bound in this call.
func (idx *Index) Add(ctx context.Context, tenantID, workerID string, hostnames []string) (bound []string, err error) {
	for _, host := range hostnames {
		existing, getErr := idx.store.Get(ctx, host)
		if getErr != nil {
			idx.rollback(ctx, bound)
			return nil, perr.Storage(getErr)
		}
		if existing != nil && (existing.TenantID != tenantID || existing.WorkerID != workerID) {
			metrics.RecordHostnameConflict(tenantID)
			idx.rollback(ctx, bound)
			return nil, perr.Conflict("hostname %q is already bound to %s/%s", host, existing.TenantID, existing.WorkerID)
		}

		route := &v1.HostnameRoute{Hostname: host, TenantID: tenantID, WorkerID: workerID}
		if putErr := idx.store.Put(ctx, host, route); putErr != nil {
			idx.rollback(ctx, bound)
			return nil, perr.Storage(putErr)
		}

		// Compare-after-write repair: without a conditional write, re-read
		// to detect a concurrent winner (spec §4.7).
		reread, getErr := idx.store.Get(ctx, host)
		if getErr != nil {
			idx.rollback(ctx, bound)
			return nil, perr.Storage(getErr)
		}
		if reread == nil || reread.TenantID != tenantID || reread.WorkerID != workerID {
			metrics.RecordHostnameConflict(tenantID)
			idx.rollback(ctx, bound)
			return nil, perr.Conflict("hostname %q lost a concurrent binding race", host)
		}

		bound = append(bound, host)
	}
	return bound, nil
}

// Remove unbinds each hostname in hostnames, if it currently belongs to
// (tenantID, workerID); hostnames owned by someone else are left alone.
func (idx *Index) Remove(ctx context.Context, tenantID, workerID string, hostnames []string) error {
	for _, host := range hostnames {
		existing, err := idx.store.Get(ctx, host)
		if err != nil {
			return perr.Storage(err)
		}
		if existing == nil || existing.TenantID != tenantID || existing.WorkerID != workerID {
			continue
		}
		if err := idx.store.Delete(ctx, host); err != nil {
			return perr.Storage(err)
		}
	}
	return nil
}

// ListByWorker returns every hostname currently bound to (tenantID, workerID).
func (idx *Index) ListByWorker(ctx context.Context, tenantID, workerID string) ([]string, error) {
	hosts, err := idx.store.ListByWorker(ctx, tenantID, workerID)
	if err != nil {
		return nil, perr.Storage(err)
	}
	return hosts, nil
}

// DeleteByWorker removes every hostname route owned by (tenantID,
// workerID); invoked during worker deletion (spec §4.7).
func (idx *Index) DeleteByWorker(ctx context.Context, tenantID, workerID string) (int, error) {
	n, err := idx.store.DeleteByWorker(ctx, tenantID, workerID)
	if err != nil {
		return 0, perr.Storage(err)
	}
	return n, nil
}

func (idx *Index) rollback(ctx context.Context, bound []string) {
	for _, host := range bound {
		_ = idx.store.Delete(ctx, host)
	}
}
