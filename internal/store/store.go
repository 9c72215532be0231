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

// Package store defines the persistence contracts the platform core
// consumes (spec §4.1). Media (KV, SQL, files) is out of scope; only the
// in-memory reference implementation in internal/store/memstore lives here.
package store

import (
	"context"

	v1 "github.com/amartyaa/workerplatform/api/v1"
)

// ListOptions paginate a list call. Cursor is an opaque continuation token
// returned by a previous call; callers must not interpret its contents.
type ListOptions struct {
	Prefix string
	Limit  int
	Cursor string
}

// ListResult is the paginated result of a list call.
type ListResult[T any] struct {
	Items  []T
	Cursor string
}

// TenantStore persists Tenant records.
type TenantStore interface {
	Get(ctx context.Context, id string) (*v1.Tenant, error)
	Put(ctx context.Context, id string, t *v1.Tenant) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) (ListResult[*v1.Tenant], error)
}

// WorkerStore persists Worker records keyed by (tenantID, workerID).
type WorkerStore interface {
	Get(ctx context.Context, tenantID, workerID string) (*v1.Worker, error)
	Put(ctx context.Context, tenantID, workerID string, w *v1.Worker) error
	Delete(ctx context.Context, tenantID, workerID string) error
	List(ctx context.Context, tenantID string, opts ListOptions) (ListResult[*v1.Worker], error)
	DeleteAll(ctx context.Context, tenantID string) (int, error)
}

// BundleStore persists Bundle records keyed by (tenantID, workerID, version)
// and, separately, ephemeral fingerprint-keyed entries (spec §4.4).
type BundleStore interface {
	Get(ctx context.Context, tenantID, workerID string, version int) (*v1.Bundle, error)
	Put(ctx context.Context, tenantID, workerID string, version int, b *v1.Bundle) error
	Delete(ctx context.Context, tenantID, workerID string, version int) error
	DeleteAll(ctx context.Context, tenantID, workerID string) (int, error)

	GetByFingerprint(ctx context.Context, fingerprint string) (*v1.Bundle, error)
	PutByFingerprint(ctx context.Context, fingerprint string, b *v1.Bundle, ttl int) error

	// ListWorkerIDs returns the distinct workerIDs within tenantID that own
	// at least one bundle version, for orphan-sweep use (spec.md §9 "GC
	// sweep"); it is not used on any request-serving path.
	ListWorkerIDs(ctx context.Context, tenantID string) ([]string, error)
}

// HostnameStore persists the hostname -> route forward index and the
// reverse (tenant, worker) -> hostnames index. Implementations must keep
// the two consistent, either atomically or via a documented two-phase
// write with repair on read (spec §4.1).
type HostnameStore interface {
	Get(ctx context.Context, hostname string) (*v1.HostnameRoute, error)
	Put(ctx context.Context, hostname string, r *v1.HostnameRoute) error
	Delete(ctx context.Context, hostname string) error
	ListByWorker(ctx context.Context, tenantID, workerID string) ([]string, error)
	DeleteByWorker(ctx context.Context, tenantID, workerID string) (int, error)

	// ListAll returns every hostname route regardless of owner, for
	// orphan-sweep use (spec.md §9 "GC sweep"); not used on any
	// request-serving path.
	ListAll(ctx context.Context) ([]*v1.HostnameRoute, error)
}

// TemplateStore persists Template records.
type TemplateStore interface {
	Get(ctx context.Context, id string) (*v1.Template, error)
	Put(ctx context.Context, id string, t *v1.Template) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) (ListResult[*v1.Template], error)
}

// DefaultsStore persists the single PlatformDefaults record.
type DefaultsStore interface {
	Get(ctx context.Context) (*v1.PlatformDefaults, error)
	Put(ctx context.Context, d *v1.PlatformDefaults) error
}

// AuxWorkerStore persists outbound-interceptor or tail-observer records,
// keyed by (tenantID, id) within one AuxWorkerKind (spec.md Glossary,
// SPEC_FULL.md §4 C9 expansion). Two AuxWorkerStore values, one per kind,
// back the platform façade's outbound/tail CRUD surfaces.
type AuxWorkerStore interface {
	Get(ctx context.Context, tenantID, id string) (*v1.AuxWorker, error)
	Put(ctx context.Context, tenantID, id string, w *v1.AuxWorker) error
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string, opts ListOptions) (ListResult[*v1.AuxWorker], error)
	DeleteAll(ctx context.Context, tenantID string) (int, error)
}
