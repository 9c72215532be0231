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

package memstore

import (
	"context"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/store"
)

// A single Store backs every contract; these thin adapters give each
// concern the Get/Put/Delete/List method names the store package's
// interfaces require (a bare *Store can't satisfy all five at once since
// Go methods can't be overloaded by signature alone).

type tenants struct{ *Store }
type workers struct{ *Store }
type bundles struct{ *Store }
type hostnames struct{ *Store }
type templates struct{ *Store }
type defaults struct{ *Store }
type auxWorkers struct {
	*Store
	kind v1.AuxWorkerKind
}

// Tenants adapts s to store.TenantStore.
func (s *Store) Tenants() store.TenantStore { return tenants{s} }

// Workers adapts s to store.WorkerStore.
func (s *Store) Workers() store.WorkerStore { return workers{s} }

// Bundles adapts s to store.BundleStore.
func (s *Store) Bundles() store.BundleStore { return bundles{s} }

// Hostnames adapts s to store.HostnameStore.
func (s *Store) Hostnames() store.HostnameStore { return hostnames{s} }

// Templates adapts s to store.TemplateStore.
func (s *Store) Templates() store.TemplateStore { return templates{s} }

// Defaults adapts s to store.DefaultsStore.
func (s *Store) Defaults() store.DefaultsStore { return defaults{s} }

// OutboundWorkers adapts s to store.AuxWorkerStore for outbound interceptors.
func (s *Store) OutboundWorkers() store.AuxWorkerStore {
	return auxWorkers{s, v1.AuxWorkerOutbound}
}

// TailWorkers adapts s to store.AuxWorkerStore for tail observers.
func (s *Store) TailWorkers() store.AuxWorkerStore {
	return auxWorkers{s, v1.AuxWorkerTail}
}

func (t tenants) Get(ctx context.Context, id string) (*v1.Tenant, error) { return t.GetTenant(ctx, id) }
func (t tenants) Put(ctx context.Context, id string, v *v1.Tenant) error {
	return t.PutTenant(ctx, id, v)
}
func (t tenants) Delete(ctx context.Context, id string) error { return t.DeleteTenant(ctx, id) }
func (t tenants) List(ctx context.Context, opts store.ListOptions) (store.ListResult[*v1.Tenant], error) {
	return t.ListTenants(ctx, opts)
}

func (w workers) Get(ctx context.Context, tenantID, workerID string) (*v1.Worker, error) {
	return w.GetWorker(ctx, tenantID, workerID)
}
func (w workers) Put(ctx context.Context, tenantID, workerID string, v *v1.Worker) error {
	return w.PutWorker(ctx, tenantID, workerID, v)
}
func (w workers) Delete(ctx context.Context, tenantID, workerID string) error {
	return w.DeleteWorker(ctx, tenantID, workerID)
}
func (w workers) List(ctx context.Context, tenantID string, opts store.ListOptions) (store.ListResult[*v1.Worker], error) {
	return w.ListWorkers(ctx, tenantID, opts)
}
func (w workers) DeleteAll(ctx context.Context, tenantID string) (int, error) {
	return w.DeleteAllWorkers(ctx, tenantID)
}

func (b bundles) Get(ctx context.Context, tenantID, workerID string, version int) (*v1.Bundle, error) {
	return b.GetBundle(ctx, tenantID, workerID, version)
}
func (b bundles) Put(ctx context.Context, tenantID, workerID string, version int, v *v1.Bundle) error {
	return b.PutBundle(ctx, tenantID, workerID, version, v)
}
func (b bundles) Delete(ctx context.Context, tenantID, workerID string, version int) error {
	return b.DeleteBundle(ctx, tenantID, workerID, version)
}
func (b bundles) DeleteAll(ctx context.Context, tenantID, workerID string) (int, error) {
	return b.DeleteAllBundles(ctx, tenantID, workerID)
}
func (b bundles) GetByFingerprint(ctx context.Context, fingerprint string) (*v1.Bundle, error) {
	return b.GetBundleByFingerprint(ctx, fingerprint)
}
func (b bundles) PutByFingerprint(ctx context.Context, fingerprint string, v *v1.Bundle, ttl int) error {
	return b.PutBundleByFingerprint(ctx, fingerprint, v, ttl)
}
func (b bundles) ListWorkerIDs(ctx context.Context, tenantID string) ([]string, error) {
	return b.ListBundleWorkerIDs(ctx, tenantID)
}

func (h hostnames) Get(ctx context.Context, hostname string) (*v1.HostnameRoute, error) {
	return h.GetHostname(ctx, hostname)
}
func (h hostnames) Put(ctx context.Context, hostname string, v *v1.HostnameRoute) error {
	return h.PutHostname(ctx, hostname, v)
}
func (h hostnames) Delete(ctx context.Context, hostname string) error {
	return h.DeleteHostname(ctx, hostname)
}
func (h hostnames) ListByWorker(ctx context.Context, tenantID, workerID string) ([]string, error) {
	return h.ListHostnamesByWorker(ctx, tenantID, workerID)
}
func (h hostnames) DeleteByWorker(ctx context.Context, tenantID, workerID string) (int, error) {
	return h.DeleteHostnamesByWorker(ctx, tenantID, workerID)
}
func (h hostnames) ListAll(ctx context.Context) ([]*v1.HostnameRoute, error) {
	return h.ListAllHostnames(ctx)
}

func (t templates) Get(ctx context.Context, id string) (*v1.Template, error) {
	return t.GetTemplate(ctx, id)
}
func (t templates) Put(ctx context.Context, id string, v *v1.Template) error {
	return t.PutTemplate(ctx, id, v)
}
func (t templates) Delete(ctx context.Context, id string) error { return t.DeleteTemplate(ctx, id) }
func (t templates) List(ctx context.Context, opts store.ListOptions) (store.ListResult[*v1.Template], error) {
	return t.ListTemplates(ctx, opts)
}

func (d defaults) Get(ctx context.Context) (*v1.PlatformDefaults, error) { return d.GetDefaults(ctx) }
func (d defaults) Put(ctx context.Context, v *v1.PlatformDefaults) error {
	return d.PutDefaults(ctx, v)
}

func (a auxWorkers) Get(ctx context.Context, tenantID, id string) (*v1.AuxWorker, error) {
	return a.GetAuxWorker(ctx, a.kind, tenantID, id)
}
func (a auxWorkers) Put(ctx context.Context, tenantID, id string, w *v1.AuxWorker) error {
	return a.PutAuxWorker(ctx, a.kind, tenantID, id, w)
}
func (a auxWorkers) Delete(ctx context.Context, tenantID, id string) error {
	return a.DeleteAuxWorker(ctx, a.kind, tenantID, id)
}
func (a auxWorkers) List(ctx context.Context, tenantID string, opts store.ListOptions) (store.ListResult[*v1.AuxWorker], error) {
	return a.ListAuxWorkers(ctx, a.kind, tenantID, opts)
}
func (a auxWorkers) DeleteAll(ctx context.Context, tenantID string) (int, error) {
	return a.DeleteAllAuxWorkers(ctx, a.kind, tenantID)
}
