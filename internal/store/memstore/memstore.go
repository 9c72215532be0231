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

// Package memstore is the reference in-memory implementation of the
// internal/store contracts (spec §4.1, §6 "To the Storage layer").
package memstore

import (
	"context"
	"sync"
	"time"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/store"
)

type workerKey struct{ tenantID, workerID string }
type bundleKey struct {
	tenantID, workerID string
	version            int
}
type auxKey struct {
	tenantID, id string
	kind         v1.AuxWorkerKind
}

// Store is a single in-memory implementation of every storage contract,
// guarded by a single RWMutex shared by every concern. Safe for concurrent
// use.
type Store struct {
	mu sync.RWMutex

	tenants   map[string]*v1.Tenant
	workers   map[workerKey]*v1.Worker
	bundles   map[bundleKey]*v1.Bundle
	byFinger  map[string]fingerprintEntry
	hostnames map[string]*v1.HostnameRoute
	templates map[string]*v1.Template
	defaults  *v1.PlatformDefaults
	aux       map[auxKey]*v1.AuxWorker

	tenantCursors   *cursorRegistry
	workerCursors   map[string]*cursorRegistry
	templateCursors *cursorRegistry
	auxCursors      map[string]*cursorRegistry
}

type fingerprintEntry struct {
	bundle    *v1.Bundle
	expiresAt time.Time
}

// New returns an empty in-memory Store.
func New() *Store {
	return &Store{
		tenants:         make(map[string]*v1.Tenant),
		workers:         make(map[workerKey]*v1.Worker),
		bundles:         make(map[bundleKey]*v1.Bundle),
		byFinger:        make(map[string]fingerprintEntry),
		hostnames:       make(map[string]*v1.HostnameRoute),
		templates:       make(map[string]*v1.Template),
		aux:             make(map[auxKey]*v1.AuxWorker),
		tenantCursors:   newCursorRegistry(),
		workerCursors:   make(map[string]*cursorRegistry),
		templateCursors: newCursorRegistry(),
		auxCursors:      make(map[string]*cursorRegistry),
	}
}

// --- TenantStore ---

func (s *Store) GetTenant(ctx context.Context, id string) (*v1.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *Store) PutTenant(ctx context.Context, id string, t *v1.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tenants[id] = &cp
	return nil
}

func (s *Store) DeleteTenant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tenants, id)
	return nil
}

func (s *Store) ListTenants(ctx context.Context, opts store.ListOptions) (store.ListResult[*v1.Tenant], error) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.tenants))
	for k := range s.tenants {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	page, next := s.tenantCursors.page(keys, struct {
		Prefix string
		Limit  int
		Cursor string
	}(opts))

	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]*v1.Tenant, 0, len(page))
	for _, k := range page {
		if t, ok := s.tenants[k]; ok {
			cp := *t
			items = append(items, &cp)
		}
	}
	return store.ListResult[*v1.Tenant]{Items: items, Cursor: next}, nil
}

// --- WorkerStore ---

func (s *Store) GetWorker(ctx context.Context, tenantID, workerID string) (*v1.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workers[workerKey{tenantID, workerID}]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (s *Store) PutWorker(ctx context.Context, tenantID, workerID string, w *v1.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.workers[workerKey{tenantID, workerID}] = &cp
	return nil
}

func (s *Store) DeleteWorker(ctx context.Context, tenantID, workerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workers, workerKey{tenantID, workerID})
	return nil
}

func (s *Store) ListWorkers(ctx context.Context, tenantID string, opts store.ListOptions) (store.ListResult[*v1.Worker], error) {
	s.mu.RLock()
	keys := make([]string, 0)
	for k := range s.workers {
		if k.tenantID == tenantID {
			keys = append(keys, k.workerID)
		}
	}
	cursors, ok := s.workerCursors[tenantID]
	s.mu.RUnlock()
	if !ok {
		s.mu.Lock()
		cursors, ok = s.workerCursors[tenantID]
		if !ok {
			cursors = newCursorRegistry()
			s.workerCursors[tenantID] = cursors
		}
		s.mu.Unlock()
	}

	page, next := cursors.page(keys, struct {
		Prefix string
		Limit  int
		Cursor string
	}(opts))

	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]*v1.Worker, 0, len(page))
	for _, id := range page {
		if w, ok := s.workers[workerKey{tenantID, id}]; ok {
			cp := *w
			items = append(items, &cp)
		}
	}
	return store.ListResult[*v1.Worker]{Items: items, Cursor: next}, nil
}

func (s *Store) DeleteAllWorkers(ctx context.Context, tenantID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.workers {
		if k.tenantID == tenantID {
			delete(s.workers, k)
			n++
		}
	}
	delete(s.workerCursors, tenantID)
	return n, nil
}

// --- BundleStore ---

func (s *Store) GetBundle(ctx context.Context, tenantID, workerID string, version int) (*v1.Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bundles[bundleKey{tenantID, workerID, version}]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (s *Store) PutBundle(ctx context.Context, tenantID, workerID string, version int, b *v1.Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.bundles[bundleKey{tenantID, workerID, version}] = &cp
	return nil
}

func (s *Store) DeleteBundle(ctx context.Context, tenantID, workerID string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bundles, bundleKey{tenantID, workerID, version})
	return nil
}

func (s *Store) DeleteAllBundles(ctx context.Context, tenantID, workerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.bundles {
		if k.tenantID == tenantID && k.workerID == workerID {
			delete(s.bundles, k)
			n++
		}
	}
	return n, nil
}

func (s *Store) GetBundleByFingerprint(ctx context.Context, fingerprint string) (*v1.Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.byFinger[fingerprint]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	cp := *entry.bundle
	return &cp, nil
}

func (s *Store) PutBundleByFingerprint(ctx context.Context, fingerprint string, b *v1.Bundle, ttlSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	entry := fingerprintEntry{bundle: &cp}
	if ttlSeconds > 0 {
		entry.expiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	}
	s.byFinger[fingerprint] = entry
	return nil
}

func (s *Store) ListBundleWorkerIDs(ctx context.Context, tenantID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for k := range s.bundles {
		if k.tenantID == tenantID && !seen[k.workerID] {
			seen[k.workerID] = true
			out = append(out, k.workerID)
		}
	}
	return out, nil
}

// --- HostnameStore ---

func (s *Store) GetHostname(ctx context.Context, hostname string) (*v1.HostnameRoute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.hostnames[hostname]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *Store) PutHostname(ctx context.Context, hostname string, r *v1.HostnameRoute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.hostnames[hostname] = &cp
	return nil
}

func (s *Store) DeleteHostname(ctx context.Context, hostname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hostnames, hostname)
	return nil
}

func (s *Store) ListHostnamesByWorker(ctx context.Context, tenantID, workerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for host, r := range s.hostnames {
		if r.TenantID == tenantID && r.WorkerID == workerID {
			out = append(out, host)
		}
	}
	return out, nil
}

func (s *Store) ListAllHostnames(ctx context.Context) ([]*v1.HostnameRoute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*v1.HostnameRoute, 0, len(s.hostnames))
	for _, r := range s.hostnames {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) DeleteHostnamesByWorker(ctx context.Context, tenantID, workerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for host, r := range s.hostnames {
		if r.TenantID == tenantID && r.WorkerID == workerID {
			delete(s.hostnames, host)
			n++
		}
	}
	return n, nil
}

// --- TemplateStore ---

func (s *Store) GetTemplate(ctx context.Context, id string) (*v1.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *Store) PutTemplate(ctx context.Context, id string, t *v1.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.templates[id] = &cp
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.templates, id)
	return nil
}

func (s *Store) ListTemplates(ctx context.Context, opts store.ListOptions) (store.ListResult[*v1.Template], error) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.templates))
	for k := range s.templates {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	page, next := s.templateCursors.page(keys, struct {
		Prefix string
		Limit  int
		Cursor string
	}(opts))

	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]*v1.Template, 0, len(page))
	for _, k := range page {
		if t, ok := s.templates[k]; ok {
			cp := *t
			items = append(items, &cp)
		}
	}
	return store.ListResult[*v1.Template]{Items: items, Cursor: next}, nil
}

// --- DefaultsStore ---

func (s *Store) GetDefaults(ctx context.Context) (*v1.PlatformDefaults, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.defaults == nil {
		return &v1.PlatformDefaults{}, nil
	}
	cp := *s.defaults
	return &cp, nil
}

func (s *Store) PutDefaults(ctx context.Context, d *v1.PlatformDefaults) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.defaults = &cp
	return nil
}

// --- AuxWorkerStore (shared implementation for both kinds) ---

func auxCursorKey(kind v1.AuxWorkerKind, tenantID string) string {
	return string(kind) + ":" + tenantID
}

func (s *Store) GetAuxWorker(ctx context.Context, kind v1.AuxWorkerKind, tenantID, id string) (*v1.AuxWorker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.aux[auxKey{tenantID, id, kind}]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (s *Store) PutAuxWorker(ctx context.Context, kind v1.AuxWorkerKind, tenantID, id string, w *v1.AuxWorker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.aux[auxKey{tenantID, id, kind}] = &cp
	return nil
}

func (s *Store) DeleteAuxWorker(ctx context.Context, kind v1.AuxWorkerKind, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.aux, auxKey{tenantID, id, kind})
	return nil
}

func (s *Store) ListAuxWorkers(ctx context.Context, kind v1.AuxWorkerKind, tenantID string, opts store.ListOptions) (store.ListResult[*v1.AuxWorker], error) {
	s.mu.RLock()
	keys := make([]string, 0)
	for k := range s.aux {
		if k.tenantID == tenantID && k.kind == kind {
			keys = append(keys, k.id)
		}
	}
	ck := auxCursorKey(kind, tenantID)
	cursors, ok := s.auxCursors[ck]
	s.mu.RUnlock()
	if !ok {
		s.mu.Lock()
		cursors, ok = s.auxCursors[ck]
		if !ok {
			cursors = newCursorRegistry()
			s.auxCursors[ck] = cursors
		}
		s.mu.Unlock()
	}

	page, next := cursors.page(keys, struct {
		Prefix string
		Limit  int
		Cursor string
	}(opts))

	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]*v1.AuxWorker, 0, len(page))
	for _, id := range page {
		if w, ok := s.aux[auxKey{tenantID, id, kind}]; ok {
			cp := *w
			items = append(items, &cp)
		}
	}
	return store.ListResult[*v1.AuxWorker]{Items: items, Cursor: next}, nil
}

func (s *Store) DeleteAllAuxWorkers(ctx context.Context, kind v1.AuxWorkerKind, tenantID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.aux {
		if k.tenantID == tenantID && k.kind == kind {
			delete(s.aux, k)
			n++
		}
	}
	delete(s.auxCursors, auxCursorKey(kind, tenantID))
	return n, nil
}
