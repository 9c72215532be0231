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

// Package cache implements the content-addressed bundle cache (spec §4.4):
// at-most-one concurrent build per fingerprint, read-through-write-through
// against a BundleStore, best-effort write-failure tolerance.
package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/bundler"
	"github.com/amartyaa/workerplatform/internal/hashutil"
	"github.com/amartyaa/workerplatform/internal/metrics"
	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/amartyaa/workerplatform/internal/store"
)

// DefaultEphemeralTTLSeconds is the recommended TTL for fingerprint-keyed
// entries produced by ephemeral runs (spec §4.4).
const DefaultEphemeralTTLSeconds = 3600

// BundleCache maps fingerprint -> compiled Bundle, guaranteeing at most
// one concurrent Bundler invocation per fingerprint within this process.
type BundleCache struct {
	store   store.BundleStore
	build   bundler.Bundler
	group   singleflight.Group
	ttlSecs int
}

// New returns a BundleCache backed by the given store and Bundler.
func New(s store.BundleStore, b bundler.Bundler) *BundleCache {
	return &BundleCache{store: s, build: b, ttlSecs: DefaultEphemeralTTLSeconds}
}

// GetOrBuild is the only path the core uses to obtain a compiled Bundle
// for a fingerprint. Concurrent callers sharing a fingerprint observe one
// build outcome (spec §8 "Single-flight" law).
func (c *BundleCache) GetOrBuild(ctx context.Context, files map[string]string, opts v1.BuildOptions) (v1.Bundle, bool, error) {
	fp := hashutil.Fingerprint(files, opts)

	if existing, err := c.store.GetByFingerprint(ctx, fp); err != nil {
		return v1.Bundle{}, false, perr.Storage(err)
	} else if existing != nil {
		metrics.RecordBundleCache("hit")
		return *existing, true, nil
	}

	result, err, shared := c.group.Do(fp, func() (any, error) {
		return c.buildAndStore(ctx, fp, files, opts)
	})
	if shared {
		metrics.RecordBundleCache("inflight_shared")
	} else {
		metrics.RecordBundleCache("miss")
	}
	if err != nil {
		return v1.Bundle{}, false, err
	}
	return result.(v1.Bundle), false, nil
}

func (c *BundleCache) buildAndStore(ctx context.Context, fp string, files map[string]string, opts v1.BuildOptions) (v1.Bundle, error) {
	start := time.Now()
	out, err := c.build.Build(ctx, files, opts)
	if err != nil {
		metrics.RecordBuild("error", time.Since(start).Seconds())
		// Build errors are never cached; the next attempt retries (spec §4.4).
		return v1.Bundle{}, err
	}
	metrics.RecordBuild("success", time.Since(start).Seconds())

	bundle := v1.Bundle{
		MainModule: out.MainModule,
		Modules:    out.Modules,
		BuiltAt:    time.Now().UTC(),
	}

	// Write failures do not fail the call; the caller still receives the
	// built bundle (spec §4.4 "write-through").
	_ = c.store.PutByFingerprint(ctx, fp, &bundle, c.ttlSecs)

	return bundle, nil
}

// PutVersioned stores a bundle under its permanent (tenant, worker,
// version) key. Versioned writes never expire (spec §4.4).
func PutVersioned(ctx context.Context, s store.BundleStore, tenantID, workerID string, version int, b v1.Bundle) error {
	b.Version = version
	if err := s.Put(ctx, tenantID, workerID, version, &b); err != nil {
		return perr.Storage(err)
	}
	return nil
}
