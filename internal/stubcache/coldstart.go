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

package stubcache

import (
	"context"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/loader"
	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/amartyaa/workerplatform/internal/store"
)

// versionedColdStart fetches the Bundle at (tenantID, workerID, version)
// from the BundleStore, never triggering a rebuild (spec §4.8 step 4). It
// is the struct-shaped cold-start callback the design notes (spec §9)
// call for: a small value carrying its dependencies plus a Prepare method,
// implementing loader.ColdStart.
type versionedColdStart struct {
	store    store.BundleStore
	tenantID string
	workerID string
	version  int
	config   v1.EffectiveConfig
}

func (c versionedColdStart) Prepare(ctx context.Context) (loader.Descriptor, error) {
	bundle, err := c.store.Get(ctx, c.tenantID, c.workerID, c.version)
	if err != nil {
		return loader.Descriptor{}, perr.Storage(err)
	}
	if bundle == nil {
		return loader.Descriptor{}, perr.Loader("missing bundle for %s/%s v%d", c.tenantID, c.workerID, c.version)
	}

	return loader.Descriptor{
		MainModule:         bundle.MainModule,
		Modules:            bundle.Modules,
		CompatibilityDate:  c.config.CompatibilityDate,
		CompatibilityFlags: c.config.CompatibilityFlags,
		Env:                c.config.Env,
		Limits:             c.config.Limits,
		GlobalOutbound:     c.config.GlobalOutbound,
		Tails:              c.config.Tails,
	}, nil
}

// fingerprintColdStart is the ephemeral-run counterpart: it fetches the
// fingerprint-keyed bundle instead of a versioned one (spec §4.9
// runEphemeral), and never triggers a rebuild either.
type fingerprintColdStart struct {
	store       store.BundleStore
	fingerprint string
	config      v1.EffectiveConfig
}

func (c fingerprintColdStart) Prepare(ctx context.Context) (loader.Descriptor, error) {
	bundle, err := c.store.GetByFingerprint(ctx, c.fingerprint)
	if err != nil {
		return loader.Descriptor{}, perr.Storage(err)
	}
	if bundle == nil {
		return loader.Descriptor{}, perr.Loader("missing ephemeral bundle for fingerprint %s", c.fingerprint)
	}

	return loader.Descriptor{
		MainModule:         bundle.MainModule,
		Modules:            bundle.Modules,
		CompatibilityDate:  c.config.CompatibilityDate,
		CompatibilityFlags: c.config.CompatibilityFlags,
		Env:                c.config.Env,
		Limits:             c.config.Limits,
		GlobalOutbound:     c.config.GlobalOutbound,
		Tails:              c.config.Tails,
	}, nil
}
