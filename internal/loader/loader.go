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

// Package loader defines the adapter boundary to the runtime that
// executes compiled modules (spec §6 "To the Loader"). The runtime
// itself is an external collaborator, out of scope per spec §1; only the
// interfaces and a minimal in-process reference implementation
// (internal/loader/inproc) live here.
package loader

import (
	"context"
	"net/http"

	v1 "github.com/amartyaa/workerplatform/api/v1"
)

// Descriptor is what a ColdStart callback hands to the Loader to build a
// Stub (spec §6).
type Descriptor struct {
	MainModule         string
	Modules            map[string]string
	CompatibilityDate  string
	CompatibilityFlags []string
	Env                map[string]string
	Limits             *v1.Limits
	GlobalOutbound     string
	Tails              []string
}

// ColdStart is the struct-shaped replacement for a closure-shaped
// cold-start callback (spec §9 design note): it carries everything a
// Loader needs to materialize a Descriptor without the core exposing a
// bare closure. Implementations must be idempotent and side-effect-light,
// since a Loader may invoke Prepare at any time.
type ColdStart interface {
	Prepare(ctx context.Context) (Descriptor, error)
}

// Stub is an opaque, loader-returned handle representing a runnable
// worker. The core never inspects it beyond GetEntrypoint.
type Stub interface {
	GetEntrypoint(name string) (Fetcher, error)
}

// Fetcher dispatches one request against a Stub's chosen entrypoint.
type Fetcher interface {
	Dispatch(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Loader is the opaque runtime boundary. Get returns a cached or freshly
// cold-started Stub for name, invoking coldStart.Prepare on a miss.
type Loader interface {
	Get(ctx context.Context, name string, coldStart ColdStart) (Stub, error)
}
