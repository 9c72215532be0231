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

// Package bundler defines the adapter boundary to the compiler/bundler
// (spec §4.2 / §6 "To the Bundler"). The real compiler is an external
// collaborator and is not implemented here; see internal/bundler/simple
// for the deterministic reference implementation used by tests and by
// runEphemeral when no production Bundler is wired in.
package bundler

import (
	"context"

	v1 "github.com/amartyaa/workerplatform/api/v1"
)

// Output is the result of a single build.
type Output struct {
	MainModule string
	Modules    map[string]string
	Warnings   []string
}

// Bundler compiles a file map into an Output. Implementations must be
// deterministic given identical files and options: same Modules mapping
// and MainModule for identical inputs (spec §4.2); this determinism is
// what makes the bundle cache (internal/cache) safe.
type Bundler interface {
	Build(ctx context.Context, files map[string]string, opts v1.BuildOptions) (Output, error)
}
