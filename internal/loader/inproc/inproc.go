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

// Package inproc is a minimal reference Loader used by tests and by
// development deployments that have no real worker runtime wired in. It
// does not execute arbitrary tenant code (the real runtime is an external
// collaborator, out of scope per spec §1); it recognizes the trivial
// `new Response('...')` shape the reference bundler's own fixtures use
// and echoes that body back, which is enough to drive every seed
// scenario in spec §8 end to end.
package inproc

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"regexp"
	"sync"

	"github.com/amartyaa/workerplatform/internal/loader"
	"github.com/amartyaa/workerplatform/internal/perr"
)

var responsePattern = regexp.MustCompile(`new\s+Response\(\s*['"]([^'"]*)['"]`)

// Loader is the in-process reference implementation of loader.Loader.
type Loader struct {
	mu    sync.Mutex
	stubs map[string]loader.Stub
}

// New returns an empty in-process Loader.
func New() *Loader {
	return &Loader{stubs: make(map[string]loader.Stub)}
}

// Get returns the cached stub for name, cold-starting via coldStart on a
// miss. The loader's own cache is orthogonal to the platform's stub cache
// (spec §4.8); this reference Loader caches forever, matching the note
// that a cold-start callback may run at any time and must be idempotent.
func (l *Loader) Get(ctx context.Context, name string, coldStart loader.ColdStart) (loader.Stub, error) {
	l.mu.Lock()
	if s, ok := l.stubs[name]; ok {
		l.mu.Unlock()
		return s, nil
	}
	l.mu.Unlock()

	desc, err := coldStart.Prepare(ctx)
	if err != nil {
		return nil, perr.Loader("cold start failed for %q: %v", name, err)
	}

	s := &stub{descriptor: desc}

	l.mu.Lock()
	l.stubs[name] = s
	l.mu.Unlock()
	return s, nil
}

type stub struct {
	descriptor loader.Descriptor
}

func (s *stub) GetEntrypoint(name string) (loader.Fetcher, error) {
	return &fetcher{descriptor: s.descriptor}, nil
}

type fetcher struct {
	descriptor loader.Descriptor
}

func (f *fetcher) Dispatch(ctx context.Context, req *http.Request) (*http.Response, error) {
	body := "no response body found in main module"
	status := http.StatusOK
	if m := responsePattern.FindStringSubmatch(f.descriptor.Modules[f.descriptor.MainModule]); m != nil {
		body = m[1]
	} else {
		status = http.StatusInternalServerError
	}

	resp := &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
	return resp, nil
}
