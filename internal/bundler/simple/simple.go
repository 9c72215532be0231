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

// Package simple is the deterministic reference Bundler used by tests and
// by runEphemeral when no production Bundler is configured. It performs no
// real compilation and no concatenation: it picks an entry point and copies
// each input file into its own module. The actual compiler is an external
// collaborator per spec §1.
package simple

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/bundler"
	"github.com/amartyaa/workerplatform/internal/perr"
)

// Bundler is the reference implementation of bundler.Bundler.
type Bundler struct{}

// New returns a ready-to-use reference Bundler.
func New() *Bundler { return &Bundler{} }

var multiSpace = regexp.MustCompile(`[ \t]+`)

// Build resolves the entry point (opts.EntryPoint, else package.json's
// "main", else the lexically first file other than package.json), then
// copies every file into
// Modules verbatim (or whitespace-collapsed when Minify is set).
func (b *Bundler) Build(ctx context.Context, files map[string]string, opts v1.BuildOptions) (bundler.Output, error) {
	select {
	case <-ctx.Done():
		return bundler.Output{}, perr.Cancel()
	default:
	}

	if len(files) == 0 {
		return bundler.Output{}, perr.Build("no input files", "")
	}

	main, err := resolveEntryPoint(files, opts)
	if err != nil {
		return bundler.Output{}, err
	}

	modules := make(map[string]string, len(files))
	var warnings []string
	for path, content := range files {
		if opts.Minify {
			content = minify(content)
		}
		modules[path] = content
	}
	if len(opts.Externals) > 0 {
		warnings = append(warnings, "externals are not resolved by the reference bundler: "+strings.Join(opts.Externals, ", "))
	}

	return bundler.Output{MainModule: main, Modules: modules, Warnings: warnings}, nil
}

func resolveEntryPoint(files map[string]string, opts v1.BuildOptions) (string, error) {
	if opts.EntryPoint != "" {
		if _, ok := files[opts.EntryPoint]; !ok {
			return "", perr.Build("entryPoint \""+opts.EntryPoint+"\" not found among input files", "")
		}
		return opts.EntryPoint, nil
	}

	if pkg, ok := files["package.json"]; ok {
		var manifest struct {
			Main string `json:"main"`
		}
		if err := json.Unmarshal([]byte(pkg), &manifest); err != nil {
			return "", perr.Build("package.json is not valid JSON: "+err.Error(), "")
		}
		if manifest.Main != "" {
			if _, ok := files[manifest.Main]; !ok {
				return "", perr.Build("package.json main \""+manifest.Main+"\" not found among input files", "")
			}
			return manifest.Main, nil
		}
	}

	// Default: the lexically first non-manifest file, so the choice is
	// stable across runs (spec §4.2 determinism requirement).
	paths := make([]string, 0, len(files))
	for p := range files {
		if p == "package.json" {
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return "", perr.Build("no entry point could be resolved", "")
	}
	sort.Strings(paths)
	return paths[0], nil
}

func minify(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = multiSpace.ReplaceAllString(strings.TrimSpace(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
