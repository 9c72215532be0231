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

// Package hashutil implements the platform's canonical content fingerprint
// (spec §4.3), used as the cache key for compiled bundles.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	v1 "github.com/amartyaa/workerplatform/api/v1"
)

// Fingerprint returns the first 16 hex characters of the SHA-256 of the
// canonical serialization of files and options. Collision risk at this
// truncation only causes incorrect cache hits on literally identical
// inputs, which is the desired outcome (spec §4.3).
func Fingerprint(files map[string]string, opts v1.BuildOptions) string {
	h := sha256.New()
	writeCanonical(h, files, opts)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)[:16]
}

func writeCanonical(w interface{ Write([]byte) (int, error) }, files map[string]string, opts v1.BuildOptions) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		fmt.Fprintf(w, "file:%s\x00%s\x00", p, files[p])
	}

	fmt.Fprintf(w, "opt:bundle=%t\x00", opts.Bundle)
	fmt.Fprintf(w, "opt:minify=%t\x00", opts.Minify)
	fmt.Fprintf(w, "opt:sourcemap=%t\x00", opts.Sourcemap)
	fmt.Fprintf(w, "opt:entryPoint=%s\x00", opts.EntryPoint)

	// Externals is an ordered list, not a set: position may matter to the
	// bundler (resolution precedence), so it is serialized as-given rather
	// than sorted.
	fmt.Fprintf(w, "opt:externals=%s\x00", strings.Join(opts.Externals, ","))
}
