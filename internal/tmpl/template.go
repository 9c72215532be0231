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

// Package tmpl implements slot discovery, validation and interpolation
// for Templates (spec §4.6). Interpolation is purely textual; this
// package never parses the worker source it substitutes into.
package tmpl

import (
	"regexp"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/perr"
)

var slotPattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// ExtractSlotNames returns the union of every {{name}} occurrence across
// all file contents.
func ExtractSlotNames(files map[string]string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, content := range files {
		for _, m := range slotPattern.FindAllStringSubmatch(content, -1) {
			name := m[1]
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Validate checks the slot closure invariant (spec §3 invariant 5):
// every {{name}} occurring in files must have a matching declared slot.
// It fails with a ValidationError naming the first offending slot.
func Validate(files map[string]string, slots []v1.Slot) error {
	declared := make(map[string]bool, len(slots))
	for _, s := range slots {
		declared[s.Name] = true
	}
	for _, name := range ExtractSlotNames(files) {
		if !declared[name] {
			return perr.Validation("template references undeclared slot %q", name)
		}
	}
	return nil
}

// Interpolate substitutes every {{name}} occurrence in files with the
// caller-supplied value, falling back to the slot's default when the
// caller omits it. A slot with neither a supplied value nor a default is
// a ValidationError.
func Interpolate(files map[string]string, slots []v1.Slot, values map[string]string) (map[string]string, error) {
	resolved := make(map[string]string, len(slots))
	for _, s := range slots {
		if v, ok := values[s.Name]; ok {
			resolved[s.Name] = v
			continue
		}
		if s.Default != "" {
			resolved[s.Name] = s.Default
			continue
		}
		return nil, perr.Validation("slot %q has no supplied value and no default", s.Name)
	}

	out := make(map[string]string, len(files))
	for path, content := range files {
		out[path] = slotPattern.ReplaceAllStringFunc(content, func(match string) string {
			name := slotPattern.FindStringSubmatch(match)[1]
			if v, ok := resolved[name]; ok {
				return v
			}
			// Occurrence with no declared slot: left verbatim here; Validate
			// is responsible for rejecting this case before interpolation
			// is ever reached from a write path.
			return match
		})
	}
	return out, nil
}

// Preview interpolates without any side effects or persistence; it is the
// same operation as Interpolate, exposed under the name spec §4.6 uses.
func Preview(files map[string]string, slots []v1.Slot, values map[string]string) (map[string]string, error) {
	return Interpolate(files, slots, values)
}
