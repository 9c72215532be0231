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
	"sort"
	"sync"

	"github.com/google/uuid"
)

// cursorRegistry hands out opaque uuid tokens for paginated list calls,
// remembering the remaining sorted keys behind each token so the caller
// never has to interpret the cursor's contents (spec §4.1).
type cursorRegistry struct {
	mu      sync.Mutex
	pending map[string][]string
}

func newCursorRegistry() *cursorRegistry {
	return &cursorRegistry{pending: make(map[string][]string)}
}

// page returns up to limit keys starting from cursor (or from the start of
// allKeys if cursor is empty), plus the next cursor ("" if exhausted).
func (c *cursorRegistry) page(allKeys []string, opts struct {
	Prefix string
	Limit  int
	Cursor string
}) ([]string, string) {
	keys := allKeys
	if opts.Cursor != "" {
		c.mu.Lock()
		remaining, ok := c.pending[opts.Cursor]
		delete(c.pending, opts.Cursor)
		c.mu.Unlock()
		if ok {
			keys = remaining
		} else {
			keys = nil
		}
	} else {
		keys = append([]string(nil), keys...)
		sort.Strings(keys)
		if opts.Prefix != "" {
			filtered := keys[:0:0]
			for _, k := range keys {
				if len(k) >= len(opts.Prefix) && k[:len(opts.Prefix)] == opts.Prefix {
					filtered = append(filtered, k)
				}
			}
			keys = filtered
		}
	}

	limit := opts.Limit
	if limit <= 0 || limit > len(keys) {
		limit = len(keys)
	}
	page := keys[:limit]
	rest := keys[limit:]

	if len(rest) == 0 {
		return page, ""
	}

	token := uuid.NewString()
	c.mu.Lock()
	c.pending[token] = rest
	c.mu.Unlock()
	return page, token
}
