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

package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amartyaa/workerplatform/internal/store"
)

// listOptionsFromQuery reads `cursor` and `limit` query params the way
// every paginated GET in spec.md §6 accepts them.
func listOptionsFromQuery(c *gin.Context) store.ListOptions {
	opts := store.ListOptions{Cursor: c.Query("cursor")}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			opts.Limit = n
		}
	}
	return opts
}
