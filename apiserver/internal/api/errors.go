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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amartyaa/workerplatform/internal/perr"
)

// writeError maps a PlatformError's Kind to the status code spec.md §7
// assigns it. Any other error (for instance the multierr aggregate that
// DeleteTenant/DeleteWorker return when more than one cascade step fails)
// is answered with 500 and its message, without a kind.
func writeError(c *gin.Context, err error) {
	pe, ok := err.(*perr.PlatformError)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch pe.Kind {
	case perr.KindValidation:
		status = http.StatusBadRequest
	case perr.KindNotFound:
		status = http.StatusNotFound
	case perr.KindConflict:
		status = http.StatusConflict
	case perr.KindBuild:
		status = http.StatusUnprocessableEntity
	case perr.KindLoader, perr.KindStorage:
		status = http.StatusInternalServerError
	case perr.KindCancel:
		status = 499 // client closed request, nginx convention
	}

	body := gin.H{"error": pe.Message, "kind": pe.Kind}
	if pe.Stack != "" {
		body["stack"] = pe.Stack
	}
	c.JSON(status, body)
}
