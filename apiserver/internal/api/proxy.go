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
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// fetchRequest is the {method, path, headers, body} shape spec.md §6
// assigns to POST .../fetch and POST /api/run.
type fetchRequest struct {
	Method  string              `json:"method"`
	Path    string              `json:"path"`
	Headers map[string][]string `json:"headers"`
	Body    string              `json:"body"`
}

// buildRequest turns a fetchRequest into the *http.Request the façade's
// Fetch/RunEphemeral dispatch against the worker's Fetcher.
func buildRequest(ctx *gin.Context, fr fetchRequest) (*http.Request, error) {
	method := fr.Method
	if method == "" {
		method = http.MethodGet
	}
	path := fr.Path
	if path == "" {
		path = "/"
	}

	req, err := http.NewRequestWithContext(ctx.Request.Context(), method, path, bytes.NewBufferString(fr.Body))
	if err != nil {
		return nil, err
	}
	for k, vs := range fr.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// writeProxiedResponse copies a worker Fetcher's *http.Response onto the
// Gin response writer unchanged, per spec.md §7: the façade surfaces the
// worker's Response as-is, workerError detection is left to the caller.
func writeProxiedResponse(c *gin.Context, resp *http.Response) {
	defer resp.Body.Close()
	for k, vs := range resp.Header {
		for _, v := range vs {
			c.Writer.Header().Add(k, v)
		}
	}
	c.Writer.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(c.Writer, resp.Body)
}
