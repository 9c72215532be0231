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
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/amartyaa/workerplatform/api/v1"
)

type runRequest struct {
	Files    map[string]string `json:"files"`
	Options  v1.ConfigPartial  `json:"options,omitempty"`
	TenantID string            `json:"tenantId,omitempty"`
	Build    v1.BuildOptions   `json:"build,omitempty"`
	Request  fetchRequest      `json:"request,omitempty"`
}

type proxiedResponse struct {
	Status  int                 `json:"status"`
	Headers map[string][]string `json:"headers"`
	Body    string              `json:"body"`
}

type runTiming struct {
	BuildTime string `json:"buildTime"`
	LoadTime  string `json:"loadTime"`
	RunTime   string `json:"runTime"`
	Total     string `json:"total"`
	Cached    bool   `json:"cached"`
}

type runResult struct {
	BuildInfo   gin.H           `json:"buildInfo"`
	Response    proxiedResponse `json:"response"`
	WorkerError string          `json:"workerError,omitempty"`
	Timing      runTiming       `json:"timing"`
}

// POST /api/run — spec.md §6: ephemeral build + cold start + dispatch,
// no Worker or HostnameRoute record is ever written.
func (s *server) runEphemeral(c *gin.Context) {
	var req runRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	httpReq, err := buildRequest(c, req.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.p.RunEphemeral(c.Request.Context(), req.TenantID, req.Files, req.Options, req.Build, "", httpReq)
	if err != nil {
		writeError(c, err)
		return
	}
	defer res.Response.Body.Close()

	body, _ := io.ReadAll(res.Response.Body)
	headers := map[string][]string(res.Response.Header)

	var workerErr string
	if res.Response.StatusCode >= 500 {
		workerErr = string(body)
	}

	c.JSON(http.StatusOK, runResult{
		BuildInfo: gin.H{"mainModule": res.MainModule, "cached": res.Cached},
		Response: proxiedResponse{
			Status:  res.Response.StatusCode,
			Headers: headers,
			Body:    string(body),
		},
		WorkerError: workerErr,
		Timing: runTiming{
			BuildTime: res.Timing.BuildTime.String(),
			LoadTime:  res.Timing.LoadTime.String(),
			RunTime:   res.Timing.RunTime.String(),
			Total:     res.Timing.Total.String(),
			Cached:    res.Timing.Cached,
		},
	})
}
