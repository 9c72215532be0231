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

	v1 "github.com/amartyaa/workerplatform/api/v1"
)

type templateRequest struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Files       map[string]string `json:"files"`
	Slots       []v1.Slot         `json:"slots"`
	Defaults    *v1.ConfigPartial `json:"defaults,omitempty"`
}

func (s *server) listTemplates(c *gin.Context) {
	res, err := s.p.ListTemplates(c.Request.Context(), listOptionsFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) createTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing template id"})
		return
	}

	t, err := s.p.RegisterTemplate(c.Request.Context(), req.ID, req.Name, req.Description, req.Files, req.Slots, req.Defaults)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *server) getTemplate(c *gin.Context) {
	t, err := s.p.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *server) updateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	t, err := s.p.UpdateTemplate(c.Request.Context(), c.Param("id"), req.Files, req.Slots, req.Defaults)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *server) deleteTemplate(c *gin.Context) {
	if err := s.p.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// generateFromTemplate interpolates a template's files with supplied slot
// values (preview) or, when tenantId+workerId are given, materializes a
// real worker from it in one call (spec.md §6's "POST /:id/generate").
type generateRequest struct {
	Values    map[string]string `json:"values"`
	TenantID  string            `json:"tenantId,omitempty"`
	WorkerID  string            `json:"workerId,omitempty"`
	Overrides v1.ConfigPartial  `json:"overrides,omitempty"`
	Hostnames []string          `json:"hostnames,omitempty"`
	Build     v1.BuildOptions   `json:"build,omitempty"`
}

func (s *server) generateFromTemplate(c *gin.Context) {
	var req generateRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if req.TenantID == "" || req.WorkerID == "" {
		files, err := s.p.PreviewTemplateFiles(c.Request.Context(), c.Param("id"), req.Values)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": files})
		return
	}

	w, err := s.p.CreateWorkerFromTemplate(c.Request.Context(), req.TenantID, c.Param("id"), req.WorkerID, req.Values, req.Overrides, req.Hostnames, req.Build)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}
