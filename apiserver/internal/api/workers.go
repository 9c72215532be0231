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

type createWorkerRequest struct {
	ID string `json:"id"`
	v1.ConfigPartial
	Files     map[string]string `json:"files"`
	Hostnames []string          `json:"hostnames,omitempty"`
	Build     v1.BuildOptions   `json:"build,omitempty"`
}

type updateWorkerRequest struct {
	v1.ConfigPartial
	Files map[string]string `json:"files,omitempty"`
	Build v1.BuildOptions   `json:"build,omitempty"`
}

func (s *server) listWorkers(c *gin.Context) {
	res, err := s.p.ListWorkers(c.Request.Context(), c.Param("id"), listOptionsFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) createWorker(c *gin.Context) {
	var req createWorkerRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing worker id"})
		return
	}

	w, err := s.p.CreateWorker(c.Request.Context(), c.Param("id"), req.ID, req.ConfigPartial, req.Files, req.Hostnames, req.Build)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (s *server) getWorker(c *gin.Context) {
	w, err := s.p.GetWorker(c.Request.Context(), c.Param("id"), c.Param("wid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *server) updateWorker(c *gin.Context) {
	var req updateWorkerRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	w, err := s.p.UpdateWorker(c.Request.Context(), c.Param("id"), c.Param("wid"), req.ConfigPartial, req.Files, req.Build)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *server) deleteWorker(c *gin.Context) {
	if err := s.p.DeleteWorker(c.Request.Context(), c.Param("id"), c.Param("wid")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type hostnamesRequest struct {
	Hostnames []string `json:"hostnames"`
}

func (s *server) addHostnames(c *gin.Context) {
	var req hostnamesRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	w, err := s.p.AddHostnames(c.Request.Context(), c.Param("id"), c.Param("wid"), req.Hostnames)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *server) removeHostnames(c *gin.Context) {
	var req hostnamesRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	w, err := s.p.RemoveHostnames(c.Request.Context(), c.Param("id"), c.Param("wid"), req.Hostnames)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *server) fetchWorker(c *gin.Context) {
	var fr fetchRequest
	if err := c.BindJSON(&fr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req, err := buildRequest(c, fr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := s.p.Fetch(c.Request.Context(), c.Param("id"), c.Param("wid"), "", req)
	if err != nil {
		writeError(c, err)
		return
	}
	writeProxiedResponse(c, resp)
}
