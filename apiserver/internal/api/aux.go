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

const (
	auxOutbound = v1.AuxWorkerOutbound
	auxTail     = v1.AuxWorkerTail
)

type createAuxWorkerRequest struct {
	ID    string            `json:"id"`
	Files map[string]string `json:"files"`
}

// listAuxWorkers, createAuxWorker, etc. are parameterized by kind so one
// handler body serves both /api/outbound-workers and /api/tail-workers,
// the same "parallel CRUD" pair spec.md §6 describes.
func (s *server) listAuxWorkers(kind v1.AuxWorkerKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := s.p.ListAuxWorkers(c.Request.Context(), kind, c.Param("tenantId"), listOptionsFromQuery(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func (s *server) createAuxWorker(kind v1.AuxWorkerKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAuxWorkerRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
			return
		}

		w, err := s.p.RegisterAuxWorker(c.Request.Context(), kind, c.Param("tenantId"), req.ID, req.Files)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, w)
	}
}

func (s *server) getAuxWorker(kind v1.AuxWorkerKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := s.p.GetAuxWorker(c.Request.Context(), kind, c.Param("tenantId"), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, w)
	}
}

func (s *server) updateAuxWorker(kind v1.AuxWorkerKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Files map[string]string `json:"files"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		w, err := s.p.UpdateAuxWorker(c.Request.Context(), kind, c.Param("tenantId"), c.Param("id"), req.Files)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, w)
	}
}

func (s *server) deleteAuxWorker(kind v1.AuxWorkerKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.p.DeleteAuxWorker(c.Request.Context(), kind, c.Param("tenantId"), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
