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

// createTenantRequest is {id, ...ConfigPartial} flattened onto the wire.
type createTenantRequest struct {
	ID string `json:"id"`
	v1.ConfigPartial
}

func (s *server) listTenants(c *gin.Context) {
	res, err := s.p.ListTenants(c.Request.Context(), listOptionsFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) createTenant(c *gin.Context) {
	var req createTenantRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing tenant id"})
		return
	}

	t, err := s.p.CreateTenant(c.Request.Context(), req.ID, req.ConfigPartial)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *server) getTenant(c *gin.Context) {
	t, err := s.p.GetTenant(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *server) updateTenant(c *gin.Context) {
	var partial v1.ConfigPartial
	if err := c.BindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	t, err := s.p.UpdateTenant(c.Request.Context(), c.Param("id"), partial)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *server) deleteTenant(c *gin.Context) {
	if err := s.p.DeleteTenant(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
