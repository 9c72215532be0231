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

// Package api is the outward HTTP surface (spec.md §6): a thin Gin layer
// over the internal/platform façade, mirroring the teacher's bff/main.go
// middleware shape but with the mode=k8s|mock branch replaced by a single
// in-process Platform the server owns.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/amartyaa/workerplatform/internal/platform"
)

// server carries the façade and logger every handler closes over.
type server struct {
	p   *platform.Platform
	log logr.Logger
}

// NewRouter builds the full route table against p.
func NewRouter(p *platform.Platform, log logr.Logger) *gin.Engine {
	s := &server{p: p, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	r.Use(authMiddleware())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	r.GET("/api/defaults", s.getDefaults)
	r.PUT("/api/defaults", s.updateDefaults)

	r.GET("/api/tenants", s.listTenants)
	r.POST("/api/tenants", s.createTenant)
	r.GET("/api/tenants/:id", s.getTenant)
	r.PUT("/api/tenants/:id", s.updateTenant)
	r.DELETE("/api/tenants/:id", s.deleteTenant)

	r.GET("/api/tenants/:id/workers", s.listWorkers)
	r.POST("/api/tenants/:id/workers", s.createWorker)
	r.GET("/api/tenants/:id/workers/:wid", s.getWorker)
	r.PUT("/api/tenants/:id/workers/:wid", s.updateWorker)
	r.DELETE("/api/tenants/:id/workers/:wid", s.deleteWorker)
	r.POST("/api/tenants/:id/workers/:wid/fetch", s.fetchWorker)
	r.POST("/api/tenants/:id/workers/:wid/hostnames", s.addHostnames)
	r.DELETE("/api/tenants/:id/workers/:wid/hostnames", s.removeHostnames)

	r.POST("/api/run", s.runEphemeral)

	r.GET("/api/outbound-workers/:tenantId", s.listAuxWorkers(auxOutbound))
	r.POST("/api/outbound-workers/:tenantId", s.createAuxWorker(auxOutbound))
	r.GET("/api/outbound-workers/:tenantId/:id", s.getAuxWorker(auxOutbound))
	r.PUT("/api/outbound-workers/:tenantId/:id", s.updateAuxWorker(auxOutbound))
	r.DELETE("/api/outbound-workers/:tenantId/:id", s.deleteAuxWorker(auxOutbound))

	r.GET("/api/tail-workers/:tenantId", s.listAuxWorkers(auxTail))
	r.POST("/api/tail-workers/:tenantId", s.createAuxWorker(auxTail))
	r.GET("/api/tail-workers/:tenantId/:id", s.getAuxWorker(auxTail))
	r.PUT("/api/tail-workers/:tenantId/:id", s.updateAuxWorker(auxTail))
	r.DELETE("/api/tail-workers/:tenantId/:id", s.deleteAuxWorker(auxTail))

	r.GET("/api/templates", s.listTemplates)
	r.POST("/api/templates", s.createTemplate)
	r.GET("/api/templates/:id", s.getTemplate)
	r.PUT("/api/templates/:id", s.updateTemplate)
	r.DELETE("/api/templates/:id", s.deleteTemplate)
	r.POST("/api/templates/:id/generate", s.generateFromTemplate)

	return r
}
