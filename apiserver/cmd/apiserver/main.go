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

package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/amartyaa/workerplatform/apiserver/internal/api"
	"github.com/amartyaa/workerplatform/internal/bundler/simple"
	"github.com/amartyaa/workerplatform/internal/cache"
	"github.com/amartyaa/workerplatform/internal/loader/inproc"
	"github.com/amartyaa/workerplatform/internal/platform"
	"github.com/amartyaa/workerplatform/internal/store/memstore"
)

func main() {
	mode := os.Getenv("APISERVER_MODE") // "release" or unset (defaults to debug)
	if mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()
	logger := zapr.NewLogger(zl)

	s := memstore.New()
	p := platform.New(platform.Deps{
		Log:         logger,
		Tenants:     s.Tenants(),
		Workers:     s.Workers(),
		Bundles:     s.Bundles(),
		Hostnames:   s.Hostnames(),
		Templates:   s.Templates(),
		Defaults:    s.Defaults(),
		Outbound:    s.OutboundWorkers(),
		Tail:        s.TailWorkers(),
		BundleCache: cache.New(s.Bundles(), simple.New()),
		Loader:      inproc.New(),
	})

	r := api.NewRouter(p, logger)

	port := os.Getenv("APISERVER_PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("starting apiserver", "port", port, "mode", mode)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
