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

// Package metrics exposes the Prometheus collectors for the platform core.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// BuildDurationHistogram measures time spent inside the Bundler.
	BuildDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platform_build_seconds",
			Help:    "Time taken to compile a worker's source tree",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms .. ~20s
		},
		[]string{"outcome"},
	)

	// BundleCacheHits tracks bundle cache hit/miss outcomes.
	BundleCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_bundle_cache_total",
			Help: "Bundle cache lookups by outcome",
		},
		[]string{"outcome"}, // hit | miss | inflight_shared
	)

	// StubCacheHits tracks stub cache hit/miss outcomes.
	StubCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_stub_cache_total",
			Help: "Stub cache lookups by outcome",
		},
		[]string{"outcome"}, // hit | miss
	)

	// FetchDurationHistogram measures end-to-end fetch/runEphemeral latency.
	FetchDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platform_fetch_seconds",
			Help:    "Duration of a dispatched fetch, end to end",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"}, // worker | ephemeral
	)

	// HostnameConflicts tracks rejected hostname bindings.
	HostnameConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_hostname_conflicts_total",
			Help: "Total hostname bindings rejected due to exclusivity",
		},
		[]string{"tenant"},
	)

	// ActiveWorkersGauge holds a live worker count per tenant, as set through
	// SetActiveWorkers. No façade operation calls SetActiveWorkers, so the
	// gauge has no series unless a caller sets it.
	ActiveWorkersGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "platform_active_workers",
			Help: "Number of active workers by tenant",
		},
		[]string{"tenant"},
	)

	// OperationErrors tracks façade operation failures by kind.
	OperationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_operation_errors_total",
			Help: "Total façade operation errors by error kind",
		},
		[]string{"operation", "kind"},
	)
)

// Registry is the registry metrics are added to; callers that run an
// /metrics endpoint register this with their own HTTP mux.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		BuildDurationHistogram,
		BundleCacheHits,
		StubCacheHits,
		FetchDurationHistogram,
		HostnameConflicts,
		ActiveWorkersGauge,
		OperationErrors,
	)
}

// RecordBuild records a Bundler invocation's duration and outcome.
func RecordBuild(outcome string, seconds float64) {
	BuildDurationHistogram.WithLabelValues(outcome).Observe(seconds)
}

// RecordBundleCache records a bundle cache lookup outcome.
func RecordBundleCache(outcome string) {
	BundleCacheHits.WithLabelValues(outcome).Inc()
}

// RecordStubCache records a stub cache lookup outcome.
func RecordStubCache(outcome string) {
	StubCacheHits.WithLabelValues(outcome).Inc()
}

// RecordFetch records a dispatched fetch's duration.
func RecordFetch(kind string, seconds float64) {
	FetchDurationHistogram.WithLabelValues(kind).Observe(seconds)
}

// RecordHostnameConflict records a rejected hostname binding.
func RecordHostnameConflict(tenant string) {
	HostnameConflicts.WithLabelValues(tenant).Inc()
}

// SetActiveWorkers sets the live worker gauge for a tenant.
func SetActiveWorkers(tenant string, n float64) {
	ActiveWorkersGauge.WithLabelValues(tenant).Set(n)
}

// RecordOperationError records a façade operation failure.
func RecordOperationError(operation, kind string) {
	OperationErrors.WithLabelValues(operation, kind).Inc()
}
