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

// Package v1 defines the data types shared by every layer of the platform:
// tenants, workers, bundles, hostname routes and templates.
package v1

import "time"

// Limits caps a worker or tenant's resource consumption. Any sub-field left
// nil is considered unset during config resolution.
type Limits struct {
	CPUMs        *int `json:"cpuMs,omitempty"`
	Subrequests  *int `json:"subrequests,omitempty"`
}

// ConfigPartial carries the fields shared by PlatformDefaults, Tenant and
// Worker that participate in config inheritance (spec §4.5).
type ConfigPartial struct {
	Env                map[string]string `json:"env,omitempty"`
	CompatibilityDate  string            `json:"compatibilityDate,omitempty"`
	CompatibilityFlags []string          `json:"compatibilityFlags,omitempty"`
	Limits             *Limits           `json:"limits,omitempty"`
	GlobalOutbound     string            `json:"globalOutbound,omitempty"`
	Tails              []string          `json:"tails,omitempty"`
}

// PlatformDefaults is the process-wide fallback configuration.
type PlatformDefaults struct {
	ConfigPartial
}

// Tenant is the logical owner of a set of workers.
type Tenant struct {
	ID string `json:"id"`
	ConfigPartial
	Metadata TenantMetadata `json:"metadata"`
}

// TenantMetadata carries timestamps not part of the configuration itself.
type TenantMetadata struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Worker is a compilable unit owned by exactly one tenant.
type Worker struct {
	TenantID string `json:"tenantId"`
	ID       string `json:"id"`
	ConfigPartial
	Files     map[string]string `json:"files"`
	Hostnames []string          `json:"hostnames,omitempty"`
	Metadata  WorkerMetadata    `json:"metadata"`
}

// WorkerMetadata carries the monotonic version and timestamps.
type WorkerMetadata struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"version"`
}

// Bundle is the compiled form of a Worker at a specific version.
type Bundle struct {
	MainModule string            `json:"mainModule"`
	Modules    map[string]string `json:"modules"`
	Version    int               `json:"version"`
	BuiltAt    time.Time         `json:"builtAt"`
}

// HostnameRoute is an exclusive hostname -> (tenant, worker) binding.
type HostnameRoute struct {
	Hostname string `json:"hostname"`
	TenantID string `json:"tenantId"`
	WorkerID string `json:"workerId"`
}

// Slot is a named, defaultable placeholder inside a Template's files.
type Slot struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Default     string `json:"default,omitempty"`
	Example     string `json:"example,omitempty"`
}

// Template is a reusable worker skeleton with named slots.
type Template struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Files       map[string]string `json:"files"`
	Slots       []Slot            `json:"slots"`
	Defaults    *ConfigPartial    `json:"defaults,omitempty"`
}

// TemplateMetadata is the projection of a Template used by list endpoints.
type TemplateMetadata struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	SlotNames   []string `json:"slotNames"`
}

// EffectiveConfig is the fully resolved configuration handed to the Loader.
type EffectiveConfig struct {
	Env                map[string]string `json:"env"`
	CompatibilityDate  string            `json:"compatibilityDate"`
	CompatibilityFlags []string          `json:"compatibilityFlags"`
	Limits             *Limits           `json:"limits,omitempty"`
	GlobalOutbound     string            `json:"globalOutbound,omitempty"`
	Tails              []string          `json:"tails"`
}

// BuildOptions configures the Bundler (spec §4.2).
type BuildOptions struct {
	Bundle     bool     `json:"bundle"`
	Minify     bool     `json:"minify"`
	Sourcemap  bool     `json:"sourcemap"`
	EntryPoint string   `json:"entryPoint,omitempty"`
	Externals  []string `json:"externals,omitempty"`
}

// DefaultCompatibilityDate is the fallback used when no layer defines one.
const DefaultCompatibilityDate = "2026-01-24"

// AuxWorkerKind distinguishes the two auxiliary artifact shapes (spec
// Glossary: "Outbound worker", "Tail worker") that share a Worker-like
// CRUD surface but carry no hostnames of their own.
type AuxWorkerKind string

const (
	AuxWorkerOutbound AuxWorkerKind = "outbound"
	AuxWorkerTail     AuxWorkerKind = "tail"
)

// AuxWorker is an outbound interceptor or tail observer: referenced by
// name from EffectiveConfig.GlobalOutbound/Tails, dispatched the same way
// a Worker is, but never bound to a hostname.
type AuxWorker struct {
	TenantID string            `json:"tenantId"`
	ID       string            `json:"id"`
	Kind     AuxWorkerKind     `json:"kind"`
	Files    map[string]string `json:"files"`
	Metadata WorkerMetadata    `json:"metadata"`
}
