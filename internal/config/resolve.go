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

// Package config implements the deterministic defaults -> tenant -> worker
// config merge (spec §4.5). Resolve is pure and side-effect-free.
package config

import (
	"github.com/imdario/mergo"

	v1 "github.com/amartyaa/workerplatform/api/v1"
)

// Resolve merges defaults, tenant and an optional worker partial into one
// EffectiveConfig, applying the per-field rules in spec §4.5. worker may
// be nil (e.g. for runEphemeral calls with no persisted Worker record).
func Resolve(defaults v1.PlatformDefaults, tenant v1.Tenant, worker *v1.ConfigPartial) (v1.EffectiveConfig, error) {
	var workerPartial v1.ConfigPartial
	if worker != nil {
		workerPartial = *worker
	}

	env, err := mergeEnv(defaults.Env, tenant.Env, workerPartial.Env)
	if err != nil {
		return v1.EffectiveConfig{}, err
	}

	limits, err := mergeLimits(defaults.Limits, tenant.Limits, workerPartial.Limits)
	if err != nil {
		return v1.EffectiveConfig{}, err
	}

	return v1.EffectiveConfig{
		Env:                env,
		CompatibilityDate:  firstDefined(workerPartial.CompatibilityDate, tenant.CompatibilityDate, defaults.CompatibilityDate, v1.DefaultCompatibilityDate),
		CompatibilityFlags: dedupConcat(defaults.CompatibilityFlags, tenant.CompatibilityFlags, workerPartial.CompatibilityFlags),
		Limits:             limits,
		GlobalOutbound:     firstDefined(workerPartial.GlobalOutbound, tenant.GlobalOutbound, defaults.GlobalOutbound),
		Tails:              concat(defaults.Tails, tenant.Tails, workerPartial.Tails),
	}, nil
}

// mergeEnv performs the three-way shallow merge with later keys
// overwriting earlier ones: worker wins over tenant wins over defaults.
func mergeEnv(defaultsEnv, tenantEnv, workerEnv map[string]string) (map[string]string, error) {
	merged := map[string]string{}
	if err := mergo.Merge(&merged, defaultsEnv, mergo.WithOverride); err != nil {
		return nil, err
	}
	if err := mergo.Merge(&merged, tenantEnv, mergo.WithOverride); err != nil {
		return nil, err
	}
	if err := mergo.Merge(&merged, workerEnv, mergo.WithOverride); err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return map[string]string{}, nil
	}
	return merged, nil
}

// mergeLimits performs the three-way shallow merge per sub-field; if all
// three are absent the result is nil (spec §4.5).
func mergeLimits(defaultsLimits, tenantLimits, workerLimits *v1.Limits) (*v1.Limits, error) {
	if defaultsLimits == nil && tenantLimits == nil && workerLimits == nil {
		return nil, nil
	}

	merged := &v1.Limits{}
	for _, src := range []*v1.Limits{defaultsLimits, tenantLimits, workerLimits} {
		if src == nil {
			continue
		}
		if err := mergo.Merge(merged, src, mergo.WithOverride); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// firstDefined returns the first non-empty string, falling back to the
// final value (the spec's hard-coded fallback) if all else is empty.
func firstDefined(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// dedupConcat concatenates defaults ++ tenant ++ worker, preserving
// first-seen order and dropping later duplicates (spec §4.5 flags rule).
func dedupConcat(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, v := range list {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// concat concatenates defaults ++ tenant ++ worker, preserving duplicates
// (spec §4.5 tails rule: length-preserving).
func concat(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		out = append(out, list...)
	}
	return out
}
