package config

import (
	"testing"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/stretchr/testify/require"
)

func intp(n int) *int { return &n }

func TestResolveEnvAndFlags(t *testing.T) {
	defaults := v1.PlatformDefaults{ConfigPartial: v1.ConfigPartial{
		Env:                map[string]string{"A": "1", "B": "1"},
		CompatibilityFlags: []string{"a"},
	}}
	tenant := v1.Tenant{ConfigPartial: v1.ConfigPartial{
		Env:                map[string]string{"B": "2", "C": "2"},
		CompatibilityFlags: []string{"b", "a"},
	}}
	worker := &v1.ConfigPartial{
		Env:                map[string]string{"C": "3", "D": "3"},
		CompatibilityFlags: []string{"c"},
	}

	eff, err := Resolve(defaults, tenant, worker)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"A": "1", "B": "2", "C": "3", "D": "3"}, eff.Env)
	require.Equal(t, []string{"a", "b", "c"}, eff.CompatibilityFlags)
}

func TestResolveCompatibilityDateFallback(t *testing.T) {
	eff, err := Resolve(v1.PlatformDefaults{}, v1.Tenant{}, nil)
	require.NoError(t, err)
	require.Equal(t, v1.DefaultCompatibilityDate, eff.CompatibilityDate)
}

func TestResolveCompatibilityDatePrecedence(t *testing.T) {
	defaults := v1.PlatformDefaults{ConfigPartial: v1.ConfigPartial{CompatibilityDate: "2025-01-01"}}
	tenant := v1.Tenant{ConfigPartial: v1.ConfigPartial{CompatibilityDate: "2025-06-01"}}
	worker := &v1.ConfigPartial{CompatibilityDate: "2025-12-01"}

	eff, err := Resolve(defaults, tenant, worker)
	require.NoError(t, err)
	require.Equal(t, "2025-12-01", eff.CompatibilityDate)

	eff, err = Resolve(defaults, tenant, nil)
	require.NoError(t, err)
	require.Equal(t, "2025-06-01", eff.CompatibilityDate)
}

func TestResolveTailsPreservesDuplicates(t *testing.T) {
	defaults := v1.PlatformDefaults{ConfigPartial: v1.ConfigPartial{Tails: []string{"t1"}}}
	tenant := v1.Tenant{ConfigPartial: v1.ConfigPartial{Tails: []string{"t1"}}}
	worker := &v1.ConfigPartial{Tails: []string{"t2"}}

	eff, err := Resolve(defaults, tenant, worker)
	require.NoError(t, err)
	require.Equal(t, []string{"t1", "t1", "t2"}, eff.Tails)
}

func TestResolveLimitsPerField(t *testing.T) {
	defaults := v1.PlatformDefaults{ConfigPartial: v1.ConfigPartial{Limits: &v1.Limits{CPUMs: intp(100)}}}
	tenant := v1.Tenant{ConfigPartial: v1.ConfigPartial{Limits: &v1.Limits{Subrequests: intp(10)}}}

	eff, err := Resolve(defaults, tenant, nil)
	require.NoError(t, err)
	require.Equal(t, 100, *eff.Limits.CPUMs)
	require.Equal(t, 10, *eff.Limits.Subrequests)
}

func TestResolveLimitsAbsentWhenAllAbsent(t *testing.T) {
	eff, err := Resolve(v1.PlatformDefaults{}, v1.Tenant{}, nil)
	require.NoError(t, err)
	require.Nil(t, eff.Limits)
}

func TestResolveGlobalOutboundPrecedence(t *testing.T) {
	defaults := v1.PlatformDefaults{ConfigPartial: v1.ConfigPartial{GlobalOutbound: "default-interceptor"}}
	tenant := v1.Tenant{ConfigPartial: v1.ConfigPartial{GlobalOutbound: "tenant-interceptor"}}

	eff, err := Resolve(defaults, tenant, &v1.ConfigPartial{GlobalOutbound: "worker-interceptor"})
	require.NoError(t, err)
	require.Equal(t, "worker-interceptor", eff.GlobalOutbound)

	eff, err = Resolve(defaults, tenant, nil)
	require.NoError(t, err)
	require.Equal(t, "tenant-interceptor", eff.GlobalOutbound)

	eff, err = Resolve(v1.PlatformDefaults{}, v1.Tenant{}, nil)
	require.NoError(t, err)
	require.Empty(t, eff.GlobalOutbound)
}

func TestResolveDeterministic(t *testing.T) {
	defaults := v1.PlatformDefaults{ConfigPartial: v1.ConfigPartial{Env: map[string]string{"A": "1"}}}
	tenant := v1.Tenant{ConfigPartial: v1.ConfigPartial{Env: map[string]string{"B": "2"}}}

	a, err := Resolve(defaults, tenant, nil)
	require.NoError(t, err)
	b, err := Resolve(defaults, tenant, nil)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
