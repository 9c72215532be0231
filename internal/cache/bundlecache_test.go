package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/bundler"
	"github.com/amartyaa/workerplatform/internal/hashutil"
	"github.com/amartyaa/workerplatform/internal/store/memstore"
	"github.com/stretchr/testify/require"
)

type countingBundler struct {
	calls int64
	gate  chan struct{}
}

func (c *countingBundler) Build(ctx context.Context, files map[string]string, opts v1.BuildOptions) (bundler.Output, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.gate != nil {
		<-c.gate
	}
	return bundler.Output{MainModule: "a.ts", Modules: map[string]string{"a.ts": "1"}}, nil
}

func TestGetOrBuildSingleFlight(t *testing.T) {
	s := memstore.New()
	b := &countingBundler{gate: make(chan struct{})}
	c := New(s.Bundles(), b)

	files := map[string]string{"a.ts": "1"}
	opts := v1.BuildOptions{}

	const n = 10
	var wg sync.WaitGroup
	results := make([]v1.Bundle, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bundle, _, err := c.GetOrBuild(context.Background(), files, opts)
			require.NoError(t, err)
			results[i] = bundle
		}(i)
	}

	close(b.gate)
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt64(&b.calls))
	for _, r := range results {
		require.Equal(t, results[0], r)
	}
}

func TestGetOrBuildReadThrough(t *testing.T) {
	s := memstore.New()
	b := &countingBundler{}
	c := New(s.Bundles(), b)

	files := map[string]string{"a.ts": "1"}
	_, cached1, err := c.GetOrBuild(context.Background(), files, v1.BuildOptions{})
	require.NoError(t, err)
	require.False(t, cached1)

	_, cached2, err := c.GetOrBuild(context.Background(), files, v1.BuildOptions{})
	require.NoError(t, err)
	require.True(t, cached2)
	require.EqualValues(t, 1, atomic.LoadInt64(&b.calls))
}

type failingBuilder struct{}

func (failingBuilder) Build(ctx context.Context, files map[string]string, opts v1.BuildOptions) (bundler.Output, error) {
	return bundler.Output{}, assertErr{}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestGetOrBuildDoesNotCacheErrors(t *testing.T) {
	s := memstore.New()
	c := New(s.Bundles(), failingBuilder{})

	files := map[string]string{"a.ts": "1"}
	_, _, err := c.GetOrBuild(context.Background(), files, v1.BuildOptions{})
	require.Error(t, err)

	got, err := s.Bundles().GetByFingerprint(context.Background(), hashutil.Fingerprint(files, v1.BuildOptions{}))
	require.NoError(t, err)
	require.Nil(t, got)
}
