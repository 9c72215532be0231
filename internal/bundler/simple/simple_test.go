package simple

import (
	"context"
	"testing"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/stretchr/testify/require"
)

func TestBuildResolvesPackageJSONMain(t *testing.T) {
	b := New()
	files := map[string]string{
		"src/index.ts": "export default{fetch(){return new Response('hi')}}",
		"package.json": `{"main":"src/index.ts"}`,
	}
	out, err := b.Build(context.Background(), files, v1.BuildOptions{})
	require.NoError(t, err)
	require.Equal(t, "src/index.ts", out.MainModule)
	require.Len(t, out.Modules, 2)
}

func TestBuildDeterministic(t *testing.T) {
	b := New()
	files := map[string]string{"a.ts": "1", "package.json": `{"main":"a.ts"}`}
	out1, err := b.Build(context.Background(), files, v1.BuildOptions{})
	require.NoError(t, err)
	out2, err := b.Build(context.Background(), files, v1.BuildOptions{})
	require.NoError(t, err)
	require.Equal(t, out1.MainModule, out2.MainModule)
	require.Equal(t, out1.Modules, out2.Modules)
}

func TestBuildMissingEntryPoint(t *testing.T) {
	b := New()
	_, err := b.Build(context.Background(), map[string]string{"a.ts": "1"}, v1.BuildOptions{EntryPoint: "missing.ts"})
	require.Error(t, err)
	require.True(t, perr.Is(err, perr.KindBuild))
}

func TestBuildMinify(t *testing.T) {
	b := New()
	files := map[string]string{"a.ts": "  const x =   1;  \n\n  const y = 2;  ", "package.json": `{"main":"a.ts"}`}
	out, err := b.Build(context.Background(), files, v1.BuildOptions{Minify: true})
	require.NoError(t, err)
	require.Equal(t, "const x = 1;\nconst y = 2;", out.Modules["a.ts"])
}
