package hashutil

import (
	"testing"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterministic(t *testing.T) {
	files := map[string]string{
		"src/index.ts": "export default {}",
		"package.json": `{"main":"src/index.ts"}`,
	}
	opts := v1.BuildOptions{Bundle: true}

	a := Fingerprint(files, opts)
	b := Fingerprint(files, opts)
	require.Equal(t, a, b)
	require.Len(t, a, 16)
}

func TestFingerprintKeyOrderIndependent(t *testing.T) {
	files1 := map[string]string{"a.ts": "1", "b.ts": "2"}
	files2 := map[string]string{"b.ts": "2", "a.ts": "1"}
	require.Equal(t, Fingerprint(files1, v1.BuildOptions{}), Fingerprint(files2, v1.BuildOptions{}))
}

func TestFingerprintDiffersOnContent(t *testing.T) {
	a := Fingerprint(map[string]string{"x.ts": "1"}, v1.BuildOptions{})
	b := Fingerprint(map[string]string{"x.ts": "2"}, v1.BuildOptions{})
	require.NotEqual(t, a, b)
}

func TestFingerprintDiffersOnOptions(t *testing.T) {
	files := map[string]string{"x.ts": "1"}
	a := Fingerprint(files, v1.BuildOptions{Minify: false})
	b := Fingerprint(files, v1.BuildOptions{Minify: true})
	require.NotEqual(t, a, b)
}
