package tmpl

import (
	"testing"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/stretchr/testify/require"
)

func TestExtractSlotNames(t *testing.T) {
	files := map[string]string{"a.ts": "const x = {{v}}; const y = {{w}};", "b.ts": "{{v}}"}
	names := ExtractSlotNames(files)
	require.ElementsMatch(t, []string{"v", "w"}, names)
}

func TestValidateRejectsUndeclaredSlot(t *testing.T) {
	files := map[string]string{"a.ts": "{{v}}"}
	err := Validate(files, nil)
	require.Error(t, err)
	require.True(t, perr.Is(err, perr.KindValidation))
}

func TestInterpolateUsesSuppliedValue(t *testing.T) {
	files := map[string]string{"src/index.ts": "const x={{v}};"}
	slots := []v1.Slot{{Name: "v", Default: "1"}}

	out, err := Interpolate(files, slots, map[string]string{"v": "42"})
	require.NoError(t, err)
	require.Equal(t, "const x=42;", out["src/index.ts"])
}

func TestPreviewFallsBackToDefault(t *testing.T) {
	files := map[string]string{"src/index.ts": "const x={{v}};"}
	slots := []v1.Slot{{Name: "v", Default: "1"}}

	out, err := Preview(files, slots, map[string]string{})
	require.NoError(t, err)
	require.Equal(t, "const x=1;", out["src/index.ts"])
}

func TestInterpolateMissingValueAndDefaultFails(t *testing.T) {
	files := map[string]string{"a.ts": "{{v}}"}
	slots := []v1.Slot{{Name: "v"}}
	_, err := Interpolate(files, slots, nil)
	require.Error(t, err)
	require.True(t, perr.Is(err, perr.KindValidation))
}

func TestInterpolateIdempotentWithDefaults(t *testing.T) {
	files := map[string]string{"a.ts": "{{v}}-{{w}}"}
	slots := []v1.Slot{{Name: "v", Default: "1"}, {Name: "w", Default: "2"}}

	out, err := Interpolate(files, slots, map[string]string{"v": "1", "w": "2"})
	require.NoError(t, err)
	require.Equal(t, "1-2", out["a.ts"])
}
