package kernel

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/culaunch/pkg/nvcc"
)

func writeVecAdd(t *testing.T) string {
	t.Helper()
	store := NewStore(t.TempDir())
	path, err := store.Write(Source{Name: "vec_add", Body: vecAddSource})
	require.NoError(t, err)
	return path
}

func TestLoadDefaults(t *testing.T) {
	src := writeVecAdd(t)
	art := &nvcc.Artifact{Arch: "sm_70", PTX: []byte("ptx")}

	h, err := Load(art, src, "vec_add")
	require.NoError(t, err)

	assert.Equal(t, "vec_add", h.Name)
	assert.Equal(t, 4, h.Signature.Arity())
	assert.Equal(t, Dim3{1, 1, 1}, h.Block, "default launch is a single thread")
	assert.Equal(t, Dim3{1, 1, 1}, h.Grid)
	assert.Same(t, art, h.Artifact())
}

func TestLoadTwiceIdenticalDefaults(t *testing.T) {
	src := writeVecAdd(t)
	art := &nvcc.Artifact{Arch: "sm_70", PTX: []byte("ptx")}

	first, err := Load(art, src, "vec_add")
	require.NoError(t, err)
	second, err := Load(art, src, "vec_add")
	require.NoError(t, err)

	assert.Equal(t, first.Block, second.Block)
	assert.Equal(t, first.Grid, second.Grid)
	assert.Equal(t, first.Signature, second.Signature)

	// Reconfiguring one handle must not leak into the other.
	first.Block = Dim3{512, 1, 1}
	assert.Equal(t, Dim3{1, 1, 1}, second.Block)
}

func TestLoadMissingEntry(t *testing.T) {
	src := writeVecAdd(t)

	_, err := Load(&nvcc.Artifact{}, src, "vec_mul")
	require.Error(t, err)

	var serr *SignatureError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "vec_mul", serr.Entry)
}

func TestLoadMissingSourceFile(t *testing.T) {
	_, err := Load(&nvcc.Artifact{}, filepath.Join(t.TempDir(), "absent.cu"), "vec_add")
	assert.Error(t, err)
}

func TestDim3Count(t *testing.T) {
	assert.Equal(t, 1, Dim3{1, 1, 1}.Count())
	assert.Equal(t, 0, Dim3{0, 1, 1}.Count())
	assert.Equal(t, 19532*512, Dim3{19532, 512, 1}.Count())
}
