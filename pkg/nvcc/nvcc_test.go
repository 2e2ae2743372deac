package nvcc

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidArch(t *testing.T) {
	tests := []struct {
		arch string
		want bool
	}{
		{"sm_70", true},
		{"sm_86", true},
		{"sm_120", true},
		{"compute_70", true},
		{"compute_90", true},
		{"sm_7", false},
		{"sm70", false},
		{"SM_70", false},
		{"gfx900", false},
		{"", false},
		{"sm_70; rm -rf /", false},
	}
	for _, tt := range tests {
		t.Run(tt.arch, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidArch(tt.arch))
		})
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"vec_add.cu", "vec_add.ptx"},
		{"kernels/vec_add.cu", "kernels/vec_add.ptx"},
		{"/tmp/a/b/saxpy.cu", "/tmp/a/b/saxpy.ptx"},
		{"noext", "noext.ptx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ArtifactPath(tt.src), "ArtifactPath(%q)", tt.src)
	}
}

func TestToolchainInvalidArch(t *testing.T) {
	tc := NewToolchain()
	_, err := tc.Compile(context.Background(), "vec_add.cu", "not-an-arch")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArch))
}

func TestToolchainMissingBinary(t *testing.T) {
	tc := &Toolchain{Bin: "definitely-not-a-real-compiler-binary"}
	src := writeSource(t, "k.cu", "__global__ void k(float* out) {}")

	_, err := tc.Compile(context.Background(), src, "sm_70")
	require.Error(t, err)

	var cerr *CompileError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, src, cerr.Src)
	assert.Equal(t, "sm_70", cerr.Arch)
}

// fakeToolchain writes a shell script that mimics nvcc's CLI surface:
// it copies the positional source argument to the -o output path.
// This exercises the subprocess plumbing without a GPU toolchain installed.
func fakeToolchain(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake toolchain scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-nvcc")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

const passthroughScript = `#!/bin/sh
# args: --ptx -arch <arch> -o <out> <src>
out=$5
src=$6
cp "$src" "$out"
`

const failingScript = `#!/bin/sh
echo 'k.cu(3): error: identifier "blockIdxx" is undefined' >&2
exit 1
`

func TestToolchainCompileSuccess(t *testing.T) {
	tc := &Toolchain{Bin: fakeToolchain(t, passthroughScript)}
	src := writeSource(t, "vec_add.cu", "__global__ void vec_add(float* out) {}")

	art, err := tc.Compile(context.Background(), src, "sm_70")
	require.NoError(t, err)
	assert.Equal(t, "sm_70", art.Arch)
	assert.NotEmpty(t, art.PTX)

	// Base-name pairing: the artifact file sits next to the source.
	_, err = os.Stat(ArtifactPath(src))
	assert.NoError(t, err)
}

func TestToolchainDeterministic(t *testing.T) {
	tc := &Toolchain{Bin: fakeToolchain(t, passthroughScript)}
	src := writeSource(t, "vec_add.cu", "__global__ void vec_add(float* out) {}")

	first, err := tc.Compile(context.Background(), src, "sm_70")
	require.NoError(t, err)
	second, err := tc.Compile(context.Background(), src, "sm_70")
	require.NoError(t, err)

	if !bytes.Equal(first.PTX, second.PTX) {
		t.Error("compiling identical source twice should produce bit-identical artifacts")
	}
}

func TestToolchainCompileFailure(t *testing.T) {
	tc := &Toolchain{Bin: fakeToolchain(t, failingScript)}
	src := writeSource(t, "k.cu", "__global__ void k(float* out) { blockIdxx; }")

	_, err := tc.Compile(context.Background(), src, "sm_70")
	require.Error(t, err)

	var cerr *CompileError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Diagnostics, "blockIdxx")
	assert.Contains(t, cerr.Error(), "blockIdxx")
}

func TestEmulationCompile(t *testing.T) {
	body := "__global__ void vec_add(const float* a, float* out, int n) {}"
	src := writeSource(t, "vec_add.cu", body)

	art, err := Emulation{}.Compile(context.Background(), src, "sm_70")
	require.NoError(t, err)
	assert.Equal(t, EmulationArch, art.Arch)
	assert.Equal(t, body, string(art.PTX))
}

func TestEmulationCompileMissingSource(t *testing.T) {
	_, err := Emulation{}.Compile(context.Background(), filepath.Join(t.TempDir(), "absent.cu"), "sm_70")
	assert.Error(t, err)
}

func writeSource(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
