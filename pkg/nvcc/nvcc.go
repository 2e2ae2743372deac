// Package nvcc adapts an external CUDA toolchain behind a narrow Compiler
// interface.
//
// The package treats the toolchain as a black box: it hands over a source
// file path and a target architecture, and gets back an intermediate PTX
// artifact. Alternate compilation backends (a remote build service, the CPU
// emulation passthrough in this package) substitute for the real toolchain
// without touching the rest of the pipeline.
//
// Usage:
//
//	tc := nvcc.NewToolchain()
//	if !tc.Available() {
//	    // fall back to nvcc.Emulation{}
//	}
//	art, err := tc.Compile(ctx, "kernels/vec_add.cu", "sm_70")
//	if err != nil {
//	    var cerr *nvcc.CompileError
//	    if errors.As(err, &cerr) {
//	        fmt.Println(cerr.Diagnostics) // toolchain stderr
//	    }
//	}
package nvcc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// DefaultBin is the toolchain executable looked up on PATH when no explicit
// binary is configured.
const DefaultBin = "nvcc"

// EmulationArch is the pseudo-architecture reported by artifacts produced by
// the Emulation compiler.
const EmulationArch = "emu"

// ErrInvalidArch is returned when the target architecture string does not
// match the sm_NN / compute_NN naming scheme.
var ErrInvalidArch = errors.New("nvcc: invalid target architecture")

var archPattern = regexp.MustCompile(`^(sm|compute)_\d{2,3}$`)

// ValidArch reports whether arch is an acceptable target architecture string.
func ValidArch(arch string) bool {
	return archPattern.MatchString(arch)
}

// Artifact is a compiled, architecture-portable representation of kernel
// code. It is owned by the kernel handle that loads it.
type Artifact struct {
	// Arch is the target architecture the artifact was compiled for.
	Arch string

	// PTX holds the intermediate-representation bytes.
	PTX []byte
}

// Compiler produces an intermediate artifact from a device source file.
//
// Compile blocks until compilation finishes. The source path and the
// produced artifact are paired by base name: compiling kernels/vec_add.cu
// leaves kernels/vec_add.ptx next to it.
type Compiler interface {
	Compile(ctx context.Context, srcPath, arch string) (*Artifact, error)
}

// CompileError reports a toolchain failure (non-zero exit). Diagnostics
// carries the process's stderr verbatim so the kernel author sees the same
// output the toolchain printed.
//
// Note that a clean compile proves very little: the classic indexing bugs
// (a global index that ignores the block offset) are syntactically valid and
// sail through the toolchain. The verifier, not the compiler, is the
// correctness backstop.
type CompileError struct {
	Src         string
	Arch        string
	Diagnostics string
	exit        error
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("nvcc: compile %s for %s failed: %v", e.Src, e.Arch, e.exit)
	if d := strings.TrimSpace(e.Diagnostics); d != "" {
		msg += "\n" + d
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.exit }

// Toolchain invokes the real CUDA compiler as a subprocess.
type Toolchain struct {
	// Bin is the compiler executable. Defaults to "nvcc" on PATH.
	Bin string
}

// NewToolchain returns a Toolchain using the default executable.
func NewToolchain() *Toolchain {
	return &Toolchain{Bin: DefaultBin}
}

// Available reports whether the configured executable can be found.
func (t *Toolchain) Available() bool {
	_, err := exec.LookPath(t.bin())
	return err == nil
}

func (t *Toolchain) bin() string {
	if t.Bin == "" {
		return DefaultBin
	}
	return t.Bin
}

// Compile runs the toolchain in produce-intermediate-artifact mode:
//
//	nvcc --ptx -arch <arch> -o <base>.ptx <base>.cu
//
// It blocks until the subprocess exits. A non-zero exit yields a
// *CompileError with the diagnostic stream attached.
func (t *Toolchain) Compile(ctx context.Context, srcPath, arch string) (*Artifact, error) {
	if !ValidArch(arch) {
		return nil, errors.Wrapf(ErrInvalidArch, "%q", arch)
	}

	outPath := ArtifactPath(srcPath)
	cmd := exec.CommandContext(ctx, t.bin(), "--ptx", "-arch", arch, "-o", outPath, srcPath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &CompileError{
			Src:         srcPath,
			Arch:        arch,
			Diagnostics: stderr.String(),
			exit:        err,
		}
	}

	ptx, err := os.ReadFile(outPath)
	if err != nil {
		return nil, errors.Wrapf(err, "nvcc: read artifact %s", outPath)
	}
	return &Artifact{Arch: arch, PTX: ptx}, nil
}

// ArtifactPath returns the artifact path paired with a source path by the
// base-name convention: kernels/vec_add.cu -> kernels/vec_add.ptx.
func ArtifactPath(srcPath string) string {
	return strings.TrimSuffix(srcPath, filepath.Ext(srcPath)) + ".ptx"
}

// Emulation is the compiler used on hosts without a CUDA toolchain. It
// produces an artifact whose payload is the source text itself, tagged with
// the "emu" pseudo-architecture, so the pipeline still walks through its
// Compiled state before a handle is loaded and the CPU emulator runs the
// registered kernel body.
type Emulation struct{}

// Compile reads the source file and wraps it as an emulation artifact.
func (Emulation) Compile(_ context.Context, srcPath, _ string) (*Artifact, error) {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, errors.Wrapf(err, "nvcc: read source %s", srcPath)
	}
	return &Artifact{Arch: EmulationArch, PTX: src}, nil
}
