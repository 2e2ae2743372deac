package kernel

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/orneryd/culaunch/pkg/nvcc"
)

// Dim3 is a block or grid shape. Components count threads (for blocks) or
// blocks (for grids) along each axis.
type Dim3 struct {
	X, Y, Z int
}

// Count returns the total number of elements the shape spans.
func (d Dim3) Count() int { return d.X * d.Y * d.Z }

func (d Dim3) String() string { return fmt.Sprintf("(%d,%d,%d)", d.X, d.Y, d.Z) }

// Handle is the host-side view of a loaded kernel: its parsed signature plus
// the mutable launch configuration.
//
// Block and Grid both default to (1,1,1) — a single thread total. That is
// almost always wrong for real workloads; callers reconfigure them (usually
// through the launch executor) before launching.
type Handle struct {
	// Name is the entry point name inside the compiled artifact.
	Name string

	// Signature is the ordered parameter list parsed from source.
	Signature Signature

	// Block is the thread-group shape for the next launch.
	Block Dim3

	// Grid is the group-count shape for the next launch.
	Grid Dim3

	artifact *nvcc.Artifact
}

// Load builds a Handle for the named entry point. The artifact supplies the
// compiled code; srcPath supplies the declaration text the signature is
// inferred from. The two are paired by the base-name convention
// (vec_add.cu / vec_add.ptx).
//
// A missing or unparsable entry point yields a *SignatureError.
func Load(artifact *nvcc.Artifact, srcPath, entry string) (*Handle, error) {
	body, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, errors.Wrapf(err, "kernel: read source %s", srcPath)
	}
	sig, err := ParseSignature(string(body), entry)
	if err != nil {
		return nil, err
	}
	return &Handle{
		Name:      entry,
		Signature: sig,
		Block:     Dim3{1, 1, 1},
		Grid:      Dim3{1, 1, 1},
		artifact:  artifact,
	}, nil
}

// Artifact returns the compiled artifact the handle was loaded from.
func (h *Handle) Artifact() *nvcc.Artifact { return h.artifact }
