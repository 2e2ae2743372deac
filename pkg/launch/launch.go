// Package launch executes loaded kernels with bounds-covering grid math.
//
// The Launcher owns the launch-configuration arithmetic: given a problem
// size and a block width it configures the handle's block and grid shapes so
// the union of all thread blocks covers indices [0, n), then hands the
// launch to a Backend. The grid always rounds up, so the last block may
// over-provision threads whose global index is >= n — the kernel body, not
// this package, is responsible for guarding every access with
// `if (i < n)`. An unguarded body is an out-of-bounds write for those
// threads and undefined behavior; the executor cannot detect it.
//
// Backends:
//   - Emulator runs registered Go kernel bodies across virtual threads on
//     the CPU (always available, used by tests and GPU-less hosts).
//   - cudart.Backend drives a real device when built with the cuda tag;
//     default builds get an unavailable stub.
package launch

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/orneryd/culaunch/pkg/kernel"
	"github.com/orneryd/culaunch/pkg/launch/cudart"
)

// Backend runs a configured kernel handle. Launch blocks until device
// execution completes or reports that the backend cannot run at all;
// Synchronize is the explicit completion point for backends that overlap
// work.
type Backend interface {
	Name() string
	Launch(ctx context.Context, h *kernel.Handle, args []any) error
	Synchronize() error
}

// GridFor computes the 1-D grid shape covering a problem of n elements with
// blockX threads per block. The division rounds up: GridFor(10, 3) is
// (4,1,1) and the fourth block's last two threads fall outside [0, n).
// n == 0 yields a zero-width grid (no threads).
func GridFor(n, blockX int) (kernel.Dim3, error) {
	if blockX <= 0 {
		return kernel.Dim3{}, fmt.Errorf("launch: block size must be positive, got %d", blockX)
	}
	if n < 0 {
		return kernel.Dim3{}, fmt.Errorf("launch: problem size must be non-negative, got %d", n)
	}
	return kernel.Dim3{X: (n + blockX - 1) / blockX, Y: 1, Z: 1}, nil
}

// Launcher binds grid math to a backend.
type Launcher struct {
	backend Backend
}

// NewLauncher returns a Launcher on the given backend.
func NewLauncher(b Backend) *Launcher {
	return &Launcher{backend: b}
}

// Backend returns the backend launches run on.
func (l *Launcher) Backend() Backend { return l.backend }

// Launch configures h for a problem of n elements with blockX-wide blocks
// and invokes it with args, in declaration order. Output-capable buffer
// arguments are mutated in place; no return value carries the result.
//
// A zero n configures a zero-width grid and returns without launching any
// threads, leaving every buffer untouched.
func (l *Launcher) Launch(ctx context.Context, h *kernel.Handle, n, blockX int, args ...any) error {
	grid, err := GridFor(n, blockX)
	if err != nil {
		return err
	}
	if len(args) != h.Signature.Arity() {
		return fmt.Errorf("launch: kernel %s takes %d arguments, got %d",
			h.Name, h.Signature.Arity(), len(args))
	}

	h.Block = kernel.Dim3{X: blockX, Y: 1, Z: 1}
	h.Grid = grid

	if n == 0 {
		return nil
	}

	id := uuid.NewString()[:8]
	log.Printf("launch %s: kernel=%s grid=%s block=%s n=%d backend=%s",
		id, h.Name, h.Grid, h.Block, n, l.backend.Name())

	if err := l.backend.Launch(ctx, h, args); err != nil {
		return fmt.Errorf("launch %s: %w", id, err)
	}
	return l.backend.Synchronize()
}

// NewBackend selects the best available backend: the native CUDA driver
// when present, otherwise the CPU emulator. Callers that need to register
// Go kernel bodies can type-assert the result to *Emulator.
func NewBackend() Backend {
	if cudart.IsAvailable() {
		if b, err := cudart.New(); err == nil {
			return b
		}
	}
	return NewEmulator()
}
