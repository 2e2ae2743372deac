package launch

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/orneryd/culaunch/pkg/kernel"
)

// Thread identifies one virtual device thread within the launch hierarchy,
// mirroring the indexing intrinsics a device kernel sees.
type Thread struct {
	BlockIdx  kernel.Dim3
	ThreadIdx kernel.Dim3
	BlockDim  kernel.Dim3
	GridDim   kernel.Dim3
}

// GlobalX returns the thread's global index along X: the position within
// the overall problem domain, computed from block index, block size and
// local thread index.
func (t Thread) GlobalX() int {
	return t.BlockIdx.X*t.BlockDim.X + t.ThreadIdx.X
}

// KernelFunc is a Go rendition of a device kernel body. It runs once per
// virtual thread with no ordering guarantee among threads; the only safe
// communication pattern is disjoint writes (each thread writes only its own
// output slot), and every access must be guarded against indices >= n just
// like the device source.
type KernelFunc func(t Thread, args []any)

// Emulator executes registered kernel bodies across grid x block virtual
// threads on the CPU. Blocks are distributed over a bounded set of workers;
// threads within a block run sequentially, which is legal because the
// harness's execution model promises no intra-block ordering either.
type Emulator struct {
	// Workers bounds concurrent blocks. Zero means GOMAXPROCS.
	Workers int

	mu      sync.RWMutex
	kernels map[string]KernelFunc
}

// NewEmulator returns an Emulator with no registered kernels.
func NewEmulator() *Emulator {
	return &Emulator{kernels: make(map[string]KernelFunc)}
}

// Register binds a Go kernel body to an entry point name. Launching a
// handle whose name has no registered body fails.
func (e *Emulator) Register(name string, fn KernelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.kernels[name] = fn
}

// Name identifies the backend in logs.
func (e *Emulator) Name() string { return "cpu-emulator" }

// Synchronize is a no-op: Launch is fully synchronous.
func (e *Emulator) Synchronize() error { return nil }

// Launch runs the registered body for h.Name once per virtual thread of
// h.Grid x h.Block and blocks until every thread has finished.
func (e *Emulator) Launch(ctx context.Context, h *kernel.Handle, args []any) error {
	e.mu.RLock()
	fn, ok := e.kernels[h.Name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("launch: no emulated body registered for kernel %q", h.Name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	blocks := make(chan kernel.Dim3)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for blockIdx := range blocks {
				runBlock(fn, h, blockIdx, args)
			}
		}()
	}

	for bz := 0; bz < h.Grid.Z; bz++ {
		for by := 0; by < h.Grid.Y; by++ {
			for bx := 0; bx < h.Grid.X; bx++ {
				blocks <- kernel.Dim3{X: bx, Y: by, Z: bz}
			}
		}
	}
	close(blocks)
	wg.Wait()
	return nil
}

// runBlock executes every thread of one block sequentially.
func runBlock(fn KernelFunc, h *kernel.Handle, blockIdx kernel.Dim3, args []any) {
	for tz := 0; tz < h.Block.Z; tz++ {
		for ty := 0; ty < h.Block.Y; ty++ {
			for tx := 0; tx < h.Block.X; tx++ {
				fn(Thread{
					BlockIdx:  blockIdx,
					ThreadIdx: kernel.Dim3{X: tx, Y: ty, Z: tz},
					BlockDim:  h.Block,
					GridDim:   h.Grid,
				}, args)
			}
		}
	}
}
