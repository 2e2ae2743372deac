package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/orneryd/culaunch/pkg/kernel"
	"github.com/orneryd/culaunch/pkg/launch"
	"github.com/orneryd/culaunch/pkg/verify"
)

// vecAddSource is the demo kernel: elementwise float32 addition with the
// bounds guard the over-provisioned last block requires.
const vecAddSource = `__global__ void vec_add(const float* a, const float* b, float* out, int n) {
    int i = blockIdx.x * blockDim.x + threadIdx.x;
    if (i < n) {
        out[i] = a[i] + b[i];
    }
}
`

// vecAddBuggySource computes its index from threadIdx alone. It compiles
// cleanly; with more than one block every block's thread 0 writes index 0
// and the tail is never written. The verifier catches what nvcc cannot.
const vecAddBuggySource = `__global__ void vec_add(const float* a, const float* b, float* out, int n) {
    int i = threadIdx.x;
    if (i < n) {
        out[i] = a[i] + b[i];
    }
}
`

// Go renditions of the two bodies for the CPU emulator.

func vecAddBody(t launch.Thread, args []any) {
	a := args[0].(*launch.Buffer[float32]).Data()
	b := args[1].(*launch.Buffer[float32]).Data()
	out := args[2].(*launch.Buffer[float32]).Data()
	n := int(args[3].(int32))

	if i := t.GlobalX(); i < n {
		out[i] = a[i] + b[i]
	}
}

func vecAddBuggyBody(t launch.Thread, args []any) {
	a := args[0].(*launch.Buffer[float32]).Data()
	b := args[1].(*launch.Buffer[float32]).Data()
	out := args[2].(*launch.Buffer[float32]).Data()
	n := int(args[3].(int32))

	if i := t.ThreadIdx.X; i < n {
		out[i] = a[i] + b[i]
	}
}

func newRunCmd() *cobra.Command {
	var (
		n     int
		block int
		buggy bool
		emu   bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the vector-add demo pipeline end to end",
		Long: `Run walks the whole pipeline: persist the kernel source, compile it,
load a typed handle, launch with bounds-covering grid math, and verify the
device result against a host-side reference.

With --buggy the kernel indexes by threadIdx alone — the canonical beginner
mistake. It compiles without a complaint and fails verification, which is
the point: the verifier, not the compiler, is the correctness backstop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if block > 0 {
				cfg.BlockSize = block
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			fmt.Printf("🚀 culaunch vector-add pipeline\n\n")
			fmt.Printf("Configuration:\n")
			fmt.Printf("  n:         %d\n", n)
			fmt.Printf("  block:     %d\n", cfg.BlockSize)
			fmt.Printf("  arch:      %s\n", cfg.Arch)
			fmt.Printf("  tolerance: %g\n\n", cfg.Tolerance)

			ctx := context.Background()

			// 1. Persist the source.
			body := vecAddSource
			if buggy {
				fmt.Printf("🐛 using the threadIdx-only kernel\n")
				body = vecAddBuggySource
			}
			store := kernel.NewStore(cfg.SourceDir)
			srcPath, err := store.Write(kernel.Source{Name: "vec_add", Body: body})
			if err != nil {
				return err
			}
			fmt.Printf("📦 wrote %s\n", srcPath)

			// 2. Compile.
			compiler, cleanup, err := newCompiler(cfg, emu)
			if err != nil {
				return err
			}
			defer cleanup()
			art, err := compiler.Compile(ctx, srcPath, cfg.Arch)
			if err != nil {
				return err
			}
			fmt.Printf("⚙️  compiled for %s (%d bytes)\n", art.Arch, len(art.PTX))

			// 3. Load the handle.
			h, err := kernel.Load(art, srcPath, "vec_add")
			if err != nil {
				return err
			}
			fmt.Printf("🔎 signature %s\n", h.Signature)

			// 4. Launch.
			backend := launch.NewBackend()
			if e, ok := backend.(*launch.Emulator); ok {
				e.Workers = cfg.Workers
				e.Register("vec_add", vecAddBody)
				if buggy {
					e.Register("vec_add", vecAddBuggyBody)
				}
			}
			launcher := launch.NewLauncher(backend)

			rng := rand.New(rand.NewSource(1))
			hostA := make([]float32, n)
			hostB := make([]float32, n)
			for i := range hostA {
				hostA[i] = rng.Float32()
				hostB[i] = rng.Float32()
			}

			a := launch.FromHost(hostA)
			b := launch.FromHost(hostB)
			out := launch.Alloc[float32](n)
			defer a.Free()
			defer b.Free()
			defer out.Free()

			if err := launcher.Launch(ctx, h, n, cfg.BlockSize, a, b, out, int32(n)); err != nil {
				return err
			}
			fmt.Printf("🧵 launched grid=%s block=%s on %s\n", h.Grid, h.Block, backend.Name())

			// 5. Verify against the host reference.
			want, err := verify.Add(hostA, hostB)
			if err != nil {
				return err
			}
			got, err := out.CopyOut()
			if err != nil {
				return err
			}
			res := verify.Compare(got, want, cfg.Tolerance)
			if res.Passed {
				fmt.Printf("\n✅ %s\n", res)
				return nil
			}
			fmt.Printf("\n❌ %s\n", res)
			fmt.Printf("Fix the kernel source and rerun — wrong answers are data, not faults.\n")
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 1_000_000, "problem size (elements)")
	cmd.Flags().IntVar(&block, "block", 0, "block width (overrides config)")
	cmd.Flags().BoolVar(&buggy, "buggy", false, "use the broken threadIdx-only kernel")
	cmd.Flags().BoolVar(&emu, "emulate", false, "force CPU emulation even if a toolchain exists")
	return cmd
}
