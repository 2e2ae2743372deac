// Command culaunch compiles, inspects, and runs CUDA kernels through the
// kernel-invocation harness.
//
// Usage:
//
//	culaunch [command]
//
// Commands:
//
//	compile <file.cu>   Compile a kernel source to a PTX artifact
//	inspect <file.cu>   Show the parsed signature and default launch config
//	run                 Run the vector-add demo pipeline end to end
//
// Example:
//
//	# Compile for a specific architecture
//	culaunch compile kernels/vec_add.cu --arch sm_86
//
//	# Inspect the entry point's signature
//	culaunch inspect kernels/vec_add.cu --entry vec_add
//
//	# Full pipeline: write, compile, launch, verify
//	culaunch run --n 10000000 --block 512
//
//	# Demonstrate the classic indexing bug being caught by the verifier
//	culaunch run --buggy
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/orneryd/culaunch/pkg/cache"
	"github.com/orneryd/culaunch/pkg/config"
	"github.com/orneryd/culaunch/pkg/kernel"
	"github.com/orneryd/culaunch/pkg/nvcc"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "culaunch",
		Short:        "Compile, launch, and verify CUDA kernels",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")

	root.AddCommand(newCompileCmd(), newInspectCmd(), newRunCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// newCompiler builds the compiler stack: the configured toolchain when it is
// installed (otherwise the emulation passthrough), wrapped in the artifact
// cache when a cache directory is configured.
func newCompiler(cfg *config.Config, forceEmulate bool) (nvcc.Compiler, func(), error) {
	var inner nvcc.Compiler
	tc := &nvcc.Toolchain{Bin: cfg.Toolchain}
	switch {
	case forceEmulate:
		inner = nvcc.Emulation{}
	case tc.Available():
		inner = tc
	default:
		fmt.Printf("⚠️  %s not found on PATH, using CPU emulation\n", cfg.Toolchain)
		inner = nvcc.Emulation{}
	}

	cleanup := func() {}
	if cfg.CacheDir != "" {
		disk, err := cache.OpenDisk(cfg.CacheDir)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			if err := disk.Close(); err != nil {
				log.Printf("close cache: %v", err)
			}
		}
		inner = cache.NewCachingCompiler(inner, cache.NewArtifactCache(256, 0), disk)
	}
	return inner, cleanup, nil
}

func newCompileCmd() *cobra.Command {
	var arch string
	cmd := &cobra.Command{
		Use:   "compile <file.cu>",
		Short: "Compile a kernel source to a PTX artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if arch != "" {
				cfg.Arch = arch
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			compiler, cleanup, err := newCompiler(cfg, false)
			if err != nil {
				return err
			}
			defer cleanup()

			art, err := compiler.Compile(context.Background(), args[0], cfg.Arch)
			if err != nil {
				return err
			}
			fmt.Printf("✅ compiled %s for %s (%d bytes) -> %s\n",
				args[0], art.Arch, len(art.PTX), nvcc.ArtifactPath(args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&arch, "arch", "", "target architecture (overrides config)")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var entry string
	cmd := &cobra.Command{
		Use:   "inspect <file.cu>",
		Short: "Show the parsed signature and default launch config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			art, err := nvcc.Emulation{}.Compile(context.Background(), args[0], "")
			if err != nil {
				return err
			}
			h, err := kernel.Load(art, args[0], entry)
			if err != nil {
				return err
			}

			fmt.Printf("kernel %s %s\n", h.Name, h.Signature)
			fmt.Printf("  arity:   %d (%d output-capable)\n", h.Signature.Arity(), h.Signature.Outputs())
			fmt.Printf("  block:   %s (default — a single thread until configured)\n", h.Block)
			fmt.Printf("  grid:    %s\n", h.Grid)
			fmt.Printf("  params:  %# v\n", pretty.Formatter(h.Signature))
			return nil
		},
	}
	cmd.Flags().StringVar(&entry, "entry", "vec_add", "entry point name")
	return cmd
}
