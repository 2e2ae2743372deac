// Package cudart provides the native NVIDIA backend for kernel launches.
//
// This package requires:
//   - NVIDIA GPU with CUDA Compute Capability 3.5+
//   - CUDA Toolkit 11.0+ installed (nvcc on PATH for compilation)
//   - CUDA driver library available at link time
//
// Build tags:
//   - Build with: go build -tags cuda
//   - Without CUDA: builds with stub implementations that report
//     unavailability, and the launcher falls back to the CPU emulator
//
// Example usage:
//
//	if cudart.IsAvailable() {
//	    backend, err := cudart.New()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    launcher := launch.NewLauncher(backend)
//	}
package cudart
