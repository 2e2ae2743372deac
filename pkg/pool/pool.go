// Package pool provides pooled host staging buffers for culaunch to reduce
// allocations.
//
// Verification and host/device transfers repeatedly allocate large float
// slices (reference results, absolute-error scratch, staging copies). Pooling
// reuses those slices instead of creating new ones, reducing GC pressure for
// notebook-style workloads that launch and verify the same kernel many times.
//
// Usage:
//
//	diff := pool.GetFloat64(n)
//	defer pool.PutFloat64(diff)
//
//	// Use the slice...
package pool

import (
	"sync"
)

// Config controls global pooling behavior.
//
// Fields:
//   - Enabled: Controls whether pooling is active (disable for debugging)
//   - MaxLen: Slices longer than this are never retained (prevents a single
//     huge launch from pinning memory forever)
type Config struct {
	// Enabled controls whether pooling is active
	Enabled bool

	// MaxLen limits the length of slices kept in the pools
	MaxLen int
}

var globalConfig = Config{
	Enabled: true,
	MaxLen:  1 << 24, // 16M elements
}

var (
	f32Pool sync.Pool
	f64Pool sync.Pool
)

func init() { initPools() }

// Configure sets global pool configuration.
//
// Call once during initialization, before any pooled slices are handed out.
// Reconfiguring reinitializes all pools.
//
// Thread Safety:
//
//	Not thread-safe. Call only during initialization.
func Configure(config Config) {
	globalConfig = config
	initPools()
}

// initPools reinitializes all pools with their New functions.
func initPools() {
	f32Pool = sync.Pool{
		New: func() any {
			return make([]float32, 0, 1024)
		},
	}
	f64Pool = sync.Pool{
		New: func() any {
			return make([]float64, 0, 1024)
		},
	}
}

// IsEnabled returns whether pooling is enabled.
func IsEnabled() bool {
	return globalConfig.Enabled
}

// GetFloat32 returns a float32 slice of length n, reusing pooled capacity
// when possible. Contents are unspecified; callers overwrite every element.
func GetFloat32(n int) []float32 {
	if !globalConfig.Enabled {
		return make([]float32, n)
	}
	s := f32Pool.Get().([]float32)
	if cap(s) < n {
		return make([]float32, n)
	}
	return s[:n]
}

// PutFloat32 returns a slice to the pool.
func PutFloat32(s []float32) {
	if !globalConfig.Enabled || cap(s) == 0 || len(s) > globalConfig.MaxLen {
		return
	}
	f32Pool.Put(s[:0]) //nolint:staticcheck // pooling a slice header, not a pointer
}

// GetFloat64 returns a float64 slice of length n, reusing pooled capacity
// when possible. Contents are unspecified; callers overwrite every element.
func GetFloat64(n int) []float64 {
	if !globalConfig.Enabled {
		return make([]float64, n)
	}
	s := f64Pool.Get().([]float64)
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}

// PutFloat64 returns a slice to the pool.
func PutFloat64(s []float64) {
	if !globalConfig.Enabled || cap(s) == 0 || len(s) > globalConfig.MaxLen {
		return
	}
	f64Pool.Put(s[:0]) //nolint:staticcheck
}
