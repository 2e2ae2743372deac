//go:build !cuda || !(linux || windows)
// +build !cuda !linux,!windows

package cudart

import (
	"context"
	"errors"

	"github.com/orneryd/culaunch/pkg/kernel"
)

// Errors
var (
	ErrNotAvailable    = errors.New("cudart: CUDA is not available (build without cuda tag or unsupported platform)")
	ErrDeviceCreation  = errors.New("cudart: failed to create CUDA device")
	ErrModuleLoad      = errors.New("cudart: failed to load PTX module")
	ErrKernelExecution = errors.New("cudart: kernel execution failed")
)

// Device represents a CUDA GPU device (stub).
type Device struct{}

// Backend launches kernels on a CUDA device (stub).
type Backend struct{}

// IsAvailable returns false on systems without CUDA.
func IsAvailable() bool {
	return false
}

// DeviceCount returns 0 on systems without CUDA.
func DeviceCount() int {
	return 0
}

// NewDevice returns an error on systems without CUDA.
func NewDevice(deviceID int) (*Device, error) {
	return nil, ErrNotAvailable
}

// Release is a no-op stub.
func (d *Device) Release() {}

// ID returns 0.
func (d *Device) ID() int { return 0 }

// Name returns empty string.
func (d *Device) Name() string { return "" }

// New returns an error on systems without CUDA.
func New() (*Backend, error) {
	return nil, ErrNotAvailable
}

// Name identifies the backend in logs.
func (b *Backend) Name() string { return "cuda" }

// Launch returns an error.
func (b *Backend) Launch(ctx context.Context, h *kernel.Handle, args []any) error {
	return ErrNotAvailable
}

// Synchronize returns an error.
func (b *Backend) Synchronize() error {
	return ErrNotAvailable
}
