//go:build !cuda || !(linux || windows)
// +build !cuda !linux,!windows

package cudart

import (
	"context"
	"testing"

	"github.com/orneryd/culaunch/pkg/kernel"
)

func TestIsAvailableStub(t *testing.T) {
	if IsAvailable() {
		t.Error("IsAvailable() should return false on stub")
	}
}

func TestDeviceCountStub(t *testing.T) {
	if DeviceCount() != 0 {
		t.Error("DeviceCount() should return 0 on stub")
	}
}

func TestNewDeviceStub(t *testing.T) {
	device, err := NewDevice(0)
	if err != ErrNotAvailable {
		t.Errorf("NewDevice() error = %v, want ErrNotAvailable", err)
	}
	if device != nil {
		t.Error("NewDevice() should return nil device on stub")
	}
}

func TestDeviceMethodsStub(t *testing.T) {
	var device Device

	// These should not panic
	device.Release()

	if device.ID() != 0 {
		t.Error("ID() should return 0")
	}
	if device.Name() != "" {
		t.Error("Name() should return empty string")
	}
}

func TestBackendStub(t *testing.T) {
	backend, err := New()
	if err != ErrNotAvailable {
		t.Errorf("New() error = %v, want ErrNotAvailable", err)
	}
	if backend != nil {
		t.Error("New() should return nil backend on stub")
	}

	var b Backend
	if b.Name() != "cuda" {
		t.Errorf("Name() = %q, want cuda", b.Name())
	}
	if err := b.Launch(context.Background(), &kernel.Handle{}, nil); err != ErrNotAvailable {
		t.Errorf("Launch() error = %v, want ErrNotAvailable", err)
	}
	if err := b.Synchronize(); err != ErrNotAvailable {
		t.Errorf("Synchronize() error = %v, want ErrNotAvailable", err)
	}
}
