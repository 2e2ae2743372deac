package launch

import (
	"errors"
	"fmt"
)

// Element constrains device buffer element types to what kernel signatures
// can express.
type Element interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint32 | ~uint64
}

// Buffer errors.
var (
	ErrFreed = errors.New("launch: use of freed device buffer")
)

// Buffer owns a contiguous device-side region of n elements. Its lifetime
// is tied to the host handle that allocated it: exclusively owned, never
// aliased across kernels without an explicit synchronization point.
// Concurrent launches against one buffer are undefined.
//
// Under the CPU emulator "device memory" is host memory, but the transfer
// discipline is kept: kernels see the buffer through Data, hosts move data
// in and out through CopyIn/CopyOut copies.
type Buffer[T Element] struct {
	data  []T
	freed bool
}

// Alloc allocates a zeroed device buffer of n elements.
func Alloc[T Element](n int) *Buffer[T] {
	return &Buffer[T]{data: make([]T, n)}
}

// FromHost allocates a device buffer and copies host into it.
func FromHost[T Element](host []T) *Buffer[T] {
	b := Alloc[T](len(host))
	copy(b.data, host)
	return b
}

// Len returns the element count.
func (b *Buffer[T]) Len() int { return len(b.data) }

// CopyIn overwrites the buffer with host, which must have the same length.
func (b *Buffer[T]) CopyIn(host []T) error {
	if b.freed {
		return ErrFreed
	}
	if len(host) != len(b.data) {
		return fmt.Errorf("launch: copy in %d elements into buffer of %d", len(host), len(b.data))
	}
	copy(b.data, host)
	return nil
}

// CopyOut returns a fresh host copy of the buffer contents.
func (b *Buffer[T]) CopyOut() ([]T, error) {
	if b.freed {
		return nil, ErrFreed
	}
	out := make([]T, len(b.data))
	copy(out, b.data)
	return out, nil
}

// Data exposes the device-side view for kernel bodies. Host code must not
// hold the returned slice across a launch.
func (b *Buffer[T]) Data() []T {
	if b.freed {
		return nil
	}
	return b.data
}

// Free releases the region. Further access fails with ErrFreed. Free is
// idempotent.
func (b *Buffer[T]) Free() {
	b.data = nil
	b.freed = true
}
