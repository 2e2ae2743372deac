package verify

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Reference operations computed with host arithmetic. They exist so the
// harness can check a kernel's output against an implementation that shares
// no code with the device path.

// Add returns the elementwise sum a + b.
func Add(a, b []float32) ([]float32, error) {
	if len(a) != len(b) {
		return nil, errors.Errorf("verify: add length mismatch %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return []float32{}, nil
	}

	ta := tensor.New(tensor.WithShape(len(a)), tensor.WithBacking(clone(a)))
	tb := tensor.New(tensor.WithShape(len(b)), tensor.WithBacking(clone(b)))
	sum, err := tensor.Add(ta, tb)
	if err != nil {
		return nil, errors.Wrap(err, "verify: reference add")
	}
	return sum.Data().([]float32), nil
}

// Scale returns a with every element multiplied by k.
func Scale(a []float32, k float32) ([]float32, error) {
	if len(a) == 0 {
		return []float32{}, nil
	}
	ta := tensor.New(tensor.WithShape(len(a)), tensor.WithBacking(clone(a)))
	scaled, err := tensor.Mul(ta, k)
	if err != nil {
		return nil, errors.Wrap(err, "verify: reference scale")
	}
	return scaled.Data().([]float32), nil
}

// clone keeps tensor backings from aliasing caller slices.
func clone(s []float32) []float32 {
	out := make([]float32, len(s))
	copy(out, s)
	return out
}
