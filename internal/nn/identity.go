package nn

import (
	"github.com/lattice-ml/lattice/internal/tensor"
)

// Identity passes its input through unchanged.
//
// It stands in for optional paths that were resolved away at
// construction time (e.g. a residual shortcut that needs no
// projection), so forward passes never branch on nil.
type Identity[B tensor.Backend] struct{}

// NewIdentity creates a new identity module.
func NewIdentity[B tensor.Backend]() *Identity[B] {
	return &Identity[B]{}
}

// Forward returns the input unchanged.
func (id *Identity[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	return input
}

// Parameters returns an empty slice.
func (id *Identity[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map.
func (id *Identity[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op.
func (id *Identity[B]) LoadStateDict(map[string]*tensor.RawTensor) error {
	return nil
}

// String returns a string representation of the module.
func (id *Identity[B]) String() string {
	return "Identity()"
}
