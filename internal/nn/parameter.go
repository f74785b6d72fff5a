package nn

import (
	"github.com/lattice-ml/lattice/internal/tensor"
)

// Parameter represents a named weight tensor of a layer.
//
// Lattice does not train: parameters are frozen at construction time
// and only ever overwritten wholesale by LoadStateDict.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[B]
}

// NewParameter creates a new parameter.
//
// The tensor should be initialized before creating the Parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[B] {
	return p.tensor
}

// Fill overwrites every element with the given value.
// Used for the zero-gamma residual trick and in tests.
func (p *Parameter[B]) Fill(value float32) {
	data := p.tensor.Data()
	for i := range data {
		data[i] = value
	}
}
