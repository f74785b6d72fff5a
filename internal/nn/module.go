// Package nn implements the neural network layer primitives Lattice
// models are assembled from.
//
// Building blocks:
//   - Module interface: base interface for all components
//   - Parameter: named weight tensors
//   - Conv2D (dense and grouped), BatchNorm2d, Linear
//   - MaxPool2D, GlobalAvgPool2d
//   - Activations: ReLU, Sigmoid
//   - Sequential: container for stacking layers
//
// Design inspired by PyTorch's nn.Module, adapted for Go generics.
// Lattice is inference-only: parameters carry no gradients, and every
// module's Forward is a pure function of its frozen parameters.
package nn

import (
	"github.com/lattice-ml/lattice/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules compose into larger architectures; a model is itself a
// Module. Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor must have the appropriate shape for this module.
	// For example, Conv2D expects [batch, channels, height, width].
	Forward(input *tensor.Tensor[B]) *tensor.Tensor[B]

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without parameters
	// (activations, pooling) return an empty slice.
	Parameters() []*Parameter[B]

	// StateDict returns a map of parameter names to raw tensors,
	// used for serialization. Unlike Parameters, it also includes
	// non-trainable state such as batch-norm running statistics.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict loads parameters from a state dictionary.
	//
	// Implementations must validate every entry before copying any
	// data, so a failed load leaves the module's parameters unchanged.
	// Returns *ShapeMismatchError if a tensor's shape does not match.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
