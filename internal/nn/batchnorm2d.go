package nn

import (
	"fmt"

	"github.com/lattice-ml/lattice/internal/tensor"
)

// DefaultBatchNormEps is the variance floor added before the square
// root, matching the convention the pretrained checkpoints were
// trained with.
const DefaultBatchNormEps = 1e-5

// BatchNorm2d applies per-channel batch normalization to NCHW input
// using frozen running statistics (inference mode):
//
//	y = gamma * (x - running_mean) / sqrt(running_var + eps) + beta
//
// gamma initializes to 1 and beta to 0, so a freshly constructed
// layer passes its input through unchanged (mean 0, variance 1).
type BatchNorm2d[B tensor.Backend] struct {
	numFeatures int
	eps         float32

	gamma       *Parameter[B] // scale, serialized as "weight"
	beta        *Parameter[B] // shift, serialized as "bias"
	runningMean *Parameter[B]
	runningVar  *Parameter[B]

	backend B
}

// NewBatchNorm2d creates a batch normalization layer over numFeatures channels.
func NewBatchNorm2d[B tensor.Backend](numFeatures int, backend B) *BatchNorm2d[B] {
	if numFeatures <= 0 {
		panic(fmt.Sprintf("batchnorm2d: invalid feature count %d", numFeatures))
	}

	shape := tensor.Shape{numFeatures}
	return &BatchNorm2d[B]{
		numFeatures: numFeatures,
		eps:         DefaultBatchNormEps,
		gamma:       NewParameter("weight", Ones[B](shape, backend)),
		beta:        NewParameter("bias", Zeros[B](shape, backend)),
		runningMean: NewParameter("running_mean", Zeros[B](shape, backend)),
		runningVar:  NewParameter("running_var", Ones[B](shape, backend)),
		backend:     backend,
	}
}

// Forward normalizes the input with the layer's running statistics.
//
// Input: [batch, num_features, height, width], returned unchanged in shape.
func (bn *BatchNorm2d[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if inputShape[1] != bn.numFeatures {
		panic(fmt.Sprintf("batchnorm2d: input channels %d != expected %d", inputShape[1], bn.numFeatures))
	}

	outputRaw := bn.backend.BatchNorm2D(
		input.Raw(),
		bn.gamma.Tensor().Raw(),
		bn.beta.Tensor().Raw(),
		bn.runningMean.Tensor().Raw(),
		bn.runningVar.Tensor().Raw(),
		bn.eps,
	)
	return tensor.New(outputRaw, bn.backend)
}

// Parameters returns the affine parameters (gamma, beta).
// Running statistics are state, not parameters; they appear only in
// the state dict.
func (bn *BatchNorm2d[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{bn.gamma, bn.beta}
}

// Gamma returns the scale parameter.
func (bn *BatchNorm2d[B]) Gamma() *Parameter[B] {
	return bn.gamma
}

// Beta returns the shift parameter.
func (bn *BatchNorm2d[B]) Beta() *Parameter[B] {
	return bn.beta
}

// NumFeatures returns the number of normalized channels.
func (bn *BatchNorm2d[B]) NumFeatures() int {
	return bn.numFeatures
}

// StateDict returns a map of parameter names to raw tensors.
func (bn *BatchNorm2d[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight":       bn.gamma.Tensor().Raw(),
		"bias":         bn.beta.Tensor().Raw(),
		"running_mean": bn.runningMean.Tensor().Raw(),
		"running_var":  bn.runningVar.Tensor().Raw(),
	}
}

// LoadStateDict loads parameters from a state dictionary.
// All entries are validated before any data is copied.
func (bn *BatchNorm2d[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	shape := tensor.Shape{bn.numFeatures}
	names := []string{"weight", "bias", "running_mean", "running_var"}
	for _, name := range names {
		if err := checkParam(name, shape, stateDict[name]); err != nil {
			return err
		}
	}

	copy(bn.gamma.Tensor().Data(), stateDict["weight"].AsFloat32())
	copy(bn.beta.Tensor().Data(), stateDict["bias"].AsFloat32())
	copy(bn.runningMean.Tensor().Data(), stateDict["running_mean"].AsFloat32())
	copy(bn.runningVar.Tensor().Data(), stateDict["running_var"].AsFloat32())
	return nil
}

// String returns a string representation of the layer.
func (bn *BatchNorm2d[B]) String() string {
	return fmt.Sprintf("BatchNorm2d(num_features=%d, eps=%g)", bn.numFeatures, bn.eps)
}
