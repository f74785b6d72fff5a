package nn

import (
	"fmt"

	"github.com/lattice-ml/lattice/internal/tensor"
)

// MaxPool2D is a 2D max pooling layer. It has no learnable parameters.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernelSize) / stride + 1
//	out_w = (width + 2*padding - kernelSize) / stride + 1
type MaxPool2D[B tensor.Backend] struct {
	kernelSize int
	stride     int
	padding    int
	backend    B
}

// NewMaxPool2D creates a new 2D max pooling layer.
//
// The classifier stem uses the overlapping 3x3/stride-2/padding-1
// configuration; NewMaxPool2D(2, 2, 0, backend) gives the common
// non-overlapping halving pool.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride, padding int, backend B) *MaxPool2D[B] {
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("maxpool2d: invalid padding %d", padding))
	}

	return &MaxPool2D[B]{
		kernelSize: kernelSize,
		stride:     stride,
		padding:    padding,
		backend:    backend,
	}
}

// Forward performs the forward pass.
func (m *MaxPool2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	if len(input.Shape()) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(input.Shape())))
	}

	outputRaw := m.backend.MaxPool2D(input.Raw(), m.kernelSize, m.stride, m.padding)
	return tensor.New(outputRaw, m.backend)
}

// Parameters returns an empty slice (pooling has no parameters).
func (m *MaxPool2D[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map (pooling has no state).
func (m *MaxPool2D[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op (pooling has no state).
func (m *MaxPool2D[B]) LoadStateDict(map[string]*tensor.RawTensor) error {
	return nil
}

// String returns a string representation of the layer.
func (m *MaxPool2D[B]) String() string {
	return fmt.Sprintf("MaxPool2D(kernel_size=%d, stride=%d, padding=%d)", m.kernelSize, m.stride, m.padding)
}

// GlobalAvgPool2d reduces each channel plane to its spatial average.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, 1, 1]
//
// Equivalent to adaptive average pooling with output size 1; used both
// for the classifier head and the squeeze step of squeeze-and-excitation.
type GlobalAvgPool2d[B tensor.Backend] struct {
	backend B
}

// NewGlobalAvgPool2d creates a global average pooling layer.
func NewGlobalAvgPool2d[B tensor.Backend](backend B) *GlobalAvgPool2d[B] {
	return &GlobalAvgPool2d[B]{backend: backend}
}

// Forward performs the forward pass.
func (g *GlobalAvgPool2d[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	if len(input.Shape()) != 4 {
		panic(fmt.Sprintf("globalavgpool2d: expected 4D input [N,C,H,W], got %dD", len(input.Shape())))
	}

	outputRaw := g.backend.GlobalAvgPool2D(input.Raw())
	return tensor.New(outputRaw, g.backend)
}

// Parameters returns an empty slice (pooling has no parameters).
func (g *GlobalAvgPool2d[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map (pooling has no state).
func (g *GlobalAvgPool2d[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op (pooling has no state).
func (g *GlobalAvgPool2d[B]) LoadStateDict(map[string]*tensor.RawTensor) error {
	return nil
}

// String returns a string representation of the layer.
func (g *GlobalAvgPool2d[B]) String() string {
	return "GlobalAvgPool2d()"
}
