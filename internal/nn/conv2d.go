package nn

import (
	"fmt"

	"github.com/lattice-ml/lattice/internal/tensor"
)

// Conv2D is a 2D convolutional layer with optional channel grouping.
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels/groups, k, k]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - k) / stride + 1
//	out_w = (width + 2*padding - k) / stride + 1
//
// With groups > 1 the input and output channels are split into that
// many independent convolution sub-problems. This is the aggregated
// transformation of ResNeXt, where groups is the cardinality.
type Conv2D[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	kernelSize  int
	stride      int
	padding     int
	groups      int
	useBias     bool

	weight *Parameter[B] // [out_channels, in_channels/groups, k, k]
	bias   *Parameter[B] // [out_channels] or nil

	backend B
}

// NewConv2D creates a 2D convolutional layer with Xavier initialization.
//
// Parameters:
//   - inChannels, outChannels: channel counts; both must be divisible by groups
//   - kernelSize: square kernel side length
//   - stride, padding: spatial stride and zero padding
//   - groups: number of grouped-convolution groups (1 for dense)
//   - useBias: whether to include a bias term
func NewConv2D[B tensor.Backend](
	inChannels, outChannels, kernelSize, stride, padding, groups int,
	useBias bool,
	backend B,
) *Conv2D[B] {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelSize <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}
	if groups <= 0 || inChannels%groups != 0 || outChannels%groups != 0 {
		panic(fmt.Sprintf("conv2d: channels (in=%d, out=%d) not divisible by groups %d", inChannels, outChannels, groups))
	}

	weightShape := tensor.Shape{outChannels, inChannels / groups, kernelSize, kernelSize}

	fanIn := (inChannels / groups) * kernelSize * kernelSize
	fanOut := (outChannels / groups) * kernelSize * kernelSize
	weightParam := NewParameter("weight", Xavier(fanIn, fanOut, weightShape, backend))

	var biasParam *Parameter[B]
	if useBias {
		biasParam = NewParameter("bias", Zeros[B](tensor.Shape{outChannels}, backend))
	}

	return &Conv2D[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		stride:      stride,
		padding:     padding,
		groups:      groups,
		useBias:     useBias,
		weight:      weightParam,
		bias:        biasParam,
		backend:     backend,
	}
}

// Forward performs the forward pass.
//
// Input: [batch, in_channels, height, width]
// Output: [batch, out_channels, out_h, out_w].
func (c *Conv2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if inputShape[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != expected %d", inputShape[1], c.inChannels))
	}

	outputRaw := c.backend.Conv2D(
		input.Raw(),
		c.weight.Tensor().Raw(),
		c.stride,
		c.padding,
		c.groups,
	)
	output := tensor.New(outputRaw, c.backend)

	if c.useBias {
		// Reshape bias [out_channels] -> [1, out_channels, 1, 1] for broadcasting.
		biasReshaped := c.bias.Tensor().Reshape(1, c.outChannels, 1, 1)
		output = output.Add(biasReshaped)
	}

	return output
}

// Parameters returns all trainable parameters.
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	if c.useBias {
		return []*Parameter[B]{c.weight, c.bias}
	}
	return []*Parameter[B]{c.weight}
}

// Weight returns the weight parameter.
func (c *Conv2D[B]) Weight() *Parameter[B] {
	return c.weight
}

// Bias returns the bias parameter, or nil when the layer has none.
func (c *Conv2D[B]) Bias() *Parameter[B] {
	return c.bias
}

// StateDict returns a map of parameter names to raw tensors.
func (c *Conv2D[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := map[string]*tensor.RawTensor{
		"weight": c.weight.Tensor().Raw(),
	}
	if c.useBias {
		stateDict["bias"] = c.bias.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary.
// All entries are validated before any data is copied.
func (c *Conv2D[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	weightShape := tensor.Shape{c.outChannels, c.inChannels / c.groups, c.kernelSize, c.kernelSize}
	if err := checkParam("weight", weightShape, stateDict["weight"]); err != nil {
		return err
	}
	if c.useBias {
		if err := checkParam("bias", tensor.Shape{c.outChannels}, stateDict["bias"]); err != nil {
			return err
		}
	}

	copy(c.weight.Tensor().Data(), stateDict["weight"].AsFloat32())
	if c.useBias {
		copy(c.bias.Tensor().Data(), stateDict["bias"].AsFloat32())
	}
	return nil
}

// String returns a string representation of the layer.
func (c *Conv2D[B]) String() string {
	return fmt.Sprintf("Conv2D(in_channels=%d, out_channels=%d, kernel_size=%d, stride=%d, padding=%d, groups=%d, bias=%v)",
		c.inChannels, c.outChannels, c.kernelSize, c.stride, c.padding, c.groups, c.useBias)
}

// InChannels returns the number of input channels.
func (c *Conv2D[B]) InChannels() int {
	return c.inChannels
}

// OutChannels returns the number of output channels.
func (c *Conv2D[B]) OutChannels() int {
	return c.outChannels
}

// Groups returns the number of convolution groups.
func (c *Conv2D[B]) Groups() int {
	return c.groups
}

// Stride returns the stride.
func (c *Conv2D[B]) Stride() int {
	return c.stride
}
