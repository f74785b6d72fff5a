// Copyright 2025 Lattice ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers for inference.
//
// Layers are generic over the compute backend and follow the
// Module interface: Forward runs the computation, StateDict and
// LoadStateDict move trained weights in and out.
package nn

import (
	"github.com/lattice-ml/lattice/internal/nn"
	"github.com/lattice-ml/lattice/internal/tensor"
)

// Parameter represents a named model weight.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a named parameter wrapping a tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// ShapeMismatchError reports a state dict entry whose shape or type
// does not match the parameter it targets.
type ShapeMismatchError = nn.ShapeMismatchError

// Conv2D is a 2D convolution layer with optional channel groups.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a 2D convolution layer.
func NewConv2D[B tensor.Backend](inChannels, outChannels, kernelSize, stride, padding, groups int, useBias bool, backend B) *Conv2D[B] {
	return nn.NewConv2D(inChannels, outChannels, kernelSize, stride, padding, groups, useBias, backend)
}

// BatchNorm2d normalizes NCHW activations with stored statistics.
type BatchNorm2d[B tensor.Backend] = nn.BatchNorm2d[B]

// NewBatchNorm2d creates a batch normalization layer over numFeatures channels.
func NewBatchNorm2d[B tensor.Backend](numFeatures int, backend B) *BatchNorm2d[B] {
	return nn.NewBatchNorm2d(numFeatures, backend)
}

// Linear is a fully connected layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a fully connected layer.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// MaxPool2D is a 2D max pooling layer.
type MaxPool2D[B tensor.Backend] = nn.MaxPool2D[B]

// NewMaxPool2D creates a max pooling layer.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride, padding int, backend B) *MaxPool2D[B] {
	return nn.NewMaxPool2D(kernelSize, stride, padding, backend)
}

// GlobalAvgPool2d averages each channel plane down to 1x1.
type GlobalAvgPool2d[B tensor.Backend] = nn.GlobalAvgPool2d[B]

// NewGlobalAvgPool2d creates a global average pooling layer.
func NewGlobalAvgPool2d[B tensor.Backend](backend B) *GlobalAvgPool2d[B] {
	return nn.NewGlobalAvgPool2d(backend)
}

// ReLU applies the rectified linear activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid applies the logistic activation.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Identity passes its input through unchanged.
type Identity[B tensor.Backend] = nn.Identity[B]

// NewIdentity creates an identity module.
func NewIdentity[B tensor.Backend]() *Identity[B] {
	return nn.NewIdentity[B]()
}

// Sequential chains modules, feeding each output to the next input.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a sequential container from the given modules.
func NewSequential[B tensor.Backend](modules ...nn.Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}
