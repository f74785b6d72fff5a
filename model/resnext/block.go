// Copyright 2025 Lattice ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package resnext

import (
	"fmt"
	"strings"

	"github.com/lattice-ml/lattice/nn"
	"github.com/lattice-ml/lattice/tensor"
)

// Block is a ResNeXt bottleneck residual block.
//
// The body runs 1x1 reduce, 3x3 grouped, 1x1 expand, each followed by
// batch norm, with ReLU after the first two. The gate and shortcut
// fields are resolved at construction: an SE gate or Identity, and a
// strided 1x1 projection or Identity. Forward never branches on
// configuration.
type Block[B tensor.Backend] struct {
	conv1 *nn.Conv2D[B]
	bn1   *nn.BatchNorm2d[B]
	conv2 *nn.Conv2D[B]
	bn2   *nn.BatchNorm2d[B]
	conv3 *nn.Conv2D[B]
	bn3   *nn.BatchNorm2d[B]
	relu  *nn.ReLU[B]

	gate     nn.Module[B] // *seGate or *nn.Identity
	shortcut nn.Module[B] // *projection or *nn.Identity
}

// newBlock creates a bottleneck block.
//
//	inChannels: channels entering the block
//	channels:   base channel count of the stage (64, 128, 256, 512)
//	stride:     stride of the grouped 3x3 convolution
//
// The block outputs channels*expansion channels. A projection
// shortcut is used whenever the residual path changes shape.
func newBlock[B tensor.Backend](cfg Config, inChannels, channels, stride int, backend B) *Block[B] {
	groupWidth := cfg.groupWidth(channels)
	outChannels := channels * expansion

	b := &Block[B]{
		conv1: nn.NewConv2D(inChannels, groupWidth, 1, 1, 0, 1, false, backend),
		bn1:   nn.NewBatchNorm2d(groupWidth, backend),
		conv2: nn.NewConv2D(groupWidth, groupWidth, 3, stride, 1, cfg.Cardinality, false, backend),
		bn2:   nn.NewBatchNorm2d(groupWidth, backend),
		conv3: nn.NewConv2D(groupWidth, outChannels, 1, 1, 0, 1, false, backend),
		bn3:   nn.NewBatchNorm2d(outChannels, backend),
		relu:  nn.NewReLU[B](),
	}

	if cfg.LastGamma {
		b.bn3.Gamma().Fill(0)
	}

	if cfg.UseSE {
		// The squeeze bottleneck is a quarter of the stage's base
		// channels, one sixteenth of the block output.
		b.gate = newSEGate(outChannels, channels/4, backend)
	} else {
		b.gate = nn.NewIdentity[B]()
	}

	if stride != 1 || inChannels != outChannels {
		b.shortcut = newProjection(inChannels, outChannels, stride, backend)
	} else {
		b.shortcut = nn.NewIdentity[B]()
	}

	return b
}

// Forward computes the block output: gated body plus shortcut, then
// ReLU.
func (b *Block[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	out := b.relu.Forward(b.bn1.Forward(b.conv1.Forward(input)))
	out = b.relu.Forward(b.bn2.Forward(b.conv2.Forward(out)))
	out = b.bn3.Forward(b.conv3.Forward(out))
	out = b.gate.Forward(out)

	residual := b.shortcut.Forward(input)
	return b.relu.Forward(out.Add(residual))
}

// Parameters returns all trainable parameters of the block.
func (b *Block[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, child := range []nn.Module[B]{
		b.conv1, b.bn1, b.conv2, b.bn2, b.conv3, b.bn3, b.gate, b.shortcut,
	} {
		params = append(params, child.Parameters()...)
	}
	return params
}

// children returns the block's named submodules in a stable order.
func (b *Block[B]) children() []namedModule[B] {
	return []namedModule[B]{
		{"conv1", b.conv1},
		{"bn1", b.bn1},
		{"conv2", b.conv2},
		{"bn2", b.bn2},
		{"conv3", b.conv3},
		{"bn3", b.bn3},
		{"se", b.gate},
		{"downsample", b.shortcut},
	}
}

// StateDict returns the block parameters with dotted child prefixes
// ("conv1.weight", "se.fc1.bias", "downsample.bn.running_mean", ...).
func (b *Block[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for _, child := range b.children() {
		for name, raw := range child.module.StateDict() {
			stateDict[child.name+"."+name] = raw
		}
	}
	return stateDict
}

// LoadStateDict loads parameters into the block's submodules.
func (b *Block[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, child := range b.children() {
		sub := subDict(stateDict, child.name+".")
		if len(sub) == 0 {
			continue
		}
		if err := child.module.LoadStateDict(sub); err != nil {
			return fmt.Errorf("%s: %w", child.name, err)
		}
	}
	return nil
}

// String returns a string representation of the block.
func (b *Block[B]) String() string {
	return fmt.Sprintf("Block(in=%d, out=%d, groups=%d, stride=%d)",
		b.conv1.InChannels(), b.conv3.OutChannels(), b.conv2.Groups(), b.conv2.Stride())
}

// seGate is the squeeze-and-excite channel gate.
//
// It pools the input to per-channel scalars, squeezes them through a
// bottleneck of two 1x1 convolutions, and multiplies the input by the
// resulting sigmoid weights.
type seGate[B tensor.Backend] struct {
	pool    *nn.GlobalAvgPool2d[B]
	fc1     *nn.Conv2D[B]
	relu    *nn.ReLU[B]
	fc2     *nn.Conv2D[B]
	sigmoid *nn.Sigmoid[B]
}

// newSEGate creates an SE gate over channels, squeezing down to
// reduced channels in the middle.
func newSEGate[B tensor.Backend](channels, reduced int, backend B) *seGate[B] {
	return &seGate[B]{
		pool:    nn.NewGlobalAvgPool2d(backend),
		fc1:     nn.NewConv2D(channels, reduced, 1, 1, 0, 1, true, backend),
		relu:    nn.NewReLU[B](),
		fc2:     nn.NewConv2D(reduced, channels, 1, 1, 0, 1, true, backend),
		sigmoid: nn.NewSigmoid[B](),
	}
}

// Forward returns the input rescaled channel by channel. Output shape
// equals input shape.
func (g *seGate[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	w := g.pool.Forward(input)
	w = g.relu.Forward(g.fc1.Forward(w))
	w = g.sigmoid.Forward(g.fc2.Forward(w))
	return input.Mul(w)
}

// Parameters returns the gate's trainable parameters.
func (g *seGate[B]) Parameters() []*nn.Parameter[B] {
	return append(g.fc1.Parameters(), g.fc2.Parameters()...)
}

// StateDict returns the gate parameters under "fc1." and "fc2.".
func (g *seGate[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for name, raw := range g.fc1.StateDict() {
		stateDict["fc1."+name] = raw
	}
	for name, raw := range g.fc2.StateDict() {
		stateDict["fc2."+name] = raw
	}
	return stateDict
}

// LoadStateDict loads the gate parameters.
func (g *seGate[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := g.fc1.LoadStateDict(subDict(stateDict, "fc1.")); err != nil {
		return fmt.Errorf("fc1: %w", err)
	}
	if err := g.fc2.LoadStateDict(subDict(stateDict, "fc2.")); err != nil {
		return fmt.Errorf("fc2: %w", err)
	}
	return nil
}

// String returns a string representation of the gate.
func (g *seGate[B]) String() string {
	return fmt.Sprintf("SEGate(channels=%d, reduced=%d)",
		g.fc1.InChannels(), g.fc1.OutChannels())
}

// projection is the strided 1x1 shortcut used when a block changes
// shape.
type projection[B tensor.Backend] struct {
	conv *nn.Conv2D[B]
	bn   *nn.BatchNorm2d[B]
}

func newProjection[B tensor.Backend](inChannels, outChannels, stride int, backend B) *projection[B] {
	return &projection[B]{
		conv: nn.NewConv2D(inChannels, outChannels, 1, stride, 0, 1, false, backend),
		bn:   nn.NewBatchNorm2d(outChannels, backend),
	}
}

// Forward projects the residual input to the block's output shape.
func (p *projection[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	return p.bn.Forward(p.conv.Forward(input))
}

// Parameters returns the projection's trainable parameters.
func (p *projection[B]) Parameters() []*nn.Parameter[B] {
	return append(p.conv.Parameters(), p.bn.Parameters()...)
}

// StateDict returns the projection parameters under "conv." and "bn.".
func (p *projection[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for name, raw := range p.conv.StateDict() {
		stateDict["conv."+name] = raw
	}
	for name, raw := range p.bn.StateDict() {
		stateDict["bn."+name] = raw
	}
	return stateDict
}

// LoadStateDict loads the projection parameters.
func (p *projection[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := p.conv.LoadStateDict(subDict(stateDict, "conv.")); err != nil {
		return fmt.Errorf("conv: %w", err)
	}
	if err := p.bn.LoadStateDict(subDict(stateDict, "bn.")); err != nil {
		return fmt.Errorf("bn: %w", err)
	}
	return nil
}

// String returns a string representation of the projection.
func (p *projection[B]) String() string {
	return fmt.Sprintf("Projection(in=%d, out=%d, stride=%d)",
		p.conv.InChannels(), p.conv.OutChannels(), p.conv.Stride())
}

// namedModule pairs a submodule with its state dict prefix.
type namedModule[B tensor.Backend] struct {
	name   string
	module nn.Module[B]
}

// subDict extracts the entries under prefix, with the prefix removed.
func subDict(stateDict map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	sub := make(map[string]*tensor.RawTensor)
	for key, raw := range stateDict {
		if strings.HasPrefix(key, prefix) {
			sub[strings.TrimPrefix(key, prefix)] = raw
		}
	}
	return sub
}
