// Copyright 2025 Lattice ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package resnext

import (
	"fmt"
	"strings"

	"github.com/lattice-ml/lattice/data/imagenet"
	"github.com/lattice-ml/lattice/nn"
	"github.com/lattice-ml/lattice/tensor"
)

// ResNeXt is an assembled classifier network.
//
// Layout: 7x7 stem convolution, batch norm, ReLU, 3x3 max pool, four
// stages of bottleneck blocks, global average pool, and a linear
// classifier head. ResNeXt implements nn.Module.
type ResNeXt[B tensor.Backend] struct {
	backend B
	config  Config

	conv1   *nn.Conv2D[B]
	bn1     *nn.BatchNorm2d[B]
	relu    *nn.ReLU[B]
	maxpool *nn.MaxPool2D[B]
	stages  [4][]*Block[B]
	avgpool *nn.GlobalAvgPool2d[B]
	fc      *nn.Linear[B]

	attrs *imagenet.Attributes
}

// Build assembles a network from the configuration. Parameters are
// freshly initialized; use LoadStateDict or the zoo's Pretrained
// option to bring in trained weights.
func Build[B tensor.Backend](cfg Config, backend B) (*ResNeXt[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &ResNeXt[B]{
		backend: backend,
		config:  cfg,
		conv1:   nn.NewConv2D(3, stemChannels, 7, 2, 3, 1, false, backend),
		bn1:     nn.NewBatchNorm2d(stemChannels, backend),
		relu:    nn.NewReLU[B](),
		maxpool: nn.NewMaxPool2D(3, 2, 1, backend),
		avgpool: nn.NewGlobalAvgPool2d(backend),
	}

	inChannels := stemChannels
	channels := stemChannels
	for i, count := range cfg.stageBlocks() {
		stride := 2
		if i == 0 {
			stride = 1
		}
		blocks := make([]*Block[B], count)
		blocks[0] = newBlock(cfg, inChannels, channels, stride, backend)
		inChannels = channels * expansion
		for j := 1; j < count; j++ {
			blocks[j] = newBlock(cfg, inChannels, channels, 1, backend)
		}
		m.stages[i] = blocks
		channels *= 2
	}

	m.fc = nn.NewLinear(inChannels, cfg.Classes, backend)
	return m, nil
}

// Forward classifies a batch of images.
//
// Input shape is [batch, 3, height, width] with height and width
// divisible by 32. Output shape is [batch, classes] of raw logits.
func (m *ResNeXt[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	x := m.relu.Forward(m.bn1.Forward(m.conv1.Forward(input)))
	x = m.maxpool.Forward(x)
	for _, stage := range m.stages {
		for _, block := range stage {
			x = block.Forward(x)
		}
	}
	x = m.avgpool.Forward(x)
	shape := x.Shape()
	x = x.Reshape(shape[0], shape[1])
	return m.fc.Forward(x)
}

// Parameters returns all parameters of the network.
func (m *ResNeXt[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	params = append(params, m.conv1.Parameters()...)
	params = append(params, m.bn1.Parameters()...)
	for _, stage := range m.stages {
		for _, block := range stage {
			params = append(params, block.Parameters()...)
		}
	}
	params = append(params, m.fc.Parameters()...)
	return params
}

// Config returns the configuration the network was built from.
func (m *ResNeXt[B]) Config() Config {
	return m.config
}

// Classes returns the classifier output size.
func (m *ResNeXt[B]) Classes() int {
	return m.config.Classes
}

// Attributes returns the class label metadata attached to the model,
// or nil when none was loaded.
func (m *ResNeXt[B]) Attributes() *imagenet.Attributes {
	return m.attrs
}

// SetAttributes attaches class label metadata to the model.
func (m *ResNeXt[B]) SetAttributes(attrs *imagenet.Attributes) {
	m.attrs = attrs
}

// Stage returns the blocks of stage index (0..3). Exposed for tests
// and feature extraction.
func (m *ResNeXt[B]) Stage(index int) []*Block[B] {
	return m.stages[index]
}

// StateDict returns every parameter and running statistic of the
// network under dotted names: "conv1.weight", "bn1.running_mean",
// "layers.2.5.conv2.weight", "fc.bias", and so on.
func (m *ResNeXt[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for name, raw := range m.conv1.StateDict() {
		stateDict["conv1."+name] = raw
	}
	for name, raw := range m.bn1.StateDict() {
		stateDict["bn1."+name] = raw
	}
	for i, stage := range m.stages {
		for j, block := range stage {
			prefix := fmt.Sprintf("layers.%d.%d.", i, j)
			for name, raw := range block.StateDict() {
				stateDict[prefix+name] = raw
			}
		}
	}
	for name, raw := range m.fc.StateDict() {
		stateDict["fc."+name] = raw
	}
	return stateDict
}

// LoadStateDict loads a complete state dictionary into the network.
//
// The load is atomic: every entry is checked against the constructed
// architecture before any data is copied, so on error the network's
// parameters are unchanged. Unknown names, missing names, and shape
// or dtype mismatches are all errors.
func (m *ResNeXt[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	own := m.StateDict()

	for name, raw := range stateDict {
		want, ok := own[name]
		if !ok {
			return fmt.Errorf("resnext: unexpected parameter %q", name)
		}
		if raw == nil {
			return fmt.Errorf("resnext: nil tensor for parameter %q", name)
		}
		if raw.DType() != want.DType() || !raw.Shape().Equal(want.Shape()) {
			return &nn.ShapeMismatchError{
				Param: name,
				Want:  want.Shape(),
				Got:   raw.Shape(),
				DType: raw.DType(),
			}
		}
	}
	for name := range own {
		if _, ok := stateDict[name]; !ok {
			return fmt.Errorf("resnext: missing parameter %q", name)
		}
	}

	if err := m.conv1.LoadStateDict(subDict(stateDict, "conv1.")); err != nil {
		return fmt.Errorf("conv1: %w", err)
	}
	if err := m.bn1.LoadStateDict(subDict(stateDict, "bn1.")); err != nil {
		return fmt.Errorf("bn1: %w", err)
	}
	for i, stage := range m.stages {
		for j, block := range stage {
			prefix := fmt.Sprintf("layers.%d.%d.", i, j)
			if err := block.LoadStateDict(subDict(stateDict, prefix)); err != nil {
				return fmt.Errorf("layers.%d.%d: %w", i, j, err)
			}
		}
	}
	if err := m.fc.LoadStateDict(subDict(stateDict, "fc.")); err != nil {
		return fmt.Errorf("fc: %w", err)
	}
	return nil
}

// String returns a multi-line summary of the network.
func (m *ResNeXt[B]) String() string {
	var b strings.Builder
	name := "ResNeXt"
	if m.config.UseSE {
		name = "SE-ResNeXt"
	}
	fmt.Fprintf(&b, "%s-%d (%dx%dd, classes=%d)\n",
		name, m.config.Depth, m.config.Cardinality, m.config.BottleneckWidth, m.config.Classes)
	for i, stage := range m.stages {
		fmt.Fprintf(&b, "  stage %d: %d blocks, out=%d\n",
			i, len(stage), stage[0].conv3.OutChannels())
	}
	return b.String()
}
