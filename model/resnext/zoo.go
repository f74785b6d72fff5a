// Copyright 2025 Lattice ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package resnext

import (
	"fmt"

	"github.com/lattice-ml/lattice/data/imagenet"
	"github.com/lattice-ml/lattice/nn"
	"github.com/lattice-ml/lattice/tensor"
)

// Option customizes a network built by New or the named constructors.
type Option func(*options)

type options struct {
	classes    int
	lastGamma  bool
	pretrained string
	labels     string
}

// WithClasses sets the classifier output size. The default is the
// ImageNet-1k class count.
func WithClasses(classes int) Option {
	return func(o *options) { o.classes = classes }
}

// WithLastGamma zero-initializes the scale of each block's final
// batch norm.
func WithLastGamma() Option {
	return func(o *options) { o.lastGamma = true }
}

// WithPretrained loads trained weights from a .ltc file after the
// network is built.
func WithPretrained(path string) Option {
	return func(o *options) { o.pretrained = path }
}

// WithLabels attaches class label metadata from a label file.
func WithLabels(path string) Option {
	return func(o *options) { o.labels = path }
}

// New builds a ResNeXt network with the given depth, cardinality, and
// per-group bottleneck width. With useSE every block carries a
// squeeze-and-excite gate.
func New[B tensor.Backend](depth, cardinality, width int, useSE bool, backend B, opts ...Option) (*ResNeXt[B], error) {
	o := options{classes: imagenet.NumClasses}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Config{
		Depth:           depth,
		Cardinality:     cardinality,
		BottleneckWidth: width,
		Classes:         o.classes,
		LastGamma:       o.lastGamma,
		UseSE:           useSE,
	}
	m, err := Build(cfg, backend)
	if err != nil {
		return nil, err
	}

	if o.pretrained != "" {
		if err := nn.Load[B](m, o.pretrained); err != nil {
			return nil, fmt.Errorf("resnext: failed to load pretrained weights: %w", err)
		}
	}
	if o.labels != "" {
		attrs, err := imagenet.Load(o.labels)
		if err != nil {
			return nil, err
		}
		m.SetAttributes(attrs)
	}
	return m, nil
}

// ResNeXt50_32x4d builds a 50-layer network with 32 groups of width 4.
func ResNeXt50_32x4d[B tensor.Backend](backend B, opts ...Option) (*ResNeXt[B], error) {
	return New(50, 32, 4, false, backend, opts...)
}

// ResNeXt101_32x4d builds a 101-layer network with 32 groups of width 4.
func ResNeXt101_32x4d[B tensor.Backend](backend B, opts ...Option) (*ResNeXt[B], error) {
	return New(101, 32, 4, false, backend, opts...)
}

// ResNeXt101_64x4d builds a 101-layer network with 64 groups of width 4.
func ResNeXt101_64x4d[B tensor.Backend](backend B, opts ...Option) (*ResNeXt[B], error) {
	return New(101, 64, 4, false, backend, opts...)
}

// SEResNeXt50_32x4d builds the squeeze-and-excite variant of
// ResNeXt50_32x4d.
func SEResNeXt50_32x4d[B tensor.Backend](backend B, opts ...Option) (*ResNeXt[B], error) {
	return New(50, 32, 4, true, backend, opts...)
}

// SEResNeXt101_32x4d builds the squeeze-and-excite variant of
// ResNeXt101_32x4d.
func SEResNeXt101_32x4d[B tensor.Backend](backend B, opts ...Option) (*ResNeXt[B], error) {
	return New(101, 32, 4, true, backend, opts...)
}

// SEResNeXt101_64x4d builds the squeeze-and-excite variant of
// ResNeXt101_64x4d.
func SEResNeXt101_64x4d[B tensor.Backend](backend B, opts ...Option) (*ResNeXt[B], error) {
	return New(101, 64, 4, true, backend, opts...)
}
