// Copyright 2025 Lattice ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package resnext builds ResNeXt and SE-ResNeXt image classifiers.
//
// ResNeXt stacks bottleneck blocks whose middle convolution is split
// into cardinality groups. The SE variants add a squeeze-and-excite
// gate that rescales each channel of a block's output before the
// residual sum. Networks are assembled for inference; weights come
// from a .ltc file via the Pretrained option or LoadStateDict.
package resnext

import (
	"fmt"
	"sort"
	"strings"
)

// Per-stage block counts for every supported depth.
var depthSpec = map[int][4]int{
	50:  {3, 4, 6, 3},
	101: {3, 4, 23, 3},
}

// Architecture constants shared by all variants.
const (
	// stemChannels is the channel count after the 7x7 stem convolution.
	stemChannels = 64

	// expansion is the bottleneck output multiplier. The third
	// convolution of every block widens to channels*expansion.
	expansion = 4

	// baseWidth anchors the group width formula: each group carries
	// floor(channels*width/baseWidth) channels.
	baseWidth = 64
)

// Config describes a ResNeXt network.
type Config struct {
	// Depth selects the stage layout. Supported: 50, 101.
	Depth int

	// Cardinality is the number of groups in each block's 3x3
	// convolution.
	Cardinality int

	// BottleneckWidth is the per-group channel width at the first
	// stage (the "4" in 32x4d).
	BottleneckWidth int

	// Classes is the classifier output size.
	Classes int

	// LastGamma zero-initializes the scale of each block's final
	// batch norm, so a freshly built block starts as an identity
	// mapping.
	LastGamma bool

	// UseSE adds a squeeze-and-excite gate to every block.
	UseSE bool
}

// ConfigurationError reports a Config field set to an unsupported
// value.
type ConfigurationError struct {
	Field string
	Value int
	Valid []int // supported values, when the set is enumerable
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if len(e.Valid) == 0 {
		return fmt.Sprintf("resnext: invalid %s %d", e.Field, e.Value)
	}
	valid := make([]string, len(e.Valid))
	for i, v := range e.Valid {
		valid[i] = fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("resnext: invalid %s %d (supported: %s)",
		e.Field, e.Value, strings.Join(valid, ", "))
}

// Validate checks the configuration against the supported
// architecture space.
func (c Config) Validate() error {
	if _, ok := depthSpec[c.Depth]; !ok {
		depths := make([]int, 0, len(depthSpec))
		for d := range depthSpec {
			depths = append(depths, d)
		}
		sort.Ints(depths)
		return &ConfigurationError{Field: "depth", Value: c.Depth, Valid: depths}
	}
	if c.Cardinality <= 0 {
		return &ConfigurationError{Field: "cardinality", Value: c.Cardinality}
	}
	if c.BottleneckWidth <= 0 {
		return &ConfigurationError{Field: "bottleneck width", Value: c.BottleneckWidth}
	}
	if c.Classes <= 0 {
		return &ConfigurationError{Field: "classes", Value: c.Classes}
	}
	return nil
}

// stageBlocks returns the per-stage block counts for the configured
// depth. Validate must have passed.
func (c Config) stageBlocks() [4]int {
	return depthSpec[c.Depth]
}

// groupWidth returns the total width of the grouped convolution for a
// stage whose base channel count is channels. The per-group width
// scales with the stage and is floored at the division, matching the
// reference weights this package loads.
func (c Config) groupWidth(channels int) int {
	return c.Cardinality * (channels * c.BottleneckWidth / baseWidth)
}
