// Copyright 2025 Lattice ML Framework. All rights reserved.
// Use of this source code is governed by the Apache 2.0 license
// that can be found in the LICENSE file.

// Package loader imports model weights from external checkpoint
// formats.
//
// This package wraps internal loader implementations and exports a
// clean public API for reading SafeTensors checkpoints and translating
// their weight names into Lattice naming.
//
// Example usage:
//
//	import (
//	    "github.com/lattice-ml/lattice/loader"
//	)
//
//	// Read a torchvision ResNeXt checkpoint into a state dict.
//	stateDict, err := loader.LoadStateDict("resnext50.safetensors", loader.NewTorchvisionMapper())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Apply it to a model built with the same configuration.
//	if err := model.LoadStateDict(stateDict); err != nil {
//	    log.Fatal(err)
//	}
package loader

import (
	"github.com/lattice-ml/lattice/internal/loader"
	"github.com/lattice-ml/lattice/internal/tensor"
)

// Checkpoint layout names.
const (
	LayoutTorchvision = loader.LayoutTorchvision
	LayoutNative      = loader.LayoutNative
)

// WeightMapper maps checkpoint-specific weight names to standard
// Lattice names.
type WeightMapper = loader.WeightMapper

// NativeMapper passes names through unchanged, for checkpoints that
// already use Lattice naming.
type NativeMapper = loader.NativeMapper

// TorchvisionMapper maps torchvision ResNet-family weight names to
// Lattice names.
type TorchvisionMapper = loader.TorchvisionMapper

// SafeTensorsReader reads tensors from a SafeTensors checkpoint.
type SafeTensorsReader = loader.SafeTensorsReader

// NewTorchvisionMapper creates a torchvision weight mapper.
func NewTorchvisionMapper() *TorchvisionMapper {
	return loader.NewTorchvisionMapper()
}

// NewSafeTensorsReader opens a SafeTensors file for reading.
//
// The caller must Close the reader when done.
func NewSafeTensorsReader(path string) (*SafeTensorsReader, error) {
	return loader.NewSafeTensorsReader(path)
}

// LoadStateDict reads every tensor from a SafeTensors checkpoint and
// returns a state dict keyed by Lattice names per the given mapper.
func LoadStateDict(path string, mapper WeightMapper) (map[string]*tensor.RawTensor, error) {
	return loader.LoadStateDict(path, mapper)
}
