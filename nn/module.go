// Copyright 2025 Lattice ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/lattice-ml/lattice/internal/nn"
	"github.com/lattice-ml/lattice/internal/serialization"
	"github.com/lattice-ml/lattice/internal/tensor"
)

// Module is the interface all network layers implement.
type Module[B tensor.Backend] = nn.Module[B]

// Save writes a module's state dict to a .ltc file.
//
// The modelType string is stored in the file header so readers can
// tell what kind of model the weights belong to.
func Save[B tensor.Backend](module Module[B], path, modelType string) error {
	writer, err := serialization.NewWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}
	defer writer.Close()

	if err := writer.WriteStateDict(module.StateDict(), modelType, nil); err != nil {
		return fmt.Errorf("failed to write state dict: %w", err)
	}
	return nil
}

// Load reads a state dict from a .ltc file into an existing module.
//
// The module must already have the right architecture. Every tensor
// in the file is validated against the module's parameters before
// any data is copied, so a failed load leaves the module unchanged.
func Load[B tensor.Backend](module Module[B], path string) error {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open model file: %w", err)
	}
	defer reader.Close()

	stateDict, err := reader.ReadStateDict(tensor.CPU)
	if err != nil {
		return fmt.Errorf("failed to read state dict: %w", err)
	}

	if err := module.LoadStateDict(stateDict); err != nil {
		return fmt.Errorf("failed to load state dict: %w", err)
	}
	return nil
}
