package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lattice-ml/lattice/internal/tensor"
)

// Checkpoint layout names.
const (
	LayoutTorchvision = "torchvision"
	LayoutNative      = "native"
)

// WeightMapper maps checkpoint-specific weight names to standard
// Lattice names.
type WeightMapper interface {
	// MapName converts a checkpoint weight name to the Lattice name.
	// An empty result with a nil error means the entry carries no
	// loadable weight and should be skipped.
	MapName(name string) (string, error)

	// Layout returns the checkpoint layout name.
	Layout() string
}

// NativeMapper passes names through unchanged, for checkpoints that
// already use Lattice naming.
type NativeMapper struct{}

// MapName returns the name unchanged.
func (m *NativeMapper) MapName(name string) (string, error) {
	return name, nil
}

// Layout returns "native".
func (m *NativeMapper) Layout() string {
	return LayoutNative
}

// TorchvisionMapper maps torchvision ResNet-family weight names to
// Lattice names.
//
// Torchvision format:
//   - conv1.weight, bn1.weight, ... -> unchanged
//   - layer{s}.{j}.conv1.weight -> layers.{s-1}.{j}.conv1.weight
//   - layer{s}.{j}.downsample.0.weight -> layers.{s-1}.{j}.downsample.conv.weight
//   - layer{s}.{j}.downsample.1.bias -> layers.{s-1}.{j}.downsample.bn.bias
//   - layer{s}.{j}.se_module.fc1.weight -> layers.{s-1}.{j}.se.fc1.weight
//   - fc.weight, fc.bias -> unchanged
//
// Bookkeeping entries (num_batches_tracked) are skipped.
type TorchvisionMapper struct{}

// NewTorchvisionMapper creates a torchvision weight mapper.
func NewTorchvisionMapper() *TorchvisionMapper {
	return &TorchvisionMapper{}
}

// MapName converts a torchvision weight name to the Lattice name.
func (m *TorchvisionMapper) MapName(name string) (string, error) {
	if strings.HasSuffix(name, "num_batches_tracked") {
		return "", nil
	}
	if !strings.HasPrefix(name, "layer") {
		// Stem and head names already match.
		return name, nil
	}
	return m.mapLayerWeight(name)
}

// mapLayerWeight maps stage-block weights. A torchvision name looks
// like "layer2.3.conv1.weight"; stages are one-based.
func (m *TorchvisionMapper) mapLayerWeight(name string) (string, error) {
	parts := strings.SplitN(name, ".", 3)
	if len(parts) < 3 {
		return "", fmt.Errorf("unrecognized weight name %q", name)
	}

	stage, err := strconv.Atoi(strings.TrimPrefix(parts[0], "layer"))
	if err != nil || stage < 1 || stage > 4 {
		return "", fmt.Errorf("unrecognized stage in weight name %q", name)
	}
	block := parts[1]
	rest := parts[2]

	switch {
	case strings.HasPrefix(rest, "downsample.0."):
		rest = "downsample.conv." + strings.TrimPrefix(rest, "downsample.0.")
	case strings.HasPrefix(rest, "downsample.1."):
		rest = "downsample.bn." + strings.TrimPrefix(rest, "downsample.1.")
	case strings.HasPrefix(rest, "se_module."):
		rest = "se." + strings.TrimPrefix(rest, "se_module.")
	}
	return fmt.Sprintf("layers.%d.%s.%s", stage-1, block, rest), nil
}

// Layout returns "torchvision".
func (m *TorchvisionMapper) Layout() string {
	return LayoutTorchvision
}

// LoadStateDict reads every tensor of a SafeTensors checkpoint and
// returns a state dictionary keyed by mapped Lattice names.
func LoadStateDict(path string, mapper WeightMapper) (map[string]*tensor.RawTensor, error) {
	reader, err := NewSafeTensorsReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	stateDict := make(map[string]*tensor.RawTensor)
	for _, name := range reader.TensorNames() {
		mapped, err := mapper.MapName(name)
		if err != nil {
			return nil, fmt.Errorf("%s checkpoint: %w", mapper.Layout(), err)
		}
		if mapped == "" {
			continue
		}
		if _, ok := stateDict[mapped]; ok {
			return nil, fmt.Errorf("%s checkpoint: duplicate mapped name %q", mapper.Layout(), mapped)
		}
		raw, err := reader.LoadTensor(name)
		if err != nil {
			return nil, err
		}
		stateDict[mapped] = raw
	}
	return stateDict, nil
}
