package loader

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/lattice-ml/lattice/internal/tensor"
)

// writeSafeTensors writes a minimal SafeTensors file with the given
// float32 tensors, laid out in iteration-stable order.
func writeSafeTensors(t *testing.T, path string, names []string, tensors map[string][]float32, shapes map[string][]int) {
	t.Helper()

	headerMap := make(map[string]interface{})
	headerMap["__metadata__"] = map[string]string{"format": "pt"}

	var offset int64
	for _, name := range names {
		size := int64(4 * len(tensors[name]))
		headerMap[name] = SafeTensorInfo{
			DType:       SafeTensorsF32,
			Shape:       shapes[name],
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(headerMap)
	if err != nil {
		t.Fatalf("Failed to marshal header: %v", err)
	}

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	defer file.Close()

	if err := binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		t.Fatalf("Failed to write header size: %v", err)
	}
	if _, err := file.Write(headerJSON); err != nil {
		t.Fatalf("Failed to write header: %v", err)
	}
	for _, name := range names {
		for _, v := range tensors[name] {
			if err := binary.Write(file, binary.LittleEndian, v); err != nil {
				t.Fatalf("Failed to write data: %v", err)
			}
		}
	}
}

func TestSafeTensorsReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")
	writeSafeTensors(t, path,
		[]string{"weight", "bias"},
		map[string][]float32{
			"weight": {1, 2, 3, 4, 5, 6},
			"bias":   {7, 8, 9},
		},
		map[string][]int{
			"weight": {2, 3},
			"bias":   {3},
		})

	reader, err := NewSafeTensorsReader(path)
	if err != nil {
		t.Fatalf("NewSafeTensorsReader failed: %v", err)
	}
	defer reader.Close()

	if got := reader.Metadata()["format"]; got != "pt" {
		t.Errorf("Metadata format = %q, want \"pt\"", got)
	}
	if len(reader.TensorNames()) != 2 {
		t.Errorf("Expected 2 tensors, got %d", len(reader.TensorNames()))
	}

	raw, err := reader.LoadTensor("weight")
	if err != nil {
		t.Fatalf("LoadTensor failed: %v", err)
	}
	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape = %v, want [2 3]", raw.Shape())
	}
	data := raw.AsFloat32()
	for i, want := range []float32{1, 2, 3, 4, 5, 6} {
		if data[i] != want {
			t.Errorf("Data[%d] = %v, want %v", i, data[i], want)
		}
	}

	if _, err := reader.LoadTensor("missing"); err == nil {
		t.Error("Expected error for missing tensor")
	}
}

func TestTorchvisionMapper(t *testing.T) {
	mapper := NewTorchvisionMapper()

	tests := []struct {
		in   string
		want string
	}{
		{"conv1.weight", "conv1.weight"},
		{"bn1.running_mean", "bn1.running_mean"},
		{"fc.bias", "fc.bias"},
		{"layer1.0.conv2.weight", "layers.0.0.conv2.weight"},
		{"layer3.22.bn3.running_var", "layers.2.22.bn3.running_var"},
		{"layer2.0.downsample.0.weight", "layers.1.0.downsample.conv.weight"},
		{"layer2.0.downsample.1.running_mean", "layers.1.0.downsample.bn.running_mean"},
		{"layer4.1.se_module.fc1.bias", "layers.3.1.se.fc1.bias"},
		{"bn1.num_batches_tracked", ""}, // skipped
	}
	for _, tt := range tests {
		got, err := mapper.MapName(tt.in)
		if err != nil {
			t.Errorf("MapName(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("MapName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := mapper.MapName("layer9.0.conv1.weight"); err == nil {
		t.Error("Expected error for out-of-range stage")
	}
}

func TestLoadStateDict_MapsAndSkips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.safetensors")
	writeSafeTensors(t, path,
		[]string{"conv1.weight", "layer1.0.conv1.weight", "bn1.num_batches_tracked"},
		map[string][]float32{
			"conv1.weight":            {1, 2, 3, 4},
			"layer1.0.conv1.weight":   {5, 6},
			"bn1.num_batches_tracked": {42},
		},
		map[string][]int{
			"conv1.weight":            {4, 1, 1, 1},
			"layer1.0.conv1.weight":   {2, 1, 1, 1},
			"bn1.num_batches_tracked": {1},
		})

	stateDict, err := LoadStateDict(path, NewTorchvisionMapper())
	if err != nil {
		t.Fatalf("LoadStateDict failed: %v", err)
	}

	if len(stateDict) != 2 {
		t.Fatalf("Expected 2 entries after skipping, got %d", len(stateDict))
	}
	if _, ok := stateDict["layers.0.0.conv1.weight"]; !ok {
		t.Error("Missing remapped block weight")
	}
	if _, ok := stateDict["conv1.weight"]; !ok {
		t.Error("Missing stem weight")
	}
}
