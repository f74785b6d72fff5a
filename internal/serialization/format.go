// Package serialization implements the Lattice native weight format (.ltc).
//
// Layout:
//
//	magic "LTTC" (4 bytes)
//	format version (uint32, little endian)
//	header size (uint64, little endian)
//	JSON header (tensor names, dtypes, shapes, offsets)
//	zero padding to the next 64-byte boundary
//	tensor data section (tensors back to back, in header order)
//
// The header fully describes the data section, so a reader can
// validate every tensor's bounds before touching the data.
package serialization

import (
	"time"

	"github.com/lattice-ml/lattice/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "LTTC"
	FormatVersion   = 1
	HeaderAlignment = 64               // Tensor data starts 64-byte aligned.
	MaxHeaderSize   = 64 * 1024 * 1024 // Sanity bound when reading untrusted files.
)

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
)

// Header is the JSON header of a .ltc file.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the .ltc format
	ModelType     string            `json:"model_type"`     // Architecture name (e.g., "resnext50_32x4d")
	CreatedAt     time.Time         `json:"created_at"`     // When the file was created
	Tensors       []TensorMeta      `json:"tensors"`        // Tensor metadata, in data-section order
	Metadata      map[string]string `json:"metadata"`       // Custom metadata
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // Parameter name (e.g., "layers.0.0.conv1.weight")
	DType  string `json:"dtype"`  // Data type (e.g., "float32")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Byte offset from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// dtypeToString converts tensor.DataType to its serialized name.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	default:
		return "unknown"
	}
}

// stringToDtype converts a serialized name to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	default:
		return 0, false
	}
}
