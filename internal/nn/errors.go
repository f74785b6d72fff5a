package nn

import (
	"fmt"

	"github.com/lattice-ml/lattice/internal/tensor"
)

// ShapeMismatchError reports that a serialized parameter cannot be
// loaded because its shape or dtype does not match the layer slot it
// targets. Loads fail atomically: when this error is returned, the
// module's existing parameters are untouched.
type ShapeMismatchError struct {
	Param string          // Parameter name (e.g., "layers.0.0.conv1.weight")
	Want  tensor.Shape    // Shape the constructed layer expects
	Got   tensor.Shape    // Shape found in the state dictionary
	DType tensor.DataType // DType found, when the mismatch is a dtype
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	if !e.Want.Equal(e.Got) {
		return fmt.Sprintf("parameter %q: shape mismatch: expected %v, got %v", e.Param, e.Want, e.Got)
	}
	return fmt.Sprintf("parameter %q: dtype mismatch: expected float32, got %v", e.Param, e.DType)
}

// checkParam validates that raw can be copied into a parameter slot of
// the given name and expected shape.
func checkParam(name string, want tensor.Shape, raw *tensor.RawTensor) error {
	if raw == nil {
		return fmt.Errorf("missing %q in state dict", name)
	}
	if !raw.Shape().Equal(want) {
		return &ShapeMismatchError{Param: name, Want: want, Got: raw.Shape()}
	}
	if raw.DType() != tensor.Float32 {
		return &ShapeMismatchError{Param: name, Want: want, Got: raw.Shape(), DType: raw.DType()}
	}
	return nil
}
