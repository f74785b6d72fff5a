package nn

import (
	"math"
	"testing"

	"github.com/lattice-ml/lattice/internal/backend/cpu"
	"github.com/lattice-ml/lattice/internal/tensor"
)

func TestBatchNorm2d_DefaultIsIdentityLike(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm2d(2, backend)

	// Fresh stats are mean=0, var=1, gamma=1, beta=0; up to eps the
	// layer passes values through.
	input, err := tensor.FromSlice([]float32{1, -2, 3, -4}, tensor.Shape{1, 2, 2, 1}, backend)
	if err != nil {
		t.Fatal(err)
	}
	out := bn.Forward(input)
	for i, v := range out.Data() {
		if math.Abs(float64(v-input.Data()[i])) > 1e-4 {
			t.Errorf("Output[%d] = %v, want ~%v", i, v, input.Data()[i])
		}
	}
}

func TestBatchNorm2d_StateDictKeys(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm2d(8, backend)

	stateDict := bn.StateDict()
	for _, key := range []string{"weight", "bias", "running_mean", "running_var"} {
		raw, ok := stateDict[key]
		if !ok {
			t.Errorf("Missing key %q", key)
			continue
		}
		if !raw.Shape().Equal(tensor.Shape{8}) {
			t.Errorf("%s shape = %v, want [8]", key, raw.Shape())
		}
	}
}

func TestBatchNorm2d_LoadStateDict(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm2d(1, backend)

	mkScalar := func(v float32) *tensor.RawTensor {
		raw, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, tensor.CPU)
		if err != nil {
			t.Fatal(err)
		}
		raw.AsFloat32()[0] = v
		return raw
	}
	err := bn.LoadStateDict(map[string]*tensor.RawTensor{
		"weight":       mkScalar(2),
		"bias":         mkScalar(1),
		"running_mean": mkScalar(2),
		"running_var":  mkScalar(4),
	})
	if err != nil {
		t.Fatalf("LoadStateDict failed: %v", err)
	}

	input, _ := tensor.FromSlice([]float32{4}, tensor.Shape{1, 1, 1, 1}, backend)
	out := bn.Forward(input)
	// 2*(4-2)/sqrt(4+eps) + 1 = 3 (up to eps).
	if math.Abs(float64(out.Data()[0]-3)) > 1e-3 {
		t.Errorf("Output = %v, want ~3", out.Data()[0])
	}
}

func TestBatchNorm2d_GammaFill(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm2d(4, backend)

	bn.Gamma().Fill(0)
	for i, v := range bn.Gamma().Tensor().Data() {
		if v != 0 {
			t.Errorf("Gamma[%d] = %v, want 0", i, v)
		}
	}

	// Zero gamma collapses the output to beta.
	input := tensor.Randn(tensor.Shape{1, 4, 2, 2}, backend)
	for _, v := range bn.Forward(input).Data() {
		if v != 0 {
			t.Errorf("Output = %v, want 0", v)
			break
		}
	}
}
