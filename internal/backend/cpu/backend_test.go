package cpu

import (
	"math"
	"testing"

	"github.com/lattice-ml/lattice/internal/tensor"
)

func fromSlice(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	copy(raw.AsFloat32(), data)
	return raw
}

func TestAdd(t *testing.T) {
	backend := New()
	a := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := fromSlice(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})

	out := backend.Add(a, b).AsFloat32()
	want := []float32{11, 22, 33, 44}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("Add[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestMul_BroadcastChannelGate(t *testing.T) {
	backend := New()
	// [1, 2, 2, 2] input, [1, 2, 1, 1] per-channel gate.
	input := fromSlice(t, []float32{
		1, 2, 3, 4, // channel 0
		5, 6, 7, 8, // channel 1
	}, tensor.Shape{1, 2, 2, 2})
	gate := fromSlice(t, []float32{0.5, 2}, tensor.Shape{1, 2, 1, 1})

	out := backend.Mul(input, gate)
	if !out.Shape().Equal(tensor.Shape{1, 2, 2, 2}) {
		t.Fatalf("Shape = %v, want [1 2 2 2]", out.Shape())
	}
	data := out.AsFloat32()
	want := []float32{0.5, 1, 1.5, 2, 10, 12, 14, 16}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("Mul[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestMatMul(t *testing.T) {
	backend := New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := fromSlice(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	out := backend.MatMul(a, b)
	if !out.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("Shape = %v, want [2 2]", out.Shape())
	}
	data := out.AsFloat32()
	want := []float32{58, 64, 139, 154}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("MatMul[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestTranspose2D(t *testing.T) {
	backend := New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := backend.Transpose2D(a)
	if !out.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Shape = %v, want [3 2]", out.Shape())
	}
	data := out.AsFloat32()
	want := []float32{1, 4, 2, 5, 3, 6}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("Transpose2D[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestReLU(t *testing.T) {
	backend := New()
	x := fromSlice(t, []float32{-2, -0.5, 0, 0.5, 2}, tensor.Shape{5})

	out := backend.ReLU(x).AsFloat32()
	want := []float32{0, 0, 0, 0.5, 2}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("ReLU[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestSigmoid(t *testing.T) {
	backend := New()
	x := fromSlice(t, []float32{0, 100, -100}, tensor.Shape{3})

	out := backend.Sigmoid(x).AsFloat32()
	if out[0] != 0.5 {
		t.Errorf("Sigmoid(0) = %v, want 0.5", out[0])
	}
	if math.Abs(float64(out[1]-1)) > 1e-6 {
		t.Errorf("Sigmoid(100) = %v, want ~1", out[1])
	}
	if math.Abs(float64(out[2])) > 1e-6 {
		t.Errorf("Sigmoid(-100) = %v, want ~0", out[2])
	}
}

func TestBatchNorm2D(t *testing.T) {
	backend := New()
	// One channel, known statistics: y = gamma*(x-mean)/sqrt(var+eps) + beta.
	input := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	gamma := fromSlice(t, []float32{2}, tensor.Shape{1})
	beta := fromSlice(t, []float32{1}, tensor.Shape{1})
	mean := fromSlice(t, []float32{2}, tensor.Shape{1})
	variance := fromSlice(t, []float32{4}, tensor.Shape{1})

	out := backend.BatchNorm2D(input, gamma, beta, mean, variance, 0).AsFloat32()
	want := []float32{0, 1, 2, 3} // 2*(x-2)/2 + 1
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 1e-5 {
			t.Errorf("BatchNorm2D[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestReshape(t *testing.T) {
	backend := New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{1, 6})

	out := backend.Reshape(a, tensor.Shape{2, 3})
	if !out.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("Shape = %v, want [2 3]", out.Shape())
	}
	if out.AsFloat32()[5] != 6 {
		t.Error("Reshape should preserve element order")
	}
}
