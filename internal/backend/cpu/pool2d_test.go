package cpu

import (
	"math"
	"testing"

	"github.com/lattice-ml/lattice/internal/tensor"
)

func TestMaxPool2D(t *testing.T) {
	backend := New()
	input := fromSlice(t, []float32{
		1, 3, 2, 4,
		5, 7, 6, 8,
		9, 11, 10, 12,
		13, 15, 14, 16,
	}, tensor.Shape{1, 1, 4, 4})

	out := backend.MaxPool2D(input, 2, 2, 0)
	if !out.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("Shape = %v, want [1 1 2 2]", out.Shape())
	}
	data := out.AsFloat32()
	want := []float32{7, 8, 15, 16}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("MaxPool2D[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestMaxPool2D_PaddingIgnoresBorder(t *testing.T) {
	backend := New()
	// All-negative input: padded positions must not contribute zeros.
	input := fromSlice(t, []float32{
		-4, -3,
		-2, -1,
	}, tensor.Shape{1, 1, 2, 2})

	out := backend.MaxPool2D(input, 3, 2, 1)
	if !out.Shape().Equal(tensor.Shape{1, 1, 1, 1}) {
		t.Fatalf("Shape = %v, want [1 1 1 1]", out.Shape())
	}
	if got := out.AsFloat32()[0]; got != -1 {
		t.Errorf("MaxPool2D = %v, want -1", got)
	}
}

func TestMaxPool2D_StemShape(t *testing.T) {
	backend := New()
	// 3x3 kernel, stride 2, padding 1: 112 -> 56.
	input, err := tensor.NewRaw(tensor.Shape{1, 64, 112, 112}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatal(err)
	}

	out := backend.MaxPool2D(input, 3, 2, 1)
	if !out.Shape().Equal(tensor.Shape{1, 64, 56, 56}) {
		t.Errorf("Shape = %v, want [1 64 56 56]", out.Shape())
	}
}

func TestGlobalAvgPool2D(t *testing.T) {
	backend := New()
	input := fromSlice(t, []float32{
		1, 2, 3, 4, // channel 0: mean 2.5
		10, 20, 30, 40, // channel 1: mean 25
	}, tensor.Shape{1, 2, 2, 2})

	out := backend.GlobalAvgPool2D(input)
	if !out.Shape().Equal(tensor.Shape{1, 2, 1, 1}) {
		t.Fatalf("Shape = %v, want [1 2 1 1]", out.Shape())
	}
	data := out.AsFloat32()
	if math.Abs(float64(data[0]-2.5)) > 1e-6 || math.Abs(float64(data[1]-25)) > 1e-6 {
		t.Errorf("GlobalAvgPool2D = %v, want [2.5 25]", data)
	}
}
