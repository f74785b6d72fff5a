package cpu

import (
	"testing"

	"github.com/lattice-ml/lattice/internal/tensor"
)

func TestConv2D_KnownValues(t *testing.T) {
	backend := New()
	// 3x3 input, 2x2 identity-corner kernel.
	input := fromSlice(t, []float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, tensor.Shape{1, 1, 3, 3})
	kernel := fromSlice(t, []float32{
		1, 0,
		0, 1,
	}, tensor.Shape{1, 1, 2, 2})

	out := backend.Conv2D(input, kernel, 1, 0, 1)
	if !out.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("Shape = %v, want [1 1 2 2]", out.Shape())
	}
	data := out.AsFloat32()
	want := []float32{6, 8, 12, 14}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("Conv2D[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestConv2D_StridePadding(t *testing.T) {
	backend := New()
	// The stem configuration: 7x7 kernel, stride 2, padding 3 halves
	// the spatial size.
	input, err := tensor.NewRaw(tensor.Shape{1, 3, 32, 32}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatal(err)
	}
	kernel, err := tensor.NewRaw(tensor.Shape{8, 3, 7, 7}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatal(err)
	}

	out := backend.Conv2D(input, kernel, 2, 3, 1)
	if !out.Shape().Equal(tensor.Shape{1, 8, 16, 16}) {
		t.Errorf("Shape = %v, want [1 8 16 16]", out.Shape())
	}
}

func TestConv2D_Grouped(t *testing.T) {
	backend := New()
	// Two groups of one channel each; 1x1 kernels scale their group
	// only.
	input := fromSlice(t, []float32{
		1, 2, 3, 4, // channel 0
		5, 6, 7, 8, // channel 1
	}, tensor.Shape{1, 2, 2, 2})
	kernel := fromSlice(t, []float32{2, 3}, tensor.Shape{2, 1, 1, 1})

	out := backend.Conv2D(input, kernel, 1, 0, 2)
	if !out.Shape().Equal(tensor.Shape{1, 2, 2, 2}) {
		t.Fatalf("Shape = %v, want [1 2 2 2]", out.Shape())
	}
	data := out.AsFloat32()
	want := []float32{2, 4, 6, 8, 15, 18, 21, 24}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("Conv2D[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestConv2D_GroupedMatchesSplitDense(t *testing.T) {
	backend := New()
	// A two-group convolution must equal two dense convolutions over
	// the channel halves.
	input := tensor.Randn(tensor.Shape{1, 4, 6, 6}, backend)
	kernel := tensor.Randn(tensor.Shape{6, 2, 3, 3}, backend)

	grouped := backend.Conv2D(input.Raw(), kernel.Raw(), 1, 1, 2).AsFloat32()

	plane := 6 * 6
	half := func(first bool) *tensor.RawTensor {
		raw, err := tensor.NewRaw(tensor.Shape{1, 2, 6, 6}, tensor.Float32, tensor.CPU)
		if err != nil {
			t.Fatal(err)
		}
		src := input.Data()
		if first {
			copy(raw.AsFloat32(), src[:2*plane])
		} else {
			copy(raw.AsFloat32(), src[2*plane:])
		}
		return raw
	}
	kernelHalf := func(first bool) *tensor.RawTensor {
		raw, err := tensor.NewRaw(tensor.Shape{3, 2, 3, 3}, tensor.Float32, tensor.CPU)
		if err != nil {
			t.Fatal(err)
		}
		src := kernel.Data()
		if first {
			copy(raw.AsFloat32(), src[:3*2*9])
		} else {
			copy(raw.AsFloat32(), src[3*2*9:])
		}
		return raw
	}

	out0 := backend.Conv2D(half(true), kernelHalf(true), 1, 1, 1).AsFloat32()
	out1 := backend.Conv2D(half(false), kernelHalf(false), 1, 1, 1).AsFloat32()

	for i := range out0 {
		if grouped[i] != out0[i] {
			t.Fatalf("Group 0 diverges at %d: %v vs %v", i, grouped[i], out0[i])
		}
	}
	for i := range out1 {
		if grouped[len(out0)+i] != out1[i] {
			t.Fatalf("Group 1 diverges at %d: %v vs %v", i, grouped[len(out0)+i], out1[i])
		}
	}
}

func TestConv2D_BatchIndependence(t *testing.T) {
	backend := New()
	// Batched convolution must equal per-sample convolution.
	x1 := tensor.Randn(tensor.Shape{1, 2, 4, 4}, backend)
	x2 := tensor.Randn(tensor.Shape{1, 2, 4, 4}, backend)
	kernel := tensor.Randn(tensor.Shape{3, 2, 3, 3}, backend)

	batch, err := tensor.NewRaw(tensor.Shape{2, 2, 4, 4}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatal(err)
	}
	copy(batch.AsFloat32()[:32], x1.Data())
	copy(batch.AsFloat32()[32:], x2.Data())

	outBatch := backend.Conv2D(batch, kernel.Raw(), 1, 1, 1).AsFloat32()
	out1 := backend.Conv2D(x1.Raw(), kernel.Raw(), 1, 1, 1).AsFloat32()
	out2 := backend.Conv2D(x2.Raw(), kernel.Raw(), 1, 1, 1).AsFloat32()

	for i := range out1 {
		if outBatch[i] != out1[i] {
			t.Fatalf("Batch sample 0 diverges at %d", i)
		}
	}
	for i := range out2 {
		if outBatch[len(out1)+i] != out2[i] {
			t.Fatalf("Batch sample 1 diverges at %d", i)
		}
	}
}
