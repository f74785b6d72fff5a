package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/lattice-ml/lattice/internal/tensor"
)

// MatMul performs 2D matrix multiplication via gonum's float32 BLAS.
//
// a: [M, K], b: [K, N] -> [M, N].
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v @ %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions do not match: %v @ %v", aShape, bShape))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]

	result, err := tensor.NewRaw(tensor.Shape{m, n}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: failed to create result tensor: %v", err))
	}

	aMat := blas32.General{Rows: m, Cols: k, Stride: k, Data: a.AsFloat32()}
	bMat := blas32.General{Rows: k, Cols: n, Stride: n, Data: b.AsFloat32()}
	cMat := blas32.General{Rows: m, Cols: n, Stride: n, Data: result.AsFloat32()}

	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, aMat, bMat, 0, cMat)

	return result
}

// Transpose2D swaps the axes of a 2D tensor: [M, N] -> [N, M].
func (cpu *CPUBackend) Transpose2D(t *tensor.RawTensor) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose2d: expected 2D tensor, got %v", shape))
	}

	m, n := shape[0], shape[1]
	result, err := tensor.NewRaw(tensor.Shape{n, m}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose2d: failed to create result tensor: %v", err))
	}

	in := t.AsFloat32()
	out := result.AsFloat32()
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			out[j*m+i] = in[i*n+j]
		}
	}
	return result
}
