package cpu

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/lattice-ml/lattice/internal/parallel"
	"github.com/lattice-ml/lattice/internal/tensor"
)

// BatchNorm2D applies per-channel affine normalization using
// precomputed statistics (inference mode):
//
//	y[n,c,h,w] = gamma[c] * (x[n,c,h,w] - mean[c]) / sqrt(var[c] + eps) + beta[c]
//
// The per-channel scale and shift are folded once, so each element
// costs one multiply-add.
func (cpu *CPUBackend) BatchNorm2D(input, gamma, beta, mean, variance *tensor.RawTensor, eps float32) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]

	for name, p := range map[string]*tensor.RawTensor{"gamma": gamma, "beta": beta, "mean": mean, "variance": variance} {
		if !p.Shape().Equal(tensor.Shape{C}) {
			panic(fmt.Sprintf("batchnorm2d: %s shape %v does not match %d channels", name, p.Shape(), C))
		}
	}

	output, err := tensor.NewRaw(inputShape.Clone(), tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("batchnorm2d: failed to create output: %v", err))
	}

	gammaData := gamma.AsFloat32()
	betaData := beta.AsFloat32()
	meanData := mean.AsFloat32()
	varData := variance.AsFloat32()

	// Fold statistics: y = scale[c]*x + shift[c].
	scale := make([]float32, C)
	shift := make([]float32, C)
	for c := 0; c < C; c++ {
		scale[c] = gammaData[c] / math32.Sqrt(varData[c]+eps)
		shift[c] = betaData[c] - meanData[c]*scale[c]
	}

	inputData := input.AsFloat32()
	outputData := output.AsFloat32()
	plane := H * W

	parallel.ForBatchChannels(N, C, cpu.par, func(n, c int) {
		in := inputData[(n*C+c)*plane : (n*C+c+1)*plane]
		out := outputData[(n*C+c)*plane : (n*C+c+1)*plane]
		s, b := scale[c], shift[c]
		for i, v := range in {
			out[i] = s*v + b
		}
	})

	return output
}
