package cpu

import (
	"fmt"

	"github.com/lattice-ml/lattice/internal/parallel"
	"github.com/lattice-ml/lattice/internal/tensor"
)

// MaxPool2D performs 2D max pooling.
//
// Input shape:  [N, C, H, W]
// Output shape: [N, C, H_out, W_out]
//
// Where:
//
//	out_h = (H + 2*padding - kernelSize) / stride + 1
//	out_w = (W + 2*padding - kernelSize) / stride + 1
//
// Padded positions are excluded from the window max, so a window that
// hangs over the input border reduces over its valid elements only.
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]

	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("maxpool2d: invalid padding %d", padding))
	}

	HOut := (H+2*padding-kernelSize)/stride + 1
	WOut := (W+2*padding-kernelSize)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid output dimensions %dx%d (kernel=%d, stride=%d, input=%dx%d)",
			HOut, WOut, kernelSize, stride, H, W))
	}

	output, err := tensor.NewRaw(tensor.Shape{N, C, HOut, WOut}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("maxpool2d: failed to create output: %v", err))
	}

	inputData := input.AsFloat32()
	outputData := output.AsFloat32()

	parallel.ForBatchChannels(N, C, cpu.par, func(n, c int) {
		channel := inputData[(n*C+c)*H*W : (n*C+c+1)*H*W]
		out := outputData[(n*C+c)*HOut*WOut : (n*C+c+1)*HOut*WOut]

		for outH := 0; outH < HOut; outH++ {
			hStart := outH*stride - padding
			for outW := 0; outW < WOut; outW++ {
				wStart := outW*stride - padding

				maxVal := float32(-1e38)
				for kh := 0; kh < kernelSize; kh++ {
					h := hStart + kh
					if h < 0 || h >= H {
						continue
					}
					rowData := channel[h*W : (h+1)*W]
					for kw := 0; kw < kernelSize; kw++ {
						w := wStart + kw
						if w < 0 || w >= W {
							continue
						}
						if rowData[w] > maxVal {
							maxVal = rowData[w]
						}
					}
				}

				out[outH*WOut+outW] = maxVal
			}
		}
	})

	return output
}

// GlobalAvgPool2D averages each channel plane over its spatial
// dimensions.
//
// Input shape:  [N, C, H, W]
// Output shape: [N, C, 1, 1]
func (cpu *CPUBackend) GlobalAvgPool2D(input *tensor.RawTensor) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("globalavgpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]

	output, err := tensor.NewRaw(tensor.Shape{N, C, 1, 1}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("globalavgpool2d: failed to create output: %v", err))
	}

	inputData := input.AsFloat32()
	outputData := output.AsFloat32()
	area := float32(H * W)

	parallel.ForBatchChannels(N, C, cpu.par, func(n, c int) {
		channel := inputData[(n*C+c)*H*W : (n*C+c+1)*H*W]
		var sum float32
		for _, v := range channel {
			sum += v
		}
		outputData[n*C+c] = sum / area
	})

	return output
}
