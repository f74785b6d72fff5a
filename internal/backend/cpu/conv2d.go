package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/lattice-ml/lattice/internal/parallel"
	"github.com/lattice-ml/lattice/internal/tensor"
)

// Conv2D performs grouped 2D convolution using im2col plus a BLAS GEMM
// per (batch, group).
//
// Input shape:  [N, C_in, H, W]
// Kernel shape: [C_out, C_in/groups, K_h, K_w]
// Output shape: [N, C_out, H_out, W_out]
//
// With groups=g, input and output channels are split into g contiguous
// slices and each output slice is convolved only with its input slice.
// groups=1 is a standard dense convolution.
//
// The im2col buffer is laid out [C_in/g * K_h * K_w, H_out * W_out] so
// the GEMM result lands directly in the output's NCHW layout with no
// rearrangement pass.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding, groups int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in/g,K_h,K_w], got %dD", len(kernelShape)))
	}
	if groups <= 0 {
		panic(fmt.Sprintf("conv2d: invalid groups %d", groups))
	}

	N := inputShape[0]
	CIn := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]
	COut := kernelShape[0]
	KH := kernelShape[2]
	KW := kernelShape[3]

	if CIn%groups != 0 || COut%groups != 0 {
		panic(fmt.Sprintf("conv2d: channels (in=%d, out=%d) not divisible by groups %d", CIn, COut, groups))
	}
	if kernelShape[1] != CIn/groups {
		panic(fmt.Sprintf("conv2d: kernel expects %d input channels per group, input has %d", kernelShape[1], CIn/groups))
	}

	HOut := (H+2*padding-KH)/stride + 1
	WOut := (W+2*padding-KW)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions %dx%d (check stride/padding)", HOut, WOut))
	}

	output, err := tensor.NewRaw(tensor.Shape{N, COut, HOut, WOut}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d: failed to create output tensor: %v", err))
	}

	inputData := input.AsFloat32()
	kernelData := kernel.AsFloat32()
	outputData := output.AsFloat32()

	cInG := CIn / groups   // input channels per group
	cOutG := COut / groups // output channels per group
	colK := cInG * KH * KW // GEMM inner dimension
	colP := HOut * WOut    // output positions per channel plane

	// One im2col buffer per goroutine; batch entries are independent.
	parallel.For(N, cpu.par, func(n int) {
		colBuf := make([]float32, colK*colP)

		for g := 0; g < groups; g++ {
			im2col(colBuf, inputData[n*CIn*H*W+g*cInG*H*W:], cInG, H, W, KH, KW, HOut, WOut, stride, padding)

			// Kernel rows for this group are contiguous: [cOutG, colK].
			kMat := blas32.General{
				Rows: cOutG, Cols: colK, Stride: colK,
				Data: kernelData[g*cOutG*colK:],
			}
			colMat := blas32.General{
				Rows: colK, Cols: colP, Stride: colP,
				Data: colBuf,
			}
			outMat := blas32.General{
				Rows: cOutG, Cols: colP, Stride: colP,
				Data: outputData[(n*COut+g*cOutG)*colP:],
			}

			blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, kMat, colMat, 0, outMat)
		}
	})

	return output
}

// im2col unrolls convolution patches of a C-channel plane into a
// column matrix of shape [C * KH * KW, HOut * WOut].
//
// Row (c*KH+kh)*KW+kw holds, for every output position, the input
// value the kernel weight (c, kh, kw) touches; out-of-bounds positions
// contribute zero (implicit zero padding).
func im2col(colBuf, inputData []float32, C, H, W, KH, KW, HOut, WOut, stride, padding int) {
	colP := HOut * WOut

	for c := 0; c < C; c++ {
		channel := inputData[c*H*W : (c+1)*H*W]
		for kh := 0; kh < KH; kh++ {
			for kw := 0; kw < KW; kw++ {
				row := colBuf[((c*KH+kh)*KW+kw)*colP:]
				p := 0
				for outH := 0; outH < HOut; outH++ {
					h := outH*stride - padding + kh
					if h < 0 || h >= H {
						for outW := 0; outW < WOut; outW++ {
							row[p] = 0
							p++
						}
						continue
					}
					rowData := channel[h*W : (h+1)*W]
					for outW := 0; outW < WOut; outW++ {
						w := outW*stride - padding + kw
						if w >= 0 && w < W {
							row[p] = rowData[w]
						} else {
							row[p] = 0
						}
						p++
					}
				}
			}
		}
	}
}
