package cpu

import (
	"github.com/chewxy/math32"

	"github.com/lattice-ml/lattice/internal/tensor"
)

// ReLU applies the rectifier element-wise: max(0, x).
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp(x, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// Sigmoid applies the logistic function element-wise: 1 / (1 + exp(-x)).
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp(x, func(v float32) float32 {
		return 1 / (1 + math32.Exp(-v))
	})
}

func (cpu *CPUBackend) unaryOp(x *tensor.RawTensor, op func(v float32) float32) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape().Clone(), tensor.Float32, cpu.device)
	if err != nil {
		panic(err)
	}

	in := x.AsFloat32()
	out := result.AsFloat32()
	for i, v := range in {
		out[i] = op(v)
	}
	return result
}
