package tensor

// Add performs element-wise addition with broadcasting.
func (t *Tensor[B]) Add(other *Tensor[B]) *Tensor[B] {
	result := t.backend.Add(t.raw, other.raw)
	return New(result, t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
//
// Example:
//
//	x := tensor.Randn(Shape{2, 64, 7, 7}, backend)
//	gate := tensor.Randn(Shape{2, 64, 1, 1}, backend)
//	y := x.Mul(gate) // per-channel reweighting, shape [2, 64, 7, 7]
func (t *Tensor[B]) Mul(other *Tensor[B]) *Tensor[B] {
	result := t.backend.Mul(t.raw, other.raw)
	return New(result, t.backend)
}

// MatMul performs matrix multiplication: (M, K) @ (K, N) -> (M, N).
func (t *Tensor[B]) MatMul(other *Tensor[B]) *Tensor[B] {
	result := t.backend.MatMul(t.raw, other.raw)
	return New(result, t.backend)
}

// T transposes a 2D tensor (swaps rows and columns).
func (t *Tensor[B]) T() *Tensor[B] {
	result := t.backend.Transpose2D(t.raw)
	return New(result, t.backend)
}

// Reshape returns a tensor with the same data but different shape.
// The new shape must have the same number of elements.
func (t *Tensor[B]) Reshape(newShape ...int) *Tensor[B] {
	result := t.backend.Reshape(t.raw, Shape(newShape))
	return New(result, t.backend)
}

// ReLU applies the rectifier element-wise: max(0, x).
func (t *Tensor[B]) ReLU() *Tensor[B] {
	result := t.backend.ReLU(t.raw)
	return New(result, t.backend)
}

// Sigmoid applies the logistic function element-wise.
func (t *Tensor[B]) Sigmoid() *Tensor[B] {
	result := t.backend.Sigmoid(t.raw)
	return New(result, t.backend)
}
