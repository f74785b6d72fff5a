package tensor

// Backend defines the interface compute backends must implement.
// It covers exactly the operations a convolutional classifier's
// forward pass needs; the graph-assembly layer above never touches
// element data directly.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MatMul performs 2D matrix multiplication: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// Transpose2D swaps the axes of a 2D tensor: [M, N] -> [N, M].
	Transpose2D(t *RawTensor) *RawTensor

	// Conv2D performs grouped 2D convolution.
	// Input [N, C_in, H, W], kernel [C_out, C_in/groups, K_h, K_w],
	// output [N, C_out, H_out, W_out]. groups=1 is a standard dense
	// convolution; groups=C splits the channels into C independent
	// convolutions (the ResNeXt aggregated transform).
	Conv2D(input, kernel *RawTensor, stride, padding, groups int) *RawTensor

	// MaxPool2D performs 2D max pooling with zero-padding excluded
	// from the max (padded positions never win).
	MaxPool2D(input *RawTensor, kernelSize, stride, padding int) *RawTensor

	// GlobalAvgPool2D averages over the spatial dimensions.
	// Input [N, C, H, W] -> output [N, C, 1, 1].
	GlobalAvgPool2D(input *RawTensor) *RawTensor

	// BatchNorm2D applies per-channel affine normalization using
	// precomputed statistics (inference mode):
	// y = gamma * (x - mean) / sqrt(variance + eps) + beta.
	BatchNorm2D(input, gamma, beta, mean, variance *RawTensor, eps float32) *RawTensor

	// Activation functions (element-wise).
	ReLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor

	// Reshape returns a tensor with the same data but a different shape.
	Reshape(t *RawTensor, newShape Shape) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
