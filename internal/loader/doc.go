// Package loader imports model weights from external checkpoint
// formats.
//
// It reads SafeTensors files and remaps their parameter names to the
// dotted names Lattice models use, so published ResNeXt checkpoints
// can be loaded directly or converted to the native .ltc format.
package loader
