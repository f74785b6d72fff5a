package serialization

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-ml/lattice/internal/tensor"
)

func makeRaw(t *testing.T, shape tensor.Shape, fill float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	data := raw.AsFloat32()
	for i := range data {
		data[i] = fill + float32(i)
	}
	return raw
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ltc")

	stateDict := map[string]*tensor.RawTensor{
		"conv1.weight":    makeRaw(t, tensor.Shape{4, 3, 7, 7}, 0.5),
		"bn1.running_var": makeRaw(t, tensor.Shape{4}, 1),
		"fc.bias":         makeRaw(t, tensor.Shape{10}, -2),
	}

	writer, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, writer.WriteStateDict(stateDict, "resnext50_32x4d", map[string]string{"note": "test"}))
	require.NoError(t, writer.Close())

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	header := reader.Header()
	assert.Equal(t, FormatVersion, header.FormatVersion)
	assert.Equal(t, "resnext50_32x4d", header.ModelType)
	assert.Equal(t, "test", header.Metadata["note"])
	assert.Len(t, header.Tensors, 3)

	loaded, err := reader.ReadStateDict(tensor.CPU)
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	for name, want := range stateDict {
		got, ok := loaded[name]
		require.True(t, ok, "missing tensor %s", name)
		assert.True(t, got.Shape().Equal(want.Shape()))
		assert.Equal(t, want.AsFloat32(), got.AsFloat32())
	}
}

func TestReader_InvalidMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ltc")
	require.NoError(t, os.WriteFile(path, []byte("NOPE\x00\x00\x00\x00"), 0o644))

	_, err := NewReader(path)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestReader_UnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.ltc")

	buf := []byte(MagicBytes)
	buf = binary.LittleEndian.AppendUint32(buf, 99)
	buf = binary.LittleEndian.AppendUint64(buf, 2)
	buf = append(buf, []byte("{}")...)
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	_, err := NewReader(path)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestReader_TruncatedData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ltc")

	writer, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, writer.WriteStateDict(map[string]*tensor.RawTensor{
		"w": makeRaw(t, tensor.Shape{32, 32}, 0),
	}, "test", nil))
	require.NoError(t, writer.Close())

	// Chop off the tail of the data section.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-64))

	_, err = NewReader(path)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestReader_HeaderTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.ltc")

	buf := []byte(MagicBytes)
	buf = binary.LittleEndian.AppendUint32(buf, FormatVersion)
	buf = binary.LittleEndian.AppendUint64(buf, MaxHeaderSize+1)
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	_, err := NewReader(path)
	assert.ErrorIs(t, err, ErrHeaderTooLarge)
}

func TestWriter_Deterministic(t *testing.T) {
	dir := t.TempDir()
	stateDict := map[string]*tensor.RawTensor{
		"b": makeRaw(t, tensor.Shape{2}, 1),
		"a": makeRaw(t, tensor.Shape{3}, 2),
	}

	write := func(name string) []byte {
		path := filepath.Join(dir, name)
		writer, err := NewWriter(path)
		require.NoError(t, err)
		require.NoError(t, writer.WriteStateDict(stateDict, "test", nil))
		require.NoError(t, writer.Close())

		reader, err := NewReader(path)
		require.NoError(t, err)
		defer reader.Close()

		// Compare tensor layout, not bytes: CreatedAt differs.
		names := reader.TensorNames()
		return []byte(names[0] + names[1])
	}

	assert.Equal(t, write("one.ltc"), write("two.ltc"))
}
