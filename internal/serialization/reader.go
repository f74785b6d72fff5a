package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lattice-ml/lattice/internal/tensor"
)

// Reader reads state dictionaries from .ltc files.
type Reader struct {
	file       *os.File
	header     Header
	dataOffset int64
	dataSize   int64
	closed     bool
}

// NewReader opens a .ltc file and validates its header.
func NewReader(path string) (*Reader, error) {
	//nolint:gosec // G304: path comes from the caller, expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{file: file}

	if err := r.parseHeader(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	r.dataSize = info.Size() - r.dataOffset

	if err := r.validateHeader(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return r, nil
}

func (r *Reader) parseHeader() error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.file, magic); err != nil {
		return fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(r.file, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	var headerSize uint64
	if err := binary.Read(r.file, binary.LittleEndian, &headerSize); err != nil {
		return fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerBytes); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	pos := int64(4+4+8) + int64(headerSize) //nolint:gosec // bounded by MaxHeaderSize
	padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment
	r.dataOffset = pos + padding

	return nil
}

// validateHeader checks every tensor's metadata against the data
// section before any data is read: offsets non-negative, sizes
// consistent with shape and dtype, bounds inside the section, no
// overlapping or duplicate entries.
func (r *Reader) validateHeader() error {
	seen := make(map[string]bool, len(r.header.Tensors))
	sorted := make([]TensorMeta, len(r.header.Tensors))
	copy(sorted, r.header.Tensors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var prevEnd int64
	var prevName string
	for _, meta := range sorted {
		if seen[meta.Name] {
			return headerError(ErrDuplicateTensor, meta.Name, "")
		}
		seen[meta.Name] = true

		if meta.Offset < 0 || meta.Size < 0 {
			return headerError(ErrNegativeOffset, meta.Name, fmt.Sprintf("offset=%d size=%d", meta.Offset, meta.Size))
		}

		dtype, ok := stringToDtype(meta.DType)
		if !ok {
			return headerError(ErrUnknownDType, meta.Name, meta.DType)
		}
		shape := tensor.Shape(meta.Shape)
		if err := shape.Validate(); err != nil {
			return fmt.Errorf("tensor %q: %w", meta.Name, err)
		}
		if want := int64(shape.NumElements() * dtype.Size()); want != meta.Size {
			return headerError(ErrSizeMismatch, meta.Name, fmt.Sprintf("shape %v %s needs %d bytes, header says %d", shape, meta.DType, want, meta.Size))
		}

		if meta.Offset < prevEnd {
			return fmt.Errorf("%w: %q and %q", ErrOffsetOverlap, prevName, meta.Name)
		}
		if meta.Offset+meta.Size > r.dataSize {
			return headerError(ErrOutOfBounds, meta.Name, fmt.Sprintf("end=%d section=%d", meta.Offset+meta.Size, r.dataSize))
		}

		prevEnd = meta.Offset + meta.Size
		prevName = meta.Name
	}
	return nil
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// TensorNames returns the names of all tensors in the file.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// ReadStateDict reads every tensor in the file into memory.
func (r *Reader) ReadStateDict(device tensor.Device) (map[string]*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	stateDict := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		dtype, _ := stringToDtype(meta.DType) // validated in validateHeader

		raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, device)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
		}

		if _, err := r.file.Seek(r.dataOffset+meta.Offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("tensor %q: seek failed: %w", meta.Name, err)
		}
		if _, err := io.ReadFull(r.file, raw.Data()); err != nil {
			return nil, fmt.Errorf("tensor %q: read failed: %w", meta.Name, err)
		}

		stateDict[meta.Name] = raw
	}

	return stateDict, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}
