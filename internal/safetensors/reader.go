// Package safetensors reads and writes the safetensors checkpoint format:
// an 8-byte little-endian header length, a JSON header, then raw tensor
// bytes.
package safetensors

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/goccy/go-json"
	"golang.org/x/sys/unix"
)

const metadataKey = "__metadata__"

// maxHeaderLen bounds the JSON header so a corrupt length cannot trigger a
// huge allocation.
const maxHeaderLen = 100 << 20

var ErrCorruptFile = errors.New("safetensors: corrupt file")

type TensorInfo struct {
	DType string
	Shape []int
	Start int64
	End   int64
}

// File is an opened safetensors checkpoint. Data holds the whole file,
// memory mapped when the platform allows it.
type File struct {
	Path     string
	Tensors  map[string]TensorInfo
	Metadata map[string]string

	data      []byte
	dataStart int64
	mmapped   bool
}

type tensorHeader struct {
	DType       string  `json:"dtype"`
	Shape       []int   `json:"shape"`
	DataOffsets []int64 `json:"data_offsets"`
}

// Open maps a safetensors file read-only and parses its header. If mmap is
// unavailable it falls back to reading the file into memory. The returned
// file must be closed.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := st.Size()
	if size < 8 || size > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: size %d", ErrCorruptFile, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		sf, parseErr := parse(path, data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return sf, nil
	}

	data = make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return parse(path, data, false)
}

// Parse reads a safetensors image already held in memory.
func Parse(data []byte) (*File, error) {
	return parse("", data, false)
}

func parse(path string, data []byte, mmapped bool) (*File, error) {
	if len(data) < 8 {
		return nil, ErrCorruptFile
	}
	headerLen := binary.LittleEndian.Uint64(data[:8])
	if headerLen > maxHeaderLen || headerLen > uint64(len(data)-8) {
		return nil, fmt.Errorf("%w: header length %d", ErrCorruptFile, headerLen)
	}
	headerBytes := data[8 : 8+headerLen]

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &raw); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorruptFile, err)
	}

	sf := &File{
		Path:      path,
		Tensors:   make(map[string]TensorInfo, len(raw)),
		Metadata:  map[string]string{},
		data:      data,
		dataStart: int64(8 + headerLen),
		mmapped:   mmapped,
	}
	payload := int64(len(data)) - sf.dataStart

	if msg, ok := raw[metadataKey]; ok {
		if err := json.Unmarshal(msg, &sf.Metadata); err != nil {
			return nil, fmt.Errorf("%w: metadata: %w", ErrCorruptFile, err)
		}
		delete(raw, metadataKey)
	}
	for name, msg := range raw {
		var th tensorHeader
		if err := json.Unmarshal(msg, &th); err != nil {
			return nil, fmt.Errorf("parse tensor %s: %w", name, err)
		}
		if len(th.DataOffsets) != 2 {
			return nil, fmt.Errorf("tensor %s: invalid data_offsets", name)
		}
		start, end := th.DataOffsets[0], th.DataOffsets[1]
		if start < 0 || end < start || end > payload {
			return nil, fmt.Errorf("%w: tensor %s offsets [%d, %d)", ErrCorruptFile, name, start, end)
		}
		sf.Tensors[name] = TensorInfo{
			DType: th.DType,
			Shape: th.Shape,
			Start: start,
			End:   end,
		}
	}
	return sf, nil
}

// Names returns the tensor names in sorted order.
func (f *File) Names() []string {
	return slices.Sorted(maps.Keys(f.Tensors))
}

func (f *File) Tensor(name string) (TensorInfo, bool) {
	t, ok := f.Tensors[name]
	return t, ok
}

// ReadTensor returns the raw bytes of a tensor. The slice aliases the file
// mapping and is only valid until Close.
func (f *File) ReadTensor(name string) ([]byte, TensorInfo, error) {
	t, ok := f.Tensors[name]
	if !ok {
		return nil, TensorInfo{}, fmt.Errorf("tensor not found: %s", name)
	}
	return f.data[f.dataStart+t.Start : f.dataStart+t.End], t, nil
}

// Close releases the mapping.
func (f *File) Close() error {
	if f == nil || f.data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.data)
	}
	f.data = nil
	f.mmapped = false
	return err
}
