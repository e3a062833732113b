package safetensors

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"maps"
	"slices"

	"github.com/goccy/go-json"

	"github.com/samcharles93/cadenza/internal/tensor"
)

// Write encodes tensors as F32 in name order, with optional string
// metadata.
func Write(w io.Writer, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	names := slices.Sorted(maps.Keys(tensors))

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}
	var off int64
	for _, name := range names {
		t := tensors[name]
		size := int64(t.Len()) * 4
		header[name] = tensorHeader{
			DType:       "F32",
			Shape:       t.Shape(),
			DataOffsets: []int64{off, off + size},
		}
		off += size
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return err
	}
	// Pad the header with spaces to an 8-byte boundary.
	for len(headerBytes)%8 != 0 {
		headerBytes = append(headerBytes, ' ')
	}

	bw := bufio.NewWriter(w)
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(headerBytes)))
	if _, err := bw.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := bw.Write(headerBytes); err != nil {
		return err
	}
	var buf [4]byte
	for _, name := range names {
		for _, v := range tensors[name].Data() {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			if _, err := bw.Write(buf[:]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteFile writes tensors to path, replacing any existing file.
func WriteFile(path string, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, tensors, metadata); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
