package safetensors

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/samcharles93/cadenza/internal/tensor"
)

// ReadTensorF32 decodes a tensor into a new float32 tensor. F32, F16 and
// BF16 payloads are supported.
func (f *File) ReadTensorF32(name string) (*tensor.Tensor, error) {
	raw, info, err := f.ReadTensor(name)
	if err != nil {
		return nil, err
	}
	n, err := numElements(info.Shape)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}
	out := make([]float32, n)
	switch info.DType {
	case "F32":
		if len(raw) != n*4 {
			return nil, fmt.Errorf("tensor %s: invalid f32 data size", name)
		}
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	case "BF16":
		if len(raw) != n*2 {
			return nil, fmt.Errorf("tensor %s: invalid bf16 data size", name)
		}
		for i := range out {
			out[i] = bf16ToF32(binary.LittleEndian.Uint16(raw[i*2:]))
		}
	case "F16":
		if len(raw) != n*2 {
			return nil, fmt.Errorf("tensor %s: invalid f16 data size", name)
		}
		for i := range out {
			out[i] = fp16ToF32(binary.LittleEndian.Uint16(raw[i*2:]))
		}
	default:
		return nil, fmt.Errorf("tensor %s: unsupported dtype %s", name, info.DType)
	}
	shape := info.Shape
	if len(shape) == 0 {
		// Scalars are stored with an empty shape.
		shape = []int{1}
	}
	return tensor.FromData(out, shape...)
}

func numElements(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("invalid dim %d", d)
		}
		if n > (int(^uint(0)>>1))/d {
			return 0, fmt.Errorf("tensor too large")
		}
		n *= d
	}
	return n, nil
}

func bf16ToF32(u uint16) float32 {
	return math.Float32frombits(uint32(u) << 16)
}

func fp16ToF32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h & 0x3FF)
	var f uint32
	switch exp {
	case 0:
		if frac == 0 {
			f = sign << 31
		} else {
			e := uint32(127 - 15 + 1)
			for (frac & 0x400) == 0 {
				frac <<= 1
				e--
			}
			frac &= 0x3FF
			f = (sign << 31) | (e << 23) | (frac << 13)
		}
	case 0x1F:
		f = (sign << 31) | 0x7F800000 | (frac << 13)
	default:
		e := exp + (127 - 15)
		f = (sign << 31) | (e << 23) | (frac << 13)
	}
	return math.Float32frombits(f)
}
