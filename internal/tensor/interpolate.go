package tensor

import (
	"fmt"
	"math"
)

// Mode selects the resampling kernel used by Interpolate.
type Mode string

const (
	Nearest  Mode = "nearest"
	Linear1D Mode = "linear"
	Bilinear Mode = "bilinear"
	Area     Mode = "area"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Nearest, Linear1D, Bilinear, Area:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unsupported interpolation mode %q", s)
	}
}

// ranks reports which input ranks a mode accepts.
func (m Mode) ranks() []int {
	switch m {
	case Linear1D:
		return []int{3}
	case Bilinear:
		return []int{4}
	default:
		return []int{3, 4}
	}
}

type tap struct {
	idx int
	w   float32
}

// Interpolate resamples the spatial dimensions of an [N, C, L] or
// [N, C, H, W] tensor by scale. Output sizes are floor(in*scale). Corner
// pixels are not aligned, matching the usual deep learning convention.
func Interpolate(a *Tensor, scale float64, mode Mode) (*Tensor, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: scale factor %v", ErrInvalidShape, scale)
	}
	ok := false
	for _, r := range mode.ranks() {
		if a.Dims() == r {
			ok = true
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: mode %s does not accept shape %v", ErrShapeMismatch, mode, a.shape)
	}

	cur := a
	for axis := 2; axis < a.Dims(); axis++ {
		in := cur.shape[axis]
		out := int(math.Floor(float64(in) * scale))
		if out <= 0 {
			return nil, fmt.Errorf("%w: dimension %d scaled by %v is empty", ErrInvalidShape, in, scale)
		}
		cur = resampleAxis(cur, axis, out, buildTaps(in, out, scale, mode))
	}
	if cur == a {
		cur = a.Clone()
	}
	return cur, nil
}

func buildTaps(in, out int, scale float64, mode Mode) [][]tap {
	taps := make([][]tap, out)
	for o := 0; o < out; o++ {
		switch mode {
		case Linear1D, Bilinear:
			src := (float64(o)+0.5)/scale - 0.5
			if src < 0 {
				src = 0
			}
			i0 := int(math.Floor(src))
			if i0 > in-1 {
				i0 = in - 1
			}
			i1 := min(i0+1, in-1)
			l := float32(src - float64(i0))
			taps[o] = []tap{{i0, 1 - l}, {i1, l}}
		case Area:
			start := (o * in) / out
			end := ((o+1)*in + out - 1) / out
			w := 1 / float32(end-start)
			ts := make([]tap, 0, end-start)
			for i := start; i < end; i++ {
				ts = append(ts, tap{i, w})
			}
			taps[o] = ts
		default:
			src := min(int(math.Floor(float64(o)/scale)), in-1)
			taps[o] = []tap{{src, 1}}
		}
	}
	return taps
}

// resampleAxis applies taps along one axis of a row‑major tensor.
func resampleAxis(a *Tensor, axis, outSize int, taps [][]tap) *Tensor {
	outer := 1
	for _, d := range a.shape[:axis] {
		outer *= d
	}
	inner := 1
	for _, d := range a.shape[axis+1:] {
		inner *= d
	}
	in := a.shape[axis]

	shape := a.Shape()
	shape[axis] = outSize
	out := New(shape...)
	for o := 0; o < outer; o++ {
		src := a.data[o*in*inner : (o+1)*in*inner]
		dst := out.data[o*outSize*inner : (o+1)*outSize*inner]
		for i, ts := range taps {
			row := dst[i*inner : (i+1)*inner]
			for _, t := range ts {
				s := src[t.idx*inner : (t.idx+1)*inner]
				for j := range row {
					row[j] += t.w * s[j]
				}
			}
		}
	}
	return out
}
