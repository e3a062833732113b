package tensor

import (
	"fmt"
	"math"
)

// Kernel3 is a 3x3 convolution kernel indexed [row][col].
type Kernel3 [3][3]float32

// MeanChannels averages dimension 1 of an [N, C, H, W] tensor, keeping the
// dimension: the result is [N, 1, H, W].
func MeanChannels(a *Tensor) (*Tensor, error) {
	if a.Dims() != 4 {
		return nil, fmt.Errorf("%w: channel mean needs [N,C,H,W], got %v", ErrShapeMismatch, a.shape)
	}
	n, c, h, w := a.shape[0], a.shape[1], a.shape[2], a.shape[3]
	plane := h * w
	out := New(n, 1, h, w)
	inv := 1 / float64(c)
	for b := 0; b < n; b++ {
		dst := out.data[b*plane : (b+1)*plane]
		for p := 0; p < plane; p++ {
			var sum float64
			for ch := 0; ch < c; ch++ {
				sum += float64(a.data[(b*c+ch)*plane+p])
			}
			dst[p] = float32(sum * inv)
		}
	}
	return out, nil
}

// RepeatChannels tiles a single-channel [N, 1, H, W] tensor to [N, k, H, W].
func RepeatChannels(a *Tensor, k int) (*Tensor, error) {
	if a.Dims() != 4 || a.shape[1] != 1 {
		return nil, fmt.Errorf("%w: repeat needs [N,1,H,W], got %v", ErrShapeMismatch, a.shape)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: repeat count %d", ErrInvalidShape, k)
	}
	n, h, w := a.shape[0], a.shape[2], a.shape[3]
	plane := h * w
	out := New(n, k, h, w)
	for b := 0; b < n; b++ {
		src := a.data[b*plane : (b+1)*plane]
		for ch := 0; ch < k; ch++ {
			copy(out.data[(b*k+ch)*plane:(b*k+ch+1)*plane], src)
		}
	}
	return out, nil
}

// Conv2D3 convolves every channel of an [N, C, H, W] tensor with the same
// fixed 3x3 kernel (depthwise, stride 1). Borders read as zero so the
// output keeps the input shape.
func Conv2D3(a *Tensor, k Kernel3) (*Tensor, error) {
	if a.Dims() != 4 {
		return nil, fmt.Errorf("%w: conv2d needs [N,C,H,W], got %v", ErrShapeMismatch, a.shape)
	}
	n, c, h, w := a.shape[0], a.shape[1], a.shape[2], a.shape[3]
	plane := h * w
	out := New(a.shape...)
	for p := 0; p < n*c; p++ {
		src := a.data[p*plane : (p+1)*plane]
		dst := out.data[p*plane : (p+1)*plane]
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				var sum float32
				for ky := -1; ky <= 1; ky++ {
					sy := y + ky
					if sy < 0 || sy >= h {
						continue
					}
					for kx := -1; kx <= 1; kx++ {
						sx := x + kx
						if sx < 0 || sx >= w {
							continue
						}
						if kv := k[ky+1][kx+1]; kv != 0 {
							sum += kv * src[sy*w+sx]
						}
					}
				}
				dst[y*w+x] = sum
			}
		}
	}
	return out, nil
}

// Magnitude returns sqrt(a^2 + b^2 + eps) element-wise.
func Magnitude(a, b *Tensor, eps float32) (*Tensor, error) {
	if !SameShape(a, b) {
		return nil, fmt.Errorf("%w: %v and %v", ErrShapeMismatch, a.shape, b.shape)
	}
	out := New(a.shape...)
	for i := range out.data {
		x, y := a.data[i], b.data[i]
		out.data[i] = float32(math.Sqrt(float64(x*x + y*y + eps)))
	}
	return out, nil
}

// SplitChannels splits dimension 1 into k equal chunks.
func SplitChannels(a *Tensor, k int) ([]*Tensor, error) {
	if a.Dims() < 2 {
		return nil, fmt.Errorf("%w: split needs rank >= 2, got %v", ErrShapeMismatch, a.shape)
	}
	if k <= 0 || a.shape[1]%k != 0 {
		return nil, fmt.Errorf("%w: cannot split %d channels into %d chunks", ErrShapeMismatch, a.shape[1], k)
	}
	n, c := a.shape[0], a.shape[1]
	inner := len(a.data) / (n * c)
	per := c / k
	outs := make([]*Tensor, k)
	for i := range outs {
		shape := a.Shape()
		shape[1] = per
		t := New(shape...)
		for b := 0; b < n; b++ {
			src := a.data[(b*c+i*per)*inner : (b*c+(i+1)*per)*inner]
			copy(t.data[b*per*inner:(b+1)*per*inner], src)
		}
		outs[i] = t
	}
	return outs, nil
}
