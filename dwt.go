package vc2

import "fmt"

func errInvalidDepth(depth int) error {
	return fmt.Errorf("%w: transform depth %d is negative", ErrConfig, depth)
}

func errNullKernel() error {
	return fmt.Errorf("%w: NullKernel cannot be used to transform a picture", ErrConfig)
}

// paddedSize returns the smallest multiple of 2^depth that is >= dim,
// per §4.C: a plane is padded by last-sample replication before
// transform so every decomposition level operates on an even-length
// signal, and cropped back to dim afterwards.
func paddedSize(dim, depth int) int {
	unit := 1 << depth
	if dim <= 0 || unit <= 1 {
		return dim
	}
	return ((dim + unit - 1) / unit) * unit
}

// padPlane returns a copy of p grown to (height, width) by replicating
// its last row and column, per the padding rule of §4.C.
func padPlane(p *Plane, height, width int) *Plane {
	out := NewPlane(height, width)
	for y := 0; y < height; y++ {
		sy := y
		if sy >= p.Height {
			sy = p.Height - 1
		}
		for x := 0; x < width; x++ {
			sx := x
			if sx >= p.Width {
				sx = p.Width - 1
			}
			out.Samples[y][x] = p.Samples[sy][sx]
		}
	}
	return out
}

// cropPlane returns the top-left (height, width) region of p.
func cropPlane(p *Plane, height, width int) *Plane {
	out := NewPlane(height, width)
	for y := 0; y < height; y++ {
		copy(out.Samples[y], p.Samples[y][:width])
	}
	return out
}

// forward1D runs every lifting stage of k over data in place, where
// data's first half holds the low-pass samples and the second half
// the high-pass samples — the same [L0, L1, ..., H0, H1, ...] layout
// the teacher's wavelet package uses.
func forward1D(k liftKernel, data []int32) {
	n := len(data)
	if n <= 1 {
		return
	}
	sn := n / 2
	dn := n - sn
	low := make([]int32, sn)
	high := make([]int32, dn)
	for i := 0; i < sn; i++ {
		low[i] = data[2*i]
	}
	for i := 0; i < dn; i++ {
		high[i] = data[2*i+1]
	}
	if k.preScale != 0 && k.preScale != 1 {
		for i := range low {
			low[i] *= k.preScale
		}
		for i := range high {
			high[i] *= k.preScale
		}
	}
	for _, stage := range k.stages {
		stage.applyForward(low, high)
	}
	if k.postHighShift != 0 {
		for i := range high {
			high[i] = round(int64(high[i]), k.postHighShift)
		}
	}
	copy(data[:sn], low)
	copy(data[sn:], high)
}

func inverse1D(k liftKernel, data []int32) {
	n := len(data)
	if n <= 1 {
		return
	}
	sn := n / 2
	dn := n - sn
	low := make([]int32, sn)
	high := make([]int32, dn)
	copy(low, data[:sn])
	copy(high, data[sn:])

	if k.postHighShift != 0 {
		for i := range high {
			high[i] <<= k.postHighShift
		}
	}
	for i := len(k.stages) - 1; i >= 0; i-- {
		k.stages[i].applyInverse(low, high)
	}
	if k.preScale != 0 && k.preScale != 1 {
		for i := range low {
			low[i] /= k.preScale
		}
		for i := range high {
			high[i] /= k.preScale
		}
	}
	for i := 0; i < sn; i++ {
		data[2*i] = low[i]
	}
	for i := 0; i < dn; i++ {
		data[2*i+1] = high[i]
	}
}

// levelDims returns the working (height, width) of the LL region at
// decomposition level, where level 1 is the finest. fullHeight/Width
// must already be padded to a multiple of 2^depth.
func levelDims(fullHeight, fullWidth, level int) (height, width int) {
	return fullHeight >> (level - 1), fullWidth >> (level - 1)
}

// Synthesize2D runs k's inverse transform over coeffs (already padded
// to a multiple of 2^depth in both dimensions), from the coarsest
// level back to the finest. Per §4.C the inverse applies a level's
// column lift before its row lift, the mirror of the forward order.
func synthesize2D(k Kernel, coeffs *Plane, depth int) {
	if depth < 1 {
		return
	}
	kern := kernels[k]
	height, width := coeffs.Height, coeffs.Width
	maxDim := max(height, width)
	col := make([]int32, maxDim)

	for level := depth; level >= 1; level-- {
		lh, lw := levelDims(height, width, level)

		for x := 0; x < lw; x++ {
			for y := 0; y < lh; y++ {
				col[y] = coeffs.Samples[y][x]
			}
			inverse1D(kern, col[:lh])
			for y := 0; y < lh; y++ {
				coeffs.Samples[y][x] = col[y]
			}
		}

		for y := 0; y < lh; y++ {
			inverse1D(kern, coeffs.Samples[y][:lw])
		}
	}
}
