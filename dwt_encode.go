package vc2

// analyze2D runs k's forward transform over coeffs in place, from the
// finest level to the coarsest. Per §4.C the forward transform applies
// a level's row lift before its column lift; coeffs must already be
// padded to a multiple of 2^depth in both dimensions and is left with
// subbands arranged [LL, HL; LH, HH] per level, LL continuing to feed
// the next level.
func analyze2D(k Kernel, coeffs *Plane, depth int) {
	if depth < 1 {
		return
	}
	kern := kernels[k]
	height, width := coeffs.Height, coeffs.Width
	maxDim := max(height, width)
	col := make([]int32, maxDim)

	for level := 1; level <= depth; level++ {
		lh, lw := levelDims(height, width, level)

		for y := 0; y < lh; y++ {
			forward1D(kern, coeffs.Samples[y][:lw])
		}

		for x := 0; x < lw; x++ {
			for y := 0; y < lh; y++ {
				col[y] = coeffs.Samples[y][x]
			}
			forward1D(kern, col[:lh])
			for y := 0; y < lh; y++ {
				coeffs.Samples[y][x] = col[y]
			}
		}
	}
}

// transformPlane pads p to a multiple of 2^depth, runs the forward
// wavelet transform of kernel k to depth levels, and returns the
// padded coefficient plane. NullKernel is rejected: it exists only as
// a diagnostic identity transform for tests, never in an encode path.
func transformPlane(kernel Kernel, depth int, p *Plane) (*Plane, error) {
	if depth < 0 {
		return nil, errInvalidDepth(depth)
	}
	if kernel == NullKernel {
		return nil, errNullKernel()
	}
	height := paddedSize(p.Height, depth)
	width := paddedSize(p.Width, depth)
	padded := padPlane(p, height, width)
	analyze2D(kernel, padded, depth)
	return padded, nil
}

// inverseTransformPlane runs the inverse wavelet transform of kernel k
// to depth levels over coeffs (padded dimensions), then crops the
// result back down to (origHeight, origWidth).
func inverseTransformPlane(kernel Kernel, depth int, coeffs *Plane, origHeight, origWidth int) (*Plane, error) {
	if depth < 0 {
		return nil, errInvalidDepth(depth)
	}
	if kernel == NullKernel {
		return nil, errNullKernel()
	}
	synthesize2D(kernel, coeffs, depth)
	return cropPlane(coeffs, origHeight, origWidth), nil
}
