package vc2

import "fmt"

// quantiseCoefficient applies the dead-zone quantiser of §4.D to one
// transform coefficient at the given quantiser index, mirroring the
// sign(a)*floor(|a|/step) shape of the teacher's dead-zone quantiser
// with VC-2's integer factor/offset in place of a floating step size.
func quantiseCoefficient(v int32, qIndex int) int32 {
	if v == 0 {
		return 0
	}
	factor := quantFactor(qIndex)
	mag := int64(v)
	neg := mag < 0
	if neg {
		mag = -mag
	}
	q := (mag * 4) / factor
	if neg {
		return -int32(q)
	}
	return int32(q)
}

// dequantiseCoefficient inverts quantiseCoefficient by reconstructing
// at the midpoint of the quantisation bin, the VC-2 analogue of the
// teacher's (|q|+0.5)*step reconstruction rule.
func dequantiseCoefficient(v int32, qIndex int) int32 {
	if v == 0 {
		return 0
	}
	factor := quantFactor(qIndex)
	offset := quantOffset(qIndex)
	mag := int64(v)
	neg := mag < 0
	if neg {
		mag = -mag
	}
	r := (mag*factor + offset + 2) >> 2
	if neg {
		return -int32(r)
	}
	return int32(r)
}

// subbandQuantIndex derives the effective quantiser index for one
// subband from the slice's base index and that subband's quantisation
// matrix entry, per §4.D: the entry is subtracted from the base index,
// so a larger entry quantises the subband more finely, and the result
// is clamped at 0, the finest index.
func subbandQuantIndex(base int, matrixEntry int32) int {
	idx := base - int(matrixEntry)
	if idx < 0 {
		idx = 0
	}
	return idx
}

// quantMatrix resolves the per-subband table to use for kernel at
// depth: custom, when non-nil and the right length, otherwise the
// built-in default. A custom matrix of the wrong length is a
// configuration error — it can only have been produced by a caller
// that mismatched it to a different kernel/depth pair.
func quantMatrix(kernel Kernel, depth int, custom []int32) ([]int32, error) {
	want := 3*depth + 1
	if custom != nil {
		if len(custom) != want {
			return nil, fmt.Errorf("%w: quantisation matrix has %d entries, want %d for depth %d",
				ErrConfig, len(custom), want, depth)
		}
		return custom, nil
	}
	return defaultQuantMatrix(kernel, depth), nil
}

// quantisePlane quantises every coefficient of a transformed plane in
// place, each subband at the effective index that quantIndex and the
// subband's matrix entry give.
func quantisePlane(coeffs *Plane, depth int, quantIndex int, matrix []int32) {
	bands := subbands(depth)
	for i, b := range bands {
		qi := subbandQuantIndex(quantIndex, matrix[i])
		forEachSample(coeffs, depth, b, func(row []int32, x int) {
			row[x] = quantiseCoefficient(row[x], qi)
		})
	}
}

// dequantisePlane inverts quantisePlane in place.
func dequantisePlane(coeffs *Plane, depth int, quantIndex int, matrix []int32) {
	bands := subbands(depth)
	for i, b := range bands {
		qi := subbandQuantIndex(quantIndex, matrix[i])
		forEachSample(coeffs, depth, b, func(row []int32, x int) {
			row[x] = dequantiseCoefficient(row[x], qi)
		})
	}
}

// forEachSample invokes fn on every coefficient of the named subband
// within coeffs, whose dimensions must already be padded to a
// multiple of 2^depth.
func forEachSample(coeffs *Plane, depth int, b subbandOrder, fn func(row []int32, x int)) {
	height, width := coeffs.Height, coeffs.Width
	y0, y1, x0, x1 := subbandBounds(height, width, depth, b)
	for y := y0; y < y1; y++ {
		row := coeffs.Samples[y]
		for x := x0; x < x1; x++ {
			fn(row, x)
		}
	}
}

// subbandBounds returns the rectangular region of coeffs occupied by
// subband b, following the [LL | HL; LH | HH] quadrant layout
// analyze2D leaves at each level.
func subbandBounds(height, width, depth int, b subbandOrder) (y0, y1, x0, x1 int) {
	if b.Orientation == orientLL {
		lh, lw := levelDims(height, width, depth+1)
		return 0, lh, 0, lw
	}
	// Detail level 1 is the coarsest: its bands were produced by the
	// last analysis pass and occupy the quadrants of the smallest
	// working region.
	lh, lw := levelDims(height, width, depth-b.Level+1)
	ph, pw := lh/2, lw/2
	switch b.Orientation {
	case orientHL:
		return 0, ph, pw, lw
	case orientLH:
		return ph, lh, 0, pw
	default: // orientHH
		return ph, lh, pw, lw
	}
}
