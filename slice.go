package vc2

import (
	"fmt"

	"github.com/samber/lo"
)

// SliceMode selects the bitstream layout a picture's slices use, per
// §4.F: HQ slices are byte-aligned per component with an explicit
// length field; LD slices are bit-packed to an exact total length with
// only a length field for the luma block.
type SliceMode int

const (
	SliceHQ SliceMode = iota
	SliceLD
)

// SliceLayout describes how a transformed picture is partitioned into
// independent, separately budgeted slices. The per-slice byte budget
// is carried as the rational BytesNumer/BytesDenom — for a CBR picture
// this is pictureBytes/numSlices, which LD streams also put on the
// wire, reduced to lowest terms. ForceQ, when non-negative, pins every slice to that
// quantiser index instead of running the CBR budget search (the HQ
// variable-bit-rate mode).
type SliceLayout struct {
	Rows, Cols int // slice grid dimensions
	Mode       SliceMode
	Prefix     int // HQ only: padding bytes ahead of each slice
	SizeScaler int // HQ only: length fields are in units of this many bytes
	BytesNumer int
	BytesDenom int
	ForceQ     int // fixed quantiser index, or -1 for CBR search
}

// sliceBudget returns the byte budget of slice index under the
// layout's rational share.
func (l SliceLayout) sliceBudget(index int) int {
	return sliceByteBudget(l.BytesNumer, l.BytesDenom, index)
}

// sliceByteBudget implements the rational distribution formula of
// §4.E: with numer/denom the per-slice byte share in lowest or any
// other terms, each slice's budget is the difference of consecutive
// cumulative floors, so shares differ by at most one byte and always
// sum to the exact total.
func sliceByteBudget(numer, denom, index int) int {
	if denom <= 0 {
		return 0
	}
	hi := (index + 1) * numer / denom
	lo := index * numer / denom
	return hi - lo
}

// gcd is Euclid's algorithm, used to put the LD slice-bytes rational
// in lowest terms before it goes on the wire.
func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// blockBounds computes the rectangular region of a height×width plane
// that slice (row,col) of a rows×cols grid owns, using the same
// rational distribution as sliceByteBudget so that slices differ in
// size by at most one sample per axis and always tile the plane
// exactly. It is a general-purpose tiling primitive used only by
// tests; the slice engine itself tiles per-subband via
// subbandTileBounds, which requires an exact (non-rational) division
// since each subband must split into equal tiles per §4.E.
func blockBounds(height, width, rows, cols, row, col int) (y0, y1, x0, x1 int) {
	y0 = row * height / rows
	y1 = (row + 1) * height / rows
	x0 = col * width / cols
	x1 = (col + 1) * width / cols
	return
}

// validateSliceGrid checks the divisibility invariant of §3: a
// rows×cols slice grid must cut every subband of a depth-level
// transform of a height×width plane into equal tiles. Because subband
// sizes halve with each decomposition level, it suffices to check the
// smallest subbands (the LL band and the coarsest-level detail bands,
// all sized height>>depth, width>>depth) divide evenly.
func validateSliceGrid(height, width, depth, rows, cols int) error {
	sh, sw := height>>depth, width>>depth
	if sh%rows != 0 || sw%cols != 0 {
		return fmt.Errorf("%w: %dx%d slice grid does not evenly tile a depth-%d transform of %dx%d",
			ErrConfig, rows, cols, depth, height, width)
	}
	return nil
}

// subbandTileBounds returns the rectangular region within plane's
// coefficient array that slice (row,col) owns for subband b, dividing
// b's full extent into an exact rows×cols grid of equal tiles. Tile
// dimensions shrink by a factor of two with every finer-to-coarser
// step since earlier decomposition levels cover larger, and later
// levels progressively smaller, subbands.
func subbandTileBounds(height, width, depth, rows, cols, row, col int, b subbandOrder) (y0, y1, x0, x1 int) {
	by0, by1, bx0, bx1 := subbandBounds(height, width, depth, b)
	th := (by1 - by0) / rows
	tw := (bx1 - bx0) / cols
	y0 = by0 + row*th
	x0 = bx0 + col*tw
	return y0, y0 + th, x0, x0 + tw
}

// bandCounts returns, for each subband in subbands(depth) order, the
// number of samples one (row,col) tile of a rows×cols grid holds —
// the same for every tile in the grid, which lets a decoder size its
// read buffers before it has seen the slice's bytes.
func bandCounts(height, width, depth, rows, cols int) []int {
	bands := subbands(depth)
	counts := make([]int, len(bands))
	for i, b := range bands {
		y0, y1, x0, x1 := subbandBounds(height, width, depth, b)
		counts[i] = ((y1 - y0) / rows) * ((x1 - x0) / cols)
	}
	return counts
}

// flattenSliceBlock reads slice (row,col) out of a transformed plane,
// subband by subband in subbands(depth) scan order (coarsest LL
// first), concatenating each subband's tile in row-major order. The
// returned counts give each subband's share of the flattened slice,
// letting callers re-derive subband boundaries without recomputing
// geometry.
func flattenSliceBlock(plane *Plane, depth, rows, cols, row, col int) (flat []int32, counts []int) {
	bands := subbands(depth)
	counts = make([]int, len(bands))
	for i, b := range bands {
		y0, y1, x0, x1 := subbandTileBounds(plane.Height, plane.Width, depth, rows, cols, row, col, b)
		for y := y0; y < y1; y++ {
			flat = append(flat, plane.Samples[y][x0:x1]...)
		}
		counts[i] = (y1 - y0) * (x1 - x0)
	}
	return flat, counts
}

// unflattenSliceBlock writes flat (as produced by flattenSliceBlock,
// or dequantised from a parsed slice) back into slice (row,col) of
// plane, subband tile by subband tile.
func unflattenSliceBlock(plane *Plane, depth, rows, cols, row, col int, flat []int32) {
	bands := subbands(depth)
	pos := 0
	for _, b := range bands {
		y0, y1, x0, x1 := subbandTileBounds(plane.Height, plane.Width, depth, rows, cols, row, col, b)
		for y := y0; y < y1; y++ {
			w := x1 - x0
			copy(plane.Samples[y][x0:x1], flat[pos:pos+w])
			pos += w
		}
	}
}

// searchQuantIndex performs the bisection of §4.E: starting from the
// middle of the index range and halving the step each round, it
// converges on the smallest quantiser index whose trial encoding fits
// within budgetBytes, falling back to coarser indices if even the
// bisection's result overruns (which a sufficiently busy slice can
// still do at the maximum index).
func searchQuantIndex(budgetBytes int, trialSize func(qIndex int) int) int {
	q := 63
	delta := 64
	for delta > 0 {
		delta >>= 1
		if trialSize(q) > budgetBytes {
			q += delta
		} else {
			q -= delta
		}
		if q < 0 {
			q = 0
		}
		if q > maxQuantIndex {
			q = maxQuantIndex
		}
	}
	for q < maxQuantIndex && trialSize(q) > budgetBytes {
		q++
	}
	return q
}

// componentTrialSizeBits returns the bit length VLC-coding values
// would take once every subband's samples are quantised at the index
// the base quantIndex resolves to through matrix (per §4.D, one
// effective index per subband). counts gives each subband's run
// length within values, in the same order as matrix.
func componentTrialSizeBits(values []int32, counts []int, matrix []int32, quantIndex int) int {
	bits := 0
	pos := 0
	for i, n := range counts {
		qi := subbandQuantIndex(quantIndex, matrix[i])
		for _, v := range values[pos : pos+n] {
			bits += signedVLCBits(quantiseCoefficient(v, qi))
		}
		pos += n
	}
	return bits
}

// quantiseFlat quantises every value of a flattened slice component,
// one subband run at a time, each against its own effective index.
func quantiseFlat(values []int32, counts []int, matrix []int32, quantIndex int) []int32 {
	out := make([]int32, len(values))
	pos := 0
	for i, n := range counts {
		qi := subbandQuantIndex(quantIndex, matrix[i])
		for k := 0; k < n; k++ {
			out[pos+k] = quantiseCoefficient(values[pos+k], qi)
		}
		pos += n
	}
	return out
}

// dequantiseFlat inverts quantiseFlat.
func dequantiseFlat(values []int32, counts []int, matrix []int32, quantIndex int) []int32 {
	out := make([]int32, len(values))
	pos := 0
	for i, n := range counts {
		qi := subbandQuantIndex(quantIndex, matrix[i])
		for k := 0; k < n; k++ {
			out[pos+k] = dequantiseCoefficient(values[pos+k], qi)
		}
		pos += n
	}
	return out
}

// buildHQSlice quantises one slice's Y/C1/C2 blocks — each already
// flattened in subband scan order with its per-subband run lengths —
// at the quantiser index a CBR search selects to fit byteBudget, and
// serialises it in the HQ format: prefix padding bytes, a
// quantiser-index byte, then for each component a one-byte length (in
// sizeScaler units) and that many bytes of byte-aligned
// signed-VLC-coded coefficients. forceQ >= 0 pins the quantiser index
// instead of searching (HQ VBR).
func buildHQSlice(raw [3][]int32, counts [3][]int, matrix []int32, byteBudget, prefix, sizeScaler, forceQ int) ([]byte, error) {
	qIndex := forceQ
	if qIndex < 0 {
		trialSize := func(q int) int {
			total := prefix + 1
			for c := 0; c < 3; c++ {
				bits := componentTrialSizeBits(raw[c], counts[c], matrix, q)
				bytes := (bits + 7) / 8
				units := (bytes + sizeScaler - 1) / sizeScaler
				total += 1 + units*sizeScaler
			}
			return total
		}
		qIndex = searchQuantIndex(byteBudget, trialSize)
	}

	out := make([]byte, prefix, prefix+1)
	out = append(out, byte(qIndex))
	for c := 0; c < 3; c++ {
		quantised := quantiseFlat(raw[c], counts[c], matrix, qIndex)
		w := newBitWriter()
		for _, v := range quantised {
			writeSignedVLC(w, v)
		}
		w.Align()
		payload := w.Bytes()
		units := (len(payload) + sizeScaler - 1) / sizeScaler
		if units > 255 {
			return nil, fmt.Errorf("%w: HQ slice component needs %d length units, max 255", ErrBudgetExceeded, units)
		}
		out = append(out, byte(units))
		out = append(out, payload...)
		pad := units*sizeScaler - len(payload)
		for i := 0; i < pad; i++ {
			out = append(out, 0)
		}
	}
	return out, nil
}

// parseHQSlice inverts buildHQSlice given each component's per-subband
// run lengths (known from the slice's block geometry). The returned
// coefficients are still quantised; the caller dequantises with the
// same counts and matrix. consumed reports the slice's total byte
// length — HQ slices are self-delimiting, so the caller advances by
// consumed rather than by a budget.
func parseHQSlice(data []byte, prefix, sizeScaler int, counts [3][]int) (qIndex int, comps [3][]int32, consumed int, err error) {
	if len(data) < prefix+1 {
		return 0, comps, 0, ErrMalformedStream
	}
	qIndex = int(data[prefix])
	pos := prefix + 1
	for c := 0; c < 3; c++ {
		if pos >= len(data) {
			return 0, comps, 0, ErrMalformedStream
		}
		units := int(data[pos])
		pos++
		length := units * sizeScaler
		if pos+length > len(data) {
			return 0, comps, 0, ErrMalformedStream
		}
		total := lo.Sum(counts[c])
		r := newBitReader(data[pos : pos+length])
		values := make([]int32, total)
		for i := range values {
			v, verr := readSignedVLC(r)
			if verr != nil {
				return 0, comps, 0, verr
			}
			values[i] = v
		}
		comps[c] = values
		pos += length
	}
	return qIndex, comps, pos, nil
}

// ldLengthBits is the width of the Y-component length field an LD
// slice of totalBits carries ahead of its payload: just wide enough to
// express any bit count the slice's remaining space could hold.
func ldLengthBits(totalBits int) int {
	n := totalBits - 7
	if n <= 1 {
		return 1
	}
	return bitLength(uint32(n - 1))
}

// buildLDSlice serialises one slice in the bit-packed LD format: a
// 7-bit quantiser index, a bit-length field for the Y block, the Y
// block's signed-VLC coefficients bounded to that length, then the
// C1/C2 coefficients sharing the remainder of totalBits.
func buildLDSlice(raw [3][]int32, counts [3][]int, matrix []int32, totalBits int) ([]byte, error) {
	lengthBits := ldLengthBits(totalBits)
	trialSize := func(qIndex int) int {
		total := 7 + lengthBits
		for c := 0; c < 3; c++ {
			total += componentTrialSizeBits(raw[c], counts[c], matrix, qIndex)
		}
		return (total + 7) / 8
	}
	qIndex := searchQuantIndex((totalBits+7)/8, trialSize)

	w := newBitWriter()
	w.WriteBits(uint64(qIndex), 7)

	yQuantised := quantiseFlat(raw[0], counts[0], matrix, qIndex)
	yData := newBitWriter()
	for _, v := range yQuantised {
		writeSignedVLC(yData, v)
	}
	yBits := yData.BitLen()
	if remaining := totalBits - 7 - lengthBits; yBits > remaining {
		yBits = remaining
	}
	w.WriteBits(uint64(yBits), lengthBits)

	w.SetBound(yBits)
	for _, v := range yQuantised {
		writeSignedVLC(w, v)
	}
	for w.BoundRemaining() > 0 {
		w.WriteBit(0)
	}
	w.SetBound(-1)

	chromaBits := totalBits - 7 - lengthBits - yBits
	w.SetBound(chromaBits)
	for c := 1; c < 3; c++ {
		quantised := quantiseFlat(raw[c], counts[c], matrix, qIndex)
		for _, v := range quantised {
			writeSignedVLC(w, v)
		}
	}
	for w.BoundRemaining() > 0 {
		w.WriteBit(0)
	}
	w.SetBound(-1)
	w.Align()

	want := (totalBits + 7) / 8
	out := w.Bytes()
	for len(out) < want {
		out = append(out, 0)
	}
	return out[:want], nil
}

// parseLDSlice inverts buildLDSlice given each component's per-subband
// run lengths and the slice's fixed total bit length. The returned
// coefficients are still quantised.
func parseLDSlice(data []byte, totalBits int, counts [3][]int) (qIndex int, comps [3][]int32, err error) {
	lengthBits := ldLengthBits(totalBits)
	r := newBitReader(data)
	qi, err := r.ReadBits(7)
	if err != nil {
		return 0, comps, err
	}
	qIndex = int(qi)
	yBitsU, err := r.ReadBits(lengthBits)
	if err != nil {
		return 0, comps, err
	}
	yBits := int(yBitsU)

	yTotal := lo.Sum(counts[0])
	r.SetBound(yBits)
	yValues := make([]int32, yTotal)
	for i := range yValues {
		v, verr := readSignedVLC(r)
		if verr != nil {
			return 0, comps, verr
		}
		yValues[i] = v
	}
	r.SetBound(-1)
	comps[0] = yValues

	chromaBits := totalBits - 7 - lengthBits - yBits
	// Re-derive the reader position in bits rather than trust
	// byte-alignment: skip to exactly where the Y field ends.
	r2 := newBitReader(data)
	r2.SetBound(7 + lengthBits + yBits)
	if _, err := r2.ReadBits(7 + lengthBits + yBits); err != nil {
		return 0, comps, err
	}
	r2.SetBound(chromaBits)
	for c := 1; c < 3; c++ {
		total := lo.Sum(counts[c])
		values := make([]int32, total)
		for i := range values {
			v, verr := readSignedVLC(r2)
			if verr != nil {
				return 0, comps, verr
			}
			values[i] = v
		}
		comps[c] = values
	}
	return qIndex, comps, nil
}

// encodeSlices quantises and serialises every slice of a transformed
// picture (coeffs, one plane per component, all sharing depth and
// quantisation matrix) into a single byte stream, each slice budgeted
// by its rational share of the picture's bytes and preserving subband
// identity per §4.E.
func encodeSlices(coeffs [3]*Plane, layout SliceLayout, matrix []int32) ([]byte, error) {
	depth := (len(matrix) - 1) / 3
	var out []byte
	i := 0
	for row := 0; row < layout.Rows; row++ {
		for col := 0; col < layout.Cols; col++ {
			var raw [3][]int32
			var counts [3][]int
			for c := 0; c < 3; c++ {
				raw[c], counts[c] = flattenSliceBlock(coeffs[c], depth, layout.Rows, layout.Cols, row, col)
			}
			budget := layout.sliceBudget(i)
			var sliceBytes []byte
			var err error
			switch layout.Mode {
			case SliceHQ:
				sliceBytes, err = buildHQSlice(raw, counts, matrix, budget, layout.Prefix, layout.SizeScaler, layout.ForceQ)
			case SliceLD:
				sliceBytes, err = buildLDSlice(raw, counts, matrix, budget*8)
			default:
				return nil, fmt.Errorf("%w: unknown slice mode %d", ErrConfig, layout.Mode)
			}
			if err != nil {
				return nil, err
			}
			out = append(out, sliceBytes...)
			i++
		}
	}
	return out, nil
}

// decodeSlices inverts encodeSlices, writing dequantised coefficients
// into freshly allocated planes sized per dims[c] = (height, width) —
// luma and chroma can differ in padded size once chroma is subsampled.
func decodeSlices(data []byte, dims [3][2]int, layout SliceLayout, matrix []int32) ([3]*Plane, error) {
	depth := (len(matrix) - 1) / 3
	var coeffs [3]*Plane
	var counts [3][]int
	for c := range coeffs {
		coeffs[c] = NewPlane(dims[c][0], dims[c][1])
		counts[c] = bandCounts(dims[c][0], dims[c][1], depth, layout.Rows, layout.Cols)
	}
	pos := 0
	i := 0
	for row := 0; row < layout.Rows; row++ {
		for col := 0; col < layout.Cols; col++ {
			var qIndex int
			var comps [3][]int32
			var err error
			switch layout.Mode {
			case SliceHQ:
				// HQ slices are self-delimiting through their length
				// fields; advance by what the parse consumed.
				var consumed int
				qIndex, comps, consumed, err = parseHQSlice(data[pos:], layout.Prefix, layout.SizeScaler, counts)
				pos += consumed
			case SliceLD:
				// LD slices occupy exactly their rational byte share.
				budget := layout.sliceBudget(i)
				if pos+budget > len(data) {
					return coeffs, ErrMalformedStream
				}
				qIndex, comps, err = parseLDSlice(data[pos:pos+budget], budget*8, counts)
				pos += budget
			default:
				return coeffs, fmt.Errorf("%w: unknown slice mode %d", ErrConfig, layout.Mode)
			}
			if err != nil {
				return coeffs, err
			}
			for c := 0; c < 3; c++ {
				dq := dequantiseFlat(comps[c], counts[c], matrix, qIndex)
				unflattenSliceBlock(coeffs[c], depth, layout.Rows, layout.Cols, row, col, dq)
			}
			i++
		}
	}
	return coeffs, nil
}
