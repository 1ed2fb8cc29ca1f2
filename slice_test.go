package vc2

import "testing"

func TestSliceByteBudgetSumsToTotal(t *testing.T) {
	total, n := 103, 7
	sum := 0
	for i := 0; i < n; i++ {
		b := sliceByteBudget(total, n, i)
		if b < 0 {
			t.Fatalf("sliceByteBudget(%d,%d,%d) = %d, negative", total, n, i, b)
		}
		sum += b
	}
	if sum != total {
		t.Fatalf("slice budgets sum to %d, want %d", sum, total)
	}
}

func TestBlockBoundsTilesPlaneExactly(t *testing.T) {
	height, width, rows, cols := 17, 23, 3, 5
	covered := make([][]bool, height)
	for i := range covered {
		covered[i] = make([]bool, width)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			y0, y1, x0, x1 := blockBounds(height, width, rows, cols, r, c)
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					if covered[y][x] {
						t.Fatalf("sample (%d,%d) covered by more than one block", y, x)
					}
					covered[y][x] = true
				}
			}
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !covered[y][x] {
				t.Fatalf("sample (%d,%d) not covered by any block", y, x)
			}
		}
	}
}

// TestSubbandTileBoundsCoversEverySubbandExactly checks the
// partitioning invariant of §4.E directly against the transform's
// subband layout: each (row,col) slice's tiles, summed over every
// subband, must exactly tile the coefficient plane with no overlap
// and no gaps.
func TestSubbandTileBoundsCoversEverySubbandExactly(t *testing.T) {
	height, width, depth, rows, cols := 32, 32, 2, 4, 4
	covered := make([][]int, height)
	for i := range covered {
		covered[i] = make([]int, width)
	}
	for _, b := range subbands(depth) {
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				y0, y1, x0, x1 := subbandTileBounds(height, width, depth, rows, cols, row, col, b)
				for y := y0; y < y1; y++ {
					for x := x0; x < x1; x++ {
						covered[y][x]++
					}
				}
			}
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if covered[y][x] != 1 {
				t.Fatalf("sample (%d,%d) covered %d times, want exactly 1", y, x, covered[y][x])
			}
		}
	}
}

func testCounts3(depth, rows, cols int) [3][]int {
	c := bandCounts(16, 16, depth, rows, cols)
	return [3][]int{c, c, c}
}

func flatRange(n int, scale int32) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(i)*scale - int32(n)
	}
	return out
}

func TestHQSliceRoundTrip(t *testing.T) {
	depth, rows, cols := 1, 4, 4
	counts := testCounts3(depth, rows, cols)
	matrix := defaultQuantMatrix(LeGall, depth)
	raw := [3][]int32{
		flatRange(counts[0][0]+counts[0][1]+counts[0][2]+counts[0][3], 7),
		flatRange(counts[1][0]+counts[1][1]+counts[1][2]+counts[1][3], 3),
		flatRange(counts[2][0]+counts[2][1]+counts[2][2]+counts[2][3], -5),
	}
	sliceBytes, err := buildHQSlice(raw, counts, matrix, 200, 0, 1, -1)
	if err != nil {
		t.Fatalf("buildHQSlice: %v", err)
	}
	if len(sliceBytes) > 200 {
		t.Fatalf("slice is %d bytes, budget 200", len(sliceBytes))
	}
	qIndex, comps, consumed, err := parseHQSlice(sliceBytes, 0, 1, counts)
	if err != nil {
		t.Fatalf("parseHQSlice: %v", err)
	}
	if consumed != len(sliceBytes) {
		t.Fatalf("parseHQSlice consumed %d of %d bytes", consumed, len(sliceBytes))
	}
	for c := 0; c < 3; c++ {
		want := quantiseFlat(raw[c], counts[c], matrix, qIndex)
		for i, v := range comps[c] {
			if v != want[i] {
				t.Errorf("component %d[%d] = %d, want %d", c, i, v, want[i])
			}
		}
	}
}

func TestLDSliceRoundTrip(t *testing.T) {
	depth, rows, cols := 1, 4, 4
	counts := testCounts3(depth, rows, cols)
	matrix := defaultQuantMatrix(LeGall, depth)
	raw := [3][]int32{
		flatRange(counts[0][0]+counts[0][1]+counts[0][2]+counts[0][3], 7),
		flatRange(counts[1][0]+counts[1][1]+counts[1][2]+counts[1][3], 3),
		flatRange(counts[2][0]+counts[2][1]+counts[2][2]+counts[2][3], -5),
	}
	totalBits := 3200
	sliceBytes, err := buildLDSlice(raw, counts, matrix, totalBits)
	if err != nil {
		t.Fatalf("buildLDSlice: %v", err)
	}
	if got := len(sliceBytes) * 8; got != totalBits {
		t.Fatalf("buildLDSlice produced %d bits, want %d", got, totalBits)
	}
	qIndex, comps, err := parseLDSlice(sliceBytes, totalBits, counts)
	if err != nil {
		t.Fatalf("parseLDSlice: %v", err)
	}
	for c := 0; c < 3; c++ {
		want := quantiseFlat(raw[c], counts[c], matrix, qIndex)
		for i, v := range comps[c] {
			if v != want[i] {
				t.Errorf("component %d[%d] = %d, want %d", c, i, v, want[i])
			}
		}
	}
}

func TestEncodeDecodeSlicesRoundTrip(t *testing.T) {
	height, width, depth := 16, 16, 1
	var coeffs [3]*Plane
	for c := range coeffs {
		coeffs[c] = randomPlane(height, width)
	}
	matrix := defaultQuantMatrix(LeGall, depth)
	layout := SliceLayout{Rows: 2, Cols: 2, Mode: SliceHQ, SizeScaler: 1, BytesNumer: 256, BytesDenom: 4, ForceQ: -1}

	encoded, err := encodeSlices(coeffs, layout, matrix)
	if err != nil {
		t.Fatalf("encodeSlices: %v", err)
	}
	dims := [3][2]int{{height, width}, {height, width}, {height, width}}
	decoded, err := decodeSlices(encoded, dims, layout, matrix)
	if err != nil {
		t.Fatalf("decodeSlices: %v", err)
	}
	for c := 0; c < 3; c++ {
		if decoded[c].Height != height || decoded[c].Width != width {
			t.Fatalf("component %d: got %dx%d, want %dx%d", c, decoded[c].Height, decoded[c].Width, height, width)
		}
	}
}

func TestEncodeDecodeSlicesLosslessAtZeroQuantIndex(t *testing.T) {
	height, width, depth := 16, 16, 2
	var coeffs [3]*Plane
	for c := range coeffs {
		coeffs[c] = randomPlane(height, width)
	}
	matrix := make([]int32, 3*depth+1) // all-zero matrix: every subband uses the slice's own index
	// A budget generous enough that the CBR search always lands on 0.
	layout := SliceLayout{Rows: 2, Cols: 2, Mode: SliceHQ, SizeScaler: 1, BytesNumer: 400000, BytesDenom: 4, ForceQ: -1}

	encoded, err := encodeSlices(coeffs, layout, matrix)
	if err != nil {
		t.Fatalf("encodeSlices: %v", err)
	}
	dims := [3][2]int{{height, width}, {height, width}, {height, width}}
	decoded, err := decodeSlices(encoded, dims, layout, matrix)
	if err != nil {
		t.Fatalf("decodeSlices: %v", err)
	}
	for c := 0; c < 3; c++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if decoded[c].Samples[y][x] != coeffs[c].Samples[y][x] {
					t.Fatalf("component %d (%d,%d): got %d want %d", c, y, x,
						decoded[c].Samples[y][x], coeffs[c].Samples[y][x])
				}
			}
		}
	}
}

func TestHQSlicePrefixRoundTrip(t *testing.T) {
	depth, rows, cols := 1, 4, 4
	counts := testCounts3(depth, rows, cols)
	matrix := defaultQuantMatrix(LeGall, depth)
	raw := [3][]int32{
		flatRange(counts[0][0]+counts[0][1]+counts[0][2]+counts[0][3], 2),
		flatRange(counts[1][0]+counts[1][1]+counts[1][2]+counts[1][3], 1),
		flatRange(counts[2][0]+counts[2][1]+counts[2][2]+counts[2][3], -1),
	}
	const prefix = 3
	sliceBytes, err := buildHQSlice(raw, counts, matrix, 200, prefix, 1, -1)
	if err != nil {
		t.Fatalf("buildHQSlice: %v", err)
	}
	for i := 0; i < prefix; i++ {
		if sliceBytes[i] != 0 {
			t.Fatalf("prefix byte %d = %#x, want 0", i, sliceBytes[i])
		}
	}
	_, _, consumed, err := parseHQSlice(sliceBytes, prefix, 1, counts)
	if err != nil {
		t.Fatalf("parseHQSlice: %v", err)
	}
	if consumed != len(sliceBytes) {
		t.Fatalf("consumed %d of %d bytes", consumed, len(sliceBytes))
	}
}

func TestHQSliceForcedQuantIndex(t *testing.T) {
	depth, rows, cols := 1, 4, 4
	counts := testCounts3(depth, rows, cols)
	matrix := defaultQuantMatrix(LeGall, depth)
	raw := [3][]int32{
		flatRange(counts[0][0]+counts[0][1]+counts[0][2]+counts[0][3], 9),
		flatRange(counts[1][0]+counts[1][1]+counts[1][2]+counts[1][3], 9),
		flatRange(counts[2][0]+counts[2][1]+counts[2][2]+counts[2][3], 9),
	}
	sliceBytes, err := buildHQSlice(raw, counts, matrix, 0, 0, 1, 17)
	if err != nil {
		t.Fatalf("buildHQSlice: %v", err)
	}
	qIndex, _, _, err := parseHQSlice(sliceBytes, 0, 1, counts)
	if err != nil {
		t.Fatalf("parseHQSlice: %v", err)
	}
	if qIndex != 17 {
		t.Fatalf("qIndex = %d, want forced 17", qIndex)
	}
}

// Serialised slice size must be non-increasing in the quantiser index,
// the property the CBR bisection relies on.
func TestTrialSizeMonotonicInQuantIndex(t *testing.T) {
	depth, rows, cols := 2, 2, 2
	counts := bandCounts(16, 16, depth, rows, cols)
	matrix := defaultQuantMatrix(LeGall, depth)
	total := 0
	for _, n := range counts {
		total += n
	}
	values := flatRange(total, 11)
	prev := componentTrialSizeBits(values, counts, matrix, 0)
	for q := 1; q <= maxQuantIndex; q++ {
		bits := componentTrialSizeBits(values, counts, matrix, q)
		if bits > prev {
			t.Fatalf("size grew from %d to %d bits between indices %d and %d", prev, bits, q-1, q)
		}
		prev = bits
	}
}

func TestSearchQuantIndexFindsSmallestFitting(t *testing.T) {
	// A synthetic monotone size curve: fits exactly from index 23 up.
	trial := func(q int) int {
		if q >= 23 {
			return 90
		}
		return 100 + (23-q)*3
	}
	if got := searchQuantIndex(95, trial); got != 23 {
		t.Fatalf("searchQuantIndex = %d, want 23", got)
	}
	// Nothing fits: the search must settle at the maximum index.
	if got := searchQuantIndex(10, func(int) int { return 50 }); got != maxQuantIndex {
		t.Fatalf("searchQuantIndex with unfittable slice = %d, want %d", got, maxQuantIndex)
	}
}

func TestValidateSliceGridRejectsUnevenGrid(t *testing.T) {
	if err := validateSliceGrid(16, 16, 2, 3, 3); err == nil {
		t.Fatal("validateSliceGrid(16,16,depth=2,3,3) succeeded, want error (16>>2=4 not divisible by 3)")
	}
	if err := validateSliceGrid(16, 16, 2, 4, 4); err != nil {
		t.Fatalf("validateSliceGrid(16,16,depth=2,4,4): %v", err)
	}
}
