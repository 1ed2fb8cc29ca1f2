package vc2

import "testing"

func TestQuantiseDequantiseZeroIndexIsLossless(t *testing.T) {
	for v := int32(-2000); v <= 2000; v += 7 {
		q := quantiseCoefficient(v, 0)
		got := dequantiseCoefficient(q, 0)
		if got != v {
			t.Fatalf("round trip at index 0: v=%d got=%d", v, got)
		}
	}
}

func TestQuantiseZeroIsAlwaysZero(t *testing.T) {
	for idx := 0; idx <= maxQuantIndex; idx += 5 {
		if q := quantiseCoefficient(0, idx); q != 0 {
			t.Errorf("quantiseCoefficient(0, %d) = %d, want 0", idx, q)
		}
	}
}

func TestQuantFactorKnownValues(t *testing.T) {
	// The first octave and a half of the four-steps-per-octave table.
	want := []int64{4, 5, 6, 7, 8, 10, 11, 13, 16}
	for idx, w := range want {
		if got := quantFactor(idx); got != w {
			t.Errorf("quantFactor(%d) = %d, want %d", idx, got, w)
		}
	}
}

func TestQuantFactorMonotonicallyIncreasing(t *testing.T) {
	prev := quantFactor(0)
	for idx := 1; idx <= maxQuantIndex; idx++ {
		f := quantFactor(idx)
		if f < prev {
			t.Fatalf("quantFactor(%d) = %d, less than quantFactor(%d) = %d", idx, f, idx-1, prev)
		}
		prev = f
	}
}

func TestSubbandQuantIndexNeverNegative(t *testing.T) {
	tests := []struct{ base, entry int }{{0, 5}, {10, 20}, {3, 0}}
	for _, tt := range tests {
		if got := subbandQuantIndex(tt.base, int32(tt.entry)); got < 0 {
			t.Errorf("subbandQuantIndex(%d,%d) = %d, want >= 0", tt.base, tt.entry, got)
		}
	}
}

func TestQuantMatrixRejectsWrongLength(t *testing.T) {
	if _, err := quantMatrix(LeGall, 3, []int32{1, 2, 3}); err == nil {
		t.Fatal("quantMatrix with wrong length succeeded, want error")
	}
}

func TestQuantisePlaneRoundTripAtZero(t *testing.T) {
	depth := 2
	p := randomPlane(16, 16)
	coeffs, err := transformPlane(LeGall, depth, p)
	if err != nil {
		t.Fatalf("transformPlane: %v", err)
	}
	matrix, err := quantMatrix(LeGall, depth, nil)
	if err != nil {
		t.Fatalf("quantMatrix: %v", err)
	}
	original := coeffs.Clone()
	quantisePlane(coeffs, depth, 0, matrix)
	dequantisePlane(coeffs, depth, 0, matrix)
	for y := 0; y < coeffs.Height; y++ {
		for x := 0; x < coeffs.Width; x++ {
			if coeffs.Samples[y][x] != original.Samples[y][x] {
				t.Fatalf("mismatch at (%d,%d): got %d want %d", y, x, coeffs.Samples[y][x], original.Samples[y][x])
			}
		}
	}
}
