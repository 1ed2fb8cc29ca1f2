package vc2

import "testing"

func TestPaddedSize(t *testing.T) {
	tests := []struct {
		dim, depth, want int
	}{
		{8, 0, 8},
		{8, 3, 8},
		{9, 3, 16},
		{7, 1, 8},
		{16, 4, 16},
		{17, 2, 20},
	}
	for _, tt := range tests {
		if got := paddedSize(tt.dim, tt.depth); got != tt.want {
			t.Errorf("paddedSize(%d,%d) = %d, want %d", tt.dim, tt.depth, got, tt.want)
		}
	}
}

func randomPlane(height, width int) *Plane {
	p := NewPlane(height, width)
	seed := int32(1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			seed = seed*1103515245 + 12345
			p.Samples[y][x] = (seed >> 8) % 512
		}
	}
	return p
}

func TestWaveletRoundTripLossless(t *testing.T) {
	losslessKernels := []Kernel{LeGall, Haar0, Haar1, DD97, DD137}
	sizes := [][2]int{{16, 16}, {15, 9}, {32, 24}, {1, 1}, {5, 5}}

	for _, k := range losslessKernels {
		for _, sz := range sizes {
			p := randomPlane(sz[0], sz[1])
			depth := 2

			padded, err := transformPlane(k, depth, p)
			if err != nil {
				t.Fatalf("%v %v: transformPlane: %v", k, sz, err)
			}
			out, err := inverseTransformPlane(k, depth, padded, p.Height, p.Width)
			if err != nil {
				t.Fatalf("%v %v: inverseTransformPlane: %v", k, sz, err)
			}
			for y := 0; y < p.Height; y++ {
				for x := 0; x < p.Width; x++ {
					if out.Samples[y][x] != p.Samples[y][x] {
						t.Fatalf("%v %v: round trip mismatch at (%d,%d): got %d want %d",
							k, sz, y, x, out.Samples[y][x], p.Samples[y][x])
					}
				}
			}
		}
	}
}

func TestTransformPlaneRejectsNullKernel(t *testing.T) {
	p := randomPlane(8, 8)
	if _, err := transformPlane(NullKernel, 1, p); err == nil {
		t.Fatal("transformPlane(NullKernel, ...) succeeded, want error")
	}
}

func TestTransformPlaneRejectsNegativeDepth(t *testing.T) {
	p := randomPlane(8, 8)
	if _, err := transformPlane(LeGall, -1, p); err == nil {
		t.Fatal("transformPlane(depth=-1) succeeded, want error")
	}
}

func TestTransformPlaneZeroDepthIsIdentity(t *testing.T) {
	p := randomPlane(6, 6)
	out, err := transformPlane(LeGall, 0, p)
	if err != nil {
		t.Fatalf("transformPlane depth 0: %v", err)
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if out.Samples[y][x] != p.Samples[y][x] {
				t.Fatalf("depth 0 changed sample at (%d,%d)", y, x)
			}
		}
	}
}
