package vc2

import (
	"bytes"
	"testing"
)

func gradientRGBPicture(height, width int) *Picture {
	r := NewPlane(height, width)
	g := NewPlane(height, width)
	b := NewPlane(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r.Samples[y][x] = int32((x * 7) % 256)
			g.Samples[y][x] = int32((y * 13) % 256)
			b.Samples[y][x] = int32((x + y) % 256)
		}
	}
	format := PictureFormat{LumaHeight: height, LumaWidth: width, ChromaFormat: ChromaRGB}
	return &Picture{Format: format, y: r, c1: g, c2: b}
}

func TestPPMRoundTrip8Bit(t *testing.T) {
	pic := gradientRGBPicture(4, 5)
	var buf bytes.Buffer
	if err := WritePPM(&buf, pic, 8); err != nil {
		t.Fatalf("WritePPM: %v", err)
	}
	got, bitDepth, err := ReadPPM(&buf)
	if err != nil {
		t.Fatalf("ReadPPM: %v", err)
	}
	if bitDepth != 8 {
		t.Fatalf("bitDepth = %d, want 8", bitDepth)
	}
	if got.Format.LumaHeight != 4 || got.Format.LumaWidth != 5 {
		t.Fatalf("dims = %dx%d, want 4x5", got.Format.LumaHeight, got.Format.LumaWidth)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			if got.y.Samples[y][x] != pic.y.Samples[y][x] ||
				got.c1.Samples[y][x] != pic.c1.Samples[y][x] ||
				got.c2.Samples[y][x] != pic.c2.Samples[y][x] {
				t.Fatalf("sample (%d,%d) mismatch", y, x)
			}
		}
	}
}

func TestPPMRoundTrip16Bit(t *testing.T) {
	pic := gradientRGBPicture(3, 3)
	pic.y.Samples[0][0] = 1023
	pic.c1.Samples[1][1] = 900
	pic.c2.Samples[2][2] = 511
	var buf bytes.Buffer
	if err := WritePPM(&buf, pic, 10); err != nil {
		t.Fatalf("WritePPM: %v", err)
	}
	got, bitDepth, err := ReadPPM(&buf)
	if err != nil {
		t.Fatalf("ReadPPM: %v", err)
	}
	if bitDepth != 10 {
		t.Fatalf("bitDepth = %d, want 10", bitDepth)
	}
	if got.y.Samples[0][0] != 1023 {
		t.Fatalf("Y[0][0] = %d, want 1023", got.y.Samples[0][0])
	}
	if got.c1.Samples[1][1] != 900 {
		t.Fatalf("C1[1][1] = %d, want 900", got.c1.Samples[1][1])
	}
	if got.c2.Samples[2][2] != 511 {
		t.Fatalf("C2[2][2] = %d, want 511", got.c2.Samples[2][2])
	}
}

func TestReadPPMRejectsWrongMagic(t *testing.T) {
	buf := bytes.NewBufferString("P5\n2 2\n255\n\x00\x00\x00\x00")
	if _, _, err := ReadPPM(buf); err == nil {
		t.Fatal("ReadPPM accepted a P5 (greyscale) header, want error")
	}
}

func TestReadPPMSkipsComments(t *testing.T) {
	src := "P6\n# a comment\n2 1\n# another\n255\n\x01\x02\x03\x04\x05\x06"
	pic, bitDepth, err := ReadPPM(bytes.NewBufferString(src))
	if err != nil {
		t.Fatalf("ReadPPM: %v", err)
	}
	if bitDepth != 8 {
		t.Fatalf("bitDepth = %d, want 8", bitDepth)
	}
	if pic.y.Samples[0][0] != 1 || pic.c1.Samples[0][0] != 2 || pic.c2.Samples[0][0] != 3 {
		t.Fatalf("first pixel = (%d,%d,%d), want (1,2,3)", pic.y.Samples[0][0], pic.c1.Samples[0][0], pic.c2.Samples[0][0])
	}
	if pic.y.Samples[0][1] != 4 || pic.c1.Samples[0][1] != 5 || pic.c2.Samples[0][1] != 6 {
		t.Fatalf("second pixel = (%d,%d,%d), want (4,5,6)", pic.y.Samples[0][1], pic.c1.Samples[0][1], pic.c2.Samples[0][1])
	}
}

func TestWritePPMRejectsNonRGB(t *testing.T) {
	pic := NewBlankPicture(PictureFormat{LumaHeight: 2, LumaWidth: 2, ChromaFormat: Chroma420})
	var buf bytes.Buffer
	if err := WritePPM(&buf, pic, 8); err == nil {
		t.Fatal("WritePPM accepted a non-RGB picture, want error")
	}
}
