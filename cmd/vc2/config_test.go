package main

import (
	"testing"

	"github.com/ajroetker/vc2"
)

func TestProfileKernel(t *testing.T) {
	cases := []struct {
		in      string
		want    vc2.Kernel
		wantErr bool
	}{
		{"", vc2.LeGall, false},
		{"leGall", vc2.LeGall, false},
		{"dd97", vc2.DD97, false},
		{"dd137", vc2.DD137, false},
		{"haar0", vc2.Haar0, false},
		{"haar1", vc2.Haar1, false},
		{"fidelity", vc2.Fidelity, false},
		{"daub97", vc2.Daub97, false},
		{"bogus", 0, true},
	}
	for _, c := range cases {
		got, err := profile{Kernel: c.in}.kernel()
		if (err != nil) != c.wantErr {
			t.Errorf("kernel(%q) error = %v, wantErr %v", c.in, err, c.wantErr)
			continue
		}
		if err == nil && got != c.want {
			t.Errorf("kernel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestProfileSliceMode(t *testing.T) {
	cases := []struct {
		in      string
		want    vc2.SliceMode
		wantErr bool
	}{
		{"", vc2.SliceHQ, false},
		{"hq", vc2.SliceHQ, false},
		{"HQ", vc2.SliceHQ, false},
		{"ld", vc2.SliceLD, false},
		{"bogus", 0, true},
	}
	for _, c := range cases {
		got, err := profile{Mode: c.in}.sliceMode()
		if (err != nil) != c.wantErr {
			t.Errorf("sliceMode(%q) error = %v, wantErr %v", c.in, err, c.wantErr)
			continue
		}
		if err == nil && got != c.want {
			t.Errorf("sliceMode(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestProfileChromaFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    vc2.ChromaFormat
		wantErr bool
	}{
		{"", vc2.Chroma444, false},
		{"444", vc2.Chroma444, false},
		{"422", vc2.Chroma422, false},
		{"420", vc2.Chroma420, false},
		{"bogus", 0, true},
	}
	for _, c := range cases {
		got, err := profile{ChromaFormat: c.in}.chromaFormat()
		if (err != nil) != c.wantErr {
			t.Errorf("chromaFormat(%q) error = %v, wantErr %v", c.in, err, c.wantErr)
			continue
		}
		if err == nil && got != c.want {
			t.Errorf("chromaFormat(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestProfileBytesPerPicture(t *testing.T) {
	p := profile{TargetRateBps: 8_000_000}
	got := p.bytesPerPicture(25, 1)
	want := 40000 // 8e6 bits/s / 8 / 25fps
	if got != want {
		t.Errorf("bytesPerPicture = %d, want %d", got, want)
	}
	if p.bytesPerPicture(0, 1) != 0 {
		t.Error("bytesPerPicture with fpsNum=0 should return 0")
	}
	zero := profile{}
	if zero.bytesPerPicture(25, 1) != 0 {
		t.Error("bytesPerPicture with no TargetRateBps should return 0")
	}
}
