package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/ajroetker/vc2"
)

// profile is the set of encode parameters a TOML config file can
// supply, mirroring vc2.EncodeParams minus the fields (video format,
// picture count) that come from the input PPM frames themselves.
// Flags set on the command line override whatever a profile loads.
type profile struct {
	Kernel        string  `toml:"kernel"`
	Depth         int     `toml:"depth"`
	Mode          string  `toml:"mode"`
	SliceRows     int     `toml:"slice_rows"`
	SliceCols     int     `toml:"slice_cols"`
	SizeScaler    int     `toml:"size_scaler"`
	TargetRateBps float64 `toml:"target_rate_bps"`
	ChromaFormat  string  `toml:"chroma_format"`
}

// bytesPerPicture converts a bits-per-second target into the constant
// per-picture byte budget EncodeParams needs, given the sequence's
// frame rate.
func (p profile) bytesPerPicture(fpsNum, fpsDen int) int {
	if p.TargetRateBps <= 0 || fpsNum <= 0 {
		return 0
	}
	fps := float64(fpsNum) / float64(fpsDen)
	return int(p.TargetRateBps / 8 / fps)
}

func loadProfile(path string) (profile, error) {
	var p profile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return profile{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	return p, nil
}

func (p profile) kernel() (vc2.Kernel, error) {
	if p.Kernel == "" {
		return vc2.LeGall, nil
	}
	switch p.Kernel {
	case "leGall", "LeGall", "5-3":
		return vc2.LeGall, nil
	case "dd97", "DD97", "9-7":
		return vc2.DD97, nil
	case "dd137", "DD137", "13-7":
		return vc2.DD137, nil
	case "haar0", "Haar0":
		return vc2.Haar0, nil
	case "haar1", "Haar1":
		return vc2.Haar1, nil
	case "fidelity", "Fidelity":
		return vc2.Fidelity, nil
	case "daub97", "Daub97":
		return vc2.Daub97, nil
	default:
		return vc2.NullKernel, fmt.Errorf("unknown kernel %q", p.Kernel)
	}
}

func (p profile) sliceMode() (vc2.SliceMode, error) {
	switch p.Mode {
	case "", "hq", "HQ":
		return vc2.SliceHQ, nil
	case "ld", "LD":
		return vc2.SliceLD, nil
	default:
		return 0, fmt.Errorf("unknown slice mode %q, want hq or ld", p.Mode)
	}
}

func (p profile) chromaFormat() (vc2.ChromaFormat, error) {
	switch p.ChromaFormat {
	case "", "444", "4:4:4":
		return vc2.Chroma444, nil
	case "422", "4:2:2":
		return vc2.Chroma422, nil
	case "420", "4:2:0":
		return vc2.Chroma420, nil
	default:
		return 0, fmt.Errorf("unknown chroma format %q", p.ChromaFormat)
	}
}
