package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ajroetker/vc2"
	"github.com/cnotch/xlog"
	"github.com/spf13/cobra"
)

var encodeFlags struct {
	output        string
	kernel        string
	depth         int
	mode          string
	sliceRows     int
	sliceCols     int
	slicePrefix   int
	sizeScaler    int
	bytesPerFrame int
	vbrIndex      int
	chroma        string
	fpsNum        int
	fpsDen        int
	interlaced    bool
	topFieldFirst bool
}

var encodeCmd = &cobra.Command{
	Use:   "encode <frame.ppm>...",
	Short: "Encode a sequence of PPM frames into a VC-2 bitstream",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEncode,
}

func init() {
	f := encodeCmd.Flags()
	f.StringVarP(&encodeFlags.output, "output", "o", "", "output bitstream path (required)")
	f.StringVar(&encodeFlags.kernel, "kernel", "leGall", "wavelet kernel: leGall, dd97, dd137, haar0, haar1, fidelity, daub97")
	f.IntVar(&encodeFlags.depth, "depth", 3, "wavelet decomposition depth")
	f.StringVar(&encodeFlags.mode, "mode", "hq", "slice mode: hq or ld")
	f.IntVar(&encodeFlags.sliceRows, "slice-rows", 4, "slice grid rows")
	f.IntVar(&encodeFlags.sliceCols, "slice-cols", 4, "slice grid columns")
	f.IntVar(&encodeFlags.slicePrefix, "slice-prefix", 0, "HQ padding bytes ahead of each slice")
	f.IntVar(&encodeFlags.sizeScaler, "size-scaler", 1, "HQ slice length field unit size in bytes")
	f.IntVar(&encodeFlags.bytesPerFrame, "bytes-per-picture", 0, "CBR target bytes per picture (or set target_rate_bps in --config)")
	f.IntVar(&encodeFlags.vbrIndex, "vbr-index", -1, "fix every slice to this quantiser index instead of CBR search (HQ only)")
	f.StringVar(&encodeFlags.chroma, "chroma", "422", "chroma subsampling: 444, 422, or 420")
	f.IntVar(&encodeFlags.fpsNum, "fps-num", 25, "frame rate numerator")
	f.IntVar(&encodeFlags.fpsDen, "fps-den", 1, "frame rate denominator")
	f.BoolVar(&encodeFlags.interlaced, "interlaced", false, "treat input frames as interlaced")
	f.BoolVar(&encodeFlags.topFieldFirst, "top-field-first", true, "field order when --interlaced is set")
	_ = encodeCmd.MarkFlagRequired("output")
}

func runEncode(cmd *cobra.Command, args []string) error {
	p := profile{
		Kernel: encodeFlags.kernel, Depth: encodeFlags.depth, Mode: encodeFlags.mode,
		SliceRows: encodeFlags.sliceRows, SliceCols: encodeFlags.sliceCols,
		SizeScaler: encodeFlags.sizeScaler, ChromaFormat: encodeFlags.chroma,
	}
	if configPath != "" {
		loaded, err := loadProfile(configPath)
		if err != nil {
			return err
		}
		// Flags explicitly set on the command line take precedence over
		// the profile file; everything else comes from the file.
		flags := cmd.Flags()
		if !flags.Changed("kernel") {
			p.Kernel = loaded.Kernel
		}
		if !flags.Changed("depth") {
			p.Depth = loaded.Depth
		}
		if !flags.Changed("mode") {
			p.Mode = loaded.Mode
		}
		if !flags.Changed("slice-rows") {
			p.SliceRows = loaded.SliceRows
		}
		if !flags.Changed("slice-cols") {
			p.SliceCols = loaded.SliceCols
		}
		if !flags.Changed("size-scaler") {
			p.SizeScaler = loaded.SizeScaler
		}
		if !flags.Changed("chroma") {
			p.ChromaFormat = loaded.ChromaFormat
		}
		if !flags.Changed("bytes-per-picture") {
			p.TargetRateBps = loaded.TargetRateBps
		}
	}

	kernel, err := p.kernel()
	if err != nil {
		return err
	}
	mode, err := p.sliceMode()
	if err != nil {
		return err
	}
	chroma, err := p.chromaFormat()
	if err != nil {
		return err
	}
	sizeScaler := p.SizeScaler
	if sizeScaler == 0 {
		sizeScaler = 1
	}
	bytesPerPicture := encodeFlags.bytesPerFrame
	if rate := p.bytesPerPicture(encodeFlags.fpsNum, encodeFlags.fpsDen); rate > 0 {
		bytesPerPicture = rate
	}
	rateControl := vc2.RateControlCBR
	if encodeFlags.vbrIndex >= 0 {
		rateControl = vc2.RateControlVBR
	} else if bytesPerPicture <= 0 {
		return fmt.Errorf("no byte budget: set --bytes-per-picture, --vbr-index, or a target_rate_bps in --config")
	}

	first, bitDepth, err := readPPMFile(args[0])
	if err != nil {
		return err
	}

	out, err := os.Create(encodeFlags.output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", encodeFlags.output, err)
	}
	defer out.Close()

	format := vc2.VideoFormat{
		FrameWidth: first.Format.LumaWidth, FrameHeight: first.Format.LumaHeight,
		ChromaFormat: chroma, Interlaced: encodeFlags.interlaced, TopFieldFirst: encodeFlags.topFieldFirst,
		FrameRateNumer: encodeFlags.fpsNum, FrameRateDenom: encodeFlags.fpsDen, BitDepth: bitDepth,
	}
	params := vc2.EncodeParams{
		Format: format, Kernel: kernel, Depth: p.Depth, Mode: mode,
		SliceRows: p.SliceRows, SliceCols: p.SliceCols,
		SlicePrefix: encodeFlags.slicePrefix, SizeScaler: sizeScaler,
		BytesPerPicture: bytesPerPicture,
		RateControl:     rateControl, VBRIndex: encodeFlags.vbrIndex,
	}
	enc, err := vc2.NewEncoder(out, params)
	if err != nil {
		return fmt.Errorf("creating encoder: %w", err)
	}

	encoded := 0
	for i, path := range args {
		var rgb *vc2.Picture
		if i == 0 {
			rgb = first
		} else {
			rgb, _, err = readPPMFile(path)
			if err != nil {
				return err
			}
		}
		pic := vc2.ToYCbCr(rgb, chroma, bitDepth)
		if err := enc.Encode(pic); err != nil {
			if errors.Is(err, vc2.ErrBudgetExceeded) {
				xlog.Warnf("frame %d (%s): %v, skipping", i, path, err)
				continue
			}
			return fmt.Errorf("encoding frame %d (%s): %w", i, path, err)
		}
		encoded++
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing sequence: %w", err)
	}
	xlog.Infof("encoded %d/%d frames to %s", encoded, len(args), encodeFlags.output)
	return nil
}

func readPPMFile(path string) (*vc2.Picture, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return vc2.ReadPPM(f)
}
