package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ajroetker/vc2"
	"github.com/cnotch/xlog"
	"github.com/spf13/cobra"
)

var decodeFlags struct {
	outDir string
	prefix string
}

var decodeCmd = &cobra.Command{
	Use:   "decode <bitstream>",
	Short: "Decode a VC-2 bitstream into a sequence of PPM frames",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

func init() {
	f := decodeCmd.Flags()
	f.StringVarP(&decodeFlags.outDir, "out-dir", "d", ".", "directory to write decoded PPM frames into")
	f.StringVar(&decodeFlags.prefix, "prefix", "frame", "output filename prefix, frame-%05d.ppm")
}

func runDecode(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	defer in.Close()

	dec, err := vc2.NewDecoder(in)
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}

	if err := os.MkdirAll(decodeFlags.outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", decodeFlags.outDir, err)
	}

	n := 0
	for {
		pic, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("decoding picture %d: %w", n, err)
		}
		header := dec.Header()
		bitDepth := 8
		if header != nil {
			bitDepth = header.Format.BitDepth
		}
		rgb := vc2.ToRGB(pic, bitDepth)
		outPath := filepath.Join(decodeFlags.outDir, fmt.Sprintf("%s-%05d.ppm", decodeFlags.prefix, n))
		if err := writePPMFile(outPath, rgb, bitDepth); err != nil {
			return err
		}
		n++
	}
	xlog.Infof("decoded %d frames to %s", n, decodeFlags.outDir)
	return nil
}

func writePPMFile(path string, pic *vc2.Picture, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := vc2.WritePPM(f, pic, bitDepth); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
