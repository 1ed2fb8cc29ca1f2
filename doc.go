// Package vc2 implements the core of an SMPTE VC-2 video codec at the
// High Quality (HQ) and Low Delay (LD) profile levels.
//
// It encodes a planar [Picture] into a bit-exact VC-2 stream with
// constant-bit-rate behaviour, and decodes such a stream back into a
// Picture. The wavelet analysis/synthesis pipeline, the slice engine
// with its CBR quantiser search, the quantisation kernel, and the
// bitstream framer are all implemented here; colour conversion and
// planar file I/O are thin external collaborators in color.go and
// ppm.go.
//
// Encoding:
//
//	enc, err := vc2.NewEncoder(w, vc2.EncodeParams{
//	    Format:          format,
//	    Kernel:          vc2.LeGall,
//	    Depth:           3,
//	    Mode:            vc2.SliceHQ,
//	    SliceRows:       32,
//	    SliceCols:       16,
//	    SizeScaler:      1,
//	    BytesPerPicture: 65536,
//	})
//	err = enc.Encode(picture)
//	err = enc.Close()
//
// Decoding:
//
//	dec, err := vc2.NewDecoder(r)
//	pic, err := dec.Decode()
package vc2
