package vc2

import "fmt"

// picturePreamble is the fixed-layout header every picture data unit
// carries ahead of its slice data, per §4.F: the picture number,
// followed by the transform parameters needed to invert the wavelet
// and slicing the encoder chose. HQ pictures carry the slice prefix
// and size scaler; LD pictures instead carry the per-slice byte
// budget as a rational.
type picturePreamble struct {
	pictureNumber uint32
	kernel        Kernel
	depth         int
	slicesX       int // horizontal slice count (cols)
	slicesY       int // vertical slice count (rows)
	slicePrefix   int // HQ only
	sizeScaler    int // HQ only
	bytesNumer    int // LD only: slice_bytes rational
	bytesDenom    int
}

// encodePicturePreamble writes p. The original reference encoder's HQ
// path has a well-known defect where the parse-info and preamble for
// HQ pictures are never actually emitted, leaving HQ picture data
// units unparseable without external knowledge of their length; this
// implementation always emits both, for every mode. The custom
// quantisation matrix flag is always written false: custom matrices
// are unsupported on the wire, in both directions.
func encodePicturePreamble(mode SliceMode, p picturePreamble) ([]byte, error) {
	wire, ok := wireIndex(p.kernel)
	if !ok {
		return nil, fmt.Errorf("%w: kernel %v has no wire index", ErrConfig, p.kernel)
	}

	w := newBitWriter()
	w.WriteUint(uint64(p.pictureNumber), 4)
	writeUnsignedVLC(w, wire)
	writeUnsignedVLC(w, uint32(p.depth))
	writeUnsignedVLC(w, uint32(p.slicesX))
	writeUnsignedVLC(w, uint32(p.slicesY))
	if mode == SliceHQ {
		writeUnsignedVLC(w, uint32(p.slicePrefix))
		writeUnsignedVLC(w, uint32(p.sizeScaler))
	} else {
		g := gcd(p.bytesNumer, p.bytesDenom)
		writeUnsignedVLC(w, uint32(p.bytesNumer/g))
		writeUnsignedVLC(w, uint32(p.bytesDenom/g))
	}
	w.WriteBool(false)
	w.Align()
	return w.Bytes(), nil
}

func decodePicturePreamble(mode SliceMode, data []byte) (picturePreamble, int, error) {
	r := newBitReader(data)
	num, err := r.ReadUint(4)
	if err != nil {
		return picturePreamble{}, 0, err
	}
	wire, err := readUnsignedVLC(r)
	if err != nil {
		return picturePreamble{}, 0, err
	}
	kernel, ok := kernelForIndex(wire)
	if !ok {
		return picturePreamble{}, 0, fmt.Errorf("%w: unknown wavelet_index %d", ErrMalformedStream, wire)
	}
	depth, err := readUnsignedVLC(r)
	if err != nil {
		return picturePreamble{}, 0, err
	}
	slicesX, err := readUnsignedVLC(r)
	if err != nil {
		return picturePreamble{}, 0, err
	}
	slicesY, err := readUnsignedVLC(r)
	if err != nil {
		return picturePreamble{}, 0, err
	}
	p := picturePreamble{
		pictureNumber: uint32(num),
		kernel:        kernel,
		depth:         int(depth),
		slicesX:       int(slicesX),
		slicesY:       int(slicesY),
	}
	if mode == SliceHQ {
		prefix, perr := readUnsignedVLC(r)
		if perr != nil {
			return picturePreamble{}, 0, perr
		}
		scaler, serr := readUnsignedVLC(r)
		if serr != nil {
			return picturePreamble{}, 0, serr
		}
		p.slicePrefix = int(prefix)
		p.sizeScaler = int(scaler)
	} else {
		numer, nerr := readUnsignedVLC(r)
		if nerr != nil {
			return picturePreamble{}, 0, nerr
		}
		denom, derr := readUnsignedVLC(r)
		if derr != nil {
			return picturePreamble{}, 0, derr
		}
		p.bytesNumer = int(numer)
		p.bytesDenom = int(denom)
	}
	hasCustom, err := r.ReadBool()
	if err != nil {
		return picturePreamble{}, 0, err
	}
	if hasCustom {
		return picturePreamble{}, 0, fmt.Errorf("%w: custom quantisation matrix not supported", ErrMalformedStream)
	}
	r.Align()
	return p, r.BytePos(), nil
}

// dataUnit is the sum of the kinds of unit a VC-2 sequence carries
// between parse-info headers. Which fields are set follows the
// parse-info code that introduced the unit: sequence for a sequence
// header, preamble and sliceData for a picture, raw for auxiliary and
// padding units, and none for end of sequence.
type dataUnit struct {
	code      parseCode
	sequence  *SequenceHeader
	preamble  *picturePreamble
	sliceData []byte // picture units only: the bytes after the preamble
	raw       []byte // auxiliary/padding units: opaque payload
}

// codecContext threads the state a sequence of data units shares
// across calls: the slice format in force (set by the most recent
// picture, or implied by profile) and the previous parse-info's
// nextOffset, which becomes the prevOffset of the next parse-info
// written.
type codecContext struct {
	sliceMode       SliceMode
	prevParseOffset uint32
}

// splitDataUnit separates one parse-info-prefixed unit's body from the
// rest of a sequence buffer, given the parse-info already decoded at
// data[:parseInfoLen], and decodes it into a dataUnit value.
func splitDataUnit(ctx *codecContext, pi parseInfo, data []byte) (dataUnit, error) {
	body := data[parseInfoLen:]
	switch {
	case pi.code == parseCodeSequenceHeader:
		h, err := decodeSequenceHeader(body)
		if err != nil {
			return dataUnit{}, err
		}
		return dataUnit{code: pi.code, sequence: &h}, nil
	case pi.code.isPicture():
		mode := SliceHQ
		if pi.code == parseCodeLDPicture {
			mode = SliceLD
		}
		ctx.sliceMode = mode
		preamble, consumed, err := decodePicturePreamble(mode, body)
		if err != nil {
			return dataUnit{}, err
		}
		return dataUnit{code: pi.code, preamble: &preamble, sliceData: body[consumed:]}, nil
	case pi.code == parseCodeEndOfSequence:
		return dataUnit{code: pi.code}, nil
	default:
		return dataUnit{code: pi.code, raw: body}, nil
	}
}
