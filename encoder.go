package vc2

import (
	"fmt"
	"io"
)

// RateControl selects how an Encoder picks per-slice quantiser
// indices: CBR searches each slice for the finest index that fits its
// byte budget; VBR (HQ only) pins every slice to a fixed index and
// lets the slice sizes float.
type RateControl int

const (
	RateControlCBR RateControl = iota
	RateControlVBR
)

// EncodeParams configures an Encoder for the lifetime of a sequence:
// the video format every picture must match, the wavelet kernel and
// decomposition depth, the slicing grid and bitstream mode, and the
// constant per-picture byte budget the slice engine's CBR search
// targets.
type EncodeParams struct {
	Format          VideoFormat
	Kernel          Kernel
	Depth           int
	Mode            SliceMode
	SliceRows       int
	SliceCols       int
	SlicePrefix     int // HQ only: padding bytes ahead of each slice
	SizeScaler      int // HQ only; ignored for LD
	BytesPerPicture int // CBR target for one picture's slice data
	RateControl     RateControl
	VBRIndex        int // quantiser index every slice uses under RateControlVBR
}

// Encoder serialises a sequence of Pictures sharing EncodeParams into
// the VC-2 data unit stream of §4.F, writing a sequence header before
// the first picture and an end-of-sequence unit when closed.
type Encoder struct {
	w             io.Writer
	params        EncodeParams
	ctx           codecContext
	wroteHeader   bool
	effFormat     VideoFormat // format as a decoder will reconstruct it
	pictureNumber uint32
	closed        bool
}

// NewEncoder validates params and returns an Encoder writing to w.
func NewEncoder(w io.Writer, params EncodeParams) (*Encoder, error) {
	if params.Depth < 0 {
		return nil, errInvalidDepth(params.Depth)
	}
	if params.Kernel == NullKernel {
		return nil, errNullKernel()
	}
	if params.SliceRows <= 0 || params.SliceCols <= 0 {
		return nil, fmt.Errorf("%w: slice grid must be positive, got %dx%d", ErrConfig, params.SliceRows, params.SliceCols)
	}
	if params.Mode == SliceHQ && params.SizeScaler <= 0 {
		return nil, fmt.Errorf("%w: HQ size scaler must be positive, got %d", ErrConfig, params.SizeScaler)
	}
	if params.Mode == SliceHQ && params.SlicePrefix < 0 {
		return nil, fmt.Errorf("%w: HQ slice prefix must be non-negative, got %d", ErrConfig, params.SlicePrefix)
	}
	switch params.RateControl {
	case RateControlCBR:
		if params.BytesPerPicture <= 0 {
			return nil, fmt.Errorf("%w: CBR needs a positive byte budget, got %d", ErrConfig, params.BytesPerPicture)
		}
	case RateControlVBR:
		if params.Mode != SliceHQ {
			return nil, fmt.Errorf("%w: VBR rate control is only available for HQ slices", ErrConfig)
		}
		if params.VBRIndex < 0 || params.VBRIndex > maxQuantIndex {
			return nil, fmt.Errorf("%w: VBR quantiser index %d out of range [0,%d]", ErrConfig, params.VBRIndex, maxQuantIndex)
		}
	default:
		return nil, fmt.Errorf("%w: unknown rate control %d", ErrConfig, params.RateControl)
	}
	// An unencodable video format (frame rate or bit depth with no
	// coded representation) refuses to start rather than failing on
	// the first picture.
	if _, err := encodeSequenceHeader(SequenceHeader{Format: params.Format}); err != nil {
		return nil, err
	}
	return &Encoder{w: w, params: params, ctx: codecContext{sliceMode: params.Mode}}, nil
}

func (e *Encoder) writeUnit(code parseCode, body []byte) error {
	pi := parseInfo{code: code, prevOffset: e.ctx.prevParseOffset}
	// end_of_sequence is the one unit with nothing after it: its next
	// offset is 0, not its own length.
	if code != parseCodeEndOfSequence {
		pi.nextOffset = uint32(parseInfoLen + len(body))
	}
	if _, err := e.w.Write(pi.encode()); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if len(body) > 0 {
		if _, err := e.w.Write(body); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
	}
	e.ctx.prevParseOffset = pi.nextOffset
	return nil
}

// Encode transforms, quantises, and slices one picture and appends it
// to the sequence, writing a sequence header first if this is the
// first picture (or interlaced field) encoded.
func (e *Encoder) Encode(p *Picture) error {
	if e.closed {
		return fmt.Errorf("%w: Encode called after Close", ErrConfig)
	}
	if err := e.ensureSequenceHeader(); err != nil {
		return err
	}
	if e.params.Format.Interlaced {
		// Each field is an independent picture with half the frame's
		// byte budget; TopFieldFirst decides which goes on the wire
		// first.
		top, bottom := splitFields(p)
		first, second := top, bottom
		if !e.effFormat.TopFieldFirst {
			first, second = bottom, top
		}
		if err := e.encodePicture(first, e.params.BytesPerPicture/2); err != nil {
			return err
		}
		return e.encodePicture(second, e.params.BytesPerPicture/2)
	}
	return e.encodePicture(p, e.params.BytesPerPicture)
}

func (e *Encoder) ensureSequenceHeader() error {
	if e.wroteHeader {
		return nil
	}
	profile := ProfileHQ
	if e.params.Mode == SliceLD {
		profile = ProfileLD
	}
	header := SequenceHeader{
		VersionMajor: 2,
		VersionMinor: 0,
		Profile:      profile,
		Format:       e.params.Format,
	}
	body, err := encodeSequenceHeader(header)
	if err != nil {
		return err
	}
	// Field order is not independently codeable: a decoder learns
	// TopFieldFirst from the base preset, so the encoder must emit
	// fields in the order the wire actually expresses.
	decoded, err := decodeSequenceHeader(body)
	if err != nil {
		return err
	}
	e.effFormat = decoded.Format
	if err := e.writeUnit(parseCodeSequenceHeader, body); err != nil {
		return err
	}
	e.wroteHeader = true
	return nil
}

func (e *Encoder) encodePicture(p *Picture, pictureBytes int) error {
	matrix, err := quantMatrix(e.params.Kernel, e.params.Depth, nil)
	if err != nil {
		return err
	}

	planes := p.Planes()
	var transformed [3]*Plane
	for i, plane := range planes {
		height := paddedSize(plane.Height, e.params.Depth)
		width := paddedSize(plane.Width, e.params.Depth)
		if err := validateSliceGrid(height, width, e.params.Depth, e.params.SliceRows, e.params.SliceCols); err != nil {
			return err
		}
		t, terr := transformPlane(e.params.Kernel, e.params.Depth, plane)
		if terr != nil {
			return terr
		}
		transformed[i] = t
	}

	layout := SliceLayout{
		Rows: e.params.SliceRows, Cols: e.params.SliceCols,
		Mode: e.params.Mode, Prefix: e.params.SlicePrefix, SizeScaler: e.params.SizeScaler,
		BytesNumer: pictureBytes, BytesDenom: e.params.SliceRows * e.params.SliceCols,
		ForceQ: -1,
	}
	if e.params.RateControl == RateControlVBR {
		layout.ForceQ = e.params.VBRIndex
	}
	sliceData, serr := encodeSlices(transformed, layout, matrix)
	if serr != nil {
		return serr
	}

	preamble := picturePreamble{
		pictureNumber: e.pictureNumber,
		kernel:        e.params.Kernel,
		depth:         e.params.Depth,
		slicesX:       layout.Cols,
		slicesY:       layout.Rows,
		slicePrefix:   layout.Prefix,
		sizeScaler:    layout.SizeScaler,
		bytesNumer:    pictureBytes,
		bytesDenom:    layout.Rows * layout.Cols,
	}
	preambleBytes, perr := encodePicturePreamble(e.params.Mode, preamble)
	if perr != nil {
		return perr
	}

	code := parseCodeHQPicture
	if e.params.Mode == SliceLD {
		code = parseCodeLDPicture
	}
	body := append(preambleBytes, sliceData...)
	if err := e.writeUnit(code, body); err != nil {
		return err
	}
	e.pictureNumber++
	return nil
}

// Close writes the end-of-sequence unit. It does not close the
// underlying writer.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.writeUnit(parseCodeEndOfSequence, nil)
}

// splitFields separates an interlaced frame Picture into its top and
// bottom field Pictures by deinterleaving rows, per the field-coding
// supplement of §3.
func splitFields(p *Picture) (top, bottom *Picture) {
	splitPlane := func(pl *Plane) (*Plane, *Plane) {
		th := (pl.Height + 1) / 2
		bh := pl.Height / 2
		t := NewPlane(th, pl.Width)
		b := NewPlane(bh, pl.Width)
		for y := 0; y < pl.Height; y++ {
			if y%2 == 0 {
				copy(t.Samples[y/2], pl.Samples[y])
			} else {
				copy(b.Samples[y/2], pl.Samples[y])
			}
		}
		return t, b
	}
	ty, by := splitPlane(p.y)
	tc1, bc1 := splitPlane(p.c1)
	tc2, bc2 := splitPlane(p.c2)

	fieldFormat := p.Format
	fieldFormat.LumaHeight = (p.Format.LumaHeight + 1) / 2
	top = &Picture{Format: fieldFormat, y: ty, c1: tc1, c2: tc2}

	fieldFormat.LumaHeight = p.Format.LumaHeight / 2
	bottom = &Picture{Format: fieldFormat, y: by, c1: bc1, c2: bc2}
	return top, bottom
}
