package vc2

import (
	"fmt"
	"io"
)

// Decoder reads a VC-2 data unit stream produced by Encoder (or any
// conforming encoder) and reconstructs Pictures.
type Decoder struct {
	data         []byte
	pos          int
	ctx          codecContext
	header       *SequenceHeader
	pendingField *Picture // first field of a pair, awaiting its partner
}

// NewDecoder reads all of r's data, buffering the sequence. VC-2 data
// units chain via byte offsets rather than a framed transport, so a
// Decoder needs seekable access to the whole sequence rather than a
// single forward pass.
func NewDecoder(r io.Reader) (*Decoder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return &Decoder{data: data}, nil
}

// Header returns the most recently decoded sequence header, or nil if
// Decode has not yet read one.
func (d *Decoder) Header() *SequenceHeader {
	return d.header
}

// Decode returns the next complete Picture in the sequence, combining
// paired top/bottom fields into one frame when the active sequence
// header says the format is interlaced. It returns io.EOF once an
// end-of-sequence unit is reached with no picture pending.
func (d *Decoder) Decode() (*Picture, error) {
	for {
		unit, err := d.nextUnit()
		if err != nil {
			return nil, err
		}
		switch {
		case unit.code == parseCodeSequenceHeader:
			d.header = unit.sequence
		case unit.code == parseCodeEndOfSequence:
			if d.pendingField != nil {
				return nil, fmt.Errorf("%w: sequence ended with an unpaired field", ErrMalformedStream)
			}
			return nil, io.EOF
		case unit.code.isPicture():
			pic, perr := d.decodePictureUnit(unit)
			if perr != nil {
				return nil, perr
			}
			if d.header != nil && d.header.Format.Interlaced {
				if d.pendingField == nil {
					d.pendingField = pic
					continue
				}
				// The field on the wire first is the top field iff the
				// sequence is top-field-first.
				top, bottom := d.pendingField, pic
				if !d.header.Format.TopFieldFirst {
					top, bottom = pic, d.pendingField
				}
				frame := joinFields(top, bottom)
				d.pendingField = nil
				return frame, nil
			}
			return pic, nil
		}
		// auxiliary/padding units carry no Picture; keep scanning.
	}
}

// nextUnit reads the parse-info at d.pos and decodes the unit it
// introduces, recovering via synchronise if the header is corrupt or
// the offset chain has been lost.
func (d *Decoder) nextUnit() (dataUnit, error) {
	if d.pos >= len(d.data) {
		return dataUnit{}, io.EOF
	}
	if d.pos+parseInfoLen > len(d.data) {
		return dataUnit{}, ErrMalformedStream
	}
	pi, err := decodeParseInfo(d.data[d.pos:])
	if err != nil {
		sync, ok := synchronise(d.data, d.pos+1)
		if !ok {
			return dataUnit{}, ErrMalformedStream
		}
		d.pos = sync
		pi, err = decodeParseInfo(d.data[d.pos:])
		if err != nil {
			return dataUnit{}, err
		}
	}
	unitEnd := len(d.data)
	if pi.nextOffset != 0 {
		end := d.pos + int(pi.nextOffset)
		if end <= len(d.data) {
			unitEnd = end
		}
	}
	unit, uerr := splitDataUnit(&d.ctx, pi, d.data[d.pos:unitEnd])
	if uerr != nil {
		return dataUnit{}, uerr
	}
	if pi.nextOffset != 0 {
		d.pos += int(pi.nextOffset)
	} else {
		d.pos = unitEnd
	}
	return unit, nil
}

func (d *Decoder) decodePictureUnit(unit dataUnit) (*Picture, error) {
	if d.header == nil {
		return nil, fmt.Errorf("%w: picture data unit before any sequence header", ErrMalformedStream)
	}
	pre := unit.preamble
	matrix, err := quantMatrix(pre.kernel, pre.depth, nil)
	if err != nil {
		return nil, err
	}

	vf := d.header.Format
	height, width := vf.FrameHeight, vf.FrameWidth
	if vf.Interlaced {
		height = (height + 1) / 2
	}
	ch, cw := PictureFormat{LumaHeight: height, LumaWidth: width, ChromaFormat: vf.ChromaFormat}.ChromaDims()

	padH := paddedSize(height, pre.depth)
	padW := paddedSize(width, pre.depth)
	chPadH := paddedSize(ch, pre.depth)
	chPadW := paddedSize(cw, pre.depth)

	mode := SliceHQ
	if unit.code == parseCodeLDPicture {
		mode = SliceLD
	}
	layout := SliceLayout{
		Rows: pre.slicesY, Cols: pre.slicesX, Mode: mode,
		Prefix: pre.slicePrefix, SizeScaler: pre.sizeScaler,
		BytesNumer: pre.bytesNumer, BytesDenom: pre.bytesDenom,
		ForceQ: -1,
	}

	yCoeffs, c1Coeffs, c2Coeffs, err := splitComponents(unit.sliceData, layout, matrix, padH, padW, chPadH, chPadW)
	if err != nil {
		return nil, err
	}

	planes := [3]*Plane{yCoeffs, c1Coeffs, c2Coeffs}
	dims := [3][2]int{{height, width}, {ch, cw}, {ch, cw}}
	var out [3]*Plane
	for i, plane := range planes {
		p, ierr := inverseTransformPlane(pre.kernel, pre.depth, plane, dims[i][0], dims[i][1])
		if ierr != nil {
			return nil, ierr
		}
		out[i] = p
	}

	format := PictureFormat{LumaHeight: height, LumaWidth: width, ChromaFormat: vf.ChromaFormat}
	return &Picture{Format: format, y: out[0], c1: out[1], c2: out[2]}, nil
}

// splitComponents decodes the three component planes of a picture's
// slice data. Luma and chroma share a slice grid but may need
// different padded dimensions when chroma is subsampled, so each
// component's planes are allocated to its own padded size before
// slices are written into them.
func splitComponents(data []byte, layout SliceLayout, matrix []int32, lumaH, lumaW, chromaH, chromaW int) (y, c1, c2 *Plane, err error) {
	dims := [3][2]int{{lumaH, lumaW}, {chromaH, chromaW}, {chromaH, chromaW}}
	coeffs, err := decodeSlices(data, dims, layout, matrix)
	if err != nil {
		return nil, nil, nil, err
	}
	return coeffs[0], coeffs[1], coeffs[2], nil
}

func joinFields(top, bottom *Picture) *Picture {
	join := func(t, b *Plane) *Plane {
		height := t.Height + b.Height
		out := NewPlane(height, t.Width)
		for y := 0; y < t.Height; y++ {
			copy(out.Samples[2*y], t.Samples[y])
		}
		for y := 0; y < b.Height; y++ {
			copy(out.Samples[2*y+1], b.Samples[y])
		}
		return out
	}
	y := join(top.y, bottom.y)
	c1 := join(top.c1, bottom.c1)
	c2 := join(top.c2, bottom.c2)
	format := top.Format
	format.LumaHeight = y.Height
	return &Picture{Format: format, y: y, c1: c1, c2: c2}
}
