package vc2

// Fixed-point BT.601 RGB<->YCbCr conversion and 1-2-1 chroma
// filtering, per §6: the forward matrix {66, 129, 25, -38, -74, 112,
// -94, -18} with +128 >> 8 and +16/+128 offsets, the inverse {298,
// 409, -100, -208, 516} with +128 >> 8, chroma downsampled through a
// 1-2-1 kernel with +2 >> 2 and upsampled zero-stuffed through the
// same kernel with +1 >> 1. Borders use the chroma zero offset of 128
// (0 once the offset is removed), held in explicitly padded buffers
// rather than out-of-range indexing.

// chromaZero is the offset-binary zero point of the Cb/Cr channels.
const chromaZero = 128

func clip(v, maxVal int32) int32 {
	if v < 0 {
		return 0
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

func yFromRGB(r, g, b int32) int32 {
	return ((66*r+129*g+25*b+128)>>8) + 16
}

func cbFromRGB(r, g, b int32) int32 {
	return ((-38*r-74*g+112*b+128)>>8) + chromaZero
}

func crFromRGB(r, g, b int32) int32 {
	return ((112*r-94*g-18*b+128)>>8) + chromaZero
}

// rgbToYCbCr converts full-resolution R/G/B planes into
// full-resolution Y/Cb/Cr. Y is clipped to [0, maxVal]; Cb/Cr are left
// unclipped so the chroma filter sees the unquantised values, the way
// the downsampling paths expect.
func rgbToYCbCr(r, g, b *Plane, maxVal int32) (y, cb, cr *Plane) {
	height, width := r.Height, r.Width
	y = NewPlane(height, width)
	cb = NewPlane(height, width)
	cr = NewPlane(height, width)
	for row := 0; row < height; row++ {
		rr, gg, bb := r.Samples[row], g.Samples[row], b.Samples[row]
		yr, cbr, crr := y.Samples[row], cb.Samples[row], cr.Samples[row]
		for col := 0; col < width; col++ {
			rv, gv, bv := rr[col], gg[col], bb[col]
			yr[col] = clip(yFromRGB(rv, gv, bv), maxVal)
			cbr[col] = cbFromRGB(rv, gv, bv)
			crr[col] = crFromRGB(rv, gv, bv)
		}
	}
	return y, cb, cr
}

// yCbCrToRGB inverts rgbToYCbCr given Y/Cb/Cr already at full
// resolution with the 16/128 offsets still in place. The BT.601 matrix
// is lossy even before fixed-point rounding, so a round trip is only
// approximate.
func yCbCrToRGB(y, cb, cr *Plane, maxVal int32) (r, g, b *Plane) {
	height, width := y.Height, y.Width
	r = NewPlane(height, width)
	g = NewPlane(height, width)
	b = NewPlane(height, width)
	for row := 0; row < height; row++ {
		yr, cbr, crr := y.Samples[row], cb.Samples[row], cr.Samples[row]
		rr, gg, bb := r.Samples[row], g.Samples[row], b.Samples[row]
		for col := 0; col < width; col++ {
			yv := yr[col] - 16
			u := cbr[col] - chromaZero
			v := crr[col] - chromaZero
			rr[col] = clip((298*yv+409*v+128)>>8, maxVal)
			gg[col] = clip((298*yv-100*u-208*v+128)>>8, maxVal)
			bb[col] = clip((298*yv+516*u+128)>>8, maxVal)
		}
	}
	return r, g, b
}

// padChroma returns p bordered by one sample of the given fill value
// on every side, sized (Height+2)x(Width+2) with the interior at
// (1,1), so the 1-2-1 filters never index outside the plane.
func padChroma(p *Plane, fill int32) *Plane {
	out := NewPlane(p.Height+2, p.Width+2)
	for x := 0; x < p.Width+2; x++ {
		out.Samples[0][x] = fill
		out.Samples[p.Height+1][x] = fill
	}
	for y := 0; y < p.Height; y++ {
		copy(out.Samples[y+1][1:1+p.Width], p.Samples[y])
		out.Samples[y+1][0] = fill
		out.Samples[y+1][p.Width+1] = fill
	}
	return out
}

// downsampleHoriz121 filters a padded chroma plane with a horizontal
// 1-2-1 kernel centred on even columns and decimates by two,
// producing outWidth columns. The result is unclipped; clipping
// happens once, after the last filter stage.
func downsampleHoriz121(padded *Plane, outWidth int) *Plane {
	height := padded.Height - 2
	out := NewPlane(height, outWidth)
	for y := 0; y < height; y++ {
		src := padded.Samples[y+1]
		dst := out.Samples[y]
		for x := 0; x < outWidth; x++ {
			c := 1 + 2*x
			dst[x] = (src[c-1] + 2*src[c] + src[c+1] + 2) >> 2
		}
	}
	return out
}

// downsampleVert121 is the vertical counterpart, centred on even rows.
func downsampleVert121(padded *Plane, outHeight int) *Plane {
	width := padded.Width - 2
	out := NewPlane(outHeight, width)
	for y := 0; y < outHeight; y++ {
		r := 1 + 2*y
		above, mid, below := padded.Samples[r-1], padded.Samples[r], padded.Samples[r+1]
		dst := out.Samples[y]
		for x := 0; x < width; x++ {
			dst[x] = (above[x+1] + 2*mid[x+1] + below[x+1] + 2) >> 2
		}
	}
	return out
}

func clipPlane(p *Plane, maxVal int32) *Plane {
	for _, row := range p.Samples {
		for x, v := range row {
			row[x] = clip(v, maxVal)
		}
	}
	return p
}

// subsampleChroma decimates a full-resolution chroma plane to the
// dimensions format implies, band-limiting with a 1-2-1 kernel before
// each decimation. The plane still carries its 128 offset; borders are
// treated as the chroma zero point, and values stay unclipped until
// the last filter stage has run.
func subsampleChroma(p *Plane, format ChromaFormat, maxVal int32) *Plane {
	switch format {
	case ChromaRGB, Chroma444:
		return clipPlane(p.Clone(), maxVal)
	case Chroma422:
		return clipPlane(downsampleHoriz121(padChroma(p, chromaZero), (p.Width+1)/2), maxVal)
	case Chroma420:
		halfW := downsampleHoriz121(padChroma(p, chromaZero), (p.Width+1)/2)
		return clipPlane(downsampleVert121(padChroma(halfW, chromaZero), (p.Height+1)/2), maxVal)
	default:
		return p.Clone()
	}
}

// upsampleHoriz121 doubles a zero-offset chroma plane horizontally to
// width columns: samples are stuffed onto even columns with zeros
// between, then filtered 1-2-1 with +1 >> 1 so even columns pass
// through and odd columns interpolate their neighbours.
func upsampleHoriz121(p *Plane, width int) *Plane {
	out := NewPlane(p.Height, width)
	for y := 0; y < p.Height; y++ {
		line := make([]int32, width+2)
		src := p.Samples[y]
		for x := 0; x < p.Width && 2*x < width; x++ {
			line[1+2*x] = src[x]
		}
		dst := out.Samples[y]
		for x := 0; x < width; x++ {
			dst[x] = (line[x] + 2*line[x+1] + line[x+2] + 1) >> 1
		}
	}
	return out
}

// upsampleVert121 doubles a zero-offset chroma plane vertically to
// height rows by the same zero-stuffed 1-2-1 interpolation.
func upsampleVert121(p *Plane, height int) *Plane {
	stuffed := NewPlane(height+2, p.Width)
	for y := 0; y < p.Height && 2*y < height; y++ {
		copy(stuffed.Samples[1+2*y], p.Samples[y])
	}
	out := NewPlane(height, p.Width)
	for y := 0; y < height; y++ {
		above, mid, below := stuffed.Samples[y], stuffed.Samples[y+1], stuffed.Samples[y+2]
		dst := out.Samples[y]
		for x := 0; x < p.Width; x++ {
			dst[x] = (above[x] + 2*mid[x] + below[x] + 1) >> 1
		}
	}
	return out
}

// upsampleChroma restores a subsampled chroma plane (offset-binary,
// 128-centred) to (height, width). The offset is removed before
// interpolation so the stuffed zeros sit at the chroma zero point, and
// restored afterwards.
func upsampleChroma(p *Plane, format ChromaFormat, height, width int) *Plane {
	if format == ChromaRGB || format == Chroma444 {
		return p.Clone()
	}
	centred := NewPlane(p.Height, p.Width)
	for y := range p.Samples {
		for x, v := range p.Samples[y] {
			centred.Samples[y][x] = v - chromaZero
		}
	}
	if format == Chroma420 {
		centred = upsampleVert121(centred, height)
	}
	out := upsampleHoriz121(centred, width)
	for y := range out.Samples {
		for x := range out.Samples[y] {
			out.Samples[y][x] += chromaZero
		}
	}
	return out
}

// ToYCbCr converts an RGB Picture (ChromaFormat ChromaRGB, three
// full-resolution planes holding R/G/B) into a Picture in the target
// chroma format. A ChromaRGB target keeps the planes as they are, the
// passthrough the RGB coding mode uses.
func ToYCbCr(rgb *Picture, target ChromaFormat, bitDepth int) *Picture {
	format := PictureFormat{LumaHeight: rgb.y.Height, LumaWidth: rgb.y.Width, ChromaFormat: target}
	if target == ChromaRGB {
		return &Picture{Format: format, y: rgb.y.Clone(), c1: rgb.c1.Clone(), c2: rgb.c2.Clone()}
	}
	maxVal := int32(1)<<uint(bitDepth) - 1
	y, cb, cr := rgbToYCbCr(rgb.y, rgb.c1, rgb.c2, maxVal)
	return &Picture{
		Format: format,
		y:      y,
		c1:     subsampleChroma(cb, target, maxVal),
		c2:     subsampleChroma(cr, target, maxVal),
	}
}

// ToRGB is the approximate inverse of ToYCbCr: it upsamples Cb/Cr back
// to luma resolution and applies the inverse BT.601 matrix.
func ToRGB(pic *Picture, bitDepth int) *Picture {
	format := PictureFormat{LumaHeight: pic.y.Height, LumaWidth: pic.y.Width, ChromaFormat: ChromaRGB}
	if pic.Format.ChromaFormat == ChromaRGB {
		return &Picture{Format: format, y: pic.y.Clone(), c1: pic.c1.Clone(), c2: pic.c2.Clone()}
	}
	maxVal := int32(1)<<uint(bitDepth) - 1
	cb := upsampleChroma(pic.c1, pic.Format.ChromaFormat, pic.y.Height, pic.y.Width)
	cr := upsampleChroma(pic.c2, pic.Format.ChromaFormat, pic.y.Height, pic.y.Width)
	r, g, b := yCbCrToRGB(pic.y, cb, cr, maxVal)
	return &Picture{Format: format, y: r, c1: g, c2: b}
}
