package vc2

import "fmt"

// ChromaFormat identifies the colour-difference sampling of a Picture,
// per spec §3.
type ChromaFormat int

const (
	ChromaRGB ChromaFormat = iota
	Chroma444
	Chroma422
	Chroma420
)

func (c ChromaFormat) String() string {
	switch c {
	case ChromaRGB:
		return "RGB"
	case Chroma444:
		return "4:4:4"
	case Chroma422:
		return "4:2:2"
	case Chroma420:
		return "4:2:0"
	default:
		return "unknown"
	}
}

// PictureFormat is the immutable descriptor of a Picture's geometry:
// luma plane dimensions and the chroma sampling that derives the
// chroma plane dimensions from them.
type PictureFormat struct {
	LumaHeight   int
	LumaWidth    int
	ChromaFormat ChromaFormat
}

// ChromaDims returns the chroma plane's (height, width) for this
// format. RGB and 4:4:4 chroma planes are full resolution; 4:2:2 halves
// width only; 4:2:0 halves both.
func (f PictureFormat) ChromaDims() (height, width int) {
	switch f.ChromaFormat {
	case ChromaRGB, Chroma444:
		return f.LumaHeight, f.LumaWidth
	case Chroma422:
		return f.LumaHeight, (f.LumaWidth + 1) / 2
	case Chroma420:
		return (f.LumaHeight + 1) / 2, (f.LumaWidth + 1) / 2
	default:
		return f.LumaHeight, f.LumaWidth
	}
}

// Plane is a rectangular array of signed integer samples, indexed
// [row][col].
type Plane struct {
	Height, Width int
	Samples       [][]int32
}

// NewPlane allocates a zeroed plane of the given shape.
func NewPlane(height, width int) *Plane {
	samples := make([][]int32, height)
	for i := range samples {
		samples[i] = make([]int32, width)
	}
	return &Plane{Height: height, Width: width, Samples: samples}
}

// Clone returns a deep copy of p.
func (p *Plane) Clone() *Plane {
	out := NewPlane(p.Height, p.Width)
	for y := range p.Samples {
		copy(out.Samples[y], p.Samples[y])
	}
	return out
}

// Picture is a triple of planes (Y, C1, C2) described by a
// PictureFormat. It is created by the decoder's inverse transform, or
// by the encoder's colour conversion, and is not mutated once handed
// downstream.
type Picture struct {
	Format PictureFormat
	y      *Plane
	c1     *Plane
	c2     *Plane
}

// NewPicture validates that y, c1, c2 match the shapes implied by
// format and returns a Picture wrapping them.
func NewPicture(format PictureFormat, y, c1, c2 *Plane) (*Picture, error) {
	if y.Height != format.LumaHeight || y.Width != format.LumaWidth {
		return nil, fmt.Errorf("%w: luma plane is %dx%d, format wants %dx%d",
			ErrConfig, y.Height, y.Width, format.LumaHeight, format.LumaWidth)
	}
	ch, cw := format.ChromaDims()
	if c1.Height != ch || c1.Width != cw {
		return nil, fmt.Errorf("%w: c1 plane is %dx%d, format wants %dx%d",
			ErrConfig, c1.Height, c1.Width, ch, cw)
	}
	if c2.Height != ch || c2.Width != cw {
		return nil, fmt.Errorf("%w: c2 plane is %dx%d, format wants %dx%d",
			ErrConfig, c2.Height, c2.Width, ch, cw)
	}
	return &Picture{Format: format, y: y, c1: c1, c2: c2}, nil
}

// NewBlankPicture allocates zeroed Y/C1/C2 planes sized per format.
func NewBlankPicture(format PictureFormat) *Picture {
	ch, cw := format.ChromaDims()
	return &Picture{
		Format: format,
		y:      NewPlane(format.LumaHeight, format.LumaWidth),
		c1:     NewPlane(ch, cw),
		c2:     NewPlane(ch, cw),
	}
}

func (p *Picture) Y() *Plane  { return p.y }
func (p *Picture) C1() *Plane { return p.c1 }
func (p *Picture) C2() *Plane { return p.c2 }

// Planes returns the three planes in (Y, C1, C2) order, useful for
// code that treats all three components identically (padding,
// transform, quantisation).
func (p *Picture) Planes() [3]*Plane {
	return [3]*Plane{p.y, p.c1, p.c2}
}
