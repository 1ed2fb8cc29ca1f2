package vc2

import "fmt"

// Profile identifies the VC-2 profile a sequence is coded with.
type Profile int

const (
	ProfileUnknown Profile = iota
	ProfileLD
	ProfileHQ
)

func (p Profile) String() string {
	switch p {
	case ProfileLD:
		return "LD"
	case ProfileHQ:
		return "HQ"
	default:
		return "unknown"
	}
}

// wireProfile maps a Profile to its coded value: low delay is 0, high
// quality is 3.
func wireProfile(p Profile) uint32 {
	if p == ProfileHQ {
		return 3
	}
	return 0
}

func profileFromWire(v uint32) Profile {
	switch v {
	case 0:
		return ProfileLD
	case 3:
		return ProfileHQ
	default:
		return ProfileUnknown
	}
}

// VideoFormat is the decoded picture geometry and timing a sequence
// header describes, per §4.F: frame dimensions, chroma sampling,
// interlace, frame rate and sample bit depth.
type VideoFormat struct {
	FrameWidth, FrameHeight int
	ChromaFormat            ChromaFormat
	Interlaced              bool
	TopFieldFirst           bool
	FrameRateNumer          int
	FrameRateDenom          int
	BitDepth                int
}

// baseVideoFormat is one row of the base_video_format table: a
// complete VideoFormat a sequence header can select by index alone,
// with every field implied rather than explicitly coded, plus the
// conformance level that preset belongs to.
type baseVideoFormat struct {
	index  uint32
	level  int
	format VideoFormat
}

// baseVideoFormats is the §6 base_video_format table verbatim: index,
// resolution, chroma sampling, interlace, frame rate and bit depth.
// TopFieldFirst is set for every interlaced preset per the reference's
// default scan order; it has no coded representation of its own.
var baseVideoFormats = []baseVideoFormat{
	{0, 0, VideoFormat{FrameWidth: 640, FrameHeight: 480, ChromaFormat: Chroma420, FrameRateNumer: 24000, FrameRateDenom: 1001, BitDepth: 8}},
	{1, 1, VideoFormat{FrameWidth: 176, FrameHeight: 120, ChromaFormat: Chroma420, FrameRateNumer: 15000, FrameRateDenom: 1001, BitDepth: 8}},
	{2, 1, VideoFormat{FrameWidth: 176, FrameHeight: 144, ChromaFormat: Chroma420, FrameRateNumer: 25, FrameRateDenom: 2, BitDepth: 8}},
	{3, 1, VideoFormat{FrameWidth: 352, FrameHeight: 240, ChromaFormat: Chroma420, FrameRateNumer: 15000, FrameRateDenom: 1001, BitDepth: 8}},
	{4, 1, VideoFormat{FrameWidth: 352, FrameHeight: 288, ChromaFormat: Chroma420, FrameRateNumer: 25, FrameRateDenom: 2, BitDepth: 8}},
	{5, 1, VideoFormat{FrameWidth: 704, FrameHeight: 480, ChromaFormat: Chroma420, FrameRateNumer: 15000, FrameRateDenom: 1001, BitDepth: 8}},
	{6, 1, VideoFormat{FrameWidth: 704, FrameHeight: 576, ChromaFormat: Chroma420, FrameRateNumer: 25, FrameRateDenom: 2, BitDepth: 8}},
	{7, 2, VideoFormat{FrameWidth: 720, FrameHeight: 480, Interlaced: true, TopFieldFirst: true, ChromaFormat: Chroma422, FrameRateNumer: 30000, FrameRateDenom: 1001, BitDepth: 10}},
	{8, 2, VideoFormat{FrameWidth: 720, FrameHeight: 576, Interlaced: true, TopFieldFirst: true, ChromaFormat: Chroma422, FrameRateNumer: 25, FrameRateDenom: 1, BitDepth: 10}},
	{9, 3, VideoFormat{FrameWidth: 1280, FrameHeight: 720, ChromaFormat: Chroma422, FrameRateNumer: 60000, FrameRateDenom: 1001, BitDepth: 10}},
	{10, 3, VideoFormat{FrameWidth: 1280, FrameHeight: 720, ChromaFormat: Chroma422, FrameRateNumer: 50, FrameRateDenom: 1, BitDepth: 10}},
	{11, 3, VideoFormat{FrameWidth: 1920, FrameHeight: 1080, Interlaced: true, TopFieldFirst: true, ChromaFormat: Chroma422, FrameRateNumer: 30000, FrameRateDenom: 1001, BitDepth: 10}},
	{12, 3, VideoFormat{FrameWidth: 1920, FrameHeight: 1080, Interlaced: true, TopFieldFirst: true, ChromaFormat: Chroma422, FrameRateNumer: 25, FrameRateDenom: 1, BitDepth: 10}},
	{13, 3, VideoFormat{FrameWidth: 1920, FrameHeight: 1080, ChromaFormat: Chroma422, FrameRateNumer: 60000, FrameRateDenom: 1001, BitDepth: 10}},
	{14, 3, VideoFormat{FrameWidth: 1920, FrameHeight: 1080, ChromaFormat: Chroma422, FrameRateNumer: 50, FrameRateDenom: 1, BitDepth: 10}},
	{15, 4, VideoFormat{FrameWidth: 2048, FrameHeight: 1080, ChromaFormat: Chroma444, FrameRateNumer: 24, FrameRateDenom: 1, BitDepth: 12}},
	{16, 5, VideoFormat{FrameWidth: 4096, FrameHeight: 2160, ChromaFormat: Chroma444, FrameRateNumer: 24, FrameRateDenom: 1, BitDepth: 12}},
	{17, 6, VideoFormat{FrameWidth: 3840, FrameHeight: 2160, ChromaFormat: Chroma422, FrameRateNumer: 60000, FrameRateDenom: 1001, BitDepth: 10}},
	{18, 6, VideoFormat{FrameWidth: 3840, FrameHeight: 2160, ChromaFormat: Chroma422, FrameRateNumer: 50, FrameRateDenom: 1, BitDepth: 10}},
	{19, 7, VideoFormat{FrameWidth: 7680, FrameHeight: 4320, ChromaFormat: Chroma422, FrameRateNumer: 60000, FrameRateDenom: 1001, BitDepth: 10}},
	{20, 7, VideoFormat{FrameWidth: 7680, FrameHeight: 4320, ChromaFormat: Chroma422, FrameRateNumer: 50, FrameRateDenom: 1, BitDepth: 10}},
	{21, 3, VideoFormat{FrameWidth: 1920, FrameHeight: 1080, ChromaFormat: Chroma422, FrameRateNumer: 24000, FrameRateDenom: 1001, BitDepth: 10}},
	{22, 2, VideoFormat{FrameWidth: 720, FrameHeight: 486, Interlaced: true, TopFieldFirst: true, ChromaFormat: Chroma422, FrameRateNumer: 30000, FrameRateDenom: 1001, BitDepth: 10}},
}

// frameRates is the §6 frame-rate index table: VLC index 1..11 selects
// a (numerator, denominator) pair without coding either explicitly.
// There is no custom-rate escape; a rate outside this table cannot be
// put on the wire.
var frameRates = [][2]int{
	{24000, 1001}, {24, 1}, {25, 1}, {30000, 1001}, {30, 1},
	{50, 1}, {60000, 1001}, {60, 1}, {15000, 1001}, {25, 2}, {48, 1},
}

func frameRateIndex(numer, denom int) int {
	for i, r := range frameRates {
		if r[0] == numer && r[1] == denom {
			return i + 1
		}
	}
	return 0
}

// bitdepthCode maps a sample bit depth to its coded signal-range index
// and back. Only the depths the base_video_format table uses are
// representable.
func bitdepthCode(depth int) (uint32, bool) {
	switch depth {
	case 8:
		return 1, true
	case 10:
		return 3, true
	case 12:
		return 4, true
	default:
		return 0, false
	}
}

func bitdepthFromCode(code uint32) (int, bool) {
	switch code {
	case 1, 2:
		return 8, true
	case 3:
		return 10, true
	case 4:
		return 12, true
	default:
		return 0, false
	}
}

// chromaIndex maps a ChromaFormat to the coded colour-difference
// sampling index: 0 = 4:4:4, 1 = 4:2:2, 2 = 4:2:0. RGB pictures use
// full-resolution (4:4:4) sampling.
func chromaIndex(c ChromaFormat) uint32 {
	switch c {
	case Chroma422:
		return 1
	case Chroma420:
		return 2
	default:
		return 0
	}
}

func chromaFromIndex(v uint32) (ChromaFormat, bool) {
	switch v {
	case 0:
		return Chroma444, true
	case 1:
		return Chroma422, true
	case 2:
		return Chroma420, true
	default:
		return 0, false
	}
}

func lookupBaseVideoFormat(index uint32) (baseVideoFormat, bool) {
	for _, b := range baseVideoFormats {
		if b.index == index {
			return b, true
		}
	}
	return baseVideoFormat{}, false
}

// sameCoreFormat reports whether two formats agree on everything the
// preset table indexes except scan order; TopFieldFirst is never on
// the wire at all.
func sameCoreFormat(a, b VideoFormat) bool {
	return a.FrameWidth == b.FrameWidth &&
		a.FrameHeight == b.FrameHeight &&
		a.ChromaFormat == b.ChromaFormat &&
		a.FrameRateNumer == b.FrameRateNumer &&
		a.FrameRateDenom == b.FrameRateDenom &&
		a.BitDepth == b.BitDepth
}

// bestBaseVideoFormat finds the preset to code vf against: an exact
// match including scan order first, then one differing only in scan
// order (coded with the custom scan format flag), then index 0 with
// every mismatched field coded as a custom override.
func bestBaseVideoFormat(vf VideoFormat) baseVideoFormat {
	for _, b := range baseVideoFormats {
		if b.index != 0 && sameCoreFormat(b.format, vf) && b.format.Interlaced == vf.Interlaced {
			return b
		}
	}
	for _, b := range baseVideoFormats {
		if b.index != 0 && sameCoreFormat(b.format, vf) {
			return b
		}
	}
	base, _ := lookupBaseVideoFormat(0)
	return base
}

// SequenceHeader is the data unit that opens a VC-2 sequence (and may
// recur before any picture whose format changes), carrying the
// version/profile/level triple and the video format every following
// picture shares until the next sequence header. Level is derived from
// the preset the format codes against, never chosen by a caller.
type SequenceHeader struct {
	VersionMajor int
	VersionMinor int
	Profile      Profile
	Level        int
	Format       VideoFormat
}

// encodeSequenceHeader serialises h in the §4.F layout: version,
// profile, level and base_video_format as VLC, then the per-field
// custom override flags, then the picture coding mode, byte-aligned.
// The reference never emits the colour-difference, pixel-aspect,
// clean-area or colour-spec overrides; of those, the colour-difference
// index is emitted here when the format demands it, since nothing else
// on the wire carries chroma sampling and a decoder has no side
// channel to learn it from.
func encodeSequenceHeader(h SequenceHeader) ([]byte, error) {
	base := bestBaseVideoFormat(h.Format)
	defaults := base.format

	w := newBitWriter()
	writeUnsignedVLC(w, uint32(h.VersionMajor))
	writeUnsignedVLC(w, uint32(h.VersionMinor))
	writeUnsignedVLC(w, wireProfile(h.Profile))
	writeUnsignedVLC(w, uint32(base.level))
	writeUnsignedVLC(w, base.index)

	customDims := h.Format.FrameWidth != defaults.FrameWidth || h.Format.FrameHeight != defaults.FrameHeight
	w.WriteBool(customDims)
	if customDims {
		writeUnsignedVLC(w, uint32(h.Format.FrameWidth))
		writeUnsignedVLC(w, uint32(h.Format.FrameHeight))
	}

	customChroma := chromaIndex(h.Format.ChromaFormat) != chromaIndex(defaults.ChromaFormat)
	w.WriteBool(customChroma)
	if customChroma {
		writeUnsignedVLC(w, chromaIndex(h.Format.ChromaFormat))
	}

	customScan := h.Format.Interlaced != defaults.Interlaced
	w.WriteBool(customScan)
	if customScan {
		sourceSampling := uint32(0)
		if h.Format.Interlaced {
			sourceSampling = 1
		}
		writeUnsignedVLC(w, sourceSampling)
	}

	customRate := h.Format.FrameRateNumer != defaults.FrameRateNumer || h.Format.FrameRateDenom != defaults.FrameRateDenom
	w.WriteBool(customRate)
	if customRate {
		idx := frameRateIndex(h.Format.FrameRateNumer, h.Format.FrameRateDenom)
		if idx == 0 {
			return nil, fmt.Errorf("%w: frame rate %d/%d has no coded index",
				ErrConfig, h.Format.FrameRateNumer, h.Format.FrameRateDenom)
		}
		writeUnsignedVLC(w, uint32(idx))
	}

	w.WriteBool(false) // custom_pixel_aspect_ratio_flag
	w.WriteBool(false) // custom_clean_area_flag

	customDepth := h.Format.BitDepth != defaults.BitDepth
	w.WriteBool(customDepth)
	if customDepth {
		code, ok := bitdepthCode(h.Format.BitDepth)
		if !ok {
			return nil, fmt.Errorf("%w: bit depth %d has no coded signal range", ErrConfig, h.Format.BitDepth)
		}
		writeUnsignedVLC(w, code)
	}

	w.WriteBool(false) // custom_color_spec_flag

	pictureCodingMode := uint32(0)
	if h.Format.Interlaced {
		pictureCodingMode = 1
	}
	writeUnsignedVLC(w, pictureCodingMode)

	w.Align()
	return w.Bytes(), nil
}

func decodeSequenceHeader(data []byte) (SequenceHeader, error) {
	r := newBitReader(data)
	major, err := readUnsignedVLC(r)
	if err != nil {
		return SequenceHeader{}, err
	}
	minor, err := readUnsignedVLC(r)
	if err != nil {
		return SequenceHeader{}, err
	}
	profile, err := readUnsignedVLC(r)
	if err != nil {
		return SequenceHeader{}, err
	}
	level, err := readUnsignedVLC(r)
	if err != nil {
		return SequenceHeader{}, err
	}
	baseIndex, err := readUnsignedVLC(r)
	if err != nil {
		return SequenceHeader{}, err
	}
	base, ok := lookupBaseVideoFormat(baseIndex)
	if !ok {
		return SequenceHeader{}, fmt.Errorf("%w: unknown base_video_format %d", ErrMalformedStream, baseIndex)
	}
	vf := base.format

	customDims, err := r.ReadBool()
	if err != nil {
		return SequenceHeader{}, err
	}
	if customDims {
		width, werr := readUnsignedVLC(r)
		if werr != nil {
			return SequenceHeader{}, werr
		}
		height, herr := readUnsignedVLC(r)
		if herr != nil {
			return SequenceHeader{}, herr
		}
		vf.FrameWidth, vf.FrameHeight = int(width), int(height)
	}

	customChroma, err := r.ReadBool()
	if err != nil {
		return SequenceHeader{}, err
	}
	if customChroma {
		idx, cerr := readUnsignedVLC(r)
		if cerr != nil {
			return SequenceHeader{}, cerr
		}
		c, cok := chromaFromIndex(idx)
		if !cok {
			return SequenceHeader{}, fmt.Errorf("%w: unknown colour difference format %d", ErrMalformedStream, idx)
		}
		vf.ChromaFormat = c
	}

	customScan, err := r.ReadBool()
	if err != nil {
		return SequenceHeader{}, err
	}
	if customScan {
		sampling, serr := readUnsignedVLC(r)
		if serr != nil {
			return SequenceHeader{}, serr
		}
		vf.Interlaced = sampling != 0
		if !vf.Interlaced {
			vf.TopFieldFirst = false
		}
	}

	customRate, err := r.ReadBool()
	if err != nil {
		return SequenceHeader{}, err
	}
	if customRate {
		idx, ierr := readUnsignedVLC(r)
		if ierr != nil {
			return SequenceHeader{}, ierr
		}
		if idx < 1 || int(idx) > len(frameRates) {
			return SequenceHeader{}, fmt.Errorf("%w: unknown frame rate index %d", ErrMalformedStream, idx)
		}
		vf.FrameRateNumer, vf.FrameRateDenom = frameRates[idx-1][0], frameRates[idx-1][1]
	}

	for _, name := range []string{"pixel aspect ratio", "clean area"} {
		flag, ferr := r.ReadBool()
		if ferr != nil {
			return SequenceHeader{}, ferr
		}
		if flag {
			return SequenceHeader{}, fmt.Errorf("%w: custom %s flag not supported", ErrMalformedStream, name)
		}
	}

	customDepth, err := r.ReadBool()
	if err != nil {
		return SequenceHeader{}, err
	}
	if customDepth {
		code, derr := readUnsignedVLC(r)
		if derr != nil {
			return SequenceHeader{}, derr
		}
		depth, dok := bitdepthFromCode(code)
		if !dok {
			return SequenceHeader{}, fmt.Errorf("%w: unknown signal range code %d", ErrMalformedStream, code)
		}
		vf.BitDepth = depth
	}

	colorSpec, err := r.ReadBool()
	if err != nil {
		return SequenceHeader{}, err
	}
	if colorSpec {
		return SequenceHeader{}, fmt.Errorf("%w: custom colour spec flag not supported", ErrMalformedStream)
	}

	// picture_coding_mode restates the scan structure; the preset and
	// scan-format override are authoritative.
	if _, err := readUnsignedVLC(r); err != nil {
		return SequenceHeader{}, err
	}

	return SequenceHeader{
		VersionMajor: int(major),
		VersionMinor: int(minor),
		Profile:      profileFromWire(profile),
		Level:        int(level),
		Format:       vf,
	}, nil
}
