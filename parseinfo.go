package vc2

import "fmt"

// parseInfoSyncPrefix is the 4-byte magic every parse-info unit in a
// VC-2 sequence begins with, per §4.F.
var parseInfoSyncPrefix = [4]byte{0x42, 0x42, 0x43, 0x44}

// parseCode identifies the kind of data unit a parse-info header
// introduces.
type parseCode byte

const (
	parseCodeSequenceHeader parseCode = 0x00
	parseCodeEndOfSequence  parseCode = 0x10
	parseCodeAuxiliary      parseCode = 0x20
	parseCodePadding        parseCode = 0x30
	parseCodeLDPicture      parseCode = 0xC8
	parseCodeHQPicture      parseCode = 0xE8
)

func (c parseCode) isPicture() bool {
	return c == parseCodeLDPicture || c == parseCodeHQPicture
}

// parseInfoLen is the fixed size in bytes of a parse-info unit: 4
// sync bytes, 1 parse-code byte, and two 4-byte offsets.
const parseInfoLen = 13

// parseInfo is the 13-byte header VC-2 prefixes to every data unit in
// a sequence, per §4.F. nextOffset/prevOffset chain parse-info units
// together for random access and backward scanning. nextOffset is the
// byte distance from this unit's sync prefix to the next unit's (13
// plus the payload length) and is 0 on the end-of-sequence unit;
// prevOffset repeats the previous parse-info's nextOffset and is 0 on
// the first unit of a sequence.
type parseInfo struct {
	code       parseCode
	nextOffset uint32
	prevOffset uint32
}

func (p parseInfo) encode() []byte {
	buf := make([]byte, parseInfoLen)
	copy(buf[0:4], parseInfoSyncPrefix[:])
	buf[4] = byte(p.code)
	putUint32BE(buf[5:9], p.nextOffset)
	putUint32BE(buf[9:13], p.prevOffset)
	return buf
}

func decodeParseInfo(buf []byte) (parseInfo, error) {
	if len(buf) < parseInfoLen {
		return parseInfo{}, ErrMalformedStream
	}
	if [4]byte(buf[0:4]) != parseInfoSyncPrefix {
		return parseInfo{}, fmt.Errorf("%w: bad parse-info sync prefix", ErrMalformedStream)
	}
	return parseInfo{
		code:       parseCode(buf[4]),
		nextOffset: getUint32BE(buf[5:9]),
		prevOffset: getUint32BE(buf[9:13]),
	}, nil
}

// synchronise scans data starting at pos for the next parse-info sync
// prefix, mirroring the byte-scanning recovery loop a VC-2 decoder
// uses to resume after corrupted or missing data: instead of trusting
// the previous unit's nextOffset, it searches byte-by-byte for
// 0x42 0x42 0x43 0x44 and returns its index.
func synchronise(data []byte, pos int) (int, bool) {
	for i := pos; i+4 <= len(data); i++ {
		if data[i] == parseInfoSyncPrefix[0] &&
			data[i+1] == parseInfoSyncPrefix[1] &&
			data[i+2] == parseInfoSyncPrefix[2] &&
			data[i+3] == parseInfoSyncPrefix[3] {
			return i, true
		}
	}
	return 0, false
}
