package vc2

import "encoding/binary"

// putUint32BE and getUint32BE back the byte-oriented framing fields of
// §4.F (parse-info next/prev offsets) that live outside any
// bit-packed data unit payload.

func putUint32BE(buf []byte, v uint32) {
	binary.BigEndian.PutUint32(buf, v)
}

func getUint32BE(buf []byte) uint32 {
	return binary.BigEndian.Uint32(buf)
}
