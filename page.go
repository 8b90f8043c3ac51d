package ogg

import "encoding/binary"

// pageHeaderFields holds the decoded fixed-header fields of a page. It is
// shared by the writer (to assemble a header) and the reader (to decode
// one), so the byte layout lives in exactly one place.
type pageHeaderFields struct {
	version    uint8
	headerType uint8
	granule    uint64
	serial     uint32
	sequence   uint32
	crc        uint32
	segments   uint8
}

// encodePageHeader writes h's fields into buf[0:HeaderBaseSize]. buf must be
// at least HeaderBaseSize bytes long. The segment table is written
// separately by the caller, immediately following the fixed header.
func encodePageHeader(buf []byte, h pageHeaderFields) {
	copy(buf[offsetCapturePattern:], capturePattern[:])
	buf[offsetVersion] = h.version
	buf[offsetHeaderType] = h.headerType
	binary.LittleEndian.PutUint64(buf[offsetGranulePos:], h.granule)
	binary.LittleEndian.PutUint32(buf[offsetSerial:], h.serial)
	binary.LittleEndian.PutUint32(buf[offsetSequence:], h.sequence)
	binary.LittleEndian.PutUint32(buf[offsetCRC:], h.crc)
	buf[segmentCountIndex] = h.segments
}

// decodePageHeader reads the fixed header fields out of buf[0:HeaderBaseSize].
// It does not check the capture pattern; callers are expected to have
// already synced to it.
func decodePageHeader(buf []byte) pageHeaderFields {
	return pageHeaderFields{
		version:    buf[offsetVersion],
		headerType: buf[offsetHeaderType],
		granule:    binary.LittleEndian.Uint64(buf[offsetGranulePos:]),
		serial:     binary.LittleEndian.Uint32(buf[offsetSerial:]),
		sequence:   binary.LittleEndian.Uint32(buf[offsetSequence:]),
		crc:        binary.LittleEndian.Uint32(buf[offsetCRC:]),
		segments:   buf[segmentCountIndex],
	}
}

// zeroCRCField zeros the 4 CRC bytes of a page buffer in place, as required
// before computing or verifying the page's CRC-32 (spec.md §3 invariant 6).
func zeroCRCField(buf []byte) {
	buf[offsetCRC] = 0
	buf[offsetCRC+1] = 0
	buf[offsetCRC+2] = 0
	buf[offsetCRC+3] = 0
}
