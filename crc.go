package ogg

// OGG's CRC-32 is not the familiar zlib/IEEE CRC-32: it uses polynomial
// 0x04C11DB7, MSB-first, with no bit reflection on input or output, a zero
// initial value, and no final XOR. The table below and the computation in
// crc32 mirror the construction used throughout the retrieved pack (e.g.
// the Ogg writers in karamble-braibot and rubiojr-lunartlk, both of which
// in turn cite pion/webrtc's oggwriter as their source for this table).
const crcPolynomial uint32 = 0x04c11db7

var crcTable = buildCRCTable()

func buildCRCTable() [256]uint32 {
	var table [256]uint32
	for i := range table {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = (r << 1) ^ crcPolynomial
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return table
}

// crc32 computes the OGG CRC-32 checksum of data. Callers must zero the
// page's CRC field before calling this, per the invariant in spec.md §3.
func crc32(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}
