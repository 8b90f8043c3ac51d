package ogg

// Package-wide constants describing the on-wire OGG page layout (RFC 3533
// §6). Offsets are byte offsets from the start of a page.
const (
	// HeaderBaseSize is the size of the fixed portion of a page header,
	// before the variable-length segment table.
	HeaderBaseSize = 27

	// MaxSegments is the largest number of lacing values a segment table
	// may carry; it is also the largest lacing value (255 means "more
	// follows").
	MaxSegments = 255

	// MaxPageDataSize is the largest payload a single page can carry:
	// 255 segments of 255 bytes each.
	MaxPageDataSize = MaxSegments * MaxSegments // 65025

	// MaxPageHeaderSize is the largest a page header (fixed part plus a
	// full segment table) can be.
	MaxPageHeaderSize = HeaderBaseSize + MaxSegments // 282

	// MaxPageSize is the largest a single page can be on the wire.
	MaxPageSize = MaxPageHeaderSize + MaxPageDataSize // 65307

	segmentCountIndex = 26
)

// Byte offsets of the fixed header fields.
const (
	offsetCapturePattern = 0
	offsetVersion        = 4
	offsetHeaderType     = 5
	offsetGranulePos     = 6
	offsetSerial         = 14
	offsetSequence       = 18
	offsetCRC            = 22
)

// Header type flag bits (byte offset 5).
const (
	HeaderTypeContinuation byte = 1 << 0
	HeaderTypeBOS          byte = 1 << 1
	HeaderTypeEOS          byte = 1 << 2
)

// StreamStructureVersion is the only version this engine understands.
const StreamStructureVersion = 0

// NoGranulePosition is the sentinel granule position meaning "no granule
// info on this page" (all bits set).
const NoGranulePosition uint64 = ^uint64(0)

// capturePattern is the 4-byte magic "OggS" that starts every page.
var capturePattern = [4]byte{'O', 'g', 'g', 'S'}
