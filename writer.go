package ogg

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pion/logging"
)

// errSegmentTableOverflow is returned defensively by writePage if a caller
// ever manages to queue more bytes/packets than fit in 255 segments without
// going through the splitting paths in PushPacket/EndLogicalStream. It
// should never occur in normal operation; per spec.md §4.2 step 1, "the
// caller must have split beforehand."
var errSegmentTableOverflow = fmt.Errorf("ogg: segment table would exceed %d entries", MaxSegments)

// streamState is the writer-internal bookkeeping for one live logical
// bitstream (spec.md §3 StreamState).
type streamState struct {
	serial       uint32
	sequence     uint32
	data         []byte // capacity MaxPageDataSize
	dataHead     int
	packetSizes  []int
	terminates   []bool
	segmentCount int
	granule      uint64
	headerType   byte
}

// StreamWriter buffers packets per logical bitstream and emits CRC-validated
// OGG pages to an io.Writer. It is not safe for concurrent use; distinct
// StreamWriters over distinct sinks may run on separate goroutines freely
// (spec.md §5).
type StreamWriter struct {
	w       io.Writer
	streams []*streamState
	pageBuf [MaxPageSize]byte
	log     logging.LeveledLogger
}

// NewStreamWriter creates a StreamWriter that emits pages to w.
func NewStreamWriter(w io.Writer, opts ...WriterOption) *StreamWriter {
	sw := &StreamWriter{w: w}
	for _, opt := range opts {
		opt(sw)
	}
	if sw.log == nil {
		sw.log = logging.NewDefaultLoggerFactory().NewLogger("ogg.writer")
	}
	return sw
}

// IntoInner returns the underlying sink, for symmetry with the reader
// facades' IntoInner (spec.md §6).
func (sw *StreamWriter) IntoInner() io.Writer { return sw.w }

func (sw *StreamWriter) findStream(serial uint32) *streamState {
	for _, st := range sw.streams {
		if st.serial == serial {
			return st
		}
	}
	return nil
}

func (sw *StreamWriter) removeStream(serial uint32) {
	for i, st := range sw.streams {
		if st.serial == serial {
			sw.streams = append(sw.streams[:i], sw.streams[i+1:]...)
			return
		}
	}
}

// BeginLogicalStream registers a new logical bitstream and immediately
// writes its BOS page containing firstPacket.
func (sw *StreamWriter) BeginLogicalStream(serial uint32, firstPacket []byte) error {
	if sw.findStream(serial) != nil {
		return ErrBitstreamAlreadyInitialized
	}
	if needsSplit(len(firstPacket)) {
		return ErrInitialPacketTooBig
	}

	st := &streamState{
		serial: serial,
		data:   make([]byte, 0, MaxPageDataSize),
	}
	st.data = append(st.data, firstPacket...)
	st.dataHead = len(firstPacket)
	st.packetSizes = append(st.packetSizes, len(firstPacket))
	st.terminates = append(st.terminates, true)
	st.segmentCount = segmentsNeeded(len(firstPacket), true)
	st.headerType = HeaderTypeBOS

	sw.streams = append(sw.streams, st)

	if err := sw.writePage(st); err != nil {
		sw.removeStream(serial)
		return err
	}
	st.headerType = 0
	return nil
}

// PushPacket queues packetData for the given logical bitstream, writing one
// or more pages as needed (spec.md §4.2).
func (sw *StreamWriter) PushPacket(serial uint32, packetData []byte, granulePosition uint64) error {
	st := sw.findStream(serial)
	if st == nil {
		return ErrUnknownBitstreamSerialNumber
	}

	if needsSplit(len(packetData)) {
		return sw.writeSplitPacket(st, packetData, granulePosition, 0)
	}

	needed := segmentsNeeded(len(packetData), true)
	if st.dataHead > 0 && (st.dataHead+len(packetData) > MaxPageDataSize || st.segmentCount+needed > MaxSegments) {
		if err := sw.writePage(st); err != nil {
			return err
		}
	}

	st.data = append(st.data[:st.dataHead], packetData...)
	st.dataHead += len(packetData)
	st.packetSizes = append(st.packetSizes, len(packetData))
	st.terminates = append(st.terminates, true)
	st.segmentCount += needed
	st.granule = granulePosition

	if st.dataHead == MaxPageDataSize || st.segmentCount == MaxSegments {
		return sw.writePage(st)
	}
	return nil
}

// EndLogicalStream writes lastPacket as the final packet of the logical
// bitstream, marks the closing page EOS, and forgets the stream.
func (sw *StreamWriter) EndLogicalStream(serial uint32, lastPacket []byte, granulePosition uint64) error {
	st := sw.findStream(serial)
	if st == nil {
		return ErrUnknownBitstreamSerialNumber
	}

	var err error
	if needsSplit(len(lastPacket)) {
		err = sw.writeSplitPacket(st, lastPacket, granulePosition, HeaderTypeEOS)
	} else {
		if st.dataHead > 0 {
			if err = sw.writePage(st); err != nil {
				sw.removeStream(serial)
				return err
			}
		}
		st.data = append(st.data[:0], lastPacket...)
		st.dataHead = len(lastPacket)
		st.packetSizes = append(st.packetSizes[:0], len(lastPacket))
		st.terminates = append(st.terminates[:0], true)
		st.segmentCount = segmentsNeeded(len(lastPacket), true)
		st.granule = granulePosition
		st.headerType |= HeaderTypeEOS
		err = sw.writePage(st)
	}

	sw.removeStream(serial)
	return err
}

// Flush writes the current buffered page for serial if it is non-empty; it
// is a no-op otherwise (spec.md §9 "Open question — flush semantics").
func (sw *StreamWriter) Flush(serial uint32) error {
	st := sw.findStream(serial)
	if st == nil {
		return ErrUnknownBitstreamSerialNumber
	}
	if st.dataHead == 0 {
		return nil
	}
	return sw.writePage(st)
}

// PageIsEmpty reports whether serial's current page buffer has zero queued
// bytes.
func (sw *StreamWriter) PageIsEmpty(serial uint32) (bool, error) {
	st := sw.findStream(serial)
	if st == nil {
		return false, ErrUnknownBitstreamSerialNumber
	}
	return st.dataHead == 0, nil
}

// writeSplitPacket splits data across multiple pages, because a single page
// cannot hold it as one packet (spec.md §4.2 step 1). Every page but the
// first is tagged continuation, including the final one: the continuation
// bit marks whether a page's first packet continues the previous page, not
// whether more pages follow (RFC 3533/libogg), so it must stay set on the
// closing page of a split packet just as on every page in between. Only
// the last page terminates the packet and carries granulePosition and
// finalExtraFlags (used by EndLogicalStream to set HeaderTypeEOS on the
// closing page of a split final packet); every other page carries the
// no-granule sentinel, keyed off this splitting decision rather than an
// emitted segment count of 255, per spec.md §9.
//
// Every non-terminating chunk is a full page of MaxPageDataSize bytes, an
// exact multiple of 255 as segmentsNeeded requires (it counts such a
// chunk's lacing entries as size/255 with no remainder lace), and the
// terminating chunk holds the rest. When data's length is itself a
// multiple of MaxPageDataSize, that rest would be a full page needing one
// lacing entry more than MaxSegments allows, so the last full chunk hands
// its final 255 bytes to the terminating chunk instead.
func (sw *StreamWriter) writeSplitPacket(st *streamState, data []byte, granulePosition uint64, finalExtraFlags byte) error {
	if st.dataHead > 0 {
		if err := sw.writePage(st); err != nil {
			return err
		}
	}

	nonFinalTotal := len(data) / MaxPageDataSize * MaxPageDataSize
	if nonFinalTotal == len(data) {
		nonFinalTotal -= 255
	}

	var chunks [][]byte
	for offset := 0; offset < nonFinalTotal; {
		end := offset + MaxPageDataSize
		if end > nonFinalTotal {
			end = nonFinalTotal
		}
		chunks = append(chunks, data[offset:end])
		offset = end
	}
	chunks = append(chunks, data[nonFinalTotal:])

	for i, chunk := range chunks {
		isFinal := i == len(chunks)-1

		if i > 0 {
			st.headerType |= HeaderTypeContinuation
		} else {
			st.headerType &^= HeaderTypeContinuation
		}
		if isFinal {
			st.headerType |= finalExtraFlags
			st.granule = granulePosition
		} else {
			st.granule = NoGranulePosition
		}

		st.data = append(st.data[:0], chunk...)
		st.dataHead = len(chunk)
		st.packetSizes = append(st.packetSizes[:0], len(chunk))
		st.terminates = append(st.terminates[:0], isFinal)
		st.segmentCount = segmentsNeeded(len(chunk), isFinal)

		if err := sw.writePage(st); err != nil {
			return err
		}
	}
	// Leave the stream's header type clean of the continuation bit once the
	// split packet's run of pages is done, so the next, unrelated packet
	// does not inherit it.
	st.headerType &^= HeaderTypeContinuation
	return nil
}

// segmentsNeeded returns how many lacing-table entries a packet of the
// given size requires. A terminating packet always needs one more entry
// than its full 255-byte runs (even when size is an exact multiple of 255,
// per the lacing rule in spec.md §3); a non-terminating (continuation)
// chunk needs exactly size/255 entries and no terminator.
func segmentsNeeded(size int, terminates bool) int {
	full := size / 255
	if terminates {
		return full + 1
	}
	return full
}

// needsSplit reports whether a packet of the given size cannot be written
// as a single page's sole, terminating packet because its lacing entries
// would exceed MaxSegments. That is the case for every size of
// MaxPageDataSize bytes or more, including exactly MaxPageDataSize, which
// would fit the page's data capacity but needs one terminator entry too
// many.
func needsSplit(size int) bool {
	return segmentsNeeded(size, true) > MaxSegments
}

// buildSegmentTable lays out the lacing values for a set of queued packets.
func buildSegmentTable(sizes []int, terminates []bool) ([]byte, error) {
	table := make([]byte, 0, MaxSegments)
	for i, s := range sizes {
		full := s / 255
		for j := 0; j < full; j++ {
			table = append(table, 255)
		}
		if terminates[i] {
			table = append(table, byte(s%255))
		}
	}
	if len(table) > MaxSegments {
		return nil, errSegmentTableOverflow
	}
	return table, nil
}

// writePage assembles, CRC-stamps and writes the page currently buffered in
// st, then resets st's buffer for the next page (spec.md §4.2 "Page
// emission algorithm").
func (sw *StreamWriter) writePage(st *streamState) error {
	segTable, err := buildSegmentTable(st.packetSizes, st.terminates)
	if err != nil {
		return err
	}

	pageLen := HeaderBaseSize + len(segTable) + st.dataHead
	buf := sw.pageBuf[:pageLen]

	encodePageHeader(buf, pageHeaderFields{
		version:    StreamStructureVersion,
		headerType: st.headerType,
		granule:    st.granule,
		serial:     st.serial,
		sequence:   st.sequence,
		crc:        0,
		segments:   uint8(len(segTable)),
	})
	copy(buf[HeaderBaseSize:], segTable)
	copy(buf[HeaderBaseSize+len(segTable):], st.data[:st.dataHead])

	zeroCRCField(buf)
	crc := crc32(buf)
	binary.LittleEndian.PutUint32(buf[offsetCRC:], crc)

	if _, err := sw.w.Write(buf); err != nil {
		return err
	}

	sw.log.Tracef("wrote page: serial=%d sequence=%d type=%#x segments=%d bytes=%d",
		st.serial, st.sequence, st.headerType, len(segTable), st.dataHead)

	st.dataHead = 0
	st.packetSizes = st.packetSizes[:0]
	st.terminates = st.terminates[:0]
	st.segmentCount = 0
	st.sequence++
	return nil
}
