package ogg

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/pion/logging"
)

// pendingPacket is the partial data of a packet whose terminating lace has
// not yet appeared, because a continuation page is still expected.
type pendingPacket struct {
	data []byte
	bos  bool
}

// run is one reconstructed lace-run from a page's segment table: either a
// complete packet body (terminates true) or the leading chunk of a packet
// that continues onto the next page (terminates false).
type run struct {
	data       []byte
	terminates bool
}

// BitStreamReader decodes a byte stream of OGG pages into packets,
// stitching packets that span multiple pages back together and skipping
// over recoverable corruption (spec.md §7).
type BitStreamReader struct {
	src io.Reader
	br  *bufio.Reader
	log logging.LeveledLogger

	pending      map[uint32]*pendingPacket
	lastSequence map[uint32]uint32

	ready []Packet

	header [MaxPageHeaderSize]byte
	page   []byte // reusable full-page buffer (header + segment table + payload)
}

// NewBitStreamReader creates a BitStreamReader over r.
func NewBitStreamReader(r io.Reader, opts ...ReaderOption) *BitStreamReader {
	br := &BitStreamReader{
		src:          r,
		br:           bufio.NewReaderSize(r, MaxPageSize),
		pending:      make(map[uint32]*pendingPacket),
		lastSequence: make(map[uint32]uint32),
	}
	for _, opt := range opts {
		opt(br)
	}
	if br.log == nil {
		br.log = logging.NewDefaultLoggerFactory().NewLogger("ogg.reader")
	}
	return br
}

// IntoInner returns the underlying source, for symmetry with
// StreamWriter.IntoInner.
func (r *BitStreamReader) IntoInner() io.Reader { return r.src }

// NextPacket returns the next reconstructed packet. A StatusMissing result
// with a nil error means a page or part of one was dropped (bad CRC or
// orphaned continuation); callers should call NextPacket again to keep
// reading. A StatusEOF result means the underlying reader ran out of
// input, between pages or partway through one.
func (r *BitStreamReader) NextPacket() (*Packet, ReadStatus, error) {
	if len(r.ready) > 0 {
		pkt := r.ready[0]
		r.ready = r.ready[1:]
		return &pkt, StatusOK, nil
	}

	for {
		status, err := r.readNextPage()
		if err != nil {
			return nil, StatusMissing, err
		}
		switch status {
		case StatusEOF:
			return nil, StatusEOF, io.EOF
		case StatusMissing:
			return nil, StatusMissing, nil
		}
		if len(r.ready) > 0 {
			pkt := r.ready[0]
			r.ready = r.ready[1:]
			return &pkt, StatusOK, nil
		}
		// Page only opened or extended a pending buffer; read another page.
	}
}

// readNextPage syncs to, decodes, and processes one page, appending any
// completed packets to r.ready.
func (r *BitStreamReader) readNextPage() (ReadStatus, error) {
	synced, err := r.syncWithNextPage()
	if err != nil {
		return StatusMissing, err
	}
	if !synced {
		return StatusEOF, nil
	}

	copy(r.header[0:4], capturePattern[:])
	if _, err := io.ReadFull(r.br, r.header[4:HeaderBaseSize]); err != nil {
		return statusForReadErr(err)
	}

	segmentCount := int(r.header[segmentCountIndex])
	segTable := make([]byte, segmentCount)
	if segmentCount > 0 {
		if _, err := io.ReadFull(r.br, segTable); err != nil {
			return statusForReadErr(err)
		}
	}

	payloadLen := 0
	for _, s := range segTable {
		payloadLen += int(s)
	}

	pageLen := HeaderBaseSize + segmentCount + payloadLen
	if cap(r.page) < pageLen {
		r.page = make([]byte, pageLen)
	}
	r.page = r.page[:pageLen]
	copy(r.page[0:HeaderBaseSize], r.header[0:HeaderBaseSize])
	copy(r.page[HeaderBaseSize:], segTable)
	if payloadLen > 0 {
		if _, err := io.ReadFull(r.br, r.page[HeaderBaseSize+segmentCount:]); err != nil {
			return statusForReadErr(err)
		}
	}

	storedCRC := binary.LittleEndian.Uint32(r.page[offsetCRC:])
	zeroCRCField(r.page)
	computed := crc32(r.page)
	if storedCRC != computed {
		// A mismatched CRC is recoverable corruption (spec.md §4.3 step 4):
		// besides dropping this page, any partial packet this serial was
		// mid-assembling is now missing its next piece and must be
		// discarded rather than silently stitched onto whatever page shows
		// up next.
		serial := binary.LittleEndian.Uint32(r.page[offsetSerial:])
		delete(r.pending, serial)
		delete(r.lastSequence, serial)
		r.log.Debugf("ogg: dropping page: %s", ErrBadCRC{Found: storedCRC, Expected: computed})
		return StatusMissing, nil
	}

	h := decodePageHeader(r.page)
	if h.version != StreamStructureVersion {
		return StatusMissing, ErrUnhandledBitstreamVersion{Version: h.version}
	}

	if last, ok := r.lastSequence[h.serial]; ok && h.sequence != last+1 {
		// A gap means at least one page for this serial went missing
		// in between; whatever was pending for it can no longer be
		// completed correctly, so drop it rather than stitch this page
		// onto unrelated data (spec.md §4.3 step 7).
		r.log.Tracef("ogg: sequence gap for serial %d: expected %d, got %d", h.serial, last+1, h.sequence)
		delete(r.pending, h.serial)
	}
	r.lastSequence[h.serial] = h.sequence

	payload := r.page[HeaderBaseSize+segmentCount:]
	runs := decodeRuns(segTable, payload)
	if r.processRuns(h, runs) {
		return StatusMissing, nil
	}
	return StatusOK, nil
}

// statusForReadErr maps a failed read of the page body: running out of
// input, even partway through a page, is a clean StatusEOF; any other error
// is returned to the caller.
func statusForReadErr(err error) (ReadStatus, error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return StatusEOF, nil
	}
	return StatusMissing, err
}

// decodeRuns turns a segment table and its payload into packet-shaped runs.
func decodeRuns(segTable []byte, payload []byte) []run {
	var runs []run
	offset := 0
	curLen := 0
	for _, s := range segTable {
		curLen += int(s)
		if s < 255 {
			runs = append(runs, run{data: payload[offset : offset+curLen], terminates: true})
			offset += curLen
			curLen = 0
		}
	}
	if curLen > 0 {
		runs = append(runs, run{data: payload[offset : offset+curLen], terminates: false})
	}
	return runs
}

// processRuns stitches a page's runs onto pending continuation buffers and
// appends every completed packet to r.ready. It reports whether the page's
// first run was dropped as an orphaned continuation.
func (r *BitStreamReader) processRuns(h pageHeaderFields, runs []run) bool {
	start := 0
	continued := false
	dropped := false

	if h.headerType&HeaderTypeContinuation != 0 {
		if pend, ok := r.pending[h.serial]; ok && len(runs) > 0 {
			pend.data = append(pend.data, runs[0].data...)
			continued = true
			start = 1
			if runs[0].terminates {
				delete(r.pending, h.serial)
				r.ready = append(r.ready, Packet{
					data:    pend.data,
					serial:  h.serial,
					granule: h.granule,
					bos:     pend.bos,
					eos:     h.headerType&HeaderTypeEOS != 0 && len(runs) == 1,
				})
			}
		} else if ok {
			// Orphaned pending buffer: the expected continuation never
			// arrived correctly shaped. Discard it and fall through to
			// treat this page's runs as fresh packets.
			delete(r.pending, h.serial)
		} else if len(runs) > 0 {
			// Nothing is pending for this serial, so the first run is the
			// tail of a packet whose earlier pages were never read.
			start = 1
			dropped = true
		}
	} else if _, ok := r.pending[h.serial]; ok {
		delete(r.pending, h.serial)
	}

	for i := start; i < len(runs); i++ {
		rn := runs[i]
		isFirst := i == 0 && !continued
		isLast := i == len(runs)-1

		if !rn.terminates {
			r.pending[h.serial] = &pendingPacket{
				data: append([]byte(nil), rn.data...),
				bos:  h.headerType&HeaderTypeBOS != 0 && isFirst,
			}
			continue
		}

		r.ready = append(r.ready, Packet{
			data:    append([]byte(nil), rn.data...),
			serial:  h.serial,
			granule: h.granule,
			bos:     h.headerType&HeaderTypeBOS != 0 && isFirst,
			eos:     h.headerType&HeaderTypeEOS != 0 && isLast,
		})
	}
	return dropped
}

// syncWithNextPage advances the reader to just past the next "OggS" capture
// pattern. It returns (false, nil) on a clean end of input, and a non-nil
// error (ErrUnableToSync) if it scans past MaxPageSize bytes without
// finding one.
func (r *BitStreamReader) syncWithNextPage() (bool, error) {
	var window [4]byte
	filled := 0
	scanned := 0

	for {
		b, err := r.br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		scanned++

		if filled < 4 {
			window[filled] = b
			filled++
		} else {
			window[0], window[1], window[2] = window[1], window[2], window[3]
			window[3] = b
		}

		if filled == 4 && window == capturePattern {
			return true, nil
		}
		if scanned > MaxPageSize {
			return false, ErrUnableToSync
		}
	}
}
