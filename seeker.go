package ogg

import (
	"bufio"
	"io"
)

// pageProbe is the minimal information Seek needs about a page found while
// bisecting: where it starts and ends in the stream, and its header's
// serial/granule.
type pageProbe struct {
	start   int64
	end     int64
	serial  uint32
	granule uint64
}

// linearScanThreshold is how small the bisection window must shrink to
// before Seek switches from jumping to scanning forward page by page.
const linearScanThreshold = 1024

// Seek positions rs so that the next BitStreamReader.NextPacket call (on a
// fresh reader constructed over rs) returns the first packet of serial
// whose granule position is >= targetGranule. It returns the byte offset
// it left rs positioned at.
//
// targetGranule == 0 seeks to the start of the stream. targetGranule ==
// NoGranulePosition seeks to the logical end (the offset past the last
// byte), matching the sentinel's use elsewhere as "no defined position."
func Seek(rs io.ReadSeeker, serial uint32, targetGranule uint64) (int64, error) {
	if targetGranule == 0 {
		return rs.Seek(0, io.SeekStart)
	}

	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if targetGranule == NoGranulePosition {
		return size, nil
	}

	left, right := int64(0), size
	for right-left >= linearScanThreshold {
		mid := left + (right-left)/2
		probe, err := searchNextPacket(rs, mid, size, serial)
		if err != nil {
			return 0, err
		}
		if probe == nil {
			// Nothing of this serial from mid onward; the target page
			// must lie earlier.
			right = mid
			continue
		}
		if probe.granule < targetGranule {
			left = probe.end
		} else if probe.start < right {
			right = probe.start
		} else {
			// The probe synced forward to the page already bounding the
			// window, so no page of serial with a granule starts between
			// mid and right.
			right = mid
		}
	}

	return linearSeek(rs, left, size, serial, targetGranule)
}

// linearSeek scans forward page by page from `from`, leaving rs positioned
// at the first page whose granule satisfies the target.
func linearSeek(rs io.ReadSeeker, from, size int64, serial uint32, targetGranule uint64) (int64, error) {
	pos := from
	match := int64(-1)
	for pos < size {
		probe, err := probePage(rs, pos, size)
		if err != nil {
			return 0, err
		}
		if probe == nil {
			break
		}
		if probe.serial == serial && probe.granule != NoGranulePosition && probe.granule >= targetGranule {
			match = probe.start
			break
		}
		pos = probe.end
	}
	if match < 0 {
		match = from
	}
	if _, err := rs.Seek(match, io.SeekStart); err != nil {
		return 0, err
	}
	return match, nil
}

// searchNextPacket scans forward from `from`, returning the first page
// belonging to serial with a defined granule position, or nil if none
// appears before `limit`.
func searchNextPacket(rs io.ReadSeeker, from, limit int64, serial uint32) (*pageProbe, error) {
	pos := from
	for pos < limit {
		probe, err := probePage(rs, pos, limit)
		if err != nil {
			return nil, err
		}
		if probe == nil {
			return nil, nil
		}
		if probe.serial == serial && probe.granule != NoGranulePosition {
			return probe, nil
		}
		pos = probe.end
	}
	return nil, nil
}

// probePage syncs forward from `at` to the next capture pattern (if `at`
// does not itself land on one) and decodes just its header and segment
// table, reporting the page's byte extent and header fields without
// materializing its payload into a packet.
func probePage(rs io.ReadSeeker, at, limit int64) (*pageProbe, error) {
	if at >= limit {
		return nil, nil
	}
	if _, err := rs.Seek(at, io.SeekStart); err != nil {
		return nil, err
	}
	br := bufio.NewReaderSize(io.LimitReader(rs, limit-at), MaxPageSize)

	var window [4]byte
	filled := 0
	scanned := int64(0)
	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, nil
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
			break
		}
		if scanned > MaxPageSize {
			return nil, nil
		}
	}
	pageStart := at + scanned - 4

	header := make([]byte, HeaderBaseSize)
	copy(header[0:4], capturePattern[:])
	if _, err := io.ReadFull(br, header[4:]); err != nil {
		return nil, nil
	}
	h := decodePageHeader(header)

	segTable := make([]byte, h.segments)
	if h.segments > 0 {
		if _, err := io.ReadFull(br, segTable); err != nil {
			return nil, nil
		}
	}
	payloadLen := 0
	for _, s := range segTable {
		payloadLen += int(s)
	}

	pageEnd := pageStart + int64(HeaderBaseSize) + int64(h.segments) + int64(payloadLen)
	return &pageProbe{start: pageStart, end: pageEnd, serial: h.serial, granule: h.granule}, nil
}
