package ogg

import "io"

// Reader wraps a plain io.Reader. It is BitStreamReader with no seek
// capability, for sources like network connections or pipes.
type Reader struct {
	*BitStreamReader
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	return &Reader{BitStreamReader: NewBitStreamReader(r, opts...)}
}

// SeekableReader wraps an io.ReadSeeker, adding Seek on top of
// BitStreamReader's sequential NextPacket.
type SeekableReader struct {
	*BitStreamReader
	rs   io.ReadSeeker
	opts []ReaderOption
}

// NewSeekableReader creates a SeekableReader over rs.
func NewSeekableReader(rs io.ReadSeeker, opts ...ReaderOption) *SeekableReader {
	return &SeekableReader{
		BitStreamReader: NewBitStreamReader(rs, opts...),
		rs:              rs,
		opts:            opts,
	}
}

// Seek repositions the reader so the next NextPacket call returns the
// first packet of serial with a granule position >= targetGranule. Any
// packet state buffered from before the seek (pending continuations,
// queued-but-undelivered packets) is discarded, since it belongs to a part
// of the stream the reader is jumping away from.
func (sr *SeekableReader) Seek(serial uint32, targetGranule uint64) error {
	if _, err := Seek(sr.rs, serial, targetGranule); err != nil {
		return err
	}
	sr.BitStreamReader = NewBitStreamReader(sr.rs, sr.opts...)
	return nil
}
