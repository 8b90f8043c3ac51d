package ogg

// Packet is a single application-level unit reconstructed by
// BitStreamReader, or queued for writing by StreamWriter. Its Data buffer
// may span several on-wire pages when the packet exceeds MaxPageDataSize.
type Packet struct {
	data    []byte
	serial  uint32
	granule uint64
	bos     bool
	eos     bool
}

// Data returns the packet's payload. The returned slice is owned by the
// Packet and is safe to retain until the Packet is reused.
func (p *Packet) Data() []byte { return p.data }

// BitstreamSerialNumber returns the serial number of the logical bitstream
// this packet belongs to.
func (p *Packet) BitstreamSerialNumber() uint32 { return p.serial }

// GranulePosition returns the granule position of the page that carried
// this packet's terminating lace.
func (p *Packet) GranulePosition() uint64 { return p.granule }

// IsBOS reports whether this is the first packet of its logical bitstream.
func (p *Packet) IsBOS() bool { return p.bos }

// IsEOS reports whether this is the last packet of its logical bitstream.
func (p *Packet) IsEOS() bool { return p.eos }

// ReadStatus reports the outcome of a BitStreamReader.NextPacket call.
type ReadStatus int

const (
	// StatusOK indicates a complete packet was delivered.
	StatusOK ReadStatus = iota
	// StatusMissing indicates a page was dropped (bad CRC, or an
	// orphaned continuation); the caller should call NextPacket again.
	StatusMissing
	// StatusEOF indicates the underlying source reached end of input,
	// between pages or partway through one.
	StatusEOF
)

func (s ReadStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusEOF:
		return "eof"
	default:
		return "unknown"
	}
}
