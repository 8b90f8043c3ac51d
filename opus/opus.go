// Package opus builds the two RFC 7845 header packets ("OpusHead" and
// "OpusTags") that must be the first two packets of an Ogg stream carrying
// Opus audio. It does not decode or encode Opus frames; those bytes are
// opaque payloads as far as this package and the ogg package are
// concerned.
package opus

import (
	"bytes"
	"encoding/binary"
)

// Head describes the fields of an OpusHead identification packet
// (RFC 7845 §5.1).
type Head struct {
	Version         uint8
	Channels        uint8
	PreSkip         uint16
	InputSampleRate uint32
	OutputGain      int16
	ChannelMapping  uint8
}

// BuildOpusHead serializes h as the payload of a stream's first packet.
// Callers typically pass Version 1 and ChannelMapping 0 (single stream,
// mono or stereo).
func BuildOpusHead(h Head) []byte {
	var buf bytes.Buffer
	buf.WriteString("OpusHead")
	buf.WriteByte(h.Version)
	buf.WriteByte(h.Channels)
	binary.Write(&buf, binary.LittleEndian, h.PreSkip)
	binary.Write(&buf, binary.LittleEndian, h.InputSampleRate)
	binary.Write(&buf, binary.LittleEndian, h.OutputGain)
	buf.WriteByte(h.ChannelMapping)
	return buf.Bytes()
}

// BuildOpusTags serializes the stream's second packet: a vendor string and
// an optional list of "TAG=value" user comments (RFC 7845 §5.2).
func BuildOpusTags(vendor string, userComments []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("OpusTags")

	binary.Write(&buf, binary.LittleEndian, uint32(len(vendor)))
	buf.WriteString(vendor)

	binary.Write(&buf, binary.LittleEndian, uint32(len(userComments)))
	for _, c := range userComments {
		binary.Write(&buf, binary.LittleEndian, uint32(len(c)))
		buf.WriteString(c)
	}
	return buf.Bytes()
}
