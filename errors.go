package ogg

import (
	"errors"
	"fmt"
)

// Errors returned by StreamWriter operations.
var (
	// ErrBitstreamAlreadyInitialized is returned by BeginLogicalStream
	// when a live stream with the same serial already exists.
	ErrBitstreamAlreadyInitialized = errors.New("ogg: logical bitstream already initialized")

	// ErrUnknownBitstreamSerialNumber is returned when an operation
	// references a serial number that is not currently live.
	ErrUnknownBitstreamSerialNumber = errors.New("ogg: unknown bitstream serial number")

	// ErrInitialPacketTooBig is returned by BeginLogicalStream when the
	// first packet is MaxPageDataSize bytes or longer: as the sole,
	// terminated packet of the BOS page it would need more than
	// MaxSegments lacing values.
	ErrInitialPacketTooBig = errors.New("ogg: initial packet too big, max size is 65024 bytes")
)

// Errors returned by BitStreamReader operations.
var (
	// ErrUnableToSync is returned when the capture pattern could not be
	// found within MaxPageSize bytes.
	ErrUnableToSync = errors.New("ogg: unable to sync to next page")
)

// ErrUnhandledBitstreamVersion is returned when a page declares a stream
// structure version other than 0.
type ErrUnhandledBitstreamVersion struct {
	Version uint8
}

func (e ErrUnhandledBitstreamVersion) Error() string {
	return fmt.Sprintf("ogg: reader only supports bitstream version 0, found version %d", e.Version)
}

// ErrBadCRC reports a page whose stored CRC did not match the computed one.
// It is never returned to callers of BitStreamReader.NextPacket (a CRC
// mismatch is recoverable corruption and surfaces as ReadStatus Missing,
// per spec.md §7); it exists so diagnostics can describe what was dropped.
type ErrBadCRC struct {
	Found    uint32
	Expected uint32
}

func (e ErrBadCRC) Error() string {
	return fmt.Sprintf("ogg: bad crc in page: got %x, expected %x", e.Found, e.Expected)
}
