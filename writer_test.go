package ogg

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeginLogicalStreamRejectsDuplicateSerial(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)

	require.NoError(t, w.BeginLogicalStream(1, []byte("a")))
	require.ErrorIs(t, w.BeginLogicalStream(1, []byte("b")), ErrBitstreamAlreadyInitialized)
}

func TestBeginLogicalStreamRejectsOversizeFirstPacket(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)

	oversize := make([]byte, MaxPageDataSize+1)
	require.ErrorIs(t, w.BeginLogicalStream(1, oversize), ErrInitialPacketTooBig)
}

func TestPushPacketUnknownSerial(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)
	require.ErrorIs(t, w.PushPacket(99, []byte("x"), 0), ErrUnknownBitstreamSerialNumber)
}

func TestEndLogicalStreamForgetsSerial(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)
	require.NoError(t, w.BeginLogicalStream(1, []byte("a")))
	require.NoError(t, w.EndLogicalStream(1, []byte("z"), 10))

	// The serial is gone; operating on it again is an error.
	require.ErrorIs(t, w.PushPacket(1, []byte("x"), 0), ErrUnknownBitstreamSerialNumber)

	// And a fresh BeginLogicalStream with the same serial succeeds.
	require.NoError(t, w.BeginLogicalStream(1, []byte("b")))
}

func TestFlushOnEmptyBufferIsNoOp(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)
	require.NoError(t, w.BeginLogicalStream(1, []byte("a")))

	before := b.Len()
	require.NoError(t, w.Flush(1))
	require.Equal(t, before, b.Len(), "flushing an empty page buffer must not write anything")
}

func TestPageIsEmpty(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)
	require.NoError(t, w.BeginLogicalStream(1, []byte("a")))

	empty, err := w.PageIsEmpty(1)
	require.NoError(t, err)
	require.True(t, empty)

	require.NoError(t, w.PushPacket(1, []byte("b"), 1))
	empty, err = w.PageIsEmpty(1)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestExactMultipleOf255GetsTerminatorByte(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)
	packet := make([]byte, 255)
	require.NoError(t, w.BeginLogicalStream(1, packet))

	page := b.Bytes()
	segCount := page[segmentCountIndex]
	require.EqualValues(t, 2, segCount, "a 255-byte packet needs a 255 lace plus a 0 terminator")
	segTable := page[HeaderBaseSize : HeaderBaseSize+int(segCount)]
	require.Equal(t, []byte{255, 0}, segTable)
}

func TestSplitOversizePacketIsContinuationTagged(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)
	require.NoError(t, w.BeginLogicalStream(1, []byte("head")))

	oversize := make([]byte, MaxPageDataSize+10)
	require.NoError(t, w.PushPacket(1, oversize, 123))

	r := NewBitStreamReader(bytes.NewReader(b.Bytes()))
	pkt, status, err := r.NextPacket()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	require.True(t, pkt.IsBOS())

	pkt, status, err = r.NextPacket()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	require.Len(t, pkt.Data(), len(oversize))
	require.Equal(t, oversize, pkt.Data())
	require.EqualValues(t, 123, pkt.GranulePosition())
}

func TestBeginLogicalStreamRejectsExactBoundaryFirstPacket(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)

	// Exactly MaxPageDataSize bytes needs 256 lacing entries as a single
	// terminating packet (255 full runs plus a terminator), one past
	// MaxSegments. BeginLogicalStream cannot split, so this must be
	// rejected with the documented error rather than failing deep inside
	// page assembly.
	boundary := make([]byte, MaxPageDataSize)
	require.ErrorIs(t, w.BeginLogicalStream(1, boundary), ErrInitialPacketTooBig)
}

func TestEndLogicalStreamSplitsExactBoundaryPacket(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)
	require.NoError(t, w.BeginLogicalStream(1, []byte("head")))

	boundary := make([]byte, MaxPageDataSize)
	rand.New(rand.NewSource(7)).Read(boundary)
	require.NoError(t, w.EndLogicalStream(1, boundary, 55))

	r := NewBitStreamReader(bytes.NewReader(b.Bytes()))
	_, status, err := r.NextPacket()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	pkt, status, err := r.NextPacket()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	require.Equal(t, boundary, pkt.Data())
	require.True(t, pkt.IsEOS())
	require.EqualValues(t, 55, pkt.GranulePosition())
}

// pageHeaderTypes walks a buffer of concatenated raw pages and returns each
// page's header-type byte, in order.
func pageHeaderTypes(t *testing.T, data []byte) []byte {
	t.Helper()
	var types []byte
	for off := 0; off < len(data); {
		segCount := int(data[off+segmentCountIndex])
		payloadLen := 0
		for _, s := range data[off+HeaderBaseSize : off+HeaderBaseSize+segCount] {
			payloadLen += int(s)
		}
		types = append(types, data[off+offsetHeaderType])
		off += HeaderBaseSize + segCount + payloadLen
	}
	return types
}

func TestWriteSplitPacketKeepsContinuationBitOnFinalPage(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)
	require.NoError(t, w.BeginLogicalStream(1, []byte("head")))

	oversize := make([]byte, MaxPageDataSize+10)
	require.NoError(t, w.PushPacket(1, oversize, 1))

	// Three pages: BOS "head", the split packet's lead chunk (its first
	// packet does not continue a previous page, so no continuation bit),
	// and its terminating chunk. The continuation bit marks whether a
	// page's first packet continues the previous page, not whether more
	// pages follow, so it must stay set on the closing page too.
	types := pageHeaderTypes(t, b.Bytes())
	require.Len(t, types, 3)
	require.Zero(t, types[0]&HeaderTypeContinuation, "BOS page must not be a continuation")
	require.Zero(t, types[1]&HeaderTypeContinuation, "split packet's lead page starts a new packet, not a continuation")
	require.NotZero(t, types[2]&HeaderTypeContinuation, "split packet's final page must still carry the continuation bit")
}

func TestPushPacketAfterSplitDoesNotLeakContinuationBit(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)
	require.NoError(t, w.BeginLogicalStream(1, []byte("head")))

	oversize := make([]byte, MaxPageDataSize+10)
	require.NoError(t, w.PushPacket(1, oversize, 1))
	require.NoError(t, w.EndLogicalStream(1, []byte("tail"), 2))

	// The "tail" packet is small and unrelated to the split packet before
	// it; its solo page must not inherit the continuation bit left set by
	// writeSplitPacket's final page.
	types := pageHeaderTypes(t, b.Bytes())
	last := types[len(types)-1]
	require.Zero(t, last&HeaderTypeContinuation, "a fresh packet's page must not carry a leftover continuation bit")
}
