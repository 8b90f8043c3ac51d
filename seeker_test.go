package ogg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildSeekableStream writes one logical bitstream of n packets, each
// advancing the granule position by granuleStep, and returns the encoded
// bytes alongside the granule of each packet in order.
func buildSeekableStream(t *testing.T, serial uint32, n int, granuleStep uint64) ([]byte, []uint64) {
	t.Helper()
	var b bytes.Buffer
	w := NewStreamWriter(&b)

	granules := make([]uint64, 0, n)
	require.NoError(t, w.BeginLogicalStream(serial, []byte("packet-0")))
	granules = append(granules, 0)

	for i := 1; i < n-1; i++ {
		g := uint64(i) * granuleStep
		require.NoError(t, w.PushPacket(serial, []byte("packet-data"), g))
		require.NoError(t, w.Flush(serial))
		granules = append(granules, g)
	}

	final := uint64(n-1) * granuleStep
	require.NoError(t, w.EndLogicalStream(serial, []byte("packet-last"), final))
	granules = append(granules, final)

	return b.Bytes(), granules
}

func TestSeekToStart(t *testing.T) {
	data, _ := buildSeekableStream(t, 1, 10, 1000)
	rs := bytes.NewReader(data)

	off, err := Seek(rs, 1, 0)
	require.NoError(t, err)
	require.EqualValues(t, 0, off)
}

func TestSeekToEnd(t *testing.T) {
	data, _ := buildSeekableStream(t, 1, 10, 1000)
	rs := bytes.NewReader(data)

	off, err := Seek(rs, 1, NoGranulePosition)
	require.NoError(t, err)
	require.EqualValues(t, len(data), off)
}

func TestSeekFindsFirstPacketAtOrAfterTarget(t *testing.T) {
	data, granules := buildSeekableStream(t, 1, 40, 1000)
	rs := bytes.NewReader(data)

	target := granules[20]
	off, err := Seek(rs, 1, target)
	require.NoError(t, err)

	rs2 := bytes.NewReader(data[off:])
	r := NewBitStreamReader(rs2)
	pkt, status, err := r.NextPacket()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	require.GreaterOrEqual(t, pkt.GranulePosition(), target)
}

func TestSeekIgnoresOtherSerials(t *testing.T) {
	var b bytes.Buffer
	w := NewStreamWriter(&b)
	require.NoError(t, w.BeginLogicalStream(1, []byte("s1-a")))
	require.NoError(t, w.BeginLogicalStream(2, []byte("s2-a")))
	require.NoError(t, w.PushPacket(1, []byte("s1-b"), 500))
	require.NoError(t, w.Flush(1))
	require.NoError(t, w.EndLogicalStream(2, []byte("s2-b"), 999))
	require.NoError(t, w.EndLogicalStream(1, []byte("s1-c"), 1000))

	rs := bytes.NewReader(b.Bytes())
	off, err := Seek(rs, 1, 500)
	require.NoError(t, err)

	r := NewBitStreamReader(bytes.NewReader(b.Bytes()[off:]))
	pkt, status, err := r.NextPacket()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	require.EqualValues(t, 1, pkt.BitstreamSerialNumber())
	require.GreaterOrEqual(t, pkt.GranulePosition(), uint64(500))
}
