package ogg

import (
	"encoding/binary"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
)

// GenerateBitstreamSerialNumber returns a serial number suitable for
// BeginLogicalStream, mixing wall-clock time with a random UUID so that
// two streams begun in the same process in the same nanosecond still get
// distinct serials.
func GenerateBitstreamSerialNumber() uint32 {
	h := fnv.New32a()

	var nowBuf [8]byte
	binary.LittleEndian.PutUint64(nowBuf[:], uint64(time.Now().UnixNano()))
	h.Write(nowBuf[:])

	id := uuid.New()
	h.Write(id[:])

	return h.Sum32()
}
