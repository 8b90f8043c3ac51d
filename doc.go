// Package ogg implements a read/write engine for the OGG container format
// (RFC 3533): page framing, CRC-32 validation, packet lacing across page
// boundaries, and granule-position seeking. It does not decode or encode
// any particular codec's payload; see the opus subpackage for a thin
// RFC 7845 header builder used alongside it.
package ogg
