// Command oggcopy copies an OGG stream from stdin to stdout, reassembling
// and re-emitting every logical bitstream it finds.
//
//	go run ./cmd/oggcopy < a.ogg > b.ogg
//
// Unlike a byte-for-byte copy, packets that were split across continuation
// pages in the input are recombined by the reader and re-split by the
// writer, so the page boundaries of the output need not match the input.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/lacewave/ogg"
)

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "oggcopy:", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	r := ogg.NewReader(bufio.NewReader(in))
	w := ogg.NewStreamWriter(out)

	started := make(map[uint32]bool)

	for {
		pkt, status, err := r.NextPacket()
		switch status {
		case ogg.StatusEOF:
			return nil
		case ogg.StatusMissing:
			continue
		}
		if err != nil {
			return err
		}

		serial := pkt.BitstreamSerialNumber()
		switch {
		case pkt.IsEOS():
			if err := w.EndLogicalStream(serial, pkt.Data(), pkt.GranulePosition()); err != nil {
				return err
			}
			delete(started, serial)
		case !started[serial]:
			if err := w.BeginLogicalStream(serial, pkt.Data()); err != nil {
				return err
			}
			started[serial] = true
		default:
			if err := w.PushPacket(serial, pkt.Data(), pkt.GranulePosition()); err != nil {
				return err
			}
		}
	}
}
