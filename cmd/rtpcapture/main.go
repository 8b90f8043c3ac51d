// Command rtpcapture answers a WebRTC offer (read as a single line of
// base64-encoded SDP on stdin), accepts an incoming audio track, and
// writes every RTP packet's payload to an .ogg file as Opus as it arrives.
//
// It exists to give the pion/webrtc and pion/rtp dependencies pulled in by
// the rest of the retrieved pack a concrete home alongside the ogg
// package, mirroring the "RTP Opus track -> Ogg file" shape recurring
// across several of the example repos.
package main

import (
	"bufio"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"

	"github.com/lacewave/ogg"
	"github.com/lacewave/ogg/opus"
)

func main() {
	out := flag.String("o", "capture.ogg", "output file path")
	flag.Parse()

	if err := run(*out); err != nil {
		fmt.Fprintln(os.Stderr, "rtpcapture:", err)
		os.Exit(1)
	}
}

func run(outPath string) error {
	offer, err := readOffer(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading offer: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
	})
	if err != nil {
		return err
	}
	defer pc.Close()

	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio); err != nil {
		return err
	}

	captureDone := make(chan error, 1)

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if track.Kind() != webrtc.RTPCodecTypeAudio {
			return
		}
		captureDone <- captureTrack(track, f)
	})

	if err := pc.SetRemoteDescription(offer); err != nil {
		return err
	}
	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		return err
	}
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(answer); err != nil {
		return err
	}
	<-gatherComplete

	fmt.Println(base64.StdEncoding.EncodeToString([]byte(pc.LocalDescription().SDP)))

	return <-captureDone
}

// captureTrack writes track's RTP payloads to w as an Opus-in-Ogg stream
// until the track ends.
func captureTrack(track *webrtc.TrackRemote, w io.Writer) error {
	serial := ogg.GenerateBitstreamSerialNumber()
	sw := ogg.NewStreamWriter(w)

	head := opus.BuildOpusHead(opus.Head{Version: 1, Channels: 2, InputSampleRate: 48000})
	if err := sw.BeginLogicalStream(serial, head); err != nil {
		return err
	}
	tags := opus.BuildOpusTags("lacewave/ogg rtpcapture", nil)
	if err := sw.PushPacket(serial, tags, 0); err != nil {
		return err
	}

	var lastPacket *rtp.Packet
	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			if lastPacket != nil {
				return sw.EndLogicalStream(serial, lastPacket.Payload, uint64(lastPacket.Timestamp))
			}
			return nil
		}
		if lastPacket != nil {
			if err := sw.PushPacket(serial, lastPacket.Payload, uint64(lastPacket.Timestamp)); err != nil {
				return err
			}
		}
		lastPacket = pkt
	}
}

func readOffer(r io.Reader) (webrtc.SessionDescription, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return webrtc.SessionDescription{}, err
	}
	sd, err := base64.StdEncoding.DecodeString(line)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: string(sd)}, nil
}
