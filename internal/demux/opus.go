package demux

import (
	"encoding/binary"
	"os"

	"github.com/hraban/opus"

	"github.com/dizictl/dizi/internal/apperr"
)

// decodeOpus demuxes the Ogg container with readOggPackets, then
// decodes each raw Opus packet with hraban/opus, grounded on the
// teacher's pkg/audio/decode/opus.go (which only wraps the raw-frame
// decoder — it never dealt with the Ogg container, hence ogg.go).
func decodeOpus(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IoError, err, "open "+path)
	}
	defer f.Close()

	packets, err := readOggPackets(f)
	if err != nil {
		return nil, apperr.Wrap(apperr.DecoderError, err, "ogg demux "+path)
	}
	if len(packets) < 2 {
		return nil, apperr.New(apperr.DecoderError, "opus stream too short: "+path)
	}

	head := packets[0]
	if len(head) < 19 || string(head[0:8]) != "OpusHead" {
		return nil, apperr.New(apperr.UnrecognizedFormat, "missing OpusHead: "+path)
	}
	channels := int(head[9])
	preSkip := binary.LittleEndian.Uint16(head[10:12])
	_ = preSkip

	const outputRate = 48000
	dec, err := opus.NewDecoder(outputRate, channels)
	if err != nil {
		return nil, apperr.Wrap(apperr.DecoderError, err, "opus decoder init")
	}

	samples := make([]int32, 0, 1<<20)
	pcm := make([]int16, 5760*channels)
	for _, pkt := range packets[2:] {
		n, err := dec.Decode(pkt, pcm)
		if err != nil {
			log.Debugw("opus packet decode error, skipping", "path", path, "err", err)
			continue
		}
		for i := 0; i < n*channels; i++ {
			samples = append(samples, int32(pcm[i])<<8)
		}
	}

	return &Result{
		Format: Format{
			Codec:      "opus",
			SampleRate: outputRate,
			Channels:   channels,
			BitDepth:   16,
		},
		Samples: samples,
	}, nil
}
