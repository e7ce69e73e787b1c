package demux

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/dizictl/dizi/internal/apperr"
)

// decodeWAV reads a canonical PCM WAVE file. WAV is uncompressed
// container+codec with a trivial fixed header, so no third-party
// decoder is warranted here (see DESIGN.md); sample widening follows
// the byte-conversion approach of the teacher's pkg/audio/decode/pcm.go.
func decodeWAV(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IoError, err, "open "+path)
	}
	defer f.Close()

	var riff [12]byte
	if _, err := io.ReadFull(f, riff[:]); err != nil {
		return nil, apperr.Wrap(apperr.IoError, err, "read riff header")
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, apperr.New(apperr.UnrecognizedFormat, "not a WAVE file: "+path)
	}

	var channels, bitDepth int
	var sampleRate int
	var data []byte

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(f, chunkHeader[:]); err != nil {
			break
		}
		id := string(chunkHeader[0:4])
		size := binary.LittleEndian.Uint32(chunkHeader[4:8])
		body := make([]byte, size)
		if _, err := io.ReadFull(f, body); err != nil {
			return nil, apperr.Wrap(apperr.IoError, err, "read chunk "+id)
		}
		if size%2 == 1 {
			var pad [1]byte
			io.ReadFull(f, pad[:])
		}

		switch id {
		case "fmt ":
			if len(body) < 16 {
				return nil, apperr.New(apperr.UnrecognizedFormat, "short fmt chunk")
			}
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitDepth = int(binary.LittleEndian.Uint16(body[14:16]))
		case "data":
			data = body
		}
		if data != nil && channels != 0 {
			break
		}
	}

	if channels == 0 || data == nil {
		return nil, apperr.New(apperr.UnrecognizedFormat, "missing fmt/data chunk: "+path)
	}

	samples := make([]int32, 0, len(data)/2)
	switch bitDepth {
	case 16:
		for i := 0; i+1 < len(data); i += 2 {
			v := int16(uint16(data[i]) | uint16(data[i+1])<<8)
			samples = append(samples, int32(v)<<8)
		}
	case 24:
		for i := 0; i+2 < len(data); i += 3 {
			var b [3]byte
			copy(b[:], data[i:i+3])
			val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if val&0x800000 != 0 {
				val |= ^0xFFFFFF
			}
			samples = append(samples, val)
		}
	case 8:
		for _, b := range data {
			samples = append(samples, (int32(b)-128)<<16)
		}
	default:
		return nil, apperr.New(apperr.UnrecognizedFormat, "unsupported wav bit depth")
	}

	return &Result{
		Format: Format{
			Codec:      "wav",
			SampleRate: sampleRate,
			Channels:   channels,
			BitDepth:   bitDepth,
		},
		Samples: samples,
	}, nil
}
