package demux

import (
	"io"
	"os"

	"github.com/mewkiz/flac"

	"github.com/dizictl/dizi/internal/apperr"
)

// decodeFLAC replaces the teacher's pkg/audio/decode/flac.go stub
// (which returned "FLAC streaming not yet implemented") with a real
// streaming decode via mewkiz/flac, interleaving each frame's
// per-channel subframes into the shared int32 PCM representation.
func decodeFLAC(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IoError, err, "open "+path)
	}
	defer f.Close()

	stream, err := flac.Parse(f)
	if err != nil {
		return nil, apperr.Wrap(apperr.DecoderError, err, "flac parse "+path)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	shift := 24 - int(stream.Info.BitsPerSample)
	samples := make([]int32, 0, 1<<20)

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Debugw("flac frame decode error, stopping stream", "path", path, "err", err)
			break
		}
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				s := frame.Subframes[ch].Samples[i]
				if shift > 0 {
					s <<= uint(shift)
				} else if shift < 0 {
					s >>= uint(-shift)
				}
				samples = append(samples, s)
			}
		}
	}

	return &Result{
		Format: Format{
			Codec:      "flac",
			SampleRate: int(stream.Info.SampleRate),
			Channels:   channels,
			BitDepth:   int(stream.Info.BitsPerSample),
		},
		Samples: samples,
	}, nil
}
