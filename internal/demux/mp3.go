package demux

import (
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"github.com/dizictl/dizi/internal/apperr"
)

// decodeMP3 streams the whole file through go-mp3, grounded on the
// teacher's pkg/audio/decode/mp3.go, widened from int16 samples to
// the shared int32 PCM representation.
func decodeMP3(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IoError, err, "open "+path)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, apperr.Wrap(apperr.DecoderError, err, "mp3 decode "+path)
	}

	samples := make([]int32, 0, 1<<20)
	buf := make([]byte, 8192)
	for {
		n, err := dec.Read(buf)
		for i := 0; i+1 < n; i += 2 {
			v := int16(uint16(buf[i]) | uint16(buf[i+1])<<8)
			samples = append(samples, int32(v)<<8)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Debugw("mp3 packet decode error, stopping stream", "path", path, "err", err)
			break
		}
	}

	return &Result{
		Format: Format{
			Codec:      "mp3",
			SampleRate: dec.SampleRate(),
			Channels:   2,
			BitDepth:   16,
		},
		Samples: samples,
	}, nil
}
