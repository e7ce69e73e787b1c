// Package demux opens an audio file, identifies its codec from a
// filename-extension hint, and decodes it into interleaved PCM
// samples, per spec.md §4.1. Each codec gets its own file mirroring
// the teacher's pkg/audio/decode/*.go split, generalized from int16
// PCM output to a shared Decode-to-int32 contract and wired to real
// decoder libraries (mewkiz/flac replaces the teacher's stub).
package demux

import (
	"path/filepath"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/dizictl/dizi/internal/apperr"
)

var log = logging.Logger("demux")

// Format describes the decoded stream's shape.
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Result is the full materialised track: every sample decoded up
// front, per spec.md §9 ("Full-track buffer" design note — this keeps
// seek a plain index assignment and needs no demux/playback
// backpressure).
type Result struct {
	Format  Format
	Samples []int32
}

// Open demuxes and fully decodes path, selecting a codec from its
// extension. Returns UnrecognizedFormat when no codec matches,
// IoError on read failure, DecoderError on unrecoverable decode
// failure. Per-packet decode errors inside a codec's own Decode are
// swallowed by that codec (spec.md §4.1 packet-iteration policy) and
// never reach here as anything but a possibly-short Result.
func Open(path string) (*Result, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "mp3":
		return decodeMP3(path)
	case "flac":
		return decodeFLAC(path)
	case "opus", "ogg":
		return decodeOpus(path)
	case "wav":
		return decodeWAV(path)
	default:
		return nil, apperr.New(apperr.UnrecognizedFormat, "unrecognized container/codec: "+ext)
	}
}
