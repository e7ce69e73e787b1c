package demux

import (
	"bufio"
	"io"

	"github.com/dizictl/dizi/internal/apperr"
)

// oggPacket is one demuxed logical-bitstream packet, reassembled from
// one or more Ogg page segments per RFC 3533. No Ogg demuxer appears
// anywhere in the retrieved example corpus (only HLS .m3u8 parsers,
// an unrelated format), so this minimal reader is implemented on the
// standard library and documented as such in DESIGN.md.
func readOggPackets(r io.Reader) ([][]byte, error) {
	br := bufio.NewReader(r)
	var packets [][]byte
	var pending []byte

	for {
		var magic [4]byte
		if _, err := io.ReadFull(br, magic[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		if string(magic[:]) != "OggS" {
			return nil, apperr.New(apperr.DecoderError, "not an Ogg stream")
		}

		header := make([]byte, 23)
		if _, err := io.ReadFull(br, header); err != nil {
			return nil, err
		}
		segCount := int(header[22])
		segTable := make([]byte, segCount)
		if _, err := io.ReadFull(br, segTable); err != nil {
			return nil, err
		}

		for _, segLen := range segTable {
			buf := make([]byte, segLen)
			if segLen > 0 {
				if _, err := io.ReadFull(br, buf); err != nil {
					return nil, err
				}
			}
			pending = append(pending, buf...)
			if segLen < 255 {
				packets = append(packets, pending)
				pending = nil
			}
		}
	}
	if len(pending) > 0 {
		packets = append(packets, pending)
	}
	return packets, nil
}
