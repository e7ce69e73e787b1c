// Package audiodevice wraps gordonklaus/portaudio's host-callback API,
// selecting a host API by name to match spec.md §6's audio_system
// configuration values (alsa, jack, coreaudio, asio). Grounded on the
// teacher's build-tag-gated pkg/audio/output/portaudio.go, generalized
// here to a permanent, non-build-tagged dependency since the daemon's
// Stream Engine requires a true real-time callback (ruling out the
// teacher's pipe-based oto backend).
package audiodevice

import (
	"strings"

	"github.com/gordonklaus/portaudio"

	"github.com/dizictl/dizi/internal/apperr"
)

// Stream is a live output stream bound to one callback.
type Stream struct {
	pa *portaudio.Stream
}

// Open initializes PortAudio (idempotent per process) and opens a
// default output stream for sampleRate/channels, invoking callback
// once per buffer of framesPerBuffer frames. hostName, when non-empty,
// restricts the search to a host API matching one of spec.md's
// audio_system values; when no such host is present NoDevice is
// returned.
func Open(hostName string, sampleRate float64, channels int, framesPerBuffer int, callback func(out []float32)) (*Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, apperr.Wrap(apperr.NoDevice, err, "portaudio initialize")
	}

	dev, err := selectDevice(hostName)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	params := portaudio.HighLatencyParameters(nil, dev)
	params.Output.Channels = channels
	params.SampleRate = sampleRate
	params.FramesPerBuffer = framesPerBuffer

	s, err := portaudio.OpenStream(params, callback)
	if err != nil {
		portaudio.Terminate()
		return nil, apperr.Wrap(apperr.StreamError, err, "open output stream")
	}
	if err := s.Start(); err != nil {
		s.Close()
		portaudio.Terminate()
		return nil, apperr.Wrap(apperr.StreamError, err, "start output stream")
	}

	return &Stream{pa: s}, nil
}

func selectDevice(hostName string) (*portaudio.DeviceInfo, error) {
	if hostName == "" {
		dev, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, apperr.Wrap(apperr.NoDevice, err, "default output device")
		}
		return dev, nil
	}

	hosts, err := portaudio.HostApis()
	if err != nil {
		return nil, apperr.Wrap(apperr.NoDevice, err, "enumerate host apis")
	}
	for _, h := range hosts {
		if strings.EqualFold(hostAPIKey(h.Type), hostName) && h.DefaultOutputDevice != nil {
			return h.DefaultOutputDevice, nil
		}
	}
	return nil, apperr.New(apperr.NoDevice, "no host api matching audio_system="+hostName)
}

// hostAPIKey maps a PortAudio HostApiType to the short name used in
// spec.md's audio_system configuration option.
func hostAPIKey(t portaudio.HostApiType) string {
	switch t {
	case portaudio.ALSA:
		return "alsa"
	case portaudio.JACK:
		return "jack"
	case portaudio.CoreAudio:
		return "coreaudio"
	case portaudio.ASIO:
		return "asio"
	default:
		return ""
	}
}

// Pause and Resume call into the device stream directly, never
// touching the callback; per spec.md §4.2 the callback simply stops
// being invoked while paused, so no progress is emitted.
func (s *Stream) Pause() error {
	if err := s.pa.Stop(); err != nil {
		return apperr.Wrap(apperr.StreamError, err, "pause stream")
	}
	return nil
}

func (s *Stream) Resume() error {
	if err := s.pa.Start(); err != nil {
		return apperr.Wrap(apperr.StreamError, err, "resume stream")
	}
	return nil
}

// Close tears down the stream. The caller is responsible for not
// invoking any further Stream methods afterward.
func (s *Stream) Close() error {
	err := s.pa.Close()
	portaudio.Terminate()
	if err != nil {
		return apperr.Wrap(apperr.StreamError, err, "close stream")
	}
	return nil
}
