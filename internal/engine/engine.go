// Package engine implements the Stream Engine of spec.md §4.2: it
// owns a fully-decoded sample buffer and the audio device callback
// that streams it out at real time, servicing in-callback volume/seek
// commands and emitting quantised progress plus a one-shot end event.
//
// Per spec.md §9's "cyclic handles" redesign note, the callback owns
// its mutable cells (frameIndex, volume, lastReportedSeconds, the
// StreamEnded one-shot) by value capture inside the closure built in
// New; nothing outside the closure ever mutates them, so no lock is
// needed on the hot path.
package engine

import (
	"sync/atomic"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/dizictl/dizi/internal/audiodevice"
)

var log = logging.Logger("engine")

// StreamEvent is emitted from inside the audio callback outward.
type StreamEvent struct {
	Progress *time.Duration
	Ended    bool
}

// Command is accepted non-blockingly by the callback. SetVolume,
// FastForward and Rewind all act purely on the callback's captured
// state; Pause/Resume/Stop act on the device stream object itself and
// so are not Commands (spec.md §4.2).
type Command struct {
	SetVolume   *float32
	FastForward *time.Duration
	Rewind      *time.Duration
}

// Engine is the Engine Handle of spec.md §3: the live stream object
// plus the channels used to talk to its callback.
type Engine struct {
	stream   *audiodevice.Stream
	CommandC chan Command
	EventC   chan StreamEvent
}

// New decodes nothing itself — samples must already be materialised —
// and opens a device stream whose callback walks samples at
// channels-interleaved frames, applying volume and emitting events.
// hostName selects the audio_system per spec.md §6.
func New(hostName string, sampleRate int, channels int, samples []int32, initialVolume float32) (*Engine, error) {
	const framesPerBuffer = 1024
	commandC := make(chan Command, 16)
	eventC := make(chan StreamEvent, 64)

	frameIndex := 0
	volume := initialVolume
	lastReportedSeconds := int64(-1)
	var ended int32
	denom := sampleRate * channels
	timeBase := 1.0 / float64(denom)

	emitEnded := func() {
		if atomic.CompareAndSwapInt32(&ended, 0, 1) {
			select {
			case eventC <- StreamEvent{Ended: true}:
			default:
				log.Warnw("event channel full dropping StreamEnded")
			}
		}
	}

	callback := func(out []float32) {
		select {
		case cmd := <-commandC:
			switch {
			case cmd.SetVolume != nil:
				volume = *cmd.SetVolume
			case cmd.FastForward != nil:
				advance := int(cmd.FastForward.Seconds()) * denom
				frameIndex = min(frameIndex+advance, max(0, len(samples)-denom))
			case cmd.Rewind != nil:
				back := int(cmd.Rewind.Seconds()) * denom
				frameIndex = max(0, frameIndex-back)
			}
		default:
		}

		if frameIndex >= len(samples) {
			for i := range out {
				out[i] = 0
			}
			emitEnded()
			return
		}

		n := min(len(out), len(samples)-frameIndex)
		for i := 0; i < n; i++ {
			out[i] = applyVolume(samples[frameIndex+i], volume)
		}
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
		frameIndex += n
		if n < len(out) {
			frameIndex = len(samples) + 1
		}

		newSeconds := int64(float64(frameIndex) * timeBase)
		if newSeconds != lastReportedSeconds {
			lastReportedSeconds = newSeconds
			d := time.Duration(newSeconds) * time.Second
			select {
			case eventC <- StreamEvent{Progress: &d}:
			default:
				log.Warnw("event channel full dropping Progress")
			}
		}
	}

	stream, err := audiodevice.Open(hostName, float64(sampleRate), channels, framesPerBuffer, callback)
	if err != nil {
		return nil, err
	}

	return &Engine{stream: stream, CommandC: commandC, EventC: eventC}, nil
}

// applyVolume multiplies a signed PCM sample (24-bit full scale, the
// representation every internal/demux decoder produces) by a [0,1]
// gain and renders it into the float32 range PortAudio's Go binding
// expects.
// Overflow is a non-issue for volumes constrained to [0,1] (spec.md
// §7); float32 output needs no integer clipping arm at all, which
// collapses the spec's eight per-format volume_apply arms (U8/U16/
// U32/I8/I16/I32/F32/F64) into the single arithmetic below — the
// device layer exposes one uniform sample format (see DESIGN.md).
func applyVolume(sample int32, volume float32) float32 {
	return (float32(sample) / 8388608.0) * volume
}

func (e *Engine) Pause() error  { return e.stream.Pause() }
func (e *Engine) Resume() error { return e.stream.Resume() }

// Close tears down the device stream. The Supervisor calls this on
// Stop or after StreamEnded has been observed.
func (e *Engine) Close() error { return e.stream.Close() }

func (e *Engine) SetVolume(v float32) {
	e.CommandC <- Command{SetVolume: &v}
}

func (e *Engine) FastForward(d time.Duration) {
	e.CommandC <- Command{FastForward: &d}
}

func (e *Engine) Rewind(d time.Duration) {
	e.CommandC <- Command{Rewind: &d}
}
