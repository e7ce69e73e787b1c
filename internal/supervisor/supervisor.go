// Package supervisor implements the Stream Supervisor of spec.md §4.3:
// a long-lived worker owning the single current Engine Handle,
// multiplexing Controller requests and engine-emitted stream events
// onto one queue.
package supervisor

import (
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/dizictl/dizi/internal/apperr"
	"github.com/dizictl/dizi/internal/engine"
	"github.com/dizictl/dizi/internal/song"
)

var log = logging.Logger("supervisor")

// PlayerRequest is the Controller's command set into the Supervisor.
type PlayerRequest struct {
	Play        *PlayRequest
	Pause       bool
	Resume      bool
	Stop        bool
	SetVolume   *float32
	FastForward *time.Duration
	Rewind      *time.Duration

	// Reply receives exactly one ack for Play/Pause/Resume/Stop/
	// SetVolume; FastForward/Rewind are fire-and-forget and must
	// leave Reply nil (spec.md §4.3 acknowledgement contract).
	Reply chan error
}

type PlayRequest struct {
	File       song.AudioFile
	HostName   string
	SampleRate int
	Channels   int
	Samples    []int32
	Volume     float32
}

// OutEvent is forwarded out of the Supervisor to the Hub.
type OutEvent struct {
	Progress *time.Duration
	Done     bool
}

// Supervisor owns the single current engine and the merged queue of
// player requests and stream events. The two helper goroutines it
// starts forward each source into mergedC; ordering within a source
// is preserved, ordering between sources is not guaranteed, per
// spec.md §4.3's "merging rule".
type Supervisor struct {
	RequestC chan PlayerRequest
	OutC     chan OutEvent

	current     *engine.Engine
	engineWired bool
}

func New() *Supervisor {
	return &Supervisor{
		RequestC: make(chan PlayerRequest, 16),
		OutC:     make(chan OutEvent, 64),
	}
}

type mergedEvent struct {
	req   *PlayerRequest
	event *engine.StreamEvent
}

// Run drives the Supervisor until stop is closed. It must run in its
// own goroutine; it owns `current` exclusively so no lock is needed.
func (s *Supervisor) Run(stop <-chan struct{}) {
	mergedC := make(chan mergedEvent, 128)

	go func() {
		for req := range s.RequestC {
			r := req
			mergedC <- mergedEvent{req: &r}
		}
	}()

	for {
		if s.current != nil && !s.engineWired {
			s.engineWired = true
			go s.forwardEngineEvents(s.current.EventC, mergedC)
		}

		select {
		case <-stop:
			if s.current != nil {
				s.current.Close()
			}
			return
		case m := <-mergedC:
			if m.req != nil {
				s.handleRequest(*m.req)
			}
			if m.event != nil {
				s.handleEvent(*m.event)
			}
		}
	}
}

func (s *Supervisor) forwardEngineEvents(c chan engine.StreamEvent, out chan mergedEvent) {
	for ev := range c {
		e := ev
		out <- mergedEvent{event: &e}
		if e.Ended {
			return
		}
	}
}

func (s *Supervisor) handleRequest(req PlayerRequest) {
	switch {
	case req.Play != nil:
		s.handlePlay(req)
	case req.Pause:
		s.ack(req, s.withCurrent(func(e *engine.Engine) error { return e.Pause() }))
	case req.Resume:
		s.ack(req, s.withCurrent(func(e *engine.Engine) error { return e.Resume() }))
	case req.Stop:
		s.ack(req, s.stopCurrent())
	case req.SetVolume != nil:
		s.ack(req, s.withCurrent(func(e *engine.Engine) error { e.SetVolume(*req.SetVolume); return nil }))
	case req.FastForward != nil:
		if s.current != nil {
			s.current.FastForward(*req.FastForward)
		}
	case req.Rewind != nil:
		if s.current != nil {
			s.current.Rewind(*req.Rewind)
		}
	}
}

func (s *Supervisor) withCurrent(f func(*engine.Engine) error) error {
	if s.current == nil {
		return apperr.New(apperr.StreamError, "no active stream")
	}
	return f(s.current)
}

func (s *Supervisor) stopCurrent() error {
	if s.current == nil {
		return nil
	}
	err := s.current.Close()
	s.current = nil
	s.engineWired = false
	return err
}

func (s *Supervisor) handlePlay(req PlayerRequest) {
	if s.current != nil {
		s.current.Close()
		s.current = nil
		s.engineWired = false
	}

	e, err := engine.New(req.Play.HostName, req.Play.SampleRate, req.Play.Channels, req.Play.Samples, req.Play.Volume)
	if err != nil {
		log.Errorw("play failed", "path", req.Play.File.FilePath, "err", err)
		s.ack(req, err)
		return
	}
	s.current = e
	s.ack(req, nil)
}

func (s *Supervisor) ack(req PlayerRequest, err error) {
	if req.Reply == nil {
		return
	}
	req.Reply <- err
}

func (s *Supervisor) handleEvent(ev engine.StreamEvent) {
	if ev.Progress != nil {
		s.OutC <- OutEvent{Progress: ev.Progress}
		return
	}
	if ev.Ended {
		if s.current != nil {
			s.current.Close()
			s.current = nil
			s.engineWired = false
		}
		s.OutC <- OutEvent{Done: true}
	}
}
