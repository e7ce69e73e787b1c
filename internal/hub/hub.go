// Package hub implements the Server Hub reactor of spec.md §4.8: a
// single-threaded event loop multiplexing client requests and
// Supervisor notifications, dispatching to the Controller, and
// broadcasting state to every connected session. Grounded on the
// teacher's internal/server/server.go accept-loop-plus-reactor shape
// and kamiyaa/dizi's server.rs serve() quit sequence.
package hub

import (
	"encoding/json"
	"net"
	"strconv"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"

	"github.com/dizictl/dizi/internal/apperr"
	"github.com/dizictl/dizi/internal/controller"
	"github.com/dizictl/dizi/internal/playlist"
	"github.com/dizictl/dizi/internal/playlistio"
	"github.com/dizictl/dizi/internal/protocol"
	"github.com/dizictl/dizi/internal/query"
	"github.com/dizictl/dizi/internal/session"
	"github.com/dizictl/dizi/internal/song"
	"github.com/dizictl/dizi/internal/supervisor"
)

var log = logging.Logger("hub")

// Hub owns the Controller and every connected session's writer
// channel. It is the sole mutator of PlayerState (spec.md §5).
type Hub struct {
	listener     net.Listener
	ctrl         *controller.Controller
	sup          *supervisor.Supervisor
	sessions     map[uuid.UUID]*session.Session
	playlistPath string
	quit         bool
	quitC        chan struct{}
}

func New(listener net.Listener, ctrl *controller.Controller, sup *supervisor.Supervisor, playlistPath string) *Hub {
	return &Hub{
		listener:     listener,
		ctrl:         ctrl,
		sup:          sup,
		sessions:     make(map[uuid.UUID]*session.Session),
		playlistPath: playlistPath,
		quitC:        make(chan struct{}, 1),
	}
}

// Quit injects a synthetic ServerQuit into the reactor loop, driving the
// same save-then-broadcast sequence a client-sent ServerQuit would. Safe
// to call from the OS signal handler.
func (h *Hub) Quit() {
	select {
	case h.quitC <- struct{}{}:
	default:
	}
}

// Run is the reactor loop. It returns once ServerQuit has been
// processed and the playlist has been saved.
func (h *Hub) Run() {
	inboundC := make(chan session.Inbound, 128)
	newConnC := make(chan net.Conn, 16)

	go h.acceptLoop(newConnC)

	for !h.quit {
		select {
		case conn := <-newConnC:
			s := session.Accept(conn, inboundC)
			h.sessions[s.ID] = s
			log.Debugw("client connected", "session", s.ID)

		case in := <-inboundC:
			if in.Leave {
				if s, ok := h.sessions[in.SessionID]; ok {
					if err := s.Close(); err != nil {
						log.Debugw("error closing session", "session", in.SessionID, "err", err)
					}
					delete(h.sessions, in.SessionID)
				}
				log.Debugw("client left", "session", in.SessionID)
				continue
			}
			h.handleRequest(in.SessionID, *in.Request)

		case out := <-h.sup.OutC:
			h.handleSupervisorEvent(out)

		case <-h.quitC:
			h.quit = true
		}
	}

	if err := playlistio.ToM3U(h.ctrl.FilePlaylist, h.playlistPath); err != nil {
		log.Errorw("failed to save playlist on quit", "err", err)
	}
	h.broadcast(protocol.Event{Type: protocol.EvtServerQuit})
}

func (h *Hub) acceptLoop(newConnC chan<- net.Conn) {
	for {
		conn, err := h.listener.Accept()
		if err != nil {
			log.Debugw("accept loop exiting", "err", err)
			return
		}
		newConnC <- conn
	}
}

func (h *Hub) broadcast(ev protocol.Event) {
	for _, s := range h.sessions {
		select {
		case s.WriteC <- ev:
		default:
			log.Warnw("write channel full, dropping broadcast for session", "session", s.ID)
		}
	}
}

func (h *Hub) handleRequest(sid uuid.UUID, req protocol.Request) {
	if err := h.dispatch(req); err != nil {
		h.broadcast(protocol.Event{Type: protocol.EvtServerError, Payload: protocol.ErrorPayload{Msg: err.Error()}})
	}
}

func (h *Hub) dispatch(req protocol.Request) error {
	switch req.Type {
	case protocol.ReqServerQuit:
		h.quit = true
		return nil

	case protocol.ReqServerQuery:
		var p protocol.QueryPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return apperr.Wrap(apperr.ParseError, err, "decode ServerQuery")
		}
		rendered, err := query.Render(p.Query, h.snapshot())
		if err != nil {
			return err
		}
		h.broadcast(protocol.Event{Type: protocol.EvtServerQuery, Payload: protocol.QueryPayload{Query: rendered}})
		return nil

	case protocol.ReqServerQueryAll:
		h.broadcast(protocol.Event{Type: protocol.EvtServerQueryAll, Payload: h.snapshot()})
		return nil

	case protocol.ReqPlayerState:
		h.broadcast(protocol.Event{Type: protocol.EvtPlayerState, Payload: h.stateSnapshot()})
		return nil

	case protocol.ReqPlaylistGet:
		h.broadcast(protocol.Event{Type: protocol.EvtPlayerState, Payload: h.stateSnapshot()})
		return nil

	case protocol.ReqPlayerFilePlay:
		var p protocol.PathPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return apperr.Wrap(apperr.ParseError, err, "decode PlayerFilePlay")
		}
		if err := h.ctrl.PlayFile(p.Path); err != nil {
			return err
		}
		h.broadcast(protocol.Event{Type: protocol.EvtPlayerFilePlay, Payload: protocol.PathPayload{Path: p.Path}})
		return nil

	case protocol.ReqPlayerPause:
		if err := h.ctrl.Pause(); err != nil {
			return err
		}
		h.broadcast(protocol.Event{Type: protocol.EvtPlayerPause})
		return nil

	case protocol.ReqPlayerResume:
		if err := h.ctrl.Resume(); err != nil {
			return err
		}
		h.broadcast(protocol.Event{Type: protocol.EvtPlayerResume})
		return nil

	case protocol.ReqPlayerTogglePlay:
		wasPlaying := h.ctrl.State.Status == controller.Playing
		if err := h.ctrl.TogglePlay(); err != nil {
			return err
		}
		if wasPlaying {
			h.broadcast(protocol.Event{Type: protocol.EvtPlayerPause})
		} else {
			h.broadcast(protocol.Event{Type: protocol.EvtPlayerResume})
		}
		return nil

	case protocol.ReqPlayerPlayNext:
		if err := h.ctrl.PlayNext(); err != nil {
			return err
		}
		h.broadcastPlaylistPlayCurrent()
		return nil

	case protocol.ReqPlayerPlayPrevious:
		if err := h.ctrl.PlayPrevious(); err != nil {
			return err
		}
		h.broadcastPlaylistPlayCurrent()
		return nil

	case protocol.ReqPlayerToggleNext:
		h.ctrl.SetNext(!h.ctrl.State.Next)
		h.broadcast(protocol.Event{Type: protocol.EvtPlayerNext, Payload: protocol.BoolPayload{On: h.ctrl.State.Next}})
		return nil

	case protocol.ReqPlayerToggleRepeat:
		h.ctrl.SetRepeat(!h.ctrl.State.Repeat)
		h.broadcast(protocol.Event{Type: protocol.EvtPlayerRepeat, Payload: protocol.BoolPayload{On: h.ctrl.State.Repeat}})
		return nil

	case protocol.ReqPlayerToggleShuffle:
		h.ctrl.SetShuffle(!h.ctrl.State.Shuffle)
		h.broadcast(protocol.Event{Type: protocol.EvtPlayerShuffle, Payload: protocol.BoolPayload{On: h.ctrl.State.Shuffle}})
		return nil

	case protocol.ReqPlayerVolumeUp:
		var p protocol.AmountPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return apperr.Wrap(apperr.ParseError, err, "decode PlayerVolumeUp")
		}
		if err := h.ctrl.VolumeUp(int(p.Amount)); err != nil {
			return err
		}
		h.broadcast(protocol.Event{Type: protocol.EvtPlayerVolumeUpdate, Payload: h.ctrl.State.Volume})
		return nil

	case protocol.ReqPlayerVolumeDown:
		var p protocol.AmountPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return apperr.Wrap(apperr.ParseError, err, "decode PlayerVolumeDown")
		}
		if err := h.ctrl.VolumeDown(int(p.Amount)); err != nil {
			return err
		}
		h.broadcast(protocol.Event{Type: protocol.EvtPlayerVolumeUpdate, Payload: h.ctrl.State.Volume})
		return nil

	case protocol.ReqPlayerFastForward:
		var p protocol.DurationPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return apperr.Wrap(apperr.ParseError, err, "decode PlayerFastForward")
		}
		return h.ctrl.FastForward(p.Amount.ToDuration())

	case protocol.ReqPlayerRewind:
		var p protocol.DurationPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return apperr.Wrap(apperr.ParseError, err, "decode PlayerRewind")
		}
		return h.ctrl.Rewind(p.Amount.ToDuration())

	case protocol.ReqPlaylistOpen:
		if h.ctrl.FilePlaylist.Len() > 0 {
			return apperr.New(apperr.InvalidParameters, "file playlist already loaded")
		}
		var p protocol.OpenPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return apperr.Wrap(apperr.ParseError, err, "decode PlaylistOpen")
		}
		cwd := ""
		if p.Cwd != nil {
			cwd = *p.Cwd
		}
		path := h.playlistPath
		if p.Path != nil {
			path = *p.Path
		}
		loaded, err := playlistio.FromM3U(cwd, path)
		if err != nil {
			return err
		}
		h.ctrl.FilePlaylist = loaded
		h.broadcast(protocol.Event{Type: protocol.EvtPlaylistOpen, Payload: h.stateSnapshot()})
		return nil

	case protocol.ReqPlaylistPlay:
		var p protocol.IndexPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return apperr.Wrap(apperr.ParseError, err, "decode PlaylistPlay")
		}
		if err := h.ctrl.PlayFromPlaylist(p.Index); err != nil {
			return err
		}
		h.broadcast(protocol.Event{Type: protocol.EvtPlaylistPlay, Payload: protocol.IndexPayload{Index: p.Index}})
		return nil

	case protocol.ReqPlaylistAppend:
		var p protocol.PathPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return apperr.Wrap(apperr.ParseError, err, "decode PlaylistAppend")
		}
		paths, err := playlistio.WalkSorted(p.Path)
		if err != nil {
			return err
		}
		added := make([]song.SongEntry, 0, len(paths))
		for _, pth := range paths {
			entry := song.NewUnloaded(song.NewFile(pth))
			h.ctrl.FilePlaylist.Push(entry)
			added = append(added, entry)
		}
		h.broadcast(protocol.Event{Type: protocol.EvtPlaylistAppend, Payload: added})
		return nil

	case protocol.ReqPlaylistRemove:
		var p protocol.IndexPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return apperr.Wrap(apperr.ParseError, err, "decode PlaylistRemove")
		}
		if p.Index < 0 || p.Index >= h.ctrl.FilePlaylist.Len() {
			return apperr.New(apperr.InvalidParameters, "index out of range")
		}
		h.ctrl.FilePlaylist.Remove(p.Index)
		h.broadcast(protocol.Event{Type: protocol.EvtPlaylistRemove, Payload: protocol.IndexPayload{Index: p.Index}})
		return nil

	case protocol.ReqPlaylistMoveUp:
		return h.move(p0(req), -1)

	case protocol.ReqPlaylistMoveDown:
		return h.move(p0(req), 1)

	case protocol.ReqPlaylistClear:
		h.ctrl.FilePlaylist.Clear()
		h.broadcast(protocol.Event{Type: protocol.EvtPlaylistClear})
		return nil

	default:
		return apperr.New(apperr.UnrecognizedCommand, req.Type)
	}
}

func p0(req protocol.Request) protocol.IndexPayload {
	var p protocol.IndexPayload
	json.Unmarshal(req.Payload, &p)
	return p
}

func (h *Hub) move(p protocol.IndexPayload, delta int) error {
	other := p.Index + delta
	if p.Index < 0 || p.Index >= h.ctrl.FilePlaylist.Len() || other < 0 || other >= h.ctrl.FilePlaylist.Len() {
		return apperr.New(apperr.InvalidParameters, "move out of range")
	}
	h.ctrl.FilePlaylist.Swap(p.Index, other)
	h.broadcast(protocol.Event{Type: protocol.EvtPlaylistSwapMove, Payload: protocol.SwapMovePayload{Index1: p.Index, Index2: other}})
	return nil
}

func (h *Hub) broadcastPlaylistPlayCurrent() {
	ci, _, _, ok := h.ctrl.FilePlaylist.CurrentEntry()
	if h.ctrl.State.PlaylistKind == playlist.PlaylistFile && ok {
		h.broadcast(protocol.Event{Type: protocol.EvtPlaylistPlay, Payload: protocol.IndexPayload{Index: ci}})
	}
}

func (h *Hub) handleSupervisorEvent(out supervisor.OutEvent) {
	if out.Progress != nil {
		h.ctrl.State.Elapsed = *out.Progress
		h.broadcast(protocol.Event{Type: protocol.EvtPlayerProgressUpdate, Payload: protocol.FromDuration(*out.Progress)})
		return
	}
	if out.Done {
		action, err := h.ctrl.OnTrackDone()
		if err != nil {
			h.broadcast(protocol.Event{Type: protocol.EvtServerError, Payload: protocol.ErrorPayload{Msg: err.Error()}})
		}
		switch action {
		case controller.ActionStop:
			h.broadcast(protocol.Event{Type: protocol.EvtPlayerStop})
		case controller.ActionPlayNext, controller.ActionPlayAgain:
			h.broadcastPlaylistPlayCurrent()
		}
	}
}

func (h *Hub) snapshot() map[string]string {
	m := map[string]string{
		"player.status":  string(h.ctrl.State.Status),
		"player.volume":  strconv.Itoa(h.ctrl.State.Volume),
		"player.next":    strconv.FormatBool(h.ctrl.State.Next),
		"player.repeat":  strconv.FormatBool(h.ctrl.State.Repeat),
		"player.shuffle": strconv.FormatBool(h.ctrl.State.Shuffle),
		"audio.host":     h.ctrl.State.AudioHost,
	}
	p := h.activeSnapshotPlaylist()
	m["playlist.status"] = string(p.Kind())
	m["playlist.length"] = strconv.Itoa(p.Len())
	if oi, ok := p.OrderIndex(); ok {
		m["playlist.index"] = strconv.Itoa(p.Order()[oi])
	}
	if h.ctrl.State.Song != nil {
		af := h.ctrl.State.Song
		m["song.file_name"] = af.FileName
		m["song.file_path"] = af.FilePath
		if af.Audio.TotalDuration != nil {
			m["song.total_duration"] = strconv.FormatInt(int64(af.Audio.TotalDuration.Seconds()), 10)
		}
		for tag, v := range af.Music.StandardTags {
			m["song.tag."+lower(string(tag))] = v
		}
	}
	return m
}

func (h *Hub) activeSnapshotPlaylist() *playlist.Playlist {
	if h.ctrl.State.PlaylistKind == playlist.PlaylistFile {
		return h.ctrl.FilePlaylist
	}
	return h.ctrl.DirectoryPlaylist
}

// stateSnapshot returns PlayerState with the file playlist attached, per
// spec.md §3. PlayingIndex is the file playlist's current content-index
// when it is the active playlist; CursorIndex is left nil since no
// request variant currently sets it.
func (h *Hub) stateSnapshot() controller.State {
	st := h.ctrl.State
	st.Playlist = controller.FilePlaylistSnapshot{
		List: h.ctrl.FilePlaylist.Contents(),
	}
	if st.PlaylistKind == playlist.PlaylistFile {
		if ci, _, _, ok := h.ctrl.FilePlaylist.CurrentEntry(); ok {
			idx := ci
			st.Playlist.PlayingIndex = &idx
		}
	}
	return st
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
