// Package controller implements the Playback Controller of spec.md
// §4.5: the long-lived state machine owning PlayerState, both
// playlists, and the handle to the Stream Supervisor. Every verb here
// runs inside the Hub's single goroutine, so PlayerState needs no lock
// (spec.md §5 "Shared-resource policy").
package controller

import (
	"os/exec"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/dizictl/dizi/internal/apperr"
	"github.com/dizictl/dizi/internal/demux"
	"github.com/dizictl/dizi/internal/playlist"
	"github.com/dizictl/dizi/internal/playlistio"
	"github.com/dizictl/dizi/internal/song"
	"github.com/dizictl/dizi/internal/supervisor"
)

var log = logging.Logger("controller")

type Status string

const (
	Playing Status = "Playing"
	Paused  Status = "Paused"
	Stopped Status = "Stopped"
)

// State is the broadcast-visible PlayerState of spec.md §3.
type State struct {
	Song         *song.AudioFile
	Elapsed      time.Duration
	Status       Status
	PlaylistKind playlist.Kind
	Playlist     FilePlaylistSnapshot
	Volume       int
	Next         bool
	Repeat       bool
	Shuffle      bool
	AudioHost    string
}

// FilePlaylistSnapshot is spec.md §3's playlist payload carried on every
// PlayerState-shaped broadcast: the file playlist's contents plus the
// client's round-tripped cursor and the server's derived playing
// position. CursorIndex is UI state no request variant currently sets,
// so it stays nil until something does.
type FilePlaylistSnapshot struct {
	List         []song.SongEntry `json:"list"`
	CursorIndex  *int             `json:"cursor_index"`
	PlayingIndex *int             `json:"playing_index"`
}

// Controller owns PlayerState, PlaylistContext and the Supervisor
// handle, per spec.md §3's "Controller" data-model entry.
type Controller struct {
	State State

	FilePlaylist      *playlist.Playlist
	DirectoryPlaylist *playlist.Playlist

	sup          *supervisor.Supervisor
	onSongChange string
}

func New(sup *supervisor.Supervisor, audioHost string, onSongChange string, initial State) *Controller {
	return &Controller{
		State:             initial,
		FilePlaylist:      playlist.New(playlist.PlaylistFile),
		DirectoryPlaylist: playlist.New(playlist.DirectoryListing),
		sup:               sup,
		onSongChange:      onSongChange,
	}
}

func (c *Controller) activePlaylist() *playlist.Playlist {
	if c.State.PlaylistKind == playlist.PlaylistFile {
		return c.FilePlaylist
	}
	return c.DirectoryPlaylist
}

// send issues req to the Supervisor and, if it expects an ack, blocks
// for it — the strict request/response contract of spec.md §4.3.
func (c *Controller) send(req supervisor.PlayerRequest, expectAck bool) error {
	if expectAck {
		req.Reply = make(chan error, 1)
	}
	c.sup.RequestC <- req
	if expectAck {
		return <-req.Reply
	}
	return nil
}

// PlayFile implements play_file: validate, scan the parent directory,
// lazy-load metadata, and start playback.
func (c *Controller) PlayFile(path string) error {
	if !song.Playable(path) {
		return apperr.New(apperr.NotAudioFile, path)
	}

	dir := parentDir(path)
	dp, err := directoryPlaylistFrom(dir, path)
	if err != nil {
		return err
	}
	c.DirectoryPlaylist = dp

	if c.State.Shuffle {
		c.DirectoryPlaylist.Shuffle()
	}

	ci, _, entry, ok := c.DirectoryPlaylist.CurrentEntry()
	if !ok {
		return apperr.New(apperr.InvalidParameters, "no current entry after directory scan")
	}
	loaded, err := c.loadEntry(entry)
	if err != nil {
		return err
	}
	c.DirectoryPlaylist.ReplaceEntry(ci, loaded)

	c.State.PlaylistKind = playlist.DirectoryListing
	return c.playLoaded(loaded)
}

// PlayFromPlaylist implements play_from_playlist(index).
func (c *Controller) PlayFromPlaylist(index int) error {
	if index < 0 || index >= c.FilePlaylist.Len() {
		return apperr.New(apperr.InvalidParameters, "index out of range")
	}
	c.FilePlaylist.Unshuffle()
	c.FilePlaylist.SetOrderIndex(index)
	if c.State.Shuffle {
		c.FilePlaylist.Shuffle()
	}

	ci, _, entry, ok := c.FilePlaylist.CurrentEntry()
	if !ok {
		return apperr.New(apperr.InvalidParameters, "no current entry")
	}
	loaded, err := c.loadEntry(entry)
	if err != nil {
		return err
	}
	c.FilePlaylist.ReplaceEntry(ci, loaded)

	c.State.PlaylistKind = playlist.PlaylistFile
	return c.playLoaded(loaded)
}

// PlayNext commits the active playlist's peek and plays it.
func (c *Controller) PlayNext() error {
	return c.commitPeekAndPlay(c.activePlaylist().NextSongPeek)
}

func (c *Controller) PlayPrevious() error {
	return c.commitPeekAndPlay(c.activePlaylist().PreviousSongPeek)
}

func (c *Controller) commitPeekAndPlay(peek func() (int, bool)) error {
	p := c.activePlaylist()
	oi, ok := peek()
	if !ok {
		return apperr.New(apperr.InvalidParameters, "no current entry to advance from")
	}
	p.SetOrderIndex(oi)
	ci, _, entry, _ := p.CurrentEntry()
	loaded, err := c.loadEntry(entry)
	if err != nil {
		return err
	}
	p.ReplaceEntry(ci, loaded)
	return c.playLoaded(loaded)
}

func (c *Controller) loadEntry(entry song.SongEntry) (song.SongEntry, error) {
	if entry.IsLoaded() {
		return entry, nil
	}
	loaded, err := song.Promote(entry.File())
	if err != nil {
		return entry, err
	}
	return loaded, nil
}

func (c *Controller) playLoaded(entry song.SongEntry) error {
	af, _ := entry.Loaded()
	dr, err := demux.Open(af.FilePath)
	if err != nil {
		return err
	}

	volume := float32(c.State.Volume) / 100.0
	err = c.send(supervisor.PlayerRequest{Play: &supervisor.PlayRequest{
		File:       af,
		HostName:   c.State.AudioHost,
		SampleRate: dr.Format.SampleRate,
		Channels:   dr.Format.Channels,
		Samples:    dr.Samples,
		Volume:     volume,
	}}, true)
	if err != nil {
		return err
	}

	c.State.Status = Playing
	c.State.Song = &af
	c.State.Elapsed = 0
	c.runOnSongChange()
	return nil
}

func (c *Controller) runOnSongChange() {
	if c.onSongChange == "" {
		return
	}
	cmd := exec.Command(c.onSongChange)
	if err := cmd.Start(); err != nil {
		log.Debugw("on_song_change spawn failed", "err", err)
	}
}

func (c *Controller) Pause() error {
	if err := c.send(supervisor.PlayerRequest{Pause: true}, true); err != nil {
		return err
	}
	c.State.Status = Paused
	return nil
}

func (c *Controller) Resume() error {
	if err := c.send(supervisor.PlayerRequest{Resume: true}, true); err != nil {
		return err
	}
	c.State.Status = Playing
	return nil
}

func (c *Controller) Stop() error {
	if err := c.send(supervisor.PlayerRequest{Stop: true}, true); err != nil {
		return err
	}
	c.State.Status = Stopped
	c.State.Song = nil
	return nil
}

func (c *Controller) TogglePlay() error {
	switch c.State.Status {
	case Playing:
		return c.Pause()
	case Paused:
		return c.Resume()
	default:
		return nil
	}
}

func (c *Controller) SetVolume(u int) error {
	if u < 0 {
		u = 0
	}
	if u > 100 {
		u = 100
	}
	v := float32(u) / 100.0
	if err := c.send(supervisor.PlayerRequest{SetVolume: &v}, true); err != nil {
		return err
	}
	c.State.Volume = u
	return nil
}

func (c *Controller) VolumeUp(amount int) error   { return c.SetVolume(c.State.Volume + amount) }
func (c *Controller) VolumeDown(amount int) error { return c.SetVolume(c.State.Volume - amount) }

func (c *Controller) FastForward(d time.Duration) error {
	return c.send(supervisor.PlayerRequest{FastForward: &d}, false)
}

func (c *Controller) Rewind(d time.Duration) error {
	return c.send(supervisor.PlayerRequest{Rewind: &d}, false)
}

func (c *Controller) SetNext(on bool)    { c.State.Next = on }
func (c *Controller) SetRepeat(on bool)  { c.State.Repeat = on }

func (c *Controller) SetShuffle(on bool) {
	c.State.Shuffle = on
	p := c.activePlaylist()
	if on {
		p.Shuffle()
	} else {
		p.Unshuffle()
	}
}

// EndOfTrackAction is what the Hub should do in response to PlayerDone,
// per spec.md §4.5's end-of-track policy table.
type EndOfTrackAction int

const (
	ActionNone EndOfTrackAction = iota
	ActionStop
	ActionPlayAgain
	ActionPlayNext
)

// OnTrackDone evaluates the end-of-track policy and performs it,
// returning which branch fired so the Hub knows what to broadcast.
func (c *Controller) OnTrackDone() (EndOfTrackAction, error) {
	p := c.activePlaylist()
	switch {
	case c.State.Next:
		if p.IsEnd() && !c.State.Repeat {
			return ActionStop, c.Stop()
		}
		return ActionPlayNext, c.PlayNext()
	case c.State.Repeat:
		ci, _, entry, ok := p.CurrentEntry()
		if !ok {
			return ActionStop, c.Stop()
		}
		loaded, err := c.loadEntry(entry)
		if err != nil {
			return ActionStop, err
		}
		p.ReplaceEntry(ci, loaded)
		return ActionPlayAgain, c.playLoaded(loaded)
	default:
		return ActionNone, nil
	}
}

func parentDir(path string) string {
	i := len(path) - 1
	for i >= 0 && path[i] != '/' {
		i--
	}
	if i <= 0 {
		return "/"
	}
	return path[:i]
}

func directoryPlaylistFrom(dir, current string) (*playlist.Playlist, error) {
	p, err := playlistio.FromDirectory(dir)
	if err != nil {
		return nil, err
	}
	for i, entry := range p.Contents() {
		if entry.File().FilePath == current {
			p.SetOrderIndex(i)
			break
		}
	}
	return p, nil
}
