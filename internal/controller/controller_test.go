package controller

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/dizictl/dizi/internal/playlist"
	"github.com/dizictl/dizi/internal/song"
	"github.com/dizictl/dizi/internal/supervisor"
)

// writeTestWAV writes a minimal valid PCM WAVE file so demux.Open can
// decode it without needing a real audio device (Play requests never
// reach a real engine in these tests; see ackingSupervisor).
func writeTestWAV(t *testing.T, path string) {
	t.Helper()
	var samples []byte
	for i := 0; i < 100; i++ {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(i))
		samples = append(samples, b[:]...)
	}

	var buf []byte
	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, le32(uint32(36+len(samples)))...)
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = append(buf, le32(16)...)
	buf = append(buf, le16(1)...)           // PCM
	buf = append(buf, le16(1)...)           // mono
	buf = append(buf, le32(44100)...)       // sample rate
	buf = append(buf, le32(44100*2)...)     // byte rate
	buf = append(buf, le16(2)...)           // block align
	buf = append(buf, le16(16)...)          // bits per sample
	buf = append(buf, []byte("data")...)
	buf = append(buf, le32(uint32(len(samples)))...)
	buf = append(buf, samples...)

	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatal(err)
	}
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

// ackingSupervisor drains requests and immediately acks them, standing
// in for the real Supervisor so Controller verbs that block on Reply
// can be tested without a live audio device.
func ackingSupervisor() *supervisor.Supervisor {
	sup := supervisor.New()
	go func() {
		for req := range sup.RequestC {
			if req.Reply != nil {
				req.Reply <- nil
			}
		}
	}()
	return sup
}

func TestVolumeUpSaturatesAt100(t *testing.T) {
	c := New(ackingSupervisor(), "", "", State{Volume: 99})
	if err := c.VolumeUp(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State.Volume != 100 {
		t.Fatalf("expected volume to saturate at 100, got %d", c.State.Volume)
	}
}

func TestVolumeDownSaturatesAt0(t *testing.T) {
	c := New(ackingSupervisor(), "", "", State{Volume: 2})
	if err := c.VolumeDown(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State.Volume != 0 {
		t.Fatalf("expected volume to saturate at 0, got %d", c.State.Volume)
	}
}

func TestTogglePlayFlipsStatus(t *testing.T) {
	c := New(ackingSupervisor(), "", "", State{Status: Playing})
	if err := c.TogglePlay(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State.Status != Paused {
		t.Fatalf("expected Paused, got %v", c.State.Status)
	}

	if err := c.TogglePlay(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State.Status != Playing {
		t.Fatalf("expected Playing, got %v", c.State.Status)
	}
}

func TestTogglePlayNoOpWhenStopped(t *testing.T) {
	c := New(ackingSupervisor(), "", "", State{Status: Stopped})
	if err := c.TogglePlay(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State.Status != Stopped {
		t.Fatalf("expected Stopped to be left unchanged, got %v", c.State.Status)
	}
}

func twoSongFilePlaylist(t *testing.T) *playlist.Playlist {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.wav")
	b := filepath.Join(dir, "b.wav")
	writeTestWAV(t, a)
	writeTestWAV(t, b)
	return playlist.FromEntries(playlist.PlaylistFile, []song.SongEntry{
		song.NewUnloaded(song.NewFile(a)),
		song.NewUnloaded(song.NewFile(b)),
	})
}

func TestOnTrackDoneStopsAtEndWhenNoRepeat(t *testing.T) {
	c := New(ackingSupervisor(), "", "", State{Status: Playing, Next: true, Repeat: false, PlaylistKind: playlist.PlaylistFile})
	c.FilePlaylist = twoSongFilePlaylist(t)
	c.FilePlaylist.SetOrderIndex(1)

	action, err := c.OnTrackDone()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != ActionStop {
		t.Fatalf("expected ActionStop at end of playlist, got %v", action)
	}
	if c.State.Status != Stopped {
		t.Fatalf("expected Stopped, got %v", c.State.Status)
	}
}

func TestOnTrackDoneWrapsWithRepeat(t *testing.T) {
	c := New(ackingSupervisor(), "", "", State{Status: Playing, Next: true, Repeat: true, PlaylistKind: playlist.PlaylistFile})
	c.FilePlaylist = twoSongFilePlaylist(t)
	c.FilePlaylist.SetOrderIndex(1)

	action, err := c.OnTrackDone()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != ActionPlayNext {
		t.Fatalf("expected ActionPlayNext, got %v", action)
	}
	if oi, _ := c.FilePlaylist.OrderIndex(); oi != 0 {
		t.Fatalf("expected to wrap to position 0, got %d", oi)
	}
}

func TestOnTrackDoneReplaysCurrentWhenNotNext(t *testing.T) {
	c := New(ackingSupervisor(), "", "", State{Status: Playing, Next: false, Repeat: true, PlaylistKind: playlist.PlaylistFile})
	c.FilePlaylist = twoSongFilePlaylist(t)
	c.FilePlaylist.SetOrderIndex(0)

	action, err := c.OnTrackDone()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != ActionPlayAgain {
		t.Fatalf("expected ActionPlayAgain, got %v", action)
	}
	if oi, _ := c.FilePlaylist.OrderIndex(); oi != 0 {
		t.Fatalf("expected to stay at position 0, got %d", oi)
	}
}
