package song

import "testing"

func TestPlayableAcceptsWhitelistedExtensions(t *testing.T) {
	for _, ok := range []string{"track.mp3", "track.FLAC", "track.Opus", "track.wav"} {
		if !Playable(ok) {
			t.Errorf("expected %q to be playable", ok)
		}
	}
}

func TestPlayableRejectsOthers(t *testing.T) {
	for _, bad := range []string{"track.txt", "track", "track.jpg"} {
		if Playable(bad) {
			t.Errorf("expected %q to not be playable", bad)
		}
	}
}

func TestSongEntryLoadedLifecycle(t *testing.T) {
	f := NewFile("/music/a.mp3")
	e := NewUnloaded(f)
	if e.IsLoaded() {
		t.Fatal("fresh entry should not be loaded")
	}
	if _, ok := e.Loaded(); ok {
		t.Fatal("Loaded() should report false for an unloaded entry")
	}

	loaded := NewLoaded(AudioFile{File: f})
	if !loaded.IsLoaded() {
		t.Fatal("expected entry to be loaded")
	}
	af, ok := loaded.Loaded()
	if !ok || af.FilePath != f.FilePath {
		t.Fatalf("expected cached AudioFile to round-trip, got %+v, %v", af, ok)
	}
}
