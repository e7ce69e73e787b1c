package playlistio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dizictl/dizi/internal/playlist"
	"github.com/dizictl/dizi/internal/song"
)

func TestM3URoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp3")
	b := filepath.Join(dir, "b.flac")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	p := playlist.FromEntries(playlist.PlaylistFile, []song.SongEntry{
		song.NewUnloaded(song.NewFile(a)),
		song.NewUnloaded(song.NewFile(b)),
	})

	m3u := filepath.Join(dir, "list.m3u")
	if err := ToM3U(p, m3u); err != nil {
		t.Fatalf("ToM3U failed: %v", err)
	}

	loaded, err := FromM3U(dir, m3u)
	if err != nil {
		t.Fatalf("FromM3U failed: %v", err)
	}

	if loaded.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", loaded.Len())
	}
	if loaded.Contents()[0].File().FilePath != a || loaded.Contents()[1].File().FilePath != b {
		t.Fatalf("round trip did not preserve paths: %+v", loaded.Contents())
	}
}

func TestFromDirectorySortsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Banana.mp3", "apple.mp3", "cherry.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	p, err := FromDirectory(dir)
	if err != nil {
		t.Fatalf("FromDirectory failed: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", p.Len())
	}
	want := []string{"apple.mp3", "Banana.mp3", "cherry.mp3"}
	for i, w := range want {
		if p.Contents()[i].File().FileName != w {
			t.Fatalf("position %d: want %s got %s", i, w, p.Contents()[i].File().FileName)
		}
	}
}
