package demux

import "testing"

func TestOpenUnrecognizedFormat(t *testing.T) {
	_, err := Open("song.aac")
	if err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("/nonexistent/path/song.mp3")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
