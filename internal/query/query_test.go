package query

import "testing"

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	snapshot := map[string]string{
		"song.file_name": "track.mp3",
		"player.status":  "playing",
	}
	out, err := Render("{song.file_name} - {player.status}", snapshot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "track.mp3 - playing" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderUnknownPlaceholderFails(t *testing.T) {
	_, err := Render("{nonexistent}", map[string]string{})
	if err == nil {
		t.Fatal("expected an error for an unknown placeholder")
	}
}

func TestRenderPlainTextPassesThrough(t *testing.T) {
	out, err := Render("no placeholders here", map[string]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "no placeholders here" {
		t.Fatalf("got %q", out)
	}
}
