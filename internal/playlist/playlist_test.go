package playlist

import (
	"testing"

	"github.com/dizictl/dizi/internal/song"
)

func entries(n int) []song.SongEntry {
	out := make([]song.SongEntry, n)
	for i := range out {
		out[i] = song.NewUnloaded(song.NewFile("song.mp3"))
	}
	return out
}

func TestPushKeepsOrderLengthInSync(t *testing.T) {
	p := New(DirectoryListing)
	p.Push(song.NewUnloaded(song.NewFile("a.mp3")))
	p.Push(song.NewUnloaded(song.NewFile("b.mp3")))

	if p.Len() != 2 || len(p.Order()) != 2 {
		t.Fatalf("want len(order)==len(contents)==2, got %d/%d", p.Len(), len(p.Order()))
	}
}

func TestShuffleKeepsCurrentSongFirst(t *testing.T) {
	p := FromEntries(DirectoryListing, entries(10))
	p.SetOrderIndex(4)
	currentContentIdx := p.Order()[4]

	p.Shuffle()

	oi, ok := p.OrderIndex()
	if !ok || oi != 0 {
		t.Fatalf("expected order_index==0 after shuffle, got %d, %v", oi, ok)
	}
	if p.Order()[0] != currentContentIdx {
		t.Fatalf("expected shuffled order[0] to be the playing song %d, got %d", currentContentIdx, p.Order()[0])
	}
	if len(p.Order()) != 10 {
		t.Fatalf("expected permutation of all 10 songs, got %d", len(p.Order()))
	}
}

func TestShuffleUnshuffleRoundTrip(t *testing.T) {
	p := FromEntries(DirectoryListing, entries(6))
	p.SetOrderIndex(2)

	p.Shuffle()
	p.Unshuffle()

	for i, v := range p.Order() {
		if v != i {
			t.Fatalf("unshuffle did not restore identity order at %d: got %d", i, v)
		}
	}
	oi, ok := p.OrderIndex()
	if !ok || oi != 2 {
		t.Fatalf("unshuffle should keep pointing at content-index 2, got %d, %v", oi, ok)
	}
}

func TestSwapPreservesPlayingSongIdentity(t *testing.T) {
	p := FromEntries(DirectoryListing, entries(3))
	p.SetOrderIndex(0) // playing content-index 0

	p.Swap(0, 1)

	ci, _, _, ok := p.CurrentEntry()
	if !ok || ci != 1 {
		t.Fatalf("after swap(0,1) while playing 0, current content-index should be 1, got %d", ci)
	}
}

func TestRemoveCurrentClearsOrderIndex(t *testing.T) {
	p := FromEntries(DirectoryListing, entries(3))
	p.SetOrderIndex(1)

	p.Remove(1)

	if _, ok := p.OrderIndex(); ok {
		t.Fatal("expected order_index to be cleared after removing the playing entry")
	}
	if p.Len() != 2 {
		t.Fatalf("expected 2 entries remaining, got %d", p.Len())
	}
}

func TestIsEndAtLastPosition(t *testing.T) {
	p := FromEntries(DirectoryListing, entries(3))
	p.SetOrderIndex(2)
	if !p.IsEnd() {
		t.Fatal("expected IsEnd at the last order position")
	}
	p.SetOrderIndex(0)
	if p.IsEnd() {
		t.Fatal("did not expect IsEnd at the first position of a 3-song playlist")
	}
}

func TestPeekWraps(t *testing.T) {
	p := FromEntries(DirectoryListing, entries(3))
	p.SetOrderIndex(2)

	next, ok := p.NextSongPeek()
	if !ok || next != 0 {
		t.Fatalf("expected peek to wrap to 0, got %d, %v", next, ok)
	}
	if oi, _ := p.OrderIndex(); oi != 2 {
		t.Fatal("peek must not mutate order_index")
	}
}

func TestClear(t *testing.T) {
	p := FromEntries(DirectoryListing, entries(3))
	p.SetOrderIndex(1)
	p.Clear()

	if p.Len() != 0 || len(p.Order()) != 0 {
		t.Fatal("expected empty playlist after Clear")
	}
	if _, ok := p.OrderIndex(); ok {
		t.Fatal("expected order_index cleared after Clear")
	}
}
