// Package playlist implements the ordered song container described in
// spec.md §4.4: a contents vector plus a separate order permutation,
// supporting push/remove/swap/clear/shuffle/unshuffle and wrap-around
// peeking. Semantics for swap and shuffle/unshuffle are grounded on
// kamiyaa/dizi's impl_ordered_playlist.rs and impl_shuffle_playlist.rs
// (see SPEC_FULL.md SUPPLEMENTED FEATURES), which are more precise
// than the prose in spec.md.
package playlist

import (
	"math/rand"

	"github.com/dizictl/dizi/internal/song"
)

// Kind distinguishes a directory-backed listing from a saved .m3u
// file; the two are behaviorally identical, so Kind is metadata, not
// a second implementation (spec.md §9, "dynamic dispatch" note).
type Kind string

const (
	DirectoryListing Kind = "DirectoryListing"
	PlaylistFile     Kind = "PlaylistFile"
)

// Playlist is the ordered container. Invariants held by every method
// below: len(order) == len(contents); order is a permutation of
// [0,len(contents)); orderIndex is nil iff no track is current.
type Playlist struct {
	contents   []song.SongEntry
	order      []int
	orderIndex *int
	kind       Kind
}

func New(kind Kind) *Playlist {
	return &Playlist{kind: kind}
}

func FromEntries(kind Kind, entries []song.SongEntry) *Playlist {
	p := &Playlist{kind: kind, contents: entries, order: identity(len(entries))}
	return p
}

func identity(n int) []int {
	o := make([]int, n)
	for i := range o {
		o[i] = i
	}
	return o
}

func (p *Playlist) Kind() Kind     { return p.kind }
func (p *Playlist) SetKind(k Kind) { p.kind = k }
func (p *Playlist) Len() int       { return len(p.contents) }
func (p *Playlist) IsEmpty() bool  { return len(p.contents) == 0 }

// Contents returns the underlying entries in content order (not play
// order). Callers must not mutate the returned slice.
func (p *Playlist) Contents() []song.SongEntry { return p.contents }

// Order returns the current permutation. Callers must not mutate it.
func (p *Playlist) Order() []int { return p.order }

// OrderIndex returns the position within Order that is current, or
// (-1, false) when nothing is current.
func (p *Playlist) OrderIndex() (int, bool) {
	if p.orderIndex == nil {
		return -1, false
	}
	return *p.orderIndex, true
}

// SetOrderIndex directly assigns the order-index, e.g. after a
// Controller resolves a peek. Pass -1 to clear it.
func (p *Playlist) SetOrderIndex(oi int) {
	if oi < 0 {
		p.orderIndex = nil
		return
	}
	v := oi
	p.orderIndex = &v
}

// Push appends entry, preserving |order| == |contents|.
func (p *Playlist) Push(entry song.SongEntry) {
	p.contents = append(p.contents, entry)
	p.order = append(p.order, len(p.contents)-1)
}

// Remove deletes the entry at content-index i. Per spec.md §4.4 the
// simple contract is followed: order is rebuilt to identity, and any
// order-index that pointed at the removed content-index becomes nil;
// indices above i shift down by one, mirroring a slice delete.
func (p *Playlist) Remove(i int) {
	if i < 0 || i >= len(p.contents) {
		return
	}
	currentContentIdx := -1
	if oi, ok := p.OrderIndex(); ok {
		currentContentIdx = p.order[oi]
	}

	p.contents = append(p.contents[:i], p.contents[i+1:]...)
	p.order = identity(len(p.contents))

	switch {
	case currentContentIdx == -1:
		p.orderIndex = nil
	case currentContentIdx == i:
		p.orderIndex = nil
	case currentContentIdx > i:
		p.SetOrderIndex(currentContentIdx - 1)
	default:
		p.SetOrderIndex(currentContentIdx)
	}
}

// Swap exchanges the entries at content-indices i and j. If the
// current order-index resolves to i or j, it is moved to the order
// position that holds the other index, so the playing pointer keeps
// naming the same song and order stays a permutation, grounded on
// impl_ordered_playlist.rs's swap.
func (p *Playlist) Swap(i, j int) {
	if i < 0 || j < 0 || i >= len(p.contents) || j >= len(p.contents) {
		return
	}
	p.contents[i], p.contents[j] = p.contents[j], p.contents[i]

	if oi, ok := p.OrderIndex(); ok {
		var target int
		switch p.order[oi] {
		case i:
			target = j
		case j:
			target = i
		default:
			return
		}
		for k, v := range p.order {
			if v == target {
				p.SetOrderIndex(k)
				break
			}
		}
	}
}

// Clear empties both vectors and clears order-index.
func (p *Playlist) Clear() {
	p.contents = nil
	p.order = nil
	p.orderIndex = nil
}

// IsEnd reports whether order-index is unset or at the last position.
func (p *Playlist) IsEnd() bool {
	oi, ok := p.OrderIndex()
	return !ok || oi+1 >= len(p.order)
}

// CurrentEntry returns (content-index, order-index, entry, true) when
// a track is current.
func (p *Playlist) CurrentEntry() (contentIndex, orderIndex int, entry song.SongEntry, ok bool) {
	oi, has := p.OrderIndex()
	if !has {
		return 0, 0, song.SongEntry{}, false
	}
	ci := p.order[oi]
	return ci, oi, p.contents[ci], true
}

// NextSongPeek returns what order-index would be after advancing,
// without mutating state.
func (p *Playlist) NextSongPeek() (orderIndex int, ok bool) {
	if len(p.order) == 0 {
		return 0, false
	}
	oi, has := p.OrderIndex()
	if !has {
		return 0, false
	}
	return (oi + 1) % len(p.order), true
}

// PreviousSongPeek is NextSongPeek's mirror.
func (p *Playlist) PreviousSongPeek() (orderIndex int, ok bool) {
	if len(p.order) == 0 {
		return 0, false
	}
	oi, has := p.OrderIndex()
	if !has {
		return 0, false
	}
	return (oi - 1 + len(p.order)) % len(p.order), true
}

// Shuffle builds a new random order with the currently-playing song
// (if any) fixed at position 0, per impl_shuffle_playlist.rs.
func (p *Playlist) Shuffle() {
	n := len(p.contents)
	if n == 0 {
		return
	}
	ci, _, _, has := p.CurrentEntry()
	rest := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !has || i != ci {
			rest = append(rest, i)
		}
	}
	rand.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	if has {
		newOrder := make([]int, 0, n)
		newOrder = append(newOrder, ci)
		newOrder = append(newOrder, rest...)
		p.order = newOrder
		p.SetOrderIndex(0)
	} else {
		p.order = rest
	}
}

// Unshuffle resolves order-index to its content-index first, then
// resets order to identity and points order-index at that same
// content-index, per impl_shuffle_playlist.rs.
func (p *Playlist) Unshuffle() {
	ci, _, _, has := p.CurrentEntry()
	p.order = identity(len(p.contents))
	if has {
		p.SetOrderIndex(ci)
	}
}

// SetContents replaces contents wholesale and resets order to
// identity, used when loading a fresh directory scan or .m3u file.
func (p *Playlist) SetContents(entries []song.SongEntry) {
	p.contents = entries
	p.order = identity(len(entries))
	p.orderIndex = nil
}

// ReplaceEntry swaps in a freshly-loaded SongEntry at content-index i,
// used when promoting Unloaded to Loaded in place.
func (p *Playlist) ReplaceEntry(i int, entry song.SongEntry) {
	if i < 0 || i >= len(p.contents) {
		return
	}
	p.contents[i] = entry
}
