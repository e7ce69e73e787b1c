// Package song implements the data model shared by every subsystem
// that names a track: File, AudioFile, AudioMetadata, MusicMetadata,
// and the Unloaded/Loaded SongEntry union.
package song

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dhowden/tag"
	logging "github.com/ipfs/go-log/v2"

	"github.com/dizictl/dizi/internal/apperr"
)

var log = logging.Logger("song")

// File is an immutable reference to a file on disk, created when a
// directory is scanned or a playlist is loaded.
type File struct {
	FileName string
	FilePath string
}

// StandardTag names a canonical metadata field. MusicMetadata keys
// its standard_tags map by these names, lower-cased for query lookups.
type StandardTag string

const (
	TrackTitle  StandardTag = "TrackTitle"
	TrackArtist StandardTag = "TrackArtist"
	TrackAlbum  StandardTag = "TrackAlbum"
	TrackGenre  StandardTag = "TrackGenre"
	TrackYear   StandardTag = "TrackYear"
	TrackNumber StandardTag = "TrackNumber"
)

// MusicMetadata is the pair of string-keyed maps spec.md §3 describes:
// canonical tags plus vendor-specific free-form ones.
type MusicMetadata struct {
	StandardTags map[StandardTag]string
	Tags         map[string]string
}

// AudioMetadata is the decode-time metadata attached on first play.
type AudioMetadata struct {
	TrackID        uint32
	BitDepth       uint32
	Channels       *uint16
	SampleRate     *uint32
	TotalDuration  *time.Duration
}

// AudioFile is a File enriched with metadata, created lazily.
type AudioFile struct {
	File
	Audio AudioMetadata
	Music MusicMetadata
}

// SongEntry is the tagged Unloaded(File) | Loaded(AudioFile) union.
// Once an entry is promoted to Loaded it stays Loaded for the life of
// the process — metadata is cached, never re-probed.
type SongEntry struct {
	loaded *AudioFile
	file   File
}

func NewUnloaded(f File) SongEntry { return SongEntry{file: f} }

func NewLoaded(af AudioFile) SongEntry { return SongEntry{loaded: &af, file: af.File} }

func (e SongEntry) IsLoaded() bool { return e.loaded != nil }

func (e SongEntry) File() File { return e.file }

// Loaded returns the cached AudioFile and true, or the zero value and
// false if this entry has never been played.
func (e SongEntry) Loaded() (AudioFile, bool) {
	if e.loaded == nil {
		return AudioFile{}, false
	}
	return *e.loaded, true
}

// MarshalJSON renders the union the way the wire protocol expects: an
// Unloaded entry serialises as its File, a Loaded one as its AudioFile.
func (e SongEntry) MarshalJSON() ([]byte, error) {
	if e.loaded != nil {
		return json.Marshal(e.loaded)
	}
	return json.Marshal(e.file)
}

// Promote reads MusicMetadata from the file's tags and returns a
// Loaded SongEntry. Of AudioMetadata it sets only the default BitDepth
// of 16; TrackID, Channels, SampleRate and TotalDuration are not probed
// and stay unset. Tag-extraction failures are tolerated:
// the entry is still promoted to Loaded with best-effort metadata, so
// a single malformed tag block never blocks playback (spec.md §4.5:
// "tolerate metadata errors by marking loaded anyway").
func Promote(f File) (SongEntry, error) {
	fh, err := os.Open(f.FilePath)
	if err != nil {
		return SongEntry{}, apperr.Wrap(apperr.IoError, err, "open "+f.FilePath)
	}
	defer fh.Close()

	af := AudioFile{
		File: f,
		Audio: AudioMetadata{
			BitDepth: 16,
		},
		Music: MusicMetadata{
			StandardTags: map[StandardTag]string{},
			Tags:         map[string]string{},
		},
	}

	m, err := tag.ReadFrom(fh)
	if err != nil {
		log.Debugw("tag read failed, loading without metadata", "path", f.FilePath, "err", err)
		return NewLoaded(af), nil
	}

	if v := m.Title(); v != "" {
		af.Music.StandardTags[TrackTitle] = v
	}
	if v := m.Artist(); v != "" {
		af.Music.StandardTags[TrackArtist] = v
	}
	if v := m.Album(); v != "" {
		af.Music.StandardTags[TrackAlbum] = v
	}
	if v := m.Genre(); v != "" {
		af.Music.StandardTags[TrackGenre] = v
	}
	if v := m.Year(); v != 0 {
		af.Music.StandardTags[TrackYear] = strconv.Itoa(v)
	}
	if n, _ := m.Track(); n != 0 {
		af.Music.StandardTags[TrackNumber] = strconv.Itoa(n)
	}
	for k, v := range m.Raw() {
		if s, ok := v.(string); ok {
			af.Music.Tags[k] = s
		}
	}

	return NewLoaded(af), nil
}

// NewFile builds a File from a filesystem path.
func NewFile(path string) File {
	return File{FileName: filepath.Base(path), FilePath: path}
}

// Playable reports whether path is playable per spec.md §4.5: accepted
// extensions, case-insensitive.
func Playable(path string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	switch toLower(ext[1:]) {
	case "aac", "flac", "mp3", "mp4", "m4a", "ogg", "opus", "wav", "webm":
		return true
	default:
		return false
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
