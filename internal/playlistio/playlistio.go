// Package playlistio implements spec.md §4.6: loading and saving
// .m3u files and scanning a directory into an ordered playlist. No
// .m3u reader/writer appears anywhere in the retrieved example corpus
// (only HLS .m3u8 parsers, a different format entirely), so this is
// implemented on the standard library and documented in DESIGN.md.
package playlistio

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dizictl/dizi/internal/apperr"
	"github.com/dizictl/dizi/internal/playlist"
	"github.com/dizictl/dizi/internal/song"
)

// FromM3U parses path, resolving relative entries against cwd. URL
// lines and extended #EXT directives are ignored per spec.md §4.6.
func FromM3U(cwd, path string) (*playlist.Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IoError, err, "open "+path)
	}
	defer f.Close()

	var entries []song.SongEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.Contains(line, "://") {
			continue
		}
		p := line
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		entries = append(entries, song.NewUnloaded(song.NewFile(p)))
	}
	if err := sc.Err(); err != nil {
		return nil, apperr.Wrap(apperr.IoError, err, "scan "+path)
	}

	return playlist.FromEntries(playlist.PlaylistFile, entries), nil
}

// ToM3U writes each entry's absolute path, one per line.
func ToM3U(p *playlist.Playlist, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return apperr.Wrap(apperr.IoError, err, "create "+path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	w.WriteString("#EXTM3U\n")
	for _, entry := range p.Contents() {
		abs, err := filepath.Abs(entry.File().FilePath)
		if err != nil {
			abs = entry.File().FilePath
		}
		w.WriteString(abs)
		w.WriteString("\n")
	}
	return w.Flush()
}

// FromDirectory reads one directory level, keeping regular files only,
// sorted by file name (alphanumeric, case-insensitive).
func FromDirectory(dir string) (*playlist.Playlist, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperr.Wrap(apperr.IoError, err, "read dir "+dir)
	}

	var names []string
	for _, e := range ents {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	entries := make([]song.SongEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, song.NewUnloaded(song.NewFile(filepath.Join(dir, n))))
	}
	return playlist.FromEntries(playlist.DirectoryListing, entries), nil
}

// WalkSorted recursively lists playable files under root, depth-first,
// directories before files at each level, alphanumeric compare — the
// order spec.md §4.6 mandates for playlist_append.
func WalkSorted(root string) ([]string, error) {
	var out []string
	var walk func(dir string) error
	walk = func(dir string) error {
		ents, err := os.ReadDir(dir)
		if err != nil {
			return apperr.Wrap(apperr.IoError, err, "read dir "+dir)
		}
		sort.Slice(ents, func(i, j int) bool {
			if ents[i].IsDir() != ents[j].IsDir() {
				return ents[i].IsDir()
			}
			return strings.ToLower(ents[i].Name()) < strings.ToLower(ents[j].Name())
		})
		for _, e := range ents {
			full := filepath.Join(dir, e.Name())
			if e.IsDir() {
				if err := walk(full); err != nil {
					return err
				}
				continue
			}
			if song.Playable(full) {
				out = append(out, full)
			}
		}
		return nil
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, apperr.Wrap(apperr.IoError, err, "stat "+root)
	}
	if !info.IsDir() {
		if song.Playable(root) {
			return []string{root}, nil
		}
		return nil, apperr.New(apperr.NotAudioFile, root)
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return out, nil
}
