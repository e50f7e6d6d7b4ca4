// Package metadata reads and writes the files of a library root:
// lyrics, their YAML sidecars and the JSON setlists.
//
// Nothing is cached: every call goes to the filesystem.
// It also serves the setlist CRUD api.
package metadata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gigmaster/model"

	"github.com/cdfmlr/crud/log"
	"gopkg.in/yaml.v3"
)

var logger = log.ZoneLogger("gigmaster/metadata")

var (
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
	ErrConflict     = errors.New("already exists")
	ErrInvalid      = errors.New("invalid request")
)

// Store is the file store of one library root.
type Store struct {
	layout model.Layout
}

func NewStore(layout model.Layout) *Store {
	return &Store{layout: layout}
}

func (s *Store) Layout() model.Layout {
	return s.layout
}

// resolve joins the base name of name to dir.
//
// Anything that is not already a plain file name (path separators,
// "." or "..") is refused, so the result never leaves dir.
func resolve(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty file name", ErrInvalid)
	}

	base := filepath.Base(name)
	if base != name || strings.ContainsAny(name, `/\`) || base == "." || base == ".." {
		return "", fmt.Errorf("%w: %q", ErrAccessDenied, name)
	}

	full := filepath.Join(dir, base)
	rel, err := filepath.Rel(dir, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrAccessDenied, name)
	}
	return full, nil
}

// ResolveSong returns the path of the lyric file name inside the library root.
func (s *Store) ResolveSong(name string) (string, error) {
	return resolve(s.layout.LyricsDir(), name)
}

// ResolveSetlist returns the path of the setlist file name inside the setlists dir.
func (s *Store) ResolveSetlist(name string) (string, error) {
	return resolve(s.layout.SetlistsDir(), name)
}

// SongExists reports whether the lyric file songID is a regular file in the root.
func (s *Store) SongExists(songID string) bool {
	p, err := s.ResolveSong(songID)
	if err != nil {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}

// ListLyricFiles returns the names of the *.txt files of the root (one level).
func (s *Store) ListLyricFiles() ([]string, error) {
	entries, err := os.ReadDir(s.layout.LyricsDir())
	if err != nil {
		return nil, fmt.Errorf("ListLyricFiles: ReadDir failed: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !model.IsLyricsFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// ReadLyrics returns the raw text of the lyric file songID.
func (s *Store) ReadLyrics(songID string) (string, error) {
	p, err := s.ResolveSong(songID)
	if err != nil {
		return "", err
	}

	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: song %s", ErrNotFound, songID)
		}
		// a directory or an unreadable file: nothing to serve
		return "", fmt.Errorf("%w: song %s: %v", ErrNotFound, songID, err)
	}
	return string(b), nil
}

func (s *Store) WriteLyrics(songID, lyrics string) error {
	p, err := s.ResolveSong(songID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, []byte(lyrics), 0644); err != nil {
		return fmt.Errorf("WriteLyrics: WriteFile failed: %w", err)
	}
	return nil
}

// ReadSongMetadata reads the sidecar of songID.
//
// It returns (nil, nil) if there is no sidecar,
// and an error if the sidecar can not be read or parsed.
func (s *Store) ReadSongMetadata(songID string) (*model.SongMetadata, error) {
	if _, err := s.ResolveSong(songID); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(s.layout.SidecarPath(songID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ReadSongMetadata: ReadFile failed: %w", err)
	}

	meta := new(model.SongMetadata)
	if err := yaml.Unmarshal(b, meta); err != nil {
		return nil, fmt.Errorf("ReadSongMetadata: bad yaml in %s: %w", model.SidecarName(songID), err)
	}
	return meta, nil
}

// WriteSongMetadata replaces the sidecar of songID with meta.
func (s *Store) WriteSongMetadata(songID string, meta *model.SongMetadata) error {
	if _, err := s.ResolveSong(songID); err != nil {
		return err
	}

	b, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("WriteSongMetadata: Marshal failed: %w", err)
	}
	if err := os.WriteFile(s.layout.SidecarPath(songID), b, 0644); err != nil {
		return fmt.Errorf("WriteSongMetadata: WriteFile failed: %w", err)
	}
	return nil
}

// DeleteSong removes the lyric file and the sidecar of songID.
// Files that do not exist are not an error.
func (s *Store) DeleteSong(songID string) error {
	p, err := s.ResolveSong(songID)
	if err != nil {
		return err
	}

	for _, path := range []string{p, s.layout.SidecarPath(songID)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("DeleteSong: Remove failed: %w", err)
		}
	}

	logger.WithField("song", songID).Info("DeleteSong: success")
	return nil
}
