package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// this file defines where songs, sidecars, setlists and backing tracks
// live inside the library root.

const EnvGigmasterRoot = "GIGMASTER_ROOT"

const (
	LyricsExt   = ".txt"
	MetadataExt = ".yaml"
	SetlistExt  = ".json"

	MetadataDirname = "properties"
	SetlistsDirname = "setlists"
	AudioDirname    = "audio"

	AudioStaticServePath = "/" + AudioDirname
)

// Layout is a library root directory:
//
//	{Root}/*.txt
//	{Root}/properties/*.yaml
//	{Root}/setlists/*.json
//	{Root}/audio/*.mp3
type Layout struct {
	Root string
}

// NewLayout returns the Layout of root, made absolute.
//
// An empty root falls back to {GIGMASTER_ROOT} and then to ./lyrics.
func NewLayout(root string) (Layout, error) {
	if root == "" {
		root = os.Getenv(EnvGigmasterRoot)
	}
	if root == "" {
		root = "lyrics"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, err
	}
	return Layout{Root: abs}, nil
}

func (l Layout) LyricsDir() string   { return l.Root }
func (l Layout) MetadataDir() string { return filepath.Join(l.Root, MetadataDirname) }
func (l Layout) SetlistsDir() string { return filepath.Join(l.Root, SetlistsDirname) }
func (l Layout) AudioDir() string    { return filepath.Join(l.Root, AudioDirname) }

// Ensure creates the directories of the layout if they do not exist.
func (l Layout) Ensure() error {
	if l.Root == "" {
		return errors.New("empty library root")
	}
	for _, dir := range []string{l.LyricsDir(), l.MetadataDir(), l.SetlistsDir(), l.AudioDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// -------- file names --------

// IsLyricsFile reports whether name is a song lyric file (*.txt).
func IsLyricsFile(name string) bool {
	return filepath.Ext(name) == LyricsExt
}

// TrimLyricsExt returns "song" for "song.txt".
func TrimLyricsExt(songID string) string {
	return strings.TrimSuffix(songID, LyricsExt)
}

// SidecarName returns "{name}.yaml" for the song id "{name}.txt".
func SidecarName(songID string) string {
	return TrimLyricsExt(songID) + MetadataExt
}

// -------- root + file name --------

func (l Layout) LyricsPath(songID string) string {
	return filepath.Join(l.LyricsDir(), songID)
}

// SidecarPath returns {Root}/properties/{name}.yaml
func (l Layout) SidecarPath(songID string) string {
	return filepath.Join(l.MetadataDir(), SidecarName(songID))
}

func (l Layout) SetlistPath(setlistID string) string {
	return filepath.Join(l.SetlistsDir(), setlistID)
}

// DeriveID turns a human name into a file name:
// lowercased, every UTF-16 code unit outside [a-z0-9] replaced by '-',
// then ext. A rune outside the BMP is two code units, so two dashes.
//
//	DeriveID("Test Song", ".txt") == "test-song.txt"
//	DeriveID("🎸 Song", ".txt") == "---song.txt"
func DeriveID(name, ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r > 0xFFFF:
			b.WriteString("--")
		default:
			b.WriteByte('-')
		}
	}
	return b.String() + ext
}
