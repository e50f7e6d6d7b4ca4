// Package audiofilestore keeps the backing tracks of songs in a local directory.
// Exposure an AudioFileStore with the following methods:
//   - Lookup: find the backing track of a song and read its tags
//   - Save: store an uploaded audio file as the backing track of a song
//   - Remove: delete the backing track of a song
//
// Exposure Routes:
//   - /audio: static audio file
//   - /songs/:id/audio: upload a backing track
package audiofilestore

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gigmaster/model"

	"github.com/cdfmlr/crud/log"
)

var logger = log.ZoneLogger("gigmaster/audiofilestore")

// supportedExts are the backing track formats, in lookup order.
var supportedExts = []string{".mp3", ".m4a", ".wav", ".flac", ".ogg"}

// AudioFileStore stores backing tracks in a local directory:
//
//	{FileDir}/{song name}.{ext}
//
// where {song name} is the song id without ".txt".
type AudioFileStore struct {
	FileDir string
	BaseUrl string
}

func NewAudioFileStore(fileDir, baseUrl string) *AudioFileStore {
	return &AudioFileStore{
		FileDir: fileDir,
		BaseUrl: baseUrl,
	}
}

// isMusicFile returns true if the file is a music file.
// It checks the file extension.
func isMusicFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range supportedExts {
		if ext == e {
			return true
		}
	}
	return false
}

// audioPath returns the path of the backing track of songID with ext.
func (a *AudioFileStore) audioPath(songID, ext string) string {
	return filepath.Join(a.FileDir, model.TrimLyricsExt(filepath.Base(songID))+ext)
}

// find returns the path of the existing backing track of songID, or "".
func (a *AudioFileStore) find(songID string) string {
	for _, ext := range supportedExts {
		p := a.audioPath(songID, ext)
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// audioUrl = BaseUrl + /audio + /{file name}
//
// Without a BaseUrl it is the relevant path: /audio/{file name}
func (a *AudioFileStore) audioUrl(path string) (string, error) {
	name := filepath.Base(path)
	if a.BaseUrl == "" {
		return model.AudioStaticServePath + "/" + url.PathEscape(name), nil
	}
	return url.JoinPath(a.BaseUrl, model.AudioStaticServePath, name)
}

// Lookup returns the backing track of songID, or nil if it has none.
//
// Tags are best effort: a file whose tags can not be read
// is still returned, with only URL and Format.
func (a *AudioFileStore) Lookup(songID string) *model.BackingTrack {
	path := a.find(songID)
	if path == "" {
		return nil
	}

	track, err := model.BackingTrackFromAudioFile(path)
	if err != nil {
		logger.WithField("path", path).WithError(err).
			Debug("Lookup: BackingTrackFromAudioFile failed")
		track = &model.BackingTrack{}
	}
	if track.Format == "" {
		track.Format = strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
	}

	track.URL, err = a.audioUrl(path)
	if err != nil {
		logger.WithField("path", path).WithError(err).Warn("Lookup: audioUrl failed")
		return nil
	}
	return track
}

// Remove deletes every backing track of songID. Missing files are not an error.
func (a *AudioFileStore) Remove(songID string) error {
	for _, ext := range supportedExts {
		err := os.Remove(a.audioPath(songID, ext))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("Remove: %w", err)
		}
	}
	return nil
}
