package model

import (
	"os"

	"github.com/dhowden/tag"
)

// BackingTrackFromAudioFile reads the tags of an audio file.
//
// Only Format, Title, Artist and Album are filled,
// URL is left blank for the caller.
func BackingTrackFromAudioFile(path string) (*BackingTrack, error) {
	// open file
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// read metadata
	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	return &BackingTrack{
		Format: string(m.FileType()),
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
	}, nil
}
