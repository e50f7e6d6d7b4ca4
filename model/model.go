package model

import "github.com/cdfmlr/crud/orm"

// Defaults for the song fields that are missing from a sidecar.
const (
	DefaultArtist        = "Unknown Artist"
	DefaultKey           = "-"
	DefaultTimeSignature = "-"
	DefaultGenre         = "General"
)

// Song is an entry of the library index.
//
// It is assembled from a lyric file and its metadata sidecar,
// the lyrics themselves are not part of it.
type Song struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Artist        string        `json:"artist"`
	BPM           int           `json:"bpm"`
	TimeSignature string        `json:"timeSignature"`
	Key           string        `json:"key"`
	Genre         string        `json:"genre"`
	Duration      int           `json:"duration"`
	BackingTrack  *BackingTrack `json:"backingTrack,omitempty"`
}

// SongMetadata is the content of a sidecar file: R/properties/{name}.yaml
type SongMetadata struct {
	Title         string `yaml:"title,omitempty" json:"title"`
	Artist        string `yaml:"artist,omitempty" json:"artist"`
	BPM           Number `yaml:"bpm,omitempty" json:"bpm"`
	TimeSignature string `yaml:"timeSignature,omitempty" json:"timeSignature"`
	Key           string `yaml:"key,omitempty" json:"key"`
	Genre         string `yaml:"genre,omitempty" json:"genre"`
	Duration      Number `yaml:"duration,omitempty" json:"duration"`
}

// NewSong builds the index entry for the lyric file id.
// A nil meta (no sidecar, or a broken one) gives a song with all defaults.
func NewSong(id string, meta *SongMetadata) Song {
	if meta == nil {
		meta = &SongMetadata{}
	}

	song := Song{
		ID:            id,
		Title:         meta.Title,
		Artist:        meta.Artist,
		BPM:           int(meta.BPM),
		TimeSignature: meta.TimeSignature,
		Key:           meta.Key,
		Genre:         meta.Genre,
		Duration:      int(meta.Duration),
	}

	if song.Title == "" {
		song.Title = TrimLyricsExt(id)
	}
	if song.Artist == "" {
		song.Artist = DefaultArtist
	}
	if song.TimeSignature == "" {
		song.TimeSignature = DefaultTimeSignature
	}
	if song.Key == "" {
		song.Key = DefaultKey
	}
	if song.Genre == "" {
		song.Genre = DefaultGenre
	}

	return song
}

// Setlist is an ordered list of song ids.
//
// Songs may reference ids that no longer exist in the library.
type Setlist struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Songs []string `json:"songs"`
}

// BackingTrack is an audio file that belongs to a song: R/audio/{name}.mp3
type BackingTrack struct {
	URL    string `json:"url"`
	Format string `json:"format"`
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
}

// ScanRecord is a row of the scan journal.
type ScanRecord struct {
	orm.BasicModel

	Trigger        string `json:"trigger"`
	Songs          int    `json:"songs"`
	MetadataErrors int    `json:"metadataErrors"`
	DurationMs     int64  `json:"durationMs"`
	Error          string `json:"error,omitempty"`
}
