// Package library owns the in-memory song index.
//
// The index is rebuilt from scratch by Scan (on startup, on every change
// seen by the watcher, and after api writes) and swapped in atomically:
// readers always see one complete scan.
package library

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gigmaster/metadata"
	"gigmaster/model"

	"github.com/cdfmlr/crud/log"
)

var logger = log.ZoneLogger("gigmaster/library")

// Scan triggers, recorded in the journal.
const (
	TriggerStartup = "startup"
	TriggerWatcher = "watcher"
	TriggerAPI     = "api"
)

// Broadcaster is told after every scan that replaced the index.
type Broadcaster interface {
	Refresh()
}

// Recorder keeps the history of scans.
type Recorder interface {
	Record(ctx context.Context, rec *model.ScanRecord) error
}

// BackingTracks finds and removes the audio files of songs.
type BackingTracks interface {
	Lookup(songID string) *model.BackingTrack
	Remove(songID string) error
}

// Index is the result of one scan.
type Index struct {
	Songs     []model.Song
	ScannedAt time.Time
}

// Library is the single owner of the song index.
type Library struct {
	store       *metadata.Store
	broadcaster Broadcaster
	recorder    Recorder
	tracks      BackingTracks

	scanMu sync.Mutex // one scan at a time, so an old scan never wins
	index  atomic.Pointer[Index]
}

// Option configures a Library. Options are applied in order by New.
type Option func(*Library)

func WithBroadcaster(b Broadcaster) Option {
	return func(l *Library) { l.broadcaster = b }
}

func WithRecorder(r Recorder) Option {
	return func(l *Library) { l.recorder = r }
}

func WithBackingTracks(t BackingTracks) Option {
	return func(l *Library) { l.tracks = t }
}

// New returns a Library with an empty index. Call Scan to fill it.
func New(store *metadata.Store, options ...Option) *Library {
	l := &Library{store: store}
	for _, opt := range options {
		opt(l)
	}
	l.index.Store(&Index{Songs: []model.Song{}})
	return l
}

func (l *Library) Store() *metadata.Store {
	return l.store
}

// Index returns the current index. It must not be modified.
func (l *Library) Index() *Index {
	return l.index.Load()
}

// Songs returns the songs of the current index. The slice must not be modified.
func (l *Library) Songs() []model.Song {
	return l.Index().Songs
}

// Song returns the index entry of id.
func (l *Library) Song(id string) (model.Song, bool) {
	for _, s := range l.Songs() {
		if s.ID == id {
			return s, true
		}
	}
	return model.Song{}, false
}

// Scan lists the lyric files of the root, joins each with its sidecar,
// and replaces the index with the result.
//
// A sidecar that can not be read or parsed gives a song with defaults.
// If the root itself can not be listed, the index is left as it was.
func (l *Library) Scan(trigger string) (*Index, error) {
	l.scanMu.Lock()
	defer l.scanMu.Unlock()

	start := time.Now()
	rec := &model.ScanRecord{Trigger: trigger}

	idx, err := l.scan(rec)

	rec.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		rec.Error = err.Error()
		logger.WithField("trigger", trigger).WithError(err).Error("Scan: failed")
	} else {
		l.index.Store(idx)
		rec.Songs = len(idx.Songs)
		logger.WithField("trigger", trigger).
			WithField("songs", rec.Songs).
			WithField("metadataErrors", rec.MetadataErrors).
			WithField("took", time.Since(start)).
			Info("Scan: index replaced")

		if l.broadcaster != nil {
			l.broadcaster.Refresh()
		}
	}

	if l.recorder != nil {
		if err := l.recorder.Record(context.Background(), rec); err != nil {
			logger.WithError(err).Warn("Scan: Record failed")
		}
	}

	return idx, err
}

func (l *Library) scan(rec *model.ScanRecord) (*Index, error) {
	names, err := l.store.ListLyricFiles()
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	songs := make([]model.Song, 0, len(names))
	for _, name := range names {
		meta, err := l.store.ReadSongMetadata(name)
		if err != nil {
			rec.MetadataErrors++
			logger.WithField("song", name).WithError(err).
				Warn("scan: metadata ignored, using defaults")
			meta = nil
		}

		song := model.NewSong(name, meta)
		if l.tracks != nil {
			song.BackingTrack = l.tracks.Lookup(name)
		}
		songs = append(songs, song)
	}

	return &Index{Songs: songs, ScannedAt: time.Now()}, nil
}
