package library

import (
	"net/http"
	"path/filepath"
	"strings"

	"gigmaster/metadata"
	"gigmaster/model"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the song api on r:
//
//	GET    /songs
//	GET    /songs/:id
//	POST   /songs
//	PUT    /songs/:id
//	DELETE /songs/:id
//	GET    /lyrics?file=
func (l *Library) RegisterRoutes(r gin.IRouter) {
	r.GET("/songs", l.GetSongs)
	r.GET("/songs/:id", l.GetSong)
	r.POST("/songs", l.PostSong)
	r.PUT("/songs/:id", l.PutSong)
	r.DELETE("/songs/:id", l.DeleteSong)

	r.GET("/lyrics", l.GetLyrics)
}

// SongRequest is the body of POST /songs and PUT /songs/:id.
type SongRequest struct {
	Title         string       `json:"title"`
	Artist        string       `json:"artist"`
	BPM           model.Number `json:"bpm"`
	TimeSignature string       `json:"timeSignature"`
	Key           string       `json:"key"`
	Genre         string       `json:"genre"`
	Duration      model.Number `json:"duration"`
	Lyrics        string       `json:"lyrics"`
}

// Metadata is the sidecar for the request: every field but the lyrics.
func (r *SongRequest) Metadata() *model.SongMetadata {
	return &model.SongMetadata{
		Title:         r.Title,
		Artist:        r.Artist,
		BPM:           r.BPM,
		TimeSignature: r.TimeSignature,
		Key:           r.Key,
		Genre:         r.Genre,
		Duration:      r.Duration,
	}
}

// GetSongs handles: GET /songs
//
// Query:
//
//   - q: optional, keeps the songs whose title or artist contains q (case-insensitive)
//
// Response: 200: [{id, title, artist, bpm, timeSignature, key, genre, duration}, ...]
func (l *Library) GetSongs(c *gin.Context) {
	songs := l.Songs()

	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if q == "" {
		c.JSON(http.StatusOK, songs)
		return
	}

	filtered := make([]model.Song, 0, len(songs))
	for _, s := range songs {
		if strings.Contains(strings.ToLower(s.Title), q) ||
			strings.Contains(strings.ToLower(s.Artist), q) {
			filtered = append(filtered, s)
		}
	}
	c.JSON(http.StatusOK, filtered)
}

// GetSong handles: GET /songs/:id
//
// Response: 200: {song: {...}, lyrics: "..."}, 404 if the song is not in the index.
func (l *Library) GetSong(c *gin.Context) {
	id := filepath.Base(c.Param("id"))

	song, ok := l.Song(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "song not found"})
		return
	}

	lyrics, err := l.store.ReadLyrics(id)
	if err != nil {
		metadata.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"song": song, "lyrics": lyrics})
}

// GetLyrics handles: GET /lyrics?file={song id}
//
// Response:
//
//   - 200: the raw lyrics, text/plain
//   - 400: no file given
//   - 403: file is not a plain file name of the library root
//   - 404: no such file
func (l *Library) GetLyrics(c *gin.Context) {
	file := c.Query("file")
	if file == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Filename required"})
		return
	}

	lyrics, err := l.store.ReadLyrics(file)
	if err != nil {
		metadata.RespondError(c, err)
		return
	}

	c.String(http.StatusOK, lyrics)
}

// PostSong handles: POST /songs
//
// Body: {title, artist, bpm, timeSignature, key, genre, duration, lyrics}
//
// The song id is derived from the title ("Test Song" -> "test-song.txt").
// An existing song with the same id is overwritten.
//
// Response:
//
//   - 200: {success: true, id: "test-song.txt"}
//   - 400: title or lyrics missing
//   - 500: the files could not be written
func (l *Library) PostSong(c *gin.Context) {
	req := new(SongRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title == "" || req.Lyrics == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and Lyrics are required"})
		return
	}

	id := model.DeriveID(req.Title, model.LyricsExt)
	if err := l.writeSong(id, req); err != nil {
		metadata.RespondError(c, err)
		return
	}

	l.rescan()
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// PutSong handles: PUT /songs/:id
//
// Body: same as POST /songs. Lyrics and sidecar are replaced, not merged.
//
// Response:
//
//   - 200: {success: true}, the index is already up to date
//   - 404: no such song in the library root
//   - 500: the files could not be written
func (l *Library) PutSong(c *gin.Context) {
	id := filepath.Base(c.Param("id"))
	if !l.store.SongExists(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "song not found"})
		return
	}

	req := new(SongRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := l.writeSong(id, req); err != nil {
		metadata.RespondError(c, err)
		return
	}

	l.rescan()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteSong handles: DELETE /songs/:id
//
// Lyrics, sidecar and backing track are removed. Deleting twice is fine.
func (l *Library) DeleteSong(c *gin.Context) {
	id := filepath.Base(c.Param("id"))

	if err := l.store.DeleteSong(id); err != nil {
		metadata.RespondError(c, err)
		return
	}
	if l.tracks != nil {
		if err := l.tracks.Remove(id); err != nil {
			metadata.RespondError(c, err)
			return
		}
	}

	l.rescan()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// writeSong writes the lyric file, then the sidecar.
func (l *Library) writeSong(id string, req *SongRequest) error {
	if err := l.store.WriteLyrics(id, req.Lyrics); err != nil {
		return err
	}
	return l.store.WriteSongMetadata(id, req.Metadata())
}

// rescan refreshes the index after an api write, so the response
// is not racing the watcher. Scan errors are logged by Scan.
func (l *Library) rescan() {
	_, _ = l.Scan(TriggerAPI)
}
