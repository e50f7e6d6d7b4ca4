package library

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"gigmaster/metadata"
	"gigmaster/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t      *testing.T
	layout model.Layout
	lib    *Library
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	gin.SetMode(gin.TestMode)

	layout := newTestLayout(t)
	lib := New(metadata.NewStore(layout))

	r := gin.New()
	lib.RegisterRoutes(r.Group("/api"))

	return &testAPI{t: t, layout: layout, lib: lib, router: r}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) songs() map[string]model.Song {
	w := a.do(http.MethodGet, "/api/songs", nil)
	require.Equal(a.t, http.StatusOK, w.Code)

	var songs []model.Song
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &songs))
	return songsByID(songs)
}

func TestGetSongsListsEveryLyricFile(t *testing.T) {
	a := newTestAPI(t)
	writeFile(t, a.layout.LyricsPath("one.txt"), "1")
	writeFile(t, a.layout.SidecarPath("one.txt"), "artist: Someone\n")
	writeFile(t, a.layout.LyricsPath("two.txt"), "2")
	writeFile(t, a.layout.SidecarPath("two.txt"), "artist: [unclosed\n")
	_, err := a.lib.Scan(TriggerStartup)
	require.NoError(t, err)

	songs := a.songs()
	require.Len(t, songs, 2)
	assert.Equal(t, "Someone", songs["one.txt"].Artist)
	assert.Equal(t, model.DefaultArtist, songs["two.txt"].Artist)
	assert.Equal(t, model.DefaultGenre, songs["two.txt"].Genre)

	w := a.do(http.MethodGet, "/api/songs?q=someone", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var filtered []model.Song
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "one.txt", filtered[0].ID)
}

func TestGetLyrics(t *testing.T) {
	a := newTestAPI(t)
	writeFile(t, a.layout.LyricsPath("song.txt"), "hello\nworld")

	tests := []struct {
		name string
		url  string
		code int
		body string
	}{
		{"ok", "/api/lyrics?file=song.txt", http.StatusOK, "hello\nworld"},
		{"missing param", "/api/lyrics", http.StatusBadRequest, ""},
		{"traversal", "/api/lyrics?file=../../etc/passwd", http.StatusForbidden, ""},
		{"dotdot", "/api/lyrics?file=..", http.StatusForbidden, ""},
		{"absolute", "/api/lyrics?file=/etc/passwd", http.StatusForbidden, ""},
		{"not found", "/api/lyrics?file=nope.txt", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(http.MethodGet, tt.url, nil)
			assert.Equal(t, tt.code, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
			assert.NotContains(t, w.Body.String(), "root:")
		})
	}
}

func TestPostSong(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodPost, "/api/songs", gin.H{"title": "Test Song", "lyrics": "la la"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "test-song.txt", resp.ID)

	assert.FileExists(t, a.layout.LyricsPath("test-song.txt"))
	assert.FileExists(t, a.layout.SidecarPath("test-song.txt"))

	song, ok := a.songs()["test-song.txt"]
	require.True(t, ok)
	assert.Equal(t, "Test Song", song.Title)
	assert.Equal(t, model.DefaultArtist, song.Artist)

	t.Run("title and lyrics are required", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/songs", gin.H{"title": "x"}).Code)
		assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/songs", gin.H{"lyrics": "x"}).Code)
	})

	t.Run("same title overwrites", func(t *testing.T) {
		w := a.do(http.MethodPost, "/api/songs", gin.H{"title": "TEST song", "lyrics": "second", "bpm": "90"})
		require.Equal(t, http.StatusOK, w.Code)

		b, err := os.ReadFile(a.layout.LyricsPath("test-song.txt"))
		require.NoError(t, err)
		assert.Equal(t, "second", string(b))
		assert.Equal(t, 90, a.songs()["test-song.txt"].BPM)
	})

	t.Run("text duration is 0, not a bad request", func(t *testing.T) {
		w := a.do(http.MethodPost, "/api/songs", gin.H{"title": "Gig Song", "artist": "The Band", "lyrics": "la", "duration": "3:45"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		song := a.songs()["gig-song.txt"]
		assert.Equal(t, "The Band", song.Artist)
		assert.Equal(t, 0, song.Duration)
	})
}

func TestPutSong(t *testing.T) {
	a := newTestAPI(t)
	require.Equal(t, http.StatusOK,
		a.do(http.MethodPost, "/api/songs", gin.H{"title": "Test Song", "lyrics": "la la", "genre": "Pop"}).Code)

	w := a.do(http.MethodPut, "/api/songs/test-song.txt",
		gin.H{"title": "Test Song", "lyrics": "new text", "artist": "X"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/lyrics?file=test-song.txt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new text", w.Body.String())

	// no watcher here: the index must already be up to date
	song := a.songs()["test-song.txt"]
	assert.Equal(t, "X", song.Artist)
	assert.Equal(t, model.DefaultGenre, song.Genre, "full replace, not merge")

	t.Run("unknown song", func(t *testing.T) {
		w := a.do(http.MethodPut, "/api/songs/nope.txt", gin.H{"title": "t", "lyrics": "l"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoFileExists(t, a.layout.LyricsPath("nope.txt"))
	})
}

func TestDeleteSongIsIdempotent(t *testing.T) {
	a := newTestAPI(t)
	require.Equal(t, http.StatusOK,
		a.do(http.MethodPost, "/api/songs", gin.H{"title": "Test Song", "lyrics": "la la"}).Code)

	for i := 0; i < 2; i++ {
		w := a.do(http.MethodDelete, "/api/songs/test-song.txt", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success": true}`, w.Body.String())
	}

	assert.NoFileExists(t, a.layout.LyricsPath("test-song.txt"))
	assert.NoFileExists(t, a.layout.SidecarPath("test-song.txt"))
	assert.NotContains(t, a.songs(), "test-song.txt")
}

func TestGetSong(t *testing.T) {
	a := newTestAPI(t)
	require.Equal(t, http.StatusOK,
		a.do(http.MethodPost, "/api/songs", gin.H{"title": "Test Song", "lyrics": "la la", "key": "A"}).Code)

	w := a.do(http.MethodGet, "/api/songs/test-song.txt", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Song   model.Song `json:"song"`
		Lyrics string     `json:"lyrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "A", resp.Song.Key)
	assert.Equal(t, "la la", resp.Lyrics)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/songs/nope.txt", nil).Code)
}
