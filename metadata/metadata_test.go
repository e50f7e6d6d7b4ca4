package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"gigmaster/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	layout, err := model.NewLayout(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, layout.Ensure())
	return NewStore(layout)
}

func TestResolveSong(t *testing.T) {
	s := newTestStore(t)

	p, err := s.ResolveSong("song.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Layout().Root, "song.txt"), p)

	for _, name := range []string{"../song.txt", "../../etc/passwd", "/etc/passwd", "..", ".", `..\x.txt`, "a/b.txt"} {
		_, err := s.ResolveSong(name)
		assert.ErrorIs(t, err, ErrAccessDenied, name)
	}

	_, err = s.ResolveSong("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSongRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.WriteLyrics("a.txt", "line 1\nline 2"))
	require.NoError(t, s.WriteSongMetadata("a.txt", &model.SongMetadata{Title: "A", BPM: 100}))

	lyrics, err := s.ReadLyrics("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2", lyrics)

	meta, err := s.ReadSongMetadata("a.txt")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "A", meta.Title)
	assert.Equal(t, model.Number(100), meta.BPM)

	sidecar, err := os.ReadFile(s.Layout().SidecarPath("a.txt"))
	require.NoError(t, err)
	assert.NotContains(t, string(sidecar), "artist", "empty fields are left out")

	names, err := s.ListLyricFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, names)
	assert.True(t, s.SongExists("a.txt"))

	require.NoError(t, s.DeleteSong("a.txt"))
	require.NoError(t, s.DeleteSong("a.txt"))
	assert.False(t, s.SongExists("a.txt"))
	assert.NoFileExists(t, s.Layout().SidecarPath("a.txt"))

	_, err = s.ReadLyrics("a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadSongMetadata(t *testing.T) {
	s := newTestStore(t)

	meta, err := s.ReadSongMetadata("none.txt")
	assert.NoError(t, err)
	assert.Nil(t, meta)

	require.NoError(t, os.WriteFile(s.Layout().SidecarPath("bad.txt"), []byte("artist: [unclosed\n"), 0644))
	_, err = s.ReadSongMetadata("bad.txt")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(s.Layout().SidecarPath("odd.txt"),
		[]byte("title: Gig Song\nartist: The Band\nbpm: fast\nduration: \"3:45\"\n"), 0644))
	meta, err = s.ReadSongMetadata("odd.txt")
	require.NoError(t, err)
	assert.Equal(t, "Gig Song", meta.Title)
	assert.Equal(t, "The Band", meta.Artist)
	assert.Equal(t, model.Number(0), meta.BPM)
	assert.Equal(t, model.Number(0), meta.Duration)
}

func TestSetlists(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateSetlist("Set A")
	require.NoError(t, err)
	assert.Equal(t, &model.Setlist{ID: "set-a.json", Name: "Set A", Songs: []string{}}, created)

	_, err = s.CreateSetlist("set a")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.CreateSetlist("")
	assert.ErrorIs(t, err, ErrInvalid)

	updated, err := s.ReplaceSetlistSongs("set-a.json", []string{"b.txt", "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt", "a.txt"}, updated.Songs)

	_, err = s.ReplaceSetlistSongs("nope.json", []string{"a.txt"})
	assert.ErrorIs(t, err, ErrNotFound)

	// a broken file is left out of the listing
	require.NoError(t, os.WriteFile(s.Layout().SetlistPath("broken.json"), []byte("{"), 0644))

	all, err := s.ListSetlists()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Set A", all[0].Name)
	assert.Equal(t, []string{"b.txt", "a.txt"}, all[0].Songs)

	require.NoError(t, s.DeleteSetlist("set-a.json"))
	require.NoError(t, s.DeleteSetlist("set-a.json"))
	_, err = s.ReadSetlist("set-a.json")
	assert.ErrorIs(t, err, ErrNotFound)
}
