package audiofilestore

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// this file implements a api controller handling the upload of backing tracks.

type PostSongAudioRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"`
}

// PostSongAudio handles: POST /songs/:id/audio
//
// Body: multipart/form-data
//
//   - file: curl -F 'file=@backing.mp3'
//
// The file replaces the backing track of the song (if any).
//
// Response:
//
//   - 200: {success: true, backingTrack: {...}}
//   - 400: no file, or not an audio file
//   - 404: no such song
//   - 500: failed to save the file
func (a *AudioFileStore) PostSongAudio(songExists func(songID string) bool, onChange func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		songID := filepath.Base(c.Param("id"))
		if !songExists(songID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "song not found"})
			return
		}

		// bind file: https://github.com/gin-gonic/examples/blob/master/file-binding/main.go
		req := new(PostSongAudioRequest)
		if err := c.ShouldBind(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := checkUploadRequest(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := a.saveFile(c, songID, req.File); err != nil {
			logger.WithField("song", songID).WithError(err).Error("PostSongAudio: saveFile failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if onChange != nil {
			onChange()
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "backingTrack": a.Lookup(songID)})
	}
}

func checkUploadRequest(req *PostSongAudioRequest) error {
	if req.File == nil {
		return errors.New("file is required")
	}
	if !isMusicFile(guardFilename(req.File.Filename)) {
		return fmt.Errorf("unsupported audio file: %s (want one of %s)",
			req.File.Filename, strings.Join(supportedExts, ", "))
	}
	return nil
}

// saveFile stores the upload as {FileDir}/{song name}{ext},
// dropping the previous backing track first (it may have another ext).
func (a *AudioFileStore) saveFile(c *gin.Context, songID string, file *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(guardFilename(file.Filename)))

	if err := os.MkdirAll(a.FileDir, 0755); err != nil {
		return fmt.Errorf("saveFile: MkdirAll failed: %w", err)
	}
	if err := a.Remove(songID); err != nil {
		return fmt.Errorf("saveFile: %w", err)
	}

	dst := a.audioPath(songID, ext)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return fmt.Errorf("saveFile: SaveUploadedFile failed: %w", err)
	}

	logger.WithField("song", songID).WithField("path", dst).Info("saveFile: success")
	return nil
}

// guardFilename guards the filename:
//   - Only the base name is kept.
//   - If it has no extension, add ".mp3" to the end.
func guardFilename(filename string) string {
	filename = filepath.Base(filename)
	if filepath.Ext(filename) == "" {
		filename += ".mp3"
	}
	return filename
}
