package audiofilestore

import (
	"gigmaster/model"

	"github.com/gin-gonic/gin"
)

// RegisterStatic serves the backing tracks on r: /audio/{file name}
func (a *AudioFileStore) RegisterStatic(r gin.IRouter) {
	r.Static(model.AudioStaticServePath, a.FileDir)
}

// RegisterRoutes mounts the upload api on the api group r.
// songExists guards the upload: a backing track needs its song.
func (a *AudioFileStore) RegisterRoutes(r gin.IRouter, songExists func(songID string) bool, onChange func()) {
	r.POST("/songs/:id/audio", a.PostSongAudio(songExists, onChange))
}
