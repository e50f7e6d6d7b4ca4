package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gigmaster/audiofilestore"
	"gigmaster/journal"
	"gigmaster/library"
	"gigmaster/realtime"

	"github.com/cdfmlr/crud/router"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// App is everything the router serves.
type App struct {
	Library  *library.Library
	Audio    *audiofilestore.AudioFileStore
	Hub      *realtime.Hub
	Journal  *journal.Journal // nil: journal disabled
	Frontend string
}

func MakeRouter(app *App) *gin.Engine {
	r := router.NewRouter()
	r.Use(cors.Default())

	api := r.Group("/api")

	// songs & lyrics
	app.Library.RegisterRoutes(api)

	// setlists
	app.Library.Store().RegisterRoutes(api)

	// backing tracks: upload + static audio file
	app.Audio.RegisterRoutes(api, app.Library.Store().SongExists, func() {
		_, _ = app.Library.Scan(library.TriggerAPI)
	})
	app.Audio.RegisterStatic(r)

	// scan history
	if app.Journal != nil {
		app.Journal.RegisterRoutes(api)
	}

	// realtime refresh signal
	r.GET("/ws", app.Hub.ServeWS)

	// frontend, with fallback to the SPA entry point
	r.NoRoute(frontendHandler(app.Frontend, app.Hub))

	return r
}

// frontendHandler serves the files of dist and index.html for
// every other path. Unknown /api paths get a JSON 404, and
// websocket upgrades on any path join the hub.
func frontendHandler(dist string, hub *realtime.Hub) gin.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dist))
	index := filepath.Join(dist, "index.html")

	return func(c *gin.Context) {
		if realtime.IsUpgrade(c) {
			hub.ServeWS(c)
			return
		}

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/api" {
			c.JSON(http.StatusNotFound, gin.H{"error": "no such api: " + c.Request.Method + " " + path})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}

		if path != "/" && isFile(filepath.Join(dist, filepath.FromSlash(filepath.Clean("/"+path)))) {
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}

		if isFile(index) {
			c.File(index)
			return
		}
		c.String(http.StatusOK, "Build the frontend first.")
	}
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
