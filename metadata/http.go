package metadata

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the setlist api on r:
//
//	GET    /setlists
//	GET    /setlists/:id
//	POST   /setlists      {name}
//	PUT    /setlists/:id  {songs}
//	DELETE /setlists/:id
func (s *Store) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/setlists")

	group.GET("", s.GetSetlists)
	group.GET("/:id", s.GetSetlist)
	group.POST("", s.PostSetlist)
	group.PUT("/:id", s.PutSetlist)
	group.DELETE("/:id", s.DeleteSetlistHandler)
}

// GetSetlists handles: GET /setlists
//
// Response: [{id, name, songs}, ...]
func (s *Store) GetSetlists(c *gin.Context) {
	setlists, err := s.ListSetlists()
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setlists)
}

func (s *Store) GetSetlist(c *gin.Context) {
	setlist, err := s.ReadSetlist(c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setlist)
}

type PostSetlistRequest struct {
	Name string `json:"name"`
}

// PostSetlist handles: POST /setlists
//
// Body: {name: string}
//
// Response:
//
//   - 200: {id, name, songs: []}
//   - 400: name missing, or a setlist with the same id exists
func (s *Store) PostSetlist(c *gin.Context) {
	req := new(PostSetlistRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setlist, err := s.CreateSetlist(req.Name)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setlist)
}

type PutSetlistRequest struct {
	Songs []string `json:"songs"`
}

// PutSetlist handles: PUT /setlists/:id
//
// Body: {songs: [songID, ...]}, replaces the songs of the setlist.
//
// Response:
//
//   - 200: the updated {id, name, songs}
//   - 404: no such setlist
func (s *Store) PutSetlist(c *gin.Context) {
	req := new(PutSetlistRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setlist, err := s.ReplaceSetlistSongs(c.Param("id"), req.Songs)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setlist)
}

// DeleteSetlistHandler handles: DELETE /setlists/:id
func (s *Store) DeleteSetlistHandler(c *gin.Context) {
	if err := s.DeleteSetlist(c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
