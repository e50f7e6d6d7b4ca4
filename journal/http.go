package journal

import (
	"errors"
	"net/http"

	"gigmaster/model"

	"github.com/gin-gonic/gin"
)

func (j *Journal) RegisterRoutes(r gin.IRouter) {
	r.GET("/scans", j.GetScans)
}

type ScansRequest struct {
	Limit int `form:"limit"`
}

type ScansResponse struct {
	Total int64              `json:"total"`
	Scans []model.ScanRecord `json:"scans"`
}

// GetScans handles: GET /scans
//
// Query:
//
//   - limit: int, [1, 100], default 20
//
// Response:
//
//   - 200: OK: {total: n, scans: [{scan1}, {scan2}, ...]}, newest first
//   - 400: Bad Request: {error: "..."}
//   - 500: Internal Server Error: {error: "..."}
func (j *Journal) GetScans(c *gin.Context) {
	req := new(ScansRequest)
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validateScansRequest(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total, err := j.Count(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	scans, err := j.Recent(c, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ScansResponse{Total: total, Scans: scans})
}

func validateScansRequest(req *ScansRequest) error {
	if req.Limit == 0 { // default
		req.Limit = 20
	} else if req.Limit < 1 || req.Limit > 100 {
		return errors.New("query limit should be in [1, 100]")
	}
	return nil
}
