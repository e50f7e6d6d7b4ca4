package metadata

// This file provides some APIs for other packages to use.
// Saves them from mapping store errors to HTTP responses by hand.

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HTTPStatus maps a Store error to a response status code:
//
//   - ErrInvalid, ErrConflict: 400
//   - ErrAccessDenied: 403
//   - ErrNotFound: 404
//   - anything else: 500
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes {error: err} with the status of HTTPStatus(err).
// Server errors are logged.
func RespondError(c *gin.Context, err error) {
	code := HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		logger.WithContext(c).
			WithField("path", c.Request.URL.Path).
			WithError(err).
			Error("request failed")
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
