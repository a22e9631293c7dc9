// Package handlers contains the HTTP handlers for the lifelog API: event
// CRUD, conversation append, image upload/retrieval, keyword search and
// operational log retrieval.
package handlers

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/lifelog-api/lifelog/internal/blob"
	apperrors "github.com/lifelog-api/lifelog/internal/errors"
	"github.com/lifelog-api/lifelog/internal/store"
)

// Handler bundles the injected stores used by every route.
type Handler struct {
	events  store.EventStore
	blobs   blob.Store
	logFile string
}

// New builds a Handler over the given stores. logFile is the path GET /logs
// reads back.
func New(events store.EventStore, blobs blob.Store, logFile string) *Handler {
	return &Handler{
		events:  events,
		blobs:   blobs,
		logFile: logFile,
	}
}

// respondError maps an error to its HTTP response. Client errors carry their
// descriptive message; server errors are logged in full and answered with an
// opaque message so no internal detail leaks to the caller.
func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatusCode >= 500 {
		log.WithFields(log.Fields{
			"code": appErr.Code,
			"path": c.Request.URL.Path,
		}).WithError(err).Error("request failed")
		c.JSON(appErr.HTTPStatusCode, gin.H{"error": "an unexpected error occurred"})
		return
	}
	c.JSON(appErr.HTTPStatusCode, gin.H{"error": appErr.Message})
}
