package handlers

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	apperrors "github.com/lifelog-api/lifelog/internal/errors"
)

// UploadImage handles POST /upload with a multipart "file" field. The blob
// store assigns the file id; nothing links the image to an event.
func (h *Handler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warn("image upload rejected: no file provided")
		h.respondError(c, apperrors.InvalidArgument("no file provided", err))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, apperrors.Internal("failed to read upload", err))
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		h.respondError(c, apperrors.Internal("failed to read upload", err))
		return
	}

	fileID, err := h.blobs.Put(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		h.respondError(c, err)
		return
	}

	log.WithFields(log.Fields{
		"file_id":  fileID,
		"filename": fileHeader.Filename,
		"bytes":    len(data),
	}).Info("image uploaded")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Image stored",
		"file_id": fileID,
	})
}

// GetImage handles GET /image/:id, answering with the raw stored bytes.
func (h *Handler) GetImage(c *gin.Context) {
	img, err := h.blobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(img.Filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if img.Filename != "" {
		// FormatMediaType quotes and escapes the filename, so a stored name
		// containing quotes cannot corrupt the header.
		c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": img.Filename}))
	}
	c.Data(http.StatusOK, contentType, img.Data)
}
