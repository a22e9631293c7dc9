package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lifelog-api/lifelog/internal/logging"
)

// GetLogs handles GET /logs?level=&limit=. Lines come back newest-first,
// filtered by level token when one is given.
func (h *Handler) GetLogs(c *gin.Context) {
	limit := logging.DefaultTailLimit
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	lines, err := logging.Tail(h.logFile, c.Query("level"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": lines})
}
