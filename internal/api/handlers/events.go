package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	apperrors "github.com/lifelog-api/lifelog/internal/errors"
	"github.com/lifelog-api/lifelog/internal/store"
)

// CreateEvent handles POST /events. The request body is the event document;
// the store assigns the id and starts the conversation log empty.
func (h *Handler) CreateEvent(c *gin.Context) {
	var ev store.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		h.respondError(c, apperrors.InvalidArgument("invalid event payload", err))
		return
	}

	id, err := h.events.Create(c.Request.Context(), &ev)
	if err != nil {
		h.respondError(c, err)
		return
	}

	log.WithFields(log.Fields{
		"event_id": id.Hex(),
		"title":    ev.Title,
	}).Info("event created")
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Event stored",
		"event_id": id.Hex(),
	})
}

// GetEvent handles GET /events/:id.
func (h *Handler) GetEvent(c *gin.Context) {
	id, err := store.ParseEventID(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	ev, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		log.WithField("event_id", id.Hex()).Warn("event not found")
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

type appendTurnRequest struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// AppendConversationTurn handles POST /events/:id/conversation. The turn
// number is assigned by the store, never by the caller.
func (h *Handler) AppendConversationTurn(c *gin.Context) {
	id, err := store.ParseEventID(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req appendTurnRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.InvalidArgument("invalid conversation payload", err))
		return
	}

	turn, err := h.events.AppendTurn(c.Request.Context(), id, req.Question, req.Response)
	if err != nil {
		h.respondError(c, err)
		return
	}

	log.WithFields(log.Fields{
		"event_id": id.Hex(),
		"turn":     turn,
	}).Info("conversation turn added")
	c.JSON(http.StatusOK, gin.H{
		"message": "Turn added",
		"turn":    turn,
	})
}

// SearchEvents handles GET /events/search?q=keyword.
func (h *Handler) SearchEvents(c *gin.Context) {
	results, err := h.events.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
