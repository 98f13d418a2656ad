package handler

import (
	"errors"
	"net/http"

	"supportchat/backend/internal/chathub"
	"supportchat/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	Message string `json:"message"`
}

// GetMessages returns the caller's full ordered transcript. Callers with no
// session or no conversation yet get an empty list.
func (h *Handler) GetMessages(c *gin.Context) {
	sid := h.sessionID(c)
	if sid == "" {
		c.JSON(http.StatusOK, []models.Message{})
		return
	}

	history, err := h.Service.Transcript(sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, history)
}

// SendMessage appends a visitor message for the caller's session, creating the
// session and conversation as needed, and returns the persisted message.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sid, err := h.ensureSession(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	msg, err := h.Service.SendVisitorMessage(sid, req.Message)
	if err != nil {
		if errors.Is(err, chathub.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}
	c.JSON(http.StatusOK, msg)
}
