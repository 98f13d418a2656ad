package handler

import (
	"errors"
	"net/http"
	"strconv"

	"supportchat/backend/internal/chathub"
	"supportchat/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// requireAdmin aborts with 401 unless the caller's session holds the admin
// capability. Authorization failures are reported distinctly from not-found so
// clients can tell "you may not see this" from "this does not exist".
func (h *Handler) requireAdmin(c *gin.Context) {
	sid := h.sessionID(c)
	if sid == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	isAdmin, err := h.Storage.IsAdminSession(sid)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check session"})
		return
	}
	if !isAdmin {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}

// AdminLogin verifies credentials and grants the admin capability to the
// caller's session. Unknown username and wrong password are indistinguishable.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	admin, err := h.Storage.GetAdminByUsername(req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrAdminNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	if !admin.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	sid, err := h.ensureSession(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	if err := h.Storage.SetAdminSession(sid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminLogout clears the caller's admin capability and rotates the session.
func (h *Handler) AdminLogout(c *gin.Context) {
	if sid := h.sessionID(c); sid != "" {
		if err := h.Storage.ClearAdminSession(sid); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
			return
		}
	}
	if _, err := h.rotateSession(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminConversations lists all conversations, most recently active first, with
// message counts and last messages.
func (h *Handler) AdminConversations(c *gin.Context) {
	summaries, err := h.Service.ListConversations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// AdminConversation returns one conversation with its full transcript.
func (h *Handler) AdminConversation(c *gin.Context) {
	id, ok := h.conversationID(c)
	if !ok {
		return
	}

	conv, history, err := h.Service.TranscriptByID(id)
	if err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": conv,
		"messages":     history,
	})
}

// AdminReply appends an admin reply to the target conversation and returns the
// persisted message.
func (h *Handler) AdminReply(c *gin.Context) {
	id, ok := h.conversationID(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	msg, err := h.Service.SendAdminReply(id, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, chathub.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
		case errors.Is(err, storage.ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reply"})
		}
		return
	}
	c.JSON(http.StatusOK, msg)
}

// conversationID parses the :id path parameter. A non-numeric id is reported as
// not found, matching how a lookup of a nonexistent id behaves.
func (h *Handler) conversationID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return 0, false
	}
	return uint(id), true
}
