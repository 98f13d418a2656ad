package handler

import (
	"net/http"
	"time"

	"supportchat/backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

// signSession wraps the opaque session id in a signed JWT carried by the
// session cookie. The id itself is all the server trusts; the signature only
// prevents clients from minting their own tokens.
func (h *Handler) signSession(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"session_id": sessionID,
		"exp":        jwt.NewNumericDate(time.Now().Add(config.SessionTokenTTL)),
		"iss":        "supportchat",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.Config.JWTSecret))
}

// sessionID extracts the caller's session id from the cookie. Returns "" when
// the cookie is absent, expired or tampered with.
func (h *Handler) sessionID(c *gin.Context) string {
	raw, err := c.Cookie(h.Config.SessionCookieName)
	if err != nil || raw == "" {
		return ""
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.Config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sid, _ := claims["session_id"].(string)
	return sid
}

// ensureSession returns the caller's session id, minting a fresh one and
// setting the cookie when none is valid.
func (h *Handler) ensureSession(c *gin.Context) (string, error) {
	if sid := h.sessionID(c); sid != "" {
		return sid, nil
	}
	return h.rotateSession(c)
}

// rotateSession unconditionally issues a new session id and replaces the cookie.
func (h *Handler) rotateSession(c *gin.Context) (string, error) {
	sid := uuid.NewString()
	signed, err := h.signSession(sid)
	if err != nil {
		return "", err
	}
	c.SetCookie(h.Config.SessionCookieName, signed, int(config.SessionTokenTTL.Seconds()), "/", "", false, true)
	return sid, nil
}

// GetSession returns the caller's session token and admin capability, creating
// the session if absent.
func (h *Handler) GetSession(c *gin.Context) {
	sid, err := h.ensureSession(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	isAdmin, err := h.Storage.IsAdminSession(sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sid,
		"isAdmin":   isAdmin,
	})
}
