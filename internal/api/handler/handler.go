package handler

import (
	"supportchat/backend/internal/chathub"
	"supportchat/backend/internal/config"
	"supportchat/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler carries the HTTP surface's dependencies: the conversation service,
// the connection registry/bridge for WebSocket upgrades, and the storage port
// for credential and capability checks.
type Handler struct {
	Service  *chathub.Service
	Registry *chathub.Registry
	Bridge   *chathub.Bridge
	Storage  storage.Storage
	Config   *config.Config
}

func NewHandler(service *chathub.Service, registry *chathub.Registry, bridge *chathub.Bridge, s storage.Storage, cfg *config.Config) *Handler {
	return &Handler{
		Service:  service,
		Registry: registry,
		Bridge:   bridge,
		Storage:  s,
		Config:   cfg,
	}
}

// RegisterRoutes attaches all routes to the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/session", h.GetSession)
		api.GET("/messages", h.GetMessages)
		api.POST("/send-message", h.SendMessage)

		admin := api.Group("/admin")
		{
			admin.POST("/login", h.AdminLogin)
			admin.POST("/logout", h.AdminLogout)
			admin.GET("/conversations", h.requireAdmin, h.AdminConversations)
			admin.GET("/conversation/:id", h.requireAdmin, h.AdminConversation)
			admin.POST("/reply/:id", h.requireAdmin, h.AdminReply)
		}
	}

	r.GET("/ws", h.ServeWebSocket)
}
