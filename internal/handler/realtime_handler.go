package handler

import (
	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/routepath"
	internalWS "storefront-admin/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RealtimeHandler serves the live dashboard feed. The route guard has
// already admitted the request by the time ServeWs runs.
type RealtimeHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewRealtimeHandler(hub *internalWS.Hub, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, logger: log}
}

func (h *RealtimeHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info(internalWS.ModuleName, "Starting live feed session", nil)
		internalWS.ServeWs(h.hub, conn)
		h.logger.Info(internalWS.ModuleName, "Live feed session ended", nil)
	})(c)
}

func (h *RealtimeHandler) RegisterRoutes(router fiber.Router) {
	router.Get(routepath.Live, h.ServeWs)
}
