package router

import (
	"github.com/labstack/echo/v4"

	"otomart/internal/adapter/api/handler"
	"otomart/internal/adapter/api/middleware"
)

type Handlers struct {
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
	Unread       *handler.UnreadHandler
	Presence     *handler.PresenceHandler
	Block        *handler.BlockHandler
	WebSocket    *handler.WebSocketHandler
	DevToken     *handler.DevTokenHandler
	Health       *handler.HealthHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware, environment string) {
	SetupConversationRouter(e, h.Conversation, h.Message, h.Unread, authMiddleware)
	SetupPresenceRouter(e, h.Presence, authMiddleware)
	SetupBlockRouter(e, h.Block, authMiddleware)
	SetupUnreadRouter(e, h.Unread, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket, authMiddleware)
	SetupDevRouter(e, h.DevToken, environment)
	SetupHealthRouter(e, h.Health)
}
