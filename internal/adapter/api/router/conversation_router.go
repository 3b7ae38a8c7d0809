package router

import (
	"github.com/labstack/echo/v4"

	"otomart/internal/adapter/api/handler"
	"otomart/internal/adapter/api/middleware"
)

// SetupConversationRouter mounts the conversation and message routes. All of
// them require authentication.
func SetupConversationRouter(
	e *echo.Echo,
	conversationHandler *handler.ConversationHandler,
	messageHandler *handler.MessageHandler,
	unreadHandler *handler.UnreadHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	group := e.Group("/v1/conversations")
	group.Use(authMiddleware.Authenticate)

	group.POST("", conversationHandler.GetOrCreate)
	group.GET("", conversationHandler.List)
	group.DELETE("/:id", conversationHandler.Delete)

	group.POST("/:id/messages", messageHandler.Send)
	group.GET("/:id/messages", messageHandler.List)
	group.DELETE("/:id/messages", messageHandler.Clear)
	group.PUT("/:id/read", messageHandler.MarkRead)

	group.GET("/:id/unread", unreadHandler.Count)
}
