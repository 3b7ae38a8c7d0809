package router

import (
	"github.com/labstack/echo/v4"

	"otomart/internal/adapter/api/handler"
	"otomart/internal/adapter/api/middleware"
)

func SetupUnreadRouter(e *echo.Echo, unreadHandler *handler.UnreadHandler, authMiddleware *middleware.AuthMiddleware) {
	// Global unread badge
	e.GET("/v1/unread", unreadHandler.Total, authMiddleware.Authenticate)
}
