package router

import (
	"github.com/labstack/echo/v4"

	"otomart/internal/adapter/api/handler"
	"otomart/internal/adapter/api/middleware"
)

func SetupPresenceRouter(e *echo.Echo, presenceHandler *handler.PresenceHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/v1/presence")
	group.Use(authMiddleware.Authenticate)

	group.POST("/heartbeat", presenceHandler.Heartbeat)
	group.GET("/:userId", presenceHandler.Get)
}
