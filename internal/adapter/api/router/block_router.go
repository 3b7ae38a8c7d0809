package router

import (
	"github.com/labstack/echo/v4"

	"otomart/internal/adapter/api/handler"
	"otomart/internal/adapter/api/middleware"
)

func SetupBlockRouter(e *echo.Echo, blockHandler *handler.BlockHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/v1/blocks")
	group.Use(authMiddleware.Authenticate)

	group.POST("", blockHandler.Block)
	group.DELETE("/:userId", blockHandler.Unblock)
	group.GET("/:userId", blockHandler.Status)
}
