package router

import (
	"github.com/labstack/echo/v4"

	"traveleon/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimit *middleware.RateLimit) {
	SetupChatRoomRouter(e, authMiddleware)
	SetupWebSocketRouter(e, rateLimit)
	SetupHealthRouter(e)
}
