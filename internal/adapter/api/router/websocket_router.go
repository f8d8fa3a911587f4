package router

import (
	"github.com/labstack/echo/v4"

	"traveleon/internal/adapter/api/handler"
	"traveleon/internal/adapter/api/middleware"
)

// SetupWebSocketRouter registers the live chat list stream. Auth happens
// inside the handler via the token query parameter.
func SetupWebSocketRouter(e *echo.Echo, rateLimit *middleware.RateLimit) {
	wsHandler := handler.GetWebSocketHandler()
	e.GET("/ws/chat-rooms", wsHandler.HandleChatRooms, rateLimit.Limit)
}
