package router

import (
	"github.com/labstack/echo/v4"

	"traveleon/internal/adapter/api/handler"
	"traveleon/internal/adapter/api/middleware"
)

func SetupChatRoomRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatRoomHandler := handler.GetChatRoomHandler()

	chatRooms := e.Group("/v1/chat-rooms")
	chatRooms.Use(authMiddleware.Authenticate)

	chatRooms.GET("", chatRoomHandler.ListRooms)
	chatRooms.GET("/:id", chatRoomHandler.OpenRoom)
	chatRooms.GET("/:id/messages", chatRoomHandler.GetMessages)
	chatRooms.POST("/:id/messages", chatRoomHandler.SendMessage)
}
