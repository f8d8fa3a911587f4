package handler

var (
	chatRoomHandler  *ChatRoomHandler
	healthHandler    *HealthHandler
	webSocketHandler *WebSocketHandler
)

func Setup(chatRoom *ChatRoomHandler, health *HealthHandler, webSocket *WebSocketHandler) {
	chatRoomHandler = chatRoom
	healthHandler = health
	webSocketHandler = webSocket
}

func GetChatRoomHandler() *ChatRoomHandler {
	return chatRoomHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}
