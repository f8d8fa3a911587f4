package handler

import (
	"net/http"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "traveleon/internal/infrastructure/websocket"
	"traveleon/internal/usecase"
	"traveleon/pkg/errors"
	"traveleon/pkg/logger"
	"traveleon/pkg/response"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
	verifier  usecase.TokenVerifier
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, verifier usecase.TokenVerifier) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
		verifier:  verifier,
	}
}

// HandleChatRooms upgrades the request and streams the caller's chat list.
// Browsers cannot set headers on a WebSocket handshake, so the ID token
// travels in the token query parameter.
func (h *WebSocketHandler) HandleChatRooms(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return response.Error(c, errors.Unauthorized("Token is required", nil))
	}

	uid, err := h.verifier.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("Chat list upgrade failed for %s: %v", uid, err)
		return nil
	}

	client := ws.NewClient(uuid.NewString(), conn)
	// blocks until the connection closes
	h.wsManager.Serve(c.Request().Context(), client, uid)
	return nil
}
