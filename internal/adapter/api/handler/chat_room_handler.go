package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"traveleon/internal/domain/entity"
	"traveleon/internal/usecase"
	"traveleon/pkg/response"
)

// ChatRoomService is the chat use case as seen by the HTTP layer.
type ChatRoomService interface {
	ListSellerRooms(ctx context.Context, sellerID string) ([]entity.ChatRoomView, error)
	GetNavigationTarget(ctx context.Context, userID, roomID string) (entity.NavigationTarget, error)
	GetMessages(ctx context.Context, userID, roomID string) ([]*entity.ChatMessage, error)
	SendMessage(ctx context.Context, userID string, input usecase.SendMessageInput) (*entity.ChatMessage, error)
}

type ChatRoomHandler struct {
	chatService ChatRoomService
}

func NewChatRoomHandler(chatService ChatRoomService) *ChatRoomHandler {
	return &ChatRoomHandler{
		chatService: chatService,
	}
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type navigationResponse struct {
	ChatRoomID string `json:"chat_room_id"`
	BuyerName  string `json:"buyer_name"`
}

type messageResponse struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	CreatedAt  int64  `json:"created_at"`
}

func toMessageResponse(m *entity.ChatMessage) messageResponse {
	return messageResponse{
		ID:         m.ID,
		Text:       m.Text,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		CreatedAt:  m.Epoch(),
	}
}

// ListRooms returns the authenticated seller's chat list, newest first.
func (h *ChatRoomHandler) ListRooms(c echo.Context) error {
	sellerID := c.Get("uid").(string)

	rooms, err := h.chatService.ListSellerRooms(c.Request().Context(), sellerID)
	if err != nil {
		return response.Error(c, err)
	}
	if rooms == nil {
		rooms = []entity.ChatRoomView{}
	}

	return response.Success(c, rooms)
}

// OpenRoom resolves the navigation target for a chat list entry.
func (h *ChatRoomHandler) OpenRoom(c echo.Context) error {
	userID := c.Get("uid").(string)

	target, err := h.chatService.GetNavigationTarget(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, navigationResponse{
		ChatRoomID: target.ChatRoomID,
		BuyerName:  target.BuyerName,
	})
}

func (h *ChatRoomHandler) GetMessages(c echo.Context) error {
	userID := c.Get("uid").(string)

	messages, err := h.chatService.GetMessages(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	result := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		result = append(result, toMessageResponse(m))
	}

	return response.Success(c, result)
}

func (h *ChatRoomHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.chatService.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		RoomID: c.Param("id"),
		Text:   req.Text,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, toMessageResponse(message))
}
