package websocket

import (
	"context"
	"encoding/json"
	"time"

	"traveleon/internal/domain/entity"
	"traveleon/internal/usecase"
	"traveleon/pkg/logger"
)

// Server frames
const (
	MessageTypeChatRooms = "chat_rooms"
	MessageTypeNavigate  = "navigate"
	MessageTypeError     = "error"
	MessageTypePong      = "pong"
)

// Client frames
const (
	MessageTypeAuth     = "auth"
	MessageTypeLogout   = "logout"
	MessageTypeOpenRoom = "open_room"
	MessageTypePing     = "ping"
)

type WSMessage struct {
	Type       string      `json:"type"`
	Data       interface{} `json:"data,omitempty"`
	Token      string      `json:"token,omitempty"`
	ChatRoomID string      `json:"chat_room_id,omitempty"`
	Timestamp  string      `json:"timestamp,omitempty"`
}

type ChatRoomsData struct {
	State    string                `json:"state"`
	SellerID string                `json:"seller_id,omitempty"`
	Rooms    []entity.ChatRoomView `json:"rooms"`
	Error    string                `json:"error,omitempty"`
}

type ErrorData struct {
	Message string `json:"message"`
}

type session struct {
	client   *Client
	gate     *usecase.SessionGate
	engine   *usecase.ChatListEngine
	verifier usecase.TokenVerifier
}

// forward writes every chat list snapshot to the client until snapshots is
// closed or ctx ends.
func (s *session) forward(ctx context.Context, snapshots <-chan usecase.ChatListSnapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			payload, err := encodeSnapshot(snap)
			if err != nil {
				logger.Error("Chat list client %s: failed to encode snapshot: %v", s.client.ID, err)
				continue
			}
			select {
			case s.client.Send <- payload:
			case <-ctx.Done():
				return
			}
		}
	}
}

// HandleClientMessage processes one frame received from the client.
func (s *session) HandleClientMessage(ctx context.Context, raw []byte) {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Warn("Chat list client %s sent invalid frame: %v", s.client.ID, err)
		s.sendError("Invalid message format")
		return
	}

	switch msg.Type {
	case MessageTypePing:
		s.send(WSMessage{Type: MessageTypePong, Data: map[string]string{"status": "alive"}})

	case MessageTypeAuth:
		if msg.Token == "" {
			s.sendError("Token is required")
			return
		}
		uid, err := s.verifier.VerifyToken(ctx, msg.Token)
		if err != nil {
			logger.Warn("Chat list client %s: token rejected: %v", s.client.ID, err)
			s.sendError("Invalid or expired token")
			return
		}
		s.gate.SignIn(uid)

	case MessageTypeLogout:
		s.gate.SignOut()

	case MessageTypeOpenRoom:
		target, err := s.engine.Activate(msg.ChatRoomID)
		if err != nil {
			s.sendError("Chat room not found")
			return
		}
		s.send(WSMessage{Type: MessageTypeNavigate, Data: target})

	default:
		logger.Warn("Chat list client %s sent unknown message type '%s'", s.client.ID, msg.Type)
		s.sendError("Unknown message type")
	}
}

func (s *session) send(msg WSMessage) {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Chat list client %s: failed to encode %s frame: %v", s.client.ID, msg.Type, err)
		return
	}

	select {
	case s.client.Send <- payload:
	case <-time.After(writeWait):
		logger.Warn("Chat list client %s: dropped %s frame, send buffer full", s.client.ID, msg.Type)
	}
}

func (s *session) sendError(message string) {
	s.send(WSMessage{Type: MessageTypeError, Data: ErrorData{Message: message}})
}

func encodeSnapshot(snap usecase.ChatListSnapshot) ([]byte, error) {
	data := ChatRoomsData{
		State:    string(snap.State),
		SellerID: snap.SellerID,
		Rooms:    snap.Rooms,
	}
	if data.Rooms == nil {
		data.Rooms = []entity.ChatRoomView{}
	}
	if snap.Err != nil {
		data.Error = "Couldn't load chats"
	}

	return json.Marshal(WSMessage{
		Type:      MessageTypeChatRooms,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
