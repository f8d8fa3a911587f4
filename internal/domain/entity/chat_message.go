package entity

import "time"

type ChatMessage struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"chat_room_id"`
	Text       string    `json:"text"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Epoch returns CreatedAt in Unix milliseconds, or 0 when it is unset.
func (m *ChatMessage) Epoch() int64 {
	if m.CreatedAt.IsZero() {
		return 0
	}
	return m.CreatedAt.UnixMilli()
}
