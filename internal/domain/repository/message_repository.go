package repository

import (
	"context"

	"traveleon/internal/domain/entity"
)

type MessageRepository interface {
	// ListByRoom scans a room's messages in store order.
	ListByRoom(ctx context.Context, roomID string) ([]*entity.ChatMessage, error)
	Create(ctx context.Context, message *entity.ChatMessage) error
}
