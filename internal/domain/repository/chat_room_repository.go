package repository

import (
	"context"
	"time"

	"traveleon/internal/domain/entity"
)

// RoomSet is one consistent delivery of every room matching a live query.
type RoomSet struct {
	Rooms    []*entity.ChatRoom
	ReadTime time.Time
}

// RoomStream yields successive RoomSets for a live query. Next blocks until
// the next delivery or until the stream fails or its context ends. Stop
// releases the underlying listener and is safe to call more than once.
type RoomStream interface {
	Next() (*RoomSet, error)
	Stop()
}

type ChatRoomRepository interface {
	SubscribeBySeller(ctx context.Context, sellerID string) RoomStream
	ListBySeller(ctx context.Context, sellerID string) ([]*entity.ChatRoom, error)
	GetByID(ctx context.Context, id string) (*entity.ChatRoom, error)
}
