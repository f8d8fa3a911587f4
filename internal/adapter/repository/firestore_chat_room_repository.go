package repository

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"traveleon/internal/domain/entity"
	"traveleon/internal/domain/repository"
	"traveleon/pkg/errors"
	"traveleon/pkg/logger"
)

const chatRoomsCollection = "chatRooms"

type firestoreChatRoomRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRoomRepository(client *firestore.Client) repository.ChatRoomRepository {
	return &firestoreChatRoomRepository{
		client: client,
	}
}

func (r *firestoreChatRoomRepository) sellerQuery(sellerID string) firestore.Query {
	return r.client.Collection(chatRoomsCollection).Where("sellerId", "==", sellerID)
}

func (r *firestoreChatRoomRepository) SubscribeBySeller(ctx context.Context, sellerID string) repository.RoomStream {
	return &snapshotRoomStream{
		it: r.sellerQuery(sellerID).Snapshots(ctx),
	}
}

func (r *firestoreChatRoomRepository) ListBySeller(ctx context.Context, sellerID string) ([]*entity.ChatRoom, error) {
	docs, err := r.sellerQuery(sellerID).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch chat rooms", err)
	}
	return decodeRooms(docs), nil
}

func (r *firestoreChatRoomRepository) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	doc, err := r.client.Collection(chatRoomsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat room", err)
		}
		return nil, errors.Internal("Failed to get chat room", err)
	}

	return decodeRoom(doc.Ref.ID, doc.Data()), nil
}

// snapshotRoomStream adapts a Firestore query listener to repository.RoomStream.
// Each snapshot carries the full result set, not just the changes.
type snapshotRoomStream struct {
	it   *firestore.QuerySnapshotIterator
	once sync.Once
}

func (s *snapshotRoomStream) Next() (*repository.RoomSet, error) {
	snap, err := s.it.Next()
	if err != nil {
		return nil, err
	}

	var docs []*firestore.DocumentSnapshot
	for {
		doc, err := snap.Documents.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return &repository.RoomSet{
		Rooms:    decodeRooms(docs),
		ReadTime: snap.ReadTime,
	}, nil
}

func (s *snapshotRoomStream) Stop() {
	s.once.Do(s.it.Stop)
}

func decodeRooms(docs []*firestore.DocumentSnapshot) []*entity.ChatRoom {
	rooms := make([]*entity.ChatRoom, 0, len(docs))
	for _, doc := range docs {
		rooms = append(rooms, decodeRoom(doc.Ref.ID, doc.Data()))
	}
	return rooms
}

// decodeRoom never drops a room: mistyped fields fall back to their unset
// values so the row still renders with defaults.
func decodeRoom(id string, data map[string]interface{}) *entity.ChatRoom {
	room := &entity.ChatRoom{ID: id}

	room.SellerID = stringField(id, data, "sellerId")
	room.BuyerID = stringField(id, data, "buyerId")

	if v, ok := data["read"]; ok && v != nil {
		if read, ok := v.(bool); ok {
			room.Read = &read
		} else {
			logger.Warn("Chat room %s has malformed field read (%T), treating as unset", id, v)
		}
	}

	return room
}

func stringField(id string, data map[string]interface{}, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		logger.Warn("Chat room %s has malformed field %s (%T), treating as empty", id, key, v)
	}
	return s
}
