package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"traveleon/internal/domain/entity"
	"traveleon/internal/domain/repository"
	"traveleon/pkg/errors"
)

const messagesCollection = "messages"

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) messages(roomID string) *firestore.CollectionRef {
	return r.client.Collection(chatRoomsCollection).Doc(roomID).Collection(messagesCollection)
}

func (r *firestoreMessageRepository) ListByRoom(ctx context.Context, roomID string) ([]*entity.ChatMessage, error) {
	iter := r.messages(roomID).Documents(ctx)
	defer iter.Stop()

	var messages []*entity.ChatMessage
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate messages", err)
		}
		messages = append(messages, decodeMessage(roomID, doc.Ref.ID, doc.Data()))
	}

	return messages, nil
}

// Create stores createdAt as an RFC 3339 string, the format existing clients write.
func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	_, err := r.messages(message.RoomID).Doc(message.ID).Set(ctx, map[string]interface{}{
		"text":       message.Text,
		"senderId":   message.SenderID,
		"senderName": message.SenderName,
		"createdAt":  message.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func decodeMessage(roomID, id string, data map[string]interface{}) *entity.ChatMessage {
	msg := &entity.ChatMessage{
		ID:        id,
		RoomID:    roomID,
		CreatedAt: decodeCreatedAt(data["createdAt"]),
	}
	msg.Text, _ = data["text"].(string)
	msg.SenderID, _ = data["senderId"].(string)
	msg.SenderName, _ = data["senderName"].(string)
	return msg
}

// decodeCreatedAt accepts native timestamps, RFC 3339 strings and epoch
// milliseconds. Anything else, including instants at or before the Unix
// epoch, decodes to the zero time.
func decodeCreatedAt(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		if t.UnixMilli() > 0 {
			return t
		}
	case string:
		s := strings.TrimSpace(t)
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil && parsed.UnixMilli() > 0 {
			return parsed
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms)
		}
	case int64:
		if t > 0 {
			return time.UnixMilli(t)
		}
	case float64:
		if t > 0 {
			return time.UnixMilli(int64(t))
		}
	}
	return time.Time{}
}
