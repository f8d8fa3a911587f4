package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"traveleon/internal/domain/entity"
	"traveleon/internal/domain/repository"
	"traveleon/internal/infrastructure/ratelimit"
	"traveleon/pkg/errors"
	"traveleon/pkg/logger"
)

const maxMessageLength = 2000

type ChatUseCase struct {
	rooms       repository.ChatRoomRepository
	profiles    repository.ProfileRepository
	messages    repository.MessageRepository
	resolver    *EnrichmentResolver
	rateLimiter *ratelimit.RateLimiter
	now         func() time.Time
}

func NewChatUseCase(
	rooms repository.ChatRoomRepository,
	profiles repository.ProfileRepository,
	messages repository.MessageRepository,
	resolver *EnrichmentResolver,
) *ChatUseCase {
	return &ChatUseCase{
		rooms:    rooms,
		profiles: profiles,
		messages: messages,
		resolver: resolver,
		// 10 messages per minute per sender
		rateLimiter: ratelimit.NewRateLimiter(10, 6*time.Second),
		now:         time.Now,
	}
}

type SendMessageInput struct {
	RoomID string
	Text   string
}

// ListSellerRooms builds the seller's chat list once, without a live
// subscription.
func (uc *ChatUseCase) ListSellerRooms(ctx context.Context, sellerID string) ([]entity.ChatRoomView, error) {
	rooms, err := uc.rooms.ListBySeller(ctx, sellerID)
	if err != nil {
		logger.Error("ListSellerRooms: failed to list rooms for seller %s: %v", sellerID, err)
		return nil, err
	}
	return Project(uc.resolver.Resolve(ctx, rooms)), nil
}

func (uc *ChatUseCase) GetNavigationTarget(ctx context.Context, userID, roomID string) (entity.NavigationTarget, error) {
	room, err := uc.participantRoom(ctx, userID, roomID)
	if err != nil {
		return entity.NavigationTarget{}, err
	}

	target := entity.NavigationTarget{ChatRoomID: room.ID, BuyerName: entity.DefaultBuyerName}
	profile, err := uc.profiles.GetByID(ctx, room.BuyerID)
	if err == nil && profile.Name != "" {
		target.BuyerName = profile.Name
	} else if err != nil && !errors.Is(err, errors.CodeNotFound) {
		logger.LogRoomDegraded(room.ID, "buyer_profile", err)
	}
	return target, nil
}

// GetMessages returns a room's messages oldest first.
func (uc *ChatUseCase) GetMessages(ctx context.Context, userID, roomID string) ([]*entity.ChatMessage, error) {
	if _, err := uc.participantRoom(ctx, userID, roomID); err != nil {
		return nil, err
	}

	messages, err := uc.messages.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*entity.ChatMessage, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.BadRequest("Message text is required", nil)
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, errors.BadRequest(fmt.Sprintf("Message text must be at most %d characters", maxMessageLength), nil)
	}

	if _, err := uc.participantRoom(ctx, userID, input.RoomID); err != nil {
		return nil, err
	}

	if allowed, wait := uc.rateLimiter.Allow(userID); !allowed {
		logger.Warn("SendMessage: user %s rate limited for %v", userID, wait)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message")
	}

	message := &entity.ChatMessage{
		RoomID:     input.RoomID,
		Text:       text,
		SenderID:   userID,
		SenderName: uc.senderName(ctx, userID),
		CreatedAt:  uc.now().UTC(),
	}
	if err := uc.messages.Create(ctx, message); err != nil {
		logger.Error("SendMessage: failed to store message in room %s: %v", input.RoomID, err)
		return nil, err
	}

	return message, nil
}

func (uc *ChatUseCase) senderName(ctx context.Context, userID string) string {
	profile, err := uc.profiles.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, errors.CodeNotFound) {
			logger.Warn("SendMessage: failed to fetch sender name for %s: %v", userID, err)
		}
		return entity.DefaultSenderName
	}
	if profile.Name == "" {
		return entity.DefaultSenderName
	}
	return profile.Name
}

func (uc *ChatUseCase) participantRoom(ctx context.Context, userID, roomID string) (*entity.ChatRoom, error) {
	room, err := uc.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.SellerID != userID && room.BuyerID != userID {
		return nil, errors.Forbidden("You are not a participant of this chat room", nil)
	}
	return room, nil
}
