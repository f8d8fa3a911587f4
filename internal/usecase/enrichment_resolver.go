package usecase

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"traveleon/internal/domain/entity"
	"traveleon/internal/domain/repository"
	"traveleon/pkg/errors"
	"traveleon/pkg/logger"
)

// EnrichedRoom is a raw room together with whatever could be resolved for it.
// Profile and Latest are nil when missing or when their lookup failed.
type EnrichedRoom struct {
	Room    *entity.ChatRoom
	Profile *entity.BuyerProfile
	Latest  *entity.ChatMessage
}

type ResolverOptions struct {
	// Concurrency caps in-flight lookups per batch; <= 0 means unbounded.
	Concurrency int
	// Timeout bounds a whole batch; 0 means no timeout.
	Timeout time.Duration
}

type EnrichmentResolver struct {
	profiles repository.ProfileRepository
	messages repository.MessageRepository
	avatars  AvatarResolver
	opts     ResolverOptions
}

func NewEnrichmentResolver(
	profiles repository.ProfileRepository,
	messages repository.MessageRepository,
	avatars AvatarResolver,
	opts ResolverOptions,
) *EnrichmentResolver {
	return &EnrichmentResolver{
		profiles: profiles,
		messages: messages,
		avatars:  avatars,
		opts:     opts,
	}
}

// Resolve looks up the buyer profile and latest message of every room in
// parallel and returns once all lookups have settled. A failed lookup only
// degrades its own room. The result is index-aligned with rooms.
func (r *EnrichmentResolver) Resolve(ctx context.Context, rooms []*entity.ChatRoom) []EnrichedRoom {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	results := make([]EnrichedRoom, len(rooms))

	var g errgroup.Group
	if r.opts.Concurrency > 0 {
		g.SetLimit(r.opts.Concurrency)
	}

	for i, room := range rooms {
		i, room := i, room
		results[i].Room = room

		g.Go(func() error {
			results[i].Profile = r.resolveProfile(ctx, room)
			return nil
		})
		g.Go(func() error {
			results[i].Latest = r.resolveLatest(ctx, room)
			return nil
		})
	}
	g.Wait()

	return results
}

func (r *EnrichmentResolver) resolveProfile(ctx context.Context, room *entity.ChatRoom) *entity.BuyerProfile {
	if room.BuyerID == "" {
		return nil
	}

	profile, err := r.profiles.GetByID(ctx, room.BuyerID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			logger.Debug("Buyer %s of chat room %s has no profile", room.BuyerID, room.ID)
		} else {
			logger.LogRoomDegraded(room.ID, "buyer_profile", err)
		}
		return nil
	}

	if profile.Avatar != nil && r.avatars != nil {
		url, err := r.avatars.AvatarURL(ctx, *profile.Avatar)
		if err != nil {
			logger.LogRoomDegraded(room.ID, "avatar", err)
		} else {
			resolved := *profile
			resolved.Avatar = nil
			if url != "" {
				resolved.Avatar = &url
			}
			profile = &resolved
		}
	}

	return profile
}

func (r *EnrichmentResolver) resolveLatest(ctx context.Context, room *entity.ChatRoom) *entity.ChatMessage {
	messages, err := r.messages.ListByRoom(ctx, room.ID)
	if err != nil {
		logger.LogRoomDegraded(room.ID, "latest_message", err)
		return nil
	}
	return LatestMessage(messages)
}

// LatestMessage returns the message with the greatest CreatedAt. On equal
// timestamps the earliest one in scan order wins. Nil for no messages.
func LatestMessage(messages []*entity.ChatMessage) *entity.ChatMessage {
	var latest *entity.ChatMessage
	for _, m := range messages {
		if m == nil {
			continue
		}
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) {
			latest = m
		}
	}
	return latest
}
