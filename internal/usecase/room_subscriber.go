package usecase

import (
	"context"
	"time"

	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"traveleon/internal/domain/repository"
	"traveleon/pkg/errors"
	"traveleon/pkg/logger"
)

type SubscriberOptions struct {
	// MaxAttempts bounds consecutive failed subscription attempts before
	// the subscriber gives up. A successful delivery resets the count.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func DefaultSubscriberOptions() SubscriberOptions {
	return SubscriberOptions{
		MaxAttempts:    5,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
	}
}

// RoomSubscriber keeps one live "rooms where I am the seller" query open,
// reopening it after transient failures.
type RoomSubscriber struct {
	rooms repository.ChatRoomRepository
	opts  SubscriberOptions
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRoomSubscriber fills unset options from DefaultSubscriberOptions.
func NewRoomSubscriber(rooms repository.ChatRoomRepository, opts SubscriberOptions) *RoomSubscriber {
	defaults := DefaultSubscriberOptions()
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaults.MaxAttempts
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaults.InitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaults.MaxBackoff
	}
	return &RoomSubscriber{
		rooms: rooms,
		opts:  opts,
		sleep: gax.Sleep,
	}
}

// Run streams room sets for sellerID into deliver until ctx ends, returning
// nil in that case. It returns a SUBSCRIPTION_FAILED AppError on a fatal
// store error or when MaxAttempts consecutive attempts have failed.
// onRetry, if set, is called before each backoff pause.
func (s *RoomSubscriber) Run(
	ctx context.Context,
	sellerID string,
	deliver func(*repository.RoomSet),
	onRetry func(attempt int, err error),
) error {
	backoff := s.newBackoff()
	failures := 0

	for {
		stream := s.rooms.SubscribeBySeller(ctx, sellerID)
		delivered, err := s.pump(stream, deliver)
		stream.Stop()

		if ctx.Err() != nil {
			return nil
		}
		if delivered {
			failures = 0
			backoff = s.newBackoff()
		}
		if IsFatalSubscriptionError(err) {
			logger.Error("Chat room subscription for seller %s failed: %v", sellerID, err)
			return errors.SubscriptionFailed("Couldn't load chats", err)
		}

		failures++
		if failures >= s.opts.MaxAttempts {
			logger.Error("Chat room subscription for seller %s gave up after %d attempts: %v", sellerID, failures, err)
			return errors.SubscriptionFailed("Couldn't load chats", err)
		}

		logger.Warn("Chat room subscription for seller %s interrupted (attempt %d): %v", sellerID, failures, err)
		if onRetry != nil {
			onRetry(failures, err)
		}
		if err := s.sleep(ctx, backoff.Pause()); err != nil {
			return nil
		}
	}
}

func (s *RoomSubscriber) pump(stream repository.RoomStream, deliver func(*repository.RoomSet)) (bool, error) {
	delivered := false
	for {
		set, err := stream.Next()
		if err != nil {
			return delivered, err
		}
		delivered = true
		deliver(set)
	}
}

func (s *RoomSubscriber) newBackoff() *gax.Backoff {
	return &gax.Backoff{
		Initial:    s.opts.InitialBackoff,
		Max:        s.opts.MaxBackoff,
		Multiplier: 2,
	}
}

// IsFatalSubscriptionError reports whether retrying a live query cannot help.
// Errors without a gRPC status are treated as transient.
func IsFatalSubscriptionError(err error) bool {
	if err == nil {
		return false
	}
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated, codes.InvalidArgument,
		codes.FailedPrecondition, codes.Unimplemented:
		return true
	default:
		return false
	}
}
