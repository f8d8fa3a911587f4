package usecase

import (
	"context"
	"sync"

	"traveleon/internal/domain/entity"
	"traveleon/internal/domain/repository"
	"traveleon/pkg/errors"
	"traveleon/pkg/logger"
)

type ListState string

const (
	StateLoggedOut    ListState = "logged_out"
	StateSubscribing  ListState = "subscribing"
	StateLive         ListState = "live"
	StateResolving    ListState = "resolving"
	StateUnsubscribed ListState = "unsubscribed"
	StateFailed       ListState = "failed"
)

// ChatListSnapshot is one emission of the chat list. Rooms is never mutated
// after publication.
type ChatListSnapshot struct {
	State    ListState
	SellerID string
	Rooms    []entity.ChatRoomView
	Err      error
}

type engineEvent interface{}

type identityEvent struct {
	uid     string
	present bool
}

type roomSetEvent struct {
	sub uint64
	set *repository.RoomSet
}

type retryEvent struct {
	sub     uint64
	attempt int
	err     error
}

type subscriptionEndedEvent struct {
	sub uint64
	err error
}

type batchResolvedEvent struct {
	batch uint64
	views []entity.ChatRoomView
}

// ChatListEngine turns a seller's live chat rooms into an ordered list of
// ChatRoomViews. All state transitions happen on the goroutine running Run;
// subscriptions and resolution batches run on their own goroutines and
// report back through the event channel.
type ChatListEngine struct {
	gate       *SessionGate
	subscriber *RoomSubscriber
	resolver   *EnrichmentResolver

	events chan engineEvent

	// owned by the Run goroutine
	sellerID  string
	subGen    uint64
	batchGen  uint64
	subCancel context.CancelFunc
	subDone   chan struct{}
	subCtx    context.Context

	mu       sync.RWMutex
	current  ChatListSnapshot
	nextID   int
	watchers map[int]chan ChatListSnapshot
	closed   bool
}

func NewChatListEngine(gate *SessionGate, subscriber *RoomSubscriber, resolver *EnrichmentResolver) *ChatListEngine {
	return &ChatListEngine{
		gate:       gate,
		subscriber: subscriber,
		resolver:   resolver,
		events:     make(chan engineEvent),
		current:    ChatListSnapshot{State: StateLoggedOut},
		watchers:   make(map[int]chan ChatListSnapshot),
	}
}

// Run processes identity changes and store deliveries until ctx ends. On
// return the subscription is released and all watcher channels are closed.
func (e *ChatListEngine) Run(ctx context.Context) error {
	unregister := e.gate.OnIdentityChange(func(uid string, present bool) {
		select {
		case e.events <- identityEvent{uid: uid, present: present}:
		case <-ctx.Done():
		}
	})
	defer unregister()

	if uid, ok := e.gate.Current(); ok {
		e.handleIdentity(ctx, identityEvent{uid: uid, present: true})
	}

	for {
		select {
		case <-ctx.Done():
			e.teardown()
			e.closeWatchers()
			return nil

		case ev := <-e.events:
			switch ev := ev.(type) {
			case identityEvent:
				e.handleIdentity(ctx, ev)
			case roomSetEvent:
				e.handleRoomSet(ev)
			case retryEvent:
				e.handleRetry(ev)
			case subscriptionEndedEvent:
				e.handleSubscriptionEnded(ev)
			case batchResolvedEvent:
				e.handleBatchResolved(ev)
			}
		}
	}
}

func (e *ChatListEngine) handleIdentity(ctx context.Context, ev identityEvent) {
	if ev.present && ev.uid == e.sellerID && e.subCancel != nil {
		return
	}

	hadIdentity := e.sellerID != ""
	e.teardown()

	if !ev.present {
		e.sellerID = ""
		state := StateLoggedOut
		if hadIdentity {
			state = StateUnsubscribed
		}
		logger.Debug("Chat list: identity cleared")
		e.publish(ChatListSnapshot{State: state})
		return
	}

	e.sellerID = ev.uid
	e.subGen++
	sub := e.subGen

	subCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.subCtx, e.subCancel, e.subDone = subCtx, cancel, done

	logger.Debug("Chat list: subscribing for seller %s (subscription %d)", ev.uid, sub)
	e.publish(ChatListSnapshot{State: StateSubscribing, SellerID: ev.uid})

	go func(sellerID string) {
		defer close(done)
		err := e.subscriber.Run(subCtx, sellerID,
			func(set *repository.RoomSet) {
				e.post(subCtx, roomSetEvent{sub: sub, set: set})
			},
			func(attempt int, err error) {
				e.post(subCtx, retryEvent{sub: sub, attempt: attempt, err: err})
			},
		)
		e.post(subCtx, subscriptionEndedEvent{sub: sub, err: err})
	}(ev.uid)
}

func (e *ChatListEngine) handleRoomSet(ev roomSetEvent) {
	if ev.sub != e.subGen || e.subCancel == nil {
		return
	}

	e.batchGen++
	batch := e.batchGen
	ctx := e.subCtx
	rooms := ev.set.Rooms

	e.publishState(StateResolving)

	go func() {
		views := Project(e.resolver.Resolve(ctx, rooms))
		e.post(ctx, batchResolvedEvent{batch: batch, views: views})
	}()
}

func (e *ChatListEngine) handleBatchResolved(ev batchResolvedEvent) {
	if ev.batch != e.batchGen || e.subCancel == nil {
		logger.Debug("Chat list: dropping superseded batch %d (current %d)", ev.batch, e.batchGen)
		return
	}
	e.publish(ChatListSnapshot{State: StateLive, SellerID: e.sellerID, Rooms: ev.views})
}

func (e *ChatListEngine) handleRetry(ev retryEvent) {
	if ev.sub != e.subGen || e.subCancel == nil {
		return
	}
	// keep the last known list while reconnecting
	e.publishState(StateSubscribing)
}

func (e *ChatListEngine) handleSubscriptionEnded(ev subscriptionEndedEvent) {
	if ev.sub != e.subGen || e.subCancel == nil {
		return
	}
	if ev.err == nil {
		return
	}

	e.subCancel()
	e.subCancel, e.subDone, e.subCtx = nil, nil, nil
	e.batchGen++

	e.publish(ChatListSnapshot{State: StateFailed, SellerID: e.sellerID, Err: ev.err})
}

// teardown cancels the active subscription, waits for it to release the
// store listener and invalidates in-flight batches.
func (e *ChatListEngine) teardown() {
	if e.subCancel != nil {
		e.subCancel()
		<-e.subDone
	}
	e.subCancel, e.subDone, e.subCtx = nil, nil, nil
	e.batchGen++
}

func (e *ChatListEngine) post(ctx context.Context, ev engineEvent) {
	select {
	case e.events <- ev:
	case <-ctx.Done():
	}
}

func (e *ChatListEngine) publishState(state ListState) {
	e.mu.RLock()
	next := e.current
	e.mu.RUnlock()

	next.State = state
	e.publish(next)
}

func (e *ChatListEngine) publish(s ChatListSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.current = s
	for _, ch := range e.watchers {
		// latest value wins for slow readers
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// Current returns the most recent snapshot.
func (e *ChatListEngine) Current() ChatListSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Watch returns a channel that receives the current snapshot immediately and
// every later one. A reader that falls behind only sees the newest snapshot.
// The channel is closed when Run returns or cancel is called.
func (e *ChatListEngine) Watch() (<-chan ChatListSnapshot, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	ch := make(chan ChatListSnapshot, 1)
	ch <- e.current
	if e.closed {
		close(ch)
		return ch, func() {}
	}
	e.watchers[id] = ch

	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.watchers[id]; ok {
			delete(e.watchers, id)
			close(c)
		}
	}
}

func (e *ChatListEngine) closeWatchers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for id, ch := range e.watchers {
		delete(e.watchers, id)
		close(ch)
	}
}

// Activate returns the navigation target for a room in the current list.
func (e *ChatListEngine) Activate(roomID string) (entity.NavigationTarget, error) {
	snapshot := e.Current()
	for _, room := range snapshot.Rooms {
		if room.ID == roomID {
			return entity.NavigationTarget{ChatRoomID: room.ID, BuyerName: room.BuyerName}, nil
		}
	}
	return entity.NavigationTarget{}, errors.NotFound("Chat room", nil)
}
