package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"traveleon/internal/domain/entity"
	"traveleon/internal/domain/repository"
	"traveleon/pkg/errors"
)

type streamItem struct {
	set *repository.RoomSet
	err error
}

type fakeStream struct {
	sellerID string
	ctx      context.Context
	items    chan streamItem
	stopped  chan struct{}
	once     sync.Once
	stops    int32
}

func (s *fakeStream) Next() (*repository.RoomSet, error) {
	select {
	case it := <-s.items:
		if it.err != nil {
			return nil, it.err
		}
		return it.set, nil
	case <-s.ctx.Done():
		return nil, status.Error(codes.Canceled, "context canceled")
	case <-s.stopped:
		return nil, status.Error(codes.Canceled, "listener stopped")
	}
}

func (s *fakeStream) Stop() {
	atomic.AddInt32(&s.stops, 1)
	s.once.Do(func() { close(s.stopped) })
}

func (s *fakeStream) Stops() int {
	return int(atomic.LoadInt32(&s.stops))
}

func (s *fakeStream) push(rooms ...*entity.ChatRoom) {
	s.items <- streamItem{set: &repository.RoomSet{Rooms: rooms}}
}

func (s *fakeStream) fail(err error) {
	s.items <- streamItem{err: err}
}

type fakeRoomRepo struct {
	mu      sync.Mutex
	rooms   map[string]*entity.ChatRoom
	listErr error
	streams []*fakeStream
	opened  chan *fakeStream
	// script preloads items into the n-th stream (0-based) when it opens
	script func(n int, s *fakeStream)
	// overlap is set when a stream opens while an earlier one is still live
	overlap bool
}

func newFakeRoomRepo(rooms ...*entity.ChatRoom) *fakeRoomRepo {
	r := &fakeRoomRepo{
		rooms:  make(map[string]*entity.ChatRoom),
		opened: make(chan *fakeStream, 32),
	}
	for _, room := range rooms {
		r.rooms[room.ID] = room
	}
	return r
}

func (r *fakeRoomRepo) SubscribeBySeller(ctx context.Context, sellerID string) repository.RoomStream {
	r.mu.Lock()
	for _, prev := range r.streams {
		if prev.Stops() == 0 {
			r.overlap = true
		}
	}
	s := &fakeStream{
		sellerID: sellerID,
		ctx:      ctx,
		items:    make(chan streamItem, 16),
		stopped:  make(chan struct{}),
	}
	n := len(r.streams)
	r.streams = append(r.streams, s)
	script := r.script
	r.mu.Unlock()

	if script != nil {
		script(n, s)
	}
	r.opened <- s
	return s
}

func (r *fakeRoomRepo) ListBySeller(ctx context.Context, sellerID string) ([]*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*entity.ChatRoom
	for _, room := range r.rooms {
		if room.SellerID == sellerID {
			out = append(out, room)
		}
	}
	return out, nil
}

func (r *fakeRoomRepo) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NotFound("Chat room", nil)
	}
	return room, nil
}

func (r *fakeRoomRepo) subscribeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}

func (r *fakeRoomRepo) hadOverlap() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlap
}

func (r *fakeRoomRepo) nextStream(t *testing.T) *fakeStream {
	t.Helper()
	select {
	case s := <-r.opened:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a subscription")
		return nil
	}
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*entity.BuyerProfile
	errs     map[string]error
	arrived  chan string
	release  chan struct{}
}

func newFakeProfileRepo(profiles ...*entity.BuyerProfile) *fakeProfileRepo {
	r := &fakeProfileRepo{
		profiles: make(map[string]*entity.BuyerProfile),
		errs:     make(map[string]error),
	}
	for _, p := range profiles {
		r.profiles[p.UID] = p
	}
	return r
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, uid string) (*entity.BuyerProfile, error) {
	if r.arrived != nil {
		r.arrived <- uid
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.errs[uid]; ok {
		return nil, err
	}
	p, ok := r.profiles[uid]
	if !ok {
		return nil, errors.NotFound("Profile", nil)
	}
	cp := *p
	return &cp, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string][]*entity.ChatMessage
	errs     map[string]error
	block    map[string]chan struct{}
	created  []*entity.ChatMessage
	listed   map[string]int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[string][]*entity.ChatMessage),
		errs:     make(map[string]error),
		block:    make(map[string]chan struct{}),
		listed:   make(map[string]int),
	}
}

func (r *fakeMessageRepo) add(roomID, text string, epochMillis int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[roomID] = append(r.messages[roomID], &entity.ChatMessage{
		ID:        roomID + "-" + text,
		RoomID:    roomID,
		Text:      text,
		CreatedAt: time.UnixMilli(epochMillis),
	})
}

func (r *fakeMessageRepo) ListByRoom(ctx context.Context, roomID string) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	r.listed[roomID]++
	wait := r.block[roomID]
	r.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.errs[roomID]; ok {
		return nil, err
	}
	out := make([]*entity.ChatMessage, len(r.messages[roomID]))
	copy(out, r.messages[roomID])
	return out, nil
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ID == "" {
		message.ID = "generated"
	}
	r.created = append(r.created, message)
	r.messages[message.RoomID] = append(r.messages[message.RoomID], message)
	return nil
}

type fakeAvatars struct {
	urls map[string]string
	err  error
}

func (f *fakeAvatars) AvatarURL(ctx context.Context, ref string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if url, ok := f.urls[ref]; ok {
		return url, nil
	}
	return ref, nil
}

func room(id, sellerID, buyerID string) *entity.ChatRoom {
	return &entity.ChatRoom{ID: id, SellerID: sellerID, BuyerID: buyerID}
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}
