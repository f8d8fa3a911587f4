package websocket

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traveleon/internal/domain/entity"
	"traveleon/internal/usecase"
	"traveleon/pkg/errors"
)

type fakeVerifier struct {
	tokens map[string]string
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	if uid, ok := f.tokens[token]; ok {
		return uid, nil
	}
	return "", stderrors.New("token has expired")
}

func newTestSession() *session {
	gate := usecase.NewSessionGate()
	return &session{
		client:   &Client{ID: "conn-1", Send: make(chan []byte, 8)},
		gate:     gate,
		engine:   usecase.NewChatListEngine(gate, nil, nil),
		verifier: &fakeVerifier{tokens: map[string]string{"good-token": "S1"}},
	}
}

func readFrame(t *testing.T, s *session) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-s.client.Send:
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	default:
		t.Fatal("no frame queued")
		return nil
	}
}

func TestHandlePing(t *testing.T) {
	s := newTestSession()
	s.HandleClientMessage(context.Background(), []byte(`{"type":"ping"}`))

	frame := readFrame(t, s)
	assert.Equal(t, "pong", frame["type"])
}

func TestHandleAuthAndLogout(t *testing.T) {
	s := newTestSession()
	ctx := context.Background()

	s.HandleClientMessage(ctx, []byte(`{"type":"auth","token":"good-token"}`))
	uid, ok := s.gate.Current()
	assert.True(t, ok)
	assert.Equal(t, "S1", uid)
	assert.Empty(t, s.client.Send)

	s.HandleClientMessage(ctx, []byte(`{"type":"auth","token":"stale"}`))
	frame := readFrame(t, s)
	assert.Equal(t, "error", frame["type"])
	uid, _ = s.gate.Current()
	assert.Equal(t, "S1", uid, "rejected token keeps the current identity")

	s.HandleClientMessage(ctx, []byte(`{"type":"logout"}`))
	_, ok = s.gate.Current()
	assert.False(t, ok)
}

func TestHandleOpenUnknownRoom(t *testing.T) {
	s := newTestSession()
	s.HandleClientMessage(context.Background(), []byte(`{"type":"open_room","chat_room_id":"R1"}`))

	frame := readFrame(t, s)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "Chat room not found", frame["data"].(map[string]interface{})["message"])
}

func TestHandleInvalidFrames(t *testing.T) {
	s := newTestSession()
	ctx := context.Background()

	s.HandleClientMessage(ctx, []byte(`not json`))
	assert.Equal(t, "error", readFrame(t, s)["type"])

	s.HandleClientMessage(ctx, []byte(`{"type":"dance"}`))
	assert.Equal(t, "error", readFrame(t, s)["type"])
}

func TestEncodeSnapshot(t *testing.T) {
	raw, err := encodeSnapshot(usecase.ChatListSnapshot{State: usecase.StateLoggedOut})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"rooms":[]`)
	assert.Contains(t, string(raw), `"state":"logged_out"`)

	raw, err = encodeSnapshot(usecase.ChatListSnapshot{
		State:    usecase.StateFailed,
		SellerID: "S1",
		Err:      errors.SubscriptionFailed("Couldn't load chats", nil),
	})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"error":"Couldn't load chats"`)

	raw, err = encodeSnapshot(usecase.ChatListSnapshot{
		State: usecase.StateLive,
		Rooms: []entity.ChatRoomView{{ID: "R1", BuyerName: "Budi", Status: "online", LastMessage: "hi", Timestamp: 1000, Read: true}},
	})
	require.NoError(t, err)

	var msg struct {
		Type string        `json:"type"`
		Data ChatRoomsData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "chat_rooms", msg.Type)
	require.Len(t, msg.Data.Rooms, 1)
	assert.Equal(t, int64(1000), msg.Data.Rooms[0].Timestamp)
	assert.Nil(t, msg.Data.Rooms[0].Avatar)
}
