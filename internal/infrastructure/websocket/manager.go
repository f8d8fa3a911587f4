package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"traveleon/internal/usecase"
	"traveleon/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Client is one WebSocket connection streaming a chat list.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}
}

// EngineFactory builds a chat list engine bound to one session's gate.
type EngineFactory func(gate *usecase.SessionGate) *usecase.ChatListEngine

// Manager tracks live chat list connections.
type Manager struct {
	clients   map[string]*Client
	mutex     sync.RWMutex
	newEngine EngineFactory
	verifier  usecase.TokenVerifier
}

func NewManager(newEngine EngineFactory, verifier usecase.TokenVerifier) *Manager {
	return &Manager{
		clients:   make(map[string]*Client),
		newEngine: newEngine,
		verifier:  verifier,
	}
}

func (m *Manager) register(client *Client) {
	m.mutex.Lock()
	m.clients[client.ID] = client
	m.mutex.Unlock()
	logger.Info("Chat list client registered: %s", client.ID)
}

func (m *Manager) unregister(client *Client) {
	m.mutex.Lock()
	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		close(client.Send)
	}
	m.mutex.Unlock()
	logger.Info("Chat list client unregistered: %s", client.ID)
}

// Count returns the number of connected clients.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// Serve runs a chat list session for client until the connection closes or
// ctx ends. uid is the identity established during the handshake.
func (m *Manager) Serve(ctx context.Context, client *Client, uid string) {
	ctx, cancel := context.WithCancel(ctx)

	gate := usecase.NewSessionGate()
	gate.SignIn(uid)
	engine := m.newEngine(gate)
	snapshots, stopWatch := engine.Watch()

	sess := &session{
		client:   client,
		gate:     gate,
		engine:   engine,
		verifier: m.verifier,
	}

	m.register(client)

	go func() {
		<-ctx.Done()
		client.Conn.Close()
	}()

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		engine.Run(ctx)
	}()

	forwardDone := make(chan struct{})
	go func() {
		defer close(forwardDone)
		sess.forward(ctx, snapshots)
	}()

	go client.WritePump()

	client.ReadPump(func(raw []byte) {
		sess.HandleClientMessage(ctx, raw)
	})

	cancel()
	<-engineDone
	stopWatch()
	<-forwardDone
	m.unregister(client)
}

// ReadPump reads frames until the connection fails, passing each to handle.
func (c *Client) ReadPump(handle func([]byte)) {
	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Chat list client %s read error: %v", c.ID, err)
			}
			return
		}
		handle(message)
	}
}

// WritePump sends queued frames and keepalive pings until Send is closed.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Chat list client %s write error: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
