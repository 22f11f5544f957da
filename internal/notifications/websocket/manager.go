package websocket

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message is the wire format pushed to connected clients.
type Message struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// Manager handles WebSocket connections and per-user message routing.
type Manager struct {
	connections map[string][]*connection
	mu          sync.RWMutex
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

type connection struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan Message
}

// NewManager creates a WebSocket manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[string][]*connection),
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origin checking is handled by the reverse proxy.
				return true
			},
		},
	}
}

// HandleConnection upgrades an authenticated HTTP request to a WebSocket
// connection registered for the given user.
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	ws, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	c := &connection{
		id:     uuid.New().String(),
		userID: userID.String(),
		conn:   ws,
		send:   make(chan Message, 64),
	}

	m.mu.Lock()
	m.connections[c.userID] = append(m.connections[c.userID], c)
	m.mu.Unlock()

	go m.readPump(c)
	go m.writePump(c)

	return nil
}

// SendToUser pushes a message to every open connection of the user. It fails
// only when the user has no open connections.
func (m *Manager) SendToUser(userID uuid.UUID, msg Message) error {
	m.mu.RLock()
	conns := m.connections[userID.String()]
	m.mu.RUnlock()

	if len(conns) == 0 {
		return fmt.Errorf("user %s has no open connections", userID)
	}

	for _, c := range conns {
		select {
		case c.send <- msg:
		default:
			m.logger.Warn("Dropping message for slow websocket client",
				zap.String("user_id", c.userID),
				zap.String("connection_id", c.id))
		}
	}
	return nil
}

// Broadcast pushes a message to every open connection.
func (m *Manager) Broadcast(msg Message) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, conns := range m.connections {
		for _, c := range conns {
			select {
			case c.send <- msg:
			default:
			}
		}
	}
}

// Close shuts down all connections.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, conns := range m.connections {
		for _, c := range conns {
			close(c.send)
		}
	}
	m.connections = make(map[string][]*connection)
}

func (m *Manager) unregister(c *connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns := m.connections[c.userID]
	for i, existing := range conns {
		if existing.id == c.id {
			m.connections[c.userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(m.connections[c.userID]) == 0 {
		delete(m.connections, c.userID)
	}
}

func (m *Manager) readPump(c *connection) {
	defer func() {
		m.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Warn("Websocket read error",
					zap.String("user_id", c.userID),
					zap.Error(err))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}

func (m *Manager) writePump(c *connection) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
