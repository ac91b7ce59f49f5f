package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message is an in-app notification pushed to a connected user
type Message struct {
	Kind    string    `json:"kind"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

// Hub tracks open connections per user and routes messages to them
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*connection
	logger      *zap.Logger
}

type connection struct {
	conn *websocket.Conn
	send chan Message
}

// NewHub creates a new websocket hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string][]*connection),
		logger:      logger,
	}
}

// Push delivers a message to every open connection of the given user.
// Slow consumers are skipped rather than blocked on.
func (h *Hub) Push(userID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.connections[userID] {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("Dropping in-app notification for slow consumer",
				zap.String("user_id", userID))
		}
	}
}

func (h *Hub) register(userID string, c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[userID] = append(h.connections[userID], c)
}

func (h *Hub) unregister(userID string, c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.connections[userID]
	for i, existing := range conns {
		if existing == c {
			h.connections[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[userID]) == 0 {
		delete(h.connections, userID)
	}
	close(c.send)
}

// Manager upgrades HTTP requests to websocket connections
type Manager struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewManager creates a new websocket manager
func NewManager(hub *Hub, logger *zap.Logger) *Manager {
	return &Manager{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// In production, implement proper origin checking
				return true
			},
		},
		logger: logger,
	}
}

// Handle upgrades the request and streams notifications to the caller.
// The user must already be authenticated; its ID is read from the context.
func (m *Manager) Handle(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		m.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	conn := &connection{conn: ws, send: make(chan Message, 16)}
	m.hub.register(userID, conn)

	go m.writeLoop(userID, conn)
	m.readLoop(userID, conn)
}

func (m *Manager) writeLoop(userID string, c *connection) {
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			m.logger.Warn("Failed to write websocket message",
				zap.String("user_id", userID), zap.Error(err))
			return
		}
	}
}

// readLoop drains client frames so pings are answered; any read error
// tears the connection down.
func (m *Manager) readLoop(userID string, c *connection) {
	defer func() {
		m.hub.unregister(userID, c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
