// Package realtime pushes "library changed" signals to browsers over websockets.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cdfmlr/crud/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var logger = log.ZoneLogger("gigmaster/realtime")

const (
	// MessageRefresh tells clients to fetch songs and setlists again.
	MessageRefresh = "REFRESH"

	sendQueueSize = 8
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
)

// Message is what clients receive: {"type": "REFRESH"}
type Message struct {
	Type string `json:"type"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Hub keeps the connected clients and fans messages out to them.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // the frontend may be served from a dev server
			},
		},
		clients: make(map[string]*client),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every connected client.
//
// It never blocks: a client whose queue is full misses the message.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.WithError(err).Error("Broadcast: Marshal failed")
		return
	}

	h.mu.RLock()
	snapshot := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.RUnlock()

	for _, c := range snapshot {
		select {
		case c.send <- data:
		default:
			logger.WithField("client", c.id).Debug("Broadcast: client not ready, skipped")
		}
	}
}

// Refresh broadcasts {"type": "REFRESH"}.
func (h *Hub) Refresh() {
	h.Broadcast(Message{Type: MessageRefresh})
}

// ServeWS upgrades the request and registers the connection
// until the client goes away.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response
		logger.WithError(err).Warn("ServeWS: Upgrade failed")
		return
	}

	cl := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	h.register(cl)

	go h.writePump(cl)
	h.readPump(cl)
}

// IsUpgrade reports whether the request asks for a websocket.
func IsUpgrade(c *gin.Context) bool {
	return websocket.IsWebSocketUpgrade(c.Request)
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl.id] = cl
	n := len(h.clients)
	h.mu.Unlock()

	logger.WithField("client", cl.id).WithField("clients", n).Info("client connected")
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl.id]; ok {
		delete(h.clients, cl.id)
		close(cl.done)
	}
	n := len(h.clients)
	h.mu.Unlock()

	logger.WithField("client", cl.id).WithField("clients", n).Info("client disconnected")
}

// readPump discards what the client says and notices when it leaves.
func (h *Hub) readPump(cl *client) {
	defer func() {
		h.unregister(cl)
		cl.conn.Close()
	}()

	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case <-cl.done:
			return
		case data := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
