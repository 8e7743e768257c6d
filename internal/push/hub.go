package push

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one push message to UI subscribers of a league.
type Event struct {
	Type    string          `json:"type"`
	LID     int             `json:"lid"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans league events out to websocket subscribers. Slow clients are
// dropped rather than allowed to block the broadcast path.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[int]map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	sendBufferSize = 16
)

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: map[int]map[*client]struct{}{},
	}
}

// Subscribe upgrades the request and registers the connection for lid's
// events until the peer disconnects.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, lid int) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}

	h.mu.Lock()
	if h.clients[lid] == nil {
		h.clients[lid] = map[*client]struct{}{}
	}
	h.clients[lid][c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(lid, c)
	h.readPump(lid, c)
}

// Broadcast marshals payload and queues it to every subscriber of lid.
func (h *Hub) Broadcast(lid int, eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("ws marshal payload", "type", eventType, "err", err)
		return
	}
	msg, err := json.Marshal(Event{Type: eventType, LID: lid, Payload: raw})
	if err != nil {
		h.log.Error("ws marshal event", "type", eventType, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[lid] {
		select {
		case c.send <- msg:
		default:
			// Buffer full: the client is not keeping up.
			h.dropLocked(lid, c)
		}
	}
}

func (h *Hub) drop(lid int, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(lid, c)
}

func (h *Hub) dropLocked(lid int, c *client) {
	if _, ok := h.clients[lid][c]; !ok {
		return
	}
	delete(h.clients[lid], c)
	if len(h.clients[lid]) == 0 {
		delete(h.clients, lid)
	}
	close(c.send)
	c.conn.Close()
}

func (h *Hub) readPump(lid int, c *client) {
	defer h.drop(lid, c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// Subscribers never send application data; reads exist to
		// process control frames and detect the close.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(lid int, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.drop(lid, c)
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
