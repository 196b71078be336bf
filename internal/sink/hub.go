package sink

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/stabilizer"
)

const (
	hubSendBuffer   = 32
	hubWriteTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is a websocket endpoint that broadcasts events to every connected
// browser. It is connected while at least one client is attached. Events a
// client publishes are relayed to all clients.
type Hub struct {
	log *logrus.Entry

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
}

// NewHub creates an empty Hub.
func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*hubClient]struct{}),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &hubClient{conn: conn, send: make(chan []byte, hubSendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.log.WithFields(logrus.Fields{"remote": r.RemoteAddr, "clients": total}).Info("Event client connected")

	done := make(chan struct{})
	go h.writePump(c, done)

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		total := len(h.clients)
		h.mu.Unlock()
		close(done)
		conn.Close()
		h.log.WithFields(logrus.Fields{"remote": r.RemoteAddr, "clients": total}).Info("Event client disconnected")
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if _, err := Decode(msg); err != nil {
			h.log.WithError(err).Debug("Ignoring client message")
			continue
		}
		h.broadcast(msg)
	}
}

func (h *Hub) writePump(c *hubClient, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(hubWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.WithError(err).Debug("Event write failed")
				c.conn.Close()
				return
			}
		}
	}
}

// Connected reports whether any client is attached.
func (h *Hub) Connected() bool {
	return h.Clients() > 0
}

// Clients returns the number of attached clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send broadcasts ev to every client. Slow clients whose buffer is full
// miss the event.
func (h *Hub) Send(ev stabilizer.Event) error {
	if !h.Connected() {
		return ErrNotConnected
	}
	msg, err := Encode(ev)
	if err != nil {
		return err
	}
	h.broadcast(msg)
	return nil
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Debug("Event client too slow, dropping message")
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.conn.Close()
	}
}
