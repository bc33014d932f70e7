package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/scenecore/internal/core/observability/log"
)

// client is one connected viewer. Writes go through send so a slow viewer never
// blocks the simulation goroutine.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// hub fans pre-encoded messages out to every viewer.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	count   atomic.Int64
	dropped atomic.Uint64
	logger  log.Log
}

func newHub(logger log.Log) *hub {
	return &hub{clients: make(map[*client]struct{}), logger: log.OrNop(logger)}
}

// add registers c unless the hub is full. A non-nil initial message is queued
// under the same lock, so it precedes every later broadcast and cannot race
// remove or closeAll closing c.send.
func (h *hub) add(c *client, max int, initial []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if max > 0 && len(h.clients) >= max {
		return false
	}
	h.clients[c] = struct{}{}
	h.count.Store(int64(len(h.clients)))
	if initial != nil {
		select {
		case c.send <- initial:
		default:
			h.dropped.Add(1)
		}
	}
	return true
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.count.Store(int64(len(h.clients)))
	h.mu.Unlock()
}

// broadcast queues msg for every viewer, dropping it for viewers whose queue is full.
func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped.Add(1)
			h.logger.Debug("Viewer queue full, dropping message", log.String("client_id", c.id))
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
		_ = c.conn.Close()
	}
	h.count.Store(0)
	h.mu.Unlock()
}

func (c *client) writePump(timeout time.Duration) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(timeout))
}

// readPump discards inbound frames; the feed is read-only. It returns when the
// viewer disconnects.
func (c *client) readPump() {
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
