// Package hub pushes clinic events to connected browsers over WebSocket.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"dentalboard-backend/internal/events"
	"dentalboard-backend/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// Message is the JSON frame browsers receive.
type Message struct {
	Kind     string            `json:"kind"`
	ClinicID string            `json:"clinic_id"`
	Subject  string            `json:"subject,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	At       time.Time         `json:"at"`
}

type client struct {
	conn *websocket.Conn
	// clinicID "" receives every clinic's events.
	clinicID string
	send     chan []byte
	once     sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

func New() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Serve registers conn for clinicID and blocks until the peer goes away.
func (h *Hub) Serve(conn *websocket.Conn, clinicID string) {
	c := &client{conn: conn, clinicID: clinicID, send: make(chan []byte, sendBuffer)}
	h.add(c)
	go c.writePump()
	c.readPump()
	h.remove(c)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	slog.Debug("live client connected", "clinic_id", c.clinicID, "clients", n)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	n := len(h.clients)
	h.mu.Unlock()
	slog.Debug("live client disconnected", "clinic_id", c.clinicID, "clients", n)
}

// Count is the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues ev for every client watching its clinic and returns how
// many received it. Clients whose buffer is full are dropped.
func (h *Hub) Broadcast(ev models.Event) int {
	data, err := json.Marshal(Message{
		Kind:     ev.Kind,
		ClinicID: ev.ClinicID,
		Subject:  ev.Subject,
		Attrs:    ev.Attrs,
		At:       time.UnixMilli(ev.TS).UTC(),
	})
	if err != nil {
		slog.Error("marshal live event", "error", err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for c := range h.clients {
		if c.clinicID != "" && c.clinicID != ev.ClinicID {
			continue
		}
		select {
		case c.send <- data:
			sent++
		default:
			slog.Warn("live client too slow, dropping", "clinic_id", c.clinicID)
			delete(h.clients, c)
			c.close()
		}
	}
	return sent
}

// Relay subscribes to every clinic event on this instance. The subscription
// is ephemeral and starts at new messages; missed events are not replayed.
func (h *Hub) Relay(js nats.JetStreamContext, subject string) (*nats.Subscription, error) {
	return js.Subscribe(subject, h.handleMsg, nats.DeliverNew(), nats.AckNone())
}

func (h *Hub) handleMsg(m *nats.Msg) {
	ev, err := events.Decode(m.Data)
	if err != nil {
		slog.Warn("undecodable event on live relay", "subject", m.Subject, "error", err)
		return
	}
	h.Broadcast(ev)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

// readPump discards client frames; it exists to process pongs and notice
// closed connections.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
