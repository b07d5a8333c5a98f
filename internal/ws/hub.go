package ws

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one subscribed connection. Outbound messages go through a
// bounded buffer so a slow or dead peer can never block the sender; when
// the buffer overflows the client is dropped from the room and must
// resynchronize with a fresh snapshot on reconnect.
type Client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	outbox chan WSMessage
	closed bool
}

func NewClient(conn *websocket.Conn, buffer int) *Client {
	if buffer <= 0 {
		buffer = 64
	}
	return &Client{
		conn:   conn,
		outbox: make(chan WSMessage, buffer),
	}
}

// Send queues a message without blocking. It reports false when the client
// is closed or its buffer is full; the caller is expected to drop it.
func (c *Client) Send(msg WSMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.outbox <- msg:
		return true
	default:
		return false
	}
}

// Outbox exposes the queued messages for the connection's writer loop.
func (c *Client) Outbox() <-chan WSMessage {
	return c.outbox
}

// Close shuts the outbox; the writer loop drains and exits. Safe to call
// more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.outbox)
}

// WritePump marshals queued messages onto the websocket until the outbox is
// closed. Runs as the connection's single writer goroutine.
func (c *Client) WritePump() {
	for msg := range c.outbox {
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Printf("ws: write error: %v", err)
			break
		}
	}
	c.conn.Close()
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) AddClient(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
	log.Printf("ws: client joined room %s (total: %d)", room, len(h.rooms[room]))
}

func (h *Hub) RemoveClient(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.rooms[room]; ok {
		delete(clients, c)
		c.Close()
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
		log.Printf("ws: client left room %s", room)
	}
}

// Broadcast fans a message out to every client in the room. Clients that
// cannot keep up are dropped from the room, not from the session.
func (h *Hub) Broadcast(room string, msg WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[room]
	if !ok {
		return
	}

	for c := range clients {
		if !c.Send(msg) {
			log.Printf("ws: dropping slow client from room %s", room)
			delete(clients, c)
			c.Close()
		}
	}
	if len(clients) == 0 {
		delete(h.rooms, room)
	}
}
