// Package ws provides the push transport: WebSocket connection management and
// the chat event protocol layered on top of it.
package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ErrBufferFull is returned when a connection's outbound buffer is saturated.
var ErrBufferFull = errors.New("send buffer full")

// ErrConnClosed is returned when queueing on a connection that has already
// been unregistered.
var ErrConnClosed = errors.New("connection closed")

// Connection represents a single WebSocket connection. A connection becomes
// bound to an owner after its first chat event; until then it receives only
// connection-scoped errors.
type Connection struct {
	ID      string
	OwnerID string
	Conn    *websocket.Conn
	Send    chan []byte
	hub     *Hub

	mu sync.Mutex // serializes socket writes

	sendMu sync.Mutex // guards closed and the close of Send
	closed bool
}

// enqueue queues data on Send without blocking. It is safe against late
// deliveries: a pipeline goroutine that outlives its client gets ErrConnClosed
// instead of a send on a closed channel.
func (c *Connection) enqueue(data []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.Send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// closeSend closes the outbound channel exactly once.
func (c *Connection) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Hub manages all WebSocket connections.
//
// Connections are indexed by connection ID, and owners map to the set of
// connection IDs currently bound to them (one user may keep several tabs
// open). All state is guarded by a single RWMutex; registration and
// unregistration flow through channels serviced by Run.
type Hub struct {
	connections map[string]*Connection
	owners      map[string]map[string]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *ownerMessage

	mu sync.RWMutex
}

// ownerMessage is a payload fanned out to every connection of one owner.
type ownerMessage struct {
	OwnerID string
	Data    []byte
}

// NewHub creates a new Hub. Call Run in a goroutine before registering
// connections.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		owners:      make(map[string]map[string]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *ownerMessage, 256),
	}
}

// Run services the hub's registration and fanout channels. It blocks until
// the process exits.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if conn.OwnerID != "" {
				if h.owners[conn.OwnerID] == nil {
					h.owners[conn.OwnerID] = make(map[string]bool)
				}
				h.owners[conn.OwnerID][conn.ID] = true
			}
			h.mu.Unlock()
			log.Debug().Str("conn_id", conn.ID).Str("owner_id", conn.OwnerID).Msg("ws connection registered")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				if conn.OwnerID != "" && h.owners[conn.OwnerID] != nil {
					delete(h.owners[conn.OwnerID], conn.ID)
					if len(h.owners[conn.OwnerID]) == 0 {
						delete(h.owners, conn.OwnerID)
					}
				}
				conn.closeSend()
			}
			h.mu.Unlock()
			log.Debug().Str("conn_id", conn.ID).Msg("ws connection unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			for connID := range h.owners[msg.OwnerID] {
				if conn, exists := h.connections[connID]; exists {
					if err := conn.enqueue(msg.Data); errors.Is(err, ErrBufferFull) {
						// Buffer full; drop the connection rather than block the hub.
						log.Warn().Str("conn_id", connID).Msg("ws buffer full, closing")
						go h.Unregister(conn)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NewConnection wraps a raw WebSocket into an unregistered Connection.
func (h *Hub) NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ID:   uuid.NewString(),
		Conn: ws,
		Send: make(chan []byte, 256),
		hub:  h,
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection from the hub and closes its Send channel.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BindOwner associates a connection with an owner, moving it out of any
// previous binding.
func (h *Hub) BindOwner(conn *Connection, ownerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn.OwnerID != "" && h.owners[conn.OwnerID] != nil {
		delete(h.owners[conn.OwnerID], conn.ID)
		if len(h.owners[conn.OwnerID]) == 0 {
			delete(h.owners, conn.OwnerID)
		}
	}

	conn.OwnerID = ownerID
	if h.owners[ownerID] == nil {
		h.owners[ownerID] = make(map[string]bool)
	}
	h.owners[ownerID][conn.ID] = true
}

// Broadcast sends data to every connection bound to ownerID.
func (h *Hub) Broadcast(ownerID string, data []byte) {
	h.broadcast <- &ownerMessage{OwnerID: ownerID, Data: data}
}

// BroadcastJSON marshals v and sends it to every connection of an owner.
func (h *Hub) BroadcastJSON(ownerID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(ownerID, data)
	return nil
}

// SendToConnection queues data on one connection without blocking. Sending to
// a connection that has since unregistered returns ErrConnClosed.
func (h *Hub) SendToConnection(conn *Connection, data []byte) error {
	return conn.enqueue(data)
}

// SendJSONToConnection marshals v and queues it on one connection.
func (h *Hub) SendJSONToConnection(conn *Connection, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return h.SendToConnection(conn, data)
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// HasActiveConnections reports whether an owner has at least one live
// connection.
func (h *Hub) HasActiveConnections(ownerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns, ok := h.owners[ownerID]
	return ok && len(conns) > 0
}

// WriteMessage writes to the underlying socket with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// SetWriteDeadline sets the write deadline for the connection.
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

// SetReadDeadline sets the read deadline for the connection.
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

// Close closes the underlying socket.
func (c *Connection) Close() error {
	return c.Conn.Close()
}
