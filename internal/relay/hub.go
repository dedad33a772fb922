package relay

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// conn is the write surface of a relay connection. Satisfied by
// *websocket.Conn; tests substitute an in-memory recorder.
type conn interface {
	WriteMessage(messageType int, data []byte) error
}

// Client is one live relay session. It has no persisted identity; the
// only durable fact about it is the set of rooms it has joined.
type Client struct {
	ID      string
	conn    conn
	writeMu sync.Mutex

	// rooms is owned by the Hub and mutated only under hub.mu
	rooms map[string]struct{}
}

// NewClient wraps a connection in a relay session
func NewClient(c conn) *Client {
	return &Client{
		ID:    uuid.NewString(),
		conn:  c,
		rooms: make(map[string]struct{}),
	}
}

// send writes one frame, serializing concurrent writers on this connection
func (c *Client) send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub owns the room-membership table. Rooms exist only while they have
// members; membership comes only from explicit join events. Nothing
// outside this type may read or mutate the table.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// Register adds a new session
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	log.Printf("[Relay] Client connected: %s, total: %d", c.ID, len(h.clients))
}

// Unregister drops a session and removes it from every room it joined.
// No leave notification is sent to remaining room members.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomKey := range c.rooms {
		if members, ok := h.rooms[roomKey]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, roomKey)
				log.Printf("[Relay] Removed empty room: %s", roomKey)
			}
		}
	}
	c.rooms = make(map[string]struct{})

	delete(h.clients, c)
	log.Printf("[Relay] Client disconnected: %s, total: %d", c.ID, len(h.clients))
}

// Join adds a client to a room. Room keys are client-supplied and
// unchecked: any session may join any room it can name. Idempotent.
func (h *Hub) Join(c *Client, roomKey string) {
	if roomKey == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := c.rooms[roomKey]; ok {
		return
	}

	members, ok := h.rooms[roomKey]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[roomKey] = members
	}
	members[c] = struct{}{}
	c.rooms[roomKey] = struct{}{}

	log.Printf("[Relay] Client %s joined room %s, members: %d", c.ID, roomKey, len(members))
}

// Relay delivers a frame to every member of a room except the sender.
// Fire and forget: no acknowledgement, no buffering, no delivery order
// across recipients. A room with no other members drops the frame.
func (h *Hub) Relay(sender *Client, roomKey string, data []byte) {
	if data == nil {
		return
	}
	for _, member := range h.roomSnapshot(roomKey) {
		if member == sender {
			continue
		}
		if err := member.send(data); err != nil {
			log.Printf("[Relay] Failed to send to client %s in room %s: %v", member.ID, roomKey, err)
		}
	}
}

// RelayToRoom delivers a frame to every member of a room, sender included
func (h *Hub) RelayToRoom(roomKey string, data []byte) {
	if data == nil {
		return
	}
	for _, member := range h.roomSnapshot(roomKey) {
		if err := member.send(data); err != nil {
			log.Printf("[Relay] Failed to send to client %s in room %s: %v", member.ID, roomKey, err)
		}
	}
}

// BroadcastAll delivers a frame to every connected session regardless of
// room membership. Used for project-updated only; the broad fan-out is
// deliberate.
func (h *Hub) BroadcastAll(data []byte) {
	if data == nil {
		return
	}
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			log.Printf("[Relay] Broadcast failed for client %s: %v", c.ID, err)
		}
	}
}

// roomSnapshot copies the member list so sends happen outside the lock
func (h *Hub) roomSnapshot(roomKey string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[roomKey]
	if !ok {
		return nil
	}
	out := make([]*Client, 0, len(members))
	for m := range members {
		out = append(out, m)
	}
	return out
}

// ClientCount reports the number of connected sessions
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount reports the number of live rooms
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
