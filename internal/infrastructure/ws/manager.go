package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced at the router; the upgrade itself is open.
		return true
	},
}

// RoomManager tracks which clients are attached to which room.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms: make(map[string]map[*Client]struct{}),
	}
}

func (m *RoomManager) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}

func (m *RoomManager) AddClient(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clients, ok := m.rooms[c.RoomID]
	if !ok {
		clients = make(map[*Client]struct{})
		m.rooms[c.RoomID] = clients
	}
	clients[c] = struct{}{}
}

func (m *RoomManager) RemoveClient(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clients, ok := m.rooms[c.RoomID]
	if !ok {
		return
	}

	if _, attached := clients[c]; attached {
		delete(clients, c)
		close(c.Message)
	}
	if len(clients) == 0 {
		delete(m.rooms, c.RoomID)
	}
}

// BroadcastToRoom delivers the message to every client attached to its
// room. Slow clients get dropped rather than blocking the fan-out.
func (m *RoomManager) BroadcastToRoom(msg *WSMessage) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for c := range m.rooms[msg.RoomID] {
		select {
		case c.Message <- msg:
		default:
			// Buffer full: the write pump stalled, let the read pump
			// reap the connection.
			_ = c.conn.Close()
		}
	}
}

// CloseRoom disconnects every client attached to the room.
func (m *RoomManager) CloseRoom(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for c := range m.rooms[roomID] {
		close(c.Message)
	}
	delete(m.rooms, roomID)
}

func (m *RoomManager) ClientCount(roomID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[roomID])
}
