package ws

import (
	"testing"
)

func newTestClient(roomID string) *Client {
	return &Client{
		conn:    newConnWrapper(nil),
		Message: make(chan *WSMessage, 64),
		Token:   "tok",
		RoomID:  roomID,
	}
}

func TestRoomManagerAddRemove(t *testing.T) {
	m := NewRoomManager()

	a := newTestClient("r1")
	b := newTestClient("r1")
	other := newTestClient("r2")

	m.AddClient(a)
	m.AddClient(b)
	m.AddClient(other)

	if got := m.ClientCount("r1"); got != 2 {
		t.Fatalf("ClientCount(r1) = %d; want 2", got)
	}
	if got := m.ClientCount("r2"); got != 1 {
		t.Fatalf("ClientCount(r2) = %d; want 1", got)
	}

	m.RemoveClient(a)
	if got := m.ClientCount("r1"); got != 1 {
		t.Fatalf("ClientCount(r1) after remove = %d; want 1", got)
	}

	// Removal closes the client's delivery channel exactly once; a second
	// remove of the same client is a no-op.
	if _, open := <-a.Message; open {
		t.Fatalf("removed client's channel still open")
	}
	m.RemoveClient(a)

	m.RemoveClient(b)
	if got := m.ClientCount("r1"); got != 0 {
		t.Fatalf("ClientCount(r1) after removing all = %d; want 0", got)
	}
}

func TestRoomManagerBroadcastToRoom(t *testing.T) {
	m := NewRoomManager()

	a := newTestClient("r1")
	b := newTestClient("r1")
	other := newTestClient("r2")

	m.AddClient(a)
	m.AddClient(b)
	m.AddClient(other)

	msg := NewRoomDestroyed("r1")
	m.BroadcastToRoom(msg)

	for _, c := range []*Client{a, b} {
		select {
		case got := <-c.Message:
			if got.Type != ChatDestroy || got.RoomID != "r1" {
				t.Fatalf("unexpected message: %+v", got)
			}
		default:
			t.Fatalf("attached client missed the broadcast")
		}
	}

	select {
	case got := <-other.Message:
		t.Fatalf("client in another room received %+v", got)
	default:
	}
}

func TestRoomManagerCloseRoom(t *testing.T) {
	m := NewRoomManager()

	a := newTestClient("r1")
	b := newTestClient("r1")
	m.AddClient(a)
	m.AddClient(b)

	m.CloseRoom("r1")

	if got := m.ClientCount("r1"); got != 0 {
		t.Fatalf("ClientCount after CloseRoom = %d; want 0", got)
	}
	if _, open := <-a.Message; open {
		t.Fatalf("channel still open after CloseRoom")
	}

	// Clients reaped later by their read pumps must not double-close.
	m.RemoveClient(a)
	m.RemoveClient(b)

	// An unknown room is a no-op.
	m.CloseRoom("ghost")
}
