package ws

import (
	"testing"
	"time"

	"github.com/hilthontt/ember/internal/domain"
)

func testMessage() domain.Message {
	return domain.Message{ID: "m1", RoomID: "r1", Sender: "a", Text: "hi", Timestamp: 1}
}

func TestHubBroadcastAndDestroy(t *testing.T) {
	m := NewRoomManager()
	hub := NewHub(m)
	go hub.Run()

	client := newTestClient("r1")
	hub.Register() <- client

	waitFor(t, func() bool { return m.ClientCount("r1") == 1 })

	hub.Broadcast() <- NewChatMessage("r1", testMessage())

	select {
	case got := <-client.Message:
		if got.Type != ChatMessage {
			t.Fatalf("message type = %q; want %q", got.Type, ChatMessage)
		}
	case <-time.After(time.Second):
		t.Fatalf("broadcast never arrived")
	}

	// A destroy event empties the room after delivery.
	hub.Broadcast() <- NewRoomDestroyed("r1")
	waitFor(t, func() bool { return m.ClientCount("r1") == 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition never met")
}
