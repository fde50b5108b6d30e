package ws

// Hub fans broadcast events out to attached clients. All room state here
// is presence only; membership truth stays in the store.
type Hub struct {
	roomMgr    *RoomManager
	register   chan *Client
	unregister chan *Client
	broadcast  chan *WSMessage
}

func NewHub(roomMgr *RoomManager) *Hub {
	return &Hub{
		roomMgr:    roomMgr,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *WSMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.roomMgr.AddClient(c)

		case c := <-h.unregister:
			h.roomMgr.RemoveClient(c)

		case msg := <-h.broadcast:
			h.roomMgr.BroadcastToRoom(msg)

			// A destroyed room takes its connections with it; clients
			// that missed the event fall back on passive expiry anyway.
			if msg.Type == ChatDestroy {
				h.roomMgr.CloseRoom(msg.RoomID)
			}
		}
	}
}

func (h *Hub) Register() chan<- *Client {
	return h.register
}

func (h *Hub) Unregister() chan<- *Client {
	return h.unregister
}

func (h *Hub) Broadcast() chan<- *WSMessage {
	return h.broadcast
}
