package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	RoomID string `json:"roomId"`
	Data   []byte `json:"data"`
}

// Routing keys - one per broadcast event a room can emit
const (
	EventChatMessage = "chat.message"
	EventChatDestroy = "chat.destroy"
)
