package messaging

const (
	ChatEventsQueue = "chat.events"
	DeadLetterQueue = "dead_letter_queue"
)

// DestroyEventData is the payload carried by a chat.destroy event.
type DestroyEventData struct {
	IsDestroyed bool `json:"isDestroyed"`
}
