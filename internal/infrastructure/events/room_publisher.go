package events

import (
	"context"
	"encoding/json"

	"github.com/hilthontt/ember/internal/domain"
	"github.com/hilthontt/ember/internal/infrastructure/contracts"
	"github.com/hilthontt/ember/internal/infrastructure/messaging"
)

// RoomPublisher pushes room events onto the broadcast exchange. It is the
// only domain.Broadcaster implementation; callers hand it already-redacted
// messages, it never strips tokens itself.
type RoomPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewRoomPublisher(rabbitmq *messaging.RabbitMQ) *RoomPublisher {
	return &RoomPublisher{
		rabbitmq: rabbitmq,
	}
}

var _ domain.Broadcaster = (*RoomPublisher)(nil)

func (p *RoomPublisher) PublishChatMessage(ctx context.Context, roomID string, message domain.Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, contracts.EventChatMessage, contracts.AmqpMessage{
		RoomID: roomID,
		Data:   payload,
	})
}

func (p *RoomPublisher) PublishRoomDestroyed(ctx context.Context, roomID string) error {
	payload, err := json.Marshal(messaging.DestroyEventData{IsDestroyed: true})
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, contracts.EventChatDestroy, contracts.AmqpMessage{
		RoomID: roomID,
		Data:   payload,
	})
}
