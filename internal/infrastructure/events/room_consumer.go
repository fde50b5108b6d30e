package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hilthontt/ember/internal/domain"
	"github.com/hilthontt/ember/internal/infrastructure/contracts"
	"github.com/hilthontt/ember/internal/infrastructure/messaging"
	"github.com/hilthontt/ember/internal/infrastructure/ws"
	"github.com/rabbitmq/amqp091-go"
)

// roomConsumer bridges the broadcast exchange into the websocket hub.
// One consumer per instance; the deployment runs a single broker.
type roomConsumer struct {
	rabbitmq *messaging.RabbitMQ
	hub      *ws.Hub
}

func NewRoomConsumer(rabbitmq *messaging.RabbitMQ, hub *ws.Hub) *roomConsumer {
	return &roomConsumer{
		rabbitmq: rabbitmq,
		hub:      hub,
	}
}

func (c *roomConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.ChatEventsQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var envelope contracts.AmqpMessage
		if err := json.Unmarshal(msg.Body, &envelope); err != nil {
			log.Printf("Failed to unmarshal amqp envelope: %v", err)
			return err
		}

		switch msg.RoutingKey {
		case contracts.EventChatMessage:
			var message domain.Message
			if err := json.Unmarshal(envelope.Data, &message); err != nil {
				log.Printf("Failed to unmarshal chat message event: %v", err)
				return err
			}
			c.hub.Broadcast() <- ws.NewChatMessage(envelope.RoomID, message)

		case contracts.EventChatDestroy:
			c.hub.Broadcast() <- ws.NewRoomDestroyed(envelope.RoomID)

		default:
			log.Printf("Ignoring unknown routing key %q", msg.RoutingKey)
		}

		return nil
	})
}
