package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hilthontt/ember/internal/domain"
	"github.com/hilthontt/ember/internal/persistence/kv"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type messageRepository struct {
	store  kv.Store
	tracer trace.Tracer
}

func NewMessageRepository(store kv.Store, tracer trace.Tracer) domain.MessageRepository {
	return &messageRepository{
		store:  store,
		tracer: tracer,
	}
}

// Append writes the full record (author token included) to the room's log
// and re-syncs both the log's and the room's expiry to the room's current
// remaining lifetime. Concurrent posts race on that refresh, but they all
// read from the same source key within the same window, so the writes
// converge.
func (r *messageRepository) Append(ctx context.Context, roomID string, message *domain.Message) error {
	ctx, span := r.tracer.Start(ctx, "messageRepository.Append")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", roomID),
		attribute.String("message.id", message.ID),
	)

	remaining, err := r.store.TTL(ctx, roomKey(roomID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read room ttl")
		return err
	}
	if remaining <= 0 {
		span.SetStatus(codes.Error, "room gone")
		return domain.ErrRoomNotFound
	}

	data, err := json.Marshal(message)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := r.store.RPush(ctx, messagesKey(roomID), string(data)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to append message")
		return err
	}

	// Keep the log's lifetime glued to the room's so both expire together.
	if err := r.store.Expire(ctx, messagesKey(roomID), remaining); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to refresh message log ttl")
		return err
	}
	if err := r.store.Expire(ctx, roomKey(roomID), remaining); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to refresh room ttl")
		return err
	}

	span.SetStatus(codes.Ok, "message appended")
	return nil
}

func (r *messageRepository) GetByRoomID(ctx context.Context, roomID string) ([]domain.Message, error) {
	ctx, span := r.tracer.Start(ctx, "messageRepository.GetByRoomID")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	raw, err := r.store.LRange(ctx, messagesKey(roomID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read message log")
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, entry := range raw {
		var m domain.Message
		if err := json.Unmarshal([]byte(entry), &m); err != nil {
			// A corrupt entry shouldn't take the whole log down with it.
			log.Printf("skipping corrupt message entry in room %s: %v", roomID, err)
			continue
		}
		messages = append(messages, m)
	}

	span.SetAttributes(attribute.Int("messages.count", len(messages)))
	span.SetStatus(codes.Ok, fmt.Sprintf("loaded %d messages", len(messages)))
	return messages, nil
}
