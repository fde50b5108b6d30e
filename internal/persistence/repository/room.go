package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/hilthontt/ember/internal/domain"
	"github.com/hilthontt/ember/internal/persistence/kv"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	connectedField = "connected"
	createdAtField = "createdAt"
)

type roomRepository struct {
	store   kv.Store
	ttl     time.Duration
	lockTTL time.Duration
	tracer  trace.Tracer
}

func NewRoomRepository(store kv.Store, roomTTL, lockTTL time.Duration, tracer trace.Tracer) domain.RoomRepository {
	if roomTTL <= 0 {
		roomTTL = domain.RoomTTL
	}
	if lockTTL <= 0 {
		lockTTL = domain.LockTTL
	}

	return &roomRepository{
		store:   store,
		ttl:     roomTTL,
		lockTTL: lockTTL,
		tracer:  tracer,
	}
}

func (r *roomRepository) Create(ctx context.Context) (*domain.Room, string, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.Create")
	defer span.End()

	roomID, err := domain.GenerateID(domain.IDLength)
	if err != nil {
		span.RecordError(err)
		return nil, "", err
	}
	token, err := domain.GenerateID(domain.IDLength)
	if err != nil {
		span.RecordError(err)
		return nil, "", err
	}

	span.SetAttributes(attribute.String("room.id", roomID))

	room := &domain.Room{
		ID:        roomID,
		Connected: []string{token},
		CreatedAt: time.Now(),
	}

	if err := r.writeRecord(ctx, room); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write room record")
		return nil, "", err
	}

	if err := r.store.Expire(ctx, roomKey(roomID), r.ttl); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set room expiry")
		return nil, "", err
	}

	span.SetStatus(codes.Ok, "room created")
	return room, token, nil
}

// Admit runs the locked admission protocol: a short-lived store-side lock
// turns the read-check-append sequence into a critical section, so two
// first-time visitors racing each other cannot both pass the capacity
// check. Holders of a seated token are readmitted without mutation.
func (r *roomRepository) Admit(ctx context.Context, roomID, existingToken string) (string, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.Admit")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	acquired, err := r.store.SetNX(ctx, roomLockKey(roomID), "1", r.lockTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lock acquire failed")
		return "", err
	}
	if !acquired {
		// Someone else is mid-admission. Fail fast; the caller retries.
		span.SetStatus(codes.Error, "room busy")
		return "", domain.ErrRoomBusy
	}

	// The lock is released on every exit path. Its expiry bounds the
	// damage if this process dies before the deferred delete runs.
	defer func() {
		_ = r.store.Del(context.WithoutCancel(ctx), roomLockKey(roomID))
	}()

	room, err := r.GetByID(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if room.HasToken(existingToken) {
		span.SetAttributes(attribute.Bool("room.rejoin", true))
		span.SetStatus(codes.Ok, "existing participant readmitted")
		return existingToken, nil
	}

	if room.IsFull() {
		span.SetStatus(codes.Error, "room full")
		return "", domain.ErrRoomFull
	}

	token, err := domain.GenerateID(domain.IDLength)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	// The store has no atomic list-append-with-uniqueness primitive for
	// hash fields, so the whole membership array is rewritten under the
	// lock.
	if err := room.AddToken(token); err != nil {
		span.RecordError(err)
		return "", err
	}
	if err := r.writeRecord(ctx, room); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist membership")
		return "", err
	}

	span.SetStatus(codes.Ok, "participant admitted")
	return token, nil
}

func (r *roomRepository) GetByID(ctx context.Context, roomID string) (*domain.Room, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	fields, err := r.store.HGetAll(ctx, roomKey(roomID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read room record")
		return nil, err
	}
	if len(fields) == 0 {
		span.SetStatus(codes.Error, "room not found")
		return nil, domain.ErrRoomNotFound
	}

	room := &domain.Room{ID: roomID}

	if raw, ok := fields[connectedField]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &room.Connected); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("corrupt membership record for room %s: %w", roomID, err)
		}
	}

	if raw, ok := fields[createdAtField]; ok && raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("corrupt createdAt for room %s: %w", roomID, err)
		}
		room.CreatedAt = time.UnixMilli(ms)
	}

	span.SetStatus(codes.Ok, "room loaded")
	return room, nil
}

func (r *roomRepository) TTL(ctx context.Context, roomID string) (time.Duration, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.TTL")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	d, err := r.store.TTL(ctx, roomKey(roomID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read ttl")
		return 0, err
	}

	// The store reports missing keys and keys without expiry as negative
	// durations; callers only ever see zero for a gone room.
	if d < 0 {
		d = 0
	}

	span.SetAttributes(attribute.Int64("room.ttl_seconds", int64(d.Seconds())))
	span.SetStatus(codes.Ok, "ttl read")
	return d, nil
}

func (r *roomRepository) Destroy(ctx context.Context, roomID string) error {
	ctx, span := r.tracer.Start(ctx, "roomRepository.Destroy")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	if err := r.store.Del(ctx, roomKey(roomID), messagesKey(roomID)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete room keys")
		return err
	}

	span.SetStatus(codes.Ok, "room destroyed")
	return nil
}

func (r *roomRepository) writeRecord(ctx context.Context, room *domain.Room) error {
	connected, err := json.Marshal(room.Connected)
	if err != nil {
		return err
	}

	return r.store.HSet(ctx, roomKey(room.ID), map[string]any{
		connectedField: string(connected),
		createdAtField: strconv.FormatInt(room.CreatedAt.UnixMilli(), 10),
	})
}
