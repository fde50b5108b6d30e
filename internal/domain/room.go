package domain

import (
	"context"
	"errors"
	"time"
)

const (
	// MaxParticipants is the hard seat limit per room. The admission
	// protocol in the repository enforces it under a store-side lock.
	MaxParticipants = 2

	// IDLength is the length of room identifiers and participant tokens.
	IDLength = 15

	RoomTTL = 10 * time.Minute
	LockTTL = time.Second
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrRoomBusy     = errors.New("room is busy")
	ErrUnauthorized = errors.New("unauthorized")
)

// Room is the membership record held in the store. The remaining lifetime
// is not part of the record; it lives in the store's native key expiry.
type Room struct {
	ID        string    `json:"id"`
	Connected []string  `json:"connected"`
	CreatedAt time.Time `json:"createdAt"`
}

type RoomRepository interface {
	Create(ctx context.Context) (*Room, string, error)
	Admit(ctx context.Context, roomID, existingToken string) (string, error)
	GetByID(ctx context.Context, roomID string) (*Room, error)
	TTL(ctx context.Context, roomID string) (time.Duration, error)
	Destroy(ctx context.Context, roomID string) error
}

func (r *Room) HasToken(token string) bool {
	if token == "" {
		return false
	}
	for _, t := range r.Connected {
		if t == token {
			return true
		}
	}
	return false
}

func (r *Room) IsFull() bool {
	return len(r.Connected) >= MaxParticipants
}

// AddToken appends a participant token, preserving join order. The first
// entry is always the creator.
func (r *Room) AddToken(token string) error {
	if r.HasToken(token) {
		return nil
	}
	if r.IsFull() {
		return ErrRoomFull
	}
	r.Connected = append(r.Connected, token)
	return nil
}
