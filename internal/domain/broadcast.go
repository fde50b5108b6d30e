package domain

import "context"

// Broadcaster fans room events out to connected participants. The room and
// message managers only ever publish; delivery is the transport's problem.
type Broadcaster interface {
	PublishChatMessage(ctx context.Context, roomID string, message Message) error
	PublishRoomDestroyed(ctx context.Context, roomID string) error
}
