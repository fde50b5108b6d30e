package repository

import "fmt"

const (
	roomKeyPrefix     = "meta"
	messagesKeyPrefix = "messages"
)

func roomKey(roomID string) string {
	return fmt.Sprintf("%s:%s", roomKeyPrefix, roomID)
}

func roomLockKey(roomID string) string {
	return roomKey(roomID) + ":lock"
}

func messagesKey(roomID string) string {
	return fmt.Sprintf("%s:%s", messagesKeyPrefix, roomID)
}
