package ws

import "github.com/hilthontt/ember/internal/domain"

type WSMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Data   any    `json:"data"`
}

type DestroyPayload struct {
	IsDestroyed bool `json:"isDestroyed"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Retry   bool   `json:"retry,omitempty"`
}

func NewChatMessage(roomID string, message domain.Message) *WSMessage {
	return &WSMessage{
		Type:   ChatMessage,
		RoomID: roomID,
		Data:   message,
	}
}

func NewRoomDestroyed(roomID string) *WSMessage {
	return &WSMessage{
		Type:   ChatDestroy,
		RoomID: roomID,
		Data:   DestroyPayload{IsDestroyed: true},
	}
}

func NewAuthError(roomID, message string) *WSMessage {
	return &WSMessage{
		Type:   AuthenticationError,
		RoomID: roomID,
		Data: ErrorPayload{
			Code:    "AUTH_FAILED",
			Message: message,
			Retry:   true,
		},
	}
}

func NewAttachFailed(roomID, reason string) *WSMessage {
	return &WSMessage{
		Type:   AttachFailed,
		RoomID: roomID,
		Data: ErrorPayload{
			Message: reason,
		},
	}
}
