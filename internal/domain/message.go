package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hilthontt/ember/internal/infrastructure/validate"
)

const (
	maxSenderLength = 100
	maxTextLength   = 1000
)

// Message is the stored record. Token is the author's participant token;
// it is persisted server-side and stripped for every reader except the
// author (see Redacted).
type Message struct {
	ID        string `json:"id"`
	RoomID    string `json:"roomId"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Token     string `json:"token,omitempty"`
}

type MessageRepository interface {
	Append(ctx context.Context, roomID string, message *Message) error
	GetByRoomID(ctx context.Context, roomID string) ([]Message, error)
}

func NewMessage(roomID, sender, text, authorToken string) (*Message, error) {
	validateSender := validate.Field("sender", validate.Required(), validate.MaxLength(maxSenderLength))
	validateText := validate.Field("text", validate.Required(), validate.MaxLength(maxTextLength))

	if err := validateSender(sender); err != nil {
		return nil, err
	}
	if err := validateText(text); err != nil {
		return nil, err
	}

	return &Message{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Sender:    strings.TrimSpace(sender),
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
		Token:     authorToken,
	}, nil
}

// Redacted returns a copy safe to hand to the given reader: the author
// token survives only when it is the reader's own, so a client can tell
// its messages apart without ever seeing the other participant's token.
func (m Message) Redacted(readerToken string) Message {
	if readerToken == "" || m.Token != readerToken {
		m.Token = ""
	}
	return m
}
