package messages

// createMessageRequest represents the request to post a new message
type createMessageRequest struct {
	Sender string `json:"sender" example:"witty-otter-x3kf9" maxLength:"100"` // Display name of the author
	Text   string `json:"text" example:"hello there" minLength:"1" maxLength:"1000"`
}

// messageResponse represents one chat message as seen by the caller.
// The token field only survives redaction for the author's own messages.
type messageResponse struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440003"`
	RoomID    string `json:"roomId" example:"p8fnWEDhZyHzGK4"`
	Sender    string `json:"sender" example:"witty-otter-x3kf9"`
	Text      string `json:"text" example:"hello there"`
	Timestamp int64  `json:"timestamp" example:"1735689600000"` // Milliseconds since the Unix epoch
	Token     string `json:"token,omitempty"`
}

// listMessagesResponse wraps the redacted message log of a room
type listMessagesResponse struct {
	Messages []messageResponse `json:"messages"`
}
