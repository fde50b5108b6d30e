package ws

const (
	ChatMessage = "chat.message"
	ChatDestroy = "chat.destroy"

	ErrorEvent          = "error"
	AuthenticationError = "error.auth"
	AttachFailed        = "error.attach"
)
