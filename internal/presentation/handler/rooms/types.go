package rooms

// createRoomResponse represents the response after creating a room
type createRoomResponse struct {
	RoomID string `json:"roomId" example:"p8fnWEDhZyHzGK4"` // Unique room identifier
}

// joinRoomResponse represents a successful admission into a room
type joinRoomResponse struct {
	Success bool   `json:"success" example:"true"`
	Token   string `json:"token" example:"3kfmW9DhXyHzGK4"` // Bearer token for the admitted participant
}

// ttlResponse carries the remaining room lifetime in whole seconds
type ttlResponse struct {
	TTL int64 `json:"ttl" example:"437"`
}

// destroyRoomResponse represents the response after tearing a room down
type destroyRoomResponse struct {
	Success bool `json:"success" example:"true"`
}
