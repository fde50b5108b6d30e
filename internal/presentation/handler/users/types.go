package users

// usernameResponse represents a generated display name
type usernameResponse struct {
	Username string `json:"username" example:"witty-otter-x3kf9"`
}
