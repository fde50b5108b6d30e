package users

import (
	"log"
	"net/http"

	"github.com/hilthontt/ember/internal/domain"
	"github.com/hilthontt/ember/internal/infrastructure/json"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GenerateUsernameHandler godoc
// @Summary      Generate a throwaway username
// @Description  Returns a random adjective-animal-suffix display name
// @Tags         users
// @Produce      json
// @Success      200 {object} usernameResponse "Generated username"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/username [get]
func (h *Handler) GenerateUsernameHandler(w http.ResponseWriter, r *http.Request) {
	username, err := domain.GenerateUsername()
	if err != nil {
		log.Printf("Failed to generate username: %v", err)
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, usernameResponse{Username: username})
}
