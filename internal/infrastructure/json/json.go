package json

import (
	stdjson "encoding/json"
	"errors"
	"net/http"

	"github.com/hilthontt/ember/internal/domain"
)

const maxBodyBytes = 1 << 20

// errorResponse is the only error envelope the API ever emits. The tag is
// machine-readable; store and transport detail never leaks into it.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func Read(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return stdjson.NewDecoder(r.Body).Decode(v)
}

func Write(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = stdjson.NewEncoder(w).Encode(data)
}

// Tag maps an error to its wire tag.
func Tag(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return "room-not-found"
	case errors.Is(err, domain.ErrRoomBusy):
		return "room-busy"
	case errors.Is(err, domain.ErrRoomFull):
		return "room-full"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	default:
		return "internal-error"
	}
}

func WriteError(w http.ResponseWriter, status int, err error, message string) {
	Write(w, status, errorResponse{Error: Tag(err), Message: message})
}

func WriteValidationError(w http.ResponseWriter, err error) {
	Write(w, http.StatusBadRequest, errorResponse{Error: "validation-error", Message: err.Error()})
}

func WriteInternalError(w http.ResponseWriter, _ error) {
	Write(w, http.StatusInternalServerError, errorResponse{Error: "internal-error"})
}
