package messages

import (
	"errors"
	"log"
	"net/http"

	"github.com/hilthontt/ember/internal/domain"
	"github.com/hilthontt/ember/internal/infrastructure/json"
	"github.com/hilthontt/ember/internal/presentation/utils"
)

type Handler struct {
	roomRepository    domain.RoomRepository
	messageRepository domain.MessageRepository
	broadcaster       domain.Broadcaster
}

func NewHandler(
	roomRepository domain.RoomRepository,
	messageRepository domain.MessageRepository,
	broadcaster domain.Broadcaster,
) *Handler {
	return &Handler{
		roomRepository:    roomRepository,
		messageRepository: messageRepository,
		broadcaster:       broadcaster,
	}
}

// CreateMessageHandler godoc
// @Summary      Post a message
// @Description  Appends a message to the room log, refreshes the room lifetime and broadcasts the redacted message to attached clients
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        roomId query string true "Room ID"
// @Param        request body createMessageRequest true "Message content"
// @Success      200 {object} messageResponse "Message created successfully"
// @Failure      400 {object} map[string]interface{} "Validation error or missing room ID"
// @Failure      401 {object} map[string]interface{} "Caller is not a participant"
// @Failure      404 {object} map[string]interface{} "Room not found or expired"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/messages [post]
func (h *Handler) CreateMessageHandler(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("roomId query parameter is required"))
		return
	}

	var req createMessageRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	token := utils.GetTokenFromRequest(r)
	if token == "" {
		json.WriteError(w, http.StatusUnauthorized, domain.ErrUnauthorized, "Missing or invalid authentication")
		return
	}

	room, err := h.roomRepository.GetByID(r.Context(), roomID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
		default:
			log.Printf("Failed to find room %s: %v", roomID, err)
			json.WriteInternalError(w, err)
		}
		return
	}

	if !room.HasToken(token) {
		json.WriteError(w, http.StatusUnauthorized, domain.ErrUnauthorized, "You are not a participant")
		return
	}

	message, err := domain.NewMessage(roomID, req.Sender, req.Text, token)
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if err := h.messageRepository.Append(r.Context(), roomID, message); err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
		default:
			log.Printf("Failed to append message to room %s: %v", roomID, err)
			json.WriteInternalError(w, err)
		}
		return
	}

	// Broadcast leaves the author token behind; only the store copy keeps it.
	if err := h.broadcaster.PublishChatMessage(r.Context(), roomID, message.Redacted("")); err != nil {
		log.Printf("Error publishing chat message for room %s: %v", roomID, err)
	}

	json.Write(w, http.StatusOK, toResponse(message.Redacted(token)))
}

// ListMessagesHandler godoc
// @Summary      List room messages
// @Description  Returns the full message log of a room. Author tokens are redacted for everyone but their owner.
// @Tags         messages
// @Produce      json
// @Param        roomId query string true "Room ID"
// @Success      200 {object} listMessagesResponse "Message log"
// @Failure      400 {object} map[string]interface{} "Missing room ID"
// @Failure      401 {object} map[string]interface{} "Caller is not a participant"
// @Failure      404 {object} map[string]interface{} "Room not found or expired"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/messages [get]
func (h *Handler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("roomId query parameter is required"))
		return
	}

	token := utils.GetTokenFromRequest(r)
	if token == "" {
		json.WriteError(w, http.StatusUnauthorized, domain.ErrUnauthorized, "Missing or invalid authentication")
		return
	}

	room, err := h.roomRepository.GetByID(r.Context(), roomID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
		default:
			log.Printf("Failed to find room %s: %v", roomID, err)
			json.WriteInternalError(w, err)
		}
		return
	}

	if !room.HasToken(token) {
		json.WriteError(w, http.StatusUnauthorized, domain.ErrUnauthorized, "You are not a participant")
		return
	}

	messages, err := h.messageRepository.GetByRoomID(r.Context(), roomID)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	mapped := make([]messageResponse, 0, len(messages))
	for _, message := range messages {
		mapped = append(mapped, toResponse(message.Redacted(token)))
	}

	json.Write(w, http.StatusOK, listMessagesResponse{Messages: mapped})
}

func toResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		RoomID:    m.RoomID,
		Sender:    m.Sender,
		Text:      m.Text,
		Timestamp: m.Timestamp,
		Token:     m.Token,
	}
}
