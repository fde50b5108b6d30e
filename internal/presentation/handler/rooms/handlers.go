package rooms

import (
	"errors"
	"log"
	"net/http"

	"github.com/hilthontt/ember/internal/domain"
	"github.com/hilthontt/ember/internal/infrastructure/json"
	"github.com/hilthontt/ember/internal/infrastructure/metrics"
	"github.com/hilthontt/ember/internal/infrastructure/ws"
	"github.com/hilthontt/ember/internal/presentation/utils"
)

type Handler struct {
	roomRepository domain.RoomRepository
	roomManager    *ws.RoomManager
	hub            *ws.Hub
	broadcaster    domain.Broadcaster
	secureCookies  bool
}

func NewHandler(
	roomRepository domain.RoomRepository,
	roomManager *ws.RoomManager,
	hub *ws.Hub,
	broadcaster domain.Broadcaster,
	secureCookies bool,
) *Handler {
	return &Handler{
		roomRepository: roomRepository,
		roomManager:    roomManager,
		hub:            hub,
		broadcaster:    broadcaster,
		secureCookies:  secureCookies,
	}
}

// CreateRoomHandler godoc
// @Summary      Create a new room
// @Description  Creates an ephemeral room, admits the creator and returns the room identifier
// @Tags         rooms
// @Produce      json
// @Success      200 {object} createRoomResponse "Room created successfully"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/room [post]
func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, token, err := h.roomRepository.Create(r.Context())
	if err != nil {
		log.Printf("Failed to create room: %v", err)
		json.WriteInternalError(w, err)
		return
	}

	utils.SetTokenCookie(w, token, h.secureCookies)
	json.Write(w, http.StatusOK, createRoomResponse{RoomID: room.ID})
}

// JoinRoomHandler godoc
// @Summary      Join an existing room
// @Description  Runs the admission protocol and mints a bearer token for the caller
// @Tags         rooms
// @Produce      json
// @Param        roomId query string true "Room ID"
// @Success      200 {object} joinRoomResponse "Admitted into the room"
// @Failure      400 {object} map[string]interface{} "Missing room ID"
// @Failure      403 {object} map[string]interface{} "Room already has two participants"
// @Failure      404 {object} map[string]interface{} "Room not found or expired"
// @Failure      429 {object} map[string]interface{} "Admission lock held by another caller"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/room [get]
func (h *Handler) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("roomId query parameter is required"))
		return
	}

	presented := utils.GetTokenFromRequest(r)

	token, err := h.roomRepository.Admit(r.Context(), roomID, presented)
	if err != nil {
		metrics.ObserveAdmission(json.Tag(err))
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
		case errors.Is(err, domain.ErrRoomBusy):
			json.WriteError(w, http.StatusTooManyRequests, err, "Room is busy, try again")
		case errors.Is(err, domain.ErrRoomFull):
			json.WriteError(w, http.StatusForbidden, err, "Room already has two participants")
		default:
			log.Printf("Failed to admit into room %s: %v", roomID, err)
			json.WriteInternalError(w, err)
		}
		return
	}

	outcome := "admitted"
	if presented != "" && token == presented {
		outcome = "rejoined"
	}
	metrics.ObserveAdmission(outcome)

	utils.SetTokenCookie(w, token, h.secureCookies)
	json.Write(w, http.StatusOK, joinRoomResponse{Success: true, Token: token})
}

// GetTtlHandler godoc
// @Summary      Get remaining room lifetime
// @Description  Returns the remaining time to live of the room in whole seconds
// @Tags         rooms
// @Produce      json
// @Param        roomId query string true "Room ID"
// @Success      200 {object} ttlResponse "Remaining lifetime"
// @Failure      400 {object} map[string]interface{} "Missing room ID"
// @Failure      404 {object} map[string]interface{} "Room not found or expired"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/room/ttl [get]
func (h *Handler) GetTtlHandler(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("roomId query parameter is required"))
		return
	}

	ttl, err := h.roomRepository.TTL(r.Context(), roomID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
		default:
			log.Printf("Failed to read TTL for room %s: %v", roomID, err)
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, ttlResponse{TTL: int64(ttl.Seconds())})
}

// DestroyRoomHandler godoc
// @Summary      Destroy a room
// @Description  Tears the room down immediately, deleting its record and message log. Destroying a room that is already gone is a no-op.
// @Tags         rooms
// @Produce      json
// @Param        roomId query string true "Room ID"
// @Success      200 {object} destroyRoomResponse "Room destroyed"
// @Failure      400 {object} map[string]interface{} "Missing room ID"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/room [delete]
func (h *Handler) DestroyRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("roomId query parameter is required"))
		return
	}

	// Fan the destroy out before deleting the keys so attached clients
	// hear about it even if a concurrent expiry races the delete.
	if err := h.broadcaster.PublishRoomDestroyed(r.Context(), roomID); err != nil {
		log.Printf("Error publishing room destroyed for %s: %v", roomID, err)
	}

	if err := h.roomRepository.Destroy(r.Context(), roomID); err != nil {
		log.Printf("Failed to destroy room %s: %v", roomID, err)
		json.WriteInternalError(w, err)
		return
	}

	utils.ClearTokenCookie(w, h.secureCookies)
	json.Write(w, http.StatusOK, destroyRoomResponse{Success: true})
}

// AttachHandler godoc
// @Summary      Attach to a room over WebSocket
// @Description  Upgrades the connection and streams chat and destroy events for the room
// @Tags         rooms
// @Param        roomId query string true "Room ID"
// @Success      101 {object} map[string]interface{} "Switching Protocols"
// @Failure      400 {object} map[string]interface{} "Missing room ID"
// @Router       /api/ws [get]
func (h *Handler) AttachHandler(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("roomId query parameter is required"))
		return
	}

	token := utils.GetTokenFromRequest(r)

	conn, err := h.roomManager.Upgrade(w, r)
	if err != nil {
		log.Printf("WebSocket upgrade failed for room %s: %v", roomID, err)
		return
	}

	room, err := h.roomRepository.GetByID(r.Context(), roomID)
	if err != nil {
		reason := "Failed to load room"
		if errors.Is(err, domain.ErrRoomNotFound) {
			reason = "Room not found"
		}
		_ = conn.WriteJSON(ws.NewAttachFailed(roomID, reason))
		_ = conn.Close()
		return
	}

	if token == "" || !room.HasToken(token) {
		_ = conn.WriteJSON(ws.NewAuthError(roomID, "Missing or invalid token"))
		_ = conn.Close()
		return
	}

	client := ws.NewClient(conn, token, roomID)
	h.hub.Register() <- client

	go client.WritePump()
	go client.ReadPump(h.hub)
}
