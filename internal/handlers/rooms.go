// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tablestakes/holdem/internal/room"
)

type createRoomRequest struct {
	PlayerID      string `json:"player_id"`
	StackMultiple int    `json:"stack_multiple"`
}

type createRoomResponse struct {
	RoomID       string `json:"room_id"`
	InitialStack int    `json:"initial_stack"`
}

// CreateRoomHandler creates an ephemeral in-memory room and seats its
// creator. The creator still has to open the room websocket to play.
func CreateRoomHandler(m *room.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
			http.Error(w, "bad room request payload", http.StatusBadRequest)
			return
		}
		if req.PlayerID == "" {
			http.Error(w, "missing player_id", http.StatusBadRequest)
			return
		}

		created := m.CreateRoom(req.PlayerID, req.StackMultiple)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(createRoomResponse{
			RoomID:       created.ID,
			InitialStack: created.InitialStack,
		})
	}
}

// ListRoomsHandler returns every waiting, non-full room.
func ListRoomsHandler(m *room.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms := m.ListJoinable()
		if rooms == nil {
			rooms = []room.Summary{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]room.Summary{"rooms": rooms})
	}
}
