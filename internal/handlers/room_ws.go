// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/internal/middleware"
	"github.com/tablestakes/holdem/internal/room"
)

// ClientMessage is the envelope for every inbound room message. Action and
// Amount are only meaningful for type "action".
type ClientMessage struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"`
	Amount int    `json:"amount,omitempty"`
}

// RoomWSHandler upgrades /rooms/ws/{room_id}?player={player_id} into the
// room's event stream. All table play flows over this socket; the server is
// authoritative and rejections go only to the offending client.
func RoomWSHandler(logger *logrus.Logger, m *room.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/rooms/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "missing room_id", http.StatusBadRequest)
			return
		}
		roomID := pathParts[0]
		playerID := r.URL.Query().Get("player")

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"holdem"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "holdem" {
			c.Close(BadSubprotocolError, "client must speak the holdem subprotocol")
			return
		}
		if playerID == "" {
			c.Close(MissingPlayerIDError, "missing player query parameter")
			return
		}
		if _, exists := m.Room(roomID); !exists {
			c.Close(InvalidRoomIDError, "room does not exist")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		conn := &room.Connection{
			PlayerID: playerID,
			Cancel:   cancel,
			OutChan:  make(chan game.Event, 16),
		}

		if err := m.Join(roomID, playerID, conn); err != nil {
			logger.Warnf("Room %s: join refused for %s: %v", roomID, playerID, err)
			c.Close(websocket.StatusPolicyViolation, fmt.Sprintf("join refused: %v", err))
			cancel()
			return
		}
		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)

		go writePump(ctx, c, conn, logger)

		left := readPump(ctx, c, m, conn, logger, roomID)

		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, nil)
		if !left {
			// The seat survives a dropped socket; only an explicit leave
			// gives it up.
			m.Disconnect(roomID, playerID, conn)
		}
	}
}

// readPump consumes inbound messages until the socket closes. Returns true if
// the client left the room voluntarily.
func readPump(ctx context.Context, c *websocket.Conn, m *room.Manager, conn *room.Connection, logger *logrus.Logger, roomID string) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("Room %s: websocket closed normally for %s.", roomID, conn.PlayerID)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("Room %s: read error for %s: %v", roomID, conn.PlayerID, err)
			}
			return false
		}
		if typ != websocket.MessageText {
			continue
		}

		var packet ClientMessage
		if err := json.Unmarshal(msg, &packet); err != nil {
			logger.Warnf("Room %s: invalid json from %s: %v", roomID, conn.PlayerID, err)
			conn.SendError(roomID, "invalid JSON format")
			continue
		}

		switch packet.Type {
		case "action":
			a := game.Action{Type: game.ActionType(packet.Action), Amount: packet.Amount}
			if err := m.Act(roomID, conn.PlayerID, a); err != nil {
				conn.SendError(roomID, err.Error())
			}
		case "start_game":
			if err := m.Start(roomID, conn.PlayerID); err != nil {
				conn.SendError(roomID, err.Error())
			}
		case "get_hand":
			m.ResendHand(roomID, conn.PlayerID)
		case "leave_room":
			m.Leave(roomID, conn.PlayerID, conn)
			return true
		default:
			logger.Warnf("Room %s: unknown message type %q from %s", roomID, packet.Type, conn.PlayerID)
			conn.SendError(roomID, fmt.Sprintf("unknown message type: %s", packet.Type))
		}
	}
}

// writePump drains the connection's event channel onto the socket and keeps
// the connection alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *room.Connection, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer c.Close(websocket.StatusGoingAway, "write pump stopping")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("Failed to marshal outgoing event for %s: %v", conn.PlayerID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write to websocket for %s: %v", conn.PlayerID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Ping failed for %s, assuming disconnect: %v", conn.PlayerID, err)
				return
			}
		}
	}
}
