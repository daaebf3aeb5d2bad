package room

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/internal/models"
)

// Lifecycle errors. Like engine errors they are returned to the requesting
// client only and never broadcast.
var (
	ErrRoomFull        = errors.New("room full")
	ErrRoomNotJoinable = errors.New("room not joinable")
	ErrUnauthorized    = errors.New("unauthorized")
)

// Status is the room lifecycle state: waiting -> in_progress -> waiting|closed.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
)

// Connection wraps one subscriber's outbound message stream. The write pump
// in the transport layer drains OutChan.
type Connection struct {
	PlayerID string
	Cancel   context.CancelFunc
	OutChan  chan game.Event
}

// Send queues an event without blocking; a subscriber that cannot keep up
// loses the message and recovers on the next full-state update.
func (c *Connection) Send(ev game.Event) {
	select {
	case c.OutChan <- ev:
	default:
		log.Printf("Dropping %s event for slow subscriber %s.", ev.Type, c.PlayerID)
	}
}

// SendError queues a user-visible rejection notice.
func (c *Connection) SendError(roomID, msg string) {
	c.Send(game.Event{Type: game.EventError, RoomID: roomID, Message: msg})
}

// Room is one table: an ordered set of seats, a lifecycle status and, while
// in_progress, exactly one betting engine.
//
// Mu guards seats, status and the engine pointer. connsMu guards only the
// subscriber map so the engine may broadcast while its own lock is held;
// never call into the engine while holding connsMu.
type Room struct {
	ID      string
	Creator string

	// Players is the seat order. Seats are appended on join; during a game
	// departed players are only flagged, the engine owns the slice.
	Players []*models.Player

	Status       Status
	InitialStack int

	Game *game.HoldemGame

	Mu sync.Mutex

	connsMu     sync.Mutex
	connections map[string]*Connection
}

// Broadcast fans an event out to every subscriber of the room.
func (r *Room) Broadcast(ev game.Event) {
	r.connsMu.Lock()
	defer r.connsMu.Unlock()
	for _, conn := range r.connections {
		conn.Send(ev)
	}
}

// SendTo delivers an event to a single subscriber, if connected.
func (r *Room) SendTo(playerID string, ev game.Event) {
	r.connsMu.Lock()
	defer r.connsMu.Unlock()
	if conn, ok := r.connections[playerID]; ok {
		conn.Send(ev)
	}
}

// Attach registers a subscriber connection, replacing any previous one for
// the same player.
func (r *Room) Attach(conn *Connection) {
	r.connsMu.Lock()
	old, had := r.connections[conn.PlayerID]
	r.connections[conn.PlayerID] = conn
	r.connsMu.Unlock()
	if had && old != conn && old.Cancel != nil {
		old.Cancel()
	}
}

// Detach removes a subscriber connection. The seat is unaffected.
func (r *Room) Detach(conn *Connection) {
	r.connsMu.Lock()
	defer r.connsMu.Unlock()
	if cur, ok := r.connections[conn.PlayerID]; ok && cur == conn {
		delete(r.connections, conn.PlayerID)
	}
}

// closeConnections cancels every subscriber, used on room teardown.
func (r *Room) closeConnections() {
	r.connsMu.Lock()
	conns := make([]*Connection, 0, len(r.connections))
	for _, c := range r.connections {
		conns = append(conns, c)
	}
	r.connections = make(map[string]*Connection)
	r.connsMu.Unlock()

	for _, c := range conns {
		if c.Cancel != nil {
			c.Cancel()
		}
	}
}

// roster returns the ordered ids of currently seated players.
// Assumes Mu is held.
func (r *Room) roster() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if !p.SittingOut {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// seatOf finds a player's seat. Assumes Mu is held.
func (r *Room) seatOf(playerID string) *models.Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// broadcastRoster emits the update_players roster event.
// Assumes Mu is held.
func (r *Room) broadcastRoster() {
	r.Broadcast(game.Event{Type: game.EventUpdatePlayers, RoomID: r.ID, Players: r.roster()})
}
