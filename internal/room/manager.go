package room

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thoas/go-funk"

	"github.com/tablestakes/holdem/internal/config"
	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/internal/models"
)

// Allowed stack multiples for room creation; anything else falls back to the
// default (original table rules: 20, 40 or 60 big blinds).
var stackMultiples = []int{20, 40, 60}

const defaultStackMultiple = 20

// Manager drives every room's lifecycle: create, join, leave, start, close.
// It is the only component that creates or destroys betting engines.
type Manager struct {
	store  *Store
	logger *logrus.Logger

	bigBlind     int
	maxPlayers   int
	turnDuration time.Duration
}

// NewManager builds a manager from the server configuration.
func NewManager(logger *logrus.Logger, cfg config.Config) *Manager {
	return &Manager{
		store:        NewStore(),
		logger:       logger,
		bigBlind:     cfg.BigBlind,
		maxPlayers:   cfg.MaxPlayers,
		turnDuration: time.Duration(cfg.TurnTimerSec) * time.Second,
	}
}

// Summary is the lobby listing entry for a joinable room.
type Summary struct {
	RoomID       string `json:"room_id"`
	Seated       int    `json:"seated"`
	MaxPlayers   int    `json:"max_players"`
	BigBlind     int    `json:"big_blind"`
	InitialStack int    `json:"initial_stack"`
}

// CreateRoom builds a new waiting room and seats its creator. The initial
// stack is the chosen multiple of the big blind.
func (m *Manager) CreateRoom(creatorID string, multiple int) *Room {
	if !funk.ContainsInt(stackMultiples, multiple) {
		multiple = defaultStackMultiple
	}

	r := &Room{
		ID:           m.store.NewRoomID(),
		Creator:      creatorID,
		Status:       StatusWaiting,
		InitialStack: multiple * m.bigBlind,
		connections:  make(map[string]*Connection),
	}
	r.Players = append(r.Players, &models.Player{ID: creatorID, Stack: r.InitialStack})
	m.store.Add(r)

	m.logger.Infof("Room %s created by %s (stack %d, blind %d)", r.ID, creatorID, r.InitialStack, m.bigBlind)
	return r
}

// Room retrieves a live room.
func (m *Manager) Room(roomID string) (*Room, bool) {
	return m.store.Get(roomID)
}

// ListJoinable returns every waiting, non-full room.
func (m *Manager) ListJoinable() []Summary {
	var out []Summary
	for _, r := range m.store.All() {
		r.Mu.Lock()
		if r.Status == StatusWaiting && len(r.roster()) < m.maxPlayers {
			out = append(out, Summary{
				RoomID:       r.ID,
				Seated:       len(r.roster()),
				MaxPlayers:   m.maxPlayers,
				BigBlind:     m.bigBlind,
				InitialStack: r.InitialStack,
			})
		}
		r.Mu.Unlock()
	}
	return out
}

// Join seats a player (or re-subscribes a seated one) and attaches their
// connection to the room's broadcast stream. A room that fills up to the seat
// cap starts automatically.
func (m *Manager) Join(roomID, playerID string, conn *Connection) error {
	r, ok := m.store.Get(roomID)
	if !ok {
		return ErrRoomNotJoinable
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if seat := r.seatOf(playerID); seat != nil && !seat.SittingOut {
		// Reconnect path: re-attach and replay state. While a game runs the
		// engine owns the Connected flag; touching it here would race its
		// reads under the engine lock.
		r.Attach(conn)
		m.logger.Infof("Room %s: player %s re-subscribed", r.ID, playerID)
		r.broadcastRoster()
		if r.Status == StatusInProgress && r.Game != nil {
			r.Game.HandleReconnect(playerID)
		} else {
			seat.Connected = true
		}
		return nil
	}

	if r.Status != StatusWaiting {
		return ErrRoomNotJoinable
	}
	if len(r.roster()) >= m.maxPlayers {
		return ErrRoomFull
	}

	r.Players = append(r.Players, &models.Player{
		ID:        playerID,
		Stack:     r.InitialStack,
		Connected: true,
	})
	r.Attach(conn)
	m.logger.Infof("Room %s: player %s joined (%d seated)", r.ID, playerID, len(r.roster()))
	r.broadcastRoster()

	if len(r.roster()) >= m.maxPlayers {
		if err := m.startLocked(r); err != nil {
			m.logger.Warnf("Room %s: auto-start failed: %v", r.ID, err)
		}
	}
	return nil
}

// Leave removes a player. Mid-hand the engine folds them immediately; a
// creator leaving, or the last player leaving, closes the room.
func (m *Manager) Leave(roomID, playerID string, conn *Connection) {
	r, ok := m.store.Get(roomID)
	if !ok {
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if conn != nil {
		r.Detach(conn)
	}
	seat := r.seatOf(playerID)
	if seat == nil || seat.SittingOut {
		return
	}

	if r.Status == StatusInProgress && r.Game != nil {
		r.Game.RemovePlayer(playerID)
	} else {
		r.Players = funk.Filter(r.Players, func(p *models.Player) bool {
			return p.ID != playerID
		}).([]*models.Player)
	}
	m.logger.Infof("Room %s: player %s left", r.ID, playerID)

	if playerID == r.Creator || len(r.roster()) == 0 {
		m.closeLocked(r)
		return
	}
	r.broadcastRoster()
}

// Start begins play. Only the room's creator may trigger it, the room must be
// waiting and at least two players must be seated.
func (m *Manager) Start(roomID, playerID string) error {
	r, ok := m.store.Get(roomID)
	if !ok {
		return ErrRoomNotJoinable
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != StatusWaiting {
		return game.ErrIllegalAction
	}
	if playerID != r.Creator {
		return ErrUnauthorized
	}
	if len(r.roster()) < 2 {
		return game.ErrInsufficientPlayers
	}
	return m.startLocked(r)
}

// startLocked transitions to in_progress and spins up the engine.
// Assumes r.Mu is held.
func (m *Manager) startLocked(r *Room) error {
	g := game.NewHoldemGame(r.ID, r.Players, m.bigBlind)
	g.TurnDuration = m.turnDuration
	g.BroadcastFn = r.Broadcast
	g.BroadcastToPlayerFn = r.SendTo
	g.OnGameEnd = func() { m.onGameEnd(r) }

	r.Status = StatusInProgress
	r.Game = g
	r.Broadcast(game.Event{Type: game.EventStartGame, RoomID: r.ID})

	if err := g.StartHand(); err != nil {
		r.Status = StatusWaiting
		r.Game = nil
		return err
	}
	m.logger.Infof("Room %s: game started with %d players", r.ID, len(r.roster()))
	return nil
}

// onGameEnd returns the room to waiting once the engine reports the match
// over. Runs on its own goroutine (see engine lock ordering).
func (m *Manager) onGameEnd(r *Room) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != StatusInProgress {
		return
	}
	r.Status = StatusWaiting
	r.Game = nil

	// Drop departed seats now that no hand references them.
	r.Players = funk.Filter(r.Players, func(p *models.Player) bool {
		return !p.SittingOut
	}).([]*models.Player)

	m.logger.Infof("Room %s: game over, back to waiting", r.ID)
	r.broadcastRoster()
}

// Act forwards a betting action to the room's engine. The engine pointer is
// captured under the room lock but the action is applied outside it, so a
// slow broadcast never blocks lifecycle calls.
func (m *Manager) Act(roomID, playerID string, a game.Action) error {
	r, ok := m.store.Get(roomID)
	if !ok {
		return ErrRoomNotJoinable
	}
	r.Mu.Lock()
	g := r.Game
	inProgress := r.Status == StatusInProgress
	r.Mu.Unlock()

	if !inProgress || g == nil {
		return game.ErrIllegalAction
	}
	return g.ApplyAction(playerID, a)
}

// ResendHand replays a player's private hole cards on request.
func (m *Manager) ResendHand(roomID, playerID string) {
	r, ok := m.store.Get(roomID)
	if !ok {
		return
	}
	r.Mu.Lock()
	g := r.Game
	r.Mu.Unlock()
	if g != nil {
		g.ResendHand(playerID)
	}
}

// Disconnect detaches a connection without giving up the seat. The engine
// treats a disconnected actor exactly like a turn timeout.
func (m *Manager) Disconnect(roomID, playerID string, conn *Connection) {
	r, ok := m.store.Get(roomID)
	if !ok {
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if conn != nil {
		r.Detach(conn)
	}
	// The engine owns the Connected flag while a game runs: it flips it and
	// resolves the seat's open turn, if any, in one step.
	if r.Status == StatusInProgress && r.Game != nil {
		r.Game.HandleDisconnect(playerID)
	} else if seat := r.seatOf(playerID); seat != nil {
		seat.Connected = false
	}
}

// Close tears a room down: broadcast the closure, stop the engine, drop every
// subscriber and forget the room.
func (m *Manager) Close(roomID string) {
	r, ok := m.store.Get(roomID)
	if !ok {
		return
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()
	m.closeLocked(r)
}

// closeLocked assumes r.Mu is held.
func (m *Manager) closeLocked(r *Room) {
	if r.Status == StatusClosed {
		return
	}
	r.Status = StatusClosed
	if r.Game != nil {
		r.Game.Shutdown()
		r.Game = nil
	}
	r.Broadcast(game.Event{Type: game.EventRoomClosed, RoomID: r.ID})
	m.store.Delete(r.ID)
	r.closeConnections()
	m.logger.Infof("Room %s closed", r.ID)
}
