package game

import (
	"github.com/tablestakes/holdem/internal/models"
)

// EventType enumerates every outbound message shape. Keeping the set closed
// lets the transport layer marshal events without reflection games.
type EventType string

const (
	EventUpdatePlayers EventType = "update_players" // lobby roster changed
	EventStartGame     EventType = "start_game"     // room transitioned to in_progress
	EventRoomClosed    EventType = "room_closed"    // room is gone; clients should return to the lobby
	EventUpdateGame    EventType = "update_game"    // full public view
	EventYourHand      EventType = "your_hand"      // private: the recipient's two hole cards
	EventShowdown      EventType = "showdown"       // winners + revealed hands
	EventGameOver      EventType = "game_over"      // match ended; fewer than two stacks remain
	EventError         EventType = "error"          // request rejected; sent only to the requester
)

// Event is the single outbound envelope. Fields are omitted unless the event
// type uses them.
type Event struct {
	Type   EventType `json:"type"`
	RoomID string    `json:"room_id,omitempty"`

	// Players carries the ordered roster for update_players.
	Players []string `json:"players,omitempty"`

	// State carries the public view for update_game.
	State *GameView `json:"state,omitempty"`

	// Hand carries the recipient's hole cards for your_hand.
	Hand []models.Card `json:"hand,omitempty"`

	// Winners and Hands carry showdown results.
	Winners map[string]int           `json:"winners,omitempty"`
	Hands   map[string][]models.Card `json:"hands,omitempty"`

	// Message carries a user-visible notice for error events.
	Message string `json:"message,omitempty"`
}

// GameView is the public projection of one room's betting state. It never
// contains hole cards. Derived fields (to_call, min_bet, quick_bets) are
// computed here once, authoritatively; clients are display-only consumers.
type GameView struct {
	PlayerOrder []string        `json:"player_order"`
	Players     map[string]int  `json:"players"` // stacks
	Bets        map[string]int  `json:"bets"`
	Folded      map[string]bool `json:"folded"`
	Community   []models.Card   `json:"community"`
	Pot         int             `json:"pot"`
	Street      string          `json:"street"`

	// CurrentPlayer is empty when no turn is open.
	CurrentPlayer string `json:"current_player"`

	BigBlind int `json:"big_blind"`
	MinRaise int `json:"min_raise"`

	// ToCall is the amount the current actor must add to match the maximum
	// bet on the street; zero when checking is legal.
	ToCall int `json:"to_call"`

	// MinBet is the smallest legal total for a bet or raise by the current actor.
	MinBet int `json:"min_bet"`

	// QuickBets are the half-pot, pot and double-pot amounts, each clamped
	// up to MinBet.
	QuickBets []int `json:"quick_bets"`
}
